package archive

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeZip(t *testing.T, path string, entries map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	for name, body := range entries {
		ew, err := zw.Create(name)
		require.NoError(t, err)
		_, err = ew.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
}

func readZip(t *testing.T, path string) map[string]string {
	t.Helper()
	zr, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer zr.Close()
	out := map[string]string{}
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		body, err := io.ReadAll(rc)
		rc.Close()
		require.NoError(t, err)
		out[f.Name] = string(body)
	}
	return out
}

func TestPatch_UnionAndMinimalDelta(t *testing.T) {
	dir := t.TempDir()
	original := filepath.Join(dir, "original.zip")
	altered := filepath.Join(dir, "altered.zip")

	writeZip(t, original, map[string]string{"A": "alpha", "B": "beta"})
	writeZip(t, altered, map[string]string{"A": "alpha", "B": "BETA2", "C": "gamma"})

	res, err := Patch(original, altered)
	require.NoError(t, err)

	// The base archive now matches the altered version entry-for-entry.
	assert.Equal(t, map[string]string{"A": "alpha", "B": "BETA2", "C": "gamma"}, readZip(t, original))

	// The altered file was replaced by the delta: changed and added only.
	assert.Equal(t, map[string]string{"B": "BETA2", "C": "gamma"}, readZip(t, altered))

	assert.Equal(t, 1, res.Added)
	assert.Equal(t, 1, res.Changed)
	assert.Equal(t, 1, res.Unchanged)
	assert.Positive(t, res.OriginalSize)
	assert.Positive(t, res.PatchSize)
}

func TestPatch_PreservesEntriesMissingFromAltered(t *testing.T) {
	dir := t.TempDir()
	original := filepath.Join(dir, "original.zip")
	altered := filepath.Join(dir, "altered.zip")

	writeZip(t, original, map[string]string{"keep.dat": "old", "shared": "same"})
	writeZip(t, altered, map[string]string{"shared": "same"})

	res, err := Patch(original, altered)
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"keep.dat": "old", "shared": "same"}, readZip(t, original))
	assert.Empty(t, readZip(t, altered), "nothing changed, so the delta is empty")
	assert.Equal(t, 0, res.Added)
	assert.Equal(t, 0, res.Changed)
	assert.Equal(t, 2, res.Unchanged)
}

func TestPatch_CarriesNewDirectoryEntries(t *testing.T) {
	dir := t.TempDir()
	original := filepath.Join(dir, "original.zip")
	altered := filepath.Join(dir, "altered.zip")

	writeZip(t, original, map[string]string{"A": "alpha"})
	writeZip(t, altered, map[string]string{"A": "alpha", "maps/": "", "maps/garden.pud": "pud"})

	res, err := Patch(original, altered)
	require.NoError(t, err)

	// The delta ships the new directory entry along with its files.
	assert.Equal(t, map[string]string{"maps/": "", "maps/garden.pud": "pud"}, readZip(t, altered))
	assert.Equal(t, 2, res.Added)
	assert.Equal(t, 0, res.Changed)
	assert.Equal(t, 1, res.Unchanged)
}

func TestPatch_Idempotent(t *testing.T) {
	dir := t.TempDir()
	original := filepath.Join(dir, "original.zip")
	altered := filepath.Join(dir, "altered.zip")

	writeZip(t, original, map[string]string{"A": "one"})
	writeZip(t, altered, map[string]string{"A": "two"})
	_, err := Patch(original, altered)
	require.NoError(t, err)

	// Patching again with the freshly built base against a copy of the new
	// full content changes nothing.
	writeZip(t, altered, map[string]string{"A": "two"})
	res, err := Patch(original, altered)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Added)
	assert.Equal(t, 0, res.Changed)
	assert.Empty(t, readZip(t, altered))
}

func TestPatch_MissingInput(t *testing.T) {
	dir := t.TempDir()
	original := filepath.Join(dir, "original.zip")
	writeZip(t, original, map[string]string{"A": "one"})

	_, err := Patch(original, filepath.Join(dir, "absent.zip"))
	assert.Error(t, err)
	// The base archive is untouched on failure.
	assert.Equal(t, map[string]string{"A": "one"}, readZip(t, original))
}
