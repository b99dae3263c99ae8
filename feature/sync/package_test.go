package sync

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSafeRelPath(t *testing.T) {
	cases := []struct {
		name string
		in   string
		out  string
		ok   bool
	}{
		{"plain file", "server.cfg", "server.cfg", true},
		{"nested", "maps/gow.pud", filepath.Join("maps", "gow.pud"), true},
		{"directory entry", "maps/", "maps", true},
		{"empty", "", "", true},
		{"parent escape", "../evil.sh", "", false},
		{"nested escape", "maps/../../evil.sh", "", false},
		{"absolute", "/etc/passwd", "", false},
		{"backslash", `maps\gow.pud`, "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := safeRelPath(tc.in)
			if !tc.ok {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.out, got)
		})
	}
}

func TestExtractDir_RejectsTraversal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "evil.zip")
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	ew, err := zw.CreateHeader(&zip.FileHeader{Name: "Files/../../escape.txt"})
	require.NoError(t, err)
	_, err = ew.Write([]byte("nope"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	pkg, err := OpenPackage(path)
	require.NoError(t, err)
	defer pkg.Close()

	dest := t.TempDir()
	err = pkg.ExtractDir("Files/", dest)
	assert.Error(t, err)
	_, statErr := os.Stat(filepath.Join(filepath.Dir(dest), "escape.txt"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestOpenPackage_MissingManifest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.zip")
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	pkg, err := OpenPackage(path)
	require.NoError(t, err)
	defer pkg.Close()

	_, err = pkg.Manifest()
	assert.Error(t, err)
}
