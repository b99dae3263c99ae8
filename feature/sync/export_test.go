package sync

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalog-manager/core/manifest"
	"catalog-manager/core/storage/mocks"
)

func TestExportGame_NotFound(t *testing.T) {
	svc := testService(t, testStore(t), &mocks.Client{})
	var buf bytes.Buffer
	err := svc.ExportGame(context.Background(), uuid.New(), &buf)
	assert.ErrorIs(t, err, ErrNotFound)
}

// Import, export, and re-import into an empty catalog: the second catalog
// must end up with the same entity graph.
func TestExportImport_RoundTrip(t *testing.T) {
	ctx := context.Background()
	first := testStore(t)
	svcA := testService(t, first, &mocks.Client{})

	scriptId := uuid.New()
	rec := gameRecord(time.Now().UTC().Add(-time.Hour))
	rec.Collections = []string{"Blizzard Classics"}
	rec.Scripts = []manifest.Script{{
		Id: scriptId, Type: "Install", Name: "install",
		CreatedOn: rec.CreatedOn, UpdatedOn: rec.UpdatedOn,
	}}
	path := writePackage(t, rec, map[string][]byte{
		manifest.ScriptsPrefix + scriptId.String(): []byte("Write-Host install"),
	})
	report, err := svcA.ImportPackageFile(ctx, path, manifest.TypeGame)
	require.NoError(t, err)
	require.True(t, report.Ok(), "results: %+v", report.Results)

	var buf bytes.Buffer
	require.NoError(t, svcA.ExportGame(ctx, rec.Id, &buf))

	exported := filepath.Join(t.TempDir(), "export.zip")
	require.NoError(t, os.WriteFile(exported, buf.Bytes(), 0o644))

	second := testStore(t)
	svcB := testService(t, second, &mocks.Client{})
	report, err = svcB.ImportPackageFile(ctx, exported, manifest.TypeGame)
	require.NoError(t, err)
	require.True(t, report.Ok(), "results: %+v", report.Results)

	orig, err := first.GameById(ctx, rec.Id)
	require.NoError(t, err)
	copied, err := second.GameById(ctx, rec.Id)
	require.NoError(t, err)
	require.NotNil(t, copied)

	assert.Equal(t, orig.Id, copied.Id)
	assert.Equal(t, orig.Title, copied.Title)
	assert.ElementsMatch(t, tagNames(orig.Tags), tagNames(copied.Tags))
	require.Len(t, copied.Collections, 1)
	assert.Equal(t, "Blizzard Classics", copied.Collections[0].Name)
	require.Len(t, copied.MultiplayerModes, 1)
	assert.Equal(t, orig.MultiplayerModes[0].NetworkProtocol, copied.MultiplayerModes[0].NetworkProtocol)
	require.Len(t, copied.Scripts, 1)
	assert.Equal(t, "Write-Host install", copied.Scripts[0].Contents)
}

func TestExportImport_ToolRoundTrip(t *testing.T) {
	ctx := context.Background()
	first := testStore(t)
	svcA := testService(t, first, &mocks.Client{})

	scriptId := uuid.New()
	rec := &manifest.Tool{
		Id:          uuid.New(),
		Name:        "Map Editor",
		Description: "Puzzle and map authoring",
		CreatedOn:   time.Now().UTC().Add(-2 * time.Hour),
		UpdatedOn:   time.Now().UTC().Add(-time.Hour),
		Scripts: []manifest.Script{{
			Id: scriptId, Type: "Install", Name: "setup",
			CreatedOn: time.Now().UTC().Add(-2 * time.Hour),
			UpdatedOn: time.Now().UTC().Add(-time.Hour),
		}},
	}
	path := writePackage(t, rec, map[string][]byte{
		manifest.ScriptsPrefix + scriptId.String(): []byte("Write-Host tool"),
	})
	report, err := svcA.ImportPackageFile(ctx, path, manifest.TypeTool)
	require.NoError(t, err)
	require.True(t, report.Ok(), "results: %+v", report.Results)

	var buf bytes.Buffer
	require.NoError(t, svcA.ExportTool(ctx, rec.Id, &buf))

	exported := filepath.Join(t.TempDir(), "tool.zip")
	require.NoError(t, os.WriteFile(exported, buf.Bytes(), 0o644))

	second := testStore(t)
	svcB := testService(t, second, &mocks.Client{})
	report, err = svcB.ImportPackageFile(ctx, exported, manifest.TypeTool)
	require.NoError(t, err)
	require.True(t, report.Ok(), "results: %+v", report.Results)

	copied, err := second.ToolById(ctx, rec.Id)
	require.NoError(t, err)
	require.NotNil(t, copied)
	assert.Equal(t, "Map Editor", copied.Name)
	assert.Equal(t, "Puzzle and map authoring", copied.Description)
	require.Len(t, copied.Scripts, 1)
	assert.Equal(t, "Write-Host tool", copied.Scripts[0].Contents)
}

func TestManifestForGame_Inverse(t *testing.T) {
	ctx := context.Background()
	store := testStore(t)
	svc := testService(t, store, &mocks.Client{})

	rec := gameRecord(time.Now().UTC().Add(-time.Hour))
	report, err := svc.ImportPackageFile(ctx, writePackage(t, rec, nil), manifest.TypeGame)
	require.NoError(t, err)
	require.True(t, report.Ok())

	game, err := store.GameById(ctx, rec.Id)
	require.NoError(t, err)
	out := ManifestForGame(game)

	assert.Equal(t, rec.Id, out.Id)
	assert.Equal(t, rec.Title, out.Title)
	assert.Equal(t, rec.Engine, out.Engine)
	assert.ElementsMatch(t, rec.Tags, out.Tags)
	assert.ElementsMatch(t, rec.Genres, out.Genres)
	require.Len(t, out.MultiplayerModes, len(rec.MultiplayerModes))
}

func TestExportFilename(t *testing.T) {
	assert.Equal(t, "a_b_.zip", exportFilename(`a/b?`))
	assert.Equal(t, "Warcraft II.zip", exportFilename("Warcraft II"))
}
