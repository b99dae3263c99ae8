package sync

import (
	"archive/zip"
	"context"
	"fmt"
	"hash/crc32"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"catalog-manager/core/manifest"
	"catalog-manager/core/server"
	"catalog-manager/core/storage"
	"catalog-manager/core/storage/mocks"
	"catalog-manager/feature/catalog"
	"catalog-manager/feature/catalog/models"
)

func testStore(t *testing.T) *catalog.Store {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "catalog.db")), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	store := catalog.NewStore(db, zap.NewNop())
	require.NoError(t, store.AutoMigrate())
	return store
}

func testService(t *testing.T, store *catalog.Store, client *mocks.Client) *Service {
	t.Helper()
	srvCfg := server.Config{WorkDir: t.TempDir(), ServerFilesDir: t.TempDir()}
	return NewService(store, client, "catalog", srvCfg, zap.NewNop())
}

// writePackage builds a package zip with the given manifest and extra entries.
func writePackage(t *testing.T, rec any, entries map[string][]byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pkg.zip")
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	mw, err := zw.Create(manifest.Filename)
	require.NoError(t, err)
	require.NoError(t, manifest.Encode(mw, rec))
	for name, data := range entries {
		ew, err := zw.Create(name)
		require.NoError(t, err)
		_, err = ew.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
	return path
}

func gameRecord(updatedOn time.Time) *manifest.Game {
	return &manifest.Game{
		Id:        uuid.New(),
		Title:     "Warcraft II",
		CreatedOn: updatedOn.Add(-24 * time.Hour),
		UpdatedOn: updatedOn,
		Engine:    "Custom",
		Tags:      []string{"Strategy", "Classic"},
		Genres:    []string{"RTS"},
		MultiplayerModes: []manifest.MultiplayerMode{
			{Type: "LAN", NetworkProtocol: "IPX", MinPlayers: 2, MaxPlayers: 8},
		},
	}
}

func TestLookupImporter_AddAndWatermark(t *testing.T) {
	store := testStore(t)
	imp := NewTagImporter(store)
	ctx := context.Background()
	batch := NewImportContext(nil)

	past := time.Now().UTC().Add(-time.Hour)
	rec := manifest.NameRecord{Name: "Strategy", CreatedOn: past, UpdatedOn: past}

	res := runImporter(ctx, batch, imp, rec, zap.NewNop())
	assert.Equal(t, ActionAdded, res.Action)
	assert.Equal(t, "Tag/Strategy", res.Key)

	tag, err := catalog.FindByName[models.Tag](ctx, store, "Strategy")
	require.NoError(t, err)
	require.NotNil(t, tag)
	assert.False(t, tag.ImportedOn.IsZero(), "ImportedOn stamped on add")

	// Same record again: UpdatedOn predates the receipt watermark.
	res = runImporter(ctx, NewImportContext(nil), imp, rec, zap.NewNop())
	assert.Equal(t, ActionSkipped, res.Action)

	// A newer remote revision goes through as an update.
	rec.UpdatedOn = time.Now().UTC().Add(time.Hour)
	res = runImporter(ctx, NewImportContext(nil), imp, rec, zap.NewNop())
	assert.Equal(t, ActionUpdated, res.Action)
}

func TestLookupImporter_EmptyNameFails(t *testing.T) {
	store := testStore(t)
	res := runImporter(context.Background(), NewImportContext(nil), NewGenreImporter(store),
		manifest.NameRecord{}, zap.NewNop())
	assert.Equal(t, ActionFailed, res.Action)
	require.NotNil(t, res.Error)
	assert.Equal(t, ErrKindInvalid, res.Error.Kind)
}

func TestImportGamePackage_FullGraph(t *testing.T) {
	store := testStore(t)
	client := &mocks.Client{}
	svc := testService(t, store, client)

	scriptId := uuid.New()
	rec := gameRecord(time.Now().UTC().Add(-time.Hour))
	rec.Scripts = []manifest.Script{{Id: scriptId, Type: "Install", Name: "install"}}

	path := writePackage(t, rec, map[string][]byte{
		manifest.ScriptsPrefix + scriptId.String(): []byte("Write-Host hello"),
	})

	report, err := svc.ImportPackageFile(context.Background(), path, manifest.TypeGame)
	require.NoError(t, err)
	assert.True(t, report.Ok(), "no failures expected: %+v", report.Results)

	game, err := store.GameById(context.Background(), rec.Id)
	require.NoError(t, err)
	require.NotNil(t, game)
	assert.Equal(t, "Warcraft II", game.Title)
	require.NotNil(t, game.Engine)
	assert.Equal(t, "Custom", game.Engine.Name)
	assert.ElementsMatch(t, []string{"Strategy", "Classic"}, tagNames(game.Tags))
	require.Len(t, game.MultiplayerModes, 1)
	assert.Equal(t, "IPX", game.MultiplayerModes[0].NetworkProtocol)
	require.Len(t, game.Scripts, 1)
	assert.Equal(t, "Write-Host hello", game.Scripts[0].Contents)

	// Registered in the default library.
	lib, err := store.DefaultLibrary(context.Background())
	require.NoError(t, err)
	require.NotNil(t, lib)

	// Modes were suppressed in favor of the game's own fan-out.
	for _, res := range report.Results {
		if res.Type == "MultiplayerMode" {
			assert.Equal(t, ActionSkipped, res.Action)
		}
	}
	client.AssertExpectations(t)
}

func TestImportGamePackage_Idempotent(t *testing.T) {
	store := testStore(t)
	svc := testService(t, store, &mocks.Client{})
	rec := gameRecord(time.Now().UTC().Add(-time.Hour))
	path := writePackage(t, rec, nil)

	report, err := svc.ImportPackageFile(context.Background(), path, manifest.TypeGame)
	require.NoError(t, err)
	assert.True(t, report.Ok())
	assert.Positive(t, report.Added)

	report, err = svc.ImportPackageFile(context.Background(), path, manifest.TypeGame)
	require.NoError(t, err)
	assert.Zero(t, report.Added, "second import of an unchanged manifest mutates nothing")
	assert.Zero(t, report.Updated)
	assert.Zero(t, report.Failed)
}

func TestImportGamePackage_RelationshipLaw(t *testing.T) {
	store := testStore(t)
	svc := testService(t, store, &mocks.Client{})
	ctx := context.Background()

	rec := gameRecord(time.Now().UTC().Add(-time.Hour))
	rec.Tags = []string{"Action", "RPG"}
	report, err := svc.ImportPackageFile(ctx, writePackage(t, rec, nil), manifest.TypeGame)
	require.NoError(t, err)
	require.True(t, report.Ok())

	before, err := store.GameById(ctx, rec.Id)
	require.NoError(t, err)
	rpgId := tagIdByName(t, before.Tags, "RPG")

	// Newer revision replaces Action with Strategy, keeps RPG.
	rec.UpdatedOn = time.Now().UTC().Add(time.Hour)
	rec.Tags = []string{"RPG", "Strategy"}
	report, err = svc.ImportPackageFile(ctx, writePackage(t, rec, nil), manifest.TypeGame)
	require.NoError(t, err)
	require.True(t, report.Ok())

	after, err := store.GameById(ctx, rec.Id)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"RPG", "Strategy"}, tagNames(after.Tags))
	assert.Equal(t, rpgId, tagIdByName(t, after.Tags, "RPG"), "RPG updated in place, not replaced")
}

func TestMediaImporter_SuppressedWhenGameQueued(t *testing.T) {
	store := testStore(t)
	imp := NewMediaImporter(store, &mocks.Client{}, "catalog", nil, zap.NewNop())

	owner := gameRecord(time.Now().UTC())
	batch := NewImportContext(nil)
	batch.Enqueue(&ImportItem{Type: "Game", Record: owner})

	media := &MediaRecord{
		Media: manifest.Media{Id: uuid.New(), FileId: uuid.New(), Type: "Cover", UpdatedOn: time.Now().UTC()},
		Owner: owner,
	}
	res := runImporter(context.Background(), batch, imp, media, zap.NewNop())
	assert.Equal(t, ActionSkipped, res.Action)

	row, err := catalog.FindById[models.Media](context.Background(), store, media.Media.Id)
	require.NoError(t, err)
	assert.Nil(t, row, "no write while the owner is queued")
}

func TestMediaImporter_MissingOwnerFails(t *testing.T) {
	store := testStore(t)
	imp := NewMediaImporter(store, &mocks.Client{}, "catalog", nil, zap.NewNop())

	owner := gameRecord(time.Now().UTC().Add(-time.Hour))
	media := &MediaRecord{
		Media: manifest.Media{Id: uuid.New(), FileId: uuid.New(), Type: "Cover", UpdatedOn: owner.UpdatedOn},
		Owner: owner,
	}
	res := runImporter(context.Background(), NewImportContext(nil), imp, media, zap.NewNop())
	assert.Equal(t, ActionFailed, res.Action)
	require.NotNil(t, res.Error)
	assert.Equal(t, ErrKindNotFound, res.Error.Kind)
}

func TestImportGamePackage_SourceUrlMediaFetched(t *testing.T) {
	store := testStore(t)
	body := []byte("cover image bytes")
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Header().Set("Content-Type", "image/png")
		w.Write(body)
	}))
	defer srv.Close()

	fileId := uuid.New()
	mediaKey := storage.MediaPrefix + fileId.String()
	client := &mocks.Client{}
	// The binary travels by url, not in the package, and is not yet stored.
	client.On("StatObject", mock.Anything, "catalog", mediaKey, mock.Anything).
		Return(minio.ObjectInfo{}, assert.AnError)
	client.On("PutObject", mock.Anything, "catalog", mediaKey, mock.Anything, int64(len(body)), mock.Anything).
		Return(minio.UploadInfo{}, nil)
	svc := testService(t, store, client)

	rec := gameRecord(time.Now().UTC().Add(-time.Hour))
	rec.Media = []manifest.Media{{
		Id: uuid.New(), FileId: fileId, Type: "Cover",
		SourceUrl: srv.URL + "/cover.png",
		CreatedOn: rec.CreatedOn, UpdatedOn: rec.UpdatedOn,
	}}

	report, err := svc.ImportPackageFile(context.Background(), writePackage(t, rec, nil), manifest.TypeGame)
	require.NoError(t, err)
	assert.True(t, report.Ok(), "results: %+v", report.Results)
	assert.Equal(t, 1, hits, "binary fetched from the source url")

	row, err := catalog.FindById[models.Media](context.Background(), store, rec.Media[0].Id)
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Equal(t, fmt.Sprintf("%08X", crc32.ChecksumIEEE(body)), row.Crc32)
	client.AssertExpectations(t)
}

func TestImportGamePackage_MissingArchivePayload(t *testing.T) {
	store := testStore(t)
	client := &mocks.Client{}
	// The payload is neither in the package nor already stored.
	client.On("StatObject", mock.Anything, "catalog", mock.Anything, mock.Anything).
		Return(minio.ObjectInfo{}, assert.AnError)
	svc := testService(t, store, client)

	rec := gameRecord(time.Now().UTC().Add(-time.Hour))
	rec.Archives = []manifest.Archive{{
		Id: uuid.New(), ObjectKey: "missing-key", Version: "1.0",
		CreatedOn: rec.CreatedOn, UpdatedOn: rec.UpdatedOn,
	}}

	report, err := svc.ImportPackageFile(context.Background(), writePackage(t, rec, nil), manifest.TypeGame)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Failed)

	var failed *EntityResult
	for idx := range report.Results {
		if report.Results[idx].Action == ActionFailed {
			failed = &report.Results[idx]
		}
	}
	require.NotNil(t, failed)
	assert.Equal(t, "Archive/missing-key", failed.Key)
	assert.Equal(t, ErrKindNotFound, failed.Error.Kind)

	// Siblings still imported.
	game, err := store.GameById(context.Background(), rec.Id)
	require.NoError(t, err)
	require.NotNil(t, game)
	assert.Equal(t, "Warcraft II", game.Title)
}

func TestImportToolPackage_ReconcilesGames(t *testing.T) {
	store := testStore(t)
	svc := testService(t, store, &mocks.Client{})
	ctx := context.Background()

	gameA := gameRecord(time.Now().UTC().Add(-time.Hour))
	gameB := gameRecord(time.Now().UTC().Add(-time.Hour))
	gameB.Title = "StarCraft"
	for _, g := range []*manifest.Game{gameA, gameB} {
		report, err := svc.ImportPackageFile(ctx, writePackage(t, g, nil), manifest.TypeGame)
		require.NoError(t, err)
		require.True(t, report.Ok(), "results: %+v", report.Results)
	}

	// One valid game reference plus one the catalog has never seen; the
	// unknown reference is dropped, not fatal.
	rec := &manifest.Tool{
		Id:        uuid.New(),
		Name:      "Map Editor",
		Games:     []uuid.UUID{gameA.Id, uuid.New()},
		CreatedOn: gameA.CreatedOn,
		UpdatedOn: gameA.UpdatedOn,
	}
	report, err := svc.ImportPackageFile(ctx, writePackage(t, rec, nil), manifest.TypeTool)
	require.NoError(t, err)
	require.True(t, report.Ok(), "results: %+v", report.Results)

	tool, err := store.ToolById(ctx, rec.Id)
	require.NoError(t, err)
	require.NotNil(t, tool)
	require.Len(t, tool.Games, 1)
	assert.Equal(t, gameA.Id, tool.Games[0].Id)

	// A newer revision moves the membership to the other game.
	rec.UpdatedOn = time.Now().UTC().Add(time.Hour)
	rec.Games = []uuid.UUID{gameB.Id}
	report, err = svc.ImportPackageFile(ctx, writePackage(t, rec, nil), manifest.TypeTool)
	require.NoError(t, err)
	require.True(t, report.Ok(), "results: %+v", report.Results)

	tool, err = store.ToolById(ctx, rec.Id)
	require.NoError(t, err)
	require.Len(t, tool.Games, 1)
	assert.Equal(t, gameB.Id, tool.Games[0].Id)
}

func TestImportToolPackage_Watermark(t *testing.T) {
	store := testStore(t)
	svc := testService(t, store, &mocks.Client{})
	ctx := context.Background()

	rec := &manifest.Tool{
		Id:        uuid.New(),
		Name:      "Map Editor",
		CreatedOn: time.Now().UTC().Add(-2 * time.Hour),
		UpdatedOn: time.Now().UTC().Add(-time.Hour),
	}
	path := writePackage(t, rec, nil)
	report, err := svc.ImportPackageFile(ctx, path, manifest.TypeTool)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Added)

	report, err = svc.ImportPackageFile(ctx, path, manifest.TypeTool)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Skipped, "unchanged revision is not re-imported")
	assert.Zero(t, report.Updated)
}

func TestImportRedistributablePackage_MatchedByName(t *testing.T) {
	store := testStore(t)
	svc := testService(t, store, &mocks.Client{})
	ctx := context.Background()

	rec := &manifest.Redistributable{
		Name:      "DirectX 9.0c",
		CreatedOn: time.Now().UTC().Add(-2 * time.Hour),
		UpdatedOn: time.Now().UTC().Add(-time.Hour),
	}
	report, err := svc.ImportPackageFile(ctx, writePackage(t, rec, nil), manifest.TypeRedistributable)
	require.NoError(t, err)
	require.True(t, report.Ok())

	first, err := store.RedistributableByName(ctx, rec.Name)
	require.NoError(t, err)
	require.NotNil(t, first)

	// A newer record from another server converges on the same row.
	rec.UpdatedOn = time.Now().UTC().Add(time.Hour)
	rec.Description = "Updated"
	report, err = svc.ImportPackageFile(ctx, writePackage(t, rec, nil), manifest.TypeRedistributable)
	require.NoError(t, err)
	require.True(t, report.Ok())

	second, err := store.RedistributableByName(ctx, rec.Name)
	require.NoError(t, err)
	assert.Equal(t, first.Id, second.Id)
	assert.Equal(t, "Updated", second.Description)
}

func TestImportServerPackage_ExtractsFiles(t *testing.T) {
	store := testStore(t)
	client := &mocks.Client{}
	svc := testService(t, store, client)
	ctx := context.Background()

	// The server needs its game in the catalog first.
	game := gameRecord(time.Now().UTC().Add(-time.Hour))
	_, err := svc.ImportPackageFile(ctx, writePackage(t, game, nil), manifest.TypeGame)
	require.NoError(t, err)

	rec := &manifest.Server{
		Id:        uuid.New(),
		Name:      "wc2-lan",
		GameId:    game.Id,
		Port:      6112,
		CreatedOn: game.CreatedOn,
		UpdatedOn: game.UpdatedOn,
	}
	path := writePackage(t, rec, map[string][]byte{
		manifest.FilesPrefix + "maps/":        nil,
		manifest.FilesPrefix + "maps/gow.pud": []byte("map data"),
		manifest.FilesPrefix + "server.cfg":   []byte("port=6112"),
		"Unrelated/ignored.txt":               []byte("not extracted"),
	})

	report, err := svc.ImportPackageFile(ctx, path, manifest.TypeServer)
	require.NoError(t, err)
	assert.True(t, report.Ok(), "results: %+v", report.Results)

	srv, err := store.ServerById(ctx, rec.Id)
	require.NoError(t, err)
	require.NotNil(t, srv)
	require.NotNil(t, srv.GameId)
	assert.Equal(t, game.Id, *srv.GameId)

	root := filepath.Join(svc.srvCfg.ServerFilesDir, rec.Id.String())
	data, err := os.ReadFile(filepath.Join(root, "maps", "gow.pud"))
	require.NoError(t, err)
	assert.Equal(t, "map data", string(data))
	_, err = os.Stat(filepath.Join(root, "ignored.txt"))
	assert.True(t, os.IsNotExist(err), "entries outside Files/ are not extracted")
}

func tagNames(tags []models.Tag) []string {
	var out []string
	for _, tag := range tags {
		out = append(out, tag.Name)
	}
	return out
}

func tagIdByName(t *testing.T, tags []models.Tag, name string) uuid.UUID {
	t.Helper()
	for _, tag := range tags {
		if tag.Name == name {
			return tag.Id
		}
	}
	t.Fatalf("tag %s not found", name)
	return uuid.Nil
}
