package archive

import (
	"context"
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

	"catalog-manager/core/server"
	"catalog-manager/core/storage/mocks"
	"catalog-manager/feature/catalog"
	"catalog-manager/feature/catalog/models"
)

func testService(t *testing.T, client *mocks.Client) (*Service, *catalog.Store) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "catalog.db")), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	store := catalog.NewStore(db, zap.NewNop())
	require.NoError(t, store.AutoMigrate())
	srvCfg := server.Config{WorkDir: t.TempDir(), ServerFilesDir: t.TempDir()}
	return NewService(store, client, "catalog", srvCfg, zap.NewNop()), store
}

func seedGame(t *testing.T, store *catalog.Store) *models.Game {
	t.Helper()
	game := &models.Game{Base: models.Base{Id: uuid.New()}, Title: "Warcraft II"}
	require.NoError(t, store.SaveGame(context.Background(), game))
	return game
}

func stage(t *testing.T, svc *Service, key string, entries map[string]string) string {
	t.Helper()
	path := svc.srvCfg.StagedPath(key)
	writeZip(t, path, entries)
	return path
}

func TestUpload_FreshArchive(t *testing.T) {
	client := &mocks.Client{}
	svc, store := testService(t, client)
	game := seedGame(t, store)

	key := uuid.NewString()
	staged := stage(t, svc, key, map[string]string{"game.exe": "v1"})

	client.On("FPutObject", mock.Anything, "catalog", "archives/"+key, staged, mock.Anything).
		Return(minio.UploadInfo{}, nil)

	archive, err := svc.Upload(context.Background(), UploadRequest{
		ObjectKey: key,
		GameId:    &game.Id,
		Version:   "1.0",
	})
	require.NoError(t, err)
	assert.Equal(t, key, archive.ObjectKey)
	assert.Positive(t, archive.CompressedSize)

	_, statErr := os.Stat(staged)
	assert.True(t, os.IsNotExist(statErr), "staged file removed after upload")

	stored, err := store.LatestArchive(context.Background(), &game.Id, nil)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "1.0", stored.Version)
	client.AssertExpectations(t)
}

func TestUpload_PatchesAgainstPriorVersion(t *testing.T) {
	client := &mocks.Client{}
	svc, store := testService(t, client)
	game := seedGame(t, store)

	baseKey := uuid.NewString()
	base := &models.Archive{
		Base:      models.Base{Id: uuid.New(), CreatedOn: time.Now().UTC().Add(-time.Hour)},
		GameId:    &game.Id,
		ObjectKey: baseKey,
		Version:   "1.0",
	}
	require.NoError(t, catalog.Save(context.Background(), store, base))

	patchKey := uuid.NewString()
	stage(t, svc, patchKey, map[string]string{"game.exe": "v2", "new.dat": "fresh"})

	// Staging the prior version materializes it from object storage.
	client.On("FGetObject", mock.Anything, "catalog", "archives/"+baseKey, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			writeZip(t, args.String(3), map[string]string{"game.exe": "v1", "keep.dat": "same"})
		}).
		Return(nil)
	client.On("FPutObject", mock.Anything, "catalog", "archives/"+baseKey, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			rebuilt := readZip(t, args.String(3))
			assert.Equal(t, map[string]string{
				"game.exe": "v2", "keep.dat": "same", "new.dat": "fresh",
			}, rebuilt)
		}).
		Return(minio.UploadInfo{}, nil)
	client.On("FPutObject", mock.Anything, "catalog", "archives/"+patchKey, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			delta := readZip(t, args.String(3))
			assert.Equal(t, map[string]string{"game.exe": "v2", "new.dat": "fresh"}, delta)
		}).
		Return(minio.UploadInfo{}, nil)

	archive, err := svc.Upload(context.Background(), UploadRequest{
		ObjectKey: patchKey,
		GameId:    &game.Id,
		Version:   "2.0",
		Changelog: "balance pass",
	})
	require.NoError(t, err)
	assert.Equal(t, patchKey, archive.ObjectKey)
	assert.Positive(t, archive.CompressedSize)

	// The prior row's recorded size reflects the rebuilt full archive.
	prior, err := store.ArchiveByObjectKey(context.Background(), baseKey)
	require.NoError(t, err)
	assert.Positive(t, prior.CompressedSize)

	latest, err := store.LatestArchive(context.Background(), &game.Id, nil)
	require.NoError(t, err)
	assert.Equal(t, "2.0", latest.Version)
	client.AssertExpectations(t)
}

func TestUpload_RequiresExactlyOneOwner(t *testing.T) {
	svc, _ := testService(t, &mocks.Client{})
	_, err := svc.Upload(context.Background(), UploadRequest{ObjectKey: uuid.NewString()})
	assert.Error(t, err)

	gameId, redistId := uuid.New(), uuid.New()
	_, err = svc.Upload(context.Background(), UploadRequest{
		ObjectKey: uuid.NewString(), GameId: &gameId, RedistributableId: &redistId,
	})
	assert.Error(t, err)
}

func TestUpload_RejectsPathLikeObjectKey(t *testing.T) {
	svc, _ := testService(t, &mocks.Client{})
	gameId := uuid.New()
	_, err := svc.Upload(context.Background(), UploadRequest{
		ObjectKey: "../escape.zip", GameId: &gameId,
	})
	assert.Error(t, err)
}
