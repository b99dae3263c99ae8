package sync

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"

	"catalog-manager/core/manifest"
	"catalog-manager/core/storage"
	"catalog-manager/feature/catalog/models"
)

// ErrNotFound is returned when the entity to export is not in the catalog.
var ErrNotFound = errors.New("entity not found")

// ExportGame writes a complete game package to w: manifest, script bodies,
// media binaries and archive payloads. The output of an export round-trips
// through import unchanged.
func (s *Service) ExportGame(ctx context.Context, id uuid.UUID, w io.Writer) error {
	game, err := s.store.GameById(ctx, id)
	if err != nil {
		return err
	}
	if game == nil {
		return ErrNotFound
	}

	rec := ManifestForGame(game)
	zw := zip.NewWriter(w)
	if err := writeManifest(zw, rec); err != nil {
		return err
	}
	if err := s.writeScripts(zw, game.Scripts); err != nil {
		return err
	}
	for _, m := range game.Media {
		s.writeObject(ctx, zw, manifest.MediaPrefix+m.FileId.String(), storage.MediaPrefix+m.FileId.String())
	}
	for _, a := range game.Archives {
		s.writeObject(ctx, zw, manifest.ArchivesPrefix+a.ObjectKey, storage.ArchivePrefix+a.ObjectKey)
	}
	return zw.Close()
}

func (s *Service) ExportTool(ctx context.Context, id uuid.UUID, w io.Writer) error {
	tool, err := s.store.ToolById(ctx, id)
	if err != nil {
		return err
	}
	if tool == nil {
		return ErrNotFound
	}

	rec := ManifestForTool(tool)
	zw := zip.NewWriter(w)
	if err := writeManifest(zw, rec); err != nil {
		return err
	}
	if err := s.writeScripts(zw, tool.Scripts); err != nil {
		return err
	}
	for _, a := range tool.Archives {
		s.writeObject(ctx, zw, manifest.ArchivesPrefix+a.ObjectKey, storage.ArchivePrefix+a.ObjectKey)
	}
	return zw.Close()
}

func (s *Service) ExportServer(ctx context.Context, id uuid.UUID, w io.Writer) error {
	srv, err := s.store.ServerById(ctx, id)
	if err != nil {
		return err
	}
	if srv == nil {
		return ErrNotFound
	}

	rec := ManifestForServer(srv)
	zw := zip.NewWriter(w)
	if err := writeManifest(zw, rec); err != nil {
		return err
	}
	if err := s.writeScripts(zw, srv.Scripts); err != nil {
		return err
	}
	if err := s.writeServerFiles(zw, srv.Id); err != nil {
		return err
	}
	return zw.Close()
}

func (s *Service) ExportRedistributable(ctx context.Context, name string, w io.Writer) error {
	redist, err := s.store.RedistributableByName(ctx, name)
	if err != nil {
		return err
	}
	if redist == nil {
		return ErrNotFound
	}

	rec := ManifestForRedistributable(redist)
	zw := zip.NewWriter(w)
	if err := writeManifest(zw, rec); err != nil {
		return err
	}
	if err := s.writeScripts(zw, redist.Scripts); err != nil {
		return err
	}
	for _, a := range redist.Archives {
		s.writeObject(ctx, zw, manifest.ArchivesPrefix+a.ObjectKey, storage.ArchivePrefix+a.ObjectKey)
	}
	return zw.Close()
}

func writeManifest(zw *zip.Writer, rec any) error {
	mw, err := zw.Create(manifest.Filename)
	if err != nil {
		return fmt.Errorf("failed to create manifest entry: %w", err)
	}
	return manifest.Encode(mw, rec)
}

func (s *Service) writeScripts(zw *zip.Writer, scripts []models.Script) error {
	for _, sc := range scripts {
		ew, err := zw.Create(manifest.ScriptsPrefix + sc.Id.String())
		if err != nil {
			return fmt.Errorf("failed to create script entry: %w", err)
		}
		if _, err := ew.Write([]byte(sc.Contents)); err != nil {
			return fmt.Errorf("failed to write script %s: %w", sc.Id, err)
		}
	}
	return nil
}

// writeObject copies one stored binary into the package. A missing object is
// logged and skipped: the manifest still names it, and the importing side can
// recover media from its source url or fail that entity alone.
func (s *Service) writeObject(ctx context.Context, zw *zip.Writer, entry, key string) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		s.logger.Warn("skipping missing object in export", zap.String("key", key), zap.Error(err))
		return
	}
	defer obj.Close()
	ew, err := zw.Create(entry)
	if err != nil {
		s.logger.Warn("failed to create package entry", zap.String("entry", entry), zap.Error(err))
		return
	}
	if _, err := io.Copy(ew, obj); err != nil {
		s.logger.Warn("failed to copy object into package", zap.String("key", key), zap.Error(err))
	}
}

// writeServerFiles packs the server's working directory under Files/,
// including empty directories so the layout survives the round trip.
func (s *Service) writeServerFiles(zw *zip.Writer, serverId uuid.UUID) error {
	root := filepath.Join(s.srvCfg.ServerFilesDir, serverId.String())
	if _, err := os.Stat(root); os.IsNotExist(err) {
		return nil
	}
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		name := manifest.FilesPrefix + filepath.ToSlash(rel)
		if d.IsDir() {
			_, err := zw.Create(name + "/")
			return err
		}
		ew, err := zw.Create(name)
		if err != nil {
			return err
		}
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		_, err = io.Copy(ew, f)
		return err
	})
}

// ManifestForGame builds the manifest record for a fully loaded game graph.
func ManifestForGame(game *models.Game) *manifest.Game {
	rec := &manifest.Game{
		Id:          game.Id,
		Title:       game.Title,
		SortTitle:   game.SortTitle,
		Description: game.Description,
		Notes:       game.Notes,
		ReleasedOn:  game.ReleasedOn,
		CreatedOn:   game.CreatedOn,
		UpdatedOn:   game.UpdatedOn,
		Collections: namesOf(game.Collections, func(c models.Collection) string { return c.Name }),
		Developers:  namesOf(game.Developers, func(c models.Company) string { return c.Name }),
		Publishers:  namesOf(game.Publishers, func(c models.Company) string { return c.Name }),
		Genres:      namesOf(game.Genres, func(g models.Genre) string { return g.Name }),
		Tags:        namesOf(game.Tags, func(t models.Tag) string { return t.Name }),
		Platforms:   namesOf(game.Platforms, func(p models.Platform) string { return p.Name }),
	}
	if game.Engine != nil {
		rec.Engine = game.Engine.Name
	}
	for _, m := range game.MultiplayerModes {
		rec.MultiplayerModes = append(rec.MultiplayerModes, manifest.MultiplayerMode{
			Type:            m.Type,
			NetworkProtocol: m.NetworkProtocol,
			Description:     m.Description,
			MinPlayers:      m.MinPlayers,
			MaxPlayers:      m.MaxPlayers,
			Spectators:      m.Spectators,
		})
	}
	for _, m := range game.Media {
		rec.Media = append(rec.Media, manifest.Media{
			Id:        m.Id,
			FileId:    m.FileId,
			Type:      m.Type,
			SourceUrl: m.SourceUrl,
			MimeType:  m.MimeType,
			Crc32:     m.Crc32,
			CreatedOn: m.CreatedOn,
			UpdatedOn: m.UpdatedOn,
		})
	}
	rec.Archives = manifestArchives(game.Archives)
	rec.Scripts = manifestScripts(game.Scripts)
	return rec
}

func ManifestForTool(tool *models.Tool) *manifest.Tool {
	rec := &manifest.Tool{
		Id:          tool.Id,
		Name:        tool.Name,
		Description: tool.Description,
		CreatedOn:   tool.CreatedOn,
		UpdatedOn:   tool.UpdatedOn,
		Archives:    manifestArchives(tool.Archives),
		Scripts:     manifestScripts(tool.Scripts),
	}
	for _, g := range tool.Games {
		rec.Games = append(rec.Games, g.Id)
	}
	return rec
}

func ManifestForServer(srv *models.Server) *manifest.Server {
	rec := &manifest.Server{
		Id:               srv.Id,
		Name:             srv.Name,
		Path:             srv.Path,
		Arguments:        srv.Arguments,
		WorkingDirectory: srv.WorkingDirectory,
		Host:             srv.Host,
		Port:             srv.Port,
		Autostart:        srv.Autostart,
		CreatedOn:        srv.CreatedOn,
		UpdatedOn:        srv.UpdatedOn,
		Scripts:          manifestScripts(srv.Scripts),
	}
	if srv.GameId != nil {
		rec.GameId = *srv.GameId
	}
	return rec
}

func ManifestForRedistributable(redist *models.Redistributable) *manifest.Redistributable {
	return &manifest.Redistributable{
		Name:        redist.Name,
		Description: redist.Description,
		Notes:       redist.Notes,
		CreatedOn:   redist.CreatedOn,
		UpdatedOn:   redist.UpdatedOn,
		Archives:    manifestArchives(redist.Archives),
		Scripts:     manifestScripts(redist.Scripts),
	}
}

func manifestArchives(archives []models.Archive) []manifest.Archive {
	var out []manifest.Archive
	for _, a := range archives {
		out = append(out, manifest.Archive{
			Id:             a.Id,
			ObjectKey:      a.ObjectKey,
			Version:        a.Version,
			Changelog:      a.Changelog,
			CompressedSize: a.CompressedSize,
			CreatedOn:      a.CreatedOn,
			UpdatedOn:      a.UpdatedOn,
		})
	}
	return out
}

func manifestScripts(scripts []models.Script) []manifest.Script {
	var out []manifest.Script
	for _, sc := range scripts {
		out = append(out, manifest.Script{
			Id:            sc.Id,
			Type:          sc.Type,
			Name:          sc.Name,
			RequiresAdmin: sc.RequiresAdmin,
			CreatedOn:     sc.CreatedOn,
			UpdatedOn:     sc.UpdatedOn,
		})
	}
	return out
}

func namesOf[T any](items []T, nameOf func(T) string) []string {
	var out []string
	for _, it := range items {
		out = append(out, nameOf(it))
	}
	return out
}

// exportFilename is the download name for an exported package.
func exportFilename(name string) string {
	name = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, name)
	return name + ".zip"
}
