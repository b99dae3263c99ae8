package catalog

import (
	"context"
	"errors"
	"fmt"

	"catalog-manager/feature/catalog/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Store provides typed access to the catalog database.
type Store struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewStore creates a catalog store on top of an open GORM connection.
func NewStore(db *gorm.DB, logger *zap.Logger) *Store {
	return &Store{db: db, logger: logger}
}

// AutoMigrate creates or updates the catalog schema.
func (s *Store) AutoMigrate() error {
	if err := s.db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("failed to migrate catalog schema: %w", err)
	}
	return nil
}

// Transaction runs fn against a store bound to one database transaction.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx, logger: s.logger})
	})
}

// FindById loads one entity by primary key. Returns (nil, nil) when absent.
func FindById[T any](ctx context.Context, s *Store, id uuid.UUID) (*T, error) {
	var rec T
	err := s.db.WithContext(ctx).First(&rec, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// FindByName loads one entity by its case-sensitive natural name.
// Returns (nil, nil) when absent.
func FindByName[T any](ctx context.Context, s *Store, name string) (*T, error) {
	var rec T
	err := s.db.WithContext(ctx).First(&rec, "name = ?", name).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// Save upserts one entity.
func Save[T any](ctx context.Context, s *Store, rec *T) error {
	return s.db.WithContext(ctx).Save(rec).Error
}

// gameAssociations are the relation names replaced wholesale after
// reconciliation so that members dropped from the manifest are unlinked.
var gameAssociations = []string{
	"Collections", "Developers", "Publishers", "Genres", "Tags", "Platforms",
	"MultiplayerModes", "Media", "Archives", "Scripts",
}

// GameById loads a game with all of its relations. Returns (nil, nil) when absent.
func (s *Store) GameById(ctx context.Context, id uuid.UUID) (*models.Game, error) {
	var game models.Game
	q := s.db.WithContext(ctx).Preload("Engine")
	for _, assoc := range gameAssociations {
		q = q.Preload(assoc)
	}
	err := q.First(&game, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &game, nil
}

// Games lists the catalog without preloading relations.
func (s *Store) Games(ctx context.Context) ([]models.Game, error) {
	var games []models.Game
	if err := s.db.WithContext(ctx).Order("sort_title, title").Find(&games).Error; err != nil {
		return nil, err
	}
	return games, nil
}

// SaveGame persists a game and makes its stored relation sets equal to the
// in-memory ones: new members are created, kept members updated, and members
// removed by reconciliation are unlinked. Runs in one transaction so a failed
// import leaves the game untouched.
func (s *Store) SaveGame(ctx context.Context, game *models.Game) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{FullSaveAssociations: true}).Save(game).Error; err != nil {
			return fmt.Errorf("failed to save game %s: %w", game.Id, err)
		}
		for _, assoc := range gameAssociations {
			val, err := associationValue(game, assoc)
			if err != nil {
				return err
			}
			if err := tx.Model(game).Association(assoc).Replace(val); err != nil {
				return fmt.Errorf("failed to replace %s for game %s: %w", assoc, game.Id, err)
			}
		}
		return nil
	})
}

func associationValue(game *models.Game, assoc string) (any, error) {
	switch assoc {
	case "Collections":
		return game.Collections, nil
	case "Developers":
		return game.Developers, nil
	case "Publishers":
		return game.Publishers, nil
	case "Genres":
		return game.Genres, nil
	case "Tags":
		return game.Tags, nil
	case "Platforms":
		return game.Platforms, nil
	case "MultiplayerModes":
		return game.MultiplayerModes, nil
	case "Media":
		return game.Media, nil
	case "Archives":
		return game.Archives, nil
	case "Scripts":
		return game.Scripts, nil
	default:
		return nil, fmt.Errorf("unknown game association %q", assoc)
	}
}

// ModesForGame lists a game's multiplayer modes.
func (s *Store) ModesForGame(ctx context.Context, gameId uuid.UUID) ([]models.MultiplayerMode, error) {
	var modes []models.MultiplayerMode
	err := s.db.WithContext(ctx).Where("game_id = ?", gameId).Find(&modes).Error
	if err != nil {
		return nil, err
	}
	return modes, nil
}

// ToolById loads a tool with its games, archives and scripts. Returns
// (nil, nil) when absent.
func (s *Store) ToolById(ctx context.Context, id uuid.UUID) (*models.Tool, error) {
	var tool models.Tool
	err := s.db.WithContext(ctx).
		Preload("Games").Preload("Archives").Preload("Scripts").
		First(&tool, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &tool, nil
}

// SaveTool persists a tool and replaces its game membership, archive and
// script sets.
func (s *Store) SaveTool(ctx context.Context, tool *models.Tool) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Games").Session(&gorm.Session{FullSaveAssociations: true}).Save(tool).Error; err != nil {
			return fmt.Errorf("failed to save tool %s: %w", tool.Id, err)
		}
		if err := tx.Model(tool).Association("Games").Replace(tool.Games); err != nil {
			return fmt.Errorf("failed to replace games for tool %s: %w", tool.Id, err)
		}
		if err := tx.Model(tool).Association("Archives").Replace(tool.Archives); err != nil {
			return err
		}
		return tx.Model(tool).Association("Scripts").Replace(tool.Scripts)
	})
}

// ServerById loads a game server with its scripts. Returns (nil, nil) when absent.
func (s *Store) ServerById(ctx context.Context, id uuid.UUID) (*models.Server, error) {
	var srv models.Server
	err := s.db.WithContext(ctx).Preload("Scripts").First(&srv, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &srv, nil
}

// SaveServer persists a game server and its scripts.
func (s *Store) SaveServer(ctx context.Context, srv *models.Server) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{FullSaveAssociations: true}).Save(srv).Error; err != nil {
			return fmt.Errorf("failed to save server %s: %w", srv.Id, err)
		}
		return tx.Model(srv).Association("Scripts").Replace(srv.Scripts)
	})
}

// RedistributableByName loads a redistributable with its archives and scripts.
// Returns (nil, nil) when absent.
func (s *Store) RedistributableByName(ctx context.Context, name string) (*models.Redistributable, error) {
	var redist models.Redistributable
	err := s.db.WithContext(ctx).
		Preload("Archives").Preload("Scripts").
		First(&redist, "name = ?", name).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &redist, nil
}

// SaveRedistributable persists a redistributable and its archives and scripts.
func (s *Store) SaveRedistributable(ctx context.Context, redist *models.Redistributable) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{FullSaveAssociations: true}).Save(redist).Error; err != nil {
			return fmt.Errorf("failed to save redistributable %s: %w", redist.Id, err)
		}
		if err := tx.Model(redist).Association("Archives").Replace(redist.Archives); err != nil {
			return err
		}
		return tx.Model(redist).Association("Scripts").Replace(redist.Scripts)
	})
}

// LatestArchive returns the newest archive owned by a game or redistributable,
// or (nil, nil) when the owner has none.
func (s *Store) LatestArchive(ctx context.Context, gameId, redistributableId *uuid.UUID) (*models.Archive, error) {
	q := s.db.WithContext(ctx).Order("created_on DESC")
	switch {
	case gameId != nil:
		q = q.Where("game_id = ?", *gameId)
	case redistributableId != nil:
		q = q.Where("redistributable_id = ?", *redistributableId)
	default:
		return nil, errors.New("archive owner required")
	}
	var archive models.Archive
	err := q.First(&archive).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &archive, nil
}

// ArchiveByObjectKey resolves an archive record from its storage key.
// Returns (nil, nil) when absent.
func (s *Store) ArchiveByObjectKey(ctx context.Context, objectKey string) (*models.Archive, error) {
	var archive models.Archive
	err := s.db.WithContext(ctx).First(&archive, "object_key = ?", objectKey).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &archive, nil
}

// DefaultLibrary returns the library imports register games into, creating it
// on first use.
func (s *Store) DefaultLibrary(ctx context.Context) (*models.Library, error) {
	var lib models.Library
	err := s.db.WithContext(ctx).Where(models.Library{Name: "Default"}).FirstOrCreate(&lib).Error
	if err != nil {
		return nil, fmt.Errorf("failed to open default library: %w", err)
	}
	return &lib, nil
}

// AddToLibrary registers a game in a library. Adding a game twice is a no-op.
func (s *Store) AddToLibrary(ctx context.Context, lib *models.Library, game *models.Game) error {
	if lib == nil {
		return nil
	}
	var n int64
	err := s.db.WithContext(ctx).Table("library_games").
		Where("library_id = ? AND game_id = ?", lib.Id, game.Id).
		Count(&n).Error
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	return s.db.WithContext(ctx).Model(lib).Association("Games").Append(game)
}
