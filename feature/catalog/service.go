package catalog

import (
	"context"

	"catalog-manager/feature/catalog/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service exposes read access to the catalog.
type Service struct {
	store  *Store
	logger *zap.Logger
}

// NewService creates a new catalog service.
func NewService(store *Store, logger *zap.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// Store returns the underlying entity store.
func (s *Service) Store() *Store {
	return s.store
}

// Games lists all games in the catalog.
func (s *Service) Games(ctx context.Context) ([]models.Game, error) {
	return s.store.Games(ctx)
}

// Game returns one game with all relations, or nil when absent.
func (s *Service) Game(ctx context.Context, id uuid.UUID) (*models.Game, error) {
	return s.store.GameById(ctx, id)
}
