package archive

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"catalog-manager/core/server"
	"catalog-manager/core/storage"
	"catalog-manager/feature/catalog"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	service *Service
	handler *Handler
}

// NewFeature creates a new Archive feature.
func NewFeature(store *catalog.Store, client storage.Client, bucket string, srvCfg server.Config, logger *zap.Logger) *Feature {
	svc := NewService(store, client, bucket, srvCfg, logger)
	h := NewHandler(svc, logger)
	return &Feature{service: svc, handler: h}
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "archive"
}

// IsEnabled checks if the feature is enabled.
func (f *Feature) IsEnabled() bool {
	return true
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app)
	return nil
}
