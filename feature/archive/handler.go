package archive

import (
	"github.com/gofiber/fiber/v2"
	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"

	"catalog-manager/core/logger"
)

// Handler handles HTTP requests for archive versioning.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes registers the archive routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/archives")
	group.Post("/upload", h.HandleUpload)
	group.Get("/:objectKey", h.HandleDownload)
}

// HandleUpload records a staged archive as a new version for its owner.
// @Summary Upload Archive Version
// @Description Ingest a staged archive; patches against the prior version when one exists.
// @Tags archive
// @Accept json
// @Produce json
// @Param request body UploadRequest true "Upload request"
// @Success 200 {object} models.Archive "Archive"
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /archives/upload [post]
func (h *Handler) HandleUpload(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)

	var req UploadRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	archive, err := h.service.Upload(c.Context(), req)
	if err != nil {
		l.Error("Archive upload failed", zap.Error(err), zap.String("object_key", req.ObjectKey))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(archive)
}

// HandleDownload streams a stored archive.
// @Summary Download Archive
// @Description Stream an archive (full version or patch) by object key.
// @Tags archive
// @Produce application/zip
// @Param objectKey path string true "Object key"
// @Success 200 {file} file "Archive"
// @Failure 404 {object} map[string]string "Not Found"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /archives/{objectKey} [get]
func (h *Handler) HandleDownload(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)

	archive, key, err := h.service.Download(c.Context(), c.Params("objectKey"))
	if err != nil {
		l.Error("Archive lookup failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	if archive == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "archive not found",
		})
	}

	obj, err := h.service.client.GetObject(c.Context(), h.service.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		l.Error("Archive download failed", zap.Error(err), zap.String("key", key))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	c.Set(fiber.HeaderContentType, "application/zip")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+archive.ObjectKey+`.zip"`)
	return c.SendStream(obj)
}
