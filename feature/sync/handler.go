package sync

import (
	"bytes"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"catalog-manager/core/logger"
	"catalog-manager/core/manifest"
)

// Handler handles HTTP requests for package import and export.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes registers the sync routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/sync")
	group.Post("/upload", h.HandleUpload)
	group.Post("/import", h.HandleImport)
	group.Get("/export/:type/:id", h.HandleExport)
}

type importRequest struct {
	ObjectKey string `json:"object_key"`
	Type      string `json:"type"`
}

type uploadResponse struct {
	ObjectKey string `json:"object_key"`
}

// HandleUpload stages a package file for a later import call.
// @Summary Upload Package
// @Description Stage a sync package; returns the object key to import it with.
// @Tags sync
// @Accept mpfd
// @Produce json
// @Param file formData file true "Package zip"
// @Success 200 {object} uploadResponse "Staged"
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /sync/upload [post]
func (h *Handler) HandleUpload(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)

	file, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "missing file",
		})
	}

	key := uuid.NewString()
	path := h.service.srvCfg.StagedPath(key)
	if err := c.SaveFile(file, path); err != nil {
		l.Error("Failed to stage package", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(uploadResponse{ObjectKey: key})
}

// HandleImport runs an import batch for a staged package.
// @Summary Import Package
// @Description Import a staged sync package and report per-entity results.
// @Tags sync
// @Accept json
// @Produce json
// @Param request body importRequest true "Import request"
// @Success 200 {object} Report "Import report"
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /sync/import [post]
func (h *Handler) HandleImport(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)

	var req importRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}
	typ := manifest.EntityType(req.Type)
	if !typ.Valid() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "unknown entity type",
		})
	}

	report, err := h.service.ImportStaged(c.Context(), req.ObjectKey, typ)
	if err != nil {
		l.Error("Import failed", zap.Error(err), zap.String("object_key", req.ObjectKey))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	l.Info("Import finished",
		zap.Int("added", report.Added),
		zap.Int("updated", report.Updated),
		zap.Int("skipped", report.Skipped),
		zap.Int("failed", report.Failed))
	return c.JSON(report)
}

// HandleExport streams an entity as a sync package.
// @Summary Export Package
// @Description Export an entity and its payloads as a zip package.
// @Tags sync
// @Produce application/zip
// @Param type path string true "Entity type" Enums(Game, Tool, Server, Redistributable)
// @Param id path string true "Entity id (name for redistributables)"
// @Success 200 {file} file "Package"
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 404 {object} map[string]string "Not Found"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /sync/export/{type}/{id} [get]
func (h *Handler) HandleExport(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)

	typ := manifest.EntityType(c.Params("type"))
	if !typ.Valid() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "unknown entity type",
		})
	}
	// Packages are assembled in memory so a missing entity can still
	// produce a clean 404 before any bytes go out.
	var buf bytes.Buffer
	name := c.Params("id")
	var err error

	switch typ {
	case manifest.TypeRedistributable:
		err = h.service.ExportRedistributable(c.Context(), name, &buf)
	default:
		var id uuid.UUID
		id, err = uuid.Parse(c.Params("id"))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid entity id",
			})
		}
		switch typ {
		case manifest.TypeGame:
			err = h.service.ExportGame(c.Context(), id, &buf)
		case manifest.TypeTool:
			err = h.service.ExportTool(c.Context(), id, &buf)
		case manifest.TypeServer:
			err = h.service.ExportServer(c.Context(), id, &buf)
		}
	}

	if errors.Is(err, ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "entity not found",
		})
	}
	if err != nil {
		l.Error("Export failed", zap.Error(err), zap.String("type", string(typ)))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	c.Set(fiber.HeaderContentType, "application/zip")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+exportFilename(name)+`"`)
	return c.Send(buf.Bytes())
}
