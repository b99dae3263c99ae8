package catalog

import (
	"catalog-manager/core/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for the catalog.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the catalog routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/games")
	group.Get("/", h.HandleListGames)
	group.Get("/:id", h.HandleGetGame)
}

// HandleListGames returns all games without relations.
// @Summary List Games
// @Description List every game in the catalog.
// @Tags catalog
// @Produce json
// @Success 200 {array} models.Game "Games"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /games [get]
func (h *Handler) HandleListGames(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	games, err := h.service.Games(c.Context())
	if err != nil {
		l.Error("Failed to list games", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(games)
}

// HandleGetGame returns one game with all of its relations.
// @Summary Get Game
// @Description Get a game and its relations by id.
// @Tags catalog
// @Produce json
// @Param id path string true "Game Id"
// @Success 200 {object} models.Game "Game"
// @Failure 404 {object} map[string]string "Not Found"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /games/{id} [get]
func (h *Handler) HandleGetGame(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid game id",
		})
	}

	game, err := h.service.Game(c.Context(), id)
	if err != nil {
		l.Error("Failed to load game", zap.Error(err), zap.String("game_id", id.String()))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	if game == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "game not found",
		})
	}

	return c.JSON(game)
}
