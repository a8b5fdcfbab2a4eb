package socials

import (
	"pwsi/core/api"

	"github.com/gofiber/fiber/v2"
)

// Handler handles HTTP requests for socials.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the socials routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/socials")
	group.Get("/", h.HandleGet)
	group.Post("/", h.HandleAdd)
	group.Put("/", h.HandleUpdate)
	group.Delete("/", h.HandleDelete)
	group.Get("/reset", h.HandleReset)
}

// HandleGet returns every social sorted by order.
// @Summary List socials
// @Tags socials
// @Produce json
// @Router /socials [get]
func (h *Handler) HandleGet(c *fiber.Ctx) error {
	return api.Content(c, h.service.GetAll())
}

// HandleAdd inserts socials and answers with their ids (-1 for taken links).
// @Summary Add socials
// @Tags socials
// @Accept json
// @Produce json
// @Router /socials [post]
func (h *Handler) HandleAdd(c *fiber.Ctx) error {
	return api.Add(c, h.service.logger, h.service.Add)
}

// HandleUpdate applies patches and answers with a status per item.
func (h *Handler) HandleUpdate(c *fiber.Ctx) error {
	return api.Update(c, h.service.logger, h.service.Update)
}

// HandleDelete removes socials by id.
func (h *Handler) HandleDelete(c *fiber.Ctx) error {
	return api.Delete(c, h.service.logger, h.service.Delete)
}

// HandleReset truncates the table.
func (h *Handler) HandleReset(c *fiber.Ctx) error {
	return api.Reset(c, h.service.logger, h.service.Reset, "Socials were erased")
}
