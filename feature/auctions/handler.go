package auctions

import (
	"pwsi/core/api"

	"github.com/gofiber/fiber/v2"
)

// Handler handles HTTP requests for auctions.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the auctions routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/auctions")
	group.Get("/", h.HandleGet)
	group.Post("/", h.HandleAdd)
	group.Put("/", h.HandleUpdate)
	group.Delete("/", h.HandleDelete)
	group.Get("/reset", h.HandleReset)
}

// HandleGet returns the grouped auctions; ?raw=true lists the plain rows.
func (h *Handler) HandleGet(c *fiber.Ctx) error {
	return api.Content(c, h.service.GetAll(c.QueryBool("raw")))
}

func (h *Handler) HandleAdd(c *fiber.Ctx) error {
	return api.Add(c, h.service.logger, h.service.Add)
}

func (h *Handler) HandleUpdate(c *fiber.Ctx) error {
	return api.Update(c, h.service.logger, h.service.Update)
}

func (h *Handler) HandleDelete(c *fiber.Ctx) error {
	return api.Delete(c, h.service.logger, h.service.Delete)
}

func (h *Handler) HandleReset(c *fiber.Ctx) error {
	return api.Reset(c, h.service.logger, h.service.Reset, "Auctions were erased")
}
