package merch

import (
	"pwsi/core/api"

	"github.com/gofiber/fiber/v2"
)

// Handler handles HTTP requests for merch.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the merch routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/merch")
	group.Get("/", h.HandleGet)
	group.Post("/", h.HandleAdd)
	group.Put("/", h.HandleUpdate)
	group.Delete("/", h.HandleDelete)
	group.Get("/reset", h.HandleReset)
	group.Get("/status", h.HandleGetStatus)
	group.Put("/status", h.HandleSetStatus)
}

func (h *Handler) HandleGet(c *fiber.Ctx) error {
	return api.Content(c, h.service.GetAll())
}

// HandleAdd inserts a batch of merch with one order rewrite.
// @Summary Add merch
// @Tags merch
// @Accept json
// @Produce json
// @Router /merch [post]
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
	return api.Reset(c, h.service.logger, h.service.Reset, "Merch was erased")
}

func (h *Handler) HandleGetStatus(c *fiber.Ctx) error {
	return api.Content(c, h.service.Status())
}

func (h *Handler) HandleSetStatus(c *fiber.Ctx) error {
	var req StatusRequest
	if err := api.Parse(c, &req); err != nil {
		return api.Fail(c, h.service.logger, err)
	}
	if err := h.service.SetStatus(c.Context(), req.Status); err != nil {
		return api.Fail(c, h.service.logger, err)
	}
	return api.Content(c, "Merch status was updated")
}
