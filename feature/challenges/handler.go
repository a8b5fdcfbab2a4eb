package challenges

import (
	"strings"

	"pwsi/core/api"

	"github.com/gofiber/fiber/v2"
)

// Handler handles HTTP requests for challenges.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the challenges routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/challenges")
	group.Get("/", h.HandleGet)
	group.Post("/", h.HandleAdd)
	group.Put("/", h.HandleUpdate)
	group.Delete("/", h.HandleDelete)
	group.Get("/reset", h.HandleReset)
}

// HandleGet returns the challenges by type.
func (h *Handler) HandleGet(c *fiber.Ctx) error {
	var types []string
	for _, v := range c.Context().QueryArgs().PeekMulti("types") {
		for _, t := range strings.Split(string(v), ",") {
			if t = strings.TrimSpace(t); t != "" {
				types = append(types, t)
			}
		}
	}
	return api.Content(c, h.service.GetAll(types))
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
	return api.Reset(c, h.service.logger, h.service.Reset, "Challenges were erased")
}
