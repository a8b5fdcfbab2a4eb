package admin

import (
	"fmt"

	"pwsi/core/api"

	"github.com/gofiber/fiber/v2"
)

// Handler handles the admin HTTP requests.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the admin routes. Every route requires the API
// key, reads included.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/admin")
	group.Get("/resources", h.HandleResources)
	group.Post("/reset/:resource", h.HandleReset)
	group.Post("/backup", h.HandleBackup)
	group.Get("/backup/:resource", h.HandleSnapshots)
	group.Get("/backup/:resource/latest", h.HandleLatest)
}

// HandleResources lists the registered resources.
// @Summary List resources
// @Tags admin
// @Produce json
// @Router /admin/resources [get]
func (h *Handler) HandleResources(c *fiber.Ctx) error {
	return api.Content(c, h.service.Resources())
}

// HandleReset resets one resource by name.
// @Summary Reset a resource
// @Tags admin
// @Param resource path string true "resource name"
// @Router /admin/reset/{resource} [post]
func (h *Handler) HandleReset(c *fiber.Ctx) error {
	name := c.Params("resource")
	if err := h.service.Reset(c.Context(), name); err != nil {
		return api.Fail(c, h.service.logger, err)
	}
	return api.Content(c, fmt.Sprintf("%s was reset", name))
}

func (h *Handler) HandleBackup(c *fiber.Ctx) error {
	report, err := h.service.Backup(c.Context())
	if err != nil {
		return api.Fail(c, h.service.logger, err)
	}
	return api.Content(c, report)
}

func (h *Handler) HandleSnapshots(c *fiber.Ctx) error {
	keys, err := h.service.Snapshots(c.Context(), c.Params("resource"))
	if err != nil {
		return api.Fail(c, h.service.logger, err)
	}
	return api.Content(c, keys)
}

// HandleLatest answers the newest snapshot body as it was stored.
func (h *Handler) HandleLatest(c *fiber.Ctx) error {
	body, err := h.service.Latest(c.Context(), c.Params("resource"))
	if err != nil {
		return api.Fail(c, h.service.logger, err)
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(body)
}
