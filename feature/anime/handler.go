package anime

import (
	"pwsi/core/api"

	"github.com/gofiber/fiber/v2"
)

// Handler handles HTTP requests for the anime list.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the anime routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/anime")
	group.Get("/", h.HandleGet)
	group.Post("/", h.HandleAdd)
	group.Put("/", h.HandleUpdate)
	group.Delete("/", h.HandleDelete)
	group.Get("/reset", h.HandleReset)
	group.Get("/customers", h.HandleCustomers)
}

// HandleGet returns the aggregated list.
// @Summary List anime
// @Tags anime
// @Param raw query bool false "plain rows by id"
// @Produce json
// @Router /anime [get]
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
	return api.Reset(c, h.service.logger, h.service.Reset, "Anime were erased")
}

// HandleCustomers returns the titles grouped by who ordered them.
func (h *Handler) HandleCustomers(c *fiber.Ctx) error {
	report, err := h.service.Customers(c.UserContext())
	if err != nil {
		return api.Fail(c, h.service.logger, err)
	}
	return api.Content(c, report)
}
