package games

import (
	"strings"

	"pwsi/core/api"

	"github.com/gofiber/fiber/v2"
)

// Handler handles HTTP requests for games.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the games routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/games")
	group.Get("/", h.HandleGet)
	group.Post("/", h.HandleAdd)
	group.Put("/", h.HandleUpdate)
	group.Delete("/", h.HandleDelete)
	group.Get("/genres", h.HandleGenres)
	group.Put("/genres", h.HandleUpdateGenres)
	group.Get("/types", h.HandleTypes)
	group.Get("/reset", h.HandleReset)
	group.Get("/customers", h.HandleCustomers)
}

// HandleGet returns the games by type; repeat ?types= to pick buckets.
// @Summary List games
// @Tags games
// @Param types query []string false "buckets to return"
// @Produce json
// @Router /games [get]
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

// HandleGenres returns the genres of ?genre=<type>.
func (h *Handler) HandleGenres(c *fiber.Ctx) error {
	return api.Content(c, h.service.Genres(c.Query("genre", DefaultType)))
}

func (h *Handler) HandleUpdateGenres(c *fiber.Ctx) error {
	return api.Update(c, h.service.logger, h.service.UpdateGenres)
}

func (h *Handler) HandleTypes(c *fiber.Ctx) error {
	return api.Content(c, h.service.Types())
}

func (h *Handler) HandleReset(c *fiber.Ctx) error {
	return api.Reset(c, h.service.logger, h.service.Reset, "Games were erased")
}

func (h *Handler) HandleCustomers(c *fiber.Ctx) error {
	report, err := h.service.Customers(c.UserContext())
	if err != nil {
		return api.Fail(c, h.service.logger, err)
	}
	return api.Content(c, report)
}
