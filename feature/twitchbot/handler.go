package twitchbot

import (
	"fmt"

	"pwsi/core/api"
	"pwsi/core/apperr"
	"pwsi/core/registry"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for the bot lists and counters.
type Handler struct {
	lists    map[registry.Name]*List
	counters map[string]*Counters
	logger   *zap.Logger
}

// NewHandler creates a new HTTP handler. Counters are addressed by their
// stored type.
func NewHandler(lists map[registry.Name]*List, counters map[registry.Name]*Counters, logger *zap.Logger) *Handler {
	byType := make(map[string]*Counters, len(counters))
	for name, c := range counters {
		byType[CounterTypes[name]] = c
	}
	return &Handler{lists: lists, counters: byType, logger: logger}
}

// RegisterRoutes registers the twitch bot routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/twitchbot")

	lists := group.Group("/lists/:category")
	lists.Get("/", h.withList(func(c *fiber.Ctx, l *List) error { return api.Content(c, l.GetAll()) }))
	lists.Post("/", h.withList(func(c *fiber.Ctx, l *List) error { return api.Add(c, h.logger, l.Add) }))
	lists.Put("/", h.withList(func(c *fiber.Ctx, l *List) error { return api.Update(c, h.logger, l.Update) }))
	lists.Delete("/", h.withList(func(c *fiber.Ctx, l *List) error { return api.Delete(c, h.logger, l.Delete) }))
	lists.Get("/random", h.withList(func(c *fiber.Ctx, l *List) error { return api.Content(c, l.Random()) }))
	lists.Get("/has", h.withList(func(c *fiber.Ctx, l *List) error { return api.Content(c, l.Has(c.Query("value"))) }))
	lists.Get("/reset", h.withList(func(c *fiber.Ctx, l *List) error {
		return api.Reset(c, h.logger, l.Reset, fmt.Sprintf("List %s was erased", l.category))
	}))

	counters := group.Group("/counters/:type")
	counters.Get("/", h.withCounters(func(c *fiber.Ctx, s *Counters) error { return api.Content(c, s.GetAll()) }))
	counters.Put("/", h.withCounters(h.handleSet))
	counters.Get("/names", h.withCounters(func(c *fiber.Ctx, s *Counters) error { return api.Content(c, s.Names()) }))
	counters.Get("/reset", h.withCounters(func(c *fiber.Ctx, s *Counters) error {
		return api.Reset(c, h.logger, s.Reset, fmt.Sprintf("Counters %s were erased", s.kind))
	}))
	counters.Get("/:name", h.withCounters(h.handleValue))
	counters.Post("/:name", h.withCounters(h.handleIncrement))
}

func (h *Handler) withList(fn func(c *fiber.Ctx, l *List) error) fiber.Handler {
	return func(c *fiber.Ctx) error {
		n, _ := registry.Parse(c.Params("category"))
		l, ok := h.lists[n]
		if !ok {
			return api.Fail(c, h.logger, fmt.Errorf("list %q: %w", c.Params("category"), apperr.ErrNotFound))
		}
		return fn(c, l)
	}
}

func (h *Handler) withCounters(fn func(c *fiber.Ctx, s *Counters) error) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s, ok := h.counters[c.Params("type")]
		if !ok {
			return api.Fail(c, h.logger, fmt.Errorf("counter type %q: %w", c.Params("type"), apperr.ErrNotFound))
		}
		return fn(c, s)
	}
}

func (h *Handler) handleSet(c *fiber.Ctx, s *Counters) error {
	var req CounterSet
	if err := api.Parse(c, &req); err != nil {
		return api.Fail(c, h.logger, err)
	}
	outcome, err := s.Set(c.Context(), req)
	if err != nil {
		return api.Fail(c, h.logger, err)
	}
	return api.Content(c, outcome)
}

func (h *Handler) handleValue(c *fiber.Ctx, s *Counters) error {
	v, ok := s.Value(c.Params("name"))
	if !ok {
		return api.Fail(c, h.logger, fmt.Errorf("counter %q: %w", c.Params("name"), apperr.ErrNotFound))
	}
	return api.Content(c, v)
}

// handleIncrement adds ?by= (default 1). ?delay=false skips the delay check.
func (h *Handler) handleIncrement(c *fiber.Ctx, s *Counters) error {
	v, err := s.Increment(c.Context(), c.Params("name"), c.QueryInt("by", 1), c.QueryBool("delay", true))
	if err != nil {
		return api.Fail(c, h.logger, err)
	}
	return api.Content(c, v)
}
