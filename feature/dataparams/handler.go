package dataparams

import (
	"pwsi/core/api"

	"github.com/gofiber/fiber/v2"
)

// Handler handles HTTP requests for data params and the site message
// settings stored in them.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the data params and site routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/data_params")
	group.Get("/", h.HandleGetAll)
	group.Get("/reset", h.HandleReset)
	group.Get("/:name", h.HandleGet)
	group.Post("/", h.HandleAdd)
	group.Put("/", h.HandleUpdate)
	group.Delete("/", h.HandleDelete)

	site := app.Group("/site")
	site.Put("/message", h.HandleMessageEnabled)
	site.Get("/message/title", h.HandleGetTitle)
	site.Put("/message/title", h.HandleUpdateTitle)
}

func (h *Handler) HandleGetAll(c *fiber.Ctx) error {
	return api.Content(c, h.service.GetAll())
}

// HandleGet returns the value of one param, null when it does not exist.
func (h *Handler) HandleGet(c *fiber.Ctx) error {
	v, _ := h.service.Get(c.Params("name"))
	return api.Content(c, v)
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
	return api.Reset(c, h.service.logger, h.service.Reset, "Data Params were erased")
}

type enabled struct {
	Value bool `json:"value"`
}

type title struct {
	Text     string `json:"text"`
	Visible  bool   `json:"visible"`
	Editable bool   `json:"editable"`
}

// HandleMessageEnabled toggles the site messages form.
func (h *Handler) HandleMessageEnabled(c *fiber.Ctx) error {
	var body enabled
	if err := api.Parse(c, &body); err != nil {
		return api.Fail(c, h.service.logger, err)
	}
	if err := h.service.Set(c.Context(), Bool(SiteMessagesEnabled, body.Value)); err != nil {
		return api.Fail(c, h.service.logger, err)
	}
	if body.Value {
		return api.Content(c, "Set to true")
	}
	return api.Content(c, "Set to false")
}

// HandleGetTitle returns the site message title settings.
func (h *Handler) HandleGetTitle(c *fiber.Ctx) error {
	return api.Content(c, title{
		Text:     h.service.String(SiteMessagesTitleText),
		Visible:  h.service.Bool(SiteMessagesTitleVisible),
		Editable: h.service.Bool(SiteMessagesTitleEditable),
	})
}

// HandleUpdateTitle replaces the site message title settings.
func (h *Handler) HandleUpdateTitle(c *fiber.Ctx) error {
	var body title
	if err := api.Parse(c, &body); err != nil {
		return api.Fail(c, h.service.logger, err)
	}
	_, err := h.service.Update(c.Context(), []Param{
		String(SiteMessagesTitleText, body.Text),
		Bool(SiteMessagesTitleVisible, body.Visible),
		Bool(SiteMessagesTitleEditable, body.Editable),
	})
	if err != nil {
		return api.Fail(c, h.service.logger, err)
	}
	return api.Content(c, "Message title params were changed")
}
