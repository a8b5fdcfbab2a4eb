package auth_test

import (
	"net/http/httptest"
	"strings"
	"testing"

	"pwsi/core/middleware/auth"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

func newApp(cfg auth.Config) *fiber.App {
	app := fiber.New()
	app.Use(auth.New(cfg))
	app.All("/api/socials", func(c *fiber.Ctx) error { return c.SendStatus(204) })
	app.Get("/api/admin/resources", func(c *fiber.Ctx) error { return c.SendStatus(204) })
	return app
}

func TestNew(t *testing.T) {
	app := newApp(auth.Config{
		ApiKey: "secret",
		Public: func(c *fiber.Ctx) bool {
			return auth.ReadOnly(c) && !strings.HasPrefix(c.Path(), "/api/admin")
		},
	})

	tests := []struct {
		name   string
		method string
		path   string
		key    string
		want   int
	}{
		{"PublicRead", "GET", "/api/socials", "", 204},
		{"WriteWithoutKey", "POST", "/api/socials", "", 401},
		{"WriteWrongKey", "DELETE", "/api/socials", "nope", 401},
		{"WriteWithKey", "PUT", "/api/socials", "secret", 204},
		{"AdminReadNeedsKey", "GET", "/api/admin/resources", "", 401},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.key != "" {
				req.Header.Set(auth.DefaultHeader, tt.key)
			}
			resp, err := app.Test(req, 2000)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestDisabledWithoutKey(t *testing.T) {
	app := newApp(auth.Config{})
	resp, err := app.Test(httptest.NewRequest("POST", "/api/socials", nil), 2000)
	assert.NoError(t, err)
	assert.Equal(t, 204, resp.StatusCode)
}
