package socials

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"pwsi/core/server"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupTestApp(t *testing.T) *fiber.App {
	svc, _ := newService(t)
	app := fiber.New()
	NewHandler(svc).RegisterRoutes(app)
	return app
}

func do(t *testing.T, app *fiber.App, method, path, body string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, 2000)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestHandlers(t *testing.T) {
	app := setupTestApp(t)

	status, body := do(t, app, "POST", "/socials", `[{"name":"Twitch","link":"https://twitch.tv/x","icon":"twitch.svg"}]`)
	assert.Equal(t, 201, status)
	assert.Equal(t, []any{1.0}, body["content"])

	status, body = do(t, app, "POST", "/socials", `[{"name":"Twitch","link":"https://twitch.tv/x","icon":"twitch.svg"}]`)
	assert.Equal(t, 409, status)
	assert.NotEmpty(t, body["detail"])

	status, body = do(t, app, "PUT", "/socials", `[{"id":1,"name":"Twitch TV"},{"id":7}]`)
	assert.Equal(t, 200, status)
	assert.Equal(t, map[string]any{"status": "Update info", "info": []any{"Updated", "No element"}}, body["content"])

	status, body = do(t, app, "GET", "/socials", "")
	assert.Equal(t, 200, status)
	list := body["content"].([]any)
	require.Len(t, list, 1)
	assert.Equal(t, "Twitch TV", list[0].(map[string]any)["name"])

	status, body = do(t, app, "DELETE", "/socials", `[{"id":1}]`)
	assert.Equal(t, 200, status)
	assert.Equal(t, map[string]any{"status": "Delete info", "info": []any{true}}, body["content"])

	status, _ = do(t, app, "PUT", "/socials", `[]`)
	assert.Equal(t, 422, status)

	status, body = do(t, app, "GET", "/socials/reset", "")
	assert.Equal(t, 200, status)
	assert.Equal(t, "Socials were erased", body["content"])
}

func TestLoader(t *testing.T) {
	svc, _ := newService(t)
	feature := &Feature{service: svc, handler: NewHandler(svc)}

	assert.Equal(t, "socials", feature.Name())
	assert.True(t, feature.IsEnabled())
	assert.Same(t, svc, feature.Service())
	assert.NoError(t, feature.Load(fiber.New()))
}

func TestResetRequiresKey(t *testing.T) {
	svc, _ := newService(t)
	app, api := server.New(server.Config{Prefix: "/api", ApiKey: "secret"}, zap.NewNop())
	NewHandler(svc).RegisterRoutes(api)

	req := httptest.NewRequest("POST", "/api/socials", strings.NewReader(`[{"name":"Twitch","link":"https://twitch.tv/x","icon":"twitch.svg"}]`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", "secret")
	resp, err := app.Test(req, 2000)
	require.NoError(t, err)
	require.Equal(t, 201, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/api/socials/reset", nil), 2000)
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode)
	assert.Len(t, svc.GetAll(), 1)

	resp, err = app.Test(httptest.NewRequest("GET", "/api/socials", nil), 2000)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}
