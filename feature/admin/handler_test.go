package admin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http/httptest"
	"testing"

	"pwsi/core/apperr"
	"pwsi/core/backup"
	"pwsi/core/registry"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockResource struct {
	mock.Mock
}

func (m *mockResource) Setup(ctx context.Context) error { return m.Called(ctx).Error(0) }
func (m *mockResource) Reset(ctx context.Context) error { return m.Called(ctx).Error(0) }
func (m *mockResource) Snapshot() any                   { return m.Called().Get(0) }

type mockBackuper struct {
	mock.Mock
}

func (m *mockBackuper) Run(ctx context.Context) (*backup.Report, error) {
	args := m.Called(ctx)
	report, _ := args.Get(0).(*backup.Report)
	return report, args.Error(1)
}

func (m *mockBackuper) List(ctx context.Context, name registry.Name) ([]string, error) {
	args := m.Called(ctx, name)
	keys, _ := args.Get(0).([]string)
	return keys, args.Error(1)
}

func (m *mockBackuper) Latest(ctx context.Context, name registry.Name) ([]byte, error) {
	args := m.Called(ctx, name)
	body, _ := args.Get(0).([]byte)
	return body, args.Error(1)
}

func setupApp(t *testing.T, backups Backuper) (*fiber.App, *mockResource) {
	t.Helper()
	res := new(mockResource)
	reg := registry.New()
	require.NoError(t, reg.Register(registry.Lore, res))
	require.NoError(t, reg.Register(registry.Credits, new(mockResource)))

	app := fiber.New()
	require.NoError(t, NewFeature(reg, backups, zap.NewNop()).Load(app))
	return app, res
}

func call(t *testing.T, app *fiber.App, method, path string) (int, map[string]any) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(method, path, nil), 2000)
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func TestHandleResources(t *testing.T) {
	app, _ := setupApp(t, nil)
	status, body := call(t, app, "GET", "/admin/resources")
	assert.Equal(t, 200, status)
	assert.Equal(t, []any{"credits", "lore"}, body["content"])
}

func TestHandleReset(t *testing.T) {
	app, res := setupApp(t, nil)
	res.On("Reset", mock.Anything).Return(nil).Once()

	status, body := call(t, app, "POST", "/admin/reset/lore")
	assert.Equal(t, 200, status)
	assert.Equal(t, "lore was reset", body["content"])
	res.AssertExpectations(t)

	status, _ = call(t, app, "POST", "/admin/reset/furniture")
	assert.Equal(t, 404, status)

	status, _ = call(t, app, "POST", "/admin/reset/anime")
	assert.Equal(t, 404, status, "known but unregistered")

	res.On("Reset", mock.Anything).Return(errors.New("db down")).Once()
	status, body = call(t, app, "POST", "/admin/reset/lore")
	assert.Equal(t, 500, status)
	assert.Equal(t, "internal error", body["detail"])
}

func TestHandleBackup(t *testing.T) {
	backups := new(mockBackuper)
	backups.On("Run", mock.Anything).Return(&backup.Report{Objects: []backup.Object{{Resource: "lore", Key: "s/lore/1.json"}}}, nil)
	backups.On("List", mock.Anything, registry.Lore).Return([]string{"s/lore/2.json", "s/lore/1.json"}, nil)
	app, _ := setupApp(t, backups)

	status, body := call(t, app, "POST", "/admin/backup")
	assert.Equal(t, 200, status)
	content := body["content"].(map[string]any)
	assert.Len(t, content["objects"], 1)

	status, body = call(t, app, "GET", "/admin/backup/lore")
	assert.Equal(t, 200, status)
	assert.Equal(t, []any{"s/lore/2.json", "s/lore/1.json"}, body["content"])

	status, _ = call(t, app, "GET", "/admin/backup/nothing")
	assert.Equal(t, 404, status)
	backups.AssertExpectations(t)
}

func TestHandleBackupWithoutStorage(t *testing.T) {
	app, _ := setupApp(t, nil)
	status, _ := call(t, app, "POST", "/admin/backup")
	assert.Equal(t, 503, status)
}

func TestHandleLatest(t *testing.T) {
	backups := new(mockBackuper)
	backups.On("Latest", mock.Anything, registry.Lore).Return([]byte(`{"blocks":[1,2]}`), nil)
	backups.On("Latest", mock.Anything, registry.Merch).Return(nil, fmt.Errorf("no snapshot of merch: %w", apperr.ErrNotFound))
	app, _ := setupApp(t, backups)

	status, body := call(t, app, "GET", "/admin/backup/lore/latest")
	assert.Equal(t, 200, status)
	assert.Equal(t, []any{1.0, 2.0}, body["blocks"])

	status, _ = call(t, app, "GET", "/admin/backup/merch/latest")
	assert.Equal(t, 404, status)
	backups.AssertExpectations(t)

	app, _ = setupApp(t, nil)
	status, _ = call(t, app, "GET", "/admin/backup/lore/latest")
	assert.Equal(t, 503, status)
}
