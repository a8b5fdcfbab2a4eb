package lore

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"pwsi/core/apperr"
	"pwsi/core/batch"
	"pwsi/core/database"
	"pwsi/core/ordering"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func intp(v int) *int       { return &v }
func strp(v string) *string { return &v }

func newService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db, err := database.Connect(database.Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&Entry{}))
	svc := NewService(db, zap.NewNop())
	require.NoError(t, svc.Setup(context.Background()))
	return svc, db
}

func texts(list []Entry) []string {
	out := make([]string, len(list))
	for i, e := range list {
		out[i] = e.Text
	}
	return out
}

func assertStore(t *testing.T, svc *Service, db *gorm.DB) {
	t.Helper()
	var rows []Entry
	require.NoError(t, db.Find(&rows).Error)
	require.Len(t, rows, svc.cache.Len())
	for _, r := range rows {
		cached, _ := svc.cache.Get(r.ID)
		assert.Equal(t, r, cached)
	}
	assert.True(t, ordering.Dense(members(svc.cache.Snapshot())))
}

func TestLifecycle(t *testing.T) {
	ctx := context.Background()
	svc, db := newService(t)

	ids, err := svc.Add(ctx, []NewEntry{
		{Text: "b1", BlockID: "b"},
		{Text: "a1", BlockID: "a"},
		{Text: "b0", BlockID: "b", Order: intp(1)},
	})
	require.NoError(t, err)
	assert.Len(t, ids, 3)
	assert.Equal(t, []string{"a1", "b0", "b1"}, texts(svc.GetAll()))
	assertStore(t, svc, db)

	res, err := svc.Update(ctx, []EntryPatch{
		{ID: ids[0], Order: intp(1), Text: strp("b1!")},
		{ID: ids[1], BlockID: strp("c")},
		{ID: 404},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{batch.Updated, batch.Updated, batch.NoElement}, res)
	assert.Equal(t, []string{"b1!", "b0", "a1"}, texts(svc.GetAll()))
	assertStore(t, svc, db)

	del, err := svc.Delete(ctx, []DeletedEntry{{ID: ids[0]}})
	require.NoError(t, err)
	assert.Equal(t, []bool{true}, del)
	assertStore(t, svc, db)

	_, err = svc.Update(ctx, []EntryPatch{{ID: 404}})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	_, err = svc.Add(ctx, []NewEntry{{Text: "no block"}})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	require.NoError(t, svc.Reset(ctx))
	assert.Empty(t, svc.GetAll())
	assert.Equal(t, []Entry{}, svc.Snapshot())
}

func TestHandlers(t *testing.T) {
	svc, _ := newService(t)
	app := fiber.New()
	NewHandler(svc).RegisterRoutes(app)

	req := httptest.NewRequest("POST", "/lore", strings.NewReader(`[{"text":"hello","block_id":"intro"}]`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, 2000)
	require.NoError(t, err)
	assert.Equal(t, 201, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/lore", nil), 2000)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Len(t, svc.GetAll(), 1)

	resp, err = app.Test(httptest.NewRequest("GET", "/lore/reset", nil), 2000)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Empty(t, svc.GetAll())
}
