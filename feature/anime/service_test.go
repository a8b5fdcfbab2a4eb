package anime

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"pwsi/core/apperr"
	"pwsi/core/batch"
	"pwsi/core/database"
	"pwsi/core/enrich"
	"pwsi/core/enrich/mal"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type mockLookup struct {
	mock.Mock
}

func (m *mockLookup) Lookup(ctx context.Context, id int64) mal.Info {
	return m.Called(ctx, id).Get(0).(mal.Info)
}

var clock = time.Date(2025, time.March, 8, 18, 30, 0, 0, time.UTC)

func idp(v int64) *int64    { return &v }
func intp(v int) *int       { return &v }
func strp(v string) *string { return &v }

func newService(t *testing.T) (*Service, *gorm.DB, *mockLookup) {
	t.Helper()
	db, err := database.Connect(database.Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&Title{}))
	lookup := new(mockLookup)
	svc := NewService(db, lookup, "Ksyshenka", zap.NewNop())
	svc.now = func() time.Time { return clock }
	require.NoError(t, svc.Setup(context.Background()))
	return svc, db, lookup
}

func assertStore(t *testing.T, svc *Service, db *gorm.DB) {
	t.Helper()
	var rows []Title
	require.NoError(t, db.Find(&rows).Error)
	require.Len(t, rows, svc.cache.Len())
	for _, r := range rows {
		cached, ok := svc.cache.Get(r.ID)
		require.True(t, ok, "title %d", r.ID)
		want, _ := json.Marshal(r)
		got, _ := json.Marshal(cached)
		assert.JSONEq(t, string(want), string(got))
	}
}

func TestAddEnrichesWithoutClobbering(t *testing.T) {
	svc, db, lookup := newService(t)
	ctx := context.Background()
	lookup.On("Lookup", mock.Anything, int64(5114)).Return(mal.Info{
		Link:     "https://myanimelist.net/anime/5114",
		Picture:  "https://cdn.myanimelist.net/images/anime/1223/96541l.jpg",
		Type:     "Сериал",
		Episodes: 64,
	}).Once()

	ids, err := svc.Add(ctx, []NewTitle{
		{ID: idp(5114), Name: "FMA: Brotherhood", Picture: strp("mine.jpg"), Status: strp(StatusCompleted)},
		{Name: "Home video", AddedTime: &Erased},
		{ID: idp(5114), Name: "Again"},
	})
	require.NoError(t, err)
	assert.Equal(t, []int64{5114, enrich.Border + 1, batch.Rejected}, ids)

	fma, _ := svc.cache.Get(5114)
	assert.Equal(t, "mine.jpg", *fma.Picture)
	assert.Equal(t, "https://myanimelist.net/anime/5114", *fma.Link)
	assert.Equal(t, 64, *fma.Episodes)
	assert.Equal(t, clock, *fma.AddedTime)
	assert.Equal(t, clock, *fma.CompletedTime)

	home, _ := svc.cache.Get(enrich.Border + 1)
	assert.Nil(t, home.AddedTime)
	assert.Nil(t, home.CompletedTime)

	lookup.AssertExpectations(t)
	assertStore(t, svc, db)

	_, err = svc.Add(ctx, []NewTitle{{ID: idp(enrich.Border + 1), Name: "dup"}})
	assert.ErrorIs(t, err, apperr.ErrConflict)
}

func TestExplicitLocalIDAdvancesCounter(t *testing.T) {
	svc, db, _ := newService(t)
	ctx := context.Background()

	ids, err := svc.Add(ctx, []NewTitle{{ID: idp(enrich.Border + 1), Name: "imported"}})
	require.NoError(t, err)
	assert.Equal(t, []int64{enrich.Border + 1}, ids)

	ids, err = svc.Add(ctx, []NewTitle{{Name: "auto"}})
	require.NoError(t, err)
	assert.Equal(t, []int64{enrich.Border + 2}, ids)

	res, err := svc.Update(ctx, []TitlePatch{{ID: enrich.Border + 2, NewID: idp(enrich.Border + 10)}})
	require.NoError(t, err)
	assert.Equal(t, []string{batch.Updated}, res)

	ids, err = svc.Add(ctx, []NewTitle{{Name: "after move"}})
	require.NoError(t, err)
	assert.Equal(t, []int64{enrich.Border + 11}, ids)
	assertStore(t, svc, db)
}

func TestSeriesAggregation(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Add(ctx, []NewTitle{
		{Name: "X1", Series: strp("X"), Status: strp(StatusWatching), Score: intp(9)},
		{Name: "X2", Series: strp("X"), Status: strp(StatusCompleted), Score: intp(8)},
		{Name: "X3", Series: strp("X"), Status: strp(StatusDropped)},
		{Name: "Y1", Series: strp("Y"), Status: strp(StatusCompleted), Score: intp(7)},
		{Name: "Y2", Series: strp("Y"), Status: strp(StatusCompleted), Score: intp(8)},
		{Name: "Solo", Status: strp(StatusWatching)},
	})
	require.NoError(t, err)

	byName := map[string]Item{}
	for _, it := range svc.List() {
		byName[it.name()] = it
	}
	require.Len(t, byName, 3)

	x := byName["X"].Series
	require.NotNil(t, x)
	assert.Equal(t, StatusDropped, *x.Status)
	assert.Nil(t, x.Score)
	assert.Len(t, x.List, 3)

	y := byName["Y"].Series
	require.NotNil(t, y)
	assert.Equal(t, StatusCompleted, *y.Status)
	require.NotNil(t, y.Score)
	assert.Equal(t, 7.5, *y.Score)
	assert.Equal(t, clock, *y.CompletedTime)

	assert.Equal(t, "Solo", svc.List()[0].name())
}

func TestMixedSeriesIsWatching(t *testing.T) {
	svc, _, _ := newService(t)
	_, err := svc.Add(context.Background(), []NewTitle{
		{Name: "Z1", Series: strp("Z"), Status: strp(StatusCompleted)},
		{Name: "Z2", Series: strp("Z")},
	})
	require.NoError(t, err)
	z := svc.List()[0].Series
	require.NotNil(t, z)
	assert.Equal(t, StatusWatching, *z.Status)
	assert.Nil(t, z.CompletedTime)
}

func TestUpdate(t *testing.T) {
	svc, db, lookup := newService(t)
	ctx := context.Background()
	lookup.On("Lookup", mock.Anything, int64(1)).Return(mal.Info{
		Link:    "https://myanimelist.net/anime/1",
		Picture: "https://cdn.myanimelist.net/images/anime/4/19644l.jpg",
	})

	ids, err := svc.Add(ctx, []NewTitle{
		{Name: "Bebop", Score: intp(10), Status: strp(StatusCompleted)},
		{Name: "Trigun"},
	})
	require.NoError(t, err)
	bebop, trigun := ids[0], ids[1]

	res, err := svc.Update(ctx, []TitlePatch{
		{ID: bebop, NewID: idp(1), Picture: strp("fan-art.png"), Score: intp(-1), Status: strp(StatusWatching)},
		{ID: trigun, NewID: idp(1)},
		{ID: 77},
		{ID: trigun, NewID: idp(-1), Comment: strp("rewatch")},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{batch.Updated, batch.IDTaken("anime"), batch.NoElement, batch.Updated}, res)

	moved, ok := svc.cache.Get(1)
	require.True(t, ok)
	assert.Equal(t, "fan-art.png", *moved.Picture)
	assert.Equal(t, "https://myanimelist.net/anime/1", *moved.Link)
	assert.Nil(t, moved.Score)
	assert.Nil(t, moved.CompletedTime)
	_, ok = svc.cache.Get(bebop)
	assert.False(t, ok)

	local, ok := svc.cache.Get(enrich.Border + 3)
	require.True(t, ok)
	assert.Equal(t, "rewatch", *local.Comment)
	assertStore(t, svc, db)

	_, err = svc.Update(ctx, []TitlePatch{{ID: 404}})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestSetupSeedsLocalIDs(t *testing.T) {
	svc, db, _ := newService(t)
	require.NoError(t, db.Create(&Title{ID: enrich.Border + 41, Name: "old"}).Error)

	fresh := NewService(db, svc.mal, "Ksyshenka", zap.NewNop())
	require.NoError(t, fresh.Setup(context.Background()))
	ids, err := fresh.Add(context.Background(), []NewTitle{{Name: "next"}})
	require.NoError(t, err)
	assert.Equal(t, enrich.Border+42, ids[0])
}

func TestResetAndCustomers(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()
	_, err := svc.Add(ctx, []NewTitle{
		{Name: "Bake", Series: strp("Monogatari"), OrderBy: strp("anna+bob"), Status: strp(StatusWatching)},
		{Name: "Mushishi"},
	})
	require.NoError(t, err)

	report, err := svc.Customers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, report.All)
	assert.Equal(t, []string{"Monogatari Bake (Смотрим)"}, report.People["anna"].List)
	assert.Equal(t, []string{"Mushishi"}, report.People["Ksyshenka"].List)

	require.NoError(t, svc.Reset(ctx))
	assert.Empty(t, svc.List())
	ids, err := svc.Add(ctx, []NewTitle{{Name: "first"}})
	require.NoError(t, err)
	assert.Equal(t, enrich.Border+1, ids[0])
}
