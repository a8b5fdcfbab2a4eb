package games

import (
	"context"
	"testing"

	"pwsi/core/apperr"
	"pwsi/core/batch"
	"pwsi/core/database"
	"pwsi/core/enrich"
	"pwsi/core/enrich/steam"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type mockProber struct {
	mock.Mock
}

func (m *mockProber) Probe(ctx context.Context, id int64) steam.Info {
	return m.Called(ctx, id).Get(0).(steam.Info)
}

func idp(v int64) *int64    { return &v }
func intp(v int) *int       { return &v }
func strp(v string) *string { return &v }

func newService(t *testing.T) (*Service, *gorm.DB, *mockProber) {
	t.Helper()
	db, err := database.Connect(database.Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&Game{}))
	prober := new(mockProber)
	svc := NewService(db, prober, "Ksyshenka", zap.NewNop())
	require.NoError(t, svc.Setup(context.Background()))
	return svc, db, prober
}

func assertStore(t *testing.T, svc *Service, db *gorm.DB) {
	t.Helper()
	var rows []Game
	require.NoError(t, db.Find(&rows).Error)
	require.Len(t, rows, svc.cache.Len())
	for _, r := range rows {
		cached, ok := svc.cache.Get(r.ID)
		require.True(t, ok, "game %d", r.ID)
		assert.Equal(t, r, cached)
	}
}

func names(list []Game) []string {
	out := make([]string, len(list))
	for i, g := range list {
		out[i] = g.Name
	}
	return out
}

func TestAddBucketsAndGenres(t *testing.T) {
	svc, db, prober := newService(t)
	ctx := context.Background()
	prober.On("Probe", mock.Anything, int64(620)).Return(steam.Info{
		Link:    "https://store.steampowered.com/app/620",
		Picture: "https://cdn.akamai.steamstatic.com/steam/apps/620/capsule_616x353.jpg",
	}).Once()

	ids, err := svc.Add(ctx, []NewGame{
		{ID: idp(620), Name: "Portal 2", Genre: strp("Puzzle")},
		{Name: "zork", Genre: strp("Adventure")},
		{Name: "Dark Souls", Subname: strp("Abyss"), Genre: strp("Souls"), Type: strp("marathon")},
		{ID: idp(620), Name: "Portal 2 again"},
		{Name: "Amnesia", Genre: strp("Horror"), Records: []Record{
			{Name: "second", URL: "https://example.com/2", Order: intp(2)},
			{Name: "first", URL: "https://example.com/1"},
		}},
	})
	require.NoError(t, err)
	assert.Equal(t, []int64{620, enrich.Border + 1, enrich.Border + 2, batch.Rejected, enrich.Border + 3}, ids)

	all := svc.GetAll(nil)
	assert.Equal(t, []string{"Amnesia", "Portal 2", "zork"}, names(all[DefaultType]))
	assert.Equal(t, []string{"Dark Souls"}, names(all["marathon"]))
	assert.Equal(t, []string{"Adventure", "Horror", "Puzzle"}, svc.Genres(DefaultType))
	assert.Empty(t, svc.Genres("unknown"))

	amnesia := all[DefaultType][0]
	assert.Equal(t, "first", amnesia.Records[0].Name)
	stored, _ := svc.cache.Get(enrich.Border + 3)
	assert.Equal(t, "second", stored.Records[0].Name)

	picked := svc.GetAll([]string{"marathon", "none"})
	assert.Len(t, picked["marathon"], 1)
	assert.Empty(t, picked["none"])

	portal, _ := svc.cache.Get(620)
	assert.Equal(t, "https://store.steampowered.com/app/620", *portal.Link)
	prober.AssertExpectations(t)
	assertStore(t, svc, db)
}

func TestExplicitLocalIDAdvancesCounter(t *testing.T) {
	svc, db, _ := newService(t)
	ctx := context.Background()

	ids, err := svc.Add(ctx, []NewGame{{ID: idp(enrich.Border + 1), Name: "Imported"}, {Name: "Auto"}})
	require.NoError(t, err)
	assert.Equal(t, []int64{enrich.Border + 1, enrich.Border + 2}, ids)

	ids, err = svc.Add(ctx, []NewGame{{Name: "Later"}})
	require.NoError(t, err)
	assert.Equal(t, []int64{enrich.Border + 3}, ids)
	assertStore(t, svc, db)
}

func TestUpdateNewIDKeepsExplicitPicture(t *testing.T) {
	svc, db, prober := newService(t)
	ctx := context.Background()
	prober.On("Probe", mock.Anything, int64(70)).Return(steam.Info{
		Link:    "https://store.steampowered.com/app/70",
		Picture: "https://cdn.akamai.steamstatic.com/steam/apps/70/header.jpg",
	})

	ids, err := svc.Add(ctx, []NewGame{{Name: "Half-Life", Genre: strp("Shooter"), Comment: strp("old")}})
	require.NoError(t, err)

	res, err := svc.Update(ctx, []GamePatch{
		{ID: ids[0], NewID: idp(70), Picture: strp("box.png"), Comment: strp("")},
		{ID: 12345},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{batch.Updated, batch.NoElement}, res)

	g, ok := svc.cache.Get(70)
	require.True(t, ok)
	assert.Equal(t, "box.png", *g.Picture)
	assert.Equal(t, "https://store.steampowered.com/app/70", *g.Link)
	assert.Nil(t, g.Comment)
	assertStore(t, svc, db)

	other, err := svc.Add(ctx, []NewGame{{Name: "Opposing Force", Genre: strp("Shooter")}})
	require.NoError(t, err)
	res, err = svc.Update(ctx, []GamePatch{{ID: other[0], NewID: idp(70)}})
	assert.ErrorIs(t, err, apperr.ErrConflict)
	assert.Nil(t, res)
}

func TestUpdateGenres(t *testing.T) {
	svc, db, _ := newService(t)
	ctx := context.Background()
	_, err := svc.Add(ctx, []NewGame{
		{Name: "a", Genre: strp("RPG")},
		{Name: "b", Genre: strp("RPG")},
		{Name: "c", Genre: strp("Action")},
	})
	require.NoError(t, err)

	res, err := svc.UpdateGenres(ctx, []GenreRename{
		{Name: "RPG", NewName: "Role-playing"},
		{Name: "Action", NewName: "Role-playing"},
		{Name: "Racing", NewName: "Cars"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{batch.Updated, batch.NameNotUnique, batch.NoElement}, res)
	assert.Equal(t, []string{"Action", "Role-playing"}, svc.Genres(DefaultType))
	assertStore(t, svc, db)
}

func TestDeleteResetCustomers(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()
	ids, err := svc.Add(ctx, []NewGame{
		{Name: "Celeste", OrderBy: strp("mira"), Status: strp("Пройдено")},
		{Name: "Hades"},
	})
	require.NoError(t, err)

	report, err := svc.Customers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Celeste (Пройдено)"}, report.People["mira"].List)
	assert.Equal(t, 1, report.People["Ksyshenka"].Count)

	res, err := svc.Delete(ctx, []DeletedGame{{ID: ids[1]}, {ID: 1}})
	require.NoError(t, err)
	assert.Equal(t, []bool{true, false}, res)

	require.NoError(t, svc.Reset(ctx))
	assert.Empty(t, svc.GetAll(nil))
	ids, err = svc.Add(ctx, []NewGame{{Name: "Hades"}})
	require.NoError(t, err)
	assert.Equal(t, enrich.Border+1, ids[0])
}
