package credits

import (
	"context"
	"testing"

	"pwsi/core/apperr"
	"pwsi/core/batch"
	"pwsi/core/database"
	"pwsi/core/ordering"

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
	require.NoError(t, db.AutoMigrate(&Credit{}))
	svc := NewService(db, zap.NewNop())
	require.NoError(t, svc.Setup(context.Background()))
	return svc, db
}

func names(list []Credit) []string {
	out := make([]string, len(list))
	for i, c := range list {
		out[i] = c.Name
	}
	return out
}

func assertStore(t *testing.T, svc *Service, db *gorm.DB) {
	t.Helper()
	var rows []Credit
	require.NoError(t, db.Find(&rows).Error)
	require.Len(t, rows, svc.cache.Len())
	for _, r := range rows {
		cached, _ := svc.cache.Get(r.ID)
		assert.Equal(t, r, cached)
	}
	assert.True(t, ordering.Dense(members(svc.cache.Snapshot())))
}

func TestAddKeepsCreators(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()

	ids, err := svc.Add(ctx, []NewCredit{
		{Name: "Opening", Creators: []Creator{{Name: "Mira", Role: strp("art")}}},
		{Name: "Ending", Order: intp(1)},
	})
	require.NoError(t, err)
	require.Len(t, ids, 2)

	assert.Equal(t, []string{"Ending", "Opening"}, names(svc.GetAll(false)))
	assert.Equal(t, []string{"Opening", "Ending"}, names(svc.GetAll(true)))

	c, ok := svc.cache.Get(ids[0])
	require.True(t, ok)
	require.Len(t, c.Creators, 1)
	assert.Equal(t, "art", *c.Creators[0].Role)
	assertStore(t, svc, db)
}

func TestAddRejectsNamelessCreator(t *testing.T) {
	svc, _ := newService(t)
	_, err := svc.Add(context.Background(), []NewCredit{{Name: "x", Creators: []Creator{{}}}})
	assert.ErrorIs(t, err, apperr.ErrValidation)
	assert.Zero(t, svc.cache.Len())
}

func TestUpdateAndMove(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()
	ids, err := svc.Add(ctx, []NewCredit{{Name: "a"}, {Name: "b"}, {Name: "c"}})
	require.NoError(t, err)

	res, err := svc.Update(ctx, []CreditPatch{
		{ID: ids[2], Order: intp(1), Creators: &[]Creator{{Name: "Lev"}}},
		{ID: 999},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{batch.Updated, batch.NoElement}, res)
	assert.Equal(t, []string{"c", "a", "b"}, names(svc.GetAll(false)))
	assertStore(t, svc, db)

	_, err = svc.Update(ctx, []CreditPatch{{ID: 999}})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestDeleteCompacts(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()
	ids, err := svc.Add(ctx, []NewCredit{{Name: "a"}, {Name: "b"}, {Name: "c"}})
	require.NoError(t, err)

	res, err := svc.Delete(ctx, []DeletedCredit{{ID: ids[0]}, {ID: 42}})
	require.NoError(t, err)
	assert.Equal(t, []bool{true, false}, res)
	assert.Equal(t, []string{"b", "c"}, names(svc.GetAll(false)))
	assertStore(t, svc, db)

	require.NoError(t, svc.Reset(ctx))
	assert.Empty(t, svc.GetAll(false))
}
