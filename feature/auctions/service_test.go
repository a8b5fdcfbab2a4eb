package auctions

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
func idp(v int64) *int64    { return &v }
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

func assertStore(t *testing.T, svc *Service, db *gorm.DB) {
	t.Helper()
	var rows []Entry
	require.NoError(t, db.Find(&rows).Error)
	require.Len(t, rows, svc.cache.Len())
	data := svc.cache.Snapshot()
	for _, r := range rows {
		assert.Equal(t, r, data[r.ID])
	}
	assert.True(t, ordering.Dense(members(data, nil)))
	for id, e := range data {
		if e.AuctionID == nil {
			assert.True(t, ordering.Dense(members(data, idp(id))), "auction %d", id)
		}
	}
}

func lots(list []Entry) []string {
	out := make([]string, len(list))
	for i, e := range list {
		out[i] = e.Name
	}
	return out
}

func find(t *testing.T, svc *Service, id int64) Auction {
	t.Helper()
	for _, a := range svc.Auctions() {
		if a.ID == id {
			return a
		}
	}
	t.Fatalf("auction %d not in view", id)
	return Auction{}
}

func TestAddGroupsLots(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()

	ids, err := svc.Add(ctx, []NewEntry{{Name: "Spring"}, {Name: "Summer"}})
	require.NoError(t, err)
	spring, summer := ids[0], ids[1]

	lotIDs, err := svc.Add(ctx, []NewEntry{
		{Name: "a1", AuctionID: idp(spring), Order: intp(1)},
		{Name: "a2", AuctionID: idp(spring), Order: intp(1)},
		{Name: "guest", AuctionID: idp(spring)},
		{Name: "orphan", AuctionID: idp(404), Order: intp(1)},
	})
	require.NoError(t, err)
	assert.Equal(t, batch.Rejected, lotIDs[3])

	_, err = svc.Add(ctx, []NewEntry{{Name: "nested", AuctionID: idp(lotIDs[0]), Order: intp(1)}})
	assert.ErrorIs(t, err, apperr.ErrConflict)

	view := svc.Auctions()
	require.Len(t, view, 2)
	assert.Equal(t, []int64{spring, summer}, []int64{view[0].ID, view[1].ID})

	a := find(t, svc, spring)
	assert.Equal(t, []string{"a2", "a1"}, lots(a.List))
	assert.Equal(t, []string{"guest"}, lots(a.Participants))
	assert.Empty(t, find(t, svc, summer).List)
	assertStore(t, svc, db)
}

func TestDerivedStatus(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	ids, err := svc.Add(ctx, []NewEntry{{Name: "Spring", Status: strp("draft")}})
	require.NoError(t, err)
	auction := ids[0]
	assert.Equal(t, "draft", *find(t, svc, auction).Status)

	lotIDs, err := svc.Add(ctx, []NewEntry{
		{Name: "a1", AuctionID: idp(auction), Order: intp(1), Status: strp("Смотрим")},
		{Name: "a2", AuctionID: idp(auction), Order: intp(2)},
	})
	require.NoError(t, err)
	assert.Equal(t, StatusInProgress, *find(t, svc, auction).Status)

	_, err = svc.Update(ctx, []EntryPatch{{ID: lotIDs[1], Status: strp("Пройдено")}})
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, *find(t, svc, auction).Status)

	e, _ := svc.cache.Get(auction)
	assert.Equal(t, "draft", *e.Status)
}

func TestUpdateMovesLotBetweenAuctions(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()

	ids, err := svc.Add(ctx, []NewEntry{{Name: "Spring"}, {Name: "Summer"}})
	require.NoError(t, err)
	spring, summer := ids[0], ids[1]
	lotIDs, err := svc.Add(ctx, []NewEntry{
		{Name: "a1", AuctionID: idp(spring), Order: intp(1)},
		{Name: "a2", AuctionID: idp(spring), Order: intp(2)},
		{Name: "a3", AuctionID: idp(spring), Order: intp(3)},
		{Name: "b1", AuctionID: idp(summer), Order: intp(1)},
	})
	require.NoError(t, err)

	res, err := svc.Update(ctx, []EntryPatch{
		{ID: lotIDs[0], AuctionID: idp(summer), Order: intp(1)},
		{ID: spring, AuctionID: idp(summer)},
		{ID: lotIDs[2], AuctionID: idp(lotIDs[3])},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{batch.Updated, batch.WrongParent, batch.WrongParent}, res)

	assert.Equal(t, []string{"a2", "a3"}, lots(find(t, svc, spring).List))
	assert.Equal(t, []string{"a1", "b1"}, lots(find(t, svc, summer).List))
	assertStore(t, svc, db)

	_, err = svc.Update(ctx, []EntryPatch{{ID: summer, AuctionID: idp(summer)}})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestUpdateReordersAuctions(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()
	ids, err := svc.Add(ctx, []NewEntry{{Name: "a"}, {Name: "b"}, {Name: "c"}})
	require.NoError(t, err)

	_, err = svc.Update(ctx, []EntryPatch{{ID: ids[2], Order: intp(1)}, {ID: ids[0], Order: intp(7)}})
	require.NoError(t, err)
	view := svc.Auctions()
	assert.Equal(t, []string{"c", "a", "b"}, []string{view[0].Name, view[1].Name, view[2].Name})
	assertStore(t, svc, db)
}

func TestDeleteCascades(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()
	ids, err := svc.Add(ctx, []NewEntry{{Name: "Spring"}, {Name: "Summer"}})
	require.NoError(t, err)
	lotIDs, err := svc.Add(ctx, []NewEntry{
		{Name: "a1", AuctionID: idp(ids[0]), Order: intp(1)},
		{Name: "guest", AuctionID: idp(ids[0])},
		{Name: "b1", AuctionID: idp(ids[1]), Order: intp(1)},
		{Name: "b2", AuctionID: idp(ids[1]), Order: intp(2)},
	})
	require.NoError(t, err)

	res, err := svc.Delete(ctx, []DeletedEntry{{ID: ids[0]}, {ID: lotIDs[0]}, {ID: lotIDs[2]}})
	require.NoError(t, err)
	assert.Equal(t, []bool{true, false, true}, res)

	view := svc.Auctions()
	require.Len(t, view, 1)
	assert.Equal(t, 1, view[0].Order)
	assert.Equal(t, []string{"b2"}, lots(view[0].List))
	assert.Len(t, svc.GetAll(true), 2)
	assertStore(t, svc, db)

	_, err = svc.Delete(ctx, []DeletedEntry{{ID: ids[0]}})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestReset(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	_, err := svc.Add(ctx, []NewEntry{{Name: "Spring"}})
	require.NoError(t, err)

	require.NoError(t, svc.Reset(ctx))
	assert.Empty(t, svc.Auctions())

	ids, err := svc.Add(ctx, []NewEntry{{Name: "Autumn"}})
	require.NoError(t, err)
	assert.Equal(t, int64(1), ids[0])
}
