package merch

import (
	"context"
	"testing"

	"pwsi/core/apperr"
	"pwsi/core/batch"
	"pwsi/core/database"
	"pwsi/core/ordering"
	"pwsi/feature/dataparams"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

type mockParams struct {
	mock.Mock
}

func (m *mockParams) String(name string) string {
	return m.Called(name).String(0)
}

func (m *mockParams) Set(ctx context.Context, p dataparams.Param) error {
	return m.Called(ctx, p).Error(0)
}

func intp(v int) *int       { return &v }
func strp(v string) *string { return &v }

func newService(t *testing.T) (*Service, *gorm.DB, *mockParams) {
	t.Helper()
	db, err := database.Connect(database.Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&Item{}))
	params := new(mockParams)
	svc := NewService(db, params, zap.NewNop())
	require.NoError(t, svc.Setup(context.Background()))
	return svc, db, params
}

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to open mock sql db: %v", err)
	}
	gormDB, err := gorm.Open(mysql.New(mysql.Config{Conn: db, SkipInitializeWithVersion: true}), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open gorm db: %v", err)
	}
	return gormDB, mock
}

func names(list []Item) []string {
	out := make([]string, len(list))
	for i, it := range list {
		out[i] = it.Name
	}
	return out
}

func assertStore(t *testing.T, svc *Service, db *gorm.DB) {
	t.Helper()
	var rows []Item
	require.NoError(t, db.Find(&rows).Error)
	require.Len(t, rows, svc.cache.Len())
	for _, r := range rows {
		cached, _ := svc.cache.Get(r.ID)
		assert.Equal(t, r, cached)
	}
	assert.True(t, ordering.Dense(members(svc.cache.Snapshot())))
}

func seed(t *testing.T, svc *Service, list ...string) []int64 {
	t.Helper()
	items := make([]NewItem, len(list))
	for i, n := range list {
		items[i] = NewItem{Name: n}
	}
	ids, err := svc.Add(context.Background(), items)
	require.NoError(t, err)
	return ids
}

func TestAddBatch(t *testing.T) {
	svc, db, _ := newService(t)
	seed(t, svc, "a", "b", "c")

	ids, err := svc.Add(context.Background(), []NewItem{
		{Name: "x", Order: intp(2)},
		{Name: "y", Order: intp(2)},
		{Name: "z"},
		{Name: "w", Order: intp(1), Price: strp("100")},
	})
	require.NoError(t, err)
	assert.Len(t, ids, 4)
	assert.Equal(t, []string{"w", "x", "a", "b", "c", "y", "z"}, names(svc.GetAll()))
	assertStore(t, svc, db)

	_, err = svc.Add(context.Background(), []NewItem{{Price: strp("1")}})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestAddAppendWritesNoOrders(t *testing.T) {
	db, mock := setupMockDB(t)
	svc := NewService(db, new(mockParams), zap.NewNop())
	require.NoError(t, svc.cache.Load(context.Background(), func(context.Context) (map[int64]Item, error) {
		return map[int64]Item{1: {ID: 1, Name: "a", Order: 1}, 2: {ID: 2, Name: "b", Order: 2}}, nil
	}))

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `merch`").WillReturnResult(sqlmock.NewResult(3, 1))
	mock.ExpectCommit()

	ids, err := svc.Add(context.Background(), []NewItem{{Name: "c", Order: intp(9)}})
	require.NoError(t, err)
	assert.Equal(t, []int64{3}, ids)
	assert.Equal(t, []string{"a", "b", "c"}, names(svc.GetAll()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	svc, db, _ := newService(t)
	ids := seed(t, svc, "a", "b", "c", "d")

	res, err := svc.Update(ctx, []ItemPatch{
		{ID: ids[3], Order: intp(1)},
		{ID: ids[2], Order: intp(1), Status: strp("sold out")},
		{ID: 99},
		{ID: ids[0], Order: intp(0), Name: strp("A")},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{batch.Updated, batch.Updated, batch.NoElement, batch.Updated}, res)
	assert.Equal(t, []string{"d", "A", "b", "c"}, names(svc.GetAll()))
	got, _ := svc.cache.Get(ids[2])
	assert.Equal(t, "sold out", *got.Status)
	assertStore(t, svc, db)

	_, err = svc.Update(ctx, []ItemPatch{{ID: 99}})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	svc, db, _ := newService(t)
	ids := seed(t, svc, "a", "b", "c", "d", "e")

	res, err := svc.Delete(ctx, []DeletedItem{{ID: ids[1]}, {ID: ids[3]}, {ID: 99}})
	require.NoError(t, err)
	assert.Equal(t, []bool{true, true, false}, res)
	assert.Equal(t, []string{"a", "c", "e"}, names(svc.GetAll()))
	assertStore(t, svc, db)

	_, err = svc.Delete(ctx, []DeletedItem{{ID: 99}})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestStatusAndReset(t *testing.T) {
	ctx := context.Background()
	svc, _, params := newService(t)
	seed(t, svc, "a")

	params.On("String", dataparams.MerchStatus).Return("open")
	params.On("Set", mock.Anything, dataparams.String(dataparams.MerchStatus, "closed")).Return(nil).Once()
	params.On("Set", mock.Anything, dataparams.String(dataparams.MerchStatus, "")).Return(nil).Once()

	assert.Equal(t, "open", svc.Status())
	require.NoError(t, svc.SetStatus(ctx, "closed"))

	require.NoError(t, svc.Reset(ctx))
	assert.Empty(t, svc.GetAll())
	params.AssertExpectations(t)

	ids := seed(t, svc, "fresh")
	assert.Equal(t, int64(1), ids[0])
}
