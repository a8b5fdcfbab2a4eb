package database

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDayJSON(t *testing.T) {
	var v struct {
		Date *Day `json:"date"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"date":"2024-12-21"}`), &v))
	require.NotNil(t, v.Date)
	assert.Equal(t, "2024-12-21", v.Date.String())

	out, err := json.Marshal(v)
	require.NoError(t, err)
	assert.JSONEq(t, `{"date":"2024-12-21"}`, string(out))

	assert.Error(t, json.Unmarshal([]byte(`{"date":"21.12.2024"}`), &v))
}

func TestDayStoredInSQLite(t *testing.T) {
	type row struct {
		ID   int64
		Date *Day
	}
	db, err := Connect(Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&row{}))

	d, err := ParseDay("2025-01-31")
	require.NoError(t, err)
	require.NoError(t, db.Create(&row{Date: &d}).Error)
	require.NoError(t, db.Create(&row{}).Error)

	var rows []row
	require.NoError(t, db.Order("id").Find(&rows).Error)
	require.Len(t, rows, 2)
	require.NotNil(t, rows[0].Date)
	assert.Equal(t, "2025-01-31", rows[0].Date.String())
	assert.Nil(t, rows[1].Date)
}
