package twitchbot

import (
	"fmt"
	"strings"
	"time"

	"pwsi/core/apperr"
	"pwsi/core/registry"
)

// ListNames are the categories kept in the shared lists table.
var ListNames = []registry.Name{
	registry.SaveChoices,
	registry.BiteIgnoreList,
	registry.BiteActions,
	registry.BitePlaces,
	registry.BiteBodyParts,
}

// CounterTypes maps the counter resources to their stored type.
var CounterTypes = map[registry.Name]string{
	registry.Counter:       "count",
	registry.CounterDeath:  "death",
	registry.CounterGlobal: "global",
}

// Item is one value of a bot list. Values are unique per category.
type Item struct {
	ID       int64  `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Value    string `gorm:"column:value;not null;uniqueIndex:idx_twitchbot_lists_category_value" json:"value"`
	Category string `gorm:"column:category;not null;index;uniqueIndex:idx_twitchbot_lists_category_value" json:"category"`
}

// TableName overrides the gorm table name.
func (Item) TableName() string { return "twitchbot_lists" }

// NewItem is an add request item.
type NewItem struct {
	Value string `json:"value"`
}

func checkValue(v string) error {
	if strings.TrimSpace(v) == "" {
		return fmt.Errorf("value is required: %w", apperr.ErrValidation)
	}
	return nil
}

// ItemPatch replaces the value of an item.
type ItemPatch struct {
	ID    int64  `json:"id"`
	Value string `json:"value"`
}

// DeletedItem is a delete request item.
type DeletedItem struct {
	ID int64 `json:"id"`
}

// Counter is a named chat counter. Name and type form the key.
type Counter struct {
	Name    string     `gorm:"column:name;primaryKey" json:"name"`
	Type    string     `gorm:"column:type;primaryKey" json:"type"`
	Value   int        `gorm:"column:value;not null" json:"value"`
	Updated *time.Time `gorm:"column:updated" json:"updated"`
}

// TableName overrides the gorm table name.
func (Counter) TableName() string { return "twitchbot_counters" }

// CounterSet is a set request. A negative value removes the counter.
type CounterSet struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// Outcome tells what a set request did.
type Outcome string

// Set outcomes.
const (
	Created Outcome = "created"
	Changed Outcome = "changed"
	Removed Outcome = "removed"
	Skipped Outcome = "skipped"
)
