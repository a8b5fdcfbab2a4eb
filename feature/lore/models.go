package lore

import (
	"fmt"

	"pwsi/core/apperr"
)

// Entry is one paragraph of the channel lore.
type Entry struct {
	ID      int64  `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Text    string `gorm:"column:text;type:text;not null" json:"text"`
	BlockID string `gorm:"column:block_id;not null" json:"block_id"`
	Order   int    `gorm:"column:order;not null" json:"order"`
}

// TableName overrides the gorm table name.
func (Entry) TableName() string { return "lore" }

// NewEntry is an add request item.
type NewEntry struct {
	Text    string `json:"text"`
	BlockID string `json:"block_id"`
	Order   *int   `json:"order"`
}

func (n NewEntry) validate() error {
	if n.BlockID == "" {
		return fmt.Errorf("block_id is required: %w", apperr.ErrValidation)
	}
	return nil
}

// EntryPatch is an update request item.
type EntryPatch struct {
	ID      int64   `json:"id"`
	Text    *string `json:"text"`
	BlockID *string `json:"block_id"`
	Order   *int    `json:"order"`
}

func (p EntryPatch) apply(e *Entry) map[string]any {
	cols := map[string]any{}
	if p.Text != nil {
		e.Text = *p.Text
		cols["text"] = *p.Text
	}
	if p.BlockID != nil {
		e.BlockID = *p.BlockID
		cols["block_id"] = *p.BlockID
	}
	return cols
}

// DeletedEntry is a delete request item.
type DeletedEntry struct {
	ID int64 `json:"id"`
}
