package auctions

import (
	"fmt"

	"pwsi/core/apperr"
	"pwsi/core/database"
)

// Entry is either an auction (no AuctionID) or one of its lots. Lots with a
// zero order are participants and stay outside the ranking.
type Entry struct {
	ID          int64         `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Name        string        `gorm:"column:name;not null" json:"name"`
	Date        *database.Day `gorm:"column:date" json:"date"`
	Description *string       `gorm:"column:description" json:"description"`
	Comment     *string       `gorm:"column:comment" json:"comment"`
	Status      *string       `gorm:"column:status" json:"status"`
	Picture     *string       `gorm:"column:picture" json:"picture"`
	Order       int           `gorm:"column:order;not null" json:"order"`
	OrderBy     *string       `gorm:"column:order_by" json:"order_by"`
	AuctionID   *int64        `gorm:"column:auction_id;index" json:"auction_id"`
}

// TableName overrides the gorm table name.
func (Entry) TableName() string { return "auctions" }

// Ranked reports whether the entry takes part in its partition's order.
func (e Entry) Ranked() bool {
	return e.AuctionID == nil || e.Order > 0
}

// NewEntry is an add request item.
type NewEntry struct {
	Name        string        `json:"name"`
	Date        *database.Day `json:"date"`
	Description *string       `json:"description"`
	Comment     *string       `json:"comment"`
	Status      *string       `json:"status"`
	Picture     *string       `json:"picture"`
	Order       *int          `json:"order"`
	OrderBy     *string       `json:"order_by"`
	AuctionID   *int64        `json:"auction_id"`
}

func (n NewEntry) validate() error {
	if n.Name == "" {
		return fmt.Errorf("name is required: %w", apperr.ErrValidation)
	}
	return nil
}

// participant reports whether the new lot joins without a rank.
func (n NewEntry) participant() bool {
	return n.AuctionID != nil && (n.Order == nil || *n.Order == 0)
}

func (n NewEntry) record(order int) Entry {
	return Entry{
		Name:        n.Name,
		Date:        n.Date,
		Description: n.Description,
		Comment:     n.Comment,
		Status:      n.Status,
		Picture:     n.Picture,
		Order:       order,
		OrderBy:     n.OrderBy,
		AuctionID:   n.AuctionID,
	}
}

// EntryPatch is an update request item. A non-nil AuctionID moves the lot
// to the end of another auction.
type EntryPatch struct {
	ID          int64         `json:"id"`
	Name        *string       `json:"name"`
	Date        *database.Day `json:"date"`
	Description *string       `json:"description"`
	Comment     *string       `json:"comment"`
	Status      *string       `json:"status"`
	Picture     *string       `json:"picture"`
	Order       *int          `json:"order"`
	OrderBy     *string       `json:"order_by"`
	AuctionID   *int64        `json:"auction_id"`
}

func (p EntryPatch) apply(e *Entry) map[string]any {
	cols := map[string]any{}
	if p.Name != nil {
		e.Name = *p.Name
		cols["name"] = *p.Name
	}
	if p.Date != nil {
		d := *p.Date
		e.Date = &d
		cols["date"] = d
	}
	for _, f := range []struct {
		col string
		dst **string
		v   *string
	}{
		{"description", &e.Description, p.Description},
		{"comment", &e.Comment, p.Comment},
		{"status", &e.Status, p.Status},
		{"picture", &e.Picture, p.Picture},
		{"order_by", &e.OrderBy, p.OrderBy},
	} {
		if f.v != nil {
			s := *f.v
			*f.dst = &s
			cols[f.col] = s
		}
	}
	return cols
}

// DeletedEntry is a delete request item.
type DeletedEntry struct {
	ID int64 `json:"id"`
}
