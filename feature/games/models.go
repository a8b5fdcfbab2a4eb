package games

import (
	"fmt"

	"pwsi/core/apperr"

	"gorm.io/datatypes"
)

// DefaultType is the bucket for games without a type.
const DefaultType = "main"

// Record is a link to a run or a result, shown in its order.
type Record struct {
	Name  string `json:"name"`
	URL   string `json:"url"`
	Order *int   `json:"order,omitempty"`
}

func (r Record) rank() int {
	if r.Order == nil {
		return 1
	}
	return *r.Order
}

// Game is one played game. Ids below enrich.Border are Steam app ids.
type Game struct {
	ID      int64                       `gorm:"column:id;primaryKey;autoIncrement:false" json:"id"`
	Name    string                      `gorm:"column:name;not null" json:"name"`
	Subname *string                     `gorm:"column:subname" json:"subname"`
	Link    *string                     `gorm:"column:link" json:"link"`
	Picture *string                     `gorm:"column:picture" json:"picture"`
	Status  *string                     `gorm:"column:status" json:"status"`
	Genre   string                      `gorm:"column:genre;not null" json:"genre"`
	Type    *string                     `gorm:"column:type" json:"type"`
	Records datatypes.JSONSlice[Record] `gorm:"column:records" json:"records"`
	Comment *string                     `gorm:"column:comment" json:"comment"`
	GiftBy  *string                     `gorm:"column:gift_by" json:"gift_by"`
	OrderBy *string                     `gorm:"column:order_by" json:"order_by"`
}

// TableName overrides the gorm table name.
func (Game) TableName() string { return "games" }

func (g Game) bucket() string {
	if g.Type == nil || *g.Type == "" {
		return DefaultType
	}
	return *g.Type
}

func validateRecords(records []Record) error {
	for _, r := range records {
		if r.Name == "" || r.URL == "" {
			return fmt.Errorf("record name and url are required: %w", apperr.ErrValidation)
		}
	}
	return nil
}

// NewGame is an add request item. A nil ID asks for a local id.
type NewGame struct {
	ID      *int64   `json:"id"`
	Name    string   `json:"name"`
	Subname *string  `json:"subname"`
	Status  *string  `json:"status"`
	Genre   *string  `json:"genre"`
	Type    *string  `json:"type"`
	Records []Record `json:"records"`
	Comment *string  `json:"comment"`
	GiftBy  *string  `json:"gift_by"`
	OrderBy *string  `json:"order_by"`
	Link    *string  `json:"link"`
	Picture *string  `json:"picture"`
}

func (n NewGame) validate() error {
	if n.Name == "" {
		return fmt.Errorf("name is required: %w", apperr.ErrValidation)
	}
	if n.ID != nil && *n.ID <= 0 {
		return fmt.Errorf("%s: id must be positive: %w", n.Name, apperr.ErrValidation)
	}
	return validateRecords(n.Records)
}

func (n NewGame) record(id int64) Game {
	g := Game{
		ID:      id,
		Name:    n.Name,
		Subname: n.Subname,
		Link:    n.Link,
		Picture: n.Picture,
		Status:  n.Status,
		Type:    n.Type,
		Comment: n.Comment,
		GiftBy:  n.GiftBy,
		OrderBy: n.OrderBy,
	}
	if n.Genre != nil {
		g.Genre = *n.Genre
	}
	if len(n.Records) > 0 {
		g.Records = datatypes.JSONSlice[Record](n.Records)
	}
	return g
}

// GamePatch is an update request item. NewID moves the game to another id;
// -1 asks for a local one. Empty strings and an empty record list clear
// the field.
type GamePatch struct {
	ID      int64     `json:"id"`
	NewID   *int64    `json:"new_id"`
	Name    *string   `json:"name"`
	Subname *string   `json:"subname"`
	Link    *string   `json:"link"`
	Picture *string   `json:"picture"`
	Status  *string   `json:"status"`
	Genre   *string   `json:"genre"`
	Type    *string   `json:"type"`
	Records *[]Record `json:"records"`
	Comment *string   `json:"comment"`
	GiftBy  *string   `json:"gift_by"`
	OrderBy *string   `json:"order_by"`
}

func (p GamePatch) validate() error {
	if p.Records == nil {
		return nil
	}
	return validateRecords(*p.Records)
}

func (p GamePatch) apply(g *Game) map[string]any {
	cols := map[string]any{}
	if p.Name != nil && *p.Name != "" {
		g.Name = *p.Name
		cols["name"] = *p.Name
	}
	if p.Genre != nil {
		g.Genre = *p.Genre
		cols["genre"] = *p.Genre
	}
	for _, f := range []struct {
		col string
		dst **string
		v   *string
	}{
		{"subname", &g.Subname, p.Subname},
		{"link", &g.Link, p.Link},
		{"picture", &g.Picture, p.Picture},
		{"status", &g.Status, p.Status},
		{"type", &g.Type, p.Type},
		{"comment", &g.Comment, p.Comment},
		{"gift_by", &g.GiftBy, p.GiftBy},
		{"order_by", &g.OrderBy, p.OrderBy},
	} {
		if f.v == nil {
			continue
		}
		if *f.v == "" {
			*f.dst = nil
			cols[f.col] = nil
			continue
		}
		s := *f.v
		*f.dst = &s
		cols[f.col] = s
	}
	if p.Records != nil {
		g.Records = nil
		if len(*p.Records) > 0 {
			g.Records = datatypes.JSONSlice[Record](*p.Records)
		}
		cols["records"] = g.Records
	}
	return cols
}

// DeletedGame is a delete request item.
type DeletedGame struct {
	ID int64 `json:"id"`
}

// GenreRename renames a genre across every game.
type GenreRename struct {
	Name    string `json:"name"`
	NewName string `json:"new_name"`
}
