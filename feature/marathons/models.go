package marathons

import (
	"fmt"

	"pwsi/core/apperr"
	"pwsi/core/database"

	"gorm.io/datatypes"
)

// Record is a link to a run or a result.
type Record struct {
	Name  string `json:"name"`
	URL   string `json:"url"`
	Order *int   `json:"order,omitempty"`
}

// Entry is either a marathon (no MarathonID) or one of its games.
type Entry struct {
	ID          int64                       `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Name        string                      `gorm:"column:name;not null" json:"name"`
	Description *string                     `gorm:"column:description" json:"description"`
	Comment     *string                     `gorm:"column:comment" json:"comment"`
	Status      *string                     `gorm:"column:status" json:"status"`
	DateStart   *database.Day               `gorm:"column:date_start" json:"date_start"`
	DateEnd     *database.Day               `gorm:"column:date_end" json:"date_end"`
	Picture     *string                     `gorm:"column:picture" json:"picture"`
	PictureMode *string                     `gorm:"column:picture_mode" json:"picture_mode"`
	Rules       datatypes.JSONSlice[string] `gorm:"column:rules" json:"rules"`
	Records     datatypes.JSONSlice[Record] `gorm:"column:records" json:"records"`
	Order       int                         `gorm:"column:order;not null" json:"order"`
	Link        *string                     `gorm:"column:link" json:"link"`
	MarathonID  *int64                      `gorm:"column:marathon_id;index" json:"marathon_id"`
	SteamID     *int64                      `gorm:"column:steam_id" json:"steam_id"`
}

// TableName overrides the gorm table name.
func (Entry) TableName() string { return "marathons" }

const defaultPictureMode = "landscape"

// NewEntry is an add request item.
type NewEntry struct {
	Name        string        `json:"name"`
	Description *string       `json:"description"`
	Comment     *string       `json:"comment"`
	Status      *string       `json:"status"`
	DateStart   *database.Day `json:"date_start"`
	DateEnd     *database.Day `json:"date_end"`
	Picture     *string       `json:"picture"`
	PictureMode *string       `json:"picture_mode"`
	Rules       []string      `json:"rules"`
	Records     []Record      `json:"records"`
	Order       *int          `json:"order"`
	Link        *string       `json:"link"`
	MarathonID  *int64        `json:"marathon_id"`
	SteamID     *int64        `json:"steam_id"`
}

func (n NewEntry) validate() error {
	if n.Name == "" {
		return fmt.Errorf("name is required: %w", apperr.ErrValidation)
	}
	return validateRecords(n.Records)
}

func validateRecords(records []Record) error {
	for _, r := range records {
		if r.Name == "" || r.URL == "" {
			return fmt.Errorf("record name and url are required: %w", apperr.ErrValidation)
		}
	}
	return nil
}

func (n NewEntry) record(order int) Entry {
	mode := defaultPictureMode
	if n.PictureMode != nil {
		mode = *n.PictureMode
	}
	return Entry{
		Name:        n.Name,
		Description: n.Description,
		Comment:     n.Comment,
		Status:      n.Status,
		DateStart:   n.DateStart,
		DateEnd:     n.DateEnd,
		Picture:     n.Picture,
		PictureMode: &mode,
		Rules:       datatypes.JSONSlice[string](n.Rules),
		Records:     datatypes.JSONSlice[Record](n.Records),
		Order:       order,
		Link:        n.Link,
		MarathonID:  n.MarathonID,
		SteamID:     n.SteamID,
	}
}

// EntryPatch is an update request item. A non-nil MarathonID moves the game
// to the end of another marathon.
type EntryPatch struct {
	ID          int64         `json:"id"`
	Name        *string       `json:"name"`
	Description *string       `json:"description"`
	Comment     *string       `json:"comment"`
	Status      *string       `json:"status"`
	DateStart   *database.Day `json:"date_start"`
	DateEnd     *database.Day `json:"date_end"`
	Picture     *string       `json:"picture"`
	PictureMode *string       `json:"picture_mode"`
	Rules       *[]string     `json:"rules"`
	Records     *[]Record     `json:"records"`
	Order       *int          `json:"order"`
	Link        *string       `json:"link"`
	MarathonID  *int64        `json:"marathon_id"`
	SteamID     *int64        `json:"steam_id"`
}

func (p EntryPatch) validate() error {
	if p.Records == nil {
		return nil
	}
	return validateRecords(*p.Records)
}

func (p EntryPatch) apply(e *Entry) map[string]any {
	cols := map[string]any{}
	if p.Name != nil {
		e.Name = *p.Name
		cols["name"] = *p.Name
	}
	for _, f := range []struct {
		col string
		dst **database.Day
		v   *database.Day
	}{
		{"date_start", &e.DateStart, p.DateStart},
		{"date_end", &e.DateEnd, p.DateEnd},
	} {
		if f.v != nil {
			d := *f.v
			*f.dst = &d
			cols[f.col] = d
		}
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
		{"picture_mode", &e.PictureMode, p.PictureMode},
		{"link", &e.Link, p.Link},
	} {
		if f.v != nil {
			s := *f.v
			*f.dst = &s
			cols[f.col] = s
		}
	}
	if p.Rules != nil {
		e.Rules = datatypes.JSONSlice[string](*p.Rules)
		cols["rules"] = e.Rules
	}
	if p.Records != nil {
		e.Records = datatypes.JSONSlice[Record](*p.Records)
		cols["records"] = e.Records
	}
	if p.SteamID != nil {
		id := *p.SteamID
		e.SteamID = &id
		cols["steam_id"] = id
	}
	return cols
}

// DeletedEntry is a delete request item.
type DeletedEntry struct {
	ID int64 `json:"id"`
}
