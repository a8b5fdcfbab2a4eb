package anime

import (
	"fmt"
	"time"

	"pwsi/core/apperr"
)

// Statuses the list knows about.
const (
	StatusWatching  = "Смотрим"
	StatusCompleted = "Просмотрено"
	StatusDropped   = "Заброшено"
)

// Erased is the timestamp a caller sends to clear a time field.
var Erased = time.Date(1969, time.December, 31, 23, 59, 59, 0, time.UTC)

// Title is one anime. Ids below enrich.Border are MyAnimeList ids.
type Title struct {
	ID            int64      `gorm:"column:id;primaryKey;autoIncrement:false" json:"id"`
	Name          string     `gorm:"column:name;not null" json:"name"`
	Link          *string    `gorm:"column:link" json:"link"`
	Type          *string    `gorm:"column:type" json:"type"`
	Episodes      *int       `gorm:"column:episodes" json:"episodes"`
	Picture       *string    `gorm:"column:picture" json:"picture"`
	Score         *int       `gorm:"column:score" json:"score"`
	Status        *string    `gorm:"column:status" json:"status"`
	AddedTime     *time.Time `gorm:"column:added_time" json:"added_time"`
	CompletedTime *time.Time `gorm:"column:completed_time" json:"completed_time"`
	Comment       *string    `gorm:"column:comment" json:"comment"`
	VoiceActing   *string    `gorm:"column:voice_acting" json:"voice_acting"`
	OrderBy       *string    `gorm:"column:order_by" json:"order_by"`
	Series        *string    `gorm:"column:series" json:"series"`
}

// TableName overrides the gorm table name.
func (Title) TableName() string { return "anime" }

func finished(status *string) bool {
	return status != nil && (*status == StatusCompleted || *status == StatusDropped)
}

// NewTitle is an add request item. A nil ID asks for a local id.
type NewTitle struct {
	ID            *int64     `json:"id"`
	Name          string     `json:"name"`
	Comment       *string    `json:"comment"`
	VoiceActing   *string    `json:"voice_acting"`
	OrderBy       *string    `json:"order_by"`
	Series        *string    `json:"series"`
	Score         *int       `json:"score"`
	Status        *string    `json:"status"`
	AddedTime     *time.Time `json:"added_time"`
	CompletedTime *time.Time `json:"completed_time"`
	Link          *string    `json:"link"`
	Type          *string    `json:"type"`
	Episodes      *int       `json:"episodes"`
	Picture       *string    `json:"picture"`
}

func (n NewTitle) validate() error {
	if n.Name == "" {
		return fmt.Errorf("name is required: %w", apperr.ErrValidation)
	}
	if n.ID != nil && *n.ID <= 0 {
		return fmt.Errorf("%s: id must be positive: %w", n.Name, apperr.ErrValidation)
	}
	return nil
}

// record builds the row. Added time defaults to now unless erased; the
// completion time is kept only for finished titles.
func (n NewTitle) record(id int64, now time.Time) Title {
	t := Title{
		ID:          id,
		Name:        n.Name,
		Link:        n.Link,
		Type:        n.Type,
		Episodes:    n.Episodes,
		Picture:     n.Picture,
		Score:       n.Score,
		Status:      n.Status,
		Comment:     n.Comment,
		VoiceActing: n.VoiceActing,
		OrderBy:     n.OrderBy,
		Series:      n.Series,
	}
	switch {
	case n.AddedTime == nil:
		t.AddedTime = &now
	case !n.AddedTime.Equal(Erased):
		added := *n.AddedTime
		t.AddedTime = &added
	}
	if finished(n.Status) {
		completed := now
		if n.CompletedTime != nil && !n.CompletedTime.Equal(Erased) {
			completed = *n.CompletedTime
		}
		t.CompletedTime = &completed
	}
	return t
}

// TitlePatch is an update request item. NewID moves the title to another
// id; -1 asks for a local one. Empty strings, -1 for numbers and Erased
// for times clear the field.
type TitlePatch struct {
	ID            int64      `json:"id"`
	NewID         *int64     `json:"new_id"`
	Name          *string    `json:"name"`
	Link          *string    `json:"link"`
	Comment       *string    `json:"comment"`
	VoiceActing   *string    `json:"voice_acting"`
	OrderBy       *string    `json:"order_by"`
	Series        *string    `json:"series"`
	Type          *string    `json:"type"`
	Episodes      *int       `json:"episodes"`
	Picture       *string    `json:"picture"`
	Score         *int       `json:"score"`
	Status        *string    `json:"status"`
	AddedTime     *time.Time `json:"added_time"`
	CompletedTime *time.Time `json:"completed_time"`
}

func (p TitlePatch) apply(t *Title, now time.Time) map[string]any {
	cols := map[string]any{}
	if p.Name != nil && *p.Name != "" {
		t.Name = *p.Name
		cols["name"] = *p.Name
	}
	for _, f := range []struct {
		col string
		dst **string
		v   *string
	}{
		{"link", &t.Link, p.Link},
		{"comment", &t.Comment, p.Comment},
		{"voice_acting", &t.VoiceActing, p.VoiceActing},
		{"order_by", &t.OrderBy, p.OrderBy},
		{"series", &t.Series, p.Series},
		{"type", &t.Type, p.Type},
		{"picture", &t.Picture, p.Picture},
		{"status", &t.Status, p.Status},
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
	for _, f := range []struct {
		col string
		dst **int
		v   *int
	}{
		{"episodes", &t.Episodes, p.Episodes},
		{"score", &t.Score, p.Score},
	} {
		if f.v == nil {
			continue
		}
		if *f.v == -1 {
			*f.dst = nil
			cols[f.col] = nil
			continue
		}
		n := *f.v
		*f.dst = &n
		cols[f.col] = n
	}

	completed := p.CompletedTime
	if p.Status != nil {
		switch {
		case finished(p.Status):
			if completed == nil {
				completed = &now
			}
		case *p.Status == "" || *p.Status == StatusWatching:
			completed = &Erased
		}
	}
	for _, f := range []struct {
		col string
		dst **time.Time
		v   *time.Time
	}{
		{"added_time", &t.AddedTime, p.AddedTime},
		{"completed_time", &t.CompletedTime, completed},
	} {
		if f.v == nil {
			continue
		}
		if f.v.Equal(Erased) {
			*f.dst = nil
			cols[f.col] = nil
			continue
		}
		ts := *f.v
		*f.dst = &ts
		cols[f.col] = ts
	}
	return cols
}

// DeletedTitle is a delete request item.
type DeletedTitle struct {
	ID int64 `json:"id"`
}
