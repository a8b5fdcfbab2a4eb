package challenges

import (
	"fmt"

	"pwsi/core/apperr"
)

// DefaultType is the bucket for challenges without a type.
const DefaultType = "main"

// Known challenge statuses.
const (
	StatusInProgress = "В процессе"
	StatusDone       = "Сделано"
	StatusDropped    = "Дропнуто"
)

// Challenge is one viewer-proposed challenge.
type Challenge struct {
	ID          int64   `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Name        string  `gorm:"column:name;not null" json:"name"`
	Picture     *string `gorm:"column:picture" json:"picture"`
	OrderBy     *string `gorm:"column:order_by" json:"order_by"`
	Description *string `gorm:"column:description" json:"description"`
	Comment     *string `gorm:"column:comment" json:"comment"`
	Status      *string `gorm:"column:status" json:"status"`
	Type        *string `gorm:"column:type" json:"type"`
	Price       *string `gorm:"column:price" json:"price"`
	Records     *string `gorm:"column:records" json:"records"`
}

// TableName overrides the gorm table name.
func (Challenge) TableName() string { return "challenges" }

func (c Challenge) bucket() string {
	if c.Type == nil || *c.Type == "" {
		return DefaultType
	}
	return *c.Type
}

// NewChallenge is an add request item.
type NewChallenge struct {
	Name        string  `json:"name"`
	Picture     *string `json:"picture"`
	OrderBy     *string `json:"order_by"`
	Description *string `json:"description"`
	Comment     *string `json:"comment"`
	Status      *string `json:"status"`
	Type        *string `json:"type"`
	Price       *string `json:"price"`
	Records     *string `json:"records"`
}

func (n NewChallenge) validate() error {
	if n.Name == "" {
		return fmt.Errorf("name is required: %w", apperr.ErrValidation)
	}
	return nil
}

func (n NewChallenge) record() Challenge {
	return Challenge{
		Name:        n.Name,
		Picture:     n.Picture,
		OrderBy:     n.OrderBy,
		Description: n.Description,
		Comment:     n.Comment,
		Status:      n.Status,
		Type:        n.Type,
		Price:       n.Price,
		Records:     n.Records,
	}
}

// ChallengePatch is an update request item. Empty strings clear a field.
type ChallengePatch struct {
	ID          int64   `json:"id"`
	Name        *string `json:"name"`
	Picture     *string `json:"picture"`
	OrderBy     *string `json:"order_by"`
	Description *string `json:"description"`
	Comment     *string `json:"comment"`
	Status      *string `json:"status"`
	Type        *string `json:"type"`
	Price       *string `json:"price"`
	Records     *string `json:"records"`
}

func (p ChallengePatch) apply(c *Challenge) map[string]any {
	cols := map[string]any{}
	if p.Name != nil && *p.Name != "" {
		c.Name = *p.Name
		cols["name"] = *p.Name
	}
	for _, f := range []struct {
		col string
		dst **string
		v   *string
	}{
		{"picture", &c.Picture, p.Picture},
		{"order_by", &c.OrderBy, p.OrderBy},
		{"description", &c.Description, p.Description},
		{"comment", &c.Comment, p.Comment},
		{"status", &c.Status, p.Status},
		{"type", &c.Type, p.Type},
		{"price", &c.Price, p.Price},
		{"records", &c.Records, p.Records},
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
	return cols
}

// DeletedChallenge is a delete request item.
type DeletedChallenge struct {
	ID int64 `json:"id"`
}
