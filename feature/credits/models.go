package credits

import (
	"fmt"

	"pwsi/core/apperr"

	"gorm.io/datatypes"
)

// Creator is one person credited for a work.
type Creator struct {
	Name string  `json:"name"`
	Link *string `json:"link"`
	Role *string `json:"role"`
}

// Credit is one entry of the credits page.
type Credit struct {
	ID              int64                       `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Name            string                      `gorm:"column:name;not null" json:"name"`
	Description     *string                     `gorm:"column:description" json:"description"`
	Picture         *string                     `gorm:"column:picture" json:"picture"`
	PictureSize     *string                     `gorm:"column:picture_size" json:"picture_size"`
	PictureOriginal *string                     `gorm:"column:picture_original" json:"picture_original"`
	Creators        datatypes.JSONSlice[Creator] `gorm:"column:creators" json:"creators"`
	Order           int                         `gorm:"column:order;not null" json:"order"`
}

// TableName overrides the gorm table name.
func (Credit) TableName() string { return "credits" }

// NewCredit is an add request item.
type NewCredit struct {
	Name            string    `json:"name"`
	Description     *string   `json:"description"`
	Picture         *string   `json:"picture"`
	PictureSize     *string   `json:"picture_size"`
	PictureOriginal *string   `json:"picture_original"`
	Creators        []Creator `json:"creators"`
	Order           *int      `json:"order"`
}

func (n NewCredit) validate() error {
	if n.Name == "" {
		return fmt.Errorf("name is required: %w", apperr.ErrValidation)
	}
	for _, c := range n.Creators {
		if c.Name == "" {
			return fmt.Errorf("%s: creator name is required: %w", n.Name, apperr.ErrValidation)
		}
	}
	return nil
}

func (n NewCredit) record(order int) Credit {
	return Credit{
		Name:            n.Name,
		Description:     n.Description,
		Picture:         n.Picture,
		PictureSize:     n.PictureSize,
		PictureOriginal: n.PictureOriginal,
		Creators:        datatypes.JSONSlice[Creator](n.Creators),
		Order:           order,
	}
}

// CreditPatch is an update request item.
type CreditPatch struct {
	ID              int64      `json:"id"`
	Name            *string    `json:"name"`
	Description     *string    `json:"description"`
	Picture         *string    `json:"picture"`
	PictureSize     *string    `json:"picture_size"`
	PictureOriginal *string    `json:"picture_original"`
	Creators        *[]Creator `json:"creators"`
	Order           *int       `json:"order"`
}

func (p CreditPatch) apply(c *Credit) map[string]any {
	cols := map[string]any{}
	if p.Name != nil {
		c.Name = *p.Name
		cols["name"] = *p.Name
	}
	for _, f := range []struct {
		col string
		dst **string
		v   *string
	}{
		{"description", &c.Description, p.Description},
		{"picture", &c.Picture, p.Picture},
		{"picture_size", &c.PictureSize, p.PictureSize},
		{"picture_original", &c.PictureOriginal, p.PictureOriginal},
	} {
		if f.v != nil {
			s := *f.v
			*f.dst = &s
			cols[f.col] = s
		}
	}
	if p.Creators != nil {
		c.Creators = datatypes.JSONSlice[Creator](*p.Creators)
		cols["creators"] = c.Creators
	}
	return cols
}

// DeletedCredit is a delete request item.
type DeletedCredit struct {
	ID int64 `json:"id"`
}
