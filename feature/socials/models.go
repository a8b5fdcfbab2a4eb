package socials

import (
	"fmt"

	"pwsi/core/apperr"
)

// Social is one link shown in the site footer.
type Social struct {
	ID    int64   `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Name  string  `gorm:"column:name;not null" json:"name"`
	Link  string  `gorm:"column:link;not null;uniqueIndex" json:"link"`
	Icon  string  `gorm:"column:icon;not null" json:"icon"`
	Type  *string `gorm:"column:type" json:"type"`
	Order int     `gorm:"column:order;not null" json:"order"`
}

// TableName overrides the gorm table name.
func (Social) TableName() string { return "socials" }

// NewSocial is an add request item.
type NewSocial struct {
	Name  string `json:"name"`
	Link  string `json:"link"`
	Icon  string `json:"icon"`
	Type  string `json:"type"`
	Order *int   `json:"order"`
}

func (n NewSocial) validate() error {
	if n.Name == "" || n.Link == "" || n.Icon == "" {
		return fmt.Errorf("name, link and icon are required: %w", apperr.ErrValidation)
	}
	return nil
}

func (n NewSocial) record(order int) Social {
	t := n.Type
	return Social{Name: n.Name, Link: n.Link, Icon: n.Icon, Type: &t, Order: order}
}

// SocialPatch is an update request item. Nil fields stay unchanged.
type SocialPatch struct {
	ID    int64   `json:"id"`
	Name  *string `json:"name"`
	Link  *string `json:"link"`
	Icon  *string `json:"icon"`
	Type  *string `json:"type"`
	Order *int    `json:"order"`
}

// apply copies the set fields into r and returns the changed columns.
func (p SocialPatch) apply(r *Social) map[string]any {
	cols := map[string]any{}
	if p.Name != nil {
		r.Name = *p.Name
		cols["name"] = *p.Name
	}
	if p.Link != nil {
		r.Link = *p.Link
		cols["link"] = *p.Link
	}
	if p.Icon != nil {
		r.Icon = *p.Icon
		cols["icon"] = *p.Icon
	}
	if p.Type != nil {
		t := *p.Type
		r.Type = &t
		cols["type"] = t
	}
	return cols
}

// DeletedSocial is a delete request item.
type DeletedSocial struct {
	ID int64 `json:"id"`
}
