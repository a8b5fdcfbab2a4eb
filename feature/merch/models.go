package merch

import (
	"fmt"

	"pwsi/core/apperr"
)

// Item is one piece of merch on the shop page.
type Item struct {
	ID          int64   `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Name        string  `gorm:"column:name;not null" json:"name"`
	Description *string `gorm:"column:description" json:"description"`
	Price       *string `gorm:"column:price" json:"price"`
	Status      *string `gorm:"column:status" json:"status"`
	CreatorName *string `gorm:"column:creator_name" json:"creator_name"`
	CreatorLink *string `gorm:"column:creator_link" json:"creator_link"`
	Picture     *string `gorm:"column:picture" json:"picture"`
	PictureSize *string `gorm:"column:picture_size" json:"picture_size"`
	Order       int     `gorm:"column:order;not null" json:"order"`
}

// TableName overrides the gorm table name.
func (Item) TableName() string { return "merch" }

// NewItem is an add request item.
type NewItem struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Price       *string `json:"price"`
	Status      *string `json:"status"`
	CreatorName *string `json:"creator_name"`
	CreatorLink *string `json:"creator_link"`
	Picture     *string `json:"picture"`
	PictureSize *string `json:"picture_size"`
	Order       *int    `json:"order"`
}

func (n NewItem) record(order int) Item {
	return Item{
		Name:        n.Name,
		Description: n.Description,
		Price:       n.Price,
		Status:      n.Status,
		CreatorName: n.CreatorName,
		CreatorLink: n.CreatorLink,
		Picture:     n.Picture,
		PictureSize: n.PictureSize,
		Order:       order,
	}
}

// ItemPatch is an update request item.
type ItemPatch struct {
	ID          int64   `json:"id"`
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Price       *string `json:"price"`
	Status      *string `json:"status"`
	CreatorName *string `json:"creator_name"`
	CreatorLink *string `json:"creator_link"`
	Picture     *string `json:"picture"`
	PictureSize *string `json:"picture_size"`
	Order       *int    `json:"order"`
}

func (p ItemPatch) apply(it *Item) map[string]any {
	cols := map[string]any{}
	if p.Name != nil {
		it.Name = *p.Name
		cols["name"] = *p.Name
	}
	set := func(col string, dst **string, v *string) {
		if v != nil {
			s := *v
			*dst = &s
			cols[col] = s
		}
	}
	set("description", &it.Description, p.Description)
	set("price", &it.Price, p.Price)
	set("status", &it.Status, p.Status)
	set("creator_name", &it.CreatorName, p.CreatorName)
	set("creator_link", &it.CreatorLink, p.CreatorLink)
	set("picture", &it.Picture, p.Picture)
	set("picture_size", &it.PictureSize, p.PictureSize)
	return cols
}

// DeletedItem is a delete request item.
type DeletedItem struct {
	ID int64 `json:"id"`
}

// StatusRequest changes the shop status.
type StatusRequest struct {
	Status string `json:"status"`
}

func validateNames(items []NewItem) error {
	for _, it := range items {
		if it.Name == "" {
			return fmt.Errorf("name is required: %w", apperr.ErrValidation)
		}
	}
	return nil
}
