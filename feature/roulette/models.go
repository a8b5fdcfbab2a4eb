package roulette

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"pwsi/core/apperr"
)

var percentRe = regexp.MustCompile(`\((.+?)%\)`)

// percent extracts the drop chance from a rarity label such as "Rare (12,5%)".
func percent(rarity string) (float64, bool) {
	m := percentRe.FindStringSubmatch(rarity)
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(m[1]), ",", "."), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func validateRarity(rarity string) error {
	if _, ok := percent(rarity); !ok {
		return fmt.Errorf("rarity %q has no percentage: %w", rarity, apperr.ErrValidation)
	}
	return nil
}

// Award is one prize of the roulette.
type Award struct {
	ID          int64   `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Name        string  `gorm:"column:name;not null;uniqueIndex" json:"name"`
	Rarity      string  `gorm:"column:rarity;not null" json:"rarity"`
	Description *string `gorm:"column:description" json:"description"`
}

// TableName overrides the gorm table name.
func (Award) TableName() string { return "roulette_awards" }

// NewAward is an add request item.
type NewAward struct {
	Name        string  `json:"name"`
	Rarity      string  `json:"rarity"`
	Description *string `json:"description"`
}

func (n NewAward) validate() error {
	if n.Name == "" {
		return fmt.Errorf("name is required: %w", apperr.ErrValidation)
	}
	return validateRarity(n.Rarity)
}

func (n NewAward) record() Award {
	return Award{Name: n.Name, Rarity: n.Rarity, Description: n.Description}
}

// AwardPatch is an update request item.
type AwardPatch struct {
	ID          int64   `json:"id"`
	Name        *string `json:"name"`
	Rarity      *string `json:"rarity"`
	Description *string `json:"description"`
}

func (p AwardPatch) validate() error {
	if p.Name != nil && *p.Name == "" {
		return fmt.Errorf("name can't be empty: %w", apperr.ErrValidation)
	}
	if p.Rarity != nil {
		return validateRarity(*p.Rarity)
	}
	return nil
}

func (p AwardPatch) apply(a *Award) map[string]any {
	cols := map[string]any{}
	if p.Name != nil {
		a.Name = *p.Name
		cols["name"] = *p.Name
	}
	if p.Rarity != nil {
		a.Rarity = *p.Rarity
		cols["rarity"] = *p.Rarity
	}
	if p.Description != nil {
		d := *p.Description
		a.Description = &d
		cols["description"] = d
	}
	return cols
}

// DeletedAward is a delete request item.
type DeletedAward struct {
	ID int64 `json:"id"`
}
