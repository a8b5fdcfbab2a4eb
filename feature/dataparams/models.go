package dataparams

import (
	"fmt"

	"pwsi/core/apperr"
)

// Param is one named setting. Exactly one of the value columns is set.
type Param struct {
	Name       string   `gorm:"column:name;primaryKey" json:"name"`
	ValueBool  *bool    `gorm:"column:value_bool" json:"value_bool"`
	ValueInt   *int64   `gorm:"column:value_int" json:"value_int"`
	ValueFloat *float64 `gorm:"column:value_float" json:"value_float"`
	ValueStr   *string  `gorm:"column:value_str" json:"value_str"`
}

// TableName overrides the gorm table name.
func (Param) TableName() string { return "data_params" }

// Value returns the set value or nil.
func (p Param) Value() any {
	switch {
	case p.ValueBool != nil:
		return *p.ValueBool
	case p.ValueInt != nil:
		return *p.ValueInt
	case p.ValueFloat != nil:
		return *p.ValueFloat
	case p.ValueStr != nil:
		return *p.ValueStr
	}
	return nil
}

func (p Param) validate() error {
	if p.Name == "" {
		return fmt.Errorf("name is required: %w", apperr.ErrValidation)
	}
	count := 0
	for _, set := range []bool{p.ValueBool != nil, p.ValueInt != nil, p.ValueFloat != nil, p.ValueStr != nil} {
		if set {
			count++
		}
	}
	switch count {
	case 0:
		return fmt.Errorf("%s: need one value: %w", p.Name, apperr.ErrValidation)
	case 1:
		return nil
	default:
		return fmt.Errorf("%s: need only one value: %w", p.Name, apperr.ErrValidation)
	}
}

// columns returns every value column so an update clears the others.
func (p Param) columns() map[string]any {
	return map[string]any{
		"value_bool":  p.ValueBool,
		"value_int":   p.ValueInt,
		"value_float": p.ValueFloat,
		"value_str":   p.ValueStr,
	}
}

// ParamName is a delete request item.
type ParamName struct {
	Name string `json:"name"`
}

// Bool builds a boolean param.
func Bool(name string, v bool) Param { return Param{Name: name, ValueBool: &v} }

// Int builds an integer param.
func Int(name string, v int64) Param { return Param{Name: name, ValueInt: &v} }

// String builds a string param.
func String(name string, v string) Param { return Param{Name: name, ValueStr: &v} }

// Names of the params the code relies on.
const (
	TimecodeMessage           = "TIMECODE_MESSAGE"
	SiteMessagesEnabled       = "SITE_MESSAGES_ENABLED"
	SiteMessagesTitleText     = "SITE_MESSAGES_TITLE_TEXT"
	SiteMessagesTitleVisible  = "SITE_MESSAGES_TITLE_VISIBLE"
	SiteMessagesTitleEditable = "SITE_MESSAGES_TITLE_EDITABLE"
	BiteCheatStreamerPercent  = "BITE_CHEAT_STREAMER_PERCENT"
	BiteCheatDefensePercent   = "BITE_CHEAT_DEFENSE_PERCENT"
	MerchStatus               = "MERCH_STATUS"
)

// Defaults are seeded at setup and reset and cannot be deleted.
func Defaults() []Param {
	return []Param{
		String(TimecodeMessage, "Saved"),
		Bool(SiteMessagesEnabled, false),
		String(SiteMessagesTitleText, ""),
		Bool(SiteMessagesTitleVisible, false),
		Bool(SiteMessagesTitleEditable, false),
		Int(BiteCheatStreamerPercent, 0),
		Int(BiteCheatDefensePercent, 0),
		String(MerchStatus, ""),
	}
}

func isDefault(name string) bool {
	for _, d := range Defaults() {
		if d.Name == name {
			return true
		}
	}
	return false
}
