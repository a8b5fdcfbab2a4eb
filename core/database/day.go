package database

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

const dayLayout = "2006-01-02"

// Day is a calendar date kept in a date column and written as YYYY-MM-DD.
type Day struct {
	datatypes.Date
}

// ParseDay parses a YYYY-MM-DD string.
func ParseDay(s string) (Day, error) {
	t, err := time.Parse(dayLayout, s)
	if err != nil {
		return Day{}, err
	}
	return Day{datatypes.Date(t)}, nil
}

func (d Day) String() string {
	return time.Time(d.Date).Format(dayLayout)
}

func (d Day) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Day) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseDay(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
