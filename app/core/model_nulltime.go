package core

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// NullTime is a nullable timestamp stored as DATETIME. Time must stay the
// first field so gorm derives the column type from it.
type NullTime struct {
	Time  time.Time
	Valid bool // Valid is true if Time is not NULL
}

func Now() NullTime {
	return NullTime{Time: time.Now().UTC(), Valid: true}
}

func NewNullTime(t time.Time) NullTime {
	return NullTime{Time: t, Valid: !t.IsZero()}
}

var nullTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999Z0700",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func (u *NullTime) FromString(s string) error {
	for _, layout := range nullTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			u.Time = t
			u.Valid = true
			return nil
		}
	}
	u.Time = time.Time{}
	u.Valid = false
	return fmt.Errorf("unrecognised time %q", s)
}

func (u *NullTime) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) || bytes.Equal(data, []byte(`""`)) {
		u.Time = time.Time{}
		u.Valid = false
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	return u.FromString(s)
}

func (u NullTime) MarshalJSON() ([]byte, error) {
	if !u.Valid || u.Time.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(u.Time)
}

// Scan implements the Scanner interface.
func (nt *NullTime) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		nt.Time, nt.Valid = time.Time{}, false
	case time.Time:
		nt.Time, nt.Valid = v, true
	case []byte:
		return nt.FromString(string(v))
	case string:
		return nt.FromString(v)
	default:
		return fmt.Errorf("cannot scan %T into NullTime", value)
	}
	return nil
}

// Value implements the driver Valuer interface.
func (nt NullTime) Value() (driver.Value, error) {
	if !nt.Valid {
		return nil, nil
	}
	return nt.Time, nil
}
