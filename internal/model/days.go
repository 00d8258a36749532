package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Canonical weekday keys, stored in the database and used in trigger ids.
// Order matches time.Weekday (Sunday == 0).
const (
	Sun = "sun"
	Mon = "mon"
	Tue = "tue"
	Wed = "wed"
	Thu = "thu"
	Fri = "fri"
	Sat = "sat"
)

// AllDays lists the weekday keys in time.Weekday order.
var AllDays = []string{Sun, Mon, Tue, Wed, Thu, Fri, Sat}

var dayIndex = map[string]time.Weekday{
	Sun: time.Sunday,
	Mon: time.Monday,
	Tue: time.Tuesday,
	Wed: time.Wednesday,
	Thu: time.Thursday,
	Fri: time.Friday,
	Sat: time.Saturday,
}

// WeekdayOf maps a canonical day key to its time.Weekday.
func WeekdayOf(day string) (time.Weekday, bool) {
	wd, ok := dayIndex[day]
	return wd, ok
}

// NormalizeDays validates and dedupes a weekday selection, preserving
// canonical order. An empty selection defaults to every day, so the result is
// never empty.
func NormalizeDays(days []string) ([]string, error) {
	if len(days) == 0 {
		out := make([]string, len(AllDays))
		copy(out, AllDays)
		return out, nil
	}

	seen := make(map[string]bool, len(days))
	for _, d := range days {
		if _, ok := dayIndex[d]; !ok {
			return nil, fmt.Errorf("unknown weekday %q", d)
		}
		seen[d] = true
	}

	out := make([]string, 0, len(seen))
	for _, d := range AllDays {
		if seen[d] {
			out = append(out, d)
		}
	}
	return out, nil
}

// Days is a weekday selection stored as a JSON array column.
type Days []string

func (d Days) Value() (driver.Value, error) {
	if d == nil {
		d = Days{}
	}
	b, err := json.Marshal([]string(d))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (d *Days) Scan(src any) error {
	return scanJSON(src, (*[]string)(d), "days")
}

// StringList is a generic JSON-array-of-strings column, used for the native
// trigger ids armed for an alarm.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		l = StringList{}
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *StringList) Scan(src any) error {
	return scanJSON(src, (*[]string)(l), "trigger ids")
}

func scanJSON(src any, dst *[]string, what string) error {
	switch v := src.(type) {
	case nil:
		*dst = nil
		return nil
	case string:
		return json.Unmarshal([]byte(v), dst)
	case []byte:
		return json.Unmarshal(v, dst)
	default:
		return fmt.Errorf("cannot scan %T into %s", src, what)
	}
}
