package loccsv

import (
	"fmt"
	"strings"
	"time"
)

var offsetLayouts = []string{"-07:00", "-0700", "-07"}

// Layouts that carry their own offset
var zonedLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04Z07:00",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05 -0700",
}

// Layouts interpreted in the row's timezone
var localLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// ParseOffset turns a timezone column ("-08:00", "+0530", "Z") into a fixed
// location. An empty value means UTC.
func ParseOffset(tz string) (*time.Location, error) {
	tz = strings.TrimSpace(tz)
	switch strings.ToUpper(tz) {
	case "", "Z", "UTC", "GMT":
		return time.UTC, nil
	}

	for _, layout := range offsetLayouts {
		if t, err := time.Parse(layout, tz); err == nil {
			_, offset := t.Zone()
			return time.FixedZone(tz, offset), nil
		}
	}
	return nil, fmt.Errorf("unrecognised UTC offset")
}

// ParseDatetime parses an absolute timestamp. Values without an offset are
// read in loc.
func ParseDatetime(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}

	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp format")
}

// parseDay builds the coarse day timestamp: date at 00:00 in the row's
// offset. Rows with no date fall back to the calendar day of datetime.
func parseDay(date string, datetime time.Time, loc *time.Location) (time.Time, error) {
	if date == "" {
		d := datetime.In(loc)
		return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc), nil
	}
	return time.ParseInLocation("2006-01-02", date, loc)
}
