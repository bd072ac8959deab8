package l2l

import (
	"fmt"
	"strings"
	"time"
)

// DateTimeLayout is the date/time format the API accepts and returns.
const DateTimeLayout = "2006-01-02 15:04:05"

// dateLayouts are the input formats ParseDateTime accepts, tried in order.
var dateLayouts = []string{
	DateTimeLayout,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"01/02/2006 15:04:05",
	"01/02/2006",
}

// ParseDateTime parses a user-supplied date/time string, accepting the
// vendor format plus a handful of common variants.
func ParseDateTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// DateString formats a time in the format the API expects.
func DateString(t time.Time) string {
	return t.Format(DateTimeLayout)
}
