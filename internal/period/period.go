// Package period converts between the month labels people type ("Jan'24",
// "January 2024") and the YYYY-MM form the allowance API expects.
package period

import (
	"strings"
	"time"

	"github.com/go-faster/errors"
)

// WireLayout is the month format sent to the backend.
const WireLayout = "2006-01"

// DisplayLayout is the compact month label used in tables.
const DisplayLayout = "Jan'06"

// ErrInvalidMonth is returned when a month label matches no known layout.
var ErrInvalidMonth = errors.New("invalid month")

var inputLayouts = []string{
	WireLayout,
	"2006-01-02",
	DisplayLayout,
	"Jan '06",
	"Jan-06",
	"Jan 06",
	"Jan 2006",
	"Jan-2006",
	"January 2006",
	"January'06",
	"01/2006",
	"1/2006",
}

// Parse reads a month label in any supported layout and returns the first
// instant of that month in UTC.
func Parse(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "’", "'")
	if s == "" {
		return time.Time{}, errors.Wrap(ErrInvalidMonth, "empty")
	}
	for _, layout := range inputLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, errors.Wrapf(ErrInvalidMonth, "%q", s)
}

// Normalize returns the wire form of a month label. Empty input stays empty.
func Normalize(s string) (string, error) {
	if strings.TrimSpace(s) == "" {
		return "", nil
	}
	t, err := Parse(s)
	if err != nil {
		return "", err
	}
	return t.Format(WireLayout), nil
}

// Display renders a month label as "Jan'24". Unparseable input is returned
// unchanged so tables still show what the backend sent.
func Display(s string) string {
	t, err := Parse(s)
	if err != nil {
		return s
	}
	return t.Format(DisplayLayout)
}

// IsWire reports whether s is already in YYYY-MM form.
func IsWire(s string) bool {
	if len(s) != len(WireLayout) {
		return false
	}
	_, err := time.Parse(WireLayout, s)
	return err == nil
}
