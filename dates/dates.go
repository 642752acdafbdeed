// Package dates normalizes the free-form date strings accepted on the
// command line into the canonical YYYY-MM-DD form used in catalog filter
// expressions and report keys.
package dates

import (
	"fmt"
	"time"

	"github.com/araddon/dateparse"
)

// Layout is the canonical date layout.
const Layout = "2006-01-02"

// ParseTime parses a date string in any commonly written format.
func ParseTime(value string) (time.Time, error) {
	t, err := dateparse.ParseAny(value)
	if err != nil {
		return time.Time{}, fmt.Errorf("dates: cannot parse %q: %w", value, err)
	}
	return t, nil
}

// Normalize parses a date string and reformats it as YYYY-MM-DD.
func Normalize(value string) (string, error) {
	t, err := ParseTime(value)
	if err != nil {
		return "", err
	}
	return t.Format(Layout), nil
}
