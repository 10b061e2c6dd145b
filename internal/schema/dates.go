package schema

import (
	"regexp"
	"strconv"
	"time"
)

// Matches a date of three numeric components, e.g. 2017-01-20, 20/1/2017.
var dateSepPattern = regexp.MustCompile(`^(\d{1,4})[-./\\](\d{1,2})[-./\\](\d{1,4})$`)

// ParseDate parses a date literal as a local date (no time of day) in the
// given timezone. Four-digit years may come first (YYYY-MM-DD) or last; for
// two ambiguous leading components, dayFirst selects DD-MM over MM-DD.
// Returns midnight of that day in loc, and false if the value is not a
// recognizable date.
func ParseDate(value string, loc *time.Location, dayFirst bool) (time.Time, bool) {
	m := dateSepPattern.FindStringSubmatch(value)
	if m == nil {
		return time.Time{}, false
	}

	first, _ := strconv.Atoi(m[1])
	second, _ := strconv.Atoi(m[2])
	third, _ := strconv.Atoi(m[3])

	var year, month, day int
	switch {
	case len(m[1]) == 4:
		year, month, day = first, second, third
	case len(m[3]) == 4 && dayFirst:
		day, month, year = first, second, third
	case len(m[3]) == 4:
		month, day, year = first, second, third
	default:
		// two-digit years are ambiguous in every position
		return time.Time{}, false
	}

	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}

	date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc)

	// reject normalized overflows such as Feb 30
	if date.Day() != day || date.Month() != time.Month(month) {
		return time.Time{}, false
	}

	return date, true
}
