package columns

import (
	"regexp"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// layouts are tried before the general-purpose parser; they cover the
// unambiguous shapes retail exports produce most often.
var layouts = []string{
	time.DateTime,
	time.DateOnly,
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
}

var (
	// plainNumber matches quantities, prices and ids, which are never dates.
	plainNumber = regexp.MustCompile(`^[+-]?\d+([.,]\d+)?$`)
	// dashedNumeric matches d-m-yyyy or m-d-yyyy, optionally followed by a time.
	dashedNumeric = regexp.MustCompile(`^(\d{1,2})-(\d{1,2})-(\d{4})(\s.*)?$`)
)

// minYear rejects values that only parse by landing in the first millennium.
const minYear = 1000

// ParseTime parses a loosely formatted timestamp. The result is a timezone-naive
// wall clock expressed in UTC.
//
// Bare numbers are only accepted in the 8-digit yyyymmdd form, so quantity,
// price or id columns are never mistaken for dates. Numeric dates with
// separators are read month first, as in 12/1/2010; when that is not a valid
// date the day and month are swapped, so 13/01/2024 is 13 January. Dashes and
// slashes follow the same rule.
func ParseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" || !strings.ContainsAny(s, "0123456789") {
		return time.Time{}, false
	}

	if plainNumber.MatchString(s) {
		if len(s) != 8 || !isDigits(s) {
			return time.Time{}, false
		}

		t, err := time.Parse("20060102", s)

		return t, err == nil
	}

	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return naive(t), true
		}
	}

	if m := dashedNumeric.FindStringSubmatch(s); m != nil {
		s = m[1] + "/" + m[2] + "/" + m[3] + m[4]
	}

	t, err := dateparse.ParseIn(s, time.UTC, dateparse.RetryAmbiguousDateWithSwap(true))
	if err != nil || t.Year() < minYear {
		return time.Time{}, false
	}

	return naive(t), true
}

// naive drops the zone while keeping the wall clock.
func naive(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}

	return true
}
