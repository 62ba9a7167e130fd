package normalize

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/epe-tools/desvinculados-engine/pkg/apperrors"
	"github.com/epe-tools/desvinculados-engine/pkg/models"
)

// DatePolicy selects what Date does when a value cannot be normalized.
// Each ingestion path declares its policy explicitly so the drop-row versus
// use-today behavior is pinned per adapter instead of varying by accident.
type DatePolicy int

const (
	// DateFail returns an error for unparseable dates.
	DateFail DatePolicy = iota
	// DateFallbackToday substitutes the current date for unparseable dates.
	DateFallbackToday
)

// monthAbbrev maps the Spanish month abbreviations the commercial exports use.
var monthAbbrev = map[string]time.Month{
	"ene": time.January, "feb": time.February, "mar": time.March,
	"abr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "ago": time.August, "sep": time.September,
	"sept": time.September, "oct": time.October, "nov": time.November,
	"dic": time.December,
}

// spanishDatePattern matches forms like "3 oct. 2011" or "28  feb 1999".
var spanishDatePattern = regexp.MustCompile(`^(\d{1,2})\s+([a-z]+)\.?\s+(\d{4})$`)

// Date normalizes an arbitrary textual date into canonical YYYY-MM-DD form.
//
// Empty values and the literal tokens "none" and "nan" normalize to today's
// date regardless of policy; that is the sources' convention for "not yet
// dated", not an error. Anything else must either match the Spanish
// day-month-year form or already be canonical. On failure the policy decides
// between an error (DateFail) and today's date (DateFallbackToday).
func Date(raw string, policy DatePolicy, now time.Time) (string, error) {
	today := now.Format(models.DateFormat)

	cleaned := strings.ToLower(strings.TrimSpace(raw))
	cleaned = strings.TrimRight(cleaned, ".")
	cleaned = strings.TrimSpace(cleaned)

	if cleaned == "" || cleaned == "none" || cleaned == "nan" {
		return today, nil
	}

	if m := spanishDatePattern.FindStringSubmatch(cleaned); m != nil {
		day, _ := strconv.Atoi(m[1])
		year, _ := strconv.Atoi(m[3])
		month, ok := monthAbbrev[m[2]]
		if ok {
			if d, valid := calendarDate(year, month, day); valid {
				return d, nil
			}
			// Matched the pattern but the day does not exist in that
			// month; fall through to the failure policy rather than clamp.
			return failedDate(raw, policy, today)
		}
		return failedDate(raw, policy, today)
	}

	if parsed, err := time.Parse(models.DateFormat, cleaned); err == nil {
		if parsed.Format(models.DateFormat) == cleaned {
			return cleaned, nil
		}
	}

	return failedDate(raw, policy, today)
}

// calendarDate builds a canonical date string, rejecting combinations that
// do not exist on the calendar (time.Date would normalize Apr 31 to May 1).
func calendarDate(year int, month time.Month, day int) (string, bool) {
	d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if d.Year() != year || d.Month() != month || d.Day() != day {
		return "", false
	}
	return d.Format(models.DateFormat), true
}

func failedDate(raw string, policy DatePolicy, today string) (string, error) {
	if policy == DateFallbackToday {
		return today, nil
	}
	return "", fmt.Errorf("%w: %q", apperrors.ErrInvalidDate, raw)
}
