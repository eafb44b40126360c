package form

import (
	"time"

	"OtoDist/core/apperr"
)

// Accepted layouts. The 年月日 form comes from the localized date picker,
// which does not zero-pad month or day.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02",
	"2006年1月2日",
}

const (
	minYear = 1900
	maxYear = 2100
)

// ParseReleaseDate parses an ISO-8601 timestamp, a plain date, or a
// localized 年月日 string into a calendar date (midnight UTC). Both forms of
// the same day yield the same result. Out-of-range years and impossible
// days (2月30日) are rejected.
func ParseReleaseDate(raw string) (time.Time, error) {
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, raw)
		if err != nil {
			continue
		}
		if t.Year() < minYear || t.Year() > maxYear {
			return time.Time{}, apperr.DateFormat(raw)
		}
		y, m, d := t.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
	}
	return time.Time{}, apperr.DateFormat(raw)
}

// MinReleaseLead is the required gap between submission and release.
const MinReleaseLead = 21 * 24 * time.Hour

// CheckReleaseLead verifies the release date is at least MinReleaseLead
// ahead of now, comparing calendar dates.
func CheckReleaseLead(release, now time.Time) error {
	ny, nm, nd := now.UTC().Date()
	today := time.Date(ny, nm, nd, 0, 0, 0, 0, time.UTC)
	if release.Before(today.Add(MinReleaseLead)) {
		return apperr.Validation("Release date must be at least 21 days from today")
	}
	return nil
}
