package form

import (
	"testing"
	"time"

	"OtoDist/core/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseReleaseDateEquivalentForms(t *testing.T) {
	want := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	for _, raw := range []string{
		"2026-03-01",
		"2026年3月1日",
		"2026-03-01T09:30:00+09:00",
	} {
		got, err := ParseReleaseDate(raw)
		require.NoError(t, err, raw)
		assert.True(t, got.Equal(want), "%s parsed to %s", raw, got)
	}
}

func TestParseReleaseDateImpossibleDay(t *testing.T) {
	for _, raw := range []string{"2024年2月30日", "2024-02-30", "2024-13-01"} {
		_, err := ParseReleaseDate(raw)
		assert.Error(t, err, raw)
	}
}

func TestParseReleaseDateYearRange(t *testing.T) {
	for _, raw := range []string{"1899-12-31", "2101-01-01"} {
		_, err := ParseReleaseDate(raw)
		var appErr *apperr.Error
		require.ErrorAs(t, err, &appErr, raw)
		assert.Equal(t, "DATE_FORMAT", appErr.Code)
	}

	for _, raw := range []string{"1900-01-01", "2100-12-31"} {
		_, err := ParseReleaseDate(raw)
		assert.NoError(t, err, raw)
	}
}

func TestParseReleaseDateGarbage(t *testing.T) {
	for _, raw := range []string{"", "not-a-date", "03/01/2026"} {
		_, err := ParseReleaseDate(raw)
		var appErr *apperr.Error
		require.ErrorAs(t, err, &appErr, raw)
		assert.Equal(t, "DATE_FORMAT", appErr.Code)
	}
}

func TestCheckReleaseLead(t *testing.T) {
	now := time.Date(2026, 1, 1, 15, 4, 5, 0, time.UTC)

	exactly := time.Date(2026, 1, 22, 0, 0, 0, 0, time.UTC)
	assert.NoError(t, CheckReleaseLead(exactly, now))

	tooSoon := time.Date(2026, 1, 21, 0, 0, 0, 0, time.UTC)
	assert.Error(t, CheckReleaseLead(tooSoon, now))

	sameDay := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.Error(t, CheckReleaseLead(sameDay, now))
}
