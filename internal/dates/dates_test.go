package dates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJalali(t *testing.T) {
	got, err := Parse("1403-10-10")
	require.NoError(t, err)
	assert.Equal(t, 2024, got.Year())
	assert.Equal(t, time.December, got.Month())
	assert.Equal(t, 30, got.Day())

	// Slash separator is accepted too.
	slash, err := Parse("1403/10/10")
	require.NoError(t, err)
	assert.True(t, got.Equal(slash))
}

func TestParseGregorian(t *testing.T) {
	want := time.Date(2025, 3, 14, 0, 0, 0, 0, time.Local)

	for _, input := range []string{"2025-03-14", "2025/03/14", "14.03.2025"} {
		got, err := Parse(input)
		require.NoError(t, err, input)
		assert.True(t, want.Equal(got), input)
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	for _, input := range []string{"", "not a date", "1403-13-01", "1403-01-40", "12345"} {
		_, err := Parse(input)
		assert.ErrorIs(t, err, ErrBadFormat, input)
	}

	// Days past the end of a Jalali month must not roll into the next one.
	// Esfand 1402 has 29 days, Bahman always has 30.
	for _, input := range []string{"1402-12-30", "1403-11-31"} {
		_, err := Parse(input)
		assert.ErrorIs(t, err, ErrBadFormat, input)
	}

	// Esfand 30 does exist in a leap year.
	got, err := Parse("1403-12-30")
	require.NoError(t, err)
	assert.Equal(t, "1403-12-30", FormatJalali(got))
}

func TestParseDeadline(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.Local)

	// Tomorrow is fine.
	got, err := ParseDeadline("2025-06-16", now)
	require.NoError(t, err)
	assert.Equal(t, 16, got.Day())

	// Today parses to midnight, which is already behind noon.
	_, err = ParseDeadline("2025-06-15", now)
	assert.ErrorIs(t, err, ErrPastDate)

	_, err = ParseDeadline("2025-06-01", now)
	assert.ErrorIs(t, err, ErrPastDate)

	// Format errors stay distinct from past-date errors.
	_, err = ParseDeadline("junk", now)
	assert.ErrorIs(t, err, ErrBadFormat)
	assert.NotErrorIs(t, err, ErrPastDate)
}

func TestFormatJalali(t *testing.T) {
	assert.Equal(t, "N/A", FormatJalali(time.Time{}))

	d := time.Date(2024, 12, 30, 0, 0, 0, 0, time.Local)
	assert.Equal(t, "1403-10-10", FormatJalali(d))
}

func TestFormatJalaliRoundTrip(t *testing.T) {
	parsed, err := Parse("1404-01-01")
	require.NoError(t, err)
	assert.Equal(t, "1404-01-01", FormatJalali(parsed))
}
