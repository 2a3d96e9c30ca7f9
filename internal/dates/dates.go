// Package dates parses and renders task deadlines. The primary input
// convention is a Jalali (Persian) calendar date, with Gregorian layouts as
// fallbacks; the first convention that parses wins.
package dates

import (
	"errors"
	"regexp"
	"strconv"
	"time"

	ptime "github.com/yaa110/go-persian-calendar"
)

var (
	// ErrBadFormat means the input matched no accepted date layout.
	ErrBadFormat = errors.New("unrecognized date format")
	// ErrPastDate means the date parsed but is not strictly in the future.
	ErrPastDate = errors.New("date is not in the future")
)

var dashDate = regexp.MustCompile(`^(\d{3,4})[-/](\d{1,2})[-/](\d{1,2})$`)

// Jalali years stay below 1700 for the next few centuries, so the year alone
// decides which calendar a YYYY-MM-DD string belongs to.
const maxJalaliYear = 1700

var gregorianLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"02.01.2006",
}

// Parse converts a date string to a time.Time at midnight local time.
func Parse(s string) (time.Time, error) {
	if m := dashDate.FindStringSubmatch(s); m != nil {
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		day, _ := strconv.Atoi(m[3])
		if month < 1 || month > 12 || day < 1 || day > 31 {
			return time.Time{}, ErrBadFormat
		}
		if year < maxJalaliYear {
			pt := ptime.Date(year, ptime.Month(month), day, 0, 0, 0, 0, time.Local)
			// ptime.Date normalizes overflow days into the next month, so a
			// nonexistent date like Esfand 30 in a common year would silently
			// land on a different day. Round-trip to catch that.
			if pt.Year() != year || int(pt.Month()) != month || pt.Day() != day {
				return time.Time{}, ErrBadFormat
			}
			return pt.Time(), nil
		}
	}
	for _, layout := range gregorianLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, ErrBadFormat
}

// ParseDeadline parses s and requires the result to be strictly after now.
// "Today" parses to midnight and is therefore rejected.
func ParseDeadline(s string, now time.Time) (time.Time, error) {
	t, err := Parse(s)
	if err != nil {
		return time.Time{}, err
	}
	if !t.After(now) {
		return time.Time{}, ErrPastDate
	}
	return t, nil
}

// FormatJalali renders a stored date back in the primary calendar.
func FormatJalali(t time.Time) string {
	if t.IsZero() {
		return "N/A"
	}
	pt := ptime.New(t)
	return pad4(pt.Year()) + "-" + pad2(int(pt.Month())) + "-" + pad2(pt.Day())
}

func pad2(v int) string {
	if v < 10 {
		return "0" + strconv.Itoa(v)
	}
	return strconv.Itoa(v)
}

func pad4(v int) string {
	s := strconv.Itoa(v)
	for len(s) < 4 {
		s = "0" + s
	}
	return s
}
