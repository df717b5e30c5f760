package timeline

import "time"

const dayLayout = "2006-01-02"

// Midnight pins a time to UTC midnight. All day arithmetic in this package
// goes through it so daylight-saving and timezone offsets can never shift a
// date by a day.
func Midnight(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDay parses a calendar-day string (YYYY-MM-DD) at UTC midnight.
func ParseDay(s string) (time.Time, error) {
	t, err := time.Parse(dayLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	return Midnight(t), nil
}

// FormatDay renders a date as DD/MM/YYYY, the board's display format.
func FormatDay(t time.Time) string {
	return t.UTC().Format("02/01/2006")
}

// DaysBetween returns the signed number of whole calendar days from a to b.
// Negative when b is before a.
func DaysBetween(a, b time.Time) int {
	return int(Midnight(b).Sub(Midnight(a)).Hours() / 24)
}

// AddDays advances a date by n calendar days at UTC midnight.
func AddDays(t time.Time, n int) time.Time {
	return Midnight(t).AddDate(0, 0, n)
}

// WeekCommencing returns the Monday that starts the week containing t.
// Sunday counts as the last day of its week, so it maps back six days to
// the same week's Monday, not forward to the next one.
func WeekCommencing(t time.Time) time.Time {
	t = Midnight(t)
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	return AddDays(t, -(weekday - 1))
}
