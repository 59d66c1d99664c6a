package dateutil

import (
	"fmt"
	"time"
)

// LabelFormat is the dd/mm/yyyy layout used by the attendance terminal for
// both scan rows and overtime requests.
const LabelFormat = "02/01/2006"

// StartOfDay returns the start of the day (00:00:00) for the given date
func StartOfDay(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
}

// TargetFor selects the attendance date a run should evaluate. Runs before
// cutoffHour look at yesterday (the previous night shift is only fully
// observable the following morning); runs at or after it look at today.
func TargetFor(now time.Time, cutoffHour int) time.Time {
	if now.Hour() < cutoffHour {
		return StartOfDay(now.AddDate(0, 0, -1))
	}
	return StartOfDay(now)
}

// FormatLabel formats a date as the terminal's dd/mm/yyyy label.
func FormatLabel(date time.Time) string {
	return date.Format(LabelFormat)
}

// ParseLabel parses a dd/mm/yyyy label into a local date.
func ParseLabel(label string) (time.Time, error) {
	t, err := time.ParseInLocation(LabelFormat, label, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date label %q: %w", label, err)
	}
	return t, nil
}

// WeekdayAbbr returns the three-letter English weekday abbreviation ("Mon",
// "Tue", ...) the schedule page tags its entries with.
func WeekdayAbbr(weekday time.Weekday) string {
	return weekday.String()[:3]
}
