package timeutil

import (
	"fmt"
	"strconv"
	"strings"
)

// Absent is the display marker for a missing or unparsable clock time.
const Absent = "--:--"

// ToMinutes parses a clock time string ("H:MM" or "HH:MM") into minutes since
// midnight. Malformed input is a normal outcome, reported via the second
// return value, never a panic.
func ToMinutes(s string) (int, bool) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return 0, false
	}

	hour, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, false
	}
	minute, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, false
	}

	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, false
	}

	return hour*60 + minute, true
}

// FromMinutes formats minutes since midnight as "HH:MM".
// Negative input yields the Absent marker.
func FromMinutes(total int) string {
	if total < 0 || total >= 24*60 {
		return Absent
	}
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

// HourOf returns the hour component of a clock time string, or false when the
// string does not parse.
func HourOf(s string) (int, bool) {
	minutes, ok := ToMinutes(s)
	if !ok {
		return 0, false
	}
	return minutes / 60, true
}
