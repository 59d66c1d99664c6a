package schedule

import (
	"regexp"
	"strings"
)

// ShiftKind classifies a day's schedule. It is produced exactly once per run
// and consumed everywhere else as a typed value; no other component re-scans
// descriptor text.
type ShiftKind int

const (
	ShiftDay ShiftKind = iota + 1
	ShiftNight
	ShiftNonWorking
)

// String returns a short label for logging and config matching
func (k ShiftKind) String() string {
	switch k {
	case ShiftDay:
		return "day"
	case ShiftNight:
		return "night"
	default:
		return "non-working"
	}
}

// nightMarker is the start time printed for the night shift. The schedule
// page carries no structured shift type, only the descriptor text.
const nightMarker = "20:00"

// holidayMarker is the Thai "holiday" label on rest days.
const holidayMarker = "วันหยุด"

var timeToken = regexp.MustCompile(`\d{1,2}:\d{2}`)

// HasTimeToken reports whether a descriptor carries an hour:minute token,
// i.e. describes an actual working shift.
func HasTimeToken(descriptor string) bool {
	return timeToken.MatchString(descriptor)
}

// ClassifyShift maps a raw shift descriptor to its kind. A descriptor without
// any time token is a non-working day; one that mentions the 20:00 start is
// the night shift; anything else is the day shift.
func ClassifyShift(descriptor string) ShiftKind {
	if !HasTimeToken(descriptor) {
		return ShiftNonWorking
	}
	if strings.Contains(descriptor, nightMarker) {
		return ShiftNight
	}
	return ShiftDay
}

// IsHolidayText reports whether the descriptor is explicitly labeled as a
// holiday.
func IsHolidayText(descriptor string) bool {
	return strings.Contains(descriptor, holidayMarker)
}

// ShiftInfo is the resolved schedule fact for one target date.
//
// Kind is the effective shift type used for scan-window selection: on a
// non-working day it is borrowed from the week's first timed descriptor, so
// an employee called in on a rest day is still matched against the correct
// windows. Holiday records whether the day itself had no working shift.
type ShiftInfo struct {
	Descriptor string
	Kind       ShiftKind
	Holiday    bool
}
