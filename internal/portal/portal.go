package portal

import (
	"context"
	"time"
)

// Direction is a week navigation action on the schedule page.
type Direction int

const (
	DirectionPrev Direction = iota + 1
	DirectionNext
)

// String returns the wire value used by the navigation endpoint
func (d Direction) String() string {
	if d == DirectionNext {
		return "next"
	}
	return "prev"
}

// ScanRecord is one raw punch event as the terminal reports it: a dd/mm/yyyy
// date label and an HH:MM time string. Multiple records may share a date label
// and carry no ordering guarantee.
type ScanRecord struct {
	DateLabel string
	Time      string
}

// OvertimeRecord is one row from the overtime-request listing. WorkDate is
// the designated work-date column; Row is the full row text, kept because the
// terminal is inconsistent about which field actually carries the date.
type OvertimeRecord struct {
	WorkDate string
	Row      string
}

// Source is the data-acquisition collaborator. Implementations talk to the
// biometric terminal; the engine only ever sees raw strings and explicit
// errors from it.
type Source interface {
	// WeekLabel returns the free-text label of the currently displayed
	// schedule week.
	WeekLabel(ctx context.Context) (string, error)

	// Navigate moves the schedule view one week in the given direction.
	Navigate(ctx context.Context, dir Direction) error

	// DayShiftText returns the raw shift descriptor for the given weekday of
	// the currently displayed week.
	DayShiftText(ctx context.Context, weekday time.Weekday) (string, error)

	// ScanRecords returns all punch events in the inclusive date interval.
	ScanRecords(ctx context.Context, from, to time.Time) ([]ScanRecord, error)

	// OvertimeRecords returns overtime-request rows in the inclusive date
	// interval.
	OvertimeRecords(ctx context.Context, from, to time.Time) ([]OvertimeRecord, error)
}
