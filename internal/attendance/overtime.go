package attendance

import (
	"strings"

	"github.com/neoleocvxs-lang/attendance-bot/internal/portal"
	"github.com/neoleocvxs-lang/attendance-bot/internal/schedule"
	"github.com/neoleocvxs-lang/attendance-bot/pkg/timeutil"
)

// OvertimeStatus is the outcome of the overtime check for the target date.
type OvertimeStatus int

const (
	OvertimeNotApplicable OvertimeStatus = iota
	OvertimeRecordFound
	OvertimeRecordMissing
)

// OvertimeMatchMode selects which part of an overtime-request row the target
// date is matched against. The terminal's listing carries the work date both
// in a dedicated column and inside the row text, and the two occasionally
// disagree, so the choice is configuration, not code.
type OvertimeMatchMode string

const (
	// MatchRow searches the whole row text.
	MatchRow OvertimeMatchMode = "row"
	// MatchColumn checks only the designated work-date column.
	MatchColumn OvertimeMatchMode = "column"
)

// OvertimeApplicable decides whether the classified clock-out implies
// overtime. Night shifts run over when the clock-out slips past 06:00 (or
// before 04:00, a short-night early out that still gets billed); day shifts
// when it reaches 18:00.
func OvertimeApplicable(kind schedule.ShiftKind, out string, w Windows) bool {
	hour, ok := timeutil.HourOf(out)
	if !ok {
		return false
	}

	switch kind {
	case schedule.ShiftNight:
		return hour >= w.NightOvertimeLate || hour < w.NightOvertimeEarly
	case schedule.ShiftDay:
		return hour >= w.DayOvertimeHour
	default:
		return false
	}
}

// DecideOvertime resolves the overtime status: not applicable, or whether a
// pre-authorized request row exists for the target date.
func DecideOvertime(applicable bool, records []portal.OvertimeRecord, targetLabel string, mode OvertimeMatchMode) OvertimeStatus {
	if !applicable {
		return OvertimeNotApplicable
	}

	for _, rec := range records {
		switch mode {
		case MatchColumn:
			if strings.Contains(rec.WorkDate, targetLabel) {
				return OvertimeRecordFound
			}
		default:
			if strings.Contains(rec.Row, targetLabel) {
				return OvertimeRecordFound
			}
		}
	}

	return OvertimeRecordMissing
}
