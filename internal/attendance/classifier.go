package attendance

import (
	"strings"

	"github.com/neoleocvxs-lang/attendance-bot/internal/portal"
	"github.com/neoleocvxs-lang/attendance-bot/internal/schedule"
	"github.com/neoleocvxs-lang/attendance-bot/pkg/timeutil"
)

// Windows holds every classification threshold, in minutes since midnight
// unless noted. All values come from configuration; these were tuned more
// than once in production and must not live in code.
type Windows struct {
	// Night shift: earliest admissible evening clock-in on the target date.
	NightInAfter int
	// Night shift: clock-out window on the following date.
	NightOutFrom int
	NightOutTo   int
	// Day shift: morning clock-in window.
	DayInFrom int
	DayInTo   int
	// Day shift: earliest admissible afternoon clock-out.
	DayOutAfter int
	// Day shift clock-ins strictly after this are late.
	LateAfter int
	// Overtime hour thresholds (clock hours, not minutes).
	DayOvertimeHour      int
	NightOvertimeEarly   int
	NightOvertimeLate    int
}

// DefaultWindows returns the canonical thresholds.
func DefaultWindows() Windows {
	return Windows{
		NightInAfter:       17 * 60,
		NightOutFrom:       4 * 60,
		NightOutTo:         11 * 60,
		DayInFrom:          6 * 60,
		DayInTo:            10 * 60,
		DayOutAfter:        15 * 60,
		LateAfter:          8 * 60,
		DayOvertimeHour:    18,
		NightOvertimeEarly: 4,
		NightOvertimeLate:  6,
	}
}

// Result is the single derived attendance fact for the target date. In and
// Out are each either a valid "HH:MM" or the explicit absent marker, never
// empty.
type Result struct {
	In  string
	Out string
}

// LateStatus is the tri-state lateness flag. Neutral covers non-working days
// and absent clock-ins, where lateness is undefined.
type LateStatus int

const (
	LateNeutral LateStatus = iota
	OnTime
	Late
)

// Classify selects the canonical in/out pair for the target date from an
// unordered punch collection.
//
// The same admissible window often holds several punches (badge re-scans);
// picking the extreme nearest the expected shift edge keeps the most
// plausible real event. Night shifts cross midnight, so their clock-out
// candidates live under the following date's label.
func Classify(kind schedule.ShiftKind, scans []portal.ScanRecord, targetLabel, nextLabel string, w Windows) Result {
	res := Result{In: timeutil.Absent, Out: timeutil.Absent}

	if kind == schedule.ShiftNight {
		in, found := selectScan(scans, targetLabel, w.NightInAfter, 24*60-1, earliest)
		if found {
			res.In = in
		}
		out, found := selectScan(scans, nextLabel, w.NightOutFrom, w.NightOutTo, latest)
		if found {
			res.Out = out
		}
		return res
	}

	in, found := selectScan(scans, targetLabel, w.DayInFrom, w.DayInTo, latest)
	if found {
		res.In = in
	}
	out, found := selectScan(scans, targetLabel, w.DayOutAfter, 24*60-1, latest)
	if found {
		res.Out = out
	}
	return res
}

// Lateness evaluates the day-shift lateness rule. Non-working days and
// absent clock-ins are neutral, not on-time.
func Lateness(kind schedule.ShiftKind, holiday bool, in string, w Windows) LateStatus {
	if kind != schedule.ShiftDay || holiday {
		return LateNeutral
	}

	minutes, ok := timeutil.ToMinutes(in)
	if !ok {
		return LateNeutral
	}

	if minutes > w.LateAfter {
		return Late
	}
	return OnTime
}

type edge int

const (
	earliest edge = iota
	latest
)

// selectScan picks the extreme admissible punch time for one date label.
func selectScan(scans []portal.ScanRecord, dateLabel string, fromMin, toMin int, pick edge) (string, bool) {
	best := ""
	bestMinutes := -1

	for _, scan := range scans {
		if !strings.Contains(scan.DateLabel, dateLabel) {
			continue
		}

		minutes, ok := timeutil.ToMinutes(scan.Time)
		if !ok {
			continue
		}
		if minutes < fromMin || minutes > toMin {
			continue
		}

		if bestMinutes < 0 ||
			(pick == earliest && minutes < bestMinutes) ||
			(pick == latest && minutes > bestMinutes) {
			best = scan.Time
			bestMinutes = minutes
		}
	}

	if bestMinutes < 0 {
		return "", false
	}
	return best, true
}
