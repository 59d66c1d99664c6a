package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/neoleocvxs-lang/attendance-bot/internal/attendance"
	"github.com/neoleocvxs-lang/attendance-bot/internal/schedule"
	"github.com/neoleocvxs-lang/attendance-bot/pkg/dateutil"
	"github.com/neoleocvxs-lang/attendance-bot/pkg/timeutil"
)

// Compose builds the human-readable status message for one target date.
// The format mirrors what the chat channel has always shown: shift line,
// in/out line with the lateness marker, overtime line, and the payday
// reminder when the configured day of month comes around (0 disables it).
func Compose(target time.Time, info schedule.ShiftInfo, res attendance.Result,
	late attendance.LateStatus, ot attendance.OvertimeStatus, paydayDay int) string {

	var b strings.Builder

	icon, label := "☀️", "กะเช้า"
	if info.Kind == schedule.ShiftNight {
		icon, label = "🌙", "กะดึก"
	}
	fmt.Fprintf(&b, "%s *%s* | %s\n", icon, label, dateutil.FormatLabel(target))

	fmt.Fprintf(&b, "👍 *เข้า:* %s  👋 *ออก:* %s [%s]\n", res.In, res.Out, latenessMark(late))

	fmt.Fprintf(&b, "🚀 *OT:* %s", overtimeLine(ot))

	if paydayDay > 0 && target.Day() == paydayDay {
		fmt.Fprintf(&b, "\n\n⚠️ *Note:* วันที่ %d แล้ว! อย่าลืมเช็ค Biosoft", paydayDay)
	}

	return b.String()
}

func latenessMark(late attendance.LateStatus) string {
	switch late {
	case attendance.Late:
		return "❌ สาย"
	case attendance.OnTime:
		return "✅ ไม่สาย"
	default:
		return "➖"
	}
}

func overtimeLine(ot attendance.OvertimeStatus) string {
	switch ot {
	case attendance.OvertimeRecordFound:
		return "✅ ✅ มีใบโอทีแล้ว"
	case attendance.OvertimeRecordMissing:
		return "➖ ❌ ไม่พบใบขอโอที"
	default:
		return "➖ ไม่ได้ทำ OT"
	}
}

// Condition names a suppression predicate. Conditions are data so the run
// schedule can be retuned without touching classification logic.
type Condition string

const (
	// ConditionAlways suppresses unconditionally at the checkpoint.
	ConditionAlways Condition = "always"
	// ConditionNoCheckout suppresses while the clock-out is still absent on
	// a working day (overtime may be in progress; a later checkpoint will
	// report it).
	ConditionNoCheckout Condition = "no_checkout"
	// ConditionCheckoutInWindow suppresses when the clock-out falls inside
	// the normal end-of-day window, i.e. an earlier checkpoint already
	// reported it.
	ConditionCheckoutInWindow Condition = "checkout_in_window"
)

// Rule is one row of the suppression table: at checkpoint Hour, for the
// listed shift kinds, suppress when Condition holds.
type Rule struct {
	Hour      int
	Shifts    []schedule.ShiftKind
	Condition Condition
}

// ShouldSuppress applies the suppression table for one run. It is a pure
// predicate over the run hour and the classification outcome; the returned
// reason is the matched condition, for logging.
func ShouldSuppress(rules []Rule, kind schedule.ShiftKind, holiday bool,
	runHour int, out string, w attendance.Windows) (bool, string) {

	for _, rule := range rules {
		if rule.Hour != runHour || !ruleCoversShift(rule, kind) {
			continue
		}

		switch rule.Condition {
		case ConditionAlways:
			return true, string(ConditionAlways)

		case ConditionNoCheckout:
			if !holiday && out == timeutil.Absent {
				return true, string(ConditionNoCheckout)
			}

		case ConditionCheckoutInWindow:
			if minutes, ok := timeutil.ToMinutes(out); ok && minutes < w.DayOvertimeHour*60 {
				return true, string(ConditionCheckoutInWindow)
			}
		}
	}

	return false, ""
}

func ruleCoversShift(rule Rule, kind schedule.ShiftKind) bool {
	for _, s := range rule.Shifts {
		if s == kind {
			return true
		}
	}
	return false
}

// DefaultRules returns the suppression table for the standard run schedule:
// a morning wrap-up plus 19:00 and 22:00 live checks. Evening checkpoints
// carry nothing for a night shift (its result is only observable the next
// morning); a day shift without a checkout at 19:00 defers to 22:00; and a
// normal-hours checkout at 22:00 was already reported at 19:00.
func DefaultRules() []Rule {
	return []Rule{
		{Hour: 19, Shifts: []schedule.ShiftKind{schedule.ShiftNight}, Condition: ConditionAlways},
		{Hour: 22, Shifts: []schedule.ShiftKind{schedule.ShiftNight}, Condition: ConditionAlways},
		{Hour: 19, Shifts: []schedule.ShiftKind{schedule.ShiftDay}, Condition: ConditionNoCheckout},
		{Hour: 22, Shifts: []schedule.ShiftKind{schedule.ShiftDay}, Condition: ConditionCheckoutInWindow},
	}
}
