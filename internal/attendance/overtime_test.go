package attendance

import (
	"testing"

	"github.com/neoleocvxs-lang/attendance-bot/internal/portal"
	"github.com/neoleocvxs-lang/attendance-bot/internal/schedule"
	"github.com/neoleocvxs-lang/attendance-bot/pkg/timeutil"
)

func TestOvertimeApplicable(t *testing.T) {
	w := DefaultWindows()

	tests := []struct {
		name string
		kind schedule.ShiftKind
		out  string
		want bool
	}{
		{"Day shift late checkout", schedule.ShiftDay, "19:45", true},
		{"Day shift at threshold", schedule.ShiftDay, "18:00", true},
		{"Day shift normal checkout", schedule.ShiftDay, "17:30", false},
		{"Night shift overrun", schedule.ShiftNight, "06:15", true},
		{"Night shift early out", schedule.ShiftNight, "03:30", true},
		{"Night shift normal out", schedule.ShiftNight, "05:30", false},
		{"Absent checkout", schedule.ShiftDay, timeutil.Absent, false},
		{"Non-working day", schedule.ShiftNonWorking, "19:00", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := OvertimeApplicable(tt.kind, tt.out, w); got != tt.want {
				t.Errorf("OvertimeApplicable(%v, %q) = %v, want %v",
					tt.kind, tt.out, got, tt.want)
			}
		})
	}
}

func TestDecideOvertime(t *testing.T) {
	records := []portal.OvertimeRecord{
		{WorkDate: "16/01/2025", Row: "OT1234 16/01/2025 18:00-20:00 approved"},
		{WorkDate: "17/01/2025", Row: "OT1235 17/01/2025 18:00-21:00 pending"},
	}

	tests := []struct {
		name       string
		applicable bool
		target     string
		mode       OvertimeMatchMode
		want       OvertimeStatus
	}{
		{"Not applicable short-circuits", false, "17/01/2025", MatchRow, OvertimeNotApplicable},
		{"Row match found", true, "17/01/2025", MatchRow, OvertimeRecordFound},
		{"Column match found", true, "17/01/2025", MatchColumn, OvertimeRecordFound},
		{"No record for date", true, "19/01/2025", MatchRow, OvertimeRecordMissing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DecideOvertime(tt.applicable, records, tt.target, tt.mode)

			if got != tt.want {
				t.Errorf("DecideOvertime(%v, %q, %v) = %v, want %v",
					tt.applicable, tt.target, tt.mode, got, tt.want)
			}
		})
	}
}

func TestDecideOvertimeColumnStricter(t *testing.T) {
	// Date appears in the row text but not in the work-date column:
	// row mode finds it, column mode does not.
	records := []portal.OvertimeRecord{
		{WorkDate: "16/01/2025", Row: "requested 17/01/2025, work date 16/01/2025"},
	}

	if got := DecideOvertime(true, records, "17/01/2025", MatchRow); got != OvertimeRecordFound {
		t.Errorf("row mode = %v, want OvertimeRecordFound", got)
	}

	if got := DecideOvertime(true, records, "17/01/2025", MatchColumn); got != OvertimeRecordMissing {
		t.Errorf("column mode = %v, want OvertimeRecordMissing", got)
	}
}

func TestDecideOvertimeNoRecords(t *testing.T) {
	if got := DecideOvertime(true, nil, "17/01/2025", MatchRow); got != OvertimeRecordMissing {
		t.Errorf("DecideOvertime with no records = %v, want OvertimeRecordMissing", got)
	}
}
