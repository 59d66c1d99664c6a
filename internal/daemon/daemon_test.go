package daemon

import (
	"fmt"
	"testing"
	"time"

	"go.uber.org/zap"
)

func testDaemon(checkpoints []int) *Daemon {
	return NewDaemon(nil, checkpoints, false, zap.NewNop())
}

func TestNextCheckpoint(t *testing.T) {
	checkpoints := []int{8*60 + 30, 19 * 60, 22 * 60}

	tests := []struct {
		name     string
		now      time.Time
		wantHour int
		wantMin  int
		wantDay  int
	}{
		{
			name:     "Before first checkpoint",
			now:      time.Date(2026, 1, 15, 7, 0, 0, 0, time.Local),
			wantHour: 8, wantMin: 30, wantDay: 15,
		},
		{
			name:     "Between checkpoints",
			now:      time.Date(2026, 1, 15, 12, 0, 0, 0, time.Local),
			wantHour: 19, wantMin: 0, wantDay: 15,
		},
		{
			name:     "After last checkpoint wraps to tomorrow",
			now:      time.Date(2026, 1, 15, 23, 30, 0, 0, time.Local),
			wantHour: 8, wantMin: 30, wantDay: 16,
		},
	}

	d := testDaemon(checkpoints)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := d.nextCheckpoint(tt.now)
			if got.Hour() != tt.wantHour || got.Minute() != tt.wantMin || got.Day() != tt.wantDay {
				t.Errorf("nextCheckpoint(%v) = %v, want day %d at %02d:%02d",
					tt.now, got, tt.wantDay, tt.wantHour, tt.wantMin)
			}
		})
	}
}

func TestDueCheckpoint(t *testing.T) {
	checkpoints := []int{8*60 + 30, 19 * 60, 22 * 60}
	d := testDaemon(checkpoints)

	// Nothing due before the first checkpoint
	early := time.Date(2026, 1, 15, 8, 0, 0, 0, time.Local)
	if _, ok := d.dueCheckpoint(early); ok {
		t.Error("no checkpoint should be due at 08:00")
	}

	// Due at the exact checkpoint minute
	exact := time.Date(2026, 1, 15, 19, 0, 0, 0, time.Local)
	cp, ok := d.dueCheckpoint(exact)
	if !ok || cp != 19*60 {
		t.Errorf("dueCheckpoint at 19:00 = %d,%v, want 1140,true", cp, ok)
	}

	// A tick lost to sleep still surfaces the latest passed checkpoint
	late := time.Date(2026, 1, 15, 21, 0, 0, 0, time.Local)
	cp, ok = d.dueCheckpoint(late)
	if !ok || cp != 19*60 {
		t.Errorf("dueCheckpoint at 21:00 = %d,%v, want 1140,true", cp, ok)
	}

	// A completed checkpoint is not reported again; earlier incomplete
	// ones still are
	key := fmt.Sprintf("%s@19:00", late.Format("2006-01-02"))
	d.completed[key] = true
	cp, ok = d.dueCheckpoint(late)
	if !ok || cp != 8*60+30 {
		t.Errorf("dueCheckpoint after completing 19:00 = %d,%v, want 510,true", cp, ok)
	}

	// All of today's checkpoints completed
	d.completed[fmt.Sprintf("%s@08:30", late.Format("2006-01-02"))] = true
	if _, ok := d.dueCheckpoint(late); ok {
		t.Error("no checkpoint should be due once all are completed")
	}
}
