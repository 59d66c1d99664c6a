package timeutil

import (
	"fmt"
	"testing"
)

func TestToMinutes(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int
		ok    bool
	}{
		{"Midnight", "00:00", 0, true},
		{"Morning", "08:02", 482, true},
		{"Single digit hour", "8:02", 482, true},
		{"Evening", "21:15", 1275, true},
		{"End of day", "23:59", 1439, true},
		{"No colon", "0802", 0, false},
		{"Empty string", "", 0, false},
		{"Non-numeric hour", "ab:30", 0, false},
		{"Non-numeric minute", "08:xx", 0, false},
		{"Hour out of range", "24:00", 0, false},
		{"Minute out of range", "10:60", 0, false},
		{"Too many parts", "10:20:30", 0, false},
		{"Surrounding whitespace", " 09:30 ", 570, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ToMinutes(tt.input)

			if ok != tt.ok {
				t.Errorf("ToMinutes(%q) ok = %v, want %v", tt.input, ok, tt.ok)
				return
			}

			if tt.ok && got != tt.want {
				t.Errorf("ToMinutes(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestFromMinutes(t *testing.T) {
	tests := []struct {
		name  string
		input int
		want  string
	}{
		{"Midnight", 0, "00:00"},
		{"Morning", 482, "08:02"},
		{"Evening", 1275, "21:15"},
		{"Negative is absent", -1, Absent},
		{"Past end of day is absent", 1440, Absent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromMinutes(tt.input)

			if got != tt.want {
				t.Errorf("FromMinutes(%v) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestToFromMinutesRoundTrip(t *testing.T) {
	// Every valid HH:MM must survive parse -> format unchanged.
	for hour := 0; hour < 24; hour++ {
		for minute := 0; minute < 60; minute++ {
			s := fmt.Sprintf("%02d:%02d", hour, minute)

			minutes, ok := ToMinutes(s)
			if !ok {
				t.Fatalf("ToMinutes(%q) unexpectedly failed", s)
			}

			if got := FromMinutes(minutes); got != s {
				t.Fatalf("round trip failed for %q: got %q", s, got)
			}
		}
	}
}

func TestHourOf(t *testing.T) {
	if h, ok := HourOf("19:45"); !ok || h != 19 {
		t.Errorf("HourOf(19:45) = (%v, %v), want (19, true)", h, ok)
	}

	if _, ok := HourOf(Absent); ok {
		t.Errorf("HourOf(%q) should not parse", Absent)
	}
}
