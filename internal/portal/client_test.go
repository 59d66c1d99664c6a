package portal

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"
)

// newTestServer serves the login endpoint plus whatever handler the test
// installs for everything else.
func newTestServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *Client) {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("bad login body: %v", err)
		}
		if req.Username != "somchai" || req.Password != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(loginResponse{Token: "session-1"})
	})
	mux.HandleFunc("/", handler)

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	session := NewSessionManager(server.URL, "somchai", "secret", time.Hour, zap.NewNop())
	client := NewClient(server.URL, session, zap.NewNop())
	return server, client
}

func TestWeekLabel(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/schedule/week" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer session-1" {
			t.Errorf("Authorization = %q, want bearer session token", got)
		}
		json.NewEncoder(w).Encode(weekLabelResponse{Label: "12 มกราคม 2569 - 18 มกราคม 2569"})
	})

	label, err := client.WeekLabel(context.Background())
	if err != nil {
		t.Fatalf("WeekLabel() error = %v", err)
	}
	if label != "12 มกราคม 2569 - 18 มกราคม 2569" {
		t.Errorf("WeekLabel() = %q", label)
	}
}

func TestNavigateSendsDirection(t *testing.T) {
	var got navigateRequest
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/schedule/week/navigate" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("bad navigate body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	})

	if err := client.Navigate(context.Background(), DirectionPrev); err != nil {
		t.Fatalf("Navigate() error = %v", err)
	}
	if got.Direction != "prev" {
		t.Errorf("direction = %q, want prev", got.Direction)
	}
}

func TestDayShiftTextQuery(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/schedule/week/day" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("weekday"); got != "Thu" {
			t.Errorf("weekday = %q, want Thu", got)
		}
		json.NewEncoder(w).Encode(dayShiftResponse{Shift: "08:00 - 17:00"})
	})

	shift, err := client.DayShiftText(context.Background(), time.Thursday)
	if err != nil {
		t.Fatalf("DayShiftText() error = %v", err)
	}
	if shift != "08:00 - 17:00" {
		t.Errorf("DayShiftText() = %q", shift)
	}
}

func TestScanRecordsQuery(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("from") != "15/01/2026" || q.Get("to") != "16/01/2026" {
			t.Errorf("query from=%q to=%q", q.Get("from"), q.Get("to"))
		}
		json.NewEncoder(w).Encode([]scanRow{
			{Date: "15/01/2026", Time: "08:02"},
			{Date: "15/01/2026", Time: "17:31"},
		})
	})

	from := time.Date(2026, 1, 15, 0, 0, 0, 0, time.Local)
	records, err := client.ScanRecords(context.Background(), from, from.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("ScanRecords() error = %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("len(records) = %d, want 2", len(records))
	}
	if records[0].DateLabel != "15/01/2026" || records[0].Time != "08:02" {
		t.Errorf("records[0] = %+v", records[0])
	}
}

func TestExpiredSessionRetriesWithFreshToken(t *testing.T) {
	calls := 0
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			// First request hits a stale session
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(weekLabelResponse{Label: "ok"})
	})

	label, err := client.WeekLabel(context.Background())
	if err != nil {
		t.Fatalf("WeekLabel() error = %v", err)
	}
	if label != "ok" {
		t.Errorf("WeekLabel() = %q, want ok", label)
	}
	if calls != 2 {
		t.Errorf("server saw %d data requests, want 2 (retry after relogin)", calls)
	}
}

func TestOvertimeRecords(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/overtime/requests" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode([]overtimeRow{
			{WorkDate: "15/01/2026", Row: "OT-771 15/01/2026 approved"},
		})
	})

	from := time.Date(2026, 1, 13, 0, 0, 0, 0, time.Local)
	records, err := client.OvertimeRecords(context.Background(), from, from.AddDate(0, 0, 4))
	if err != nil {
		t.Fatalf("OvertimeRecords() error = %v", err)
	}
	if len(records) != 1 || records[0].WorkDate != "15/01/2026" {
		t.Errorf("records = %+v", records)
	}
}
