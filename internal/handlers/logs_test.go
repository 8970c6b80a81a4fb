package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"smart_bulb"
	"smart_bulb/internal/service"
)

func TestGetLogs_FilterParsing(t *testing.T) {
	events := &mockEventLog{resp: []smart_bulb.BulbEvent{
		{EventID: "ev-1", Type: "TOGGLE"},
	}}
	r := newTestRouter(&service.Service{EventLog: events})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/logs?from=2026-08-01&to=2026-08-31&type=toggle", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	if events.lastFilter.Type != "TOGGLE" {
		t.Fatalf("type not uppercased: %q", events.lastFilter.Type)
	}
	wantFrom := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	if !events.lastFilter.From.Equal(wantFrom) {
		t.Fatalf("from=%v, want %v", events.lastFilter.From, wantFrom)
	}
	// Date-only 'to' is extended to end of day.
	if events.lastFilter.To.Before(time.Date(2026, 8, 31, 23, 59, 59, 0, time.UTC)) {
		t.Fatalf("to=%v not end-of-day inclusive", events.lastFilter.To)
	}

	var resp struct {
		Count  int                    `json:"count"`
		Events []smart_bulb.BulbEvent `json:"events"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Count != 1 || len(resp.Events) != 1 {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
}

func TestGetLogs_BadInput(t *testing.T) {
	cases := []struct {
		name string
		url  string
	}{
		{"bad_from", "/api/v1/logs?from=yesterday"},
		{"bad_to", "/api/v1/logs?to=not-a-date"},
		{"inverted_range", "/api/v1/logs?from=2026-08-31&to=2026-08-01"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newTestRouter(&service.Service{EventLog: &mockEventLog{}})
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tc.url, nil))
			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", w.Code)
			}
		})
	}
}
