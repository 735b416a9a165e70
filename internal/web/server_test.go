package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"flowmeter/internal/analog"
	"flowmeter/internal/meter"
	"flowmeter/internal/status"
)

func testTracker() *status.Tracker {
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	tr := status.NewTracker(start, status.Config{
		CyclePeriodMs: 1000,
		DebounceUs:    1500,
		PersistCycles: 10,
		Broker:        "tcp://localhost:1883",
		HTTPAddr:      ":8080",
		Chip:          "gpiochip0",
		Pin:           17,
		StatePath:     "/tmp/state.db",
	})
	tr.Update(
		meter.FlowSample{FrequencyHz: 10, FlowRateLpm: 1.77},
		152.03,
		analog.Reading{Value: 146.68, Valid: true},
		analog.Reading{Value: 21.5, Valid: true},
		meter.CycleCounts{Cycles: 42, NoiseCycles: 3, Persists: 4},
	)
	return tr
}

func TestIndexPage(t *testing.T) {
	s := New(":0", testTracker())
	rec := httptest.NewRecorder()

	s.handleIndex(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{"1.77 L/min", "152.030 L", "146.68 kPa", "21.50 °C", "tcp://localhost:1883"} {
		if !strings.Contains(body, want) {
			t.Errorf("page missing %q", want)
		}
	}
}

func TestIndexPageNotAvailableTemperature(t *testing.T) {
	tr := testTracker()
	tr.Update(
		meter.FlowSample{},
		0,
		analog.Reading{Value: 100, Valid: true},
		analog.Reading{}, // sensor open or shorted
		meter.CycleCounts{},
	)
	s := New(":0", tr)
	rec := httptest.NewRecorder()

	s.handleIndex(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	body := rec.Body.String()
	if !strings.Contains(body, "not available") {
		t.Error("expected 'not available' for invalid temperature")
	}
	if strings.Contains(body, "0.00 °C") {
		t.Error("invalid temperature must not render as a number")
	}
}

func TestIndexNotFound(t *testing.T) {
	s := New(":0", testTracker())
	rec := httptest.NewRecorder()

	s.handleIndex(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestJSONEndpoint(t *testing.T) {
	s := New(":0", testTracker())
	rec := httptest.NewRecorder()

	s.handleJSON(rec, httptest.NewRequest(http.MethodGet, "/index.json", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected application/json, got %q", ct)
	}

	var decoded status.StatusJSON
	if err := json.Unmarshal(rec.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if decoded.Status.FlowLpm != 1.77 {
		t.Errorf("expected flow 1.77, got %g", decoded.Status.FlowLpm)
	}
	if decoded.Status.Counts.Cycles != 42 {
		t.Errorf("expected 42 cycles, got %d", decoded.Status.Counts.Cycles)
	}
}
