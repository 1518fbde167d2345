package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestHandlerServesPrometheusExposition(t *testing.T) {
	RecordRequest("GET", "/health", 200, 5*time.Millisecond)

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, req)

	if rec.Code != 200 {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "paiban_http_requests_total") {
		t.Errorf("exposition missing paiban_http_requests_total metric: %s", body)
	}
}

func TestRecordSolveStartTracksActiveGaugeAndOutcome(t *testing.T) {
	done := RecordSolveStart()
	done("optimal")

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, req)

	body := rec.Body.String()
	if !strings.Contains(body, "paiban_solve_total") {
		t.Errorf("exposition missing paiban_solve_total metric: %s", body)
	}
	if !strings.Contains(body, "paiban_active_solves") {
		t.Errorf("exposition missing paiban_active_solves metric: %s", body)
	}
}
