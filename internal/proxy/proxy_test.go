package proxy

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/paiban/paiban-core/internal/config"
)

func TestNewSelectsEngineForwarderWhenNoURLConfigured(t *testing.T) {
	s := New(config.SolverConfig{})
	if _, ok := s.(*EngineForwarder); !ok {
		t.Errorf("New() = %T, want *EngineForwarder when no solver URL is configured", s)
	}
}

func TestNewSelectsRemoteForwarderWhenURLConfigured(t *testing.T) {
	s := New(config.SolverConfig{URL: "http://solver.internal:9000", RequestTimeout: 5 * time.Second})
	if _, ok := s.(*RemoteForwarder); !ok {
		t.Errorf("New() = %T, want *RemoteForwarder when a solver URL is configured", s)
	}
}

func TestEngineForwarderSolveRoundTripsAValidRequest(t *testing.T) {
	payload := []byte(`{
		"horizon": {"start": "2026-01-05", "days": 1},
		"employees": [{"id": "e1", "name": "Ann"}, {"id": "e2", "name": "Bo"}],
		"shifts": [{"day": "Mon", "date": "2026-01-05", "type": "morning", "start": "08:00", "end": "16:00", "required": 1}]
	}`)

	f := &EngineForwarder{}
	body, err := f.Solve(context.Background(), "req-1", payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(body, &decoded); err != nil {
		t.Fatalf("response is not valid JSON: %v", err)
	}
	if decoded["status"] != "optimal" {
		t.Errorf("status = %v, want optimal", decoded["status"])
	}
}

func TestEngineForwarderSolveRejectsMalformedPayload(t *testing.T) {
	f := &EngineForwarder{}
	_, err := f.Solve(context.Background(), "req-1", []byte(`{not json`))
	if err == nil {
		t.Fatal("expected an error for malformed JSON payload")
	}
}

func TestRemoteForwarderSolveForwardsRequestIDAndBody(t *testing.T) {
	var gotRequestID string
	var gotBody []byte

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRequestID = r.Header.Get("X-Request-Id")
		gotBody, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"optimal"}`))
	}))
	defer server.Close()

	f := &RemoteForwarder{baseURL: server.URL, client: server.Client()}
	body, err := f.Solve(context.Background(), "req-42", []byte(`{"horizon":{}}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotRequestID != "req-42" {
		t.Errorf("X-Request-Id forwarded = %q, want req-42", gotRequestID)
	}
	if string(gotBody) != `{"horizon":{}}` {
		t.Errorf("body forwarded = %q, want the original payload", gotBody)
	}
	if string(body) != `{"status":"optimal"}` {
		t.Errorf("response body = %q, want the upstream response verbatim", body)
	}
}

func TestRemoteForwarderSolveMapsNonOKStatusToUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("solver overloaded"))
	}))
	defer server.Close()

	f := &RemoteForwarder{baseURL: server.URL, client: server.Client()}
	_, err := f.Solve(context.Background(), "req-1", []byte(`{}`))
	if err == nil {
		t.Fatal("expected an error for a non-2xx upstream response")
	}
}

func TestRemoteForwarderSolveMapsTransportErrorToUpstreamUnavailable(t *testing.T) {
	f := &RemoteForwarder{baseURL: "http://127.0.0.1:1", client: &http.Client{Timeout: 200 * time.Millisecond}}
	_, err := f.Solve(context.Background(), "req-1", []byte(`{}`))
	if err == nil {
		t.Fatal("expected an error when the upstream is unreachable")
	}
}
