// Package proxy centralizes how the HTTP layer reaches a solver: either
// forwarded verbatim to a remote solver backend over HTTP, or run
// in-process against pkg/engine/orchestrate. Centralizing the choice
// gives consistent timeouts, one place to map transport errors onto the
// application's error taxonomy, and a single point to change the
// solving strategy later.
package proxy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/paiban/paiban-core/internal/config"
	"github.com/paiban/paiban-core/pkg/engine/model"
	"github.com/paiban/paiban-core/pkg/engine/orchestrate"
	"github.com/paiban/paiban-core/pkg/errors"
	"github.com/paiban/paiban-core/pkg/logger"
)

// Solver forwards a solve request and returns the raw response body.
type Solver interface {
	Solve(ctx context.Context, requestID string, payload []byte) ([]byte, error)
}

// New builds the Solver implied by cfg: a remote forwarder when a
// solver URL is configured, otherwise an in-process engine.
func New(cfg config.SolverConfig) Solver {
	if cfg.InProcess() {
		return &EngineForwarder{}
	}
	return &RemoteForwarder{
		baseURL: cfg.URL,
		client:  &http.Client{Timeout: cfg.RequestTimeout},
	}
}

// RemoteForwarder posts a solve payload to a remote solver backend,
// mapping transport and non-2xx outcomes onto *errors.AppError.
type RemoteForwarder struct {
	baseURL string
	client  *http.Client
}

// Solve forwards payload to {baseURL}/solve, tagging the request with
// X-Request-Id and logging start/done/error around the round trip.
func (f *RemoteForwarder) Solve(ctx context.Context, requestID string, payload []byte) ([]byte, error) {
	startedAt := time.Now()
	logger.LogEvent("info", "solver_proxy.forward.start",
		logger.F("request_id", requestID),
		logger.F("path", "/solve"),
	)

	url := f.baseURL + "/solve"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "failed to build solver request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-Id", requestID)

	resp, err := f.client.Do(req)
	if err != nil {
		elapsedMicros := time.Since(startedAt).Microseconds()
		logger.LogEvent("error", "solver_proxy.forward.error",
			logger.F("request_id", requestID),
			logger.F("elapsed_micros", elapsedMicros),
			logger.F("error", err.Error()),
		)
		return nil, errors.UpstreamUnavailable(fmt.Sprintf("solver unavailable: %v", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeUpstreamUnavailable, "failed to read solver response")
	}

	elapsedMicros := time.Since(startedAt).Microseconds()
	if resp.StatusCode >= 300 {
		detail := string(body)
		if detail == "" {
			detail = "solver rejected request"
		}
		logger.LogEvent("warn", "solver_proxy.forward.rejected",
			logger.F("request_id", requestID),
			logger.F("status_code", resp.StatusCode),
			logger.F("elapsed_micros", elapsedMicros),
			logger.F("detail", detail),
		)
		return nil, errors.New(errors.CodeUpstreamUnavailable, detail)
	}

	logger.LogEvent("info", "solver_proxy.forward.done",
		logger.F("request_id", requestID),
		logger.F("status_code", resp.StatusCode),
		logger.F("elapsed_micros", elapsedMicros),
	)
	return body, nil
}

// EngineForwarder runs a solve in-process via pkg/engine/orchestrate,
// marshaling its structured response back to JSON so callers have a
// single []byte-shaped Solver interface regardless of backend.
type EngineForwarder struct{}

// Solve decodes payload into a model.SolverRequest, runs it through
// orchestrate.Solve, and re-encodes the response.
func (f *EngineForwarder) Solve(ctx context.Context, requestID string, payload []byte) ([]byte, error) {
	var req model.SolverRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return nil, errors.InvalidInput(fmt.Sprintf("malformed solve request: %v", err))
	}

	resp, err := orchestrate.Solve(ctx, req, requestID)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(resp)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "failed to encode solve response")
	}
	return body, nil
}
