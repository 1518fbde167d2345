// Package handler wires HTTP requests onto the solver proxy and the
// schedule workspace snapshot store.
package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/paiban/paiban-core/internal/proxy"
	"github.com/paiban/paiban-core/internal/state"
	"github.com/paiban/paiban-core/pkg/errors"
)

// SolveHandler exposes the solver over HTTP, either forwarding to a
// remote backend or solving in-process, per proxy.New's choice.
type SolveHandler struct {
	solver proxy.Solver
}

// NewSolveHandler builds a SolveHandler over the given solver backend.
func NewSolveHandler(solver proxy.Solver) *SolveHandler {
	return &SolveHandler{solver: solver}
}

// Solve handles POST /solve and POST /solve/schedule: both forward the
// request body verbatim and return the solver's response verbatim.
func (h *SolveHandler) Solve(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeInvalidInput, "method not allowed").WithField("allowed", "POST"))
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "failed to read request body"))
		return
	}

	requestID := r.Header.Get("X-Request-Id")
	if requestID == "" {
		requestID = uuid.NewString()
	}

	result, err := h.solver.Solve(r.Context(), requestID, body)
	if err != nil {
		respondError(w, toAppError(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Request-Id", requestID)
	w.WriteHeader(http.StatusOK)
	w.Write(result)
}

// StateHandler serves the scheduling UI's persisted workspace snapshot.
type StateHandler struct {
	store *state.Store
	key   string
}

// NewStateHandler builds a StateHandler over store, always reading and
// writing the fixed schedule workspace key.
func NewStateHandler(store *state.Store) *StateHandler {
	return &StateHandler{store: store, key: state.ScheduleKey}
}

// Schedule handles GET and PUT /state/schedule.
func (h *StateHandler) Schedule(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.get(w, r)
	case http.MethodPut:
		h.put(w, r)
	default:
		respondError(w, errors.New(errors.CodeInvalidInput, "method not allowed").WithField("allowed", "GET, PUT"))
	}
}

func (h *StateHandler) get(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.store.Get(r.Context(), h.key)
	if err != nil {
		respondError(w, toAppError(err))
		return
	}

	resp := map[string]interface{}{
		"exists":     snapshot.Exists,
		"state":      nil,
		"updated_at": nil,
	}
	if snapshot.Exists {
		resp["state"] = snapshot.State
		resp["updated_at"] = snapshot.UpdatedAt.UTC().Format(time.RFC3339Nano)
	}
	respondJSON(w, http.StatusOK, resp)
}

func (h *StateHandler) put(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "failed to read request body"))
		return
	}

	updatedAt, err := h.store.Put(r.Context(), h.key, json.RawMessage(body))
	if err != nil {
		respondError(w, toAppError(err))
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"ok":         true,
		"updated_at": updatedAt.UTC().Format(time.RFC3339Nano),
	})
}

// Health handles GET /health.
func Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, err *errors.AppError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.HTTPStatus)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error":   true,
		"code":    err.Code,
		"message": err.Message,
		"details": err.Details,
	})
}

func toAppError(err error) *errors.AppError {
	if appErr, ok := err.(*errors.AppError); ok {
		return appErr
	}
	return errors.Wrap(err, errors.CodeInternal, "unexpected error")
}
