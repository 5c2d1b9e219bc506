// Package health serves liveness and readiness checks beside /metrics while a
// dubbing run is in progress.
//
//   - /healthz always answers 200 while the process can serve HTTP.
//   - /readyz answers 200 only while every registered [Checker] passes.
//     The dubber registers one checker per provider stage that has
//     fallbacks, failing once all of that stage's circuit breakers are open.
//
// Responses are JSON objects with a "status" field ("ok" or "fail"), the
// run_id of the current run and a "checks" map with each checker's result.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

// checkTimeout bounds a single readiness check.
const checkTimeout = 5 * time.Second

// Checker is a named readiness check. Check returns nil when healthy.
type Checker struct {
	Name  string
	Check func(ctx context.Context) error
}

// Readier is implemented by provider groups that can tell whether any of
// their backends still accepts calls.
type Readier interface {
	Ready() error
}

// ReadierCheck adapts r to a [Checker].
func ReadierCheck(name string, r Readier) Checker {
	return Checker{Name: name, Check: func(context.Context) error { return r.Ready() }}
}

type result struct {
	Status string            `json:"status"`
	RunID  string            `json:"run_id,omitempty"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Handler serves /healthz and /readyz. It is safe for concurrent use;
// checkers may be added while requests are served.
type Handler struct {
	runID string

	mu       sync.RWMutex
	checkers []Checker
}

// New creates a [Handler] for the run identified by runID.
func New(runID string, checkers ...Checker) *Handler {
	h := &Handler{runID: runID}
	h.Add(checkers...)
	return h
}

// Add registers more checkers. They are evaluated in registration order.
func (h *Handler) Add(checkers ...Checker) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checkers = append(h.checkers, checkers...)
}

// Healthz is the liveness endpoint.
func (h *Handler) Healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, result{Status: "ok", RunID: h.runID})
}

// Readyz is the readiness endpoint. Each checker runs with a [checkTimeout]
// deadline derived from the request context.
func (h *Handler) Readyz(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	checkers := make([]Checker, len(h.checkers))
	copy(checkers, h.checkers)
	h.mu.RUnlock()

	res := result{Status: "ok", RunID: h.runID, Checks: make(map[string]string, len(checkers))}
	status := http.StatusOK
	for _, c := range checkers {
		ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
		err := c.Check(ctx)
		cancel()

		if err != nil {
			res.Checks[c.Name] = "fail: " + err.Error()
			res.Status = "fail"
			status = http.StatusServiceUnavailable
			continue
		}
		res.Checks[c.Name] = "ok"
	}
	writeJSON(w, status, res)
}

// Register adds the /healthz and /readyz routes to mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", h.Healthz)
	mux.HandleFunc("GET /readyz", h.Readyz)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
