package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"dev/bravebird/trial-resetter/pkg/models"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

// Store is the read side of the check history
type Store interface {
	ListCheckResults(ctx context.Context, limit int) ([]models.CheckResult, error)
	GetCheckResult(ctx context.Context, id string) (*models.CheckResult, error)
	LatestCheckResult(ctx context.Context) (*models.CheckResult, error)
}

// Status keeps the latest check result in memory. It is a runner.Recorder.
type Status struct {
	mu      sync.RWMutex
	latest  *models.CheckResult
	checks  int
	resets  int
	failed  int
	started time.Time
}

// NewStatus creates an empty status
func NewStatus() *Status {
	return &Status{started: time.Now()}
}

// Record stores result as the latest one
func (s *Status) Record(ctx context.Context, result models.CheckResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.latest = &result
	s.checks++
	switch result.Outcome {
	case models.OutcomeReset:
		s.resets++
	case models.OutcomeFailed:
		s.failed++
	}
	return nil
}

// Latest returns the most recent result, if any
func (s *Status) Latest() (models.CheckResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.latest == nil {
		return models.CheckResult{}, false
	}
	return *s.latest, true
}

func (s *Status) summary() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return map[string]interface{}{
		"status":         "ok",
		"checks":         s.checks,
		"resets":         s.resets,
		"failed":         s.failed,
		"uptime_seconds": int64(time.Since(s.started).Seconds()),
	}
}

// Handlers contains API handlers
type Handlers struct {
	store        Store
	status       *Status
	upgrader     websocket.Upgrader
	pollInterval time.Duration
}

// NewHandlers creates new API handlers. store may be nil when running
// without a database.
func NewHandlers(store Store, status *Status) *Handlers {
	return &Handlers{
		store:  store,
		status: status,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		pollInterval: 500 * time.Millisecond,
	}
}

// Health reports liveness and loop counters
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, h.status.summary())
}

// ListChecks lists recent check results
func (h *Handlers) ListChecks(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		http.Error(w, "Database not available", http.StatusServiceUnavailable)
		return
	}

	limit := defaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			http.Error(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = min(n, maxListLimit)
	}

	results, err := h.store.ListCheckResults(r.Context(), limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if results == nil {
		results = []models.CheckResult{}
	}

	respondJSON(w, results)
}

// latest returns the most recent check, from memory first
func (h *Handlers) latest(ctx context.Context) (*models.CheckResult, error) {
	if latest, ok := h.status.Latest(); ok {
		return &latest, nil
	}
	if h.store == nil {
		return nil, nil
	}
	return h.store.LatestCheckResult(ctx)
}

// GetLatestCheck returns the most recent check result
func (h *Handlers) GetLatestCheck(w http.ResponseWriter, r *http.Request) {
	latest, err := h.latest(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if latest == nil {
		http.Error(w, "No checks yet", http.StatusNotFound)
		return
	}

	respondJSON(w, latest)
}

// GetCheck retrieves a check result by ID
func (h *Handlers) GetCheck(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if h.store == nil {
		http.Error(w, "Database not available", http.StatusServiceUnavailable)
		return
	}

	result, err := h.store.GetCheckResult(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if result == nil {
		http.Error(w, "Check not found", http.StatusNotFound)
		return
	}

	respondJSON(w, result)
}

// StreamChecks pushes every new check result over a WebSocket
func (h *Handlers) StreamChecks(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Drain client frames so a close is noticed.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(h.pollInterval)
	defer ticker.Stop()

	lastID := ""
	for {
		// Store errors are transient here; the next tick tries again.
		if latest, err := h.latest(ctx); err == nil && latest != nil && latest.ID != lastID {
			msg := models.WSMessage{
				Type:    "check_result",
				Payload: latest,
			}
			if err := conn.WriteJSON(msg); err != nil {
				return
			}
			lastID = latest.ID
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func respondJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}
