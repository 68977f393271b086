package metrics

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/evoforge/ai-breaker/internal/breaker"
)

// Handler serves the breaker's introspection surface over HTTP. All reads go
// straight to the breaker's authoritative snapshots; nothing is cached.
type Handler struct {
	breaker   *breaker.Breaker
	logger    *slog.Logger
	startTime time.Time
}

// Snapshot is the /metrics response body.
type Snapshot struct {
	UptimeSeconds float64           `json:"uptime_seconds"`
	Categories    []breaker.Metrics `json:"categories"`
}

func NewHandler(brk *breaker.Breaker, logger *slog.Logger) *Handler {
	return &Handler{
		breaker:   brk,
		logger:    logger,
		startTime: time.Now(),
	}
}

// Metrics serves per-category counters and derived averages.
func (h *Handler) Metrics() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap := Snapshot{
			UptimeSeconds: time.Since(h.startTime).Seconds(),
			Categories:    h.breaker.AllMetrics(),
		}

		writeJSON(w, http.StatusOK, snap)
	}
}

// Health serves the process-wide health view. Returns 503 while any category
// is OPEN so load balancers can act on it.
func (h *Handler) Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		health := h.breaker.Health()

		status := http.StatusOK
		if !health.Healthy {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, health)
	}
}

// ForceOpen handles POST /admin/force-open?category=NAME.
func (h *Handler) ForceOpen() http.HandlerFunc {
	return h.adminAction("force open", h.breaker.ForceOpen)
}

// ForceClose handles POST /admin/force-close?category=NAME.
func (h *Handler) ForceClose() http.HandlerFunc {
	return h.adminAction("force close", h.breaker.ForceClose)
}

// Reset handles POST /admin/reset?category=NAME.
func (h *Handler) Reset() http.HandlerFunc {
	return h.adminAction("reset", h.breaker.Reset)
}

// ResetAll handles POST /admin/reset-all.
func (h *Handler) ResetAll() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		h.breaker.ResetAll()
		h.logger.Info("Administrative action", slog.String("action", "reset all"))
		writeJSON(w, http.StatusOK, h.breaker.Health())
	}
}

func (h *Handler) adminAction(name string, action func(string) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		category := r.URL.Query().Get("category")
		if category == "" {
			http.Error(w, "category query parameter is required", http.StatusBadRequest)
			return
		}

		if err := action(category); err != nil {
			if errors.Is(err, breaker.ErrUnknownCategory) {
				http.Error(w, err.Error(), http.StatusNotFound)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		h.logger.Info("Administrative action",
			slog.String("action", name),
			slog.String("category", category))

		details, err := h.breaker.StateDetails(category)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, details)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
