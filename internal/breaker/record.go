package breaker

import (
	"sync"
	"time"
)

// record is the authoritative per-category state. Each record carries its own
// mutex so that a slow or tripped category never blocks another.
type record struct {
	mutex sync.Mutex

	category             string
	state                State
	consecutiveFailures  int
	consecutiveSuccesses int
	openedAt             time.Time
	tripCount            int64

	totalRequests      int64
	successfulRequests int64
	failedRequests     int64
	fallbackRequests   int64
	rejectedRequests   int64

	execTimeSum   time.Duration
	execTimeCount int64
}

func newRecord(category string) *record {
	return &record{
		category: category,
		state:    StateClosed,
	}
}

// resetLocked reinitializes every mutable field to the CLOSED defaults,
// including tripCount and all counters. Caller holds the mutex.
func (r *record) resetLocked() {
	r.state = StateClosed
	r.consecutiveFailures = 0
	r.consecutiveSuccesses = 0
	r.openedAt = time.Time{}
	r.tripCount = 0
	r.totalRequests = 0
	r.successfulRequests = 0
	r.failedRequests = 0
	r.fallbackRequests = 0
	r.rejectedRequests = 0
	r.execTimeSum = 0
	r.execTimeCount = 0
}

// tripLocked moves the record into OPEN. Caller holds the mutex.
func (r *record) tripLocked(now time.Time) {
	r.state = StateOpen
	r.openedAt = now
	r.tripCount++
	r.consecutiveFailures = 0
	r.consecutiveSuccesses = 0
}

// recordSample accumulates one primary-attempt duration. Fallback-only calls
// never produce a sample. Caller holds the mutex.
func (r *record) recordSample(d time.Duration) {
	r.execTimeSum += d
	r.execTimeCount++
}

// StateDetails is a read-only snapshot of a category's state-machine fields.
// Mutating it has no effect on the engine.
type StateDetails struct {
	Category             string    `json:"category"`
	State                State     `json:"-"`
	StateName            string    `json:"state"`
	ConsecutiveFailures  int       `json:"consecutive_failures"`
	ConsecutiveSuccesses int       `json:"consecutive_successes"`
	OpenedAt             time.Time `json:"opened_at,omitzero"`
	TripCount            int64     `json:"trip_count"`
}

// Metrics is a read-only snapshot of a category's counters.
type Metrics struct {
	Category           string  `json:"category"`
	CurrentState       string  `json:"current_state"`
	TotalRequests      int64   `json:"total_requests"`
	SuccessfulRequests int64   `json:"successful_requests"`
	FailedRequests     int64   `json:"failed_requests"`
	FallbackRequests   int64   `json:"fallback_requests"`
	RejectedRequests   int64   `json:"rejected_requests"`
	AvgExecutionMs     float64 `json:"avg_execution_ms"`
}

func (r *record) detailsLocked() StateDetails {
	return StateDetails{
		Category:             r.category,
		State:                r.state,
		StateName:            r.state.String(),
		ConsecutiveFailures:  r.consecutiveFailures,
		ConsecutiveSuccesses: r.consecutiveSuccesses,
		OpenedAt:             r.openedAt,
		TripCount:            r.tripCount,
	}
}

func (r *record) metricsLocked() Metrics {
	m := Metrics{
		Category:           r.category,
		CurrentState:       r.state.String(),
		TotalRequests:      r.totalRequests,
		SuccessfulRequests: r.successfulRequests,
		FailedRequests:     r.failedRequests,
		FallbackRequests:   r.fallbackRequests,
		RejectedRequests:   r.rejectedRequests,
	}

	if r.execTimeCount > 0 {
		m.AvgExecutionMs = float64(r.execTimeSum.Microseconds()) / float64(r.execTimeCount) / 1000
	}

	return m
}
