package breaker

import (
	"encoding/json"
	"fmt"
	"time"
)

const (
	DefaultFailureThreshold = 5
	DefaultSuccessThreshold = 2
	DefaultTimeout          = 30 * time.Second
	DefaultResetTimeout     = 60 * time.Second
)

// Settings are the process-wide tunables, immutable after construction.
type Settings struct {
	FailureThreshold int           `json:"failure_threshold"`
	SuccessThreshold int           `json:"success_threshold"`
	Timeout          time.Duration `json:"-"`
	ResetTimeout     time.Duration `json:"-"`
}

// MarshalJSON reports the durations in integer milliseconds to match the
// _ms keys consumed by operational tooling.
func (s Settings) MarshalJSON() ([]byte, error) {
	type settingsJSON struct {
		FailureThreshold int   `json:"failure_threshold"`
		SuccessThreshold int   `json:"success_threshold"`
		TimeoutMs        int64 `json:"timeout_ms"`
		ResetTimeoutMs   int64 `json:"reset_timeout_ms"`
	}

	return json.Marshal(settingsJSON{
		FailureThreshold: s.FailureThreshold,
		SuccessThreshold: s.SuccessThreshold,
		TimeoutMs:        s.Timeout.Milliseconds(),
		ResetTimeoutMs:   s.ResetTimeout.Milliseconds(),
	})
}

func (s Settings) withDefaults() Settings {
	if s.FailureThreshold <= 0 {
		s.FailureThreshold = DefaultFailureThreshold
	}
	if s.SuccessThreshold <= 0 {
		s.SuccessThreshold = DefaultSuccessThreshold
	}
	if s.Timeout <= 0 {
		s.Timeout = DefaultTimeout
	}
	if s.ResetTimeout <= 0 {
		s.ResetTimeout = DefaultResetTimeout
	}
	return s
}

// Breaker owns one record per registered category. The map is frozen at
// construction; all mutation goes through the engine or the administrative
// calls below.
type Breaker struct {
	settings   Settings
	events     chan<- Event
	categories map[string]*record
	order      []string
}

// New creates a breaker guarding the given categories. Zero-valued settings
// fields are replaced by defaults. The events channel is optional; pass nil
// to disable lifecycle events.
func New(settings Settings, categories []string, events chan<- Event) (*Breaker, error) {
	if len(categories) == 0 {
		return nil, fmt.Errorf("at least one category is required")
	}

	b := &Breaker{
		settings:   settings.withDefaults(),
		events:     events,
		categories: make(map[string]*record, len(categories)),
		order:      make([]string, 0, len(categories)),
	}

	for _, category := range categories {
		if category == "" {
			return nil, fmt.Errorf("category name cannot be empty")
		}
		if _, exists := b.categories[category]; exists {
			return nil, fmt.Errorf("duplicate category %q", category)
		}
		b.categories[category] = newRecord(category)
		b.order = append(b.order, category)
	}

	return b, nil
}

func (b *Breaker) lookup(category string) (*record, error) {
	rec, ok := b.categories[category]
	if !ok {
		return nil, unknownCategory(category)
	}
	return rec, nil
}

// Settings returns the resolved tunables.
func (b *Breaker) Settings() Settings {
	return b.settings
}

// Categories returns the registered category names in construction order.
func (b *Breaker) Categories() []string {
	out := make([]string, len(b.order))
	copy(out, b.order)
	return out
}

// admit applies steps 1-2 of the call algorithm: count the request, evaluate
// a pending OPEN->HALF_OPEN transition, and decide whether the primary may
// be attempted.
func (b *Breaker) admit(rec *record) (bool, State) {
	rec.mutex.Lock()
	rec.totalRequests++

	if rec.state != StateOpen {
		st := rec.state
		rec.mutex.Unlock()
		return true, st
	}

	if time.Since(rec.openedAt) >= b.settings.ResetTimeout {
		rec.state = StateHalfOpen
		rec.consecutiveSuccesses = 0
		rec.consecutiveFailures = 0
		rec.mutex.Unlock()

		b.emit(Event{
			Type:     EventHalfOpened,
			Category: rec.category,
			From:     StateOpen,
			To:       StateHalfOpen,
		})
		return true, StateHalfOpen
	}

	rec.rejectedRequests++
	rec.fallbackRequests++
	rec.mutex.Unlock()

	b.emit(Event{
		Type:     EventRejected,
		Category: rec.category,
		From:     StateOpen,
		To:       StateOpen,
	})
	return false, StateOpen
}

// onSuccess records a successful primary attempt and returns the state after
// the call's side effects.
func (b *Breaker) onSuccess(rec *record, elapsed time.Duration) State {
	rec.mutex.Lock()
	from := rec.state
	rec.successfulRequests++
	rec.recordSample(elapsed)

	switch rec.state {
	case StateClosed:
		rec.consecutiveFailures = 0
	case StateHalfOpen:
		rec.consecutiveSuccesses++
		rec.consecutiveFailures = 0
		if rec.consecutiveSuccesses >= b.settings.SuccessThreshold {
			rec.state = StateClosed
			rec.consecutiveSuccesses = 0
			rec.openedAt = time.Time{}
		}
	case StateOpen:
		// A concurrent failure tripped the circuit while this call was in
		// flight. The success is counted but cannot reopen the gate.
	}

	st := rec.state
	rec.mutex.Unlock()

	if from == StateHalfOpen && st == StateClosed {
		b.emit(Event{
			Type:     EventClosed,
			Category: rec.category,
			From:     from,
			To:       st,
		})
	}
	return st
}

// onFailure records a failed or timed-out primary attempt, applies the trip
// rules, and returns the state after the call's side effects. The fallback
// counter is incremented here because the engine invokes the fallback for
// every failure.
func (b *Breaker) onFailure(rec *record, elapsed time.Duration, cause error) State {
	rec.mutex.Lock()
	from := rec.state
	rec.failedRequests++
	rec.fallbackRequests++
	rec.recordSample(elapsed)

	switch rec.state {
	case StateClosed:
		rec.consecutiveFailures++
		rec.consecutiveSuccesses = 0
		if rec.consecutiveFailures >= b.settings.FailureThreshold {
			rec.tripLocked(time.Now())
		}
	case StateHalfOpen:
		rec.tripLocked(time.Now())
	case StateOpen:
		// Already tripped by a concurrent call; count the failure without a
		// second trip.
	}

	st := rec.state
	trips := rec.tripCount
	rec.mutex.Unlock()

	if st == StateOpen && from != StateOpen {
		b.emit(Event{
			Type:      EventTripped,
			Category:  rec.category,
			From:      from,
			To:        StateOpen,
			TripCount: trips,
			Err:       cause,
		})
	} else {
		b.emit(Event{
			Type:     EventPrimaryFailed,
			Category: rec.category,
			From:     from,
			To:       st,
			Err:      cause,
		})
	}
	return st
}
