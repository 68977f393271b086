package breaker

import "time"

type EventType string

const (
	EventTripped       EventType = "tripped"
	EventHalfOpened    EventType = "half_opened"
	EventClosed        EventType = "closed"
	EventRejected      EventType = "rejected"
	EventReset         EventType = "reset"
	EventPrimaryFailed EventType = "primary_failed"
)

// Event describes one lifecycle occurrence on a category. Events are emitted
// best-effort: a full channel drops the event rather than blocking the call
// path.
type Event struct {
	Type      EventType
	Timestamp time.Time
	Category  string
	From      State
	To        State
	TripCount int64
	Err       error
}

func (b *Breaker) emit(ev Event) {
	if b.events == nil {
		return
	}

	ev.Timestamp = time.Now()

	select {
	case b.events <- ev:
	default:
	}
}
