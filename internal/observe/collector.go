package observe

import (
	"context"
	"log/slog"
	"sync"

	"github.com/evoforge/ai-breaker/internal/breaker"
)

// Collector consumes breaker lifecycle events off the call path. It logs
// state transitions and keeps the most recent transition per category so
// operators can answer "when did this last trip".
type Collector struct {
	eventCh chan breaker.Event
	logger  *slog.Logger

	mutex           sync.RWMutex
	lastTransitions map[string]breaker.Event
	rejections      map[string]int64
}

func NewCollector(bufferSize int, logger *slog.Logger) *Collector {
	return &Collector{
		eventCh:         make(chan breaker.Event, bufferSize),
		logger:          logger,
		lastTransitions: make(map[string]breaker.Event),
		rejections:      make(map[string]int64),
	}
}

// EventChannel returns the write side for the breaker to emit into.
func (c *Collector) EventChannel() chan<- breaker.Event {
	return c.eventCh
}

func (c *Collector) Start(ctx context.Context) {
	go c.run(ctx)
}

func (c *Collector) run(ctx context.Context) {
	c.logger.Info("Breaker event collector started")
	defer c.logger.Info("Breaker event collector stopped")

	for {
		select {
		case event := <-c.eventCh:
			c.processEvent(event)
		case <-ctx.Done():
			// Drain remaining events before shutdown
			c.drain()
			return
		}
	}
}

func (c *Collector) processEvent(event breaker.Event) {
	switch event.Type {
	case breaker.EventTripped:
		c.recordTransition(event)
		c.logger.Warn("Circuit tripped",
			slog.String("category", event.Category),
			slog.String("from", event.From.String()),
			slog.Int64("trip_count", event.TripCount),
			slog.Any("err", event.Err))

	case breaker.EventHalfOpened:
		c.recordTransition(event)
		c.logger.Info("Circuit half-open, probing for recovery",
			slog.String("category", event.Category))

	case breaker.EventClosed:
		c.recordTransition(event)
		c.logger.Info("Circuit closed",
			slog.String("category", event.Category),
			slog.String("from", event.From.String()))

	case breaker.EventReset:
		c.recordTransition(event)
		c.logger.Info("Circuit reset",
			slog.String("category", event.Category))

	case breaker.EventRejected:
		c.mutex.Lock()
		c.rejections[event.Category]++
		c.mutex.Unlock()
		c.logger.Debug("Call rejected, circuit open",
			slog.String("category", event.Category))

	case breaker.EventPrimaryFailed:
		c.logger.Debug("Primary call failed",
			slog.String("category", event.Category),
			slog.Any("err", event.Err))
	}
}

func (c *Collector) recordTransition(event breaker.Event) {
	c.mutex.Lock()
	c.lastTransitions[event.Category] = event
	c.mutex.Unlock()
}

func (c *Collector) drain() {
	for {
		select {
		case event := <-c.eventCh:
			c.processEvent(event)
		default:
			return
		}
	}
}

// LastTransition returns the most recent state transition observed for a
// category, if any.
func (c *Collector) LastTransition(category string) (breaker.Event, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	event, ok := c.lastTransitions[category]
	return event, ok
}

// Rejections returns how many rejected calls the collector has observed for
// a category. Best-effort: events dropped under pressure are not counted.
func (c *Collector) Rejections(category string) int64 {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.rejections[category]
}
