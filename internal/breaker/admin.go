package breaker

import "time"

// ForceOpen unconditionally trips a category. The trip is counted exactly
// like a natural one.
func (b *Breaker) ForceOpen(category string) error {
	rec, err := b.lookup(category)
	if err != nil {
		return err
	}

	rec.mutex.Lock()
	from := rec.state
	rec.tripLocked(time.Now())
	trips := rec.tripCount
	rec.mutex.Unlock()

	b.emit(Event{
		Type:      EventTripped,
		Category:  category,
		From:      from,
		To:        StateOpen,
		TripCount: trips,
	})
	return nil
}

// ForceClose unconditionally closes a category and clears the consecutive
// counters. Metrics counters are untouched.
func (b *Breaker) ForceClose(category string) error {
	rec, err := b.lookup(category)
	if err != nil {
		return err
	}

	rec.mutex.Lock()
	from := rec.state
	rec.state = StateClosed
	rec.consecutiveFailures = 0
	rec.consecutiveSuccesses = 0
	rec.openedAt = time.Time{}
	rec.mutex.Unlock()

	if from != StateClosed {
		b.emit(Event{
			Type:     EventClosed,
			Category: category,
			From:     from,
			To:       StateClosed,
		})
	}
	return nil
}

// ForceHalfOpen moves a category into HALF_OPEN with cleared consecutive
// counters. Intended for tests and manual recovery probes.
func (b *Breaker) ForceHalfOpen(category string) error {
	rec, err := b.lookup(category)
	if err != nil {
		return err
	}

	rec.mutex.Lock()
	from := rec.state
	rec.state = StateHalfOpen
	rec.consecutiveFailures = 0
	rec.consecutiveSuccesses = 0
	rec.mutex.Unlock()

	if from != StateHalfOpen {
		b.emit(Event{
			Type:     EventHalfOpened,
			Category: category,
			From:     from,
			To:       StateHalfOpen,
		})
	}
	return nil
}

// Reset reinitializes a category to its CLOSED defaults, zeroing every
// counter including tripCount.
func (b *Breaker) Reset(category string) error {
	rec, err := b.lookup(category)
	if err != nil {
		return err
	}

	rec.mutex.Lock()
	from := rec.state
	rec.resetLocked()
	rec.mutex.Unlock()

	b.emit(Event{
		Type:     EventReset,
		Category: category,
		From:     from,
		To:       StateClosed,
	})
	return nil
}

// ResetAll applies Reset to every registered category.
func (b *Breaker) ResetAll() {
	for _, category := range b.order {
		rec := b.categories[category]

		rec.mutex.Lock()
		from := rec.state
		rec.resetLocked()
		rec.mutex.Unlock()

		b.emit(Event{
			Type:     EventReset,
			Category: category,
			From:     from,
			To:       StateClosed,
		})
	}
}
