package breaker

// OperationHealth is the per-category slice of the health view.
type OperationHealth struct {
	State     string `json:"state"`
	TripCount int64  `json:"trip_count"`
}

// Health is the process-wide health view. Healthy is true iff no category is
// currently OPEN.
type Health struct {
	Healthy    bool                       `json:"healthy"`
	Operations map[string]OperationHealth `json:"operations"`
	Config     Settings                   `json:"config"`
}

// State returns the current state of a category.
func (b *Breaker) State(category string) (State, error) {
	rec, err := b.lookup(category)
	if err != nil {
		return StateClosed, err
	}

	rec.mutex.Lock()
	defer rec.mutex.Unlock()
	return rec.state, nil
}

// StateDetails returns a snapshot of a category's full state-machine record.
// The snapshot is a copy; mutating it never affects the engine.
func (b *Breaker) StateDetails(category string) (StateDetails, error) {
	rec, err := b.lookup(category)
	if err != nil {
		return StateDetails{}, err
	}

	rec.mutex.Lock()
	defer rec.mutex.Unlock()
	return rec.detailsLocked(), nil
}

// Metrics returns a snapshot of a category's counters. The average execution
// time is derived from primary attempts only; rejected calls contribute no
// sample.
func (b *Breaker) Metrics(category string) (Metrics, error) {
	rec, err := b.lookup(category)
	if err != nil {
		return Metrics{}, err
	}

	rec.mutex.Lock()
	defer rec.mutex.Unlock()
	return rec.metricsLocked(), nil
}

// AllMetrics returns one snapshot per category, in construction order.
func (b *Breaker) AllMetrics() []Metrics {
	out := make([]Metrics, 0, len(b.order))
	for _, category := range b.order {
		rec := b.categories[category]
		rec.mutex.Lock()
		out = append(out, rec.metricsLocked())
		rec.mutex.Unlock()
	}
	return out
}

// Health reports whether any category is currently OPEN, along with the
// per-category state and trip count and the resolved configuration.
func (b *Breaker) Health() Health {
	h := Health{
		Healthy:    true,
		Operations: make(map[string]OperationHealth, len(b.order)),
		Config:     b.settings,
	}

	for _, category := range b.order {
		rec := b.categories[category]
		rec.mutex.Lock()
		st := rec.state
		trips := rec.tripCount
		rec.mutex.Unlock()

		if st == StateOpen {
			h.Healthy = false
		}
		h.Operations[category] = OperationHealth{
			State:     st.String(),
			TripCount: trips,
		}
	}

	return h
}
