// Package observe consumes breaker lifecycle events asynchronously.
//
// The breaker emits events (trips, recoveries, rejections) to a buffered
// channel with non-blocking semantics; the collector runs in a dedicated
// goroutine, logs transitions, and tracks the last transition per category.
// Authoritative counters live in the breaker itself — this package is purely
// observational and loses nothing of correctness when events are dropped
// under pressure.
//
// Example usage:
//
//	collector := observe.NewCollector(256, logger)
//	collector.Start(ctx)
//	brk, _ := breaker.New(settings, categories, collector.EventChannel())
package observe
