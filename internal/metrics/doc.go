// Package metrics exposes the breaker's introspection surface over HTTP.
//
// Endpoints:
//
//   - GET  /metrics            per-category counters and average execution time
//   - GET  /health             process health; 503 while any category is OPEN
//   - POST /admin/force-open   ?category=NAME
//   - POST /admin/force-close  ?category=NAME
//   - POST /admin/reset        ?category=NAME
//   - POST /admin/reset-all
//
// The health body is the contract consumed by operational tooling: a
// `healthy` flag, a per-category map of state and trip count, and the
// resolved breaker configuration.
package metrics
