// Package breaker implements per-category circuit breaking for unreliable
// model invocations.
//
// Every operation category (crossover, mutation, evaluation, ...) owns an
// independent state machine with three states:
//
//   - CLOSED: calls pass through, consecutive failures accumulate
//   - OPEN: calls are rejected immediately, only the fallback runs
//   - HALF_OPEN: trial calls probe whether the dependency recovered
//
// A call always produces a result: when the primary callable is rejected,
// fails, or times out, the supplied fallback runs in its place. Only a
// failing fallback surfaces an error to the caller.
//
// Usage:
//
//	brk, _ := breaker.New(breaker.Settings{}, []string{"evaluation"}, nil)
//	res, err := breaker.Execute(ctx, brk, "evaluation",
//	    func(ctx context.Context) (string, error) { return callModel(ctx) },
//	    func(ctx context.Context) (string, error) { return cachedAnswer(), nil },
//	)
//
// The category set is fixed at construction. Calls naming an unknown
// category fail with ErrUnknownCategory instead of registering one.
package breaker
