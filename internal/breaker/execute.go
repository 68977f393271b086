package breaker

import (
	"context"
	"fmt"
	"time"
)

// Func is a typed callable guarded by the breaker. The context carries the
// breaker's deadline; well-behaved callables stop early when it fires, but
// cancellation is advisory.
type Func[T any] func(context.Context) (T, error)

// Result is the uniform envelope returned by Execute.
//
// Success is true whenever a value was produced, by either callable. Err
// carries the primary's failure (including synthesized timeouts) when the
// fallback was used because of one; it is nil on the fast-fail OPEN path.
type Result[T any] struct {
	Success       bool
	Data          T
	UsedFallback  bool
	CircuitState  State
	ExecutionTime time.Duration
	Err           error
}

// Execute runs primary under the category's circuit. When the circuit is
// open, or the primary fails or times out, fallback runs in its place. The
// returned error is non-nil only for an unknown category or when the
// fallback itself fails; every primary failure is recovered locally.
func Execute[T any](ctx context.Context, b *Breaker, category string, primary, fallback Func[T]) (Result[T], error) {
	rec, err := b.lookup(category)
	if err != nil {
		return Result[T]{}, err
	}

	proceed, _ := b.admit(rec)
	if !proceed {
		// Fast-fail path: the primary is never attempted, so the fallback's
		// own cost is the only duration to report.
		res := Result[T]{
			UsedFallback: true,
			CircuitState: StateOpen,
		}
		return finishWithFallback(ctx, category, res, fallback, true)
	}

	data, elapsed, primaryErr := attempt(ctx, b.settings.Timeout, category, primary)
	if primaryErr == nil {
		return Result[T]{
			Success:       true,
			Data:          data,
			CircuitState:  b.onSuccess(rec, elapsed),
			ExecutionTime: elapsed,
		}, nil
	}

	res := Result[T]{
		UsedFallback:  true,
		CircuitState:  b.onFailure(rec, elapsed, primaryErr),
		ExecutionTime: elapsed,
		Err:           primaryErr,
	}
	return finishWithFallback(ctx, category, res, fallback, false)
}

// attempt races the primary callable against the configured timeout. The
// result channel is buffered so the losing side's late completion is dropped
// without leaking the goroutine; a finalized call is never mutated twice.
func attempt[T any](ctx context.Context, timeout time.Duration, category string, primary Func[T]) (T, time.Duration, error) {
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type outcome struct {
		data T
		err  error
	}

	done := make(chan outcome, 1)
	start := time.Now()

	go func() {
		data, err := primary(cctx)
		done <- outcome{data: data, err: err}
	}()

	select {
	case out := <-done:
		return out.data, time.Since(start), out.err
	case <-cctx.Done():
		elapsed := time.Since(start)
		var zero T
		if err := ctx.Err(); err != nil {
			// Caller cancellation, not the breaker's timer.
			return zero, elapsed, err
		}
		return zero, elapsed, newTimeoutError(category, timeout)
	}
}

func finishWithFallback[T any](ctx context.Context, category string, res Result[T], fallback Func[T], measure bool) (Result[T], error) {
	start := time.Now()
	data, err := fallback(ctx)
	if measure {
		res.ExecutionTime = time.Since(start)
	}

	if err != nil {
		res.Success = false
		if res.Err == nil {
			res.Err = err
		}
		return res, fmt.Errorf("fallback for category %q failed: %w", category, err)
	}

	res.Success = true
	res.Data = data
	return res, nil
}
