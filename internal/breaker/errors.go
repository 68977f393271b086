package breaker

import (
	"errors"
	"fmt"
	"time"
)

// ErrUnknownCategory is returned when a call references a category that was
// not registered at construction time. Categories are a closed set; nothing
// is auto-registered.
var ErrUnknownCategory = errors.New("unknown category")

// ErrTimeout is the sentinel wrapped into every synthesized timeout failure.
var ErrTimeout = errors.New("primary call timed out")

func newTimeoutError(category string, timeout time.Duration) error {
	return fmt.Errorf("category %q: %w after %s", category, ErrTimeout, timeout)
}

func unknownCategory(category string) error {
	return fmt.Errorf("%w: %q", ErrUnknownCategory, category)
}
