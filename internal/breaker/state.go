package breaker

type State int

const (
	StateClosed   State = iota // Normal operation
	StateOpen                  // Rejecting calls, fallback only
	StateHalfOpen              // Probing for recovery
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "CLOSED"
	case StateOpen:
		return "OPEN"
	case StateHalfOpen:
		return "HALF_OPEN"
	default:
		return "UNKNOWN"
	}
}
