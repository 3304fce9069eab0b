// Package game owns the shared world session and the terminal game loop.
package game

// State represents the health of a session's world lock.
type State int

const (
	// StateReady means the world accepts input.
	StateReady State = iota
	// StatePoisoned means a call panicked while holding the world. Every call
	// fails with ErrLockUnavailable until a new game starts.
	StatePoisoned
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateReady:
		return "ready"
	case StatePoisoned:
		return "poisoned"
	default:
		return "unknown"
	}
}
