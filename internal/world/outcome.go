package world

import "fmt"

// MoveKind tells whether a move was applied.
type MoveKind int

const (
	Moved MoveKind = iota
	Blocked
)

// BlockReason explains why a move was rejected.
type BlockReason int

const (
	// NotBlocked is the reason carried by a successful move.
	NotBlocked BlockReason = iota
	// EdgeOfWorld means the target lies outside the grid.
	EdgeOfWorld
	// Obstacle means the target tile is impassable.
	Obstacle
)

func (r BlockReason) String() string {
	switch r {
	case NotBlocked:
		return "none"
	case EdgeOfWorld:
		return "edge_of_world"
	case Obstacle:
		return "obstacle"
	default:
		return "unknown"
	}
}

// MoveOutcome is the result of a single AttemptMove call. From and To are
// equal when the move was blocked; To then holds the rejected target.
type MoveOutcome struct {
	Kind      MoveKind
	Reason    BlockReason
	Direction Direction
	From      Coord
	To        Coord
}

// Moved reports whether the player changed position.
func (o MoveOutcome) Moved() bool {
	return o.Kind == Moved
}

func (o MoveOutcome) String() string {
	if o.Kind == Moved {
		return fmt.Sprintf("moved %s from %v to %v", o.Direction, o.From, o.To)
	}
	return fmt.Sprintf("blocked %s at %v: %s", o.Direction, o.From, o.Reason)
}

// InteractResult enumerates what an interaction did.
type InteractResult int

const (
	// InteractNothing means the target holds nothing to interact with.
	InteractNothing InteractResult = iota
	InteractOpened
	InteractClosed
	// InteractLocked means the target is a locked door and stays locked.
	InteractLocked
	// InteractJammed means an open door could not be closed because the doorway
	// is occupied.
	InteractJammed
	// InteractOutOfReach means the target is not orthogonally adjacent to the player.
	InteractOutOfReach
	// InteractEdge means the target lies outside the grid.
	InteractEdge
)

func (r InteractResult) String() string {
	switch r {
	case InteractNothing:
		return "nothing"
	case InteractOpened:
		return "door_opened"
	case InteractClosed:
		return "door_closed"
	case InteractLocked:
		return "door_locked"
	case InteractJammed:
		return "door_jammed"
	case InteractOutOfReach:
		return "out_of_reach"
	case InteractEdge:
		return "edge_of_world"
	default:
		return "unknown"
	}
}

// InteractOutcome is the result of a single Interact call.
type InteractOutcome struct {
	Result InteractResult
	Target Coord
}

// Changed reports whether the interaction mutated the grid.
func (o InteractOutcome) Changed() bool {
	return o.Result == InteractOpened || o.Result == InteractClosed
}

func (o InteractOutcome) String() string {
	return fmt.Sprintf("%s at %v", o.Result, o.Target)
}
