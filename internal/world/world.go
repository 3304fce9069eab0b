package world

import (
	"errors"
	"fmt"
)

// World holds the grid and the single player. The player coordinate and the
// player token in the grid always agree.
type World struct {
	grid   *Grid
	player Coord
	turn   int
}

// New creates a world of the given size with the default bordered room and
// the player at its centre.
func New(size int) (*World, error) {
	grid, err := NewGrid(size)
	if err != nil {
		return nil, err
	}
	if err := grid.BuildDefaultLayout(); err != nil {
		return nil, err
	}
	return NewFromGrid(grid, grid.rooms[0].Center())
}

// NewFromGrid wraps an already generated grid and places the player token at
// start, which must be passable.
func NewFromGrid(grid *Grid, start Coord) (*World, error) {
	if grid == nil {
		return nil, errors.New("grid is required")
	}
	if !grid.IsPassable(start) {
		return nil, fmt.Errorf("start %v is not passable", start)
	}
	var players int
	grid.each(func(_ Coord, t *Tile) { players += t.Stack.Count(TokenPlayer) })
	if players != 0 {
		return nil, fmt.Errorf("grid already holds %d player tokens", players)
	}
	t, _ := grid.GetMut(start)
	t.Stack.Push(Token{Kind: TokenPlayer})
	return &World{grid: grid, player: start}, nil
}

// Player returns the player coordinate.
func (w *World) Player() Coord {
	return w.player
}

// Size returns the grid edge length.
func (w *World) Size() int {
	return w.grid.size
}

// Turn returns the number of moves applied so far.
func (w *World) Turn() int {
	return w.turn
}

// Tile returns a copy of the tile at c.
func (w *World) Tile(c Coord) (Tile, error) {
	return w.grid.Get(c)
}

// AttemptMove resolves one step of the player. A rejected move leaves the
// world untouched. Tokens sharing the old or new tile with the player are
// never removed and keep their relative order, but the player token is
// pushed on top of the target stack: stepping away and back turns
// [player, item] into [item, player].
func (w *World) AttemptMove(d Direction) MoveOutcome {
	from := w.player
	target := from.Add(d)
	out := MoveOutcome{Kind: Blocked, Direction: d, From: from, To: target}

	if !w.grid.InBounds(target) {
		out.Reason = EdgeOfWorld
		return out
	}
	if !w.grid.IsPassable(target) {
		out.Reason = Obstacle
		return out
	}

	src, _ := w.grid.GetMut(from)
	if !src.Stack.RemovePlayer() {
		violate("world.move", "no player token at %v", from)
	}
	dst, _ := w.grid.GetMut(target)
	dst.Stack.Push(Token{Kind: TokenPlayer})
	w.player = target
	w.turn++

	out.Kind = Moved
	return out
}

// Interact acts on the tile at target, which must be orthogonally adjacent to
// the player. Closed doors open, open doors close unless something stands in
// the doorway, locked doors stay locked.
func (w *World) Interact(target Coord) InteractOutcome {
	out := InteractOutcome{Result: InteractNothing, Target: target}
	if !w.grid.InBounds(target) {
		out.Result = InteractEdge
		return out
	}
	if !w.player.Adjacent(target) {
		out.Result = InteractOutOfReach
		return out
	}

	t, _ := w.grid.GetMut(target)
	if t.Kind != TileDoor {
		return out
	}
	switch t.Door {
	case DoorClosed:
		t.Door = DoorOpen
		out.Result = InteractOpened
	case DoorOpen:
		if t.Stack.Len() > 0 {
			out.Result = InteractJammed
			return out
		}
		t.Door = DoorClosed
		out.Result = InteractClosed
	case DoorClosedLocked:
		out.Result = InteractLocked
	}
	return out
}

// Place puts a non-player token on a passable tile.
func (w *World) Place(c Coord, tok Token) error {
	switch tok.Kind {
	case TokenPlayer:
		return errors.New("the player token is placed by the world")
	case TokenNone:
		return errors.New("cannot place an empty token")
	}
	t, err := w.grid.GetMut(c)
	if err != nil {
		return err
	}
	if !t.IsPassable() {
		return fmt.Errorf("tile %v is %s and cannot hold tokens", c, t.Kind)
	}
	t.Stack.Push(tok)
	return nil
}

// CheckInvariants verifies that exactly one player token exists and that it
// sits at the player coordinate.
func (w *World) CheckInvariants() error {
	var found []Coord
	w.grid.each(func(c Coord, t *Tile) {
		for i := t.Stack.Count(TokenPlayer); i > 0; i-- {
			found = append(found, c)
		}
	})
	if len(found) != 1 {
		return &InvariantError{Op: "world.check", Detail: fmt.Sprintf("%d player tokens on the grid", len(found))}
	}
	if found[0] != w.player {
		return &InvariantError{Op: "world.check", Detail: fmt.Sprintf("player at %v but token at %v", w.player, found[0])}
	}
	return nil
}
