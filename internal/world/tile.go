// Package world provides the tile grid, level generation and the movement rules.
package world

// TileKind is the terrain class of a grid cell.
type TileKind int

const (
	// TileNone marks a cell outside the constructed playable area.
	TileNone TileKind = iota
	TileWall
	TileFloor
	TileDoor
)

// String returns a human-readable kind name.
func (k TileKind) String() string {
	switch k {
	case TileNone:
		return "none"
	case TileWall:
		return "wall"
	case TileFloor:
		return "floor"
	case TileDoor:
		return "door"
	default:
		return "unknown"
	}
}

// DoorState is the passability state of a door.
type DoorState int

const (
	DoorOpen DoorState = iota
	DoorClosedLocked
	DoorClosed
	DoorBroken
)

// Blocks reports whether a door in this state stops movement.
func (s DoorState) Blocks() bool {
	return s == DoorClosedLocked || s == DoorClosed
}

// String returns a human-readable state name.
func (s DoorState) String() string {
	switch s {
	case DoorOpen:
		return "open"
	case DoorClosedLocked:
		return "locked"
	case DoorClosed:
		return "closed"
	case DoorBroken:
		return "broken"
	default:
		return "unknown"
	}
}

// Tile is a single grid cell. Door is only meaningful for TileDoor, and the
// stack only ever holds tokens on Floor and Door tiles.
type Tile struct {
	Kind  TileKind
	Door  DoorState
	Stack TileStack
}

// WallTile returns an impassable wall.
func WallTile() Tile {
	return Tile{Kind: TileWall}
}

// FloorTile returns a floor with an empty stack.
func FloorTile() Tile {
	return Tile{Kind: TileFloor}
}

// DoorTile returns a door in the given state with an empty stack.
func DoorTile(state DoorState) Tile {
	return Tile{Kind: TileDoor, Door: state}
}

// IsPassable returns true if the tile can be walked on.
func (t Tile) IsPassable() bool {
	switch t.Kind {
	case TileFloor:
		return true
	case TileDoor:
		return !t.Door.Blocks()
	default:
		return false
	}
}

// HoldsTokens reports whether the tile kind carries a stack.
func (t Tile) HoldsTokens() bool {
	return t.Kind == TileFloor || t.Kind == TileDoor
}

// Clone returns a copy of the tile whose stack shares no storage with t.
func (t Tile) Clone() Tile {
	t.Stack = t.Stack.Clone()
	return t
}
