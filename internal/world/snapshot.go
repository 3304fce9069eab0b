package world

// TileView is a read-only copy of one tile.
type TileView struct {
	Kind   TileKind
	Door   DoorState
	Tokens []Token
}

// Passable reports whether the viewed tile could be entered.
func (v TileView) Passable() bool {
	return Tile{Kind: v.Kind, Door: v.Door}.IsPassable()
}

// Top returns the topmost token on the tile, or a TokenNone token.
func (v TileView) Top() Token {
	if len(v.Tokens) == 0 {
		return Token{Kind: TokenNone}
	}
	return v.Tokens[len(v.Tokens)-1]
}

// Snapshot is a deep copy of the world taken at one instant. Nothing in it
// aliases the world's storage.
type Snapshot struct {
	Size   int
	Player Coord
	Turn   int
	Tiles  []TileView // row-major, Size*Size entries
}

// Snapshot copies the current world state for rendering.
func (w *World) Snapshot() Snapshot {
	s := Snapshot{
		Size:   w.grid.size,
		Player: w.player,
		Turn:   w.turn,
		Tiles:  make([]TileView, len(w.grid.tiles)),
	}
	for i, t := range w.grid.tiles {
		v := TileView{Kind: t.Kind, Door: t.Door}
		if t.Stack.Len() > 0 {
			v.Tokens = t.Stack.Tokens()
		}
		s.Tiles[i] = v
	}
	return s
}

// At returns the tile view at c, or a TileNone view outside the grid.
func (s Snapshot) At(c Coord) TileView {
	if c.X < 0 || c.X >= s.Size || c.Y < 0 || c.Y >= s.Size {
		return TileView{}
	}
	return s.Tiles[c.Y*s.Size+c.X]
}

// Bounds returns the smallest rectangle covering every non-empty tile, as
// its top-left and exclusive bottom-right corners. Renderers use it to skip
// the unused part of a large grid.
func (s Snapshot) Bounds() (lo, hi Coord) {
	lo = Coord{X: s.Size, Y: s.Size}
	for i, v := range s.Tiles {
		if v.Kind == TileNone {
			continue
		}
		x, y := i%s.Size, i/s.Size
		if x < lo.X {
			lo.X = x
		}
		if y < lo.Y {
			lo.Y = y
		}
		if x+1 > hi.X {
			hi.X = x + 1
		}
		if y+1 > hi.Y {
			hi.Y = y + 1
		}
	}
	if hi.X == 0 {
		return Coord{}, Coord{}
	}
	return lo, hi
}
