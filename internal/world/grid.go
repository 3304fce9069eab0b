package world

import "fmt"

// DefaultRoomSize is the edge length of the room written by BuildDefaultLayout.
const DefaultRoomSize = 10

// Grid is a square N×N array of tiles stored row-major. Bounds are enforced
// by the accessors.
type Grid struct {
	size      int
	tiles     []Tile
	rooms     []Room
	populated bool // set by the first write; generators refuse a populated grid
}

// NewGrid creates a grid with every cell set to TileNone.
func NewGrid(size int) (*Grid, error) {
	if size < 3 {
		return nil, fmt.Errorf("grid size %d: must be at least 3", size)
	}
	return &Grid{
		size:  size,
		tiles: make([]Tile, size*size),
	}, nil
}

// Size returns the grid edge length N.
func (g *Grid) Size() int {
	return g.size
}

// InBounds reports whether c lies inside [0,N)².
func (g *Grid) InBounds(c Coord) bool {
	return c.X >= 0 && c.X < g.size && c.Y >= 0 && c.Y < g.size
}

func (g *Grid) index(c Coord) (int, error) {
	if !g.InBounds(c) {
		return 0, &OutOfBoundsError{Coord: c, Size: g.size}
	}
	return c.Y*g.size + c.X, nil
}

// Get returns a copy of the tile at c. The returned stack does not alias the
// grid.
func (g *Grid) Get(c Coord) (Tile, error) {
	i, err := g.index(c)
	if err != nil {
		return Tile{}, err
	}
	return g.tiles[i].Clone(), nil
}

// GetMut returns the tile at c for in-place mutation.
func (g *Grid) GetMut(c Coord) (*Tile, error) {
	i, err := g.index(c)
	if err != nil {
		return nil, err
	}
	return &g.tiles[i], nil
}

// Set overwrites the tile at c. A grid written through Set no longer accepts
// a generator.
func (g *Grid) Set(c Coord, t Tile) error {
	i, err := g.index(c)
	if err != nil {
		return err
	}
	g.tiles[i] = t
	g.populated = true
	return nil
}

// IsPassable returns true if the given position can be walked on. Positions
// outside the grid are never passable.
func (g *Grid) IsPassable(c Coord) bool {
	i, err := g.index(c)
	if err != nil {
		return false
	}
	return g.tiles[i].IsPassable()
}

// Rooms returns the rooms written by level generation.
func (g *Grid) Rooms() []Room {
	out := make([]Room, len(g.rooms))
	copy(out, g.rooms)
	return out
}

// BuildDefaultLayout writes a single room anchored at (0,0) with edge
// min(N, DefaultRoomSize): the top and bottom rows are wall and the cells
// between them, minus the first and last column, are empty floor. The side
// columns and everything outside the room stay TileNone, which is just as
// impassable as wall.
func (g *Grid) BuildDefaultLayout() error {
	if g.populated {
		return ErrAlreadyGenerated
	}
	edge := min(g.size, DefaultRoomSize)
	for x := 0; x < edge; x++ {
		g.tiles[x] = WallTile()
		g.tiles[(edge-1)*g.size+x] = WallTile()
	}
	for y := 1; y < edge-1; y++ {
		for x := 1; x < edge-1; x++ {
			g.tiles[y*g.size+x] = FloorTile()
		}
	}
	g.rooms = []Room{{X: 1, Y: 1, Width: edge - 2, Height: edge - 2}}
	g.populated = true
	return nil
}

// each calls fn for every cell in row-major order.
func (g *Grid) each(fn func(c Coord, t *Tile)) {
	for i := range g.tiles {
		fn(Coord{X: i % g.size, Y: i / g.size}, &g.tiles[i])
	}
}
