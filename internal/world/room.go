package world

// Room represents a rectangular area of floor carved by level generation.
type Room struct {
	X, Y          int // Top-left corner position
	Width, Height int // Dimensions of the room
}

// Center returns the center coordinates of the room.
func (r Room) Center() Coord {
	return Coord{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// Contains returns true if the given point is inside the room.
func (r Room) Contains(c Coord) bool {
	return c.X >= r.X && c.X < r.X+r.Width && c.Y >= r.Y && c.Y < r.Y+r.Height
}

// Intersects returns true if this room overlaps with another room.
func (r Room) Intersects(other Room) bool {
	return r.X < other.X+other.Width &&
		r.X+r.Width > other.X &&
		r.Y < other.Y+other.Height &&
		r.Y+r.Height > other.Y
}

// perimeter returns the ring of cells immediately outside the room, excluding
// the corners.
func (r Room) perimeter() []Coord {
	out := make([]Coord, 0, 2*(r.Width+r.Height))
	for x := r.X; x < r.X+r.Width; x++ {
		out = append(out, Coord{X: x, Y: r.Y - 1}, Coord{X: x, Y: r.Y + r.Height})
	}
	for y := r.Y; y < r.Y+r.Height; y++ {
		out = append(out, Coord{X: r.X - 1, Y: y}, Coord{X: r.X + r.Width, Y: y})
	}
	return out
}
