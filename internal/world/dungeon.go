package world

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/rngking/rathttp/internal/telemetry"
)

const (
	// BSP parameters
	minRoomSize = 4  // Minimum room dimension
	maxRoomSize = 10 // Maximum room dimension
	minLeafSize = 8  // Minimum BSP leaf size before stopping split

	// MinDungeonSize is the smallest grid GenerateDungeon accepts.
	MinDungeonSize = minRoomSize + 4
)

// GenerateDungeon writes a procedural layout using a BSP split: rooms and the
// corridors joining them become floor, corridor mouths become doors, and every
// empty cell touching floor becomes wall. The layout is a pure function of the
// grid size and the rng state.
func (g *Grid) GenerateDungeon(ctx context.Context, rng *rand.Rand) error {
	if g.populated {
		return ErrAlreadyGenerated
	}
	if g.size < MinDungeonSize {
		return fmt.Errorf("grid size %d: dungeon layout needs at least %d", g.size, MinDungeonSize)
	}

	tracer := telemetry.Tracer("world")
	_, span := tracer.Start(ctx, "dungeon.generate")
	defer span.End()

	startTime := time.Now()

	gen := &bspGenerator{grid: g, rng: rng}

	// Start BSP with the entire grid as root, leaving room for the outer wall
	root := &bspNode{
		x:      1,
		y:      1,
		width:  g.size - 2,
		height: g.size - 2,
	}

	gen.splitNode(root)
	gen.createRooms(root)
	gen.connectRooms(root)
	doors := gen.placeDoors()
	gen.encloseFloors()
	g.populated = true

	span.SetAttributes(
		attribute.Int("dungeon.size", g.size),
		attribute.Int("dungeon.room_count", len(g.rooms)),
		attribute.Int("dungeon.door_count", doors),
		attribute.Int64("dungeon.generation_ms", time.Since(startTime).Milliseconds()),
	)
	return nil
}

type bspGenerator struct {
	grid *Grid
	rng  *rand.Rand
}

// bspNode represents a node in the BSP tree.
type bspNode struct {
	x, y          int
	width, height int
	left, right   *bspNode
	room          *Room
}

// isLeaf returns true if this node has no children.
func (n *bspNode) isLeaf() bool {
	return n.left == nil && n.right == nil
}

// splitNode recursively splits a BSP node.
func (b *bspGenerator) splitNode(node *bspNode) {
	if node.width < minLeafSize*2 && node.height < minLeafSize*2 {
		return
	}

	var splitHorizontally bool
	if node.width > node.height && node.width >= minLeafSize*2 {
		splitHorizontally = false
	} else if node.height >= minLeafSize*2 {
		splitHorizontally = true
	} else if node.width >= minLeafSize*2 {
		splitHorizontally = false
	} else {
		return
	}

	extent := node.width
	if splitHorizontally {
		extent = node.height
	}
	lo, hi := minLeafSize, extent-minLeafSize
	if hi <= lo {
		return
	}
	splitPos := lo + b.rng.Intn(hi-lo+1)

	if splitHorizontally {
		node.left = &bspNode{x: node.x, y: node.y, width: node.width, height: splitPos}
		node.right = &bspNode{x: node.x, y: node.y + splitPos, width: node.width, height: node.height - splitPos}
	} else {
		node.left = &bspNode{x: node.x, y: node.y, width: splitPos, height: node.height}
		node.right = &bspNode{x: node.x + splitPos, y: node.y, width: node.width - splitPos, height: node.height}
	}

	b.splitNode(node.left)
	b.splitNode(node.right)
}

// createRooms creates rooms in leaf nodes of the BSP tree.
func (b *bspGenerator) createRooms(node *bspNode) {
	if node == nil {
		return
	}
	if !node.isLeaf() {
		b.createRooms(node.left)
		b.createRooms(node.right)
		return
	}

	roomWidth := minRoomSize + b.rng.Intn(min(maxRoomSize-minRoomSize+1, node.width-minRoomSize+1))
	roomHeight := minRoomSize + b.rng.Intn(min(maxRoomSize-minRoomSize+1, node.height-minRoomSize+1))

	// Ensure room fits within leaf with a one cell margin
	if roomWidth > node.width-2 {
		roomWidth = node.width - 2
	}
	if roomHeight > node.height-2 {
		roomHeight = node.height - 2
	}
	if roomWidth < minRoomSize || roomHeight < minRoomSize {
		return // Skip if too small
	}

	room := Room{
		X:      node.x + 1 + b.rng.Intn(node.width-roomWidth-1),
		Y:      node.y + 1 + b.rng.Intn(node.height-roomHeight-1),
		Width:  roomWidth,
		Height: roomHeight,
	}
	node.room = &room
	b.grid.rooms = append(b.grid.rooms, room)

	for y := room.Y; y < room.Y+room.Height; y++ {
		for x := room.X; x < room.X+room.Width; x++ {
			b.carve(Coord{X: x, Y: y})
		}
	}
}

// connectRooms connects sibling subtrees with corridors.
func (b *bspGenerator) connectRooms(node *bspNode) {
	if node == nil || node.isLeaf() {
		return
	}

	b.connectRooms(node.left)
	b.connectRooms(node.right)

	leftRoom := roomOf(node.left)
	rightRoom := roomOf(node.right)
	if leftRoom != nil && rightRoom != nil {
		b.carveCorridor(*leftRoom, *rightRoom)
	}
}

// roomOf returns a room from a subtree (any room will do).
func roomOf(node *bspNode) *Room {
	if node == nil {
		return nil
	}
	if node.room != nil {
		return node.room
	}
	if room := roomOf(node.left); room != nil {
		return room
	}
	return roomOf(node.right)
}

// carveCorridor creates an L-shaped corridor between two room centres.
func (b *bspGenerator) carveCorridor(room1, room2 Room) {
	c1, c2 := room1.Center(), room2.Center()

	if b.rng.Intn(2) == 0 {
		b.carveHorizontal(c1.X, c2.X, c1.Y)
		b.carveVertical(c1.Y, c2.Y, c2.X)
	} else {
		b.carveVertical(c1.Y, c2.Y, c1.X)
		b.carveHorizontal(c1.X, c2.X, c2.Y)
	}
}

func (b *bspGenerator) carveHorizontal(x1, x2, y int) {
	if x1 > x2 {
		x1, x2 = x2, x1
	}
	for x := x1; x <= x2; x++ {
		b.carve(Coord{X: x, Y: y})
	}
}

func (b *bspGenerator) carveVertical(y1, y2, x int) {
	if y1 > y2 {
		y1, y2 = y2, y1
	}
	for y := y1; y <= y2; y++ {
		b.carve(Coord{X: x, Y: y})
	}
}

// carve turns a cell into floor, never touching the outermost ring.
func (b *bspGenerator) carve(c Coord) {
	n := b.grid.size
	if c.X > 0 && c.X < n-1 && c.Y > 0 && c.Y < n-1 {
		b.grid.tiles[c.Y*n+c.X] = FloorTile()
	}
}

// placeDoors turns corridor cells entering a room into doors. A cell on a
// room's perimeter qualifies when both of its neighbours along the room wall
// are still empty, which keeps corridors running alongside a wall door-free.
func (b *bspGenerator) placeDoors() int {
	g := b.grid
	placed := 0
	for _, room := range g.rooms {
		for _, c := range room.perimeter() {
			t, err := g.GetMut(c)
			if err != nil || t.Kind != TileFloor || g.insideRoom(c) {
				continue
			}
			var side1, side2 Coord
			if c.Y == room.Y-1 || c.Y == room.Y+room.Height {
				side1, side2 = c.Add(Left), c.Add(Right)
			} else {
				side1, side2 = c.Add(Up), c.Add(Down)
			}
			if g.kindAt(side1) != TileNone || g.kindAt(side2) != TileNone {
				continue
			}
			*t = DoorTile(b.doorState())
			placed++
		}
	}
	return placed
}

// doorState draws a door state: mostly open or closed, occasionally broken or
// locked.
func (b *bspGenerator) doorState() DoorState {
	switch roll := b.rng.Intn(20); {
	case roll < 8:
		return DoorOpen
	case roll < 15:
		return DoorClosed
	case roll < 18:
		return DoorBroken
	default:
		return DoorClosedLocked
	}
}

// encloseFloors walls off every empty cell that touches floor or a door,
// diagonals included.
func (b *bspGenerator) encloseFloors() {
	g := b.grid
	var walls []Coord
	g.each(func(c Coord, t *Tile) {
		if t.Kind != TileNone {
			return
		}
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				k := g.kindAt(Coord{X: c.X + dx, Y: c.Y + dy})
				if k == TileFloor || k == TileDoor {
					walls = append(walls, c)
					return
				}
			}
		}
	})
	for _, c := range walls {
		g.tiles[c.Y*g.size+c.X] = WallTile()
	}
}

func (g *Grid) kindAt(c Coord) TileKind {
	if !g.InBounds(c) {
		return TileNone
	}
	return g.tiles[c.Y*g.size+c.X].Kind
}

func (g *Grid) insideRoom(c Coord) bool {
	for _, r := range g.rooms {
		if r.Contains(c) {
			return true
		}
	}
	return false
}
