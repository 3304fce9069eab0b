package world

import (
	"context"
	"errors"
	"math/rand"
	"testing"
)

func TestBuildDefaultLayoutFixture(t *testing.T) {
	g, err := NewGrid(10)
	if err != nil {
		t.Fatalf("NewGrid(10) error: %v", err)
	}
	if err := g.BuildDefaultLayout(); err != nil {
		t.Fatalf("BuildDefaultLayout() error: %v", err)
	}

	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			tile, err := g.Get(Coord{X: x, Y: y})
			if err != nil {
				t.Fatalf("Get(%d,%d) error: %v", x, y, err)
			}
			want := TileNone
			switch {
			case y == 0 || y == 9:
				want = TileWall
			case x >= 1 && x <= 8:
				want = TileFloor
			}
			if tile.Kind != want {
				t.Errorf("tile (%d,%d) = %v, want %v", x, y, tile.Kind, want)
			}
			if tile.Stack.Len() != 0 {
				t.Errorf("tile (%d,%d) stack has %d tokens, want empty", x, y, tile.Stack.Len())
			}
		}
	}
}

func TestBuildDefaultLayoutLeavesRestEmpty(t *testing.T) {
	g, _ := NewGrid(50)
	if err := g.BuildDefaultLayout(); err != nil {
		t.Fatalf("BuildDefaultLayout() error: %v", err)
	}

	tests := []struct {
		c    Coord
		want TileKind
	}{
		{Coord{0, 0}, TileWall},
		{Coord{9, 9}, TileWall},
		{Coord{0, 1}, TileNone},
		{Coord{0, 8}, TileNone},
		{Coord{9, 1}, TileNone},
		{Coord{9, 8}, TileNone},
		{Coord{5, 5}, TileFloor},
		{Coord{10, 0}, TileNone},
		{Coord{0, 10}, TileNone},
		{Coord{49, 49}, TileNone},
	}
	for _, tt := range tests {
		tile, _ := g.Get(tt.c)
		if tile.Kind != tt.want {
			t.Errorf("Get(%v).Kind = %v, want %v", tt.c, tile.Kind, tt.want)
		}
	}
}

func TestBuildDefaultLayoutDeterministic(t *testing.T) {
	g1, _ := NewGrid(10)
	g2, _ := NewGrid(10)
	_ = g1.BuildDefaultLayout()
	_ = g2.BuildDefaultLayout()

	for i := range g1.tiles {
		if g1.tiles[i].Kind != g2.tiles[i].Kind {
			t.Fatalf("tile %d differs: %v != %v", i, g1.tiles[i].Kind, g2.tiles[i].Kind)
		}
	}
}

func TestBuildDefaultLayoutRejectsPopulatedGrid(t *testing.T) {
	g, _ := NewGrid(10)
	if err := g.BuildDefaultLayout(); err != nil {
		t.Fatalf("first BuildDefaultLayout() error: %v", err)
	}
	if err := g.BuildDefaultLayout(); !errors.Is(err, ErrAlreadyGenerated) {
		t.Errorf("second BuildDefaultLayout() = %v, want ErrAlreadyGenerated", err)
	}
}

func TestGeneratorsRejectGridWrittenBySet(t *testing.T) {
	g, _ := NewGrid(MinDungeonSize)
	if err := g.Set(Coord{2, 2}, FloorTile()); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	if err := g.BuildDefaultLayout(); !errors.Is(err, ErrAlreadyGenerated) {
		t.Errorf("BuildDefaultLayout() after Set = %v, want ErrAlreadyGenerated", err)
	}
	if err := g.GenerateDungeon(context.Background(), rand.New(rand.NewSource(1))); !errors.Is(err, ErrAlreadyGenerated) {
		t.Errorf("GenerateDungeon() after Set = %v, want ErrAlreadyGenerated", err)
	}
}

func TestNewGridRejectsTinySizes(t *testing.T) {
	for _, n := range []int{-1, 0, 1, 2} {
		if _, err := NewGrid(n); err == nil {
			t.Errorf("NewGrid(%d) succeeded, want error", n)
		}
	}
}

func TestGridBounds(t *testing.T) {
	g, _ := NewGrid(10)

	tests := []struct {
		c  Coord
		ok bool
	}{
		{Coord{0, 0}, true},
		{Coord{9, 9}, true},
		{Coord{-1, 0}, false},
		{Coord{0, -1}, false},
		{Coord{10, 0}, false},
		{Coord{0, 10}, false},
	}
	for _, tt := range tests {
		_, err := g.Get(tt.c)
		if tt.ok && err != nil {
			t.Errorf("Get(%v) error = %v, want nil", tt.c, err)
		}
		if !tt.ok {
			if !errors.Is(err, ErrOutOfBounds) {
				t.Errorf("Get(%v) error = %v, want ErrOutOfBounds", tt.c, err)
			}
			var oob *OutOfBoundsError
			if !errors.As(err, &oob) || oob.Coord != tt.c {
				t.Errorf("Get(%v) error = %#v, want *OutOfBoundsError for the coord", tt.c, err)
			}
			if _, err := g.GetMut(tt.c); !errors.Is(err, ErrOutOfBounds) {
				t.Errorf("GetMut(%v) error = %v, want ErrOutOfBounds", tt.c, err)
			}
			if g.IsPassable(tt.c) {
				t.Errorf("IsPassable(%v) = true outside the grid", tt.c)
			}
		}
	}
}

func TestGridIsPassable(t *testing.T) {
	g, _ := NewGrid(5)
	tiles := map[Coord]Tile{
		{1, 1}: WallTile(),
		{2, 1}: FloorTile(),
		{3, 1}: DoorTile(DoorOpen),
		{1, 2}: DoorTile(DoorClosedLocked),
		{2, 2}: DoorTile(DoorClosed),
		{3, 2}: DoorTile(DoorBroken),
	}
	for c, tile := range tiles {
		if err := g.Set(c, tile); err != nil {
			t.Fatalf("Set(%v) error: %v", c, err)
		}
	}

	tests := []struct {
		name string
		c    Coord
		want bool
	}{
		{"none", Coord{0, 0}, false},
		{"wall", Coord{1, 1}, false},
		{"floor", Coord{2, 1}, true},
		{"open door", Coord{3, 1}, true},
		{"locked door", Coord{1, 2}, false},
		{"closed door", Coord{2, 2}, false},
		{"broken door", Coord{3, 2}, true},
	}
	for _, tt := range tests {
		if got := g.IsPassable(tt.c); got != tt.want {
			t.Errorf("IsPassable(%s) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestGridGetReturnsCopy(t *testing.T) {
	g, _ := NewGrid(3)
	_ = g.Set(Coord{1, 1}, FloorTile())
	mut, _ := g.GetMut(Coord{1, 1})
	mut.Stack.Push(Token{Kind: TokenItem})

	view, _ := g.Get(Coord{1, 1})
	view.Stack.Push(Token{Kind: TokenMonster})

	again, _ := g.Get(Coord{1, 1})
	if again.Stack.Len() != 1 {
		t.Errorf("stack length after mutating a copy = %d, want 1", again.Stack.Len())
	}
}
