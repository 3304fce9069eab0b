package game

import "fmt"

// Layout selects the level generator.
type Layout string

const (
	// LayoutRoom is the single bordered room.
	LayoutRoom Layout = "room"
	// LayoutDungeon is the BSP room-and-corridor generator.
	LayoutDungeon Layout = "dungeon"
)

// Config holds game configuration options.
type Config struct {
	// Size is the grid edge length N.
	Size int
	// Layout picks the level generator. Empty means LayoutRoom.
	Layout Layout
	// Seed for random number generation. Used for reproducible dungeon generation.
	// A seed of 0 means a random seed will be generated.
	Seed int64
	// Monsters and Items are scattered as inert tokens on new levels.
	Monsters int
	Items    int
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() Config {
	return Config{Size: 50, Layout: LayoutRoom}
}

// Validate checks the configuration before a session is built.
func (c Config) Validate() error {
	if c.Size < 3 {
		return fmt.Errorf("size %d: must be at least 3", c.Size)
	}
	switch c.Layout {
	case "", LayoutRoom, LayoutDungeon:
	default:
		return fmt.Errorf("unknown layout %q", c.Layout)
	}
	if c.Monsters < 0 || c.Items < 0 {
		return fmt.Errorf("token counts must not be negative")
	}
	return nil
}
