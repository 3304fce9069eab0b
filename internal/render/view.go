// Package render turns world snapshots into the HTML fragments htmx swaps into
// the page.
//
// Every fragment that answers a keypress is a complete #game-target element:
// the input block inside it re-arms the key triggers, which fire only once.
package render

import (
	"strconv"

	"github.com/rngking/rathttp/internal/gamedata"
	"github.com/rngking/rathttp/internal/world"
)

//go:generate templ generate

// DefaultCellSize is the spacing between glyphs on the board, in pixels.
const DefaultCellSize = 15

// View is everything the game fragment needs.
type View struct {
	Snapshot world.Snapshot
	Glyphs   *gamedata.GlyphSet
	CellSize int
	Message  string
}

func (v View) cell() int {
	if v.CellSize <= 0 {
		return DefaultCellSize
	}
	return v.CellSize
}

// boardCell is one glyph of the SVG board, in pixels.
type boardCell struct {
	X, Y   int
	Fill   string
	Glyph  string
	Player bool
}

// boardWidth and boardHeight size the SVG to the used part of the grid, with
// one cell of margin.
func boardWidth(v View) int {
	lo, hi := v.Snapshot.Bounds()
	return (hi.X - lo.X + 1) * v.cell()
}

func boardHeight(v View) int {
	lo, hi := v.Snapshot.Bounds()
	return (hi.Y - lo.Y + 1) * v.cell()
}

// cells lists the glyphs to draw in row-major order. TileNone cells are
// skipped.
func (v View) cells() []boardCell {
	snap := v.Snapshot
	size := v.cell()
	lo, hi := snap.Bounds()
	out := make([]boardCell, 0, (hi.X-lo.X)*(hi.Y-lo.Y))
	for y := lo.Y; y < hi.Y; y++ {
		for x := lo.X; x < hi.X; x++ {
			c := world.Coord{X: x, Y: y}
			tv := snap.At(c)
			if tv.Kind == world.TileNone {
				continue
			}
			g := v.Glyphs.Cell(tv)
			out = append(out, boardCell{
				X:      (x - lo.X + 1) * size,
				Y:      (y - lo.Y + 1) * size,
				Fill:   g.CSS(),
				Glyph:  string(g.Rune),
				Player: c == snap.Player,
			})
		}
	}
	return out
}

var arrowKeys = []struct {
	dir world.Direction
	key string
}{
	{world.Right, "ArrowRight"},
	{world.Left, "ArrowLeft"},
	{world.Down, "ArrowDown"},
	{world.Up, "ArrowUp"},
}

// keyTrigger fires once on the arrow key; shift selects interaction.
func keyTrigger(key string, shift bool) string {
	mod := "!shiftKey"
	if shift {
		mod = "shiftKey"
	}
	return "keyup[key=='" + key + "'&&" + mod + "] from:body once"
}

func statusSuffix(message string) string {
	if message == "" {
		return ""
	}
	return ": " + message
}

func px(n int) string {
	return strconv.Itoa(n)
}
