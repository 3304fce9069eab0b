package ui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/rngking/rathttp/internal/gamedata"
	"github.com/rngking/rathttp/internal/world"
)

// Canvas is the drawing surface a Renderer writes to. *Screen implements it.
type Canvas interface {
	Clear()
	Show()
	SetContent(x, y int, r rune, style tcell.Style)
	Size() (width, height int)
}

// Renderer handles drawing the game to the screen.
type Renderer struct {
	canvas Canvas
	glyphs *gamedata.GlyphSet
}

// NewRenderer creates a new renderer for the given canvas.
func NewRenderer(canvas Canvas, glyphs *gamedata.GlyphSet) *Renderer {
	return &Renderer{canvas: canvas, glyphs: glyphs}
}

// Render draws the populated part of the board with a status line below it.
// The view scrolls to keep the player visible on small terminals.
func (r *Renderer) Render(snap world.Snapshot, status string) {
	r.canvas.Clear()

	lo, hi := snap.Bounds()
	width, height := r.canvas.Size()
	rows := height - 2 // status line and a blank line
	origin := ViewOrigin(lo, hi, snap.Player, width, rows)

	for y := origin.Y; y < hi.Y && y-origin.Y < rows; y++ {
		for x := origin.X; x < hi.X && x-origin.X < width; x++ {
			v := snap.At(world.Coord{X: x, Y: y})
			if v.Kind == world.TileNone {
				continue
			}
			g := r.glyphs.Cell(v)
			style := tcell.StyleDefault.Foreground(g.Color)
			if v.Top().Kind == world.TokenPlayer {
				style = style.Bold(true)
			}
			r.canvas.SetContent(x-origin.X, y-origin.Y, g.Rune, style)
		}
	}

	line := fmt.Sprintf("turn %d  %v  %s", snap.Turn, snap.Player, status)
	r.RenderMessage(line, height-1)

	r.canvas.Show()
}

// RenderMessage displays a message on the given row.
func (r *Renderer) RenderMessage(msg string, y int) {
	style := tcell.StyleDefault.Foreground(tcell.ColorWhite)
	for i, ch := range []rune(msg) {
		r.canvas.SetContent(i, y, ch, style)
	}
}

// ViewOrigin picks the top-left board coordinate of the visible window so
// that the player stays inside a width×rows view of the [lo,hi) region.
func ViewOrigin(lo, hi, player world.Coord, width, rows int) world.Coord {
	return world.Coord{
		X: axisOrigin(lo.X, hi.X, player.X, width),
		Y: axisOrigin(lo.Y, hi.Y, player.Y, rows),
	}
}

func axisOrigin(lo, hi, p, span int) int {
	if span <= 0 || hi-lo <= span {
		return lo
	}
	o := p - span/2
	if o < lo {
		o = lo
	}
	if o > hi-span {
		o = hi - span
	}
	return o
}
