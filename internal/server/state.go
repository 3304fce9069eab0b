package server

import (
	"strings"

	"github.com/rngking/rathttp/internal/gamedata"
	"github.com/rngking/rathttp/internal/world"
)

// stateView is the JSON form of a snapshot. Rows cover only the used part
// of the grid, starting at Origin.
type stateView struct {
	GameID string      `json:"game_id"`
	Size   int         `json:"size"`
	Turn   int         `json:"turn"`
	Player world.Coord `json:"player"`
	Origin world.Coord `json:"origin"`
	Rows   []string    `json:"rows"`
}

func newStateView(gameID string, snap world.Snapshot, glyphs *gamedata.GlyphSet) stateView {
	lo, hi := snap.Bounds()
	v := stateView{
		GameID: gameID,
		Size:   snap.Size,
		Turn:   snap.Turn,
		Player: snap.Player,
		Origin: lo,
		Rows:   make([]string, 0, hi.Y-lo.Y),
	}
	var b strings.Builder
	for y := lo.Y; y < hi.Y; y++ {
		b.Reset()
		for x := lo.X; x < hi.X; x++ {
			b.WriteRune(glyphs.Cell(snap.At(world.Coord{X: x, Y: y})).Rune)
		}
		v.Rows = append(v.Rows, b.String())
	}
	return v
}
