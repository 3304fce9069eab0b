package game

import (
	"context"
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rngking/rathttp/internal/gamedata"
	"github.com/rngking/rathttp/internal/ui"
	"github.com/rngking/rathttp/internal/world"
)

func newTestTerminal(t *testing.T, s *Session) *Terminal {
	t.Helper()
	screen, err := ui.NewScreenFrom(tcell.NewSimulationScreen(""))
	require.NoError(t, err)
	t.Cleanup(screen.Close)
	return newTerminal(s, screen, gamedata.MustLoadGlyphs())
}

func TestTerminalActMoves(t *testing.T) {
	s := newTestSession(t, Config{Size: 10})
	term := newTestTerminal(t, s)
	ctx := context.Background()

	term.act(ctx, world.Left)
	assert.True(t, strings.HasPrefix(term.message, "moved left"), term.message)

	snap, err := s.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, world.Coord{X: 4, Y: 5}, snap.Player)
}

func TestTerminalActInteracts(t *testing.T) {
	s := newTestSession(t, Config{Size: 10})
	term := newTestTerminal(t, s)
	ctx := context.Background()

	term.interacting = true
	term.act(ctx, world.Up)
	assert.False(t, term.interacting)
	assert.True(t, strings.HasPrefix(term.message, "nothing"), term.message)

	snap, err := s.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, world.Coord{X: 5, Y: 5}, snap.Player, "interacting must not move the player")
}

func TestTerminalReportsPoisonedWorld(t *testing.T) {
	s := newTestSession(t, Config{Size: 10})
	term := newTestTerminal(t, s)

	_ = s.withWorld("test", func(*world.World) error {
		panic(&world.InvariantError{Op: "test", Detail: "forced"})
	})
	term.act(context.Background(), world.Up)
	assert.Contains(t, term.message, ErrLockUnavailable.Error())
}
