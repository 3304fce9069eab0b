package game

import (
	"context"
	"errors"

	"github.com/gdamore/tcell/v2"

	"github.com/rngking/rathttp/internal/gamedata"
	"github.com/rngking/rathttp/internal/ui"
	"github.com/rngking/rathttp/internal/world"
)

// Terminal plays a session in the local terminal.
type Terminal struct {
	session  *Session
	screen   *ui.Screen
	renderer *ui.Renderer
	running  bool
	// interacting is set after 'o' so the next arrow key interacts instead of
	// moving.
	interacting bool
	message     string
}

// NewTerminal creates a terminal front end for the session.
func NewTerminal(session *Session, glyphs *gamedata.GlyphSet) (*Terminal, error) {
	screen, err := ui.NewScreen()
	if err != nil {
		return nil, err
	}
	return newTerminal(session, screen, glyphs), nil
}

func newTerminal(session *Session, screen *ui.Screen, glyphs *gamedata.GlyphSet) *Terminal {
	return &Terminal{
		session:  session,
		screen:   screen,
		renderer: ui.NewRenderer(screen, glyphs),
		running:  true,
		message:  "arrows move, o+arrow opens or closes, n new game, q quits",
	}
}

// Run executes the main game loop until the player quits.
func (t *Terminal) Run(ctx context.Context) error {
	defer t.screen.Close()

	for t.running {
		snap, err := t.session.Snapshot(ctx)
		if err != nil {
			if !errors.Is(err, ErrLockUnavailable) {
				return err
			}
			t.message = "the world is broken, press n for a new game"
		}
		t.renderer.Render(snap, t.message)

		// Handle input (blocking)
		t.handleInput(ctx)
	}
	return nil
}

// handleInput processes a single input event.
func (t *Terminal) handleInput(ctx context.Context) {
	ev := t.screen.PollEvent()

	switch ev := ev.(type) {
	case *tcell.EventKey:
		t.handleKeyEvent(ctx, ev)
	case *tcell.EventResize:
		t.screen.Sync()
	}
}

// handleKeyEvent processes keyboard input.
func (t *Terminal) handleKeyEvent(ctx context.Context, ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		t.running = false

	case tcell.KeyUp:
		t.act(ctx, world.Up)
	case tcell.KeyDown:
		t.act(ctx, world.Down)
	case tcell.KeyLeft:
		t.act(ctx, world.Left)
	case tcell.KeyRight:
		t.act(ctx, world.Right)

	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q', 'Q':
			t.running = false
		case 'o', 'O':
			t.interacting = true
			t.message = "which direction?"
		case 'n', 'N':
			if _, err := t.session.NewGame(ctx); err != nil {
				t.message = err.Error()
				return
			}
			t.message = "a new level"
		}
	}
}

// act moves or interacts in direction d and records the outcome as the
// status message.
func (t *Terminal) act(ctx context.Context, d world.Direction) {
	if t.interacting {
		t.interacting = false
		out, _, err := t.session.Interact(ctx, d)
		if err != nil {
			t.message = err.Error()
			return
		}
		t.message = out.String()
		return
	}

	out, _, err := t.session.Move(ctx, d)
	if err != nil {
		t.message = err.Error()
		return
	}
	t.message = out.String()
}
