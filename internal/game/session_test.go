package game

import (
	"bytes"
	"context"
	"errors"
	"log"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rngking/rathttp/internal/world"
)

func newTestSession(t *testing.T, cfg Config) *Session {
	t.Helper()
	s, err := NewSession(context.Background(), cfg, WithLogger(log.New(&bytes.Buffer{}, "", 0)))
	require.NoError(t, err)
	return s
}

func TestNewSessionRoomLayout(t *testing.T) {
	s := newTestSession(t, Config{Size: 10})

	snap, err := s.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 10, snap.Size)
	assert.Equal(t, world.Coord{X: 5, Y: 5}, snap.Player)
	assert.Equal(t, world.TokenPlayer, snap.At(snap.Player).Top().Kind)
	assert.NotEmpty(t, s.GameID())
	assert.Equal(t, StateReady, s.State())
	assert.Equal(t, LayoutRoom, s.Config().Layout)
}

func TestNewSessionRejectsBadConfig(t *testing.T) {
	tests := []Config{
		{Size: 2},
		{Size: 10, Layout: "maze"},
		{Size: 10, Monsters: -1},
		{Size: world.MinDungeonSize - 1, Layout: LayoutDungeon},
	}
	for _, cfg := range tests {
		_, err := NewSession(context.Background(), cfg, WithLogger(log.New(&bytes.Buffer{}, "", 0)))
		assert.Error(t, err, "config %+v", cfg)
	}
}

func TestNewSessionDungeonLayoutIsSeeded(t *testing.T) {
	cfg := Config{Size: 50, Layout: LayoutDungeon, Seed: 42, Monsters: 3, Items: 4}
	a := newTestSession(t, cfg)
	b := newTestSession(t, cfg)

	snapA, err := a.Snapshot(context.Background())
	require.NoError(t, err)
	snapB, err := b.Snapshot(context.Background())
	require.NoError(t, err)

	assert.Equal(t, snapA.Player, snapB.Player)
	assert.Equal(t, snapA.Tiles, snapB.Tiles)
	assert.NotEqual(t, a.GameID(), b.GameID())

	var monsters, items int
	for _, v := range snapA.Tiles {
		for _, tok := range v.Tokens {
			switch tok.Kind {
			case world.TokenMonster:
				monsters++
			case world.TokenItem:
				items++
			}
		}
	}
	assert.Equal(t, 3, monsters)
	assert.Equal(t, 4, items)
}

func TestSessionMove(t *testing.T) {
	s := newTestSession(t, Config{Size: 10})
	ctx := context.Background()

	out, snap, err := s.Move(ctx, world.Right)
	require.NoError(t, err)
	assert.True(t, out.Moved())
	assert.Equal(t, world.Coord{X: 6, Y: 5}, snap.Player)
	assert.Equal(t, 1, snap.Turn)

	for i := 0; i < 3; i++ {
		out, snap, err = s.Move(ctx, world.Right)
		require.NoError(t, err)
	}
	assert.Equal(t, world.Blocked, out.Kind)
	assert.Equal(t, world.Obstacle, out.Reason)
	assert.Equal(t, world.Coord{X: 8, Y: 5}, snap.Player)
}

func TestSessionSequentialMovesObserveEachOther(t *testing.T) {
	s := newTestSession(t, Config{Size: 10})
	ctx := context.Background()

	_, first, err := s.Move(ctx, world.Up)
	require.NoError(t, err)
	out, second, err := s.Move(ctx, world.Up)
	require.NoError(t, err)

	assert.Equal(t, first.Player, out.From, "second move must start where the first ended")
	assert.Equal(t, first.Turn+1, second.Turn)
}

func TestSessionConcurrentMovesAreSerialized(t *testing.T) {
	s := newTestSession(t, Config{Size: 10})
	ctx := context.Background()

	const workers = 8
	const perWorker = 50
	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		moved int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				d := world.Directions[(i+j)%len(world.Directions)]
				out, snap, err := s.Move(ctx, d)
				if !assert.NoError(t, err) {
					return
				}
				if out.Moved() {
					assert.Equal(t, out.To, snap.Player)
					mu.Lock()
					moved++
					mu.Unlock()
				}
			}
		}(i)
	}
	wg.Wait()

	snap, err := s.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, moved, snap.Turn)

	players := 0
	for i, v := range snap.Tiles {
		for _, tok := range v.Tokens {
			if tok.Kind == world.TokenPlayer {
				players++
				assert.Equal(t, snap.Player, world.Coord{X: i % snap.Size, Y: i / snap.Size})
			}
		}
	}
	assert.Equal(t, 1, players)
}

func TestSessionInteract(t *testing.T) {
	s := newTestSession(t, Config{Size: 10})

	out, _, err := s.Interact(context.Background(), world.Left)
	require.NoError(t, err)
	assert.Equal(t, world.InteractNothing, out.Result)
	assert.Equal(t, world.Coord{X: 4, Y: 5}, out.Target)
}

func TestSessionInvariantViolationPoisons(t *testing.T) {
	s := newTestSession(t, Config{Size: 10})
	ctx := context.Background()

	err := s.withWorld("test", func(*world.World) error {
		panic(&world.InvariantError{Op: "test", Detail: "forced"})
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, world.ErrInvariantViolation))
	assert.Equal(t, StatePoisoned, s.State())

	_, _, err = s.Move(ctx, world.Up)
	assert.ErrorIs(t, err, ErrLockUnavailable)
	_, err = s.Snapshot(ctx)
	assert.ErrorIs(t, err, ErrLockUnavailable)
	_, _, err = s.Interact(ctx, world.Up)
	assert.ErrorIs(t, err, ErrLockUnavailable)

	oldID := s.GameID()
	_, err = s.NewGame(ctx)
	require.NoError(t, err)
	assert.Equal(t, StateReady, s.State())
	assert.NotEqual(t, oldID, s.GameID())

	_, _, err = s.Move(ctx, world.Up)
	assert.NoError(t, err)
}

func TestSessionOtherPanicsPropagateAndPoison(t *testing.T) {
	s := newTestSession(t, Config{Size: 10})

	assert.Panics(t, func() {
		_ = s.withWorld("test", func(*world.World) error { panic("boom") })
	})
	assert.Equal(t, StatePoisoned, s.State())

	_, err := s.Snapshot(context.Background())
	assert.ErrorIs(t, err, ErrLockUnavailable)
}

func TestSessionSubscribe(t *testing.T) {
	s := newTestSession(t, Config{Size: 10})
	ctx := context.Background()

	var events []string
	unsubscribe := s.Subscribe(func(u Update) {
		events = append(events, u.Event)
		assert.Equal(t, s.GameID(), u.GameID)
	})

	_, _, err := s.Move(ctx, world.Down)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		_, _, _ = s.Move(ctx, world.Down) // runs into the wall
	}
	_, err = s.NewGame(ctx)
	require.NoError(t, err)

	unsubscribe()
	_, _, err = s.Move(ctx, world.Up)
	require.NoError(t, err)

	assert.Equal(t, []string{"move", "move", "move", "new_game"}, events)
}

func TestStateString(t *testing.T) {
	tests := []struct {
		state    State
		expected string
	}{
		{StateReady, "ready"},
		{StatePoisoned, "poisoned"},
		{State(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.state.String(); got != tt.expected {
			t.Errorf("State(%d).String() = %q, want %q", tt.state, got, tt.expected)
		}
	}
}
