package game

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/rngking/rathttp/internal/telemetry"
	"github.com/rngking/rathttp/internal/world"
)

// ErrLockUnavailable is returned once the session's world has been poisoned
// by a panic in an earlier call.
var ErrLockUnavailable = errors.New("world lock unavailable")

// Update is delivered to listeners after every state change.
type Update struct {
	GameID   string
	Event    string
	Snapshot world.Snapshot
}

// Option customizes a Session.
type Option func(*Session)

// WithLogger sets the logger used for session events.
func WithLogger(l *log.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// Session is the single shared world of a server process. Every call holds
// the world lock for the whole operation, snapshot included, so a move and
// the board rendered after it are always consistent.
type Session struct {
	cfg    Config
	logger *log.Logger
	tracer trace.Tracer

	mu     sync.Mutex
	world  *world.World
	gameID string
	state  State
	rng    *rand.Rand

	listenMu  sync.Mutex
	listeners map[int]func(Update)
	nextID    int
}

// NewSession validates cfg and builds the first world.
func NewSession(ctx context.Context, cfg Config, opts ...Option) (*Session, error) {
	if cfg.Layout == "" {
		cfg.Layout = LayoutRoom
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("game config: %w", err)
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	s := &Session{
		cfg:       cfg,
		logger:    log.Default(),
		tracer:    telemetry.Tracer("game"),
		rng:       rand.New(rand.NewSource(seed)),
		listeners: make(map[int]func(Update)),
	}
	for _, opt := range opts {
		opt(s)
	}

	if _, err := s.NewGame(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Config returns the configuration the session was built with.
func (s *Session) Config() Config {
	return s.cfg
}

// GameID returns the identifier of the current game.
func (s *Session) GameID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gameID
}

// State reports whether the world lock is usable.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// NewGame replaces the world with a freshly generated level. It also clears
// a poisoned lock, since the broken world is discarded.
func (s *Session) NewGame(ctx context.Context) (world.Snapshot, error) {
	ctx, span := s.tracer.Start(ctx, "session.new_game")
	defer span.End()

	snap, id, err := s.reset(ctx)
	if err != nil {
		s.fail(span, err)
		return world.Snapshot{}, err
	}

	span.SetAttributes(
		attribute.String("game.id", id),
		attribute.String("game.layout", string(s.cfg.Layout)),
		attribute.Int("game.size", snap.Size),
		attribute.Int("player.start_x", snap.Player.X),
		attribute.Int("player.start_y", snap.Player.Y),
	)
	s.logger.Printf("new game %s: %s layout, %dx%d, player at %v", id, s.cfg.Layout, snap.Size, snap.Size, snap.Player)

	s.notify(Update{GameID: id, Event: "new_game", Snapshot: snap})
	return snap, nil
}

// reset swaps in a new world under the lock.
func (s *Session) reset(ctx context.Context) (world.Snapshot, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, err := s.buildWorld(ctx)
	if err != nil {
		return world.Snapshot{}, "", err
	}
	s.world = w
	s.gameID = uuid.NewString()
	s.state = StateReady
	return w.Snapshot(), s.gameID, nil
}

// Move attempts one player step and returns the outcome together with the
// board as it stands after the step.
func (s *Session) Move(ctx context.Context, d world.Direction) (world.MoveOutcome, world.Snapshot, error) {
	_, span := s.tracer.Start(ctx, "session.move")
	defer span.End()
	span.SetAttributes(attribute.String("move.direction", d.String()))

	var (
		out  world.MoveOutcome
		snap world.Snapshot
		id   string
	)
	err := s.withWorld("session.move", func(w *world.World) error {
		out = w.AttemptMove(d)
		snap = w.Snapshot()
		id = s.gameID
		return nil
	})
	if err != nil {
		s.fail(span, err)
		return world.MoveOutcome{}, world.Snapshot{}, err
	}

	span.SetAttributes(
		attribute.Bool("move.moved", out.Moved()),
		attribute.String("move.blocked_by", out.Reason.String()),
		attribute.Int("player.x", snap.Player.X),
		attribute.Int("player.y", snap.Player.Y),
		attribute.Int("game.turn", snap.Turn),
	)
	if out.Moved() {
		s.notify(Update{GameID: id, Event: "move", Snapshot: snap})
	}
	return out, snap, nil
}

// Interact acts on the tile next to the player in direction d.
func (s *Session) Interact(ctx context.Context, d world.Direction) (world.InteractOutcome, world.Snapshot, error) {
	_, span := s.tracer.Start(ctx, "session.interact")
	defer span.End()
	span.SetAttributes(attribute.String("interact.direction", d.String()))

	var (
		out  world.InteractOutcome
		snap world.Snapshot
		id   string
	)
	err := s.withWorld("session.interact", func(w *world.World) error {
		out = w.Interact(w.Player().Add(d))
		snap = w.Snapshot()
		id = s.gameID
		return nil
	})
	if err != nil {
		s.fail(span, err)
		return world.InteractOutcome{}, world.Snapshot{}, err
	}

	span.SetAttributes(attribute.String("interact.result", out.Result.String()))
	if out.Changed() {
		s.notify(Update{GameID: id, Event: "interact", Snapshot: snap})
	}
	return out, snap, nil
}

// Snapshot returns a consistent copy of the current world.
func (s *Session) Snapshot(ctx context.Context) (world.Snapshot, error) {
	var snap world.Snapshot
	err := s.withWorld("session.snapshot", func(w *world.World) error {
		snap = w.Snapshot()
		return nil
	})
	return snap, err
}

// Subscribe registers fn to receive every update. Listeners run outside the
// world lock, in the goroutine that made the change. The returned function
// removes the listener.
func (s *Session) Subscribe(fn func(Update)) (unsubscribe func()) {
	s.listenMu.Lock()
	defer s.listenMu.Unlock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	return func() {
		s.listenMu.Lock()
		defer s.listenMu.Unlock()
		delete(s.listeners, id)
	}
}

func (s *Session) notify(u Update) {
	s.listenMu.Lock()
	fns := make([]func(Update), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.listenMu.Unlock()

	for _, fn := range fns {
		fn(u)
	}
}

// withWorld runs fn while holding the world lock. A panic inside fn poisons
// the session. Invariant violations come back as errors so only the current
// request fails; any other panic is re-raised.
func (s *Session) withWorld(op string, fn func(*world.World) error) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StatePoisoned {
		return fmt.Errorf("%s: %w", op, ErrLockUnavailable)
	}

	defer func() {
		rec := recover()
		if rec == nil {
			return
		}
		s.state = StatePoisoned
		s.logger.Printf("%s: world poisoned by panic: %v", op, rec)
		if e, ok := rec.(error); ok && errors.Is(e, world.ErrInvariantViolation) {
			err = fmt.Errorf("%s: %w", op, e)
			return
		}
		panic(rec)
	}()

	return fn(s.world)
}

func (s *Session) fail(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// buildWorld generates a level for the current config. Callers hold s.mu.
func (s *Session) buildWorld(ctx context.Context) (*world.World, error) {
	var w *world.World
	switch s.cfg.Layout {
	case LayoutDungeon:
		grid, err := world.NewGrid(s.cfg.Size)
		if err != nil {
			return nil, err
		}
		if err := grid.GenerateDungeon(ctx, s.rng); err != nil {
			return nil, fmt.Errorf("generate dungeon: %w", err)
		}
		rooms := grid.Rooms()
		if len(rooms) == 0 {
			return nil, errors.New("generate dungeon: no rooms")
		}
		if w, err = world.NewFromGrid(grid, rooms[0].Center()); err != nil {
			return nil, err
		}
	default:
		var err error
		if w, err = world.New(s.cfg.Size); err != nil {
			return nil, err
		}
	}

	s.scatter(w, world.TokenMonster, s.cfg.Monsters)
	s.scatter(w, world.TokenItem, s.cfg.Items)
	return w, nil
}

// scatter places up to n tokens of kind on random floor tiles away from the
// player.
func (s *Session) scatter(w *world.World, kind world.TokenKind, n int) {
	if n == 0 {
		return
	}
	snap := w.Snapshot()
	var free []world.Coord
	for i, v := range snap.Tiles {
		c := world.Coord{X: i % snap.Size, Y: i / snap.Size}
		if v.Kind == world.TileFloor && c != snap.Player {
			free = append(free, c)
		}
	}
	s.rng.Shuffle(len(free), func(i, j int) { free[i], free[j] = free[j], free[i] })
	for _, c := range free[:min(n, len(free))] {
		if err := w.Place(c, world.Token{Kind: kind}); err != nil {
			s.logger.Printf("scatter %s at %v: %v", kind, c, err)
		}
	}
}
