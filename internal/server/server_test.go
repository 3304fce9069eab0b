package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rngking/rathttp/internal/game"
	"github.com/rngking/rathttp/internal/gamedata"
	"github.com/rngking/rathttp/internal/world"
)

var quiet = log.New(io.Discard, "", 0)

func newTestSession(t *testing.T) *game.Session {
	t.Helper()
	s, err := game.NewSession(context.Background(), game.Config{Size: 10, Layout: game.LayoutRoom, Seed: 1}, game.WithLogger(quiet))
	require.NoError(t, err)
	return s
}

func newTestHandler(t *testing.T, s Session) http.Handler {
	t.Helper()
	h, err := NewHandler(Options{Session: s, Glyphs: gamedata.MustLoadGlyphs(), Logger: quiet})
	require.NoError(t, err)
	return h
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

// failingSession answers every world call with err.
type failingSession struct {
	*game.Session
	err error
}

func (f failingSession) Move(context.Context, world.Direction) (world.MoveOutcome, world.Snapshot, error) {
	return world.MoveOutcome{}, world.Snapshot{}, f.err
}

func (f failingSession) Interact(context.Context, world.Direction) (world.InteractOutcome, world.Snapshot, error) {
	return world.InteractOutcome{}, world.Snapshot{}, f.err
}

func (f failingSession) Snapshot(context.Context) (world.Snapshot, error) {
	return world.Snapshot{}, f.err
}

func TestNewHandlerRequiresDependencies(t *testing.T) {
	_, err := NewHandler(Options{Glyphs: gamedata.MustLoadGlyphs()})
	assert.Error(t, err)
	_, err = NewHandler(Options{Session: newTestSession(t)})
	assert.Error(t, err)
}

func TestIndex(t *testing.T) {
	h := newTestHandler(t, newTestSession(t))

	rec := get(t, h, "/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<h1>RAT.HTML</h1>")
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))

	assert.Equal(t, http.StatusNotFound, get(t, h, "/nope").Code)
}

func TestMoveRoutes(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/move_up", "turn 1, at (5,4): moved up from (5,5) to (5,4)"},
		{"/move_down", "turn 1, at (5,6): moved down from (5,5) to (5,6)"},
		{"/move_left", "turn 1, at (4,5): moved left from (5,5) to (4,5)"},
		{"/move_right", "turn 1, at (6,5): moved right from (5,5) to (6,5)"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			h := newTestHandler(t, newTestSession(t))
			rec := get(t, h, tt.path)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
			body := rec.Body.String()
			assert.True(t, strings.HasPrefix(body, `<div id="game-target">`))
			assert.Contains(t, body, `<p id="status">`+tt.want+`</p>`)
		})
	}
}

func TestMoveIntoWall(t *testing.T) {
	h := newTestHandler(t, newTestSession(t))
	for range 4 {
		require.Equal(t, http.StatusOK, get(t, h, "/move_left").Code)
	}

	rec := get(t, h, "/move_left")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "turn 4, at (1,5): blocked left at (1,5): obstacle")
}

func TestMoveRequiresGet(t *testing.T) {
	h := newTestHandler(t, newTestSession(t))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/move_up", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestInteractRoute(t *testing.T) {
	h := newTestHandler(t, newTestSession(t))
	rec := get(t, h, "/interact_up")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "turn 0, at (5,5): nothing at (5,4)")
}

func TestState(t *testing.T) {
	s := newTestSession(t)
	h := newTestHandler(t, s)
	get(t, h, "/move_right")

	rec := get(t, h, "/state")
	require.Equal(t, http.StatusOK, rec.Code)
	var v stateView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))

	assert.Equal(t, s.GameID(), v.GameID)
	assert.Equal(t, 10, v.Size)
	assert.Equal(t, 1, v.Turn)
	assert.Equal(t, world.Coord{X: 6, Y: 5}, v.Player)
	assert.Equal(t, world.Coord{}, v.Origin)
	require.Len(t, v.Rows, 10)
	assert.Equal(t, "##########", v.Rows[0])
	assert.Equal(t, " .....@.. ", v.Rows[5], "side cells are empty")
	assert.Equal(t, "##########", v.Rows[9])
}

func TestNewGameResets(t *testing.T) {
	s := newTestSession(t)
	h := newTestHandler(t, s)
	first := s.GameID()
	get(t, h, "/move_up")

	rec := get(t, h, "/new_game")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "turn 0, at (5,5): a new level")
	assert.NotEqual(t, first, s.GameID())
}

func TestUnavailableWorld(t *testing.T) {
	h := newTestHandler(t, failingSession{
		Session: newTestSession(t),
		err:     fmt.Errorf("session.move: %w", game.ErrLockUnavailable),
	})

	rec := get(t, h, "/move_right")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<h1>Major error when pressing right</h1>")
	assert.Contains(t, body, game.ErrLockUnavailable.Error())

	rec = get(t, h, "/interact_left")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "Major error when interacting left")

	rec = get(t, h, "/state")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"error"`)
}

func TestInvariantViolation(t *testing.T) {
	err := fmt.Errorf("session.move: %w", &world.InvariantError{Op: "world.move", Detail: "no player"})
	h := newTestHandler(t, failingSession{Session: newTestSession(t), err: err})

	rec := get(t, h, "/move_down")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Major error when pressing down")

	// The server keeps answering.
	assert.Equal(t, http.StatusOK, get(t, h, "/healthz").Code)
}

func TestHealthz(t *testing.T) {
	s := newTestSession(t)
	rec := get(t, newTestHandler(t, s), "/healthz")

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, "ready", body["state"])
	assert.Equal(t, s.GameID(), body["game_id"])
}

func TestStaticFiles(t *testing.T) {
	h := newTestHandler(t, newTestSession(t))

	rec := get(t, h, "/static/css/rat.css")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), ".board")

	rec = get(t, h, "/static/js/rat.js")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "htmx:beforeSwap")
}

func readMessage(t *testing.T, conn *websocket.Conn) wsMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var msg wsMessage
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestWebsocketFeed(t *testing.T) {
	s := newTestSession(t)
	srv := httptest.NewServer(newTestHandler(t, s))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()

	msg := readMessage(t, conn)
	require.Equal(t, "state", msg.Type)
	assert.Equal(t, "snapshot", msg.Event)
	require.NotNil(t, msg.State)
	assert.Equal(t, world.Coord{X: 5, Y: 5}, msg.State.Player)
	assert.Equal(t, s.GameID(), msg.State.GameID)

	// A move made over plain HTTP reaches the feed.
	resp, err := http.Get(srv.URL + "/move_right")
	require.NoError(t, err)
	resp.Body.Close()

	msg = readMessage(t, conn)
	assert.Equal(t, "move", msg.Event)
	require.NotNil(t, msg.State)
	assert.Equal(t, world.Coord{X: 6, Y: 5}, msg.State.Player)

	// Commands over the socket: the state update comes first, then the
	// outcome for this client.
	require.NoError(t, conn.WriteJSON(wsCommand{Action: "move", Direction: "down"}))
	msg = readMessage(t, conn)
	assert.Equal(t, "state", msg.Type)
	assert.Equal(t, world.Coord{X: 6, Y: 6}, msg.State.Player)
	msg = readMessage(t, conn)
	assert.Equal(t, "outcome", msg.Type)
	assert.Equal(t, "moved down from (6,5) to (6,6)", msg.Outcome)

	require.NoError(t, conn.WriteJSON(wsCommand{Action: "move", Direction: "sideways"}))
	msg = readMessage(t, conn)
	assert.Equal(t, "error", msg.Type)

	require.NoError(t, conn.WriteJSON(wsCommand{Action: "dance", Direction: "up"}))
	msg = readMessage(t, conn)
	assert.Equal(t, "error", msg.Type)
	assert.Contains(t, msg.Error, "dance")

	require.NoError(t, conn.WriteJSON(wsCommand{Action: "new_game"}))
	msg = readMessage(t, conn)
	assert.Equal(t, "new_game", msg.Event)
	assert.Equal(t, world.Coord{X: 5, Y: 5}, msg.State.Player)
	msg = readMessage(t, conn)
	assert.Equal(t, "outcome", msg.Type)
}
