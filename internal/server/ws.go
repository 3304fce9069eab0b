package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rngking/rathttp/internal/game"
	"github.com/rngking/rathttp/internal/world"
)

const (
	writeWait      = 10 * time.Second
	maxMessageSize = 512
	sendBuffer     = 32
)

var upgrader = websocket.Upgrader{
	// The feed is read-only state plus the same moves the HTTP routes allow.
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// wsMessage is sent to feed clients.
type wsMessage struct {
	Type    string     `json:"type"` // state, outcome or error
	Event   string     `json:"event,omitempty"`
	State   *stateView `json:"state,omitempty"`
	Outcome string     `json:"outcome,omitempty"`
	Error   string     `json:"error,omitempty"`
}

// wsCommand is sent by feed clients.
type wsCommand struct {
	Action    string `json:"action"` // move, interact or new_game
	Direction string `json:"direction,omitempty"`
}

// wsClient wraps a connection with a buffered outgoing queue. A client that
// falls a full buffer behind is dropped.
type wsClient struct {
	conn *websocket.Conn

	mu     sync.Mutex
	closed bool
	send   chan []byte
}

func newWSClient(conn *websocket.Conn) *wsClient {
	return &wsClient{conn: conn, send: make(chan []byte, sendBuffer)}
}

func (c *wsClient) enqueue(msg wsMessage) {
	b, err := json.Marshal(msg)
	if err != nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- b:
	default:
		c.closed = true
		close(c.send)
	}
}

func (c *wsClient) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

func (c *wsClient) writePump() {
	defer c.conn.Close()
	for msg := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

// serveWS streams a state message on connect and after every change to the
// session, and applies commands sent by the client.
func (h *handler) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Printf("websocket upgrade: %v", err)
		return
	}
	conn.SetReadLimit(maxMessageSize)

	c := newWSClient(conn)
	go c.writePump()

	unsubscribe := h.session.Subscribe(func(u game.Update) {
		c.enqueue(h.stateMessage(u.Event, u.GameID, u.Snapshot))
	})
	defer func() {
		unsubscribe()
		c.close()
	}()

	ctx := r.Context()
	snap, err := h.session.Snapshot(ctx)
	if err != nil {
		c.enqueue(wsMessage{Type: "error", Error: err.Error()})
	} else {
		c.enqueue(h.stateMessage("snapshot", h.session.GameID(), snap))
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Printf("websocket read: %v", err)
			}
			return
		}
		var cmd wsCommand
		if err := json.Unmarshal(data, &cmd); err != nil {
			c.enqueue(wsMessage{Type: "error", Error: fmt.Sprintf("bad command: %v", err)})
			continue
		}
		c.enqueue(h.apply(ctx, cmd))
	}
}

// apply runs one client command. State changes reach the client through the
// subscription; the reply only carries the outcome.
func (h *handler) apply(ctx context.Context, cmd wsCommand) wsMessage {
	if cmd.Action == "new_game" {
		if _, err := h.session.NewGame(ctx); err != nil {
			return wsMessage{Type: "error", Error: err.Error()}
		}
		return wsMessage{Type: "outcome", Outcome: "a new level"}
	}

	d, err := world.ParseDirection(cmd.Direction)
	if err != nil {
		return wsMessage{Type: "error", Error: err.Error()}
	}
	var outcome fmt.Stringer
	switch cmd.Action {
	case "move":
		outcome, _, err = h.session.Move(ctx, d)
	case "interact":
		outcome, _, err = h.session.Interact(ctx, d)
	default:
		return wsMessage{Type: "error", Error: fmt.Sprintf("unknown action %q", cmd.Action)}
	}
	if err != nil {
		return wsMessage{Type: "error", Error: err.Error()}
	}
	return wsMessage{Type: "outcome", Outcome: outcome.String()}
}

func (h *handler) stateMessage(event, gameID string, snap world.Snapshot) wsMessage {
	v := newStateView(gameID, snap, h.glyphs)
	return wsMessage{Type: "state", Event: event, State: &v}
}
