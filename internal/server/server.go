// Package server exposes a game session over HTTP. Handlers only translate
// requests into session calls and render the results.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/a-h/templ"

	"github.com/rngking/rathttp/internal/game"
	"github.com/rngking/rathttp/internal/gamedata"
	"github.com/rngking/rathttp/internal/httpmw"
	"github.com/rngking/rathttp/internal/render"
	"github.com/rngking/rathttp/internal/world"
	staticfiles "github.com/rngking/rathttp/static"
)

// Session is the part of *game.Session the handlers use.
type Session interface {
	NewGame(ctx context.Context) (world.Snapshot, error)
	Move(ctx context.Context, d world.Direction) (world.MoveOutcome, world.Snapshot, error)
	Interact(ctx context.Context, d world.Direction) (world.InteractOutcome, world.Snapshot, error)
	Snapshot(ctx context.Context) (world.Snapshot, error)
	GameID() string
	State() game.State
	Subscribe(fn func(game.Update)) (unsubscribe func())
}

type Options struct {
	Session       Session
	Glyphs        *gamedata.GlyphSet
	CellSize      int
	StaticDir     string
	UseDiskStatic bool
	Logger        *log.Logger
}

type handler struct {
	session  Session
	glyphs   *gamedata.GlyphSet
	cellSize int
	logger   *log.Logger
}

// NewHandler builds the routed, middleware-wrapped handler.
func NewHandler(opts Options) (http.Handler, error) {
	if opts.Session == nil {
		return nil, errors.New("session is required")
	}
	if opts.Glyphs == nil {
		return nil, errors.New("glyphs are required")
	}
	if strings.TrimSpace(opts.StaticDir) == "" {
		opts.StaticDir = "static"
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}

	h := &handler{
		session:  opts.Session,
		glyphs:   opts.Glyphs,
		cellSize: opts.CellSize,
		logger:   opts.Logger,
	}

	mux := http.NewServeMux()

	staticHandler := http.FileServer(http.FS(staticfiles.EmbeddedFS()))
	if opts.UseDiskStatic {
		staticHandler = http.FileServer(http.Dir(opts.StaticDir))
	}
	mux.Handle("/static/", http.StripPrefix("/static/", staticHandler))

	mux.Handle("GET /{$}", templ.Handler(render.IndexPage()))
	mux.HandleFunc("GET /new_game", h.newGame)
	for _, d := range world.Directions {
		mux.HandleFunc("GET /move_"+d.String(), h.move(d))
		mux.HandleFunc("GET /interact_"+d.String(), h.interact(d))
	}
	mux.HandleFunc("GET /state", h.state)
	mux.HandleFunc("GET /ws", h.serveWS)
	mux.HandleFunc("GET /healthz", h.healthz)

	return httpmw.Chain(
		mux,
		httpmw.WithAccessLog(opts.Logger),
		httpmw.WithRequestID,
		httpmw.WithRecover(opts.Logger),
	), nil
}

func (h *handler) newGame(w http.ResponseWriter, r *http.Request) {
	snap, err := h.session.NewGame(r.Context())
	if err != nil {
		h.fail(w, r, "starting a new game", err)
		return
	}
	h.renderGame(w, r, snap, "a new level")
}

func (h *handler) move(d world.Direction) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, snap, err := h.session.Move(r.Context(), d)
		if err != nil {
			h.fail(w, r, "pressing "+d.String(), err)
			return
		}
		h.renderGame(w, r, snap, out.String())
	}
}

func (h *handler) interact(d world.Direction) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, snap, err := h.session.Interact(r.Context(), d)
		if err != nil {
			h.fail(w, r, "interacting "+d.String(), err)
			return
		}
		h.renderGame(w, r, snap, out.String())
	}
}

func (h *handler) state(w http.ResponseWriter, r *http.Request) {
	snap, err := h.session.Snapshot(r.Context())
	if err != nil {
		h.logError(r, "state", err)
		writeJSON(w, statusFor(err), map[string]any{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, newStateView(h.session.GameID(), snap, h.glyphs))
}

func (h *handler) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":      true,
		"service": "rathttp",
		"state":   h.session.State().String(),
		"game_id": h.session.GameID(),
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *handler) renderGame(w http.ResponseWriter, r *http.Request, snap world.Snapshot, message string) {
	writeHTML(w, r, http.StatusOK, render.Game(render.View{
		Snapshot: snap,
		Glyphs:   h.glyphs,
		CellSize: h.cellSize,
		Message:  message,
	}))
}

// fail answers with the error fragment. A poisoned session is 503 since a
// new game brings it back; anything else is 500.
func (h *handler) fail(w http.ResponseWriter, r *http.Request, action string, err error) {
	h.logError(r, action, err)
	writeHTML(w, r, statusFor(err), render.ErrorFragment(action, err))
}

func (h *handler) logError(r *http.Request, action string, err error) {
	h.logger.Printf("request %s: %s: %v", httpmw.RequestIDFromContext(r.Context()), action, err)
}

func statusFor(err error) int {
	if errors.Is(err, game.ErrLockUnavailable) {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func writeHTML(w http.ResponseWriter, r *http.Request, code int, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	_ = c.Render(r.Context(), w)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
