// Package main serves the game over HTTP.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/rngking/rathttp/internal/config"
	"github.com/rngking/rathttp/internal/game"
	"github.com/rngking/rathttp/internal/gamedata"
	"github.com/rngking/rathttp/internal/server"
	"github.com/rngking/rathttp/internal/telemetry"
)

func main() {
	configPath := flag.String("config", "rat.yml", "path to the YAML config file")
	flag.Parse()

	// Not fatal: the variables may be set directly.
	if err := godotenv.Load(); err != nil {
		log.Printf("Note: .env file not loaded: %v", err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Telemetry.Enabled {
		telemetry.ConfigureHoneycomb()
		shutdown, err := telemetry.Setup(ctx, cfg.Telemetry.ServiceName)
		if err != nil {
			log.Printf("Warning: telemetry setup failed: %v", err)
		} else {
			defer func() {
				if err := shutdown(context.Background()); err != nil {
					log.Printf("Error shutting down telemetry: %v", err)
				}
			}()
		}
	}

	glyphs, err := loadGlyphs(cfg.Render.GlyphFile)
	if err != nil {
		log.Fatalf("load glyphs: %v", err)
	}

	session, err := game.NewSession(ctx, cfg.Game(), game.WithLogger(log.Default()))
	if err != nil {
		log.Fatalf("start session: %v", err)
	}

	handler, err := server.NewHandler(server.Options{
		Session:       session,
		Glyphs:        glyphs,
		CellSize:      cfg.Render.CellSize,
		StaticDir:     cfg.Server.StaticDir,
		UseDiskStatic: cfg.Server.DevStatic,
		Logger:        log.Default(),
	})
	if err != nil {
		log.Fatalf("build server: %v", err)
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Printf("listening on http://%s", cfg.Server.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("serve: %v", err)
		}
	case <-ctx.Done():
		log.Printf("graceful shutdown initiated")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownSeconds)*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}

func loadGlyphs(path string) (*gamedata.GlyphSet, error) {
	if path == "" {
		return gamedata.LoadGlyphs()
	}
	return gamedata.LoadGlyphsFrom(os.DirFS(filepath.Dir(path)), filepath.Base(path))
}
