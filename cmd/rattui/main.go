// Package main plays the game in the terminal.
package main

import (
	"context"
	"flag"
	"io"
	"log"

	"github.com/joho/godotenv"

	"github.com/rngking/rathttp/internal/config"
	"github.com/rngking/rathttp/internal/game"
	"github.com/rngking/rathttp/internal/gamedata"
	"github.com/rngking/rathttp/internal/telemetry"
)

func main() {
	configPath := flag.String("config", "rat.yml", "path to the YAML config file")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Printf("Note: .env file not loaded: %v", err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx := context.Background()

	if cfg.Telemetry.Enabled {
		telemetry.ConfigureHoneycomb()
		shutdown, err := telemetry.Setup(ctx, cfg.Telemetry.ServiceName+"-tui")
		if err != nil {
			log.Printf("Warning: telemetry setup failed: %v", err)
			log.Printf("Game will run without observability")
		} else {
			defer func() {
				if err := shutdown(ctx); err != nil {
					log.Printf("Error shutting down telemetry: %v", err)
				}
			}()
		}
	}

	// The session logs to stderr, which would draw over the screen.
	session, err := game.NewSession(ctx, cfg.Game(), game.WithLogger(log.New(io.Discard, "", 0)))
	if err != nil {
		log.Fatalf("Failed to initialize game: %v", err)
	}

	t, err := game.NewTerminal(session, gamedata.MustLoadGlyphs())
	if err != nil {
		log.Fatalf("Failed to open terminal: %v", err)
	}

	if err := t.Run(ctx); err != nil {
		log.Fatalf("Game error: %v", err)
	}
}
