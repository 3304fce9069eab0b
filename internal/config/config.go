// Package config loads server settings from YAML with environment overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rngking/rathttp/internal/game"
)

type Config struct {
	Server    ServerConfig    `yaml:"server" json:"server"`
	World     WorldConfig     `yaml:"world" json:"world"`
	Render    RenderConfig    `yaml:"render" json:"render"`
	Telemetry TelemetryConfig `yaml:"telemetry" json:"telemetry"`
}

type ServerConfig struct {
	Addr            string `yaml:"addr" json:"addr"`
	StaticDir       string `yaml:"static_dir" json:"static_dir"`
	DevStatic       bool   `yaml:"dev_static" json:"dev_static"`
	ShutdownSeconds int    `yaml:"shutdown_seconds" json:"shutdown_seconds"`
}

type WorldConfig struct {
	Size     int    `yaml:"size" json:"size"`
	Layout   string `yaml:"layout" json:"layout"`
	Seed     int64  `yaml:"seed" json:"seed"`
	Monsters int    `yaml:"monsters" json:"monsters"`
	Items    int    `yaml:"items" json:"items"`
}

type RenderConfig struct {
	// GlyphFile optionally replaces the embedded glyph table.
	GlyphFile string `yaml:"glyph_file" json:"glyph_file"`
	CellSize  int    `yaml:"cell_size" json:"cell_size"`
}

type TelemetryConfig struct {
	Enabled     bool   `yaml:"enabled" json:"enabled"`
	ServiceName string `yaml:"service_name" json:"service_name"`
}

func (s *ServerConfig) ApplyDefaults() {
	if s.Addr == "" {
		s.Addr = "127.0.0.1:3000"
	}
	if s.StaticDir == "" {
		s.StaticDir = "static"
	}
	if s.ShutdownSeconds == 0 {
		s.ShutdownSeconds = 10
	}
}

func (w *WorldConfig) ApplyDefaults() {
	if w.Size == 0 {
		w.Size = 50
	}
	if w.Layout == "" {
		w.Layout = string(game.LayoutRoom)
	}
}

func (r *RenderConfig) ApplyDefaults() {
	if r.CellSize == 0 {
		r.CellSize = 15
	}
}

func (t *TelemetryConfig) ApplyDefaults() {
	if t.ServiceName == "" {
		t.ServiceName = "rathttp"
	}
}

func (c *Config) ApplyDefaults() {
	c.Server.ApplyDefaults()
	c.World.ApplyDefaults()
	c.Render.ApplyDefaults()
	c.Telemetry.ApplyDefaults()
}

// Game converts the world section into a game.Config.
func (c *Config) Game() game.Config {
	return game.Config{
		Size:     c.World.Size,
		Layout:   game.Layout(c.World.Layout),
		Seed:     c.World.Seed,
		Monsters: c.World.Monsters,
		Items:    c.World.Items,
	}
}

// Load reads the YAML file at path, applies environment overrides and then
// defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	var r Config
	b, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(b, &r); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	if err := r.applyEnv(os.Getenv); err != nil {
		return nil, err
	}
	r.ApplyDefaults()
	if err := r.Game().Validate(); err != nil {
		return nil, fmt.Errorf("world: %w", err)
	}
	return &r, nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	if v := strings.TrimSpace(getenv("RAT_ADDR")); v != "" {
		c.Server.Addr = v
	} else if port := strings.TrimSpace(getenv("PORT")); port != "" {
		c.Server.Addr = ":" + port
	}
	if v := strings.TrimSpace(getenv("RAT_LAYOUT")); v != "" {
		c.World.Layout = strings.ToLower(v)
	}
	if v := strings.TrimSpace(getenv("RAT_WORLD_SIZE")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("RAT_WORLD_SIZE: %w", err)
		}
		c.World.Size = n
	}
	if v := strings.TrimSpace(getenv("RAT_SEED")); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("RAT_SEED: %w", err)
		}
		c.World.Seed = n
	}
	if v, ok := envBool(getenv("RAT_DEV_STATIC")); ok {
		c.Server.DevStatic = v
	}
	if v, ok := envBool(getenv("RAT_TELEMETRY")); ok {
		c.Telemetry.Enabled = v
	}
	return nil
}

func envBool(v string) (value, ok bool) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes":
		return true, true
	case "0", "false", "no":
		return false, true
	default:
		return false, false
	}
}
