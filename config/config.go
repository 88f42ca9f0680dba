package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/gdamore/tcell/v2"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/lixenwraith/vi-replay/constants"
	"github.com/lixenwraith/vi-replay/timeline"
)

// EnvPrefix namespaces every environment override
const EnvPrefix = "VI_REPLAY_"

// ErrInvalid marks a configuration that failed validation
var ErrInvalid = errors.New("invalid config")

// Config holds settings shared by the player and the server
type Config struct {
	Period  time.Duration `yaml:"period" env:"PERIOD"`
	Palette []string      `yaml:"palette" env:"PALETTE" envSeparator:","`
	Audio   bool          `yaml:"audio" env:"AUDIO"`

	Debug     bool   `yaml:"debug" env:"DEBUG"`
	LogDir    string `yaml:"log_dir" env:"LOG_DIR"`
	LogLevel  string `yaml:"log_level" env:"LOG_LEVEL"`
	LogFormat string `yaml:"log_format" env:"LOG_FORMAT"`

	Listen    string `yaml:"listen" env:"LISTEN"`
	ReplayDir string `yaml:"replay_dir" env:"REPLAY_DIR"`
}

// Default returns the built-in configuration
func Default() Config {
	return Config{
		Period:    constants.DefaultPlaybackPeriod,
		Palette:   []string{"red", "green", "blue"},
		Audio:     true,
		LogDir:    "logs",
		LogLevel:  "info",
		LogFormat: "text",
		Listen:    ":8080",
		ReplayDir: "replays",
	}
}

// Load layers defaults, the YAML file at path, the dotenv file and the
// process environment, in that order; empty paths are skipped
func Load(path, envFile string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if envFile != "" {
		// Variables already present in the environment win over the file
		if err := godotenv.Load(envFile); err != nil {
			return cfg, fmt.Errorf("load env file: %w", err)
		}
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks ranges and resolves the palette
func (c Config) Validate() error {
	if c.Period < 0 {
		return fmt.Errorf("%w: negative period %v", ErrInvalid, c.Period)
	}
	if _, err := c.ColorPalette(); err != nil {
		return err
	}
	return nil
}

// ColorPalette resolves the configured color names
// The palette must name exactly PaletteSize colors
func (c Config) ColorPalette() (timeline.Palette, error) {
	var p timeline.Palette
	if len(c.Palette) != timeline.PaletteSize {
		return p, fmt.Errorf("%w: palette needs %d colors, got %d", ErrInvalid, timeline.PaletteSize, len(c.Palette))
	}
	for i, name := range c.Palette {
		color := tcell.GetColor(strings.TrimSpace(strings.ToLower(name)))
		if color == tcell.ColorDefault {
			return p, fmt.Errorf("%w: unknown color %q", ErrInvalid, name)
		}
		p[i] = color
	}
	return p, nil
}

// PlaybackPeriod returns the clock period, defaulting when unset
func (c Config) PlaybackPeriod() time.Duration {
	if c.Period <= 0 {
		return constants.DefaultPlaybackPeriod
	}
	return c.Period
}
