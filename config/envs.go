package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// Front-ends selectable with SNAKE_UI / -ui.
const (
	UITerminal = "terminal"
	UIDesktop  = "desktop"
	UIWeb      = "web"
)

// Config holds the application's configuration values.
type Config struct {
	UI string // Front-end to run

	ViewportWidth  int // Window or canvas width in pixels
	ViewportHeight int // Window or canvas height in pixels
	CellSize       int // Pixels per grid cell

	TickInterval time.Duration // Time between simulation steps
	StartX       int           // Spawn column of the snake
	StartY       int           // Spawn row of the snake
	Seed         uint64        // Food RNG seed, 0 picks one from the clock
	FoodPolicy   string        // "single" or "avoid"

	WebAddr string // Listen address for the web front-end
	Audio   bool   // Play sound cues
	LogFile string // Log destination in terminal mode
}

// Logger receives notes produced while loading.
type Logger interface {
	Info(string)
}

// Load builds a Config from, in increasing priority: built-in defaults, a
// .env file (SNAKE_ENV_FILE, default ".env"), environment variables and
// command-line flags in args.
func Load(args []string, logger Logger) (Config, error) {
	envFile := getEnv("SNAKE_ENV_FILE", ".env")
	if err := godotenv.Load(envFile); err != nil {
		logger.Info(fmt.Sprintf("%s not loaded: %v", envFile, err))
	}

	cfg := Config{}
	var errs []error
	intEnv := func(key string, def int) int {
		v, err := getEnvAsInt(key, def)
		if err != nil {
			errs = append(errs, err)
		}
		return v
	}

	cfg.UI = getEnv("SNAKE_UI", UITerminal)
	cfg.ViewportWidth = intEnv("SNAKE_VIEWPORT_WIDTH", 800)
	cfg.ViewportHeight = intEnv("SNAKE_VIEWPORT_HEIGHT", 600)
	cfg.CellSize = intEnv("SNAKE_CELL_SIZE", 20)
	tickMs := intEnv("SNAKE_TICK_MS", 100)
	cfg.StartX = intEnv("SNAKE_START_X", 10)
	cfg.StartY = intEnv("SNAKE_START_Y", 10)
	seed := intEnv("SNAKE_SEED", 0)
	cfg.FoodPolicy = getEnv("SNAKE_FOOD_POLICY", "single")
	cfg.WebAddr = getEnv("SNAKE_WEB_ADDR", ":8080")
	cfg.LogFile = getEnv("SNAKE_LOG_FILE", "snake.log")
	audio, err := getEnvAsBool("SNAKE_AUDIO", false)
	if err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}

	fs := flag.NewFlagSet("snake", flag.ContinueOnError)
	fs.StringVar(&cfg.UI, "ui", cfg.UI, "front-end: terminal, desktop or web")
	fs.IntVar(&tickMs, "speed", tickMs, "Game speed in milliseconds (lower = faster)")
	fs.IntVar(&cfg.ViewportWidth, "width", cfg.ViewportWidth, "viewport width in pixels")
	fs.IntVar(&cfg.ViewportHeight, "height", cfg.ViewportHeight, "viewport height in pixels")
	fs.IntVar(&cfg.CellSize, "cell", cfg.CellSize, "cell size in pixels")
	fs.IntVar(&cfg.StartX, "start-x", cfg.StartX, "spawn column")
	fs.IntVar(&cfg.StartY, "start-y", cfg.StartY, "spawn row")
	fs.IntVar(&seed, "seed", seed, "food RNG seed (0 = time based)")
	fs.StringVar(&cfg.FoodPolicy, "food", cfg.FoodPolicy, "food placement: single or avoid")
	fs.StringVar(&cfg.WebAddr, "addr", cfg.WebAddr, "web listen address")
	fs.BoolVar(&audio, "audio", audio, "play sound cues")
	fs.StringVar(&cfg.LogFile, "log", cfg.LogFile, "log file used by the terminal front-end")
	if err := fs.Parse(args); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	if seed < 0 {
		return Config{}, fmt.Errorf("%w: seed must not be negative", ErrInvalidConfig)
	}
	cfg.Seed = uint64(seed)
	cfg.TickInterval = time.Duration(tickMs) * time.Millisecond
	cfg.Audio = audio
	cfg.UI = strings.ToLower(cfg.UI)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks ranges that no game could run with.
func (c Config) Validate() error {
	switch c.UI {
	case UITerminal, UIDesktop, UIWeb:
	default:
		return fmt.Errorf("%w: unknown ui %q", ErrInvalidConfig, c.UI)
	}
	if c.CellSize <= 0 {
		return fmt.Errorf("%w: cell size must be positive, got %d", ErrInvalidConfig, c.CellSize)
	}
	if c.ViewportWidth < c.CellSize || c.ViewportHeight < c.CellSize {
		return fmt.Errorf("%w: viewport %dx%d smaller than one %dpx cell",
			ErrInvalidConfig, c.ViewportWidth, c.ViewportHeight, c.CellSize)
	}
	if c.TickInterval <= 0 {
		return fmt.Errorf("%w: tick interval must be positive, got %s", ErrInvalidConfig, c.TickInterval)
	}
	if c.StartX < 0 || c.StartY < 0 {
		return fmt.Errorf("%w: start cell (%d,%d) is negative", ErrInvalidConfig, c.StartX, c.StartY)
	}
	switch strings.ToLower(c.FoodPolicy) {
	case "single", "avoid":
	default:
		return fmt.Errorf("%w: unknown food policy %q", ErrInvalidConfig, c.FoodPolicy)
	}
	return nil
}

// getEnv retrieves the value of an environment variable or def when unset.
func getEnv(key, def string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return def
}

// getEnvAsInt retrieves an environment variable as an integer.
func getEnvAsInt(key string, def int) (int, error) {
	valueStr, exists := os.LookupEnv(key)
	if !exists || valueStr == "" {
		return def, nil
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return def, fmt.Errorf("environment variable %s must be an integer: %w", key, err)
	}
	return value, nil
}

func getEnvAsBool(key string, def bool) (bool, error) {
	valueStr, exists := os.LookupEnv(key)
	if !exists || valueStr == "" {
		return def, nil
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return def, fmt.Errorf("environment variable %s must be a boolean: %w", key, err)
	}
	return value, nil
}
