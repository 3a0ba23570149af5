package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	prettylog "sat-collisions.theprimeagen.com/pkg/pretty-log"
)

type StoreKind string

const (
	StoreNone   StoreKind = ""
	StoreSqlite StoreKind = "sqlite"
	StoreJSON   StoreKind = "json"
)

type Config struct {
	Scene     string
	StoreKind StoreKind
	StorePath string
	FPS       int
	Frames    int64
	Workers   int
	LogLevel  slog.Level
	Watch     bool
	GameSpeed float64
}

func Default() Config {
	return Config{
		Scene:     "scenes/demo.yaml",
		FPS:       60,
		Workers:   1,
		LogLevel:  slog.LevelInfo,
		GameSpeed: 1,
	}
}

// FrameTime is how long one tick should take at the configured FPS.
func (c Config) FrameTime() time.Duration {
	return time.Second / time.Duration(c.FPS)
}

// Load reads .env files (missing ones are fine) and then the environment.
func Load(files ...string) (Config, error) {
	for _, f := range files {
		err := godotenv.Load(f)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("loading %s: %w", f, err)
		}
	}
	return FromEnv(os.Getenv)
}

func FromEnv(getenv func(string) string) (Config, error) {
	c := Default()
	var err error

	if v := getenv("SAT_SCENE"); v != "" {
		c.Scene = v
	}

	if v := getenv("SAT_STORE"); v != "" {
		kind, path, ok := strings.Cut(v, ":")
		if !ok || path == "" {
			return c, fmt.Errorf("SAT_STORE=%q: want sqlite:<url> or json:<path>", v)
		}
		switch StoreKind(kind) {
		case StoreSqlite:
			c.StoreKind = StoreSqlite
		case StoreJSON:
			c.StoreKind = StoreJSON
		default:
			return c, fmt.Errorf("SAT_STORE=%q: unknown store %q", v, kind)
		}
		c.StorePath = path
	}

	if c.FPS, err = intVar(getenv, "SAT_FPS", c.FPS, 1); err != nil {
		return c, err
	}
	if c.Workers, err = intVar(getenv, "SAT_WORKERS", c.Workers, 1); err != nil {
		return c, err
	}

	frames, err := intVar(getenv, "SAT_FRAMES", 0, 0)
	if err != nil {
		return c, err
	}
	c.Frames = int64(frames)

	if v := getenv("SAT_GAME_SPEED"); v != "" {
		speed, err := strconv.ParseFloat(v, 64)
		if err != nil || speed < 0 {
			return c, fmt.Errorf("SAT_GAME_SPEED=%q: want a non-negative number", v)
		}
		c.GameSpeed = speed
	}

	if c.LogLevel, err = prettylog.ParseLevel(getenv("SAT_LOG_LEVEL")); err != nil {
		return c, fmt.Errorf("SAT_LOG_LEVEL: %w", err)
	}

	if v := getenv("SAT_WATCH"); v != "" {
		if c.Watch, err = strconv.ParseBool(v); err != nil {
			return c, fmt.Errorf("SAT_WATCH=%q: %w", v, err)
		}
	}

	return c, nil
}

func intVar(getenv func(string) string, key string, fallback, min int) (int, error) {
	v := getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback, fmt.Errorf("%s=%q: %w", key, v, err)
	}
	if n < min {
		return fallback, fmt.Errorf("%s=%d: must be at least %d", key, n, min)
	}
	return n, nil
}
