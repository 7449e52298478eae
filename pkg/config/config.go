// Package config loads the toybox.yaml operator configuration.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/KDL-umass/Toybox/internal/logging"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file looked up when none is given.
const DefaultPath = "toybox.yaml"

// Engine kinds.
const (
	EngineMemory = "memory"
	EngineFile   = "file"
	EngineHTTP   = "http"
)

// Archive kinds.
const (
	ArchiveNone   = "none"
	ArchiveMemory = "memory"
	ArchiveRedis  = "redis"
	ArchiveSQLite = "sqlite"
)

// Config is the root of toybox.yaml.
type Config struct {
	Game    string        `yaml:"game" json:"game"`
	Engine  EngineConfig  `yaml:"engine" json:"engine"`
	Log     LogConfig     `yaml:"log" json:"log"`
	Archive ArchiveConfig `yaml:"archive" json:"archive"`
	Redis   RedisConfig   `yaml:"redis" json:"redis"`
	Metrics AddrConfig    `yaml:"metrics" json:"metrics"`
	HTTP    AddrConfig    `yaml:"http" json:"http"`
	Modes   ModesConfig   `yaml:"modes" json:"modes"`
}

// EngineConfig selects the engine handle.
type EngineConfig struct {
	Kind string `yaml:"kind" json:"kind"`
	// Path is the snapshot file for kind file.
	Path string `yaml:"path" json:"path"`
	// ConfigPath is an optional engine configuration file for kind file.
	ConfigPath string `yaml:"config_path" json:"config_path"`
	// URL is the server address for kind http.
	URL  string     `yaml:"url" json:"url"`
	Grid GridConfig `yaml:"grid" json:"grid"`
}

// GridConfig is the tile geometry answered by local engines.
// A zero cell size disables coordinate queries.
type GridConfig struct {
	CellW   int `yaml:"cell_w" json:"cell_w"`
	CellH   int `yaml:"cell_h" json:"cell_h"`
	OffsetX int `yaml:"offset_x" json:"offset_x"`
	OffsetY int `yaml:"offset_y" json:"offset_y"`
}

// LogConfig configures the application logger.
type LogConfig struct {
	Level string `yaml:"level" json:"level"`
}

// ArchiveConfig selects where commits are archived.
type ArchiveConfig struct {
	Kind string `yaml:"kind" json:"kind"`
	Path string `yaml:"path" json:"path"`
	Max  int    `yaml:"max" json:"max"`
}

// RedisConfig is shared by the redis archive and the distributed lock.
type RedisConfig struct {
	Addr     string `yaml:"addr" json:"addr"`
	Password string `yaml:"password" json:"password"`
	DB       int    `yaml:"db" json:"db"`
	Prefix   string `yaml:"prefix" json:"prefix"`
	// LockTTL is a Go duration string. An empty Addr disables locking.
	LockTTL string `yaml:"lock_ttl" json:"lock_ttl"`
	// LockWait bounds how long a session open waits for a lock held elsewhere.
	LockWait string `yaml:"lock_wait" json:"lock_wait"`
}

// AddrConfig is a listen address. Empty disables the listener.
type AddrConfig struct {
	Addr string `yaml:"addr" json:"addr"`
}

// ModesConfig holds fallback mode durations in frames.
type ModesConfig struct {
	JumpTime  int `yaml:"jump_time" json:"jump_time"`
	ChaseTime int `yaml:"chase_time" json:"chase_time"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Game:    "amidar",
		Engine:  EngineConfig{Kind: EngineFile, Path: "state.json"},
		Log:     LogConfig{Level: "info"},
		Archive: ArchiveConfig{Kind: ArchiveNone, Max: 100},
		Redis:   RedisConfig{Prefix: "toybox:", LockTTL: "30s", LockWait: "500ms"},
		HTTP:    AddrConfig{Addr: ":8080"},
	}
}

// Load reads a YAML or JSON (by extension) config over the defaults.
// A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}

	if strings.ToLower(filepath.Ext(path)) == ".json" {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	} else {
		// Default to YAML
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config %s: %w", filepath.Base(path), err)
	}
	return cfg, nil
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error
	if c.Game == "" {
		errs = append(errs, errors.New("game is required"))
	}

	switch c.Engine.Kind {
	case EngineMemory:
		if c.Engine.Path == "" {
			errs = append(errs, errors.New("engine.path is required for the memory engine seed"))
		}
	case EngineFile:
		if c.Engine.Path == "" {
			errs = append(errs, errors.New("engine.path is required for the file engine"))
		}
	case EngineHTTP:
		if c.Engine.URL == "" {
			errs = append(errs, errors.New("engine.url is required for the http engine"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown engine.kind %q", c.Engine.Kind))
	}
	if g := c.Engine.Grid; g.CellW < 0 || g.CellH < 0 || (g.CellW == 0) != (g.CellH == 0) {
		errs = append(errs, errors.New("engine.grid needs both cell sizes positive, or neither"))
	}

	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}

	switch c.Archive.Kind {
	case "", ArchiveNone, ArchiveMemory:
	case ArchiveSQLite:
		if c.Archive.Path == "" {
			errs = append(errs, errors.New("archive.path is required for the sqlite archive"))
		}
	case ArchiveRedis:
		if c.Redis.Addr == "" {
			errs = append(errs, errors.New("redis.addr is required for the redis archive"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown archive.kind %q", c.Archive.Kind))
	}
	if c.Archive.Max < 0 {
		errs = append(errs, errors.New("archive.max must not be negative"))
	}

	if _, err := c.Redis.TTL(); err != nil {
		errs = append(errs, fmt.Errorf("redis.lock_ttl: %w", err))
	}
	if _, err := c.Redis.Wait(); err != nil {
		errs = append(errs, fmt.Errorf("redis.lock_wait: %w", err))
	}
	if c.Modes.JumpTime < 0 || c.Modes.ChaseTime < 0 {
		errs = append(errs, errors.New("modes durations must not be negative"))
	}
	return errors.Join(errs...)
}

// TTL parses LockTTL. Empty means zero, which keeps the session default.
func (r RedisConfig) TTL() (time.Duration, error) {
	return parseDuration(r.LockTTL)
}

// Wait parses LockWait. Empty means zero, which keeps the session default.
func (r RedisConfig) Wait() (time.Duration, error) {
	return parseDuration(r.LockWait)
}

func parseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration %s", d)
	}
	return d, nil
}
