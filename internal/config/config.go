// Package config loads server configuration from defaults, an optional YAML
// file, optional .env files and the process environment, in that order of
// increasing precedence
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
	"gopkg.in/yaml.v3"
)

// Storage backends
const (
	StorageMemory = "memory"
	StorageRedis  = "redis"
	StorageSQLite = "sqlite"
)

// ErrInvalidConfig is wrapped by every validation failure
var ErrInvalidConfig = errors.New("invalid config")

// Config is the complete server configuration
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Game    GameConfig    `yaml:"game"`
	Auth    AuthConfig    `yaml:"auth"`
	Log     LogConfig     `yaml:"log"`
}

type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"` // How long open requests get to drain
}

type StorageConfig struct {
	Type       string `yaml:"type"`
	RedisURL   string `yaml:"redis_url"`
	SQLitePath string `yaml:"sqlite_path"`
}

type GameConfig struct {
	Rows  int `yaml:"rows"`
	Cols  int `yaml:"cols"`
	Moves int `yaml:"moves"`
}

type AuthConfig struct {
	Secret   string        `yaml:"secret"`
	TokenTTL time.Duration `yaml:"token_ttl"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// Default returns the configuration used when nothing overrides it
func Default() Config {
	return Config{
		Server:  ServerConfig{Port: 8080, ShutdownTimeout: 15 * time.Second},
		Storage: StorageConfig{Type: StorageMemory, SQLitePath: "data/courgette.db"},
		Game:    GameConfig{Rows: 8, Cols: 8, Moves: 30},
		Auth:    AuthConfig{TokenTTL: 24 * time.Hour},
		Log:     LogConfig{Level: "info"},
	}
}

// Load builds a validated Config. path may be empty, in which case
// COURGETTE_CONFIG is consulted; a missing YAML or .env file is not an error.
// With no envFiles, ".env" in the working directory is tried.
func Load(path string, envFiles ...string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("COURGETTE_CONFIG")
	}
	if path != "" {
		if err := cfg.mergeYAML(path); err != nil {
			return Config{}, err
		}
	}

	dotenv, err := readDotenv(envFiles...)
	if err != nil {
		return Config{}, err
	}

	lookup := func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}
	if err := cfg.applyEnv(lookup); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// mergeYAML overlays the fields present in a YAML file onto cfg
func (c *Config) mergeYAML(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func readDotenv(files ...string) (map[string]string, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	merged := make(map[string]string)
	for _, f := range files {
		values, err := godotenv.Read(f)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("read env file %s: %w", f, err)
		}
		// Earlier files win, matching godotenv.Load
		for k, v := range values {
			if _, ok := merged[k]; !ok {
				merged[k] = v
			}
		}
	}
	return merged, nil
}

// applyEnv overrides fields from environment variables
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) error {
		v, ok := lookup(key)
		if !ok || v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not a number", ErrInvalidConfig, key, v)
		}
		*dst = n
		return nil
	}

	str("HOST", &c.Server.Host)
	str("STORAGE_TYPE", &c.Storage.Type)
	str("REDIS_URL", &c.Storage.RedisURL)
	str("SQLITE_PATH", &c.Storage.SQLitePath)
	str("AUTH_SECRET", &c.Auth.Secret)
	str("LOG_LEVEL", &c.Log.Level)

	for key, dst := range map[string]*int{
		"PORT":       &c.Server.Port,
		"GAME_ROWS":  &c.Game.Rows,
		"GAME_COLS":  &c.Game.Cols,
		"GAME_MOVES": &c.Game.Moves,
	} {
		if err := num(key, dst); err != nil {
			return err
		}
	}

	for key, dst := range map[string]*time.Duration{
		"AUTH_TOKEN_TTL":   &c.Auth.TokenTTL,
		"SHUTDOWN_TIMEOUT": &c.Server.ShutdownTimeout,
	} {
		v, ok := lookup(key)
		if !ok || v == "" {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q: %v", ErrInvalidConfig, key, v, err)
		}
		*dst = d
	}
	return nil
}

// Validate rejects configurations the server cannot start with
func (c Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: port %d out of range", ErrInvalidConfig, c.Server.Port)
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("%w: shutdown_timeout must be positive", ErrInvalidConfig)
	}

	switch c.Storage.Type {
	case StorageMemory:
	case StorageRedis:
		if c.Storage.RedisURL == "" {
			return fmt.Errorf("%w: redis_url required for redis storage", ErrInvalidConfig)
		}
	case StorageSQLite:
		if c.Storage.SQLitePath == "" {
			return fmt.Errorf("%w: sqlite_path required for sqlite storage", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown storage type %q", ErrInvalidConfig, c.Storage.Type)
	}

	if c.Game.Rows < 3 || c.Game.Cols < 3 {
		return fmt.Errorf("%w: board must be at least 3x3, got %dx%d", ErrInvalidConfig, c.Game.Rows, c.Game.Cols)
	}
	if c.Game.Moves < 1 {
		return fmt.Errorf("%w: moves must be positive", ErrInvalidConfig)
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("%w: token_ttl must be positive", ErrInvalidConfig)
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// Addr is the listen address
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// SlogLevel parses the configured log level
func (c Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(c.Log.Level))); err != nil {
		return 0, fmt.Errorf("%w: log level %q", ErrInvalidConfig, c.Log.Level)
	}
	return level, nil
}
