package factory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/mcoot/courgette-crush/internal/config"
	"github.com/mcoot/courgette-crush/internal/dependencies/clock"
	"github.com/mcoot/courgette-crush/internal/dependencies/random"
	"github.com/mcoot/courgette-crush/internal/services/auth"
	"github.com/mcoot/courgette-crush/internal/services/bot"
	"github.com/mcoot/courgette-crush/internal/services/game"
	"github.com/mcoot/courgette-crush/internal/storage"
	"github.com/mcoot/courgette-crush/internal/storage/memory"
	redisstorage "github.com/mcoot/courgette-crush/internal/storage/redis"
	"github.com/mcoot/courgette-crush/internal/storage/sqlite"
	"github.com/mcoot/courgette-crush/internal/web/sse"
)

// Storage type constants
const (
	StorageTypeMemory = config.StorageMemory
	StorageTypeRedis  = config.StorageRedis
	StorageTypeSQLite = config.StorageSQLite
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	GameController *game.Controller
	AuthService    *auth.Service
	BotService     *bot.Service
	HubManager     *sse.HubManager
	Broadcaster    *sse.Broadcaster
}

// Config holds configuration for the application factory
type Config struct {
	// AuthConfig holds configuration for the auth service (optional)
	// If zero value, defaults to auth.DefaultConfig()
	AuthConfig auth.Config
	// GameConfig sets board size and move budget (optional)
	// Zero fields fall back to game.DefaultConfig()
	GameConfig game.Config
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory", "redis" or "sqlite")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// SQLitePath is the database file (required if StorageType is "sqlite")
	SQLitePath string
}

// ConfigFrom maps loaded server configuration onto factory configuration
func ConfigFrom(cfg config.Config, logger *slog.Logger) Config {
	fc := Config{
		AuthConfig: auth.Config{
			Secret:          cfg.Auth.Secret,
			SessionDuration: cfg.Auth.TokenTTL,
		},
		GameConfig: game.Config{
			Rows:  cfg.Game.Rows,
			Cols:  cfg.Game.Cols,
			Moves: cfg.Game.Moves,
		},
		Logger:      logger,
		StorageType: cfg.Storage.Type,
		SQLitePath:  cfg.Storage.SQLitePath,
	}
	if cfg.Storage.Type == StorageTypeRedis {
		rc := redisstorage.DefaultConfig()
		rc.URL = cfg.Storage.RedisURL
		fc.RedisConfig = &rc
	}
	return fc
}

// New creates a new application with all dependencies wired
func New(ctx context.Context, cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	store, err := openStorage(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	// Create external dependencies
	clk := clock.New()
	rnd := random.New()

	// Use default auth config if not provided
	authCfg := cfg.AuthConfig
	if authCfg.SessionDuration == 0 {
		authCfg.SessionDuration = auth.DefaultConfig().SessionDuration
	}

	return newWithDependencies(store, clk, rnd, authCfg, cfg.GameConfig, logger), nil
}

func openStorage(ctx context.Context, cfg Config, logger *slog.Logger) (storage.Storage, error) {
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		return memory.New(), nil
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		return redisstorage.New(*cfg.RedisConfig)
	case StorageTypeSQLite:
		if cfg.SQLitePath == "" {
			return nil, errors.New("SQLitePath required when StorageType is sqlite")
		}
		return sqlite.Open(ctx, cfg.SQLitePath, logger)
	default:
		return nil, fmt.Errorf("invalid StorageType %q: must be 'memory', 'redis' or 'sqlite'", storageType)
	}
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	store storage.Storage,
	clk clock.Clock,
	rnd random.Random,
	authCfg auth.Config,
	gameCfg game.Config,
	logger *slog.Logger,
) *App {
	if gameCfg.Rows == 0 && gameCfg.Cols == 0 && gameCfg.Moves == 0 {
		gameCfg = game.DefaultConfig()
	}

	gameController := game.NewController(store, clk, rnd, gameCfg, logger)
	authService := auth.New(store, clk, authCfg)
	botService := bot.NewService(gameController, bot.DefaultStrategies(rnd, gameCfg.Cascade, logger), logger)
	hubManager := sse.NewHubManager(logger)

	return &App{
		Storage:        store,
		Clock:          clk,
		Random:         rnd,
		GameController: gameController,
		AuthService:    authService,
		BotService:     botService,
		HubManager:     hubManager,
		Broadcaster:    sse.NewBroadcaster(hubManager, logger),
	}
}

// Close releases the storage backend, if it holds any resources
func (a *App) Close() error {
	if closer, ok := a.Storage.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
