package factory

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/mcoot/trucogame/internal/config"
	"github.com/mcoot/trucogame/internal/dependencies/clock"
	"github.com/mcoot/trucogame/internal/dependencies/random"
	"github.com/mcoot/trucogame/internal/model"
	"github.com/mcoot/trucogame/internal/services/auth"
	"github.com/mcoot/trucogame/internal/services/deck"
	"github.com/mcoot/trucogame/internal/services/game"
	"github.com/mcoot/trucogame/internal/services/scoring"
	"github.com/mcoot/trucogame/internal/storage"
	"github.com/mcoot/trucogame/internal/storage/memory"
	redisstorage "github.com/mcoot/trucogame/internal/storage/redis"
	"github.com/mcoot/trucogame/internal/web/sse"
	"github.com/mcoot/trucogame/internal/web/ws"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	DeckService    *deck.Service
	ScoringService *scoring.Service
	GameController *game.Controller
	AuthService    *auth.Service

	// Transports
	HubManager  *sse.HubManager
	Broadcaster *sse.Broadcaster
	WSManager   *ws.Manager

	Logger *slog.Logger
}

// Config holds configuration for the application factory
type Config struct {
	// AuthConfig holds configuration for the auth service (optional)
	// If zero value, defaults to auth.DefaultConfig()
	AuthConfig auth.Config
	// GameConfig holds controller timings (optional)
	// If zero value, defaults to game.DefaultConfig()
	GameConfig game.Config
	// WinningScore ends a match. Zero means scoring.DefaultWinningScore.
	WinningScore int
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// ShuffleSeed seeds the deck shuffle when non-zero
	ShuffleSeed uint64
}

// ConfigFromSettings maps loaded server settings onto a factory Config
func ConfigFromSettings(s *config.Config, logger *slog.Logger) Config {
	cfg := Config{
		AuthConfig:   auth.Config{SessionDuration: s.Game.SessionDuration},
		GameConfig:   game.Config{HandDelay: s.Game.HandDelay, IdleRoomTTL: s.Game.IdleRoomTTL},
		WinningScore: s.Game.WinningScore,
		Logger:       logger,
		StorageType:  s.Storage.Type,
		ShuffleSeed:  s.Game.ShuffleSeed,
	}
	if s.Storage.Type == StorageTypeRedis {
		cfg.RedisConfig = &redisstorage.Config{
			URL:          s.Redis.URL,
			PoolSize:     s.Redis.PoolSize,
			MinIdleConns: s.Redis.MinIdleConns,
			RoomTTL:      s.Redis.RoomTTL,
		}
	}
	return cfg
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	// Create storage based on type
	var store storage.Storage
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	// Create external dependencies
	clk := clock.New()
	rnd := random.New()
	var deckRnd random.Random = rnd
	if cfg.ShuffleSeed != 0 {
		deckRnd = random.NewSeeded(cfg.ShuffleSeed)
	}

	// Use default auth config if not provided
	authCfg := cfg.AuthConfig
	if authCfg.SessionDuration == 0 {
		authCfg = auth.DefaultConfig()
	}

	gameCfg := cfg.GameConfig
	if gameCfg == (game.Config{}) {
		gameCfg = game.DefaultConfig()
	}

	return newWithDependencies(store, clk, rnd, deckRnd, authCfg, gameCfg, cfg.WinningScore, logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for
// testing). deckRnd drives shuffles and rnd everything else.
func newWithDependencies(
	store storage.Storage,
	clk clock.Clock,
	rnd random.Random,
	deckRnd random.Random,
	authCfg auth.Config,
	gameCfg game.Config,
	winningScore int,
	logger *slog.Logger,
) *App {
	// Create services
	deckService := deck.New(deckRnd, logger)
	scoringService := scoring.New(winningScore, clk)
	gameController := game.NewController(store, deckService, scoringService, clk, logger, gameCfg)
	authService := auth.New(clk, rnd, authCfg)

	// Create transports and subscribe them to the controller
	hubManager := sse.NewHubManager(logger)
	broadcaster := sse.NewBroadcaster(hubManager, logger)
	wsManager := ws.NewManager(logger)

	gameController.AddPublisher(broadcaster)
	gameController.AddPublisher(wsManager)
	gameController.OnRoomClosed(broadcaster.RoomClosed)
	gameController.OnRoomClosed(wsManager.RoomClosed)
	gameController.OnRoomClosed(func(code model.RoomCode) {
		authService.InvalidateRoom(code)
	})

	return &App{
		Storage:        store,
		Clock:          clk,
		Random:         rnd,
		DeckService:    deckService,
		ScoringService: scoringService,
		GameController: gameController,
		AuthService:    authService,
		HubManager:     hubManager,
		Broadcaster:    broadcaster,
		WSManager:      wsManager,
		Logger:         logger,
	}
}

// Maintain runs one housekeeping pass: idle rooms are swept, expired sessions
// dropped and SSE hubs without clients closed.
func (a *App) Maintain(ctx context.Context) {
	removed, err := a.GameController.Sweep(ctx)
	if err != nil {
		a.Logger.Error("room sweep failed", slog.String("error", err.Error()))
	}
	if len(removed) > 0 {
		a.Logger.Info("idle rooms swept", slog.Int("removed", len(removed)))
	}
	a.AuthService.CleanExpiredSessions()
	a.HubManager.CleanupEmptyHubs()
}

// RunMaintenance calls Maintain every interval until ctx is done
func (a *App) RunMaintenance(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.Maintain(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// Shutdown ends every open stream and socket
func (a *App) Shutdown() {
	a.HubManager.CloseAll()
	a.WSManager.CloseAll()
}
