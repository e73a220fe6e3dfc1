package factory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"

	"github.com/mcoot/aliasgame/internal/dependencies/clock"
	"github.com/mcoot/aliasgame/internal/dependencies/random"
	"github.com/mcoot/aliasgame/internal/services/room"
	"github.com/mcoot/aliasgame/internal/services/session"
	"github.com/mcoot/aliasgame/internal/services/words"
	"github.com/mcoot/aliasgame/internal/sse"
	"github.com/mcoot/aliasgame/internal/storage"
	"github.com/mcoot/aliasgame/internal/storage/memory"
	"github.com/mcoot/aliasgame/internal/storage/postgres"
	redisstorage "github.com/mcoot/aliasgame/internal/storage/redis"
	"github.com/mcoot/aliasgame/internal/storage/remote"
)

// Backend URL schemes
const (
	SchemeMemory     = "memory"
	SchemeRedis      = "redis"
	SchemeRedisTLS   = "rediss"
	SchemePostgres   = "postgres"
	SchemePostgreSQL = "postgresql"
	SchemeHTTP       = "http"
	SchemeHTTPS      = "https"
)

// ErrUnsupportedBackend is returned for a backend URL with an unknown scheme
var ErrUnsupportedBackend = errors.New("unsupported backend URL scheme")

// App contains all wired application components
type App struct {
	// Storage is nil when no backend URL is configured
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	Words *words.Service
	// Rooms is nil unless both backend credentials are set
	Rooms      *room.Service
	HubManager *sse.HubManager
	Logger     *slog.Logger
}

// Config holds configuration for the application factory
type Config struct {
	// BackendURL selects the storage backend by scheme (optional)
	BackendURL string
	// BackendKey is the backend's anon key: the Redis password or the API key
	BackendKey string
	// WordsPath replaces the built-in word corpus (optional)
	WordsPath string
	// Redis holds pool settings for redis:// backends (optional)
	// If zero value, defaults to redisstorage.DefaultConfig()
	Redis redisstorage.Config
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
}

// New creates a new application with all dependencies wired
func New(ctx context.Context, cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	var store storage.Storage
	if cfg.BackendURL != "" {
		var err error
		store, err = NewStorage(ctx, cfg.BackendURL, cfg.BackendKey, cfg.Redis)
		if err != nil {
			return nil, err
		}
	}

	app, err := newWithDependencies(store, clock.New(), random.New(), cfg.BackendKey != "", logger)
	if err != nil {
		if store != nil {
			_ = store.Close()
		}
		return nil, err
	}

	if cfg.WordsPath != "" {
		if err := app.Words.LoadFromFile(cfg.WordsPath); err != nil {
			_ = app.Close()
			return nil, err
		}
	}
	return app, nil
}

// NewStorage opens the storage backend named by rawURL
func NewStorage(ctx context.Context, rawURL, key string, redisCfg redisstorage.Config) (storage.Storage, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid backend URL: %w", err)
	}

	switch u.Scheme {
	case SchemeMemory:
		return memory.New(), nil
	case SchemeRedis, SchemeRedisTLS:
		if redisCfg.PoolSize == 0 {
			redisCfg = redisstorage.DefaultConfig()
		}
		redisCfg.URL = rawURL
		if key != "" {
			redisCfg.Password = key
		}
		return redisstorage.New(redisCfg)
	case SchemePostgres, SchemePostgreSQL:
		return postgres.New(ctx, rawURL)
	case SchemeHTTP, SchemeHTTPS:
		return remote.New(rawURL, key), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedBackend, u.Scheme)
	}
}

// newWithDependencies creates an App with the given dependencies (useful for testing).
// The room service is only wired when a store exists and online play is enabled.
func newWithDependencies(store storage.Storage, clk clock.Clock, rnd random.Random, online bool, logger *slog.Logger) (*App, error) {
	wordService, err := words.New(rnd)
	if err != nil {
		return nil, err
	}

	var rooms *room.Service
	if store != nil && online {
		rooms = room.New(store, rnd, clk, logger)
	}

	return &App{
		Storage:    store,
		Clock:      clk,
		Random:     rnd,
		Words:      wordService,
		Rooms:      rooms,
		HubManager: sse.NewHubManager(logger),
		Logger:     logger,
	}, nil
}

// NewSession creates a client session over the app's services
func (a *App) NewSession() *session.Session {
	return session.New(session.Config{
		Words:  a.Words,
		Rooms:  a.Rooms,
		Clock:  a.Clock,
		Logger: a.Logger,
	})
}

// Close releases the storage backend and any open event streams
func (a *App) Close() error {
	a.HubManager.CloseAll()
	if a.Storage == nil {
		return nil
	}
	return a.Storage.Close()
}
