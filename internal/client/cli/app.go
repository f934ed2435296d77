package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/bookshelf/internal/client/client"
	"github.com/dmitrijs2005/bookshelf/internal/client/config"
	"github.com/dmitrijs2005/bookshelf/internal/client/models"
	"github.com/dmitrijs2005/bookshelf/internal/client/services"
	"github.com/dmitrijs2005/bookshelf/internal/client/tokenstore"
	"github.com/dmitrijs2005/bookshelf/internal/filex"
	"github.com/dmitrijs2005/bookshelf/internal/logging"
	"github.com/redis/go-redis/v9"
)

type App struct {
	config         *config.Config
	logger         logging.Logger
	authService    services.AuthService
	libraryService services.LibraryService
	user           *models.User
	reader         *bufio.Reader
	out            io.Writer
	closers        []func() error
}

// NewApp builds the token store selected in c and the services on top of it.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	if logger == nil {
		logger = logging.Discard()
	}
	app := &App{config: c, logger: logger, reader: bufio.NewReader(os.Stdin), out: os.Stdout}

	backend, err := app.openBackend(ctx)
	if err != nil {
		_ = app.Close()
		return nil, err
	}
	if c.StoreSecret != "" {
		backend = tokenstore.NewSealedBackend(backend, []byte(c.StoreSecret))
	}
	store := tokenstore.New(backend)

	api, err := client.New(c.ServerURL, store,
		client.WithLogger(logger),
		client.WithExpiryThreshold(c.ExpiryThreshold),
		client.WithRequestTimeout(c.RequestTimeout),
		client.WithRefreshTimeout(c.RefreshTimeout),
		client.WithRateLimit(c.RateLimitRPS, c.RateLimitBurst),
		client.WithCircuitBreaker(c.BreakerFailureThreshold, c.BreakerTimeout),
	)
	if err != nil {
		_ = app.Close()
		return nil, err
	}

	app.authService = services.NewAuthService(api, store, logger)
	app.libraryService = services.NewLibraryService(api)
	return app, nil
}

func (a *App) openBackend(ctx context.Context) (tokenstore.Backend, error) {
	switch a.config.TokenStore {
	case config.StoreMemory:
		return tokenstore.NewMemoryBackend(), nil

	case config.StoreRedis:
		rdb := redis.NewClient(&redis.Options{Addr: a.config.RedisAddr})
		a.closers = append(a.closers, rdb.Close)
		if err := rdb.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("redis %s: %w", a.config.RedisAddr, err)
		}
		return tokenstore.NewRedisBackend(rdb, a.config.RedisPrefix), nil

	default:
		if err := filex.EnsureParentDir(a.config.DatabasePath); err != nil {
			return nil, err
		}
		db, err := tokenstore.InitDatabase(ctx, a.config.DatabasePath)
		if err != nil {
			return nil, fmt.Errorf("error initializing database: %w", err)
		}
		a.closers = append(a.closers, db.Close)
		return tokenstore.NewSQLiteBackend(db), nil
	}
}

// Close releases the token store.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}

// Run resumes a stored session if there is one and starts the REPL.
func (a *App) Run(ctx context.Context) {
	defer a.Close()

	if u, err := a.authService.CurrentUser(ctx); err == nil {
		a.user = u
	}

	printlnFn("Welcome to bookshelf (type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, bufio.NewScanner(a.reader))
}

func (a *App) isLoggedIn() bool {
	return a.user != nil
}

func (a *App) getStatus() string {
	if a.user == nil {
		return ""
	}
	return fmt.Sprintf("(%s)", a.user.Email)
}
