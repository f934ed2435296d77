package client

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/bookshelf/internal/client/models"
	"github.com/dmitrijs2005/bookshelf/internal/client/tokens"
	"github.com/dmitrijs2005/bookshelf/internal/logging"
)

// DefaultRefreshTimeout bounds a single refresh call.
const DefaultRefreshTimeout = 15 * time.Second

// TokenStore is the part of the session store the pipeline needs.
type TokenStore interface {
	GetAccessToken(ctx context.Context) (string, error)
	GetRefreshToken(ctx context.Context) (string, error)
	SetTokens(ctx context.Context, pair models.TokenPair) error
	ClearAuthData(ctx context.Context) error
}

// RefreshFunc exchanges a refresh token for a new pair.
type RefreshFunc func(ctx context.Context, refreshToken string) (models.TokenPair, error)

// RefreshCoordinator makes sure at most one refresh call is in flight.
// Callers arriving while a refresh runs wait for its result in the order
// they arrived.
type RefreshCoordinator struct {
	store     TokenStore
	refresh   RefreshFunc
	inspector *tokens.Inspector
	logger    logging.Logger
	timeout   time.Duration

	mu       sync.Mutex
	inFlight bool
	waiters  []chan string
}

func NewRefreshCoordinator(store TokenStore, refresh RefreshFunc, inspector *tokens.Inspector,
	logger logging.Logger, timeout time.Duration) *RefreshCoordinator {
	if timeout <= 0 {
		timeout = DefaultRefreshTimeout
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &RefreshCoordinator{
		store:     store,
		refresh:   refresh,
		inspector: inspector,
		logger:    logger,
		timeout:   timeout,
	}
}

// Refresh returns a usable access token, or false if the session is gone.
// stale is the token the caller found unusable; it may be empty.
func (c *RefreshCoordinator) Refresh(ctx context.Context, stale string) (string, bool) {
	c.mu.Lock()
	if c.inFlight {
		ch := make(chan string, 1)
		c.waiters = append(c.waiters, ch)
		n := len(c.waiters)
		c.mu.Unlock()

		c.logger.Debug(ctx, "waiting for refresh in flight", "position", n)
		select {
		case token := <-ch:
			return token, token != ""
		case <-ctx.Done():
			return "", false
		}
	}
	c.inFlight = true
	c.mu.Unlock()

	token := c.run(ctx, stale)

	c.mu.Lock()
	waiters := c.waiters
	c.waiters = nil
	c.inFlight = false
	c.mu.Unlock()

	for _, ch := range waiters {
		ch <- token
	}
	if len(waiters) > 0 {
		c.logger.Debug(ctx, "refresh result handed to waiters", "waiters", len(waiters), "ok", token != "")
	}
	return token, token != ""
}

// InFlight reports whether a refresh is currently running.
func (c *RefreshCoordinator) InFlight() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inFlight
}

func (c *RefreshCoordinator) run(ctx context.Context, stale string) string {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
	defer cancel()

	current, err := c.store.GetAccessToken(ctx)
	if err != nil {
		c.logger.Warn(ctx, "read access token", "error", err)
		current = ""
	}
	if current != "" && current != stale && !c.inspector.IsExpired(current) {
		c.logger.Debug(ctx, "access token already refreshed")
		return current
	}

	refreshToken, err := c.store.GetRefreshToken(ctx)
	if err != nil {
		c.logger.Warn(ctx, "read refresh token", "error", err)
		refreshToken = ""
	}
	if refreshToken == "" {
		if current != "" {
			c.clear(ctx)
		}
		return ""
	}

	c.logger.Info(ctx, "refreshing access token")
	pair, err := c.refresh(ctx, refreshToken)
	if err != nil {
		c.logger.Warn(ctx, "token refresh failed", "error", err)
		c.clear(ctx)
		return ""
	}

	if err := c.store.SetTokens(ctx, pair); err != nil {
		c.logger.Warn(ctx, "persist refreshed tokens", "error", err)
	}
	c.logger.Info(ctx, "access token refreshed")
	return pair.AccessToken
}

func (c *RefreshCoordinator) clear(ctx context.Context) {
	if err := c.store.ClearAuthData(ctx); err != nil {
		c.logger.Warn(ctx, "clear auth data", "error", err)
		return
	}
	c.logger.Info(ctx, "session cleared")
}
