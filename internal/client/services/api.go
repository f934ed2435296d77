// Package services contains application services for the bookshelf client.
// They translate user intents into API calls made through client.Client and
// keep the local session in sync.
package services

import (
	"context"
	"net/url"

	"github.com/dmitrijs2005/bookshelf/internal/client/client"
	"github.com/dmitrijs2005/bookshelf/internal/client/models"
)

// API is the subset of *client.Client used by services.
type API interface {
	Do(ctx context.Context, req *client.Request) (*client.Response, error)
	DoJSON(ctx context.Context, req *client.Request, out any) error
	Get(ctx context.Context, path string, query url.Values, out any) error
	Post(ctx context.Context, path string, in, out any) error
}

// SessionStore is where services keep the signed-in session.
type SessionStore interface {
	SetTokens(ctx context.Context, pair models.TokenPair) error
	GetRefreshToken(ctx context.Context) (string, error)
	GetStoredUser(ctx context.Context) (*models.User, error)
	SetStoredUser(ctx context.Context, u models.User) error
	ClearAuthData(ctx context.Context) error
}
