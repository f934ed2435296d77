package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/bookshelf/internal/client/client"
	"github.com/dmitrijs2005/bookshelf/internal/client/models"
	"github.com/dmitrijs2005/bookshelf/internal/common"
	"github.com/dmitrijs2005/bookshelf/internal/logging"
)

// ErrNotSignedIn is returned by CurrentUser when no session is stored.
var ErrNotSignedIn = errors.New("not signed in")

// AuthService defines account operations for the CLI.
//
// Login and Register persist the returned token pair and user. Logout
// always clears the local session, even if the server call fails.
type AuthService interface {
	Login(ctx context.Context, email, password string) (*models.User, error)
	Register(ctx context.Context, email, password, name string) (*models.User, error)
	Logout(ctx context.Context) error
	CurrentUser(ctx context.Context) (*models.User, error)
	Me(ctx context.Context) (*models.User, error)
}

type authService struct {
	api    API
	store  SessionStore
	logger logging.Logger
}

func NewAuthService(api API, store SessionStore, logger logging.Logger) AuthService {
	if logger == nil {
		logger = logging.Discard()
	}
	return &authService{api: api, store: store, logger: logger}
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
}

func (a *authService) Login(ctx context.Context, email, password string) (*models.User, error) {
	if err := validateCredentials(email, password); err != nil {
		return nil, err
	}

	var resp models.LoginResponse
	if err := a.api.Post(ctx, "/auth/login", credentials{Email: email, Password: password}, &resp); err != nil {
		return nil, fmt.Errorf("login error: %w", err)
	}
	if err := a.saveSession(ctx, resp); err != nil {
		return nil, err
	}
	a.logger.Info(ctx, "Logged in", "user_id", resp.User.ID)
	return &resp.User, nil
}

func (a *authService) Register(ctx context.Context, email, password, name string) (*models.User, error) {
	if err := validateCredentials(email, password); err != nil {
		return nil, err
	}

	in := credentials{Email: email, Password: password, Name: strings.TrimSpace(name)}
	var resp models.LoginResponse
	if err := a.api.Post(ctx, "/auth/register", in, &resp); err != nil {
		return nil, fmt.Errorf("register error: %w", err)
	}
	if err := a.saveSession(ctx, resp); err != nil {
		return nil, err
	}
	a.logger.Info(ctx, "Registered", "user_id", resp.User.ID)
	return &resp.User, nil
}

// Logout revokes the refresh token on a best-effort basis.
func (a *authService) Logout(ctx context.Context) error {
	rt, err := a.store.GetRefreshToken(ctx)
	if err != nil {
		a.logger.Warn(ctx, "read refresh token", "error", err)
	}
	if rt != "" {
		req, err := client.NewJSONRequest(http.MethodPost, common.LogoutPath, map[string]string{"refresh_token": rt})
		if err == nil {
			_, err = a.api.Do(ctx, req)
		}
		if err != nil {
			a.logger.Warn(ctx, "server logout failed", "error", err)
		}
	}

	if err := a.store.ClearAuthData(ctx); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

func (a *authService) CurrentUser(ctx context.Context) (*models.User, error) {
	u, err := a.store.GetStoredUser(ctx)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrNotSignedIn
	}
	return u, nil
}

// Me fetches the profile from the server and refreshes the cached copy.
func (a *authService) Me(ctx context.Context) (*models.User, error) {
	var u models.User
	if err := a.api.Get(ctx, "/users/me", nil, &u); err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	if err := a.store.SetStoredUser(ctx, u); err != nil {
		a.logger.Warn(ctx, "cache user", "error", err)
	}
	return &u, nil
}

func (a *authService) saveSession(ctx context.Context, resp models.LoginResponse) error {
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		return fmt.Errorf("login response: %w", common.ErrInvalidToken)
	}
	if err := a.store.SetTokens(ctx, resp.TokenPair); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	if err := a.store.SetStoredUser(ctx, resp.User); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func validateCredentials(email, password string) error {
	if !strings.Contains(email, "@") {
		return fmt.Errorf("%w: email %q is not valid", common.ErrorValidation, email)
	}
	if password == "" {
		return fmt.Errorf("%w: password is required", common.ErrorValidation)
	}
	return nil
}
