package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/bookshelf/internal/client/client"
	"github.com/dmitrijs2005/bookshelf/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for name, email and password and creates an account.
// A successful registration also signs the user in.
func (a *App) Register(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Enter name", a.out)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	u, err := a.authService.Register(ctx, email, string(password), name)
	if err != nil {
		a.report(err)
		return err
	}
	a.user = u
	fmt.Fprintf(a.out, "Welcome, %s!\n", displayName(u.Name, u.Email))
	return nil
}

// Login prompts for credentials and stores the session on success.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	u, err := a.authService.Login(ctx, email, string(password))
	if err != nil {
		a.report(err)
		return err
	}
	a.user = u
	fmt.Fprintln(a.out, "Login successful")
	return nil
}

// Logout forgets the local session.
func (a *App) Logout(ctx context.Context) error {
	if err := a.authService.Logout(ctx); err != nil {
		a.report(err)
		return err
	}
	a.user = nil
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

// WhoAmI asks the server for the current profile.
func (a *App) WhoAmI(ctx context.Context) error {
	u, err := a.authService.Me(ctx)
	if err != nil {
		a.report(err)
		return err
	}
	a.user = u
	fmt.Fprintf(a.out, "%s <%s> id=%s\n", displayName(u.Name, u.Email), u.Email, u.ID)
	return nil
}

// report prints err for the user. A 401 that survived the refresh means
// the session is gone, so the prompt drops back to logged-out.
func (a *App) report(err error) {
	var apiErr *client.APIError
	switch {
	case errors.Is(err, client.ErrUnauthorized):
		if a.user != nil {
			a.user = nil
			fmt.Fprintln(a.out, "Session expired, please login again")
			return
		}
		if errors.As(err, &apiErr) {
			fmt.Fprintf(a.out, "error: %s\n", apiErr.Message)
			return
		}
	case errors.Is(err, client.ErrUnavailable):
		fmt.Fprintln(a.out, "Server unavailable, try again later")
		a.logger.Debug(context.Background(), "request failed", "error", err)
		return
	case errors.As(err, &apiErr):
		fmt.Fprintf(a.out, "error: %s (%s)\n", apiErr.Message, apiErr.Code)
		return
	}
	fmt.Fprintf(a.out, "error: %v\n", err)
}

func displayName(name, email string) string {
	if name != "" {
		return name
	}
	return email
}
