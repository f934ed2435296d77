// Package models defines client-side data models of the bookshelf API.
package models

// User is the account record returned by the auth endpoints and cached next
// to the tokens after login.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// TokenPair is what the auth server hands out on login and refresh.
// The refresh token is rotated on every refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// LoginResponse is the body of a successful POST /auth/login.
type LoginResponse struct {
	TokenPair
	User User `json:"user"`
}
