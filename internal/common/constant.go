// Package common contains shared constants and sentinel errors used across
// bookshelf components.
package common

import "time"

const (
	// AuthorizationHeaderName carries the bearer credential on outbound requests.
	AuthorizationHeaderName = "Authorization"

	// BearerPrefix precedes the access token in the Authorization header.
	BearerPrefix = "Bearer "

	// RequestIDHeaderName correlates a request with client and server logs.
	RequestIDHeaderName = "X-Request-ID"

	// RefreshPath is the auth server endpoint minting a new token pair.
	RefreshPath = "/auth/refresh"

	// LogoutPath revokes the refresh token sent in the body.
	LogoutPath = "/auth/logout"

	// DefaultExpiryThreshold is how long before its real expiry an access
	// token is already treated as expired.
	DefaultExpiryThreshold = 60 * time.Second
)
