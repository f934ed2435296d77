// Package client is the authenticated HTTP layer of the bookshelf CLI.
//
// # Overview
//
// Client wraps an *http.Client and a token store. For every request it:
//  1. attaches the stored access token as a bearer credential, refreshing it
//     first when it expires within the configured threshold;
//  2. on a 401, refreshes once and replays the request once;
//  3. normalizes failures into *APIError with a server supplied code, or
//     NETWORK_ERROR when there is none.
//
// Refreshes go through a RefreshCoordinator so that any number of concurrent
// requests cause a single POST /auth/refresh. A failed refresh clears the
// stored session.
//
// # Error Handling
//
// Use errors.Is with ErrUnauthorized (HTTP 401) and ErrUnavailable (no
// response at all), or errors.As with *APIError for the code and message.
//
// # Transport
//
// Client-side rate limiting (LimitTransport) and circuit breaking
// (BreakerTransport) are off by default and enabled via options.
package client
