package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/bookshelf/internal/client/models"
	"github.com/dmitrijs2005/bookshelf/internal/client/tokens"
	"github.com/dmitrijs2005/bookshelf/internal/common"
	"github.com/dmitrijs2005/bookshelf/internal/logging"
	"github.com/google/uuid"
)

const (
	DefaultRequestTimeout = 30 * time.Second
	DefaultUserAgent      = "bookshelf-cli"

	maxResponseBytes = 32 << 20
)

type options struct {
	httpClient      *http.Client
	logger          logging.Logger
	threshold       time.Duration
	requestTimeout  time.Duration
	refreshTimeout  time.Duration
	userAgent       string
	clock           func() time.Time
	rps             float64
	burst           int
	breakerFailures uint32
	breakerTimeout  time.Duration
}

type Option func(*options)

// WithHTTPClient replaces the underlying client. Its Transport is wrapped by
// the limiter and breaker when those are enabled.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

func WithLogger(l logging.Logger) Option {
	return func(o *options) { o.logger = l }
}

func WithExpiryThreshold(d time.Duration) Option {
	return func(o *options) { o.threshold = d }
}

func WithRequestTimeout(d time.Duration) Option {
	return func(o *options) { o.requestTimeout = d }
}

func WithRefreshTimeout(d time.Duration) Option {
	return func(o *options) { o.refreshTimeout = d }
}

func WithUserAgent(ua string) Option {
	return func(o *options) { o.userAgent = ua }
}

func WithClock(now func() time.Time) Option {
	return func(o *options) { o.clock = now }
}

// WithRateLimit enables client-side rate limiting. rps <= 0 disables it.
func WithRateLimit(rps float64, burst int) Option {
	return func(o *options) {
		o.rps = rps
		o.burst = burst
	}
}

// WithCircuitBreaker trips after failures consecutive failures and stays
// open for timeout. failures == 0 disables it.
func WithCircuitBreaker(failures uint32, timeout time.Duration) Option {
	return func(o *options) {
		o.breakerFailures = failures
		o.breakerTimeout = timeout
	}
}

// Client sends requests to the bookshelf API, attaching the stored access
// token and refreshing it when needed.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	store     TokenStore
	inspector *tokens.Inspector
	refresher *RefreshCoordinator
	logger    logging.Logger
	userAgent string
	timeout   time.Duration
}

func New(baseURL string, store TokenStore, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("server url %q must be absolute", baseURL)
	}

	o := options{
		logger:         logging.Discard(),
		threshold:      common.DefaultExpiryThreshold,
		requestTimeout: DefaultRequestTimeout,
		refreshTimeout: DefaultRefreshTimeout,
		userAgent:      DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(&o)
	}

	hc := &http.Client{}
	if o.httpClient != nil {
		cp := *o.httpClient
		hc = &cp
	}
	rt := hc.Transport
	if o.breakerFailures > 0 {
		rt = NewBreakerTransport(rt, u.Host, o.breakerFailures, o.breakerTimeout)
	}
	if o.rps > 0 {
		rt = NewLimitTransport(rt, o.rps, o.burst)
	}
	hc.Transport = rt

	var inspOpts []tokens.Option
	if o.clock != nil {
		inspOpts = append(inspOpts, tokens.WithClock(o.clock))
	}

	c := &Client{
		baseURL:   u,
		http:      hc,
		store:     store,
		inspector: tokens.NewInspector(o.threshold, inspOpts...),
		logger:    o.logger,
		userAgent: o.userAgent,
		timeout:   o.requestTimeout,
	}
	c.refresher = NewRefreshCoordinator(store, c.refreshTokens, c.inspector, o.logger, o.refreshTimeout)
	return c, nil
}

// Do sends req. Non-2xx responses come back as *APIError.
//
// An expired access token is refreshed before sending. A 401 triggers one
// refresh and one replay; a second 401 is returned to the caller.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	req = c.prepare(req)
	log := c.logger.With("method", req.Method, "path", req.Path,
		"request_id", req.Header.Get(common.RequestIDHeaderName))

	token := c.preflight(ctx, req)

	resp, err := c.send(ctx, req, token)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized && !req.retried && !isSessionPath(req.Path) {
		log.Debug(ctx, "unauthorized, refreshing and retrying")
		fresh, ok := c.refresher.Refresh(ctx, token)
		if !ok {
			return nil, errorFromResponse(resp.StatusCode, resp.Body)
		}
		resp, err = c.send(ctx, req.asRetry(), fresh)
		if err != nil {
			return nil, err
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Debug(ctx, "request failed", "status", resp.StatusCode)
		return nil, errorFromResponse(resp.StatusCode, resp.Body)
	}
	return resp, nil
}

// DoJSON sends req and decodes a successful body into out.
func (c *Client) DoJSON(ctx context.Context, req *Request, out any) error {
	resp, err := c.Do(ctx, req)
	if err != nil {
		return err
	}
	return resp.Decode(out)
}

func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	req := NewRequest(http.MethodGet, path)
	req.Query = query
	return c.DoJSON(ctx, req, out)
}

func (c *Client) Post(ctx context.Context, path string, in, out any) error {
	req, err := NewJSONRequest(http.MethodPost, path, in)
	if err != nil {
		return err
	}
	return c.DoJSON(ctx, req, out)
}

// Coordinator exposes the refresh coordinator shared by all requests.
func (c *Client) Coordinator() *RefreshCoordinator {
	return c.refresher
}

func (c *Client) prepare(req *Request) *Request {
	r := req.clone()
	if r.Method == "" {
		r.Method = http.MethodGet
	}
	if r.Header.Get(common.RequestIDHeaderName) == "" {
		r.Header.Set(common.RequestIDHeaderName, uuid.NewString())
	}
	if r.Header.Get("Accept") == "" {
		r.Header.Set("Accept", "application/json")
	}
	if r.Header.Get("User-Agent") == "" {
		r.Header.Set("User-Agent", c.userAgent)
	}
	return r
}

// preflight returns the token to attach, refreshing it first if it is about
// to expire. Store failures count as no token.
func (c *Client) preflight(ctx context.Context, req *Request) string {
	token, err := c.store.GetAccessToken(ctx)
	if err != nil {
		c.logger.Warn(ctx, "read access token", "error", err)
		return ""
	}
	if token == "" || isSessionPath(req.Path) || !c.inspector.IsExpired(token) {
		return token
	}

	fresh, ok := c.refresher.Refresh(ctx, token)
	if !ok {
		return ""
	}
	return fresh
}

func (c *Client) send(ctx context.Context, req *Request, token string) (*Response, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	u := c.baseURL.JoinPath(req.Path)
	if len(req.Query) > 0 {
		u.RawQuery = req.Query.Encode()
	}

	var body io.Reader = http.NoBody
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}
	hr, err := http.NewRequestWithContext(ctx, req.Method, u.String(), body)
	if err != nil {
		return nil, networkError(err)
	}
	hr.Header = req.Header.Clone()
	if token != "" {
		hr.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
	} else {
		hr.Header.Del(common.AuthorizationHeaderName)
	}

	resp, err := c.http.Do(hr)
	if err != nil {
		return nil, networkError(err)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, networkError(err)
	}
	return &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: b}, nil
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// refreshTokens calls the refresh endpoint directly, bypassing the token
// logic in Do.
func (c *Client) refreshTokens(ctx context.Context, refreshToken string) (models.TokenPair, error) {
	req, err := NewJSONRequest(http.MethodPost, common.RefreshPath, refreshRequest{RefreshToken: refreshToken})
	if err != nil {
		return models.TokenPair{}, err
	}

	resp, err := c.send(ctx, c.prepare(req), "")
	if err != nil {
		return models.TokenPair{}, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return models.TokenPair{}, errorFromResponse(resp.StatusCode, resp.Body)
	}

	var pair models.TokenPair
	if err := resp.Decode(&pair); err != nil {
		return models.TokenPair{}, fmt.Errorf("%w: %w", errMalformedTokens, err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		return models.TokenPair{}, errMalformedTokens
	}
	return pair, nil
}

// isSessionPath reports endpoints that carry the refresh token in their body.
// Refreshing around them would rotate the very token they act on.
func isSessionPath(p string) bool {
	switch strings.TrimRight(p, "/") {
	case common.RefreshPath, common.LogoutPath:
		return true
	}
	return false
}
