package client

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

// errServerFailure marks a 5xx response as a failure for the breaker without
// turning it into a transport error.
var errServerFailure = errors.New("server error response")

// BreakerTransport fails fast once the upstream has failed too often in a row.
type BreakerTransport struct {
	next http.RoundTripper
	cb   *gobreaker.CircuitBreaker
}

func NewBreakerTransport(next http.RoundTripper, name string, failures uint32, timeout time.Duration) *BreakerTransport {
	if next == nil {
		next = http.DefaultTransport
	}
	if failures == 0 {
		failures = 5
	}
	st := gobreaker.Settings{
		Name:    name,
		Timeout: timeout,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= failures
		},
	}
	return &BreakerTransport{next: next, cb: gobreaker.NewCircuitBreaker(st)}
}

func (t *BreakerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	out, err := t.cb.Execute(func() (interface{}, error) {
		resp, err := t.next.RoundTrip(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			return resp, errServerFailure
		}
		return resp, nil
	})
	if errors.Is(err, errServerFailure) {
		return out.(*http.Response), nil
	}
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%s: %w", t.cb.Name(), err)
		}
		return nil, err
	}
	return out.(*http.Response), nil
}

// State exposes the breaker state for diagnostics.
func (t *BreakerTransport) State() gobreaker.State {
	return t.cb.State()
}

// LimitTransport waits for a token before each request.
type LimitTransport struct {
	next    http.RoundTripper
	limiter *rate.Limiter
}

func NewLimitTransport(next http.RoundTripper, rps float64, burst int) *LimitTransport {
	if next == nil {
		next = http.DefaultTransport
	}
	if burst < 1 {
		burst = 1
	}
	return &LimitTransport{next: next, limiter: rate.NewLimiter(rate.Limit(rps), burst)}
}

func (t *LimitTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.limiter.Wait(req.Context()); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}
	return t.next.RoundTrip(req)
}
