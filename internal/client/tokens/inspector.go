// Package tokens decides whether an access token is still usable.
//
// Tokens are decoded without verifying the signature: the client never holds
// the signing key and only needs the exp claim to schedule a refresh. Any
// token that cannot be decoded, or that carries no exp, is reported as
// expired so that the caller refreshes instead of sending it.
package tokens

import (
	"time"

	"github.com/dmitrijs2005/bookshelf/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

type Inspector struct {
	threshold time.Duration
	now       func() time.Time
	parser    *jwt.Parser
}

type Option func(*Inspector)

// WithClock overrides time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(i *Inspector) { i.now = now }
}

// NewInspector returns an Inspector that treats a token as expired threshold
// before its exp. A negative threshold falls back to the default; zero means
// the token is good until its exp.
func NewInspector(threshold time.Duration, opts ...Option) *Inspector {
	if threshold < 0 {
		threshold = common.DefaultExpiryThreshold
	}
	i := &Inspector{
		threshold: threshold,
		now:       time.Now,
		parser:    jwt.NewParser(),
	}
	for _, o := range opts {
		o(i)
	}
	return i
}

func (i *Inspector) Threshold() time.Duration {
	return i.threshold
}

// IsExpired reports whether now >= exp - threshold.
func (i *Inspector) IsExpired(token string) bool {
	exp, ok := i.expiry(token)
	if !ok {
		return true
	}
	return !i.now().Before(exp.Add(-i.threshold))
}

func (i *Inspector) expiry(token string) (time.Time, bool) {
	if token == "" {
		return time.Time{}, false
	}

	claims := jwt.MapClaims{}
	if _, _, err := i.parser.ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// IsExpired checks token against the wall clock.
func IsExpired(token string, threshold time.Duration) bool {
	return NewInspector(threshold).IsExpired(token)
}
