package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/bookshelf/internal/client/models"
	"github.com/dmitrijs2005/bookshelf/internal/client/tokenstore"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func mintToken(t *testing.T, exp time.Time) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "u1",
		"exp": exp.Unix(),
		"jti": uuid.NewString(),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return s
}

// countingStore records how often the session is cleared.
type countingStore struct {
	*tokenstore.Store
	clears atomic.Int32
}

func newCountingStore() *countingStore {
	return &countingStore{Store: tokenstore.New(tokenstore.NewMemoryBackend())}
}

func (s *countingStore) ClearAuthData(ctx context.Context) error {
	s.clears.Add(1)
	return s.Store.ClearAuthData(ctx)
}

// fakeAPI is a minimal auth server: /auth/refresh rotates tokens and
// /protected accepts only tokens it considers valid.
type fakeAPI struct {
	t   *testing.T
	srv *httptest.Server

	mu           sync.Mutex
	validAccess  map[string]bool
	validRefresh map[string]bool
	seenAuth     []string
	seenBodies   []string
	seenHeaders  []http.Header

	refreshCalls   atomic.Int32
	protectedCalls atomic.Int32
	logoutCalls    atomic.Int32

	// denied requests wait until holdN of them have arrived
	holdN   int
	held    int
	release chan struct{}

	refreshDelay  time.Duration
	refreshStatus int // non-zero forces a failed refresh
	refreshBody   string
	alwaysDeny    bool
}

func newFakeAPI(t *testing.T) *fakeAPI {
	f := &fakeAPI{
		t:            t,
		validAccess:  map[string]bool{},
		validRefresh: map[string]bool{},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/refresh", f.handleRefresh)
	mux.HandleFunc("/protected", f.handleProtected)
	mux.HandleFunc("POST /auth/logout", f.handleLogout)
	f.srv = httptest.NewServer(mux)
	t.Cleanup(f.srv.Close)
	return f
}

// issue creates a pair the server accepts, optionally already expired by clock.
func (f *fakeAPI) issue(exp time.Time) models.TokenPair {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := models.TokenPair{AccessToken: mintToken(f.t, exp), RefreshToken: uuid.NewString()}
	f.validAccess[p.AccessToken] = true
	f.validRefresh[p.RefreshToken] = true
	return p
}

func (f *fakeAPI) revoke(access string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.validAccess, access)
}

// holdDenied makes the first n rejected /protected calls block until all n
// have been received.
func (f *fakeAPI) holdDenied(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.holdN = n
	f.release = make(chan struct{})
}

func writeErr(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"code": code, "message": msg})
}

func (f *fakeAPI) handleRefresh(w http.ResponseWriter, r *http.Request) {
	f.refreshCalls.Add(1)
	if f.refreshDelay > 0 {
		time.Sleep(f.refreshDelay)
	}
	if f.refreshStatus != 0 {
		w.WriteHeader(f.refreshStatus)
		_, _ = w.Write([]byte(f.refreshBody))
		return
	}

	var in refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeErr(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	f.mu.Lock()
	ok := f.validRefresh[in.RefreshToken]
	delete(f.validRefresh, in.RefreshToken)
	f.mu.Unlock()
	if !ok {
		writeErr(w, http.StatusUnauthorized, "INVALID_REFRESH_TOKEN", "refresh token is invalid")
		return
	}

	pair := f.issue(time.Now().Add(15 * time.Minute))
	_ = json.NewEncoder(w).Encode(pair)
}

func (f *fakeAPI) handleProtected(w http.ResponseWriter, r *http.Request) {
	f.protectedCalls.Add(1)
	auth := r.Header.Get("Authorization")
	body, _ := io.ReadAll(r.Body)

	f.mu.Lock()
	f.seenAuth = append(f.seenAuth, auth)
	f.seenBodies = append(f.seenBodies, string(body))
	f.seenHeaders = append(f.seenHeaders, r.Header.Clone())
	ok := !f.alwaysDeny && strings.HasPrefix(auth, "Bearer ") && f.validAccess[strings.TrimPrefix(auth, "Bearer ")]
	var wait chan struct{}
	if !ok && f.held < f.holdN {
		f.held++
		if f.held == f.holdN {
			close(f.release)
		}
		wait = f.release
	}
	f.mu.Unlock()

	if wait != nil {
		<-wait
	}
	if !ok {
		writeErr(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (f *fakeAPI) handleLogout(w http.ResponseWriter, r *http.Request) {
	f.logoutCalls.Add(1)
	var in refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeErr(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}
	f.mu.Lock()
	delete(f.validRefresh, in.RefreshToken)
	f.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

func (f *fakeAPI) authSeen() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.seenAuth...)
}

func newTestClient(t *testing.T, f *fakeAPI, store TokenStore, opts ...Option) *Client {
	t.Helper()
	c, err := New(f.srv.URL, store, opts...)
	require.NoError(t, err)
	return c
}
