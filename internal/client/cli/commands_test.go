package cli

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/bookshelf/internal/client/client"
	"github.com/dmitrijs2005/bookshelf/internal/client/config"
	"github.com/dmitrijs2005/bookshelf/internal/client/services"
	"github.com/dmitrijs2005/bookshelf/internal/client/tokenstore"
	"github.com/dmitrijs2005/bookshelf/internal/devserver"
	"github.com/dmitrijs2005/bookshelf/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testApp struct {
	*App
	srv   *devserver.Server
	store *tokenstore.Store
	buf   *bytes.Buffer
}

func newTestApp(t *testing.T, input string) *testApp {
	t.Helper()
	var cfg devserver.Config
	cfg.LoadDefaults()

	srv := devserver.New(cfg)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	store := tokenstore.New(tokenstore.NewMemoryBackend())
	api, err := client.New(ts.URL, store)
	require.NoError(t, err)

	buf := &bytes.Buffer{}
	app := &App{
		logger:         logging.Discard(),
		authService:    services.NewAuthService(api, store, nil),
		libraryService: services.NewLibraryService(api),
		reader:         bufio.NewReader(strings.NewReader(input)),
		out:            buf,
	}
	return &testApp{App: app, srv: srv, store: store, buf: buf}
}

func stubPassword(t *testing.T, pw string) {
	t.Helper()
	old := getPassword
	getPassword = func(io.Writer) ([]byte, error) { return []byte(pw), nil }
	t.Cleanup(func() { getPassword = old })
}

func TestLoginBooksLogout(t *testing.T) {
	ctx := context.Background()
	stubPassword(t, "reader")
	a := newTestApp(t, "reader@example.com\n")

	require.NoError(t, a.Login(ctx))
	assert.True(t, a.isLoggedIn())
	assert.Equal(t, "(reader@example.com)", a.getStatus())
	assert.Contains(t, a.buf.String(), "Login successful")

	a.buf.Reset()
	require.NoError(t, a.Books(ctx, ""))
	assert.Contains(t, a.buf.String(), "Moby-Dick by Herman Melville")
	assert.Contains(t, a.buf.String(), "The Go Programming Language")

	a.buf.Reset()
	require.NoError(t, a.Books(ctx, "no such title"))
	assert.Equal(t, "No books found\n", a.buf.String())

	a.buf.Reset()
	require.NoError(t, a.WhoAmI(ctx))
	assert.Contains(t, a.buf.String(), "<reader@example.com>")

	a.buf.Reset()
	require.NoError(t, a.Logout(ctx))
	assert.False(t, a.isLoggedIn())
	assert.Equal(t, "", a.getStatus())

	tok, err := a.store.GetAccessToken(ctx)
	require.NoError(t, err)
	assert.Empty(t, tok)
}

func TestLoginWrongPassword(t *testing.T) {
	stubPassword(t, "wrong")
	a := newTestApp(t, "reader@example.com\n")

	require.Error(t, a.Login(context.Background()))
	assert.False(t, a.isLoggedIn())
	assert.Contains(t, a.buf.String(), "INVALID_CREDENTIALS")
}

func TestRegister(t *testing.T) {
	stubPassword(t, "pw")
	a := newTestApp(t, "Ann\nann@example.com\n")

	require.NoError(t, a.Register(context.Background()))
	assert.True(t, a.isLoggedIn())
	assert.Contains(t, a.buf.String(), "Welcome, Ann!")
}

func TestUploadRateAsk(t *testing.T) {
	ctx := context.Background()
	stubPassword(t, "reader")

	path := filepath.Join(t.TempDir(), "notes.epub")
	require.NoError(t, os.WriteFile(path, []byte("epub bytes"), 0o600))

	a := newTestApp(t, "reader@example.com\nMy Notes\nMe\nline one\nline two\n\nWhat is it about?\n")
	require.NoError(t, a.Login(ctx))

	a.buf.Reset()
	require.NoError(t, a.Upload(ctx, path))
	out := a.buf.String()
	assert.Contains(t, out, `Uploaded "My Notes", id=`)
	id := strings.TrimSpace(out[strings.LastIndex(out, "id=")+3:])
	require.NotEmpty(t, id)

	a.buf.Reset()
	require.NoError(t, a.Book(ctx, id))
	assert.Contains(t, a.buf.String(), "line one\nline two")
	assert.Contains(t, a.buf.String(), "file: notes.epub")

	a.buf.Reset()
	require.NoError(t, a.Rate(ctx, id, "4"))
	assert.Contains(t, a.buf.String(), "Average now 4.0 from 1 ratings")

	a.buf.Reset()
	require.Error(t, a.Rate(ctx, id, "four"))
	assert.Contains(t, a.buf.String(), `score "four" is not a number`)

	a.buf.Reset()
	require.NoError(t, a.Ask(ctx, id))
	assert.NotEmpty(t, strings.TrimSpace(a.buf.String()))
}

func TestUploadMissingFile(t *testing.T) {
	a := newTestApp(t, "")
	require.Error(t, a.Upload(context.Background(), filepath.Join(t.TempDir(), "missing.pdf")))
	assert.Contains(t, a.buf.String(), "error:")
}

func TestSessionExpiredDropsToLoggedOut(t *testing.T) {
	ctx := context.Background()
	stubPassword(t, "reader")
	a := newTestApp(t, "reader@example.com\n")
	require.NoError(t, a.Login(ctx))

	pair, err := a.srv.IssueTokens(a.user.ID, time.Now().Add(-time.Minute))
	require.NoError(t, err)
	pair.RefreshToken = "revoked"
	require.NoError(t, a.store.SetTokens(ctx, pair))

	a.buf.Reset()
	require.Error(t, a.Books(ctx, ""))
	assert.Contains(t, a.buf.String(), "Session expired, please login again")
	assert.False(t, a.isLoggedIn())

	tok, err := a.store.GetAccessToken(ctx)
	require.NoError(t, err)
	assert.Empty(t, tok)
}

func TestReportUnavailable(t *testing.T) {
	a := newTestApp(t, "")
	a.report(&client.APIError{Code: client.CodeNetworkError, Message: "connection refused"})
	assert.Equal(t, "Server unavailable, try again later\n", a.buf.String())
}

func TestNewApp_Stores(t *testing.T) {
	ctx := context.Background()

	for _, kind := range []string{config.StoreMemory, config.StoreSQLite} {
		t.Run(kind, func(t *testing.T) {
			var cfg config.Config
			cfg.LoadDefaults()
			cfg.TokenStore = kind
			cfg.DatabasePath = filepath.Join(t.TempDir(), "nested", "bookshelf.db")
			cfg.StoreSecret = "local-secret"

			app, err := NewApp(ctx, &cfg, nil)
			require.NoError(t, err)
			require.NotNil(t, app.authService)
			require.NotNil(t, app.libraryService)
			require.NoError(t, app.Close())
		})
	}
}

func TestNewApp_InvalidStore(t *testing.T) {
	var cfg config.Config
	cfg.LoadDefaults()
	cfg.TokenStore = "etcd"

	_, err := NewApp(context.Background(), &cfg, nil)
	require.Error(t, err)
}

func TestRun_ExitsOnQuit(t *testing.T) {
	out := captureOutput(t)
	a := newTestApp(t, "help\nquit\n")

	a.Run(context.Background())

	assert.Contains(t, *out, "Welcome to bookshelf (type 'help' for commands)")
	assert.Contains(t, *out, helpLoggedOut)
	assert.Equal(t, "Bye!", (*out)[len(*out)-1])
}
