package devserver

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/bookshelf/internal/client/models"
	"github.com/dmitrijs2005/bookshelf/internal/common"
	"github.com/dmitrijs2005/bookshelf/internal/logging"
	"github.com/gorilla/mux"
)

var errEmailTaken = errors.New("email already registered")

// Server is the in-memory API. The zero value is not usable; call New.
type Server struct {
	cfg    Config
	secret []byte
	logger logging.Logger
	now    func() time.Time

	users    *userStore
	books    *catalogue
	router   *mux.Router
	refreshN atomic.Int64
	addr     atomic.Value
}

type Option func(*Server)

func WithLogger(l logging.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithClock sets the clock used for token expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

func New(cfg Config, opts ...Option) *Server {
	s := &Server{
		cfg:    cfg,
		secret: []byte(cfg.SecretKey),
		logger: logging.Discard(),
		now:    time.Now,
		users:  newUserStore(),
		books:  newCatalogue(),
	}
	for _, o := range opts {
		o(s)
	}
	s.logger = s.logger.With("module", "devserver")
	s.router = s.routes()

	if cfg.SeedUserEmail != "" {
		if _, err := s.users.create(cfg.SeedUserEmail, cfg.SeedUserPassword, "Reader"); err != nil {
			s.logger.Warn(context.Background(), "seed user", "error", err)
		}
	}
	if cfg.SeedBooks {
		s.seedBooks()
	}
	return s
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.requestLogger)

	r.HandleFunc("/auth/register", s.handleRegister).Methods(http.MethodPost)
	r.HandleFunc("/auth/login", s.handleLogin).Methods(http.MethodPost)
	r.HandleFunc("/auth/refresh", s.handleRefresh).Methods(http.MethodPost)
	r.HandleFunc("/auth/logout", s.handleLogout).Methods(http.MethodPost)

	api := r.NewRoute().Subrouter()
	api.Use(s.requireAuth)
	api.HandleFunc("/users/me", s.handleMe).Methods(http.MethodGet)
	api.HandleFunc("/books", s.handleListBooks).Methods(http.MethodGet)
	api.HandleFunc("/books", s.handleUploadBook).Methods(http.MethodPost)
	api.HandleFunc("/books/{id}", s.handleGetBook).Methods(http.MethodGet)
	api.HandleFunc("/books/{id}/ratings", s.handleRateBook).Methods(http.MethodPost)
	api.HandleFunc("/books/{id}/chat", s.handleChat).Methods(http.MethodPost)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "no such route")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
	})
	return r
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// RefreshCalls returns how many times POST /auth/refresh was hit.
func (s *Server) RefreshCalls() int64 {
	return s.refreshN.Load()
}

// Addr is the bound address once Run is listening.
func (s *Server) Addr() string {
	if v, ok := s.addr.Load().(string); ok {
		return v
	}
	return ""
}

// RegisterUser creates an account without going through HTTP.
func (s *Server) RegisterUser(email, password, name string) (models.User, error) {
	return s.users.create(email, password, name)
}

// IssueTokens mints a pair for userID whose access token expires at exp.
func (s *Server) IssueTokens(userID string, exp time.Time) (models.TokenPair, error) {
	access, err := GenerateToken(userID, s.secret, exp)
	if err != nil {
		return models.TokenPair{}, err
	}
	refresh, err := common.MakeRandHexString(32)
	if err != nil {
		return models.TokenPair{}, err
	}
	s.users.addSession(refresh, userID, s.now().Add(s.cfg.RefreshTokenTTL))
	return models.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *Server) issue(userID string) (models.TokenPair, error) {
	return s.IssueTokens(userID, s.now().Add(s.cfg.AccessTokenTTL))
}

// Run serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	s.addr.Store(listen.Addr().String())

	srv := &http.Server{Handler: s.router, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping dev server...")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting dev server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) seedBooks() {
	now := s.now()
	seed := []models.NewBook{
		{Title: "The Go Programming Language", Author: "Alan Donovan, Brian Kernighan", Description: "A tour of Go from the ground up."},
		{Title: "Designing Data-Intensive Applications", Author: "Martin Kleppmann", Description: "Storage, replication and stream processing."},
		{Title: "Moby-Dick", Author: "Herman Melville", Description: "A whaling voyage and an obsession."},
	}
	for i, b := range seed {
		s.books.add(b, "", nil, "", now.Add(time.Duration(i)*time.Second))
	}
}
