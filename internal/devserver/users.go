package devserver

import (
	"crypto/subtle"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/bookshelf/internal/client/models"
	"github.com/dmitrijs2005/bookshelf/internal/common"
	"github.com/dmitrijs2005/bookshelf/internal/cryptox"
	"github.com/google/uuid"
)

type account struct {
	user     models.User
	salt     []byte
	verifier []byte
}

type refreshToken struct {
	userID    string
	expiresAt time.Time
}

// userStore keeps accounts and live refresh tokens. A refresh token is
// deleted when used, so every token works exactly once.
type userStore struct {
	mu       sync.Mutex
	byEmail  map[string]*account
	byID     map[string]*account
	sessions map[string]refreshToken
}

func newUserStore() *userStore {
	return &userStore{
		byEmail:  map[string]*account{},
		byID:     map[string]*account{},
		sessions: map[string]refreshToken{},
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *userStore) create(email, password, name string) (models.User, error) {
	email = normalizeEmail(email)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byEmail[email]; ok {
		return models.User{}, errEmailTaken
	}

	salt := common.GenerateRandByteArray(16)
	a := &account{
		user:     models.User{ID: uuid.NewString(), Email: email, Name: name},
		salt:     salt,
		verifier: cryptox.DeriveKey([]byte(password), salt),
	}
	s.byEmail[email] = a
	s.byID[a.user.ID] = a
	return a.user, nil
}

func (s *userStore) authenticate(email, password string) (models.User, error) {
	s.mu.Lock()
	a, ok := s.byEmail[normalizeEmail(email)]
	s.mu.Unlock()
	if !ok {
		return models.User{}, common.ErrorUnauthorized
	}

	candidate := cryptox.DeriveKey([]byte(password), a.salt)
	if subtle.ConstantTimeCompare(a.verifier, candidate) != 1 {
		return models.User{}, common.ErrorUnauthorized
	}
	return a.user, nil
}

func (s *userStore) get(id string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.byID[id]
	if !ok {
		return models.User{}, common.ErrorNotFound
	}
	return a.user, nil
}

func (s *userStore) addSession(token, userID string, exp time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[token] = refreshToken{userID: userID, expiresAt: exp}
}

// consumeSession removes token and returns its owner.
func (s *userStore) consumeSession(token string, now time.Time) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rt, ok := s.sessions[token]
	if !ok {
		return "", common.ErrInvalidToken
	}
	delete(s.sessions, token)
	if !now.Before(rt.expiresAt) {
		return "", common.ErrRefreshTokenExpired
	}
	return rt.userID, nil
}

func (s *userStore) dropSession(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
}
