package devserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/bookshelf/internal/client/models"
	"github.com/dmitrijs2005/bookshelf/internal/common"
	"github.com/gorilla/mux"
)

const maxUploadBytes = 50 << 20

type ctxKey string

const userIDKey ctxKey = "userID"

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON body")
		return false
	}
	return true
}

func userID(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug(r.Context(), "request",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", r.Header.Get(common.RequestIDHeaderName),
			"duration", time.Since(start))
	})
}

func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := r.Header.Get(common.AuthorizationHeaderName)
		if !strings.HasPrefix(h, common.BearerPrefix) {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing token")
			return
		}

		id, err := GetUserIDFromToken(strings.TrimPrefix(h, common.BearerPrefix), s.secret, s.now)
		switch {
		case errors.Is(err, common.ErrTokenExpired):
			writeError(w, http.StatusUnauthorized, "TOKEN_EXPIRED", "access token expired")
			return
		case err != nil:
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var in credentialsRequest
	if !decodeBody(w, r, &in) {
		return
	}
	if !strings.Contains(in.Email, "@") || in.Password == "" {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "email and password are required")
		return
	}

	u, err := s.users.create(in.Email, in.Password, in.Name)
	if errors.Is(err, errEmailTaken) {
		writeError(w, http.StatusConflict, "EMAIL_TAKEN", err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}
	s.logger.Info(r.Context(), "Registered", "user_id", u.ID)
	s.writeSession(w, r, http.StatusCreated, u)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in credentialsRequest
	if !decodeBody(w, r, &in) {
		return
	}
	u, err := s.users.authenticate(in.Email, in.Password)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "invalid email or password")
		return
	}
	s.writeSession(w, r, http.StatusOK, u)
}

func (s *Server) writeSession(w http.ResponseWriter, r *http.Request, status int, u models.User) {
	pair, err := s.issue(u.ID)
	if err != nil {
		s.logger.Error(r.Context(), err.Error())
		writeError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}
	writeJSON(w, status, models.LoginResponse{TokenPair: pair, User: u})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	s.refreshN.Add(1)

	var in refreshRequest
	if !decodeBody(w, r, &in) {
		return
	}

	id, err := s.users.consumeSession(in.RefreshToken, s.now())
	if err != nil {
		code := "INVALID_REFRESH_TOKEN"
		if errors.Is(err, common.ErrRefreshTokenExpired) {
			code = "REFRESH_TOKEN_EXPIRED"
		}
		writeError(w, http.StatusUnauthorized, code, err.Error())
		return
	}

	pair, err := s.issue(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}
	s.logger.Info(r.Context(), "Tokens refreshed", "user_id", id)
	writeJSON(w, http.StatusOK, pair)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	var in refreshRequest
	if !decodeBody(w, r, &in) {
		return
	}
	s.users.dropSession(in.RefreshToken)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	u, err := s.users.get(userID(r.Context()))
	if err != nil {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "unknown user")
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func queryInt(r *http.Request, name string, def, max int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil || v < 1 {
		return def
	}
	if max > 0 && v > max {
		return max
	}
	return v
}

func (s *Server) handleListBooks(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1, 0)
	limit := queryInt(r, "limit", 20, 100)
	writeJSON(w, http.StatusOK, s.books.list(r.URL.Query().Get("search"), page, limit))
}

func (s *Server) handleGetBook(w http.ResponseWriter, r *http.Request) {
	b, err := s.books.get(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusNotFound, "BOOK_NOT_FOUND", "book not found")
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (s *Server) handleUploadBook(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid multipart body")
		return
	}

	meta := models.NewBook{
		Title:       strings.TrimSpace(r.FormValue("title")),
		Author:      strings.TrimSpace(r.FormValue("author")),
		Description: strings.TrimSpace(r.FormValue("description")),
	}
	if meta.Title == "" {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "title is required")
		return
	}

	f, hdr, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "file is required")
		return
	}
	defer f.Close()
	content, err := io.ReadAll(f)
	if err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "could not read file")
		return
	}

	b := s.books.add(meta, hdr.Filename, content, userID(r.Context()), s.now())
	s.logger.Info(r.Context(), "Book uploaded", "book_id", b.ID, "bytes", len(content))
	writeJSON(w, http.StatusCreated, b)
}

func (s *Server) handleRateBook(w http.ResponseWriter, r *http.Request) {
	var in models.Rating
	if !decodeBody(w, r, &in) {
		return
	}
	if err := in.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	b, err := s.books.rate(mux.Vars(r)["id"], userID(r.Context()), in.Score)
	if err != nil {
		writeError(w, http.StatusNotFound, "BOOK_NOT_FOUND", "book not found")
		return
	}
	writeJSON(w, http.StatusOK, b)
}

type chatRequest struct {
	Question string `json:"question"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var in chatRequest
	if !decodeBody(w, r, &in) {
		return
	}
	if strings.TrimSpace(in.Question) == "" {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "question is required")
		return
	}

	a, err := s.books.answer(mux.Vars(r)["id"], in.Question)
	if err != nil {
		writeError(w, http.StatusNotFound, "BOOK_NOT_FOUND", "book not found")
		return
	}
	writeJSON(w, http.StatusOK, a)
}
