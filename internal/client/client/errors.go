package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

var (
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = errors.New("unauthorized")

	errMalformedTokens = errors.New("malformed token response")
)

// CodeNetworkError is used whenever the server gave no code of its own.
const CodeNetworkError = "NETWORK_ERROR"

// APIError is the normalized shape of every failed request.
//
// Status is the HTTP status, or 0 when no response was received.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`

	err error
}

func (e *APIError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s (%d): %s", e.Code, e.Status, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.err
}

// Is lets callers match by category with errors.Is.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized
	case ErrUnavailable:
		return e.Status == 0
	}
	return false
}

// networkError wraps a failure that produced no HTTP response.
func networkError(err error) *APIError {
	msg := err.Error()
	var uerr *url.Error
	if errors.As(err, &uerr) {
		msg = uerr.Err.Error()
	}
	return &APIError{Code: CodeNetworkError, Message: msg, err: err}
}

type errorBody struct {
	Code    string     `json:"code"`
	Message string     `json:"message"`
	Error   *errorBody `json:"error"`
}

// errorFromResponse prefers the server's {code, message}, also accepted
// nested under "error".
func errorFromResponse(status int, body []byte) *APIError {
	e := &APIError{
		Code:    CodeNetworkError,
		Message: fmt.Sprintf("request failed with status code %d", status),
		Status:  status,
	}

	var eb errorBody
	if len(body) == 0 || json.Unmarshal(body, &eb) != nil {
		return e
	}
	if eb.Error != nil && eb.Code == "" && eb.Message == "" {
		eb = *eb.Error
	}
	if code := strings.TrimSpace(eb.Code); code != "" {
		e.Code = code
	}
	if eb.Message != "" {
		e.Message = eb.Message
	}
	return e
}
