package client

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// Request is a replayable outbound call. Body is kept in memory so the same
// request can be sent again after a token refresh.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   []byte

	retried bool
}

func NewRequest(method, path string) *Request {
	return &Request{Method: method, Path: path, Header: http.Header{}}
}

// NewJSONRequest encodes in as the body. A nil in sends no body.
func NewJSONRequest(method, path string, in any) (*Request, error) {
	r := NewRequest(method, path)
	if in == nil {
		return r, nil
	}
	b, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("encode %s %s: %w", method, path, err)
	}
	r.Body = b
	r.Header.Set("Content-Type", "application/json")
	return r, nil
}

// Retried reports whether this request is already a replay.
func (r *Request) Retried() bool {
	return r.retried
}

func (r *Request) clone() *Request {
	c := *r
	c.Header = r.Header.Clone()
	if c.Header == nil {
		c.Header = http.Header{}
	}
	if r.Query != nil {
		c.Query = url.Values{}
		for k, v := range r.Query {
			c.Query[k] = append([]string(nil), v...)
		}
	}
	return &c
}

// asRetry returns a copy marked as replayed; r itself is left untouched.
func (r *Request) asRetry() *Request {
	c := r.clone()
	c.retried = true
	return c
}

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

func (r *Response) Decode(out any) error {
	if out == nil || len(r.Body) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.Body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
