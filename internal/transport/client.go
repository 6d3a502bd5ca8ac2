// Package transport provides authenticated HTTP client functionality shared
// by the directory adapters. Proxy configuration is left to the standard
// http.ProxyFromEnvironment behavior of the default transport.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/groupsync/groupsync/pkg/errors"
)

// DefaultHTTPTimeout is the default timeout for HTTP requests.
var DefaultHTTPTimeout = 30 * time.Second

// Client provides HTTP client functionality with authentication and
// directory-specific headers applied to every request.
type Client struct {
	http      *http.Client
	auth      Authenticator
	directory string
	headers   map[string]string
}

// Option configures a Client.
type Option func(*Client)

// WithHeader adds a header applied to every request. It overrides the
// defaults set by the client for the same header name.
func WithHeader(name, value string) Option {
	return func(c *Client) {
		c.headers[name] = value
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		c.http = h
	}
}

// New creates a new transport client for a named directory with the
// specified authenticator.
func New(directory string, auth Authenticator, opts ...Option) *Client {
	if auth == nil {
		auth = &NoAuth{}
	}
	c := &Client{
		http:      &http.Client{Timeout: DefaultHTTPTimeout},
		auth:      auth,
		directory: directory,
		headers:   make(map[string]string),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Directory returns the directory name this client talks to.
func (c *Client) Directory() string {
	return c.directory
}

// Do performs an HTTP request with authentication and common headers applied.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	c.auth.Apply(req)

	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}
	if req.Method == http.MethodPost || req.Method == http.MethodPut || req.Method == http.MethodPatch {
		if req.Header.Get("Content-Type") == "" {
			req.Header.Set("Content-Type", "application/json")
		}
	}
	for name, value := range c.headers {
		req.Header.Set(name, value)
	}

	return c.http.Do(req)
}

// Get performs a GET request against the given URL.
func (c *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &errors.ValidationError{Field: "url", Value: url, Message: err.Error()}
	}
	return c.Do(req)
}

// Patch performs a PATCH request with a JSON-encoded body.
func (c *Client) Patch(ctx context.Context, url string, body any) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, &errors.ValidationError{Field: "body", Message: err.Error()}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, url, bytes.NewReader(payload))
	if err != nil {
		return nil, &errors.ValidationError{Field: "url", Value: url, Message: err.Error()}
	}
	return c.Do(req)
}
