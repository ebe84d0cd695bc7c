// Package client is the Go SDK for the OmniRoute HTTP API. All calls return
// the server's correlation ID alongside the result, so callers can reference
// the matching audit entry.
package client

import (
	"net/http"
	"net/url"
	"strings"
	"time"
)

type Client struct {
	baseURL    string
	authToken  string
	httpClient *http.Client
}

type Option func(*Client)

// WithAuthToken attaches an admin bearer token to every request.
func WithAuthToken(token string) Option {
	return func(c *Client) {
		c.authToken = token
	}
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func New(server string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(server, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type urlBuilder struct {
	base   string
	path   string
	params map[string]string
	query  url.Values
}

func (c *Client) url() *urlBuilder {
	return &urlBuilder{
		base:   c.baseURL,
		params: map[string]string{},
		query:  url.Values{},
	}
}

func (b *urlBuilder) setPath(path string) *urlBuilder {
	b.path = path
	return b
}

// setPathParam substitutes a "{name}" placeholder in the route pattern.
func (b *urlBuilder) setPathParam(key, value string) *urlBuilder {
	b.params[key] = value
	return b
}

func (b *urlBuilder) addQueryParam(key string, value any) *urlBuilder {
	b.query.Add(key, toString(value))
	return b
}

func (b *urlBuilder) build() string {
	path := b.path
	for key, value := range b.params {
		path = strings.ReplaceAll(path, "{"+key+"}", url.PathEscape(value))
	}
	out := b.base + path
	if len(b.query) > 0 {
		out += "?" + b.query.Encode()
	}
	return out
}
