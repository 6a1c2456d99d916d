// Package api implements the HTTP session against the Robinhood private
// API: fixed protocol headers, the bearer credential, and the
// login/refresh/challenge lifecycle.
package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client handles HTTP requests to the Robinhood API. It is the single
// place the Authorization header is read: callers must not attach
// credentials themselves.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client

	headers map[string]string
	token   string
}

// NewClient creates a new API client with the given base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		headers: map[string]string{
			"Accept":                  "*/*",
			"Accept-Language":         "en;q=1",
			"X-Robinhood-API-Version": "1.0.0",
			"User-Agent":              "rh-shell/1.0",
			"Origin":                  "https://robinhood.com",
		},
	}
}

// Token returns the current access token, empty when unauthenticated.
func (c *Client) Token() string {
	return c.token
}

// SetToken installs the access token. The Authorization header is
// present on requests if and only if the token is non-empty.
func (c *Client) SetToken(token string) {
	c.token = token
}

// ClearToken removes the access token, and with it the Authorization
// header from all subsequent requests.
func (c *Client) ClearToken() {
	c.token = ""
}

// Get performs a GET request to the specified path.
func (c *Client) Get(ctx context.Context, path string) (*http.Response, error) {
	return c.do(ctx, http.MethodGet, c.BaseURL+path, nil)
}

// GetWithParams performs a GET request to the specified path with query parameters.
func (c *Client) GetWithParams(ctx context.Context, path string, params map[string]string) (*http.Response, error) {
	if len(params) > 0 {
		query := url.Values{}
		for k, v := range params {
			query.Set(k, v)
		}
		path = path + "?" + query.Encode()
	}
	return c.do(ctx, http.MethodGet, c.BaseURL+path, nil)
}

// GetURL performs a GET request to an absolute URL. The API hands out
// full URLs in responses (instrument ids, cancel links); those are
// fetched directly rather than re-rooted on BaseURL.
func (c *Client) GetURL(ctx context.Context, rawURL string) (*http.Response, error) {
	return c.do(ctx, http.MethodGet, rawURL, nil)
}

// PostForm performs a form-encoded POST request to the specified path.
func (c *Client) PostForm(ctx context.Context, path string, form url.Values) (*http.Response, error) {
	return c.do(ctx, http.MethodPost, c.BaseURL+path, form)
}

// PostURL performs a form-encoded POST request to an absolute URL.
func (c *Client) PostURL(ctx context.Context, rawURL string, form url.Values) (*http.Response, error) {
	return c.do(ctx, http.MethodPost, rawURL, form)
}

// do performs a single HTTP request with protocol and auth headers
// attached. Network failures wrap ErrTransport; HTTP error statuses are
// returned to the caller for inspection.
func (c *Client) do(ctx context.Context, method, rawURL string, form url.Values) (*http.Response, error) {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=utf-8")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}

	return resp, nil
}
