// Package upstream is the HTTP plumbing shared by the issue-tracker,
// source-control and test-repository clients.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Client sends JSON requests to one remote service.
type Client struct {
	service    string
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger
	auth       func(*http.Request)
	headers    http.Header
}

// Option configures the Client during construction.
type Option func(*clientConfig) error

type clientConfig struct {
	httpClient *http.Client
	logger     *zerolog.Logger
	timeout    time.Duration
	auth       func(*http.Request)
	headers    http.Header
}

// New creates a client for service rooted at baseURL.
func New(service, baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("%s: base URL is required", service)
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("%s: invalid base URL: %w", service, err)
	}

	cfg := &clientConfig{headers: make(http.Header)}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	httpClient := cfg.httpClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if cfg.timeout > 0 {
		// Copy so a shared client such as http.DefaultClient is left alone.
		c := *httpClient
		c.Timeout = cfg.timeout
		httpClient = &c
	}

	logger := zerolog.Nop()
	if cfg.logger != nil {
		logger = cfg.logger.With().Str("service", service).Logger()
	}

	return &Client{
		service:    service,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
		logger:     logger,
		auth:       cfg.auth,
		headers:    cfg.headers,
	}, nil
}

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cfg *clientConfig) error {
		cfg.httpClient = c
		return nil
	}
}

// WithLogger configures request logging.
func WithLogger(l zerolog.Logger) Option {
	return func(cfg *clientConfig) error {
		cfg.logger = &l
		return nil
	}
}

// WithTimeout sets a timeout on the HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(cfg *clientConfig) error {
		if d < 0 {
			return fmt.Errorf("timeout must not be negative")
		}
		cfg.timeout = d
		return nil
	}
}

// WithBearerToken sends token as an Authorization bearer header.
func WithBearerToken(token string) Option {
	return func(cfg *clientConfig) error {
		if token != "" {
			cfg.auth = func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }
		}
		return nil
	}
}

// WithBasicAuth sends HTTP basic credentials.
func WithBasicAuth(user, password string) Option {
	return func(cfg *clientConfig) error {
		if user != "" || password != "" {
			cfg.auth = func(r *http.Request) { r.SetBasicAuth(user, password) }
		}
		return nil
	}
}

// WithHeader adds a header to every request.
func WithHeader(key, value string) Option {
	return func(cfg *clientConfig) error {
		cfg.headers.Set(key, value)
		return nil
	}
}

// Service returns the name used in errors and logs.
func (c *Client) Service() string { return c.service }

// URL joins the base URL, path and query.
func (c *Client) URL(path string, query url.Values) string {
	u := c.baseURL + "/" + strings.TrimPrefix(path, "/")
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// DoJSON sends body as JSON when non-nil and decodes the response into dst
// when non-nil. Error statuses return an *Error; transport failures match
// ErrUnavailable.
func (c *Client) DoJSON(ctx context.Context, method, url, operation string, body, dst any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", operation, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("%s: create request: %w", operation, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range c.headers {
		req.Header[k] = v
	}
	if c.auth != nil {
		c.auth(req)
	}

	c.logger.Debug().Str("operation", operation).Str("method", method).Str("url", url).Msg("API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &transportError{op: c.service + ": " + operation, err: err}
	}
	defer resp.Body.Close()

	c.logger.Debug().Str("operation", operation).Int("status", resp.StatusCode).Msg("API response")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		return &Error{
			Service:    c.service,
			Operation:  operation,
			StatusCode: resp.StatusCode,
			Message:    errorMessage(respBody, resp.Status),
		}
	}

	if dst != nil {
		if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
			return fmt.Errorf("%s: %s: decode response: %w", c.service, operation, err)
		}
	}
	return nil
}

// errorMessage pulls a message out of the common JSON error shapes.
func errorMessage(body []byte, status string) string {
	var shaped struct {
		Message       string   `json:"message"`
		Error         string   `json:"error"`
		ErrorMessages []string `json:"errorMessages"`
	}
	if json.Unmarshal(body, &shaped) == nil {
		switch {
		case shaped.Message != "":
			return shaped.Message
		case shaped.Error != "":
			return shaped.Error
		case len(shaped.ErrorMessages) > 0:
			return strings.Join(shaped.ErrorMessages, "; ")
		}
	}
	if msg := strings.TrimSpace(string(body)); msg != "" {
		return msg
	}
	return status
}
