// Package client is the HTTP adapter used by scenarios. It sends one request at a
// time and captures the response as an immutable snapshot.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// DefaultTimeout bounds a single request when Options.Timeout is zero.
const DefaultTimeout = 30 * time.Second

// Doer sends one request and captures its response.
type Doer interface {
	Do(ctx context.Context, req Request) (*Response, error)
}

// Adapter is the boundary scenarios depend on: a Doer that also knows its base
// URL and can lend its transport to token endpoints.
type Adapter interface {
	Doer
	BaseURL() string
	ResolveURL(path string, query map[string]string) (string, error)
	HTTP() *http.Client
	Close()
}

var _ Adapter = (*HTTPClient)(nil)

// Request describes an HTTP request relative to the client's base URL.
type Request struct {
	Method  string            `json:"method" yaml:"method"`
	Path    string            `json:"path" yaml:"path"`
	Headers map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	Query   map[string]string `json:"query,omitempty" yaml:"query,omitempty"`
	Body    any               `json:"body,omitempty" yaml:"body,omitempty"`
}

// TransportError means the request never produced a response.
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Options configures an HTTPClient.
type Options struct {
	BaseURL        string
	Timeout        time.Duration
	DefaultHeaders map[string]string
	// RateLimit caps outbound requests per second. Zero disables pacing.
	RateLimit float64
	Transport http.RoundTripper
	Logger    *slog.Logger
}

// HTTPClient implements Adapter over net/http.
type HTTPClient struct {
	baseURL string
	headers map[string]string
	client  *http.Client
	limiter *rate.Limiter
	logger  *slog.Logger
}

// New creates a client. Each scenario gets its own client so connection state
// never leaks between scenarios.
func New(opts Options) *HTTPClient {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	transport := opts.Transport
	if transport == nil {
		transport = http.DefaultTransport.(*http.Transport).Clone()
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.RateLimit > 0 {
		burst := int(opts.RateLimit)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	headers := make(map[string]string, len(opts.DefaultHeaders))
	for k, v := range opts.DefaultHeaders {
		headers[k] = v
	}

	return &HTTPClient{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		headers: headers,
		client:  &http.Client{Timeout: timeout, Transport: transport},
		limiter: limiter,
		logger:  logger,
	}
}

// BaseURL returns the configured base URL without a trailing slash.
func (c *HTTPClient) BaseURL() string {
	return c.baseURL
}

// Close releases idle connections held by the client.
func (c *HTTPClient) Close() {
	c.client.CloseIdleConnections()
}

// HTTP exposes the underlying client for collaborators such as token endpoints.
func (c *HTTPClient) HTTP() *http.Client {
	return c.client
}

// ResolveURL joins path onto the base URL and merges query parameters.
// Absolute URLs are used as-is.
func (c *HTTPClient) ResolveURL(path string, query map[string]string) (string, error) {
	raw := path
	if !strings.HasPrefix(path, "http://") && !strings.HasPrefix(path, "https://") {
		if !strings.HasPrefix(path, "/") {
			path = "/" + path
		}
		raw = c.baseURL + path
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid url %q: %w", raw, err)
	}
	if len(query) > 0 {
		q := u.Query()
		for k, v := range query {
			q.Set(k, v)
		}
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

// Do sends the request and reads the whole body. Duration covers dispatch to
// the last body byte.
func (c *HTTPClient) Do(ctx context.Context, req Request) (*Response, error) {
	method := strings.ToUpper(req.Method)
	target, err := c.ResolveURL(req.Path, req.Query)
	if err != nil {
		return nil, err
	}

	var bodyReader io.Reader
	if req.Body != nil {
		jsonBody, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for key, value := range c.headers {
		httpReq.Header.Set(key, value)
	}
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &TransportError{Method: method, URL: target, Err: err}
	}

	startTime := time.Now()
	httpResp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, &TransportError{Method: method, URL: target, Err: err}
	}
	defer httpResp.Body.Close()

	bodyBytes, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, &TransportError{Method: method, URL: target, Err: fmt.Errorf("failed to read response: %w", err)}
	}
	duration := time.Since(startTime)

	c.logger.Debug("request completed",
		"method", method,
		"url", target,
		"status", httpResp.StatusCode,
		"duration_ms", duration.Milliseconds(),
		"bytes", len(bodyBytes),
	)

	return NewResponse(httpResp.StatusCode, httpResp.Header, bodyBytes, duration), nil
}
