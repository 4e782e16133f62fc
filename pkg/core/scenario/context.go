// Package scenario holds the state of one running scenario: its HTTP client,
// the current response snapshot, the pending request body, credentials,
// captured variables and the last batch of responses.
package scenario

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/blackcoderx/apicheck/pkg/core/assert"
	"github.com/blackcoderx/apicheck/pkg/core/auth"
	"github.com/blackcoderx/apicheck/pkg/core/client"
	"github.com/blackcoderx/apicheck/pkg/core/value"
	"github.com/blackcoderx/apicheck/pkg/core/vars"
	"github.com/blackcoderx/apicheck/pkg/storage"
)

var (
	// ErrNoResponse is returned by assertions that run before any request.
	ErrNoResponse = errors.New("no response captured yet")
	// ErrNoBatch is returned by batch assertions that run before a batch request.
	ErrNoBatch = errors.New("no batch of responses captured yet")
)

// Options configures every Context created from them.
type Options struct {
	BaseURL        string
	RequestTimeout time.Duration
	RateLimit      float64
	DefaultHeaders map[string]string
	Transport      http.RoundTripper
	Logger         *slog.Logger

	// ProjectDir is the .apicheck directory holding requests and fixtures.
	ProjectDir string
	// SchemasDir holds JSON Schema files referenced by name.
	SchemasDir  string
	Environment *storage.Environment

	// BearerToken or APIKey seed the credentials; bearer wins when both are set.
	BearerToken string
	APIKey      string
	OAuth2      auth.ClientCredentials

	// Client replaces the HTTP adapter built from the fields above.
	Client client.Adapter
}

// Context is owned by exactly one scenario and is not safe for concurrent use.
type Context struct {
	ID string

	opts    Options
	client  client.Adapter
	logger  *slog.Logger
	vars    *vars.Store
	creds   auth.Credentials
	pending value.Value
	last    *client.Response
	batch   []*client.Response
}

// New creates a Context with a fresh HTTP client unless opts.Client is set.
func New(opts Options) *Context {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	id := uuid.NewString()
	logger = logger.With("scenario_id", id)

	adapter := opts.Client
	if adapter == nil {
		adapter = client.New(client.Options{
			BaseURL:        opts.BaseURL,
			Timeout:        opts.RequestTimeout,
			DefaultHeaders: opts.DefaultHeaders,
			RateLimit:      opts.RateLimit,
			Transport:      opts.Transport,
			Logger:         logger,
		})
	}

	c := &Context{
		ID:     id,
		opts:   opts,
		client: adapter,
		logger: logger,
		vars:   vars.NewStore(),
	}
	switch {
	case opts.BearerToken != "":
		c.creds.SetBearer(opts.BearerToken)
	case opts.APIKey != "":
		c.creds.SetAPIKey(opts.APIKey)
	}
	return c
}

// Close releases the client's idle connections.
func (c *Context) Close() {
	c.client.Close()
}

func (c *Context) Vars() *vars.Store                 { return c.vars }
func (c *Context) Credentials() *auth.Credentials    { return &c.creds }
func (c *Context) Logger() *slog.Logger              { return c.logger }
func (c *Context) Client() client.Adapter            { return c.client }
func (c *Context) Batch() []*client.Response         { return c.batch }
func (c *Context) Pending() value.Value              { return c.pending }
func (c *Context) Environment() *storage.Environment { return c.opts.Environment }

// PendingFromTable replaces the pending body with the table's key/value rows.
func (c *Context) PendingFromTable(t Table) error {
	c.pending = value.Value{}
	body, err := t.Object()
	if err != nil {
		return err
	}
	c.pending = body
	return nil
}

// PendingFromFixture replaces the pending body with a stored fixture.
func (c *Context) PendingFromFixture(name string) error {
	doc, err := storage.LoadFixture(c.opts.ProjectDir, name)
	if err != nil {
		return err
	}
	c.pending = value.FromInterface(doc)
	return nil
}

// Last returns the current response snapshot.
func (c *Context) Last() (*client.Response, error) {
	if c.last == nil {
		return nil, ErrNoResponse
	}
	return c.last, nil
}

// Body returns the parsed body of the current response. A body that is not
// JSON is an assertion failure.
func (c *Context) Body() (value.Value, error) {
	resp, err := c.Last()
	if err != nil {
		return value.Value{}, err
	}
	return parseBody(resp)
}

func parseBody(resp *client.Response) (value.Value, error) {
	body, err := resp.JSON()
	if err != nil {
		return value.Value{}, &assert.Error{
			Check:    "valid json",
			Expected: "a JSON body",
			Actual:   fmt.Sprintf("%d bytes that do not parse", resp.Size()),
			Detail:   err.Error(),
		}
	}
	return body, nil
}

// BatchBodies parses every body of the last batch.
func (c *Context) BatchBodies() ([]value.Value, error) {
	if len(c.batch) == 0 {
		return nil, ErrNoBatch
	}
	bodies := make([]value.Value, len(c.batch))
	for i, resp := range c.batch {
		b, err := parseBody(resp)
		if err != nil {
			return nil, fmt.Errorf("response %d: %w", i+1, err)
		}
		bodies[i] = b
	}
	return bodies, nil
}

// Elapsed is the measured duration of the current response.
func (c *Context) Elapsed() (time.Duration, error) {
	resp, err := c.Last()
	if err != nil {
		return 0, err
	}
	return resp.Duration, nil
}

// SendOption adjusts one outgoing request.
type SendOption func(*sendConfig)

type sendConfig struct {
	body     bool
	auth     auth.Style
	keyQuery bool
}

// WithPending sends the pending body.
func WithPending() SendOption {
	return func(s *sendConfig) { s.body = true }
}

// WithAuth adds headers for style. The style must be the active credential.
func WithAuth(style auth.Style) SendOption {
	return func(s *sendConfig) { s.auth = style }
}

// WithAPIKeyQuery sends the API key as the api_key query parameter.
func WithAPIKeyQuery() SendOption {
	return func(s *sendConfig) { s.keyQuery = true }
}

// Send issues one request and makes its response the current snapshot. Path
// placeholders {name} are filled from the variable store and {{VAR}} from the
// environment.
func (c *Context) Send(ctx context.Context, method, path string, opts ...SendOption) (*client.Response, error) {
	var sc sendConfig
	for _, opt := range opts {
		opt(&sc)
	}

	req, err := c.build(method, path, sc)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	c.last = resp
	return resp, nil
}

// SendBatch issues count GET requests one after another and keeps them as the
// batch. The current snapshot is left unchanged.
func (c *Context) SendBatch(ctx context.Context, count int, path string) error {
	if count < 1 {
		return fmt.Errorf("batch size must be at least 1, got %d", count)
	}
	req, err := c.build(http.MethodGet, path, sendConfig{})
	if err != nil {
		return err
	}
	batch := make([]*client.Response, 0, count)
	for i := 0; i < count; i++ {
		resp, err := c.client.Do(ctx, req)
		if err != nil {
			return fmt.Errorf("batch request %d of %d: %w", i+1, count, err)
		}
		batch = append(batch, resp)
	}
	c.batch = batch
	return nil
}

// Status performs a GET and returns only the status code. The current
// snapshot is left unchanged.
func (c *Context) Status(ctx context.Context, path string) (int, error) {
	req, err := c.build(http.MethodGet, path, sendConfig{})
	if err != nil {
		return 0, err
	}
	resp, err := c.client.Do(ctx, req)
	if err != nil {
		return 0, err
	}
	return resp.StatusCode, nil
}

// SendSaved sends a request saved under .apicheck/requests.
func (c *Context) SendSaved(ctx context.Context, name string) (*client.Response, error) {
	saved, err := storage.LoadRequest(c.opts.ProjectDir, name)
	if err != nil {
		return nil, err
	}
	req := c.opts.Environment.Apply(saved).ClientRequest()
	if req.Path, err = c.vars.Substitute(req.Path); err != nil {
		return nil, err
	}
	resp, err := c.client.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	c.last = resp
	return resp, nil
}

// SchemaPath resolves a schema name inside the schemas directory.
func (c *Context) SchemaPath(name string) (string, error) {
	if !strings.HasSuffix(name, ".json") {
		name += ".json"
	}
	return storage.ConfinePath(name, c.opts.SchemasDir)
}

// FetchToken runs the OAuth2 client-credentials flow and makes the token the
// active bearer credential. Empty arguments fall back to the configured
// client; a relative token URL is resolved against the base URL.
func (c *Context) FetchToken(ctx context.Context, tokenURL, clientID, clientSecret string) error {
	cc := c.opts.OAuth2
	if tokenURL != "" {
		cc.TokenURL = tokenURL
	}
	if clientID != "" {
		cc.ClientID = clientID
		cc.ClientSecret = clientSecret
	}
	if cc.TokenURL != "" {
		resolved, err := c.client.ResolveURL(c.opts.Environment.Substitute(cc.TokenURL), nil)
		if err != nil {
			return err
		}
		cc.TokenURL = resolved
	}

	token, err := auth.FetchClientCredentialsToken(ctx, c.client.HTTP(), cc)
	if err != nil {
		return err
	}
	c.creds.SetBearer(token)
	c.logger.Debug("oauth2 token acquired", "token_url", cc.TokenURL)
	return nil
}

func (c *Context) build(method, path string, sc sendConfig) (client.Request, error) {
	resolved, err := c.vars.Substitute(c.opts.Environment.Substitute(path))
	if err != nil {
		return client.Request{}, fmt.Errorf("build %s request: %w", method, err)
	}
	req := client.Request{Method: method, Path: resolved}

	if sc.body {
		if c.pending.IsNull() {
			req.Body = value.ObjectValue(map[string]value.Value{})
		} else {
			req.Body = c.pending
		}
	}
	if sc.auth != auth.None {
		headers, err := c.creds.Headers(sc.auth)
		if err != nil {
			return client.Request{}, fmt.Errorf("%s authentication: %w", sc.auth, err)
		}
		req.Headers = headers
	}
	if sc.keyQuery {
		query, err := c.creds.Query()
		if err != nil {
			return client.Request{}, fmt.Errorf("api key query parameter: %w", err)
		}
		req.Query = query
	}
	return req, nil
}
