// Package apiclient talks to the admin REST backend. Every response is
// wrapped in a {"data": ...} envelope; failures are mapped to adminerr API
// errors carrying the backend message and any field errors.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-gridform/pkg/adminerr"
	"github.com/goliatone/go-gridform/pkg/appctx"
)

// DefaultTimeout applies when no HTTP client is supplied.
const DefaultTimeout = 30 * time.Second

const maxErrorBody = 1 << 20

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.http = client
		}
	}
}

// WithTimeout sets the timeout of the default HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithLogger sets the client logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithAppContext supplies the token source used when the request context
// carries no app context.
func WithAppContext(app *appctx.Context) Option {
	return func(c *Client) {
		c.app = app
	}
}

// Client is safe for concurrent use.
type Client struct {
	base    *url.URL
	http    *http.Client
	timeout time.Duration
	app     *appctx.Context
	logger  *zap.Logger
}

// New returns a client for the backend at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimSpace(baseURL)
	if trimmed == "" {
		return nil, errors.New("apiclient: base url is required")
	}
	base, err := url.Parse(strings.TrimRight(trimmed, "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("apiclient: parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("apiclient: base url %q must be absolute", baseURL)
	}

	c := &Client{base: base, timeout: DefaultTimeout, logger: zap.NewNop()}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: c.timeout}
	}
	return c, nil
}

type envelope struct {
	Data json.RawMessage `json:"data"`
}

// do sends one request. A nil body sends no payload; out may be nil.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, out any) error {
	target := c.base.ResolveReference(&url.URL{Path: strings.TrimPrefix(path, "/")})
	if len(query) > 0 {
		target.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("apiclient: encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(encoded)
	}
	req, err := http.NewRequestWithContext(ctx, method, target.String(), reader)
	if err != nil {
		return fmt.Errorf("apiclient: build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.token(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("api request failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return adminerr.NewTransport(err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return adminerr.NewTransport(err)
	}
	c.logger.Debug("api request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(started)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return adminerr.NewAPI(resp.StatusCode, adminerr.MessageFromBody(payload, "")).
			WithFields(adminerr.FieldsFromBody(payload))
	}
	if out == nil || len(bytes.TrimSpace(payload)) == 0 {
		return nil
	}

	var env envelope
	data := payload
	if err := json.Unmarshal(payload, &env); err == nil && len(env.Data) > 0 {
		data = env.Data
	}
	if err := json.Unmarshal(data, out); err != nil {
		return adminerr.NewAPI(resp.StatusCode, adminerr.GenericMessage).
			WithCause(fmt.Errorf("apiclient: decode %s %s: %w", method, path, err))
	}
	return nil
}

func (c *Client) token(ctx context.Context) string {
	if app, ok := appctx.FromContext(ctx); ok && app != nil {
		if token := app.Token(); token != "" {
			return token
		}
	}
	if c.app != nil {
		return c.app.Token()
	}
	return ""
}

// resourcePath builds "api/{resource}/{parts...}" in unescaped form.
func resourcePath(resource string, parts ...string) string {
	segments := []string{"api", strings.Trim(resource, "/")}
	segments = append(segments, parts...)
	return strings.Join(segments, "/")
}
