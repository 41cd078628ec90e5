package admin

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

	"github.com/MrEthical07/goOwner/internal/apierror"
	"github.com/MrEthical07/goOwner/internal/httpclient"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrUnauthorized wraps every 401 answer. The stored credential is no longer accepted.
	ErrUnauthorized = errors.New("admin: unauthorized")
	// ErrNotFound wraps every 404 answer.
	ErrNotFound = errors.New("admin: not found")
	// ErrDecode reports a 2xx answer whose body could not be decoded.
	ErrDecode = errors.New("admin: decode response")
)

// APIError is a non-2xx backend answer with its decoded detail message.
type APIError = apierror.Error

// HeaderSource supplies the credential header for each request.
type HeaderSource interface {
	AuthHeader(ctx context.Context) http.Header
}

// Client calls the admin API under baseURL.
type Client struct {
	baseURL    string
	apiPrefix  string
	auth       HeaderSource
	httpClient *http.Client
	logger     *zap.Logger
	userAgent  string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		if c != nil {
			cl.httpClient = c
		}
	}
}

// WithTimeout builds the default client with a whole-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(cl *Client) {
		cl.httpClient = httpclient.New(httpclient.WithTimeout(d))
	}
}

// WithLogger sets the logger. Request and response bodies are never logged.
func WithLogger(l *zap.Logger) Option {
	return func(cl *Client) {
		if l != nil {
			cl.logger = l
		}
	}
}

// WithAPIPrefix changes the path prefix (default "/api").
func WithAPIPrefix(prefix string) Option {
	return func(cl *Client) { cl.apiPrefix = prefix }
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(cl *Client) { cl.userAgent = ua }
}

// New returns a client for the backend at baseURL. auth may be nil, in which case
// requests go out without credentials.
func New(baseURL string, auth HeaderSource, opts ...Option) *Client {
	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		apiPrefix: "/api",
		auth:      auth,
		logger:    zap.NewNop(),
		userAgent: "goowner-admin",
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = httpclient.New()
	}
	return c
}

func (c *Client) endpoint(path string, query url.Values) string {
	prefix := strings.Trim(c.apiPrefix, "/")
	var b strings.Builder
	b.WriteString(c.baseURL)
	if prefix != "" {
		b.WriteByte('/')
		b.WriteString(prefix)
	}
	b.WriteString("/admin/")
	b.WriteString(strings.TrimLeft(path, "/"))
	if len(query) > 0 {
		b.WriteByte('?')
		b.WriteString(query.Encode())
	}
	return b.String()
}

// do sends one request and decodes a 2xx JSON body into out when out is non-nil.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("admin: encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, query), body)
	if err != nil {
		return fmt.Errorf("admin: build request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.auth != nil {
		for k, vs := range c.auth.AuthHeader(ctx) {
			for _, v := range vs {
				req.Header.Add(k, v)
			}
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("admin request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.String("request_id", requestID),
			zap.Error(err),
		)
		return fmt.Errorf("admin: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("admin request",
		zap.String("method", method),
		zap.String("path", path),
		zap.String("request_id", requestID),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	if apiErr := apierror.FromResponse(resp); apiErr != nil {
		switch apiErr.StatusCode {
		case http.StatusUnauthorized:
			return fmt.Errorf("%w: %w", ErrUnauthorized, apiErr)
		case http.StatusNotFound:
			return fmt.Errorf("%w: %w", ErrNotFound, apiErr)
		default:
			return apiErr
		}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %s %s: %v", ErrDecode, method, path, err)
	}
	return nil
}
