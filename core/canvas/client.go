// Package canvas is a small client for the Canvas LMS REST API.
// It performs authenticated GET/PUT requests, follows Link-header
// pagination and classifies failures as *APIError.
package canvas

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	neturl "net/url"
	"strings"
	"time"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "canvaspipe/1.0 (https://github.com/gaurav-prasanna/canvaspipe)"
	perPage          = 100
)

// ErrNotConfigured is returned by every request when the client has no
// base URL or token.
var ErrNotConfigured = errors.New("canvas API credentials not configured: set CANVAS_BASE_URL and CANVAS_API_TOKEN")

// Client talks to one Canvas instance with one API token.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	logger  *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout (default 30s).
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a Client for baseURL (e.g. https://clc.instructure.com).
// A trailing slash on baseURL is ignored.
func New(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// get decodes the JSON response of a single GET into v.
func (c *Client) get(ctx context.Context, endpoint string, v any) error {
	_, err := c.do(ctx, http.MethodGet, c.baseURL+endpoint, endpoint, nil, v)
	return err
}

// getAll follows rel="next" links and concatenates every page of results.
func getAll[T any](ctx context.Context, c *Client, endpoint string) ([]T, error) {
	var all []T
	next := c.baseURL + endpoint
	for next != "" {
		var batch []T
		header, err := c.do(ctx, http.MethodGet, next, endpoint, nil, &batch)
		if err != nil {
			return nil, err
		}
		all = append(all, batch...)
		next = nextLink(header.Get("Link"))
		if next != "" && !c.sameHost(next) {
			return nil, &APIError{Endpoint: endpoint, Message: "pagination link points to another host: " + next}
		}
	}
	return all, nil
}

// sameHost reports whether rawURL has the scheme and host of baseURL.
func (c *Client) sameHost(rawURL string) bool {
	u, err := neturl.Parse(rawURL)
	if err != nil {
		return false
	}
	base, err := neturl.Parse(c.baseURL)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Scheme, base.Scheme) && strings.EqualFold(u.Host, base.Host)
}

func (c *Client) do(ctx context.Context, method, url, endpoint string, body, v any) (http.Header, error) {
	if c.baseURL == "" || c.token == "" {
		return nil, ErrNotConfigured
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", defaultUserAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, &APIError{Endpoint: endpoint, Message: "request timed out"}
		}
		return nil, fmt.Errorf("fetching %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("canvas request",
		"method", method,
		"endpoint", endpoint,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newAPIError(resp, endpoint)
	}

	if v == nil {
		return resp.Header, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		if isTimeout(err) {
			return nil, &APIError{Endpoint: endpoint, Message: "request timed out"}
		}
		return nil, fmt.Errorf("decoding %s: %w", endpoint, err)
	}
	return resp.Header, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// nextLink returns the rel="next" URL of an RFC 8288 Link header, or "".
func nextLink(header string) string {
	for _, part := range strings.Split(header, ",") {
		segs := strings.Split(part, ";")
		if len(segs) < 2 {
			continue
		}
		target := strings.TrimSpace(segs[0])
		if !strings.HasPrefix(target, "<") || !strings.HasSuffix(target, ">") {
			continue
		}
		for _, param := range segs[1:] {
			param = strings.ReplaceAll(strings.TrimSpace(param), " ", "")
			if param == `rel="next"` || param == "rel=next" {
				return target[1 : len(target)-1]
			}
		}
	}
	return ""
}
