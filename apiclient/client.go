// Package apiclient posts signups to the remote signup API.
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

	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/pthm/signupform/form"
)

var (
	// ErrUnexpectedStatus is returned for any non-2xx response.
	ErrUnexpectedStatus = errors.New("apiclient: unexpected status")
	// ErrDecode is returned when the response body is not a signup response.
	ErrDecode = errors.New("apiclient: undecodable response")
)

// maxResponseBytes bounds how much of a response body is read.
const maxResponseBytes = 1 << 20

// Client sends one POST per Submit call. It implements form.Submitter.
type Client struct {
	url  string
	http *http.Client
	log  zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client. Its transport is used as is.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.http = c
	}
}

// WithLogger sets the client's logger.
func WithLogger(l zerolog.Logger) Option {
	return func(cl *Client) {
		cl.log = l
	}
}

// New creates a client for the signup endpoint at apiURL. The default HTTP
// client is traced with OpenTelemetry.
func New(apiURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(apiURL)
	if err != nil {
		return nil, fmt.Errorf("apiclient: parse url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("apiclient: url %q must be absolute http(s)", apiURL)
	}

	c := &Client{
		url: u.String(),
		http: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		log: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// URL returns the endpoint the client posts to.
func (c *Client) URL() string {
	return c.url
}

// Submit posts s as JSON and decodes the signup response.
func (c *Client) Submit(ctx context.Context, s form.State) (form.Response, error) {
	body, err := json.Marshal(s)
	if err != nil {
		return form.Response{}, fmt.Errorf("apiclient: encode state: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return form.Response{}, fmt.Errorf("apiclient: new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return form.Response{}, fmt.Errorf("apiclient: post: %w", err)
	}
	defer resp.Body.Close()

	c.log.Debug().Str("url", c.url).Int("status", resp.StatusCode).Msg("signup response")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return form.Response{}, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	var out form.Response
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&out); err != nil {
		return form.Response{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return out, nil
}
