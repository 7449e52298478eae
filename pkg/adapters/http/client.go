package http

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

	"github.com/KDL-umass/Toybox/pkg/domain"
)

// Client implements ports.Engine and ports.ConfigSource against a Server.
type Client struct {
	baseURL string
	http    *http.Client
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the default client (10s timeout).
func WithHTTPClient(c *http.Client) ClientOption {
	return func(cl *Client) {
		if c != nil {
			cl.http = c
		}
	}
}

// NewClient creates a client for the engine served at baseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GameName returns the remote engine's identity.
func (c *Client) GameName(ctx context.Context) (string, error) {
	var resp struct {
		Game string `json:"game"`
	}
	if err := c.do(ctx, http.MethodGet, "/game", nil, &resp); err != nil {
		return "", err
	}
	return resp.Game, nil
}

// ReadState fetches the remote snapshot.
func (c *Client) ReadState(ctx context.Context) (domain.Snapshot, error) {
	var snap domain.Snapshot
	if err := c.do(ctx, http.MethodGet, "/state", nil, &snap); err != nil {
		return nil, err
	}
	if snap == nil {
		return nil, fmt.Errorf("%w: snapshot is not a JSON object", domain.ErrSchemaMismatch)
	}
	return snap, nil
}

// WriteState replaces the remote snapshot.
func (c *Client) WriteState(ctx context.Context, snap domain.Snapshot) error {
	return c.do(ctx, http.MethodPut, "/state", snap, nil)
}

// Query forwards a named query.
func (c *Client) Query(ctx context.Context, name string, arg any) (any, error) {
	var resp queryResponse
	if err := c.do(ctx, http.MethodPost, "/query/"+url.PathEscape(name), queryRequest{Arg: arg}, &resp); err != nil {
		return nil, err
	}
	return resp.Result, nil
}

// Config fetches the remote engine configuration.
func (c *Client) Config(ctx context.Context) (domain.Snapshot, error) {
	var cfg domain.Snapshot
	if err := c.do(ctx, http.MethodGet, "/config", nil, &cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 300 {
		se := &StatusError{Status: resp.StatusCode}
		var eb errorBody
		if err := json.NewDecoder(resp.Body).Decode(&eb); err == nil {
			se.Code, se.Message = eb.Code, eb.Error
		}
		return se
	}
	if out == nil {
		return nil
	}

	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}
