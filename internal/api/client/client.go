// Package client provides a thin HTTP client for the seller-connect admin API.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"syscall"

	"github.com/go-resty/resty/v2"
)

// Client is a thin HTTP client for the seller-connect admin API.
type Client struct {
	baseURL string
	http    *resty.Client
}

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = resty.NewWithClient(hc)
	}
}

// New creates a new API client targeting the given base URL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    resty.New(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.http.SetBaseURL(c.baseURL)
	return c
}

// APIError is a failed response from the server.
type APIError struct {
	StatusCode     int    `json:"status"`
	Title          string `json:"title"`
	Detail         string `json:"detail"`
	Kind           string `json:"kind,omitempty"`
	Retryable      bool   `json:"retryable"`
	ReauthRequired bool   `json:"reauth_required,omitempty"`
	UpstreamCode   int    `json:"upstream_code,omitempty"`
}

// Error implements error.
func (e *APIError) Error() string {
	msg := fmt.Sprintf("API error (HTTP %d)", e.StatusCode)
	if e.Kind != "" {
		msg += " [" + e.Kind + "]"
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

func (c *Client) do(ctx context.Context, method, path string, body, dst any) error {
	req := c.http.R().SetContext(ctx).SetHeader("Accept", "application/json")
	if body != nil {
		req.SetBody(body)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		if errors.Is(err, syscall.ECONNREFUSED) {
			return fmt.Errorf("API server not running at %s", c.baseURL)
		}
		return fmt.Errorf("sending request: %w", err)
	}

	if resp.IsError() {
		apiErr := &APIError{}
		if jerr := json.Unmarshal(resp.Body(), apiErr); jerr != nil || apiErr.Detail == "" {
			apiErr.Detail = strings.TrimSpace(string(resp.Body()))
		}
		apiErr.StatusCode = resp.StatusCode()
		return apiErr
	}

	if dst != nil && len(resp.Body()) > 0 {
		if err := json.Unmarshal(resp.Body(), dst); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}
