// Package remote implements the typed HTTP gateway to the external coaching
// backend. It holds no domain logic: one request per operation, canonical
// entity out, *RemoteFailure on any error.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultTimeout = 15 * time.Second

// Client is the production Coach implementation over HTTP.
//
// All calls are scoped to a single user via the bearer token supplied at
// construction; the gateway never manages credentials beyond attaching them.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

var _ Coach = (*Client)(nil)

// NewClient creates a gateway against the given base URL, e.g.
// "https://api.lifesprint.app/v1".
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: defaultTimeout},
	}
}

// NewClientWithHTTP creates a gateway with a caller-supplied http.Client.
// Used by tests to point at an httptest server.
func NewClientWithHTTP(baseURL, token string, hc *http.Client) *Client {
	return &Client{baseURL: baseURL, token: token, http: hc}
}

// apiError is the backend's error envelope.
type apiError struct {
	Error struct {
		Message string `json:"message"`
		Code    string `json:"code"`
	} `json:"error"`
}

// call issues one request and decodes the response body into out (skipped
// when out is nil). Every failure path wraps into *RemoteFailure tagged with
// the operation name.
func (c *Client) call(ctx context.Context, operation, method, path string, body, out any) error {
	var payload io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return failed(operation, fmt.Errorf("encode request: %w", err))
		}
		payload = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, payload)
	if err != nil {
		return failed(operation, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return failed(operation, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		var envelope apiError
		if json.Unmarshal(raw, &envelope) == nil && envelope.Error.Message != "" {
			return failed(operation, fmt.Errorf("status %d: %s", resp.StatusCode, envelope.Error.Message))
		}
		return failed(operation, fmt.Errorf("status %d", resp.StatusCode))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return failed(operation, fmt.Errorf("decode response: %w", err))
	}
	return nil
}
