// Package authsvc provides a client for the authentication service, which
// reports whether the user session is linked to the remote document store
// and exposes the account's stable identity.
package authsvc

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"

	"github.com/clauselens/workbench-cli/internal/faults"
)

// Client defines the authentication service operations.
type Client interface {
	// Status returns the link state and identity of the current session.
	Status(ctx context.Context) (*AccountStatus, error)
}

// AccountStatus is the parsed account status response.
type AccountStatus struct {
	Linked bool   `json:"linked"`
	Email  string `json:"email"`
}

// Option configures the auth client.
type Option func(*httpClient)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	token   string
	baseURL string
	http    *http.Client
}

// NewClient creates an authentication service client.
func NewClient(token string, opts ...Option) Client {
	c := &httpClient{
		token:   token,
		baseURL: "https://auth.clauselens.io",
		http: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) Status(ctx context.Context) (*AccountStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/account/status", nil)
	if err != nil {
		return nil, eris.Wrap(err, "authsvc: create request")
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, faults.NewServiceError("authsvc", 0, err.Error())
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "authsvc: read response body")
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, faults.NewAuthRequired(remoteError(body))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, faults.NewServiceError("authsvc", resp.StatusCode, remoteError(body))
	}

	var status AccountStatus
	if err := json.Unmarshal(body, &status); err != nil {
		return nil, eris.Wrap(err, "authsvc: unmarshal response")
	}
	return &status, nil
}

// remoteError extracts the service's error message field, falling back to
// the raw body.
func remoteError(body []byte) string {
	var e struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &e); err == nil && e.Error != "" {
		return e.Error
	}
	return string(body)
}
