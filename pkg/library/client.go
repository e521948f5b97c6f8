// Package library provides a client for the per-user saved-clause library.
// Saving is an idempotent upsert: the server enforces uniqueness on
// (identity, document, clause number) and reports duplicates via
// already_saved instead of an error.
package library

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"

	"github.com/clauselens/workbench-cli/internal/faults"
)

// Client defines the saved-clause library operations.
type Client interface {
	// Save stores the clause in the user's library. Safe to call repeatedly
	// for the same triple.
	Save(ctx context.Context, identity, documentID string, clauseNumber int) (*SaveResult, error)
	// Status reports whether the clause is already in the user's library.
	Status(ctx context.Context, documentID string, clauseNumber int) (bool, error)
}

// SaveResult is the parsed save response.
type SaveResult struct {
	AlreadySaved bool `json:"already_saved"`
}

// Option configures the library client.
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
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates a library persistence client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: "https://library.clauselens.io",
		http: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) Save(ctx context.Context, identity, documentID string, clauseNumber int) (*SaveResult, error) {
	if identity == "" {
		return nil, faults.NewAuthRequired("library save requires a resolved user identity")
	}

	payload, err := json.Marshal(map[string]any{
		"user_identity": identity,
		"document_id":   documentID,
		"clause_number": clauseNumber,
	})
	if err != nil {
		return nil, eris.Wrap(err, "library: marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/library/save", bytes.NewReader(payload))
	if err != nil {
		return nil, eris.Wrap(err, "library: create request")
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, faults.NewServiceError("library", 0, err.Error())
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "library: read response body")
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, faults.NewAuthRequired(remoteError(body))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, faults.NewServiceError("library", resp.StatusCode, remoteError(body))
	}

	var result SaveResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, eris.Wrap(err, "library: unmarshal response")
	}
	return &result, nil
}

func (c *httpClient) Status(ctx context.Context, documentID string, clauseNumber int) (bool, error) {
	reqURL := fmt.Sprintf("%s/v1/library/status?document_id=%s&clause_number=%d",
		c.baseURL, url.QueryEscape(documentID), clauseNumber)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return false, eris.Wrap(err, "library: create status request")
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return false, faults.NewServiceError("library", 0, err.Error())
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, eris.Wrap(err, "library: read response body")
	}

	// No entry for the clause is an empty state, not an error.
	if resp.StatusCode == http.StatusNotFound {
		return false, nil
	}
	if resp.StatusCode != http.StatusOK {
		return false, faults.NewServiceError("library", resp.StatusCode, remoteError(body))
	}

	var result struct {
		Saved bool `json:"saved"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return false, eris.Wrap(err, "library: unmarshal status response")
	}
	return result.Saved, nil
}

func remoteError(body []byte) string {
	var e struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &e); err == nil && e.Error != "" {
		return e.Error
	}
	return string(body)
}
