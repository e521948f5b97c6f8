// Package tagsvc provides a client for the tag service. Tag names are drawn
// from a server-enforced master vocabulary; adding a name outside it is a
// Rejected outcome, distinct from a transport failure.
package tagsvc

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"

	"github.com/clauselens/workbench-cli/internal/faults"
)

// Client defines the tag service operations. Add and Remove return the
// document's complete updated tag set.
type Client interface {
	List(ctx context.Context, documentID string) ([]string, error)
	Add(ctx context.Context, documentID, tagName string) ([]string, error)
	Remove(ctx context.Context, documentID, tagName string) ([]string, error)
}

// Option configures the tag client.
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

// NewClient creates a tag service client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: "https://tags.clauselens.io",
		http: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type tagsResponse struct {
	Tags []string `json:"tags"`
}

func (c *httpClient) List(ctx context.Context, documentID string) ([]string, error) {
	return c.do(ctx, http.MethodGet, "/v1/documents/"+url.PathEscape(documentID)+"/tags", nil)
}

func (c *httpClient) Add(ctx context.Context, documentID, tagName string) ([]string, error) {
	return c.do(ctx, http.MethodPost, "/v1/documents/"+url.PathEscape(documentID)+"/tags/add",
		map[string]string{"tag": tagName})
}

func (c *httpClient) Remove(ctx context.Context, documentID, tagName string) ([]string, error) {
	return c.do(ctx, http.MethodPost, "/v1/documents/"+url.PathEscape(documentID)+"/tags/remove",
		map[string]string{"tag": tagName})
}

func (c *httpClient) do(ctx context.Context, method, path string, payload any) ([]string, error) {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, eris.Wrap(err, "tagsvc: marshal request")
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, eris.Wrap(err, "tagsvc: create request")
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, faults.NewServiceError("tagsvc", 0, err.Error())
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "tagsvc: read response body")
	}

	// 422 marks a tag outside the master vocabulary.
	if resp.StatusCode == http.StatusUnprocessableEntity {
		return nil, faults.NewRejected(remoteError(body))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, faults.NewServiceError("tagsvc", resp.StatusCode, remoteError(body))
	}

	var result tagsResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, eris.Wrap(err, "tagsvc: unmarshal response")
	}
	return result.Tags, nil
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
