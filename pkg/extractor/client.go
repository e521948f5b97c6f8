// Package extractor provides a client for the clause extraction service.
// Extraction is idempotent; re-extraction is a destructive renumbering that
// callers must confirm with the user first.
package extractor

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"

	"github.com/clauselens/workbench-cli/internal/faults"
)

// Client defines the clause extraction operations.
type Client interface {
	// Extract runs a first extraction for the document.
	Extract(ctx context.Context, documentID string) (*ExtractResponse, error)
	// Reextract forces a fresh extraction, renumbering all clauses.
	Reextract(ctx context.Context, documentID string) (*ExtractResponse, error)
}

// ExtractResponse is the parsed extraction response.
type ExtractResponse struct {
	Clauses []Clause `json:"clauses"`
	Count   int      `json:"count"`
}

// Clause is the wire shape of an extracted clause. Older deployments emit
// clause_title/clause_content instead of title/content; Normalize resolves
// to the canonical fields.
type Clause struct {
	ClauseNumber  int    `json:"clause_number"`
	SectionNumber string `json:"section_number"`
	Title         string `json:"title"`
	ClauseTitle   string `json:"clause_title"`
	Content       string `json:"content"`
	ClauseContent string `json:"clause_content"`
}

// Normalize returns the canonical title and content, preferring the modern
// field names.
func (c Clause) Normalize() (title, content string) {
	title = c.Title
	if title == "" {
		title = c.ClauseTitle
	}
	content = c.Content
	if content == "" {
		content = c.ClauseContent
	}
	return title, content
}

// Option configures the extractor client.
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

// NewClient creates a clause extraction client. Extraction can take a while
// on large contracts, so the default timeout is generous.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: "https://extract.clauselens.io",
		http: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) Extract(ctx context.Context, documentID string) (*ExtractResponse, error) {
	return c.post(ctx, "/v1/documents/"+url.PathEscape(documentID)+"/extract")
}

func (c *httpClient) Reextract(ctx context.Context, documentID string) (*ExtractResponse, error) {
	return c.post(ctx, "/v1/documents/"+url.PathEscape(documentID)+"/reextract")
}

func (c *httpClient) post(ctx context.Context, path string) (*ExtractResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, nil)
	if err != nil {
		return nil, eris.Wrap(err, "extractor: create request")
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, faults.NewServiceError("extractor", 0, err.Error())
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "extractor: read response body")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, faults.NewServiceError("extractor", resp.StatusCode, remoteError(body))
	}

	var result ExtractResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, eris.Wrap(err, "extractor: unmarshal response")
	}
	if result.Count == 0 {
		result.Count = len(result.Clauses)
	}
	return &result, nil
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
