// Package docstore provides a client for the remote document store: document
// metadata, byte content, and previously extracted clauses.
package docstore

import (
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

// Client defines the document store operations.
type Client interface {
	// GetDocument fetches metadata for a document.
	GetDocument(ctx context.Context, documentID string) (*DocumentInfo, error)
	// GetContent fetches the raw byte content of a document.
	GetContent(ctx context.Context, documentID string) ([]byte, error)
	// CachedClauses fetches clauses from a prior extraction. An empty list
	// is a valid response meaning no extraction has run yet.
	CachedClauses(ctx context.Context, documentID string) (*ClausesResponse, error)
}

// DocumentInfo is the parsed document metadata response.
type DocumentInfo struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	MimeType string `json:"mime_type"`
}

// ClausesResponse holds a document's cached clauses.
type ClausesResponse struct {
	Clauses []Clause `json:"clauses"`
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

// Option configures the docstore client.
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

// NewClient creates a document store client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: "https://docs.clauselens.io",
		http: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) get(ctx context.Context, path string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, 0, eris.Wrap(err, "docstore: create request")
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, faults.NewServiceError("docstore", 0, err.Error())
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, eris.Wrap(err, "docstore: read response body")
	}
	return body, resp.StatusCode, nil
}

func (c *httpClient) GetDocument(ctx context.Context, documentID string) (*DocumentInfo, error) {
	body, status, err := c.get(ctx, "/v1/documents/"+url.PathEscape(documentID))
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, faults.NewNotFound(fmt.Sprintf("document %s", documentID))
	}
	if status != http.StatusOK {
		return nil, faults.NewServiceError("docstore", status, remoteError(body))
	}

	var info DocumentInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, eris.Wrap(err, "docstore: unmarshal document")
	}
	return &info, nil
}

func (c *httpClient) GetContent(ctx context.Context, documentID string) ([]byte, error) {
	body, status, err := c.get(ctx, "/v1/documents/"+url.PathEscape(documentID)+"/content")
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, faults.NewNotFound(fmt.Sprintf("document %s content", documentID))
	}
	if status != http.StatusOK {
		return nil, faults.NewServiceError("docstore", status, remoteError(body))
	}
	return body, nil
}

func (c *httpClient) CachedClauses(ctx context.Context, documentID string) (*ClausesResponse, error) {
	body, status, err := c.get(ctx, "/v1/documents/"+url.PathEscape(documentID)+"/clauses")
	if err != nil {
		return nil, err
	}
	// No cached extraction yet. Callers treat an empty list the same way.
	if status == http.StatusNotFound {
		return &ClausesResponse{}, nil
	}
	if status != http.StatusOK {
		return nil, faults.NewServiceError("docstore", status, remoteError(body))
	}

	var result ClausesResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, eris.Wrap(err, "docstore: unmarshal clauses")
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
