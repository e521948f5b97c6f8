// Package similarity provides a client for the clause similarity service:
// given a clause title, it returns other documents containing an exact or
// approximately similar clause.
package similarity

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/time/rate"

	"github.com/clauselens/workbench-cli/internal/faults"
)

// Client defines the similarity service operations.
type Client interface {
	// FindSimilar returns other documents sharing a clause with the given
	// title, excluding the originating document. An empty Files slice is a
	// valid outcome, not an error.
	FindSimilar(ctx context.Context, clauseTitle, excludeDocumentID string) (*SearchResponse, error)
}

// SearchResponse is the parsed similarity search response.
type SearchResponse struct {
	Found bool        `json:"found"`
	Count int         `json:"count"`
	Files []FileMatch `json:"files"`
}

// FileMatch is one document containing a matching clause.
type FileMatch struct {
	FileID        string `json:"file_id"`
	FileName      string `json:"file_name"`
	SectionNumber string `json:"section_number"`
	ClauseTitle   string `json:"clause_title"`
	ClauseContent string `json:"clause_content"`
	MatchType     string `json:"match_type"`
}

// Option configures the similarity client.
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

// WithRateLimit overrides the default query rate limit.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *httpClient) {
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a similarity service client. Queries are rate limited
// because every clause selection fans out a search.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: "https://similar.clauselens.io",
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Limit(5), 10),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NormalizeTitle canonicalizes a clause title for querying: NFKC
// normalization, whitespace collapse, and lowercasing. The service matches
// on normalized titles, so both sides must agree on the folding.
func NormalizeTitle(title string) string {
	folded := norm.NFKC.String(title)
	return strings.ToLower(strings.Join(strings.Fields(folded), " "))
}

func (c *httpClient) FindSimilar(ctx context.Context, clauseTitle, excludeDocumentID string) (*SearchResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "similarity: rate limiter")
	}

	q := url.Values{}
	q.Set("title", NormalizeTitle(clauseTitle))
	q.Set("exclude", excludeDocumentID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/similar?"+q.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "similarity: create request")
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, faults.NewServiceError("similarity", 0, err.Error())
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "similarity: read response body")
	}

	// The service answers 404 when no other file contains the clause.
	// That is the "no similar files" empty state, not an error.
	if resp.StatusCode == http.StatusNotFound {
		return &SearchResponse{Found: false}, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, faults.NewServiceError("similarity", resp.StatusCode, remoteError(body))
	}

	var result SearchResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, eris.Wrap(err, "similarity: unmarshal response")
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
