// Package riskscore provides a client for the risk assessment service.
package riskscore

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

// Client defines the risk assessment operations.
type Client interface {
	// Assessment fetches the current risk assessment for a document.
	Assessment(ctx context.Context, documentID string) (*Assessment, error)
}

// Assessment is the parsed risk assessment response.
type Assessment struct {
	RiskScore      int      `json:"risk_score"`
	RiskLevel      string   `json:"risk_level"`
	GoodClauses    []string `json:"good_clauses"`
	CautionClauses []string `json:"caution_clauses"`
	MissingClauses []string `json:"missing_clauses"`
	ClauseCount    int      `json:"clauses_count"`
}

// Option configures the risk client.
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

// NewClient creates a risk assessment client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: "https://risk.clauselens.io",
		http: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) Assessment(ctx context.Context, documentID string) (*Assessment, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/v1/documents/"+url.PathEscape(documentID)+"/risk", nil)
	if err != nil {
		return nil, eris.Wrap(err, "riskscore: create request")
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, faults.NewServiceError("riskscore", 0, err.Error())
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "riskscore: read response body")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, faults.NewServiceError("riskscore", resp.StatusCode, remoteError(body))
	}

	var result Assessment
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, eris.Wrap(err, "riskscore: unmarshal response")
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
