package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/clauselens/workbench-cli/internal/workspace"
	"github.com/clauselens/workbench-cli/pkg/authsvc"
	"github.com/clauselens/workbench-cli/pkg/docstore"
	"github.com/clauselens/workbench-cli/pkg/extractor"
	"github.com/clauselens/workbench-cli/pkg/library"
	"github.com/clauselens/workbench-cli/pkg/riskscore"
	"github.com/clauselens/workbench-cli/pkg/similarity"
	"github.com/clauselens/workbench-cli/pkg/tagsvc"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

// newTestRouter builds the API around a controller with no live backends.
// Handlers that reject a request before reaching a service are testable
// this way.
func newTestRouter() http.Handler {
	ctrl := workspace.New(nil, nil, nil, nil, nil, nil, nil, nil, nil)
	return newRouter(ctrl, []string{"*"})
}

func TestServeHealth(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok"`)
}

func TestServeSnapshotClosedWorkspace(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/workspace", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"open":false`)
}

func TestServeOpenValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "empty_body", body: ""},
		{name: "missing_document_id", body: `{}`},
		{name: "malformed_json", body: `{nope`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter()
			req := httptest.NewRequest(http.MethodPost, "/workspace/open", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestServeSelectWithoutWorkspace(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodPost, "/workspace/select", strings.NewReader(`{"clause_number": 2}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServeCompareWithoutSelection(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodPost, "/workspace/compare", strings.NewReader(`{"file_id": "D2"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServeTagRemovalRequiresConfirmation(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodDelete, "/workspace/tags", strings.NewReader(`{"tag": "nda"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "confirmed=true")
}

func TestServeSaveWithoutSelection(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodPost, "/workspace/save", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// TestServeSelectResultsLandAfterResponse drives the API over a live
// httptest server so each handler's request context is canceled when it
// returns, exactly as net/http does in production. The similarity backend
// answers only after the select response has gone out; its result must
// still reach the session for the next poll.
func TestServeSelectResultsLandAfterResponse(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/documents/D1", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id": "D1", "name": "msa.pdf", "mime_type": "application/pdf"}`))
	})
	mux.HandleFunc("/v1/documents/D1/clauses", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"clauses": [{"clause_number": 1, "section_number": "4", "title": "Indemnification", "content": "shall indemnify"}]}`))
	})
	mux.HandleFunc("/v1/documents/D1/tags", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"tags": []}`))
	})
	mux.HandleFunc("/v1/documents/D1/risk", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"risk_score": 40, "risk_level": "MEDIUM"}`))
	})
	mux.HandleFunc("/v1/similar", func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(50 * time.Millisecond)
		_, _ = w.Write([]byte(`{"found": true, "count": 1, "files": [{"file_id": "D2", "file_name": "vendor.pdf", "match_type": "exact"}]}`))
	})
	mux.HandleFunc("/v1/library/status", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"saved": true}`))
	})
	backend := httptest.NewServer(mux)
	defer backend.Close()

	ctrl := workspace.New(
		docstore.NewClient("k", docstore.WithBaseURL(backend.URL)),
		extractor.NewClient("k", extractor.WithBaseURL(backend.URL)),
		similarity.NewClient("k", similarity.WithBaseURL(backend.URL)),
		tagsvc.NewClient("k", tagsvc.WithBaseURL(backend.URL)),
		riskscore.NewClient("k", riskscore.WithBaseURL(backend.URL)),
		library.NewClient("k", library.WithBaseURL(backend.URL)),
		authsvc.NewClient("k", authsvc.WithBaseURL(backend.URL)),
		nil, nil,
	)
	api := httptest.NewServer(newRouter(ctrl, []string{"*"}))
	defer api.Close()

	resp, err := http.Post(api.URL+"/workspace/open", "application/json", strings.NewReader(`{"document_id": "D1"}`))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp, err = http.Post(api.URL+"/workspace/select", "application/json", strings.NewReader(`{"clause_number": 1}`))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	var vm workspace.ViewModel
	deadline := time.Now().Add(2 * time.Second)
	for {
		resp, err = http.Get(api.URL + "/workspace")
		require.NoError(t, err)
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&vm))
		resp.Body.Close()

		if vm.MatchesLoaded {
			break
		}
		require.True(t, time.Now().Before(deadline), "similarity result never reached the session")
		time.Sleep(10 * time.Millisecond)
	}

	assert.Empty(t, vm.SimilarityNotice)
	require.Len(t, vm.Matches, 1)
	assert.Equal(t, "D2", vm.Matches[0].FileID)
	assert.True(t, vm.SavedToLibrary)
}

func TestServeCloseIsIdempotent(t *testing.T) {
	router := newTestRouter()

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/workspace/close", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}
