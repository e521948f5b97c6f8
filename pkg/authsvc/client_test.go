package authsvc

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clauselens/workbench-cli/internal/faults"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		name         string
		status       int
		body         string
		wantErr      string
		authRequired bool
		wantLinked   bool
		wantEmail    string
	}{
		{
			name:       "linked",
			status:     http.StatusOK,
			body:       `{"linked": true, "email": "user@example.com"}`,
			wantLinked: true,
			wantEmail:  "user@example.com",
		},
		{
			name:       "not_linked",
			status:     http.StatusOK,
			body:       `{"linked": false}`,
			wantLinked: false,
		},
		{
			name:         "expired_token",
			status:       http.StatusUnauthorized,
			body:         `{"error": "token expired"}`,
			authRequired: true,
			wantErr:      "token expired",
		},
		{
			name:         "forbidden",
			status:       http.StatusForbidden,
			body:         `{"error": "account suspended"}`,
			authRequired: true,
			wantErr:      "account suspended",
		},
		{
			name:    "server_error",
			status:  http.StatusInternalServerError,
			body:    `{"error": "auth backend down"}`,
			wantErr: "auth backend down",
		},
		{
			name:    "malformed_response",
			status:  http.StatusOK,
			body:    `{invalid json`,
			wantErr: "unmarshal response",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodGet, r.Method)
				assert.Equal(t, "/v1/account/status", r.URL.Path)
				assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			client := NewClient("test-token", WithBaseURL(srv.URL))
			status, err := client.Status(context.Background())

			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				assert.Equal(t, tt.authRequired, faults.IsAuthRequired(err))
				assert.Nil(t, status)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, status)
			assert.Equal(t, tt.wantLinked, status.Linked)
			assert.Equal(t, tt.wantEmail, status.Email)
		})
	}
}

func TestStatusNetworkError(t *testing.T) {
	client := NewClient("test-token", WithBaseURL("http://127.0.0.1:1"))
	_, err := client.Status(context.Background())
	require.Error(t, err)
	assert.False(t, faults.IsAuthRequired(err))
}
