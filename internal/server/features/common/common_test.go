package common

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/leapstack-labs/sqlplay/internal/catalog"
	"github.com/leapstack-labs/sqlplay/internal/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		detail string
	}{
		{"forbidden", &engine.ForbiddenError{Keyword: "DROP"}, http.StatusForbidden, "dangerous query blocked: DROP is not allowed"},
		{"invalid", fmt.Errorf("%w: query must not be empty", engine.ErrInvalidInput), http.StatusBadRequest, "query must not be empty"},
		{"query", &engine.QueryError{Message: "no such table: x"}, http.StatusBadRequest, "no such table: x"},
		{"unknown dataset", fmt.Errorf("%w: orders", catalog.ErrUnknownDataset), http.StatusNotFound, "Dataset not found"},
		{"other", errors.New("disk on fire"), http.StatusInternalServerError, "Internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, detail := Status(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.detail, detail)
		})
	}
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, http.StatusTeapot, "short and stout")
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"detail":"short and stout"}`, rec.Body.String())
}

func TestReadParams(t *testing.T) {
	tests := []struct {
		name string
		req  func() *http.Request
		want Params
	}{
		{
			name: "query string",
			req: func() *http.Request {
				return httptest.NewRequest(http.MethodPost, "/run-query?query=SELECT+1", nil)
			},
			want: Params{"query": "SELECT 1"},
		},
		{
			name: "form body",
			req: func() *http.Request {
				r := httptest.NewRequest(http.MethodPost, "/export", strings.NewReader(url.Values{"query": {"SELECT 2"}, "format": {"json"}}.Encode()))
				r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
				return r
			},
			want: Params{"query": "SELECT 2", "format": "json"},
		},
		{
			name: "json body overrides query string",
			req: func() *http.Request {
				r := httptest.NewRequest(http.MethodPost, "/run-query?query=old", strings.NewReader(`{"query":"SELECT 3","limit":5}`))
				r.Header.Set("Content-Type", "application/json; charset=utf-8")
				return r
			},
			want: Params{"query": "SELECT 3", "limit": "5"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReadParams(tt.req())
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReadParams_BadJSON(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/run-query", strings.NewReader(`{"query":`))
	r.Header.Set("Content-Type", "application/json")
	_, err := ReadParams(r)
	assert.ErrorContains(t, err, "invalid JSON body")
}
