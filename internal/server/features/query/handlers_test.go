package query

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/sqlplay/internal/server/features"
	"github.com/leapstack-labs/sqlplay/internal/testutil"
)

func setupRouter(t *testing.T) (chi.Router, *features.TestFixture) {
	t.Helper()
	fixture := features.SetupTestFixture(t)
	r := chi.NewRouter()
	require.NoError(t, SetupRoutes(r, fixture.Engine, testutil.NewTestLogger(t)))
	return r, fixture
}

func post(r http.Handler, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestRunQuery(t *testing.T) {
	r, _ := setupRouter(t)

	tests := []struct {
		name       string
		query      string
		wantStatus int
		check      func(t *testing.T, body map[string]any)
	}{
		{
			name:       "rows",
			query:      "SELECT name FROM students WHERE marks > 85 ORDER BY name",
			wantStatus: http.StatusOK,
			check: func(t *testing.T, body map[string]any) {
				assert.EqualValues(t, 2, body["row_count"])
				rows := body["rows"].([]any)
				assert.Equal(t, "Neha", rows[0].(map[string]any)["name"])
			},
		},
		{
			name:       "engine error explained",
			query:      "SELECT * FROM studnts",
			wantStatus: http.StatusOK,
			check: func(t *testing.T, body map[string]any) {
				assert.Contains(t, body["raw_error"], "no such table")
				assert.Equal(t, "rule-based", body["source"])
				explanation := body["error_explanation"].(map[string]any)
				assert.Equal(t, "UNKNOWN_IDENTIFIER", explanation["category"])
			},
		},
		{
			name:       "blocked",
			query:      "DROP TABLE students",
			wantStatus: http.StatusForbidden,
			check: func(t *testing.T, body map[string]any) {
				assert.Contains(t, body["detail"], "DROP")
			},
		},
		{
			name:       "empty",
			query:      "  ",
			wantStatus: http.StatusBadRequest,
			check: func(t *testing.T, body map[string]any) {
				assert.Equal(t, "query must not be empty", body["detail"])
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(r, "/run-query", url.Values{"query": {tt.query}})
			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			var body map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			tt.check(t, body)
		})
	}
}

func TestRunQuery_QueryStringAndJSON(t *testing.T) {
	r, _ := setupRouter(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/run-query?query="+url.QueryEscape("SELECT COUNT(*) AS n FROM employees"), nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"n":4`)

	req := httptest.NewRequest(http.MethodPost, "/run-query", strings.NewReader(`{"query":"SELECT 1 AS one"}`))
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"one":1`)
}

func TestRunQuery_BlockedLeavesData(t *testing.T) {
	r, fixture := setupRouter(t)

	rec := post(r, "/run-query", url.Values{"query": {"DELETE FROM students"}})
	require.Equal(t, http.StatusForbidden, rec.Code)

	res, err := fixture.Engine.Run(t.Context(), "SELECT COUNT(*) AS n FROM students")
	require.NoError(t, err)
	assert.EqualValues(t, 5, res.Rows[0]["n"])
}

func TestExplainQuery(t *testing.T) {
	r, _ := setupRouter(t)

	rec := post(r, "/explain-query", url.Values{"query": {"SELECT department FROM employees GROUP BY department"}})
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Steps  []string `json:"steps"`
		Method string   `json:"method"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Steps, 3)
	assert.Equal(t, "rule-based", body.Method)

	rec = post(r, "/explain-query", url.Values{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTranslateError(t *testing.T) {
	r, _ := setupRouter(t)

	rec := post(r, "/translate-error", url.Values{"message": {"no such column: foo"}})
	require.Equal(t, http.StatusOK, rec.Code)
	var body TranslateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "UNKNOWN_IDENTIFIER", string(body.Explanation.Category))
	assert.Contains(t, strings.Join(body.Explanation.Reason, " "), "foo")

	rec = post(r, "/translate-error", url.Values{"message": {""}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExport(t *testing.T) {
	r, _ := setupRouter(t)

	tests := []struct {
		name            string
		form            url.Values
		wantStatus      int
		wantContentType string
		wantBody        string
		wantAttachment  bool
	}{
		{
			name:            "csv default",
			form:            url.Values{"query": {"SELECT name FROM students WHERE marks >= 88 ORDER BY id"}},
			wantStatus:      http.StatusOK,
			wantContentType: "text/csv",
			wantBody:        "name\nNeha\nPriya\n",
			wantAttachment:  true,
		},
		{
			name:            "json",
			form:            url.Values{"query": {"SELECT name FROM students WHERE id = 1"}, "format": {"json"}},
			wantStatus:      http.StatusOK,
			wantContentType: "application/json",
			wantBody:        `[{"name":"Amit"}]`,
		},
		{
			name:       "bad format",
			form:       url.Values{"query": {"SELECT 1"}, "format": {"parquet"}},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "blocked",
			form:       url.Values{"query": {"UPDATE students SET marks = 0"}},
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "engine error",
			form:       url.Values{"query": {"SELECT * FROM nowhere"}},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(r, "/export", tt.form)
			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			if tt.wantStatus != http.StatusOK {
				return
			}
			assert.Equal(t, tt.wantContentType, rec.Header().Get("Content-Type"))
			assert.Equal(t, tt.wantBody, rec.Body.String())
			if tt.wantAttachment {
				assert.Equal(t, `attachment; filename="export.csv"`, rec.Header().Get("Content-Disposition"))
			}
		})
	}
}
