package datasets

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/sqlplay/internal/engine"
	"github.com/leapstack-labs/sqlplay/internal/server/features"
	"github.com/leapstack-labs/sqlplay/internal/testutil"
	"github.com/leapstack-labs/sqlplay/pkg/core"
)

func setupRouter(t *testing.T, maxUpload int64) (chi.Router, *features.TestFixture) {
	t.Helper()
	fixture := features.SetupTestFixture(t)
	r := chi.NewRouter()
	require.NoError(t, SetupRoutes(r, fixture.Engine, fixture.Notifier, maxUpload, testutil.NewTestLogger(t)))
	return r, fixture
}

func multipartBody(t *testing.T, field, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestSampleDatasets(t *testing.T) {
	r, _ := setupRouter(t, 0)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sample-datasets", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"datasets":["students","employees"]}`, rec.Body.String())
}

func TestListAndGetDatasets(t *testing.T) {
	r, _ := setupRouter(t, 0)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/datasets", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var list List
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list.Datasets, 2)
	assert.Equal(t, int64(5), list.Datasets[0].RowCount)

	tests := []struct {
		path       string
		wantStatus int
		wantBody   string
	}{
		{"/datasets/employees", http.StatusOK, `"table_name":"employees"`},
		{"/datasets/orders", http.StatusNotFound, `"detail":"Dataset not found"`},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantBody)
		})
	}
}

func TestPreviewDataset(t *testing.T) {
	r, _ := setupRouter(t, 0)

	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantRows   int
	}{
		{"default limit", "/datasets/students/data", http.StatusOK, 5},
		{"explicit limit", "/datasets/students/data?limit=2", http.StatusOK, 2},
		{"bad limit", "/datasets/students/data?limit=abc", http.StatusBadRequest, 0},
		{"unknown", "/datasets/orders/data", http.StatusNotFound, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
			require.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus != http.StatusOK {
				return
			}
			var p engine.PreviewResult
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
			assert.Len(t, p.Rows, tt.wantRows)
		})
	}
}

func TestUploadDataset(t *testing.T) {
	r, fixture := setupRouter(t, 0)
	updates := fixture.Notifier.Subscribe()
	defer fixture.Notifier.Unsubscribe(updates)

	body, contentType := multipartBody(t, "file", "cities.csv", "city,state\nPune,MH\nJaipur,RJ\n")
	req := httptest.NewRequest(http.MethodPost, "/upload-dataset", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var res engine.UploadResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "Dataset uploaded successfully", res.Message)
	assert.Equal(t, []string{"city", "state"}, res.Columns)

	select {
	case ev := <-updates:
		assert.Equal(t, res.TableName, ev.Dataset.TableName)
	case <-time.After(time.Second):
		t.Fatal("upload was not broadcast")
	}

	ds, err := fixture.Engine.Dataset(res.TableName)
	require.NoError(t, err)
	assert.Equal(t, core.OriginUpload, ds.Origin)
}

func TestUploadDataset_Rejects(t *testing.T) {
	tests := []struct {
		name       string
		field      string
		filename   string
		content    string
		maxUpload  int64
		wantStatus int
		wantDetail string
	}{
		{"non csv", "file", "notes.txt", "hello", 0, http.StatusBadRequest, "only CSV files allowed"},
		{"missing field", "upload", "a.csv", "a\n1\n", 0, http.StatusBadRequest, "file"},
		{"too large", "file", "big.csv", "a\n" + strings.Repeat("1\n", 2048), 512, http.StatusRequestEntityTooLarge, "File too large"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, fixture := setupRouter(t, tt.maxUpload)

			body, contentType := multipartBody(t, tt.field, tt.filename, tt.content)
			req := httptest.NewRequest(http.MethodPost, "/upload-dataset", body)
			req.Header.Set("Content-Type", contentType)
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantDetail)
			assert.Len(t, fixture.Engine.Datasets(), 2)
		})
	}
}

func TestUpdatesSSE(t *testing.T) {
	r, fixture := setupRouter(t, 0)

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/api/datasets/updates", nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		r.ServeHTTP(rec, req)
		close(done)
	}()

	require.Eventually(t, func() bool { return fixture.Notifier.Len() == 1 }, time.Second, 10*time.Millisecond)
	fixture.Notifier.DatasetAdded(core.Dataset{TableName: "user_feedbeef"})

	time.Sleep(50 * time.Millisecond)
	cancel()
	<-done

	body := rec.Body.String()
	assert.Contains(t, body, "datastar-patch-signals")
	assert.Contains(t, body, `"lastUpload":"user_feedbeef"`)
	assert.Contains(t, body, `"table_name":"students"`)
}
