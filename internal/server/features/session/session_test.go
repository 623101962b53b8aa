package session

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/sessions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "unit-test-secret"

func TestIssuer_RoundTrip(t *testing.T) {
	issuer, err := NewIssuer(secret, time.Hour)
	require.NoError(t, err)

	token, err := issuer.Issue("ab12cd34")
	require.NoError(t, err)

	userID, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "ab12cd34", userID)
}

func TestIssuer_Rejects(t *testing.T) {
	issuer, err := NewIssuer(secret, time.Minute)
	require.NoError(t, err)
	other, err := NewIssuer("another-secret", time.Minute)
	require.NoError(t, err)

	foreign, err := other.Issue("u1")
	require.NoError(t, err)
	_, err = issuer.Verify(foreign)
	assert.ErrorContains(t, err, "invalid token")

	token, err := issuer.Issue("u1")
	require.NoError(t, err)
	issuer.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	_, err = issuer.Verify(token)
	assert.ErrorContains(t, err, "expired")

	_, err = issuer.Verify("not-a-jwt")
	assert.Error(t, err)
}

func TestNewIssuer_EmptySecret(t *testing.T) {
	_, err := NewIssuer("", 0)
	assert.Error(t, err)
}

func setup(t *testing.T) *Handlers {
	t.Helper()
	issuer, err := NewIssuer(secret, 0)
	require.NoError(t, err)
	store := sessions.NewCookieStore([]byte(secret))
	return NewHandlers(store, issuer)
}

func TestCreateSession(t *testing.T) {
	h := setup(t)

	rec := httptest.NewRecorder()
	h.CreateSession(rec, httptest.NewRequest(http.MethodGet, "/create-session", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.UserID, 8)
	assert.NotEmpty(t, resp.Token)

	userID, err := h.issuer.Verify(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.UserID, userID)

	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, CookieName, cookies[0].Name)
}

func TestCurrentSession(t *testing.T) {
	h := setup(t)

	created := httptest.NewRecorder()
	h.CreateSession(created, httptest.NewRequest(http.MethodGet, "/create-session", nil))
	var issued Response
	require.NoError(t, json.Unmarshal(created.Body.Bytes(), &issued))

	tests := []struct {
		name       string
		prepare    func(r *http.Request)
		wantStatus int
	}{
		{
			name:       "bearer token",
			prepare:    func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+issued.Token) },
			wantStatus: http.StatusOK,
		},
		{
			name: "cookie",
			prepare: func(r *http.Request) {
				for _, c := range created.Result().Cookies() {
					r.AddCookie(c)
				}
			},
			wantStatus: http.StatusOK,
		},
		{
			name:       "bad token",
			prepare:    func(r *http.Request) { r.Header.Set("Authorization", "Bearer nope") },
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "wrong scheme",
			prepare:    func(r *http.Request) { r.Header.Set("Authorization", "Basic abc") },
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "nothing",
			prepare:    func(*http.Request) {},
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/session", nil)
			tt.prepare(req)
			rec := httptest.NewRecorder()
			h.CurrentSession(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusOK {
				var resp Response
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
				assert.Equal(t, issued.UserID, resp.UserID)
			}
		})
	}
}
