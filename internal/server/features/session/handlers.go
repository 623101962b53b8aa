package session

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/leapstack-labs/sqlplay/internal/server/features/common"
)

// CookieName is the gorilla session cookie name.
const CookieName = "sqlplay"

const userIDKey = "user_id"

// Response is returned by both session endpoints.
type Response struct {
	UserID string `json:"user_id"`
	Token  string `json:"token,omitempty"`
}

// Handlers provides HTTP handlers for the session feature.
type Handlers struct {
	sessionStore sessions.Store
	issuer       *Issuer
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(sessionStore sessions.Store, issuer *Issuer) *Handlers {
	return &Handlers{sessionStore: sessionStore, issuer: issuer}
}

// CreateSession starts a new anonymous session.
func (h *Handlers) CreateSession(w http.ResponseWriter, r *http.Request) {
	userID := uuid.New().String()[:8]

	token, err := h.issuer.Issue(userID)
	if err != nil {
		common.WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	// A stale or foreign cookie yields a fresh session and an error we can ignore.
	sess, _ := h.sessionStore.New(r, CookieName)
	sess.Values[userIDKey] = userID
	if err := sess.Save(r, w); err != nil {
		common.WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	common.WriteJSON(w, http.StatusOK, Response{UserID: userID, Token: token})
}

// CurrentSession reports the user id from a bearer token or, failing
// that, the session cookie.
func (h *Handlers) CurrentSession(w http.ResponseWriter, r *http.Request) {
	if auth := r.Header.Get("Authorization"); auth != "" {
		token, ok := strings.CutPrefix(auth, "Bearer ")
		if !ok {
			common.WriteError(w, http.StatusUnauthorized, "Expected a Bearer token")
			return
		}
		userID, err := h.issuer.Verify(strings.TrimSpace(token))
		if err != nil {
			common.WriteError(w, http.StatusUnauthorized, "Invalid session token")
			return
		}
		common.WriteJSON(w, http.StatusOK, Response{UserID: userID})
		return
	}

	sess, err := h.sessionStore.Get(r, CookieName)
	if err == nil {
		if userID, ok := sess.Values[userIDKey].(string); ok && userID != "" {
			common.WriteJSON(w, http.StatusOK, Response{UserID: userID})
			return
		}
	}
	common.WriteError(w, http.StatusUnauthorized, "No active session")
}
