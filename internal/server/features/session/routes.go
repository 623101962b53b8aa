// Package session issues the opaque session identity the frontend keeps
// between requests.
package session

import (
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
)

// SetupRoutes registers the session feature routes.
func SetupRoutes(router chi.Router, sessionStore sessions.Store, issuer *Issuer) error {
	handlers := NewHandlers(sessionStore, issuer)

	router.Get("/create-session", handlers.CreateSession)
	router.Get("/session", handlers.CurrentSession)

	return nil
}
