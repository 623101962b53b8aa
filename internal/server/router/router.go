// Package router sets up HTTP routes for the playground server.
package router

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"

	"github.com/leapstack-labs/sqlplay/internal/engine"
	"github.com/leapstack-labs/sqlplay/internal/server/features/common"
	datasetsFeature "github.com/leapstack-labs/sqlplay/internal/server/features/datasets"
	playgroundFeature "github.com/leapstack-labs/sqlplay/internal/server/features/playground"
	queryFeature "github.com/leapstack-labs/sqlplay/internal/server/features/query"
	sessionFeature "github.com/leapstack-labs/sqlplay/internal/server/features/session"
	"github.com/leapstack-labs/sqlplay/internal/server/notifier"
)

// Deps carries everything the feature routes need.
type Deps struct {
	Engine         *engine.Engine
	SessionStore   *sessions.CookieStore
	Issuer         *sessionFeature.Issuer
	Notifier       *notifier.Notifier
	MaxUploadBytes int64
	Logger         *slog.Logger
}

// SetupRoutes configures all routes for the server.
func SetupRoutes(router chi.Router, deps Deps) error {
	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		common.WriteJSON(w, http.StatusOK, map[string]string{
			"status":  "ok",
			"dialect": deps.Engine.Dialect(),
		})
	})

	if err := sessionFeature.SetupRoutes(router, deps.SessionStore, deps.Issuer); err != nil {
		return err
	}

	if err := datasetsFeature.SetupRoutes(router, deps.Engine, deps.Notifier, deps.MaxUploadBytes, deps.Logger); err != nil {
		return err
	}

	if err := queryFeature.SetupRoutes(router, deps.Engine, deps.Logger); err != nil {
		return err
	}

	if err := playgroundFeature.SetupRoutes(router, deps.Engine, deps.Logger); err != nil {
		return err
	}

	router.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		common.WriteError(w, http.StatusNotFound, "Not Found")
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		common.WriteError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})

	return nil
}
