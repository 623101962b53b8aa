// Package features provides shared test utilities for HTTP feature tests.
package features

import (
	"context"
	"net/http"
	"testing"

	"github.com/gorilla/sessions"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/sqlplay/internal/catalog"
	"github.com/leapstack-labs/sqlplay/internal/engine"
	"github.com/leapstack-labs/sqlplay/internal/server/features/session"
	"github.com/leapstack-labs/sqlplay/internal/server/notifier"
	"github.com/leapstack-labs/sqlplay/internal/state"
	"github.com/leapstack-labs/sqlplay/internal/storage"
	"github.com/leapstack-labs/sqlplay/internal/testutil"
	"github.com/leapstack-labs/sqlplay/pkg/adapters/sqlite"
	"github.com/leapstack-labs/sqlplay/pkg/core"
)

// TestSecret signs cookies and tokens in tests.
const TestSecret = "test-secret-test-secret-test-secret"

// TestFixture holds all dependencies needed for handler tests.
type TestFixture struct {
	Engine       *engine.Engine
	Notifier     *notifier.Notifier
	SessionStore *sessions.CookieStore
	Issuer       *session.Issuer
}

// SetupTestFixture creates a seeded engine on in-memory SQLite with local
// upload storage in a temp dir. Uploads are announced on the notifier.
func SetupTestFixture(t *testing.T) *TestFixture {
	t.Helper()
	ctx := context.Background()
	logger := testutil.NewTestLogger(t)

	db := sqlite.New(logger)
	require.NoError(t, db.Connect(ctx, core.AdapterConfig{}))

	store := state.NewSQLiteStore()
	require.NoError(t, store.Open(":memory:"))

	files, err := storage.NewLocal(t.TempDir())
	require.NoError(t, err)

	notify := notifier.New()
	eng := engine.New(db, engine.Options{
		Catalog:  catalog.New(store, logger),
		Files:    files,
		Logger:   logger,
		OnUpload: notify.DatasetAdded,
	})
	require.NoError(t, eng.Init(ctx))
	t.Cleanup(func() {
		_ = eng.Close()
		_ = store.Close()
	})

	issuer, err := session.NewIssuer(TestSecret, 0)
	require.NoError(t, err)

	cookies := sessions.NewCookieStore([]byte(TestSecret))
	cookies.Options.Path = "/"
	cookies.Options.HttpOnly = true
	cookies.Options.SameSite = http.SameSiteLaxMode

	return &TestFixture{
		Engine:       eng,
		Notifier:     notify,
		SessionStore: cookies,
		Issuer:       issuer,
	}
}
