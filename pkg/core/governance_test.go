//go:build governance

package core_test

import (
	"strings"
	"testing"

	"golang.org/x/tools/go/packages"
)

const modulePath = "github.com/leapstack-labs/sqlplay"

// driverModules are the database/sql drivers the playground links.
var driverModules = []string{
	"modernc.org/sqlite",
	"github.com/marcboeker/go-duckdb",
	"github.com/jackc/pgx/v5",
	"github.com/go-sql-driver/mysql",
}

func loadModule(t *testing.T) []*packages.Package {
	t.Helper()
	cfg := &packages.Config{Mode: packages.NeedName | packages.NeedImports}
	pkgs, err := packages.Load(cfg, modulePath+"/...")
	if err != nil {
		t.Fatalf("Failed to load packages: %v", err)
	}
	return pkgs
}

func isDriver(path string) bool {
	for _, d := range driverModules {
		if path == d || strings.HasPrefix(path, d+"/") {
			return true
		}
	}
	return false
}

// =============================================================================
// DRIVER ISOLATION - only adapters and the state store may link drivers
// =============================================================================

func TestGovernance_DriverIsolation(t *testing.T) {
	allowed := func(pkg string) bool {
		return strings.HasPrefix(pkg, modulePath+"/pkg/adapters/") ||
			pkg == modulePath+"/internal/state"
	}

	for _, p := range loadModule(t) {
		if allowed(p.PkgPath) {
			continue
		}
		for imp := range p.Imports {
			if isDriver(imp) {
				t.Errorf("DRIVER LEAK: %s imports %s; go through pkg/adapter instead",
					strings.TrimPrefix(p.PkgPath, modulePath+"/"), imp)
			}
		}
	}
}

// =============================================================================
// LAYERING - HTTP handlers talk to the engine, never to storage directly
// =============================================================================

func TestGovernance_ServerUsesEngine(t *testing.T) {
	forbidden := []string{
		modulePath + "/internal/state",
		modulePath + "/internal/storage",
		modulePath + "/pkg/adapters/",
	}
	// the shared test fixture assembles a full engine
	fixture := modulePath + "/internal/server/features"

	for _, p := range loadModule(t) {
		if !strings.HasPrefix(p.PkgPath, modulePath+"/internal/server") || p.PkgPath == fixture {
			continue
		}
		for imp := range p.Imports {
			for _, f := range forbidden {
				if imp == f || strings.HasPrefix(imp, f) {
					t.Errorf("LAYER VIOLATION: %s imports %s",
						strings.TrimPrefix(p.PkgPath, modulePath+"/"), imp)
				}
			}
		}
	}
}
