// Package main is the sqlplay command.
package main

import (
	"os"

	"github.com/leapstack-labs/sqlplay/internal/cli"

	// Register database adapters
	_ "github.com/leapstack-labs/sqlplay/pkg/adapters/duckdb"
	_ "github.com/leapstack-labs/sqlplay/pkg/adapters/mysql"
	_ "github.com/leapstack-labs/sqlplay/pkg/adapters/postgres"
	_ "github.com/leapstack-labs/sqlplay/pkg/adapters/sqlite"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
