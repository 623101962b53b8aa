// Package adapter provides the relational engine contract for SQLPlay.
//
// Concrete adapters live in pkg/adapters/ subdirectories and register
// themselves by name from init(). Import them with a blank identifier:
//
//	import _ "github.com/leapstack-labs/sqlplay/pkg/adapters/sqlite"
package adapter

import (
	"github.com/leapstack-labs/sqlplay/pkg/core"
)

type (
	// Config is an alias for core.AdapterConfig.
	Config = core.AdapterConfig

	// Column is an alias for core.Column.
	Column = core.Column

	// Metadata is an alias for core.TableMetadata.
	Metadata = core.TableMetadata

	// Rows is an alias for core.Rows.
	Rows = core.Rows
)

// Adapter is the relational engine a playground query runs against.
type Adapter = core.Adapter
