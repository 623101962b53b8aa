package sqlite

import (
	"log/slog"

	"github.com/leapstack-labs/sqlplay/pkg/adapter"
)

func init() {
	adapter.Register(adapter.Registration{
		Name:          "sqlite",
		New:           func(logger *slog.Logger) adapter.Adapter { return New(logger) },
		FileBased:     true,
		DefaultSchema: "main",
	})
}
