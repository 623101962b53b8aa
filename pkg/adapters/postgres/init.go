package postgres

import (
	"log/slog"

	"github.com/leapstack-labs/sqlplay/pkg/adapter"
)

func init() {
	adapter.Register(adapter.Registration{
		Name:          "postgres",
		New:           func(logger *slog.Logger) adapter.Adapter { return New(logger) },
		DefaultPort:   5432,
		DefaultSchema: "public",
	})
}
