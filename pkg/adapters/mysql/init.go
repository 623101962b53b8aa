package mysql

import (
	"log/slog"

	"github.com/leapstack-labs/sqlplay/pkg/adapter"
)

func init() {
	adapter.Register(adapter.Registration{
		Name:        "mysql",
		New:         func(logger *slog.Logger) adapter.Adapter { return New(logger) },
		DefaultPort: 3306,
	})
}
