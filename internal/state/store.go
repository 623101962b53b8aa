// Package state persists playground metadata that must survive a restart,
// currently the registry of uploaded datasets.
package state

import (
	"context"
	"errors"

	"github.com/leapstack-labs/sqlplay/pkg/core"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// Store is the upload registry used by the catalog.
type Store interface {
	CreateUpload(ctx context.Context, u *core.Upload) error
	GetUpload(ctx context.Context, tableName string) (*core.Upload, error)
	ListUploads(ctx context.Context) ([]core.Upload, error)
	DeleteUpload(ctx context.Context, tableName string) error
	Close() error
}

var _ Store = (*SQLiteStore)(nil)
