// Package catalog keeps the list of datasets a learner can query: the
// built-in samples seeded at startup and any CSV uploads registered since.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/leapstack-labs/sqlplay/internal/state"
	"github.com/leapstack-labs/sqlplay/pkg/adapter"
	"github.com/leapstack-labs/sqlplay/pkg/core"
)

// ErrUnknownDataset is returned for ids not in the catalog.
var ErrUnknownDataset = errors.New("unknown dataset")

// Catalog is safe for concurrent use. The sample part is fixed once Seed
// returns; uploads are added with Register.
type Catalog struct {
	samples []core.Dataset
	store   state.Store
	logger  *slog.Logger

	mu      sync.RWMutex
	uploads []core.Dataset
}

// New creates an empty catalog. store may be nil, in which case uploads
// are kept in memory only.
func New(store state.Store, logger *slog.Logger) *Catalog {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Catalog{store: store, logger: logger}
}

// Seed drops and recreates every sample table in the engine, then records
// their columns and row counts.
func (c *Catalog) Seed(ctx context.Context, adp adapter.Adapter) error {
	defs, err := Definitions()
	if err != nil {
		return err
	}

	samples := make([]core.Dataset, 0, len(defs))
	for _, def := range defs {
		if err := adp.Exec(ctx, "DROP TABLE IF EXISTS "+def.TableName); err != nil {
			return fmt.Errorf("seed %s: %w", def.ID, err)
		}
		for _, stmt := range def.Seed {
			if err := adp.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("seed %s: %w", def.ID, err)
			}
		}

		ds := def.Dataset
		meta, err := adp.GetTableMetadata(ctx, def.TableName)
		if err != nil {
			return fmt.Errorf("seed %s: %w", def.ID, err)
		}
		ds.Columns = meta.ColumnNames()
		ds.RowCount = meta.RowCount
		samples = append(samples, ds)

		c.logger.Debug("seeded sample dataset",
			slog.String("table", ds.TableName),
			slog.Int64("rows", ds.RowCount))
	}

	c.samples = samples
	return nil
}

// Fetcher resolves a stored upload location to a local file.
type Fetcher interface {
	Fetch(ctx context.Context, location string) (string, error)
}

// Restore re-registers uploads recorded in the store. Tables missing from
// the engine are reloaded from upload storage; uploads whose file can no
// longer be fetched are skipped.
func (c *Catalog) Restore(ctx context.Context, adp adapter.Adapter, files Fetcher) error {
	if c.store == nil {
		return nil
	}
	uploads, err := c.store.ListUploads(ctx)
	if err != nil {
		return err
	}

	restored := make([]core.Dataset, 0, len(uploads))
	for i := range uploads {
		u := &uploads[i]
		if _, err := adp.GetTableMetadata(ctx, u.TableName); err != nil {
			path, fetchErr := files.Fetch(ctx, u.Location)
			if fetchErr != nil {
				c.logger.Warn("skipping upload with no stored file",
					slog.String("table", u.TableName),
					slog.String("location", u.Location))
				continue
			}
			if err := adp.LoadCSV(ctx, u.TableName, path); err != nil {
				c.logger.Warn("failed to reload upload",
					slog.String("table", u.TableName),
					slog.String("error", err.Error()))
				continue
			}
		}
		restored = append(restored, u.Dataset())
	}

	c.mu.Lock()
	c.uploads = restored
	c.mu.Unlock()

	c.logger.Debug("restored uploads", slog.Int("count", len(restored)))
	return nil
}

// Register records an upload in the store and the catalog. An upload with
// the same table name replaces the earlier entry.
func (c *Catalog) Register(ctx context.Context, u *core.Upload) (core.Dataset, error) {
	if c.store != nil {
		if err := c.store.CreateUpload(ctx, u); err != nil {
			return core.Dataset{}, err
		}
	}
	ds := u.Dataset()

	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.uploads {
		if c.uploads[i].TableName == ds.TableName {
			c.uploads[i] = ds
			return ds, nil
		}
	}
	c.uploads = append(c.uploads, ds)
	return ds, nil
}

// List returns samples followed by uploads.
func (c *Catalog) List() []core.Dataset {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]core.Dataset, 0, len(c.samples)+len(c.uploads))
	out = append(out, c.samples...)
	return append(out, c.uploads...)
}

// SampleNames returns the table names of the built-in datasets.
func (c *Catalog) SampleNames() []string {
	names := make([]string, len(c.samples))
	for i, s := range c.samples {
		names[i] = s.TableName
	}
	return names
}

// Get looks up a dataset by id.
func (c *Catalog) Get(id string) (core.Dataset, error) {
	for _, s := range c.samples {
		if s.ID == id {
			return s, nil
		}
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, u := range c.uploads {
		if u.ID == id {
			return u, nil
		}
	}
	return core.Dataset{}, fmt.Errorf("%w: %s", ErrUnknownDataset, id)
}
