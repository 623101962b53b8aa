// Package engine is the gateway between requests and the relational engine.
// Every query passes the keyword guard before it can reach the adapter;
// failures come back as plain-language explanations from the tutor.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/leapstack-labs/sqlplay/internal/catalog"
	"github.com/leapstack-labs/sqlplay/internal/guard"
	"github.com/leapstack-labs/sqlplay/internal/state"
	"github.com/leapstack-labs/sqlplay/internal/storage"
	"github.com/leapstack-labs/sqlplay/internal/tutor"
	"github.com/leapstack-labs/sqlplay/pkg/adapter"
	"github.com/leapstack-labs/sqlplay/pkg/core"
)

// Defaults applied when Options leave a limit at zero.
const (
	DefaultMaxRows      = 1000
	DefaultQueryTimeout = 30 * time.Second
	DefaultPreviewRows  = 10
	MaxPreviewRows      = 100
)

// Options holds the collaborators and limits of an Engine.
type Options struct {
	Guard        *guard.Guard
	Tutor        core.Tutor
	Catalog      *catalog.Catalog
	Files        storage.Storage
	MaxRows      int
	QueryTimeout time.Duration
	Logger       *slog.Logger

	// OnUpload is called after an upload has been registered.
	OnUpload func(core.Dataset)
}

// Engine runs, explains, exports and uploads on behalf of a learner.
type Engine struct {
	db           adapter.Adapter
	guard        *guard.Guard
	tutor        core.Tutor
	catalog      *catalog.Catalog
	files        storage.Storage
	maxRows      int
	queryTimeout time.Duration
	logger       *slog.Logger
	onUpload     func(core.Dataset)

	closers []func() error
}

// New wraps a connected adapter. Nil options fall back to the default
// guard, the rule-based tutor and an in-memory catalog.
func New(db adapter.Adapter, opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	e := &Engine{
		db:           db,
		guard:        opts.Guard,
		tutor:        opts.Tutor,
		catalog:      opts.Catalog,
		files:        opts.Files,
		maxRows:      opts.MaxRows,
		queryTimeout: opts.QueryTimeout,
		logger:       logger,
		onUpload:     opts.OnUpload,
	}
	if e.guard == nil {
		e.guard = guard.New()
	}
	if e.tutor == nil {
		e.tutor = tutor.RuleBased{}
	}
	if e.catalog == nil {
		e.catalog = catalog.New(nil, logger)
	}
	if e.maxRows <= 0 {
		e.maxRows = DefaultMaxRows
	}
	if e.queryTimeout <= 0 {
		e.queryTimeout = DefaultQueryTimeout
	}
	return e
}

// Config describes a fully wired engine for Open.
type Config struct {
	Target       core.AdapterConfig
	StatePath    string
	Storage      storage.Config
	GuardExtra   []string
	MaxRows      int
	QueryTimeout time.Duration
	Tutor        core.Tutor
	Logger       *slog.Logger
	OnUpload     func(core.Dataset)
}

// Open connects the configured adapter, opens the metadata store and
// upload storage, seeds the sample datasets and restores earlier uploads.
func Open(ctx context.Context, cfg Config) (*Engine, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if cfg.Target.Type == "" {
		cfg.Target.Type = "sqlite"
	}

	db, err := adapter.NewAdapter(cfg.Target, logger)
	if err != nil {
		return nil, err
	}
	logger.Debug("connecting engine", slog.String("adapter", cfg.Target.Type))
	if err := db.Connect(ctx, cfg.Target); err != nil {
		return nil, fmt.Errorf("failed to connect %s: %w", cfg.Target.Type, err)
	}

	statePath := cfg.StatePath
	if statePath == "" {
		statePath = ":memory:"
	}
	store := state.NewSQLiteStore()
	if err := store.Open(statePath); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to open state store: %w", err)
	}

	files, err := storage.New(ctx, cfg.Storage, logger)
	if err != nil {
		_ = store.Close()
		_ = db.Close()
		return nil, err
	}

	e := New(db, Options{
		Guard:        guard.New(cfg.GuardExtra...),
		Tutor:        cfg.Tutor,
		Catalog:      catalog.New(store, logger),
		Files:        files,
		MaxRows:      cfg.MaxRows,
		QueryTimeout: cfg.QueryTimeout,
		Logger:       logger,
		OnUpload:     cfg.OnUpload,
	})
	e.closers = append(e.closers, store.Close)

	if err := e.Init(ctx); err != nil {
		_ = e.Close()
		return nil, err
	}
	return e, nil
}

// Init seeds the sample datasets and restores registered uploads.
func (e *Engine) Init(ctx context.Context) error {
	if err := e.catalog.Seed(ctx, e.db); err != nil {
		return fmt.Errorf("failed to seed sample datasets: %w", err)
	}
	if e.files != nil {
		if err := e.catalog.Restore(ctx, e.db, e.files); err != nil {
			return fmt.Errorf("failed to restore uploads: %w", err)
		}
	}
	e.logger.Info("engine ready",
		slog.String("dialect", e.db.DialectName()),
		slog.Int("datasets", len(e.catalog.List())))
	return nil
}

// Close releases the adapter and the metadata store.
func (e *Engine) Close() error {
	var firstErr error
	for _, c := range e.closers {
		if err := c(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if err := e.db.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// Dialect returns the engine's SQL dialect name.
func (e *Engine) Dialect() string { return e.db.DialectName() }

// Guard returns the query guard.
func (e *Engine) Guard() *guard.Guard { return e.guard }

// Tutor returns the explanation provider.
func (e *Engine) Tutor() core.Tutor { return e.tutor }
