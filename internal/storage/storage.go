// Package storage keeps the raw bytes of uploaded CSV files.
//
// Engines load CSVs from the local filesystem, so every backend hands back
// a local path alongside the durable location it recorded.
package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
)

// Backend names accepted in configuration.
const (
	TypeLocal = "local"
	TypeS3    = "s3"
)

// Object is a stored upload.
type Object struct {
	// Location is the durable address recorded in the metadata store.
	Location string

	// Path is a local file holding the same bytes.
	Path string

	// Size is the number of bytes written.
	Size int64
}

// Storage persists uploaded files.
type Storage interface {
	// Put stores the contents of r under key.
	Put(ctx context.Context, key string, r io.Reader) (Object, error)

	// Fetch returns a local path for a previously stored location,
	// downloading it first if needed.
	Fetch(ctx context.Context, location string) (string, error)

	// Delete removes a stored location. Deleting a missing object is not an error.
	Delete(ctx context.Context, location string) error
}

// Config selects and configures the storage backend.
type Config struct {
	Type      string `koanf:"type"`
	Dir       string `koanf:"dir"`
	Bucket    string `koanf:"bucket"`
	Prefix    string `koanf:"prefix"`
	Region    string `koanf:"region"`
	Endpoint  string `koanf:"endpoint"`
	AccessKey string `koanf:"access_key"`
	SecretKey string `koanf:"secret_key"`
}

// New builds the backend named by cfg.Type. An empty type means local.
func New(ctx context.Context, cfg Config, logger *slog.Logger) (Storage, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	switch cfg.Type {
	case "", TypeLocal:
		return NewLocal(cfg.Dir)
	case TypeS3:
		return NewS3(ctx, cfg, logger)
	default:
		return nil, fmt.Errorf("unknown storage type %q (expected %s or %s)", cfg.Type, TypeLocal, TypeS3)
	}
}
