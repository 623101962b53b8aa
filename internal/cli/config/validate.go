package config

import (
	"errors"
	"fmt"

	"github.com/leapstack-labs/sqlplay/internal/cli/output"
	"github.com/leapstack-labs/sqlplay/internal/storage"
	"github.com/leapstack-labs/sqlplay/pkg/adapter"
)

// Validate checks the configuration. Adapter types are checked against
// the registry, so adapter packages must be linked in.
func (c *Config) Validate() error {
	var errs []error

	if c.Target.Type == "" {
		errs = append(errs, errors.New("target type is required"))
	} else if !adapter.IsRegistered(c.Target.Type) {
		errs = append(errs, &adapter.UnknownAdapterError{Type: c.Target.Type, Available: adapter.ListAdapters()})
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port))
	}
	if c.Server.MaxUploadBytes < 0 {
		errs = append(errs, errors.New("server.max_upload_bytes must not be negative"))
	}
	if c.Engine.MaxRows < 0 {
		errs = append(errs, errors.New("engine.max_rows must not be negative"))
	}
	if c.Engine.QueryTimeout < 0 {
		errs = append(errs, errors.New("engine.query_timeout must not be negative"))
	}

	switch c.Storage.Type {
	case "", storage.TypeLocal:
	case storage.TypeS3:
		if c.Storage.Bucket == "" {
			errs = append(errs, errors.New("storage.bucket is required for s3 storage"))
		}
	default:
		errs = append(errs, fmt.Errorf("storage.type must be %q or %q, got %q", storage.TypeLocal, storage.TypeS3, c.Storage.Type))
	}

	if _, err := output.ParseMode(c.OutputFormat); err != nil {
		errs = append(errs, err)
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
