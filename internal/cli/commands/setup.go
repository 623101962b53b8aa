// Package commands implements the sqlplay subcommands.
package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/sqlplay/internal/cli/config"
	"github.com/leapstack-labs/sqlplay/internal/cli/output"
	"github.com/leapstack-labs/sqlplay/internal/engine"
	"github.com/leapstack-labs/sqlplay/internal/llm"
	"github.com/leapstack-labs/sqlplay/internal/tutor"
	"github.com/leapstack-labs/sqlplay/pkg/core"
)

// ErrQueryFailed is returned after a database error has been explained to
// the user, so the process exits non-zero without repeating the message.
var ErrQueryFailed = errors.New("query failed")

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Engine   *engine.Engine
	Renderer *output.Renderer
}

// NewCommandContext creates a CommandContext with engine and renderer.
// Returns the context and a cleanup function that must be called (typically via defer).
func NewCommandContext(cmd *cobra.Command) (*CommandContext, func(), error) {
	cc := NewCommandContextWithoutEngine(cmd)

	eng, err := OpenEngine(cmd.Context(), cc.Cfg, cc.Logger, nil)
	if err != nil {
		return nil, nil, err
	}
	cc.Engine = eng

	cleanup := func() {
		if err := eng.Close(); err != nil {
			cc.Logger.Warn("failed to close engine", slog.String("error", err.Error()))
		}
	}
	return cc, cleanup, nil
}

// NewCommandContextWithoutEngine creates a CommandContext without an engine.
// Useful for commands that don't need database access.
func NewCommandContextWithoutEngine(cmd *cobra.Command) *CommandContext {
	cfg := getConfig(cmd.Context())
	logger := config.GetLogger(cmd.Context())
	mode, err := output.ParseMode(cfg.OutputFormat)
	if err != nil {
		mode = output.ModeAuto
	}
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
	}
}

// getConfig returns the config loaded by the root command, or defaults
// when a command runs on its own.
func getConfig(ctx context.Context) *config.Config {
	if cfg := config.FromContext(ctx); cfg != nil {
		return cfg
	}
	cfg := &config.Config{StatePath: ":memory:", OutputFormat: config.DefaultOutput}
	config.ApplyTargetDefaults(&cfg.Target)
	return cfg
}

// NewTutor picks the explanation backend from the llm settings.
func NewTutor(cfg *config.Config, logger *slog.Logger) core.Tutor {
	return tutor.New(llm.Resolve(cfg.LLM, logger), cfg.LLM.Timeout, logger)
}

// OpenEngine wires the configured adapter, metadata store and upload
// storage into a ready engine.
func OpenEngine(ctx context.Context, cfg *config.Config, logger *slog.Logger, onUpload func(core.Dataset)) (*engine.Engine, error) {
	if cfg.StatePath != "" && cfg.StatePath != ":memory:" {
		if dir := filepath.Dir(cfg.StatePath); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return nil, fmt.Errorf("failed to create state directory: %w", err)
			}
		}
	}

	return engine.Open(ctx, engine.Config{
		Target:       cfg.Target.AdapterConfig(),
		StatePath:    cfg.StatePath,
		Storage:      cfg.Storage,
		GuardExtra:   cfg.Guard.ExtraKeywords,
		MaxRows:      cfg.Engine.MaxRows,
		QueryTimeout: cfg.Engine.QueryTimeout,
		Tutor:        NewTutor(cfg, logger),
		Logger:       logger,
		OnUpload:     onUpload,
	})
}
