package commands

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/sqlplay/internal/server"
	"github.com/leapstack-labs/sqlplay/internal/server/notifier"
)

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the playground HTTP API",
		Long: `Start the HTTP API used by the playground frontend.

The server seeds the sample datasets, restores earlier uploads and serves
until interrupted.`,
		Example: `  sqlplay serve
  sqlplay serve --port 9000
  SQLPLAY_SERVER__SESSION_SECRET=change-me sqlplay serve`,
		RunE: runServe,
	}

	cmd.Flags().Int("port", 0, fmt.Sprintf("Port to listen on (default %d)", server.DefaultPort))
	cmd.Flags().String("host", "", "Interface to bind (default all)")
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cc := NewCommandContextWithoutEngine(cmd)
	cfg := cc.Cfg
	logger := cc.Logger

	secret := cfg.Server.SessionSecret
	if secret == "" {
		var err error
		if secret, err = randomSecret(); err != nil {
			return err
		}
		logger.Warn("server.session_secret not set, sessions will not survive a restart")
	}

	notify := notifier.New()
	eng, err := OpenEngine(ctx, cfg, logger, notify.DatasetAdded)
	if err != nil {
		return err
	}
	defer func() {
		if err := eng.Close(); err != nil {
			logger.Warn("failed to close engine", slog.String("error", err.Error()))
		}
	}()

	srv, err := server.New(server.Config{
		Engine:         eng,
		Notifier:       notify,
		Host:           cfg.Server.Host,
		Port:           cfg.Server.Port,
		SessionSecret:  secret,
		TokenTTL:       cfg.Server.TokenTTL,
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
		Logger:         logger,
	})
	if err != nil {
		return err
	}

	cc.Renderer.Success(fmt.Sprintf("sqlplay listening on http://%s (%s)", srv.Addr(), eng.Dialect()))
	return srv.Serve(ctx)
}

func randomSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate session secret: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
