// Package server provides the HTTP API for the SQL playground.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"
	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/sqlplay/internal/engine"
	"github.com/leapstack-labs/sqlplay/internal/server/features/datasets"
	"github.com/leapstack-labs/sqlplay/internal/server/features/session"
	"github.com/leapstack-labs/sqlplay/internal/server/notifier"
	"github.com/leapstack-labs/sqlplay/internal/server/router"
)

// DefaultPort is used when Config.Port is zero.
const DefaultPort = 8000

const shutdownTimeout = 5 * time.Second

// Server is the playground HTTP server.
type Server struct {
	engine         *engine.Engine
	sessionStore   *sessions.CookieStore
	issuer         *session.Issuer
	notifier       *notifier.Notifier
	host           string
	port           int
	maxUploadBytes int64
	logger         *slog.Logger
}

// Config holds configuration for the server.
type Config struct {
	Engine *engine.Engine
	// Notifier must be the one the engine announces uploads on.
	Notifier       *notifier.Notifier
	Host           string
	Port           int
	SessionSecret  string
	TokenTTL       time.Duration
	MaxUploadBytes int64
	Logger         *slog.Logger
}

// New creates a server instance.
func New(cfg Config) (*Server, error) {
	if cfg.Engine == nil {
		return nil, errors.New("server requires an engine")
	}
	issuer, err := session.NewIssuer(cfg.SessionSecret, cfg.TokenTTL)
	if err != nil {
		return nil, err
	}

	sessionStore := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	sessionStore.MaxAge(int(issuer.TTL().Seconds()))
	sessionStore.Options.Path = "/"
	sessionStore.Options.HttpOnly = true
	sessionStore.Options.SameSite = http.SameSiteLaxMode

	if cfg.Notifier == nil {
		cfg.Notifier = notifier.New()
	}
	if cfg.Port == 0 {
		cfg.Port = DefaultPort
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = datasets.DefaultMaxUploadBytes
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}

	return &Server{
		engine:         cfg.Engine,
		sessionStore:   sessionStore,
		issuer:         issuer,
		notifier:       cfg.Notifier,
		host:           cfg.Host,
		port:           cfg.Port,
		maxUploadBytes: cfg.MaxUploadBytes,
		logger:         cfg.Logger,
	}, nil
}

// Handler builds the routed handler with middleware applied.
func (s *Server) Handler() (http.Handler, error) {
	r := chi.NewMux()
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		s.requestLogger,
		middleware.Recoverer,
	)

	err := router.SetupRoutes(r, router.Deps{
		Engine:         s.engine,
		SessionStore:   s.sessionStore,
		Issuer:         s.issuer,
		Notifier:       s.notifier,
		MaxUploadBytes: s.maxUploadBytes,
		Logger:         s.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to setup routes: %w", err)
	}
	return r, nil
}

// Addr is the listen address.
func (s *Server) Addr() string {
	return net.JoinHostPort(s.host, fmt.Sprint(s.port))
}

// Serve starts the server and blocks until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.Addr())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.Addr(), err)
	}
	return s.ServeListener(ctx, ln)
}

// ServeListener serves on ln until the context is cancelled.
func (s *Server) ServeListener(ctx context.Context, ln net.Listener) error {
	handler, err := s.Handler()
	if err != nil {
		_ = ln.Close()
		return err
	}

	s.logger.Info("starting server", "addr", "http://"+ln.Addr().String(), "dialect", s.engine.Dialect())

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Handler: handler,
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	eg.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		s.logger.Debug("shutting down server...")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// Notifier returns the notifier SSE clients subscribe to.
func (s *Server) Notifier() *notifier.Notifier {
	return s.notifier
}

// requestLogger logs one line per request through the server's logger.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.Status()),
			slog.Int("bytes", ww.BytesWritten()),
			slog.Duration("duration", time.Since(start)),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}
