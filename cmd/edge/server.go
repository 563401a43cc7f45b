package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/belovedchibuikem/smart-housing-pro-sub007/internal/shell/api"
	"github.com/belovedchibuikem/smart-housing-pro-sub007/internal/shell/gateway"
	"github.com/belovedchibuikem/smart-housing-pro-sub007/internal/shell/invalidation"
	"github.com/belovedchibuikem/smart-housing-pro-sub007/internal/shell/validator"
)

// =============================================================================
// Exit Codes
// =============================================================================

const (
	ExitSuccess         = 0
	ExitConfigError     = 1
	ExitHTTPServerError = 2
)

// =============================================================================
// Server
// =============================================================================

// Server represents the tenant edge application server.
type Server struct {
	config     *Config
	httpServer *http.Server
	listener   *invalidation.Listener
	logger     *slog.Logger
}

// NewServer creates a new server with the given config.
func NewServer(cfg *Config, logger *slog.Logger) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, &ServerError{
			Op:       "NewServer",
			Err:      err,
			ExitCode: ExitConfigError,
		}
	}

	resolver := cfg.Resolver()
	policy := cfg.Policy()

	// Validation backend, optionally behind the TTL cache
	client := validator.NewClient(validator.Config{
		BaseURL: cfg.Backend.BaseURL,
		Timeout: cfg.Backend.Timeout,
	}, logger)

	var v validator.Validator = client
	var cache *validator.Cache
	if cfg.Cache.Enabled {
		cache = validator.NewCache(client, validator.CacheConfig{
			Size:        cfg.Cache.Size,
			TTL:         cfg.Cache.TTL,
			NegativeTTL: cfg.Cache.NegativeTTL,
		}, logger)
		v = cache
	}

	// Tenant-changed listener
	var listener *invalidation.Listener
	if cfg.Invalidation.RedisURL != "" {
		if cache == nil {
			logger.Warn("invalidation.redis_url is set but the cache is disabled, listener not started")
		} else {
			l, err := invalidation.NewListener(invalidation.Config{
				RedisURL: cfg.Invalidation.RedisURL,
				Channel:  cfg.Invalidation.Channel,
			}, cache, logger)
			if err != nil {
				return nil, &ServerError{
					Op:       "NewServer",
					Err:      err,
					ExitCode: ExitConfigError,
				}
			}
			listener = l
		}
	}

	// Admin API
	var admin http.Handler
	if cfg.Admin.SharedSecret != "" {
		var adminCache api.Cache
		if cache != nil {
			adminCache = cache
		}
		admin = api.NewHandler(resolver, policy, adminCache, cfg.Admin.SharedSecret, logger).Routes()
	}

	router := gateway.NewRouter(resolver, policy, v, logger)
	edge, err := gateway.NewServer(gateway.Config{
		PlatformDomain: cfg.Platform.Domain,
		UpstreamURL:    cfg.Upstream.URL,
	}, router, admin, logger)
	if err != nil {
		return nil, &ServerError{
			Op:       "NewServer",
			Err:      err,
			ExitCode: ExitConfigError,
		}
	}

	httpServer := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      edge.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	logger.Info("edge configured",
		"platform_domain", cfg.Platform.Domain,
		"backend", cfg.Backend.BaseURL,
		"upstream", edge.Upstream().String(),
		"cache_enabled", cache != nil,
		"invalidation", listener != nil,
		"admin_api", admin != nil,
		"enforcement", policy.Enforcement,
	)

	return &Server{
		config:     cfg,
		httpServer: httpServer,
		listener:   listener,
		logger:     logger,
	}, nil
}

// Start starts the server and blocks until shutdown.
func (s *Server) Start(ctx context.Context) error {
	// Setup signal handling
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	// Start tenant-changed listener; on failure only TTLs expire entries
	if s.listener != nil {
		if err := s.listener.Start(); err != nil {
			s.logger.Error("failed to start invalidation listener", "error", err)
			s.listener = nil
		}
	}

	// Start HTTP server in goroutine
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting edge server",
			"address", s.config.Server.Address())
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Wait for shutdown signal or error
	select {
	case sig := <-sigCh:
		s.logger.Info("received shutdown signal", "signal", sig)
	case err := <-errCh:
		s.stopListener()
		return &ServerError{
			Op:       "Start",
			Err:      err,
			ExitCode: ExitHTTPServerError,
		}
	case <-ctx.Done():
		s.logger.Info("context cancelled")
	}

	return s.Shutdown(context.Background())
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("initiating graceful shutdown")

	// Create shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(ctx, s.config.Server.ShutdownTimeout)
	defer cancel()

	// Shutdown HTTP server
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
	}

	s.stopListener()

	s.logger.Info("shutdown complete")
	return nil
}

func (s *Server) stopListener() {
	if s.listener != nil {
		s.listener.Stop()
		s.listener = nil
	}
}

// =============================================================================
// Server Error
// =============================================================================

// ServerError represents an error during server operation.
type ServerError struct {
	Op       string
	Err      error
	ExitCode int
}

func (e *ServerError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *ServerError) Unwrap() error {
	return e.Err
}
