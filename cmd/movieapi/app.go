package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/nkiryanov/movieapi/internal/db"
	"github.com/nkiryanov/movieapi/internal/handlers"
	"github.com/nkiryanov/movieapi/internal/logger"
	"github.com/nkiryanov/movieapi/internal/repository/postgres"
	"github.com/nkiryanov/movieapi/internal/service/auth"
	"github.com/nkiryanov/movieapi/internal/service/auth/tokenmanager"
	"github.com/nkiryanov/movieapi/internal/telemetry"
)

const shutdownTimeout = 5 * time.Second

type ServerApp struct {
	ListenAddr string
	Handler    http.Handler

	logger logger.Logger
	pool   *pgxpool.Pool
	otel   *telemetry.OTel
}

func NewServerApp(ctx context.Context, c *Config) (*ServerApp, error) {
	// Initialize logger
	logger, err := logger.New(c.Environment, c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("error while initializing logger: %w", err)
	}

	tokenManager, err := tokenmanager.New(tokenmanager.Config{
		AccessSecret:  c.AccessSecret,
		RefreshSecret: c.RefreshSecret,
		AccessTTL:     c.AccessTTL,
		RefreshTTL:    c.RefreshTTL,
	})
	if err != nil {
		return nil, fmt.Errorf("error while creating token manager. Err: %w", err)
	}

	otel, err := telemetry.Setup(ctx, telemetry.Config{
		Enable:      c.OTELEnable,
		Endpoint:    c.OTELEndpoint,
		SampleRatio: c.OTELSampleRatio,
	})
	if err != nil {
		return nil, fmt.Errorf("error while setting up tracing. Err: %w", err)
	}

	// Connect to the database and run migrations
	pool, err := db.ConnectAndMigrate(ctx, c.DatabaseDSN)
	if err != nil {
		_ = otel.Shutdown(ctx)
		return nil, fmt.Errorf("error while connecting to db. Err: %w", err)
	}

	storage := postgres.NewStorage(pool, c.StoreTimeout)

	authService, err := auth.NewService(auth.Config{
		InsecureCookies: c.InsecureCookies,
		RefreshTimeout:  c.RefreshTimeout,
	}, tokenManager, storage.User())
	if err != nil {
		pool.Close()
		_ = otel.Shutdown(ctx)
		return nil, fmt.Errorf("error while creating auth service. Err: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	mux := handlers.NewRouter(authService, storage, pool, reg, logger)

	return &ServerApp{
		ListenAddr: c.ListenAddr,
		Handler:    mux,
		logger:     logger,
		pool:       pool,
		otel:       otel,
	}, nil
}

// Run starts http server and closes gracefully on context cancellation.
// Database pool and tracer are released when it returns.
func (s *ServerApp) Run(ctx context.Context) error {
	defer s.pool.Close()
	defer func() {
		if err := s.otel.Shutdown(context.Background()); err != nil {
			s.logger.Warn("tracer shutdown failed", "error", err)
		}
	}()

	httpServer := &http.Server{
		Addr:              s.ListenAddr,
		Handler:           s.Handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	idleConnsClosed := make(chan struct{})
	srvCtx, srvCtxCancel := context.WithCancel(ctx)
	defer srvCtxCancel()

	go func() {
		<-srvCtx.Done()

		timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := httpServer.Shutdown(timeoutCtx); errors.Is(err, context.DeadlineExceeded) {
			s.logger.Error("HTTP server shutdown timeout exceeded, forcing shutdown...")
		}
		s.logger.Info("HTTP server stopped")
		close(idleConnsClosed)
	}()

	// Listen and serve until context is cancelled; then close gracefully connections
	s.logger.Info("Starting server", "address", s.ListenAddr)
	err := httpServer.ListenAndServe()
	srvCtxCancel()
	<-idleConnsClosed

	return err
}
