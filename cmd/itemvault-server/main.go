// Package main is the entry point for the ItemVault API server.
// ItemVault is a multi-tenant item store with token-based authentication.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/itemvault-io/itemvault/internal/config"
	"github.com/itemvault-io/itemvault/internal/handler"
	"github.com/itemvault-io/itemvault/internal/metrics"
	"github.com/itemvault-io/itemvault/internal/repository"
	"github.com/itemvault-io/itemvault/internal/repository/postgres"
	"github.com/itemvault-io/itemvault/internal/repository/sqlite"
	"github.com/itemvault-io/itemvault/internal/service"
	"github.com/itemvault-io/itemvault/internal/token"
)

// Version information (set at build time)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	configPath := flag.String("config", "", "path to config file (optional)")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("ItemVault API Server\n")
		fmt.Printf("Version: %s\n", Version)
		fmt.Printf("Build Time: %s\n", BuildTime)
		fmt.Printf("Git Commit: %s\n", GitCommit)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Logging)
	logger.Info().
		Str("version", Version).
		Str("git_commit", GitCommit).
		Msg("starting ItemVault server")

	if err := run(cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("server exited with error")
	}
}

func run(cfg *config.Config, logger zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	userRepo, itemRepo, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	tokens, err := token.NewManager(cfg.Auth)
	if err != nil {
		return fmt.Errorf("failed to create token manager: %w", err)
	}

	users := service.NewUserService(userRepo, logger)
	items := service.NewItemService(itemRepo, logger)

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}

	router := handler.NewRouter(handler.RouterConfig{
		Users:   users,
		Items:   items,
		Tokens:  tokens,
		Metrics: m,
		Config:  cfg,
		Logger:  logger,
		Version: Version,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 2)

	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	var metricsSrv *http.Server
	if m != nil {
		mux := http.NewServeMux()
		mux.Handle(cfg.Metrics.Path, m.Handler())
		metricsSrv = &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.Metrics.Port),
			Handler: mux,
		}
		go func() {
			logger.Info().Str("addr", metricsSrv.Addr).Str("path", cfg.Metrics.Path).Msg("metrics server listening")
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("metrics server: %w", err)
			}
		}()
	}

	select {
	case <-ctx.Done():
		logger.Info().Msg("shutdown signal received")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	if metricsSrv != nil {
		_ = metricsSrv.Shutdown(shutdownCtx)
	}

	logger.Info().Msg("server stopped")
	return nil
}

// openStore connects to the configured database backend and returns the
// repositories plus a close function. SQLite migrates itself on startup;
// PostgreSQL schemas are managed with the itemvault-migrate tool.
func openStore(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (repository.UserRepository, repository.ItemRepository, func(), error) {
	switch cfg.Database.Driver {
	case "sqlite":
		sqliteCfg := sqlite.DefaultConfig(cfg.Database.Path)
		if cfg.Database.JournalMode != "" {
			sqliteCfg.JournalMode = cfg.Database.JournalMode
		}
		if cfg.Database.BusyTimeout > 0 {
			sqliteCfg.BusyTimeout = cfg.Database.BusyTimeout
		}
		if cfg.Database.SynchronousMode != "" {
			sqliteCfg.SynchronousMode = cfg.Database.SynchronousMode
		}

		db, err := sqlite.NewDB(ctx, sqliteCfg, logger)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to open sqlite database: %w", err)
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, nil, nil, fmt.Errorf("failed to migrate sqlite database: %w", err)
		}
		return sqlite.NewUserRepository(db), sqlite.NewItemRepository(db), func() { db.Close() }, nil

	case "postgres":
		db, err := postgres.NewDB(ctx, cfg.Database, logger)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		return postgres.NewUserRepository(db), postgres.NewItemRepository(db), func() { db.Close() }, nil

	default:
		return nil, nil, nil, fmt.Errorf("unsupported database driver: %s", cfg.Database.Driver)
	}
}

// newLogger builds the root logger from the logging configuration.
func newLogger(cfg config.LoggingConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		level = zerolog.InfoLevel
	}

	zerolog.TimeFieldFormat = cfg.TimeFormat
	if zerolog.TimeFieldFormat == "" {
		zerolog.TimeFieldFormat = time.RFC3339
	}

	var logger zerolog.Logger
	if cfg.Format == "console" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	} else {
		logger = zerolog.New(os.Stderr)
	}

	return logger.Level(level).With().Timestamp().Logger()
}
