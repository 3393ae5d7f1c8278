// Package main provides the AgentFlow HTTP server: flow CRUD, execution
// with streaming, and debug endpoints.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	_ "net/http/pprof" // register /debug/pprof
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "modernc.org/sqlite"

	"github.com/sipsyai/agentflow/internal/adapters/delivery"
	"github.com/sipsyai/agentflow/internal/adapters/repository/memory"
	"github.com/sipsyai/agentflow/internal/adapters/repository/postgres"
	"github.com/sipsyai/agentflow/internal/adapters/repository/sqlite"
	"github.com/sipsyai/agentflow/internal/adapters/runtime/openai"
	"github.com/sipsyai/agentflow/internal/app/usecases"
	"github.com/sipsyai/agentflow/internal/core/flow"
	"github.com/sipsyai/agentflow/internal/infrastructure/config"
)

// Version information set during build
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func run() error {
	cfg, err := config.Load(os.Getenv("AGENTFLOW_CONFIG"))
	if err != nil {
		return err
	}
	logger := newLogger(cfg.App)
	slog.SetDefault(logger)

	flows, closeStore, err := openFlowStore(cfg.Storage)
	if err != nil {
		return err
	}
	defer closeStore()

	content := memory.NewContentStore()
	if path := os.Getenv("AGENTFLOW_CONTENT_FILE"); path != "" {
		if err := loadContent(path, content); err != nil {
			return fmt.Errorf("loading content file: %w", err)
		}
	}

	agentRuntime := newAgentRuntime(cfg.Runtime)

	sinks := delivery.DefaultSinks(
		delivery.NewFileSink(cfg.Output.FileDir),
		delivery.NewWebhookSink(nil),
		emailSink(cfg.Output),
		databaseSink(cfg.Storage),
	)

	registry := usecases.NewHandlerRegistry()
	registry.Register(flow.NodeTypeInput, usecases.NewInputHandler())
	registry.Register(flow.NodeTypeAgent, usecases.NewAgentHandler(content, content, agentRuntime, cfg.RateTable(), cfg.Runtime.DefaultModel))
	registry.Register(flow.NodeTypeOutput, usecases.NewOutputHandler(sinks))

	executor := usecases.NewFlowExecutor(flows, registry, logger)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: newRouter(executor, flows, content, logger),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", "addr", srv.Addr, "version", Version)
		errCh <- srv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		logger.Info("shutting down", "signal", sig.String())
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}
}

func newLogger(app config.AppConfig) *slog.Logger {
	var level slog.Level
	switch app.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if app.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

// openFlowStore builds the configured repository backend. The returned
// func releases its resources.
func openFlowStore(sc config.StorageConfig) (usecases.FlowRepository, func(), error) {
	switch sc.Driver {
	case "sqlite":
		store, err := sqlite.Open(context.Background(), sc.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { store.Close() }, nil
	case "postgres":
		pool, err := pgxpool.New(context.Background(), sc.PostgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to postgres: %w", err)
		}
		store := postgres.NewFlowStore(pool, nil)
		if err := store.CreateTables(context.Background()); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return store, func() { store.Close() }, nil
	default:
		return memory.NewFlowStore(), func() {}, nil
	}
}

func newAgentRuntime(rc config.RuntimeConfig) usecases.AgentRuntime {
	opts := []openai.Option{openai.WithTemperature(float32(rc.Temperature))}
	if rc.BaseURL != "" {
		return openai.NewRuntimeWithBaseURL(rc.APIKey, rc.BaseURL, rc.DefaultModel, opts...)
	}
	return openai.NewRuntime(rc.APIKey, rc.DefaultModel, opts...)
}

func emailSink(oc config.OutputConfig) *delivery.EmailSink {
	if oc.SMTPAddr == "" {
		return nil
	}
	return delivery.NewEmailSink(oc.SMTPAddr, oc.EmailFrom, nil)
}

// databaseSink reuses the sqlite path for output rows; the postgres
// driver ships without a database sink since flow_outputs is a local
// convenience table.
func databaseSink(sc config.StorageConfig) *delivery.DatabaseSink {
	if sc.Driver != "sqlite" {
		return nil
	}
	db, err := sql.Open("sqlite", sc.SQLitePath)
	if err != nil {
		return nil
	}
	return delivery.NewDatabaseSink(db)
}
