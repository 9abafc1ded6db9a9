package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/ledgerview/internal/accounts"
	"github.com/odyssey-erp/ledgerview/internal/app"
	"github.com/odyssey-erp/ledgerview/internal/disclosure"
	"github.com/odyssey-erp/ledgerview/internal/fetch"
	"github.com/odyssey-erp/ledgerview/internal/format"
	"github.com/odyssey-erp/ledgerview/internal/observability"
	"github.com/odyssey-erp/ledgerview/internal/platform/db"
	reporthttp "github.com/odyssey-erp/ledgerview/internal/reports/http"
	"github.com/odyssey-erp/ledgerview/internal/view"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.LoadEnvFile(".env"); err != nil {
		slog.Default().Error("load env file", slog.Any("error", err))
		os.Exit(1)
	}

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)
	metrics := observability.NewMetrics()

	templates, err := view.NewEngine()
	if err != nil {
		logger.Error("parse templates", slog.Any("error", err))
		os.Exit(1)
	}

	client, err := fetch.NewClient(cfg.BackendURL,
		fetch.WithTimeout(cfg.BackendTimeout),
		fetch.WithLogger(logger),
		fetch.WithRecorder(metrics),
	)
	if err != nil {
		logger.Error("backend client", slog.Any("error", err))
		os.Exit(1)
	}

	// LoadConfig has already validated both values.
	tag, _ := cfg.LocaleTag()
	links, _ := cfg.LinkTemplates()
	reportHandler := reporthttp.NewHandler(logger, reporthttp.NewBackendSource(client), templates, reporthttp.Options{
		Formatter: format.New(tag),
		Policy:    disclosure.Policy{Threshold: cfg.DisclosurePreviewChars},
		Links:     links,
		PageSize:  cfg.TablePageSize,
		Metrics:   metrics,
	})

	var accountsHandler *accounts.Handler
	if cfg.BackendEnabled() {
		var pool *pgxpool.Pool
		pool, err = db.New(ctx, cfg.PGDSN)
		if err != nil {
			logger.Error("connect postgres", slog.Any("error", err))
			os.Exit(1)
		}
		defer pool.Close()
		accountsHandler = accounts.NewHandler(logger, accounts.NewService(accounts.NewRepository(pool)))
	}

	router := app.NewRouter(app.RouterParams{
		Logger:          logger,
		Config:          cfg,
		ReportHandler:   reportHandler,
		AccountsHandler: accountsHandler,
		Metrics:         metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server",
			slog.String("addr", cfg.AppAddr),
			slog.String("backend", cfg.BackendURL),
			slog.String("locale", tag.String()),
			slog.Bool("builtin_backend", accountsHandler != nil),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
