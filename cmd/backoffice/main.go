package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/arguide/backoffice/internal/apiclient"
	"github.com/arguide/backoffice/internal/app"
	"github.com/arguide/backoffice/internal/audit"
	"github.com/arguide/backoffice/internal/console"
	"github.com/arguide/backoffice/internal/idempotency"
	"github.com/arguide/backoffice/internal/observability"
	"github.com/arguide/backoffice/internal/platform/cache"
	"github.com/arguide/backoffice/internal/platform/db"
	"github.com/arguide/backoffice/internal/resources/all"
	"github.com/arguide/backoffice/internal/session"
	"github.com/arguide/backoffice/internal/view"
	"github.com/arguide/backoffice/jobs"
	"github.com/arguide/backoffice/report"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN, db.Options{MaxConns: cfg.PGMaxConns})
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	if cfg.MigrateOnBoot {
		if err := db.Migrate(dbpool); err != nil {
			logger.Error("migrate", slog.Any("error", err))
			os.Exit(1)
		}
	}

	redisClient, err := cache.New(ctx, cfg.RedisAddr, cfg.RedisPassword, 0)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := session.NewManager(redisClient, "bo_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrf := session.NewCSRF(cfg.CSRFSecret)

	templates, err := view.NewEngine()
	if err != nil {
		logger.Error("parse templates", slog.Any("error", err))
		os.Exit(1)
	}

	api := apiclient.New(apiclient.Options{BaseURL: cfg.APIBaseURL, Timeout: cfg.APITimeout, Logger: logger})

	auditRepo := audit.NewRepository(dbpool)
	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword}
	var auditSink audit.Sink = auditRepo
	if cfg.AuditAsync {
		jobClient := jobs.NewClient(redisOpts)
		defer func() {
			if err := jobClient.Close(); err != nil {
				logger.Warn("job client close", slog.Any("error", err))
			}
		}()
		auditSink = jobClient
	}
	recorder := audit.NewRecorder(auditSink, logger)
	guard := idempotency.NewStore(dbpool)
	metrics := observability.NewMetrics()

	names := make([]string, 0, len(all.Bindings()))
	for _, b := range all.Bindings() {
		names = append(names, b.Name())
	}
	registry, err := all.Registry(audit.Binding(auditRepo, names))
	if err != nil {
		logger.Error("register resources", slog.Any("error", err))
		os.Exit(1)
	}

	pdfClient := report.NewClient(cfg.GotenbergURL)
	reportHandler := report.NewHandler(pdfClient, logger)

	inspector := asynq.NewInspector(redisOpts)
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	consoleHandler, err := console.New(console.Options{
		Registry:  registry,
		API:       api,
		Templates: templates,
		CSRF:      csrf,
		Logger:    logger,
		Observer:  metrics,
		Guard:     guard,
		Auditor:   recorder,
		Counters:  cache.NewCache(redisClient, "dashboard", cfg.DashboardCacheTTL),
		Reports:   report.NewRenderer(pdfClient),
		PageSize:  cfg.DefaultPageSize,
	})
	if err != nil {
		logger.Error("init console", slog.Any("error", err))
		os.Exit(1)
	}

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		SessionManager: sessionManager,
		CSRF:           csrf,
		Console:        consoleHandler,
		ReportHandler:  reportHandler,
		JobHandler:     jobHandler,
		Metrics:        metrics,
	})

	server := &http.Server{
		Addr:              cfg.AppAddr,
		Handler:           router,
		ReadTimeout:       cfg.AppReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.AppWriteTimeout,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("http server starting", slog.String("addr", cfg.AppAddr), slog.String("api", cfg.APIBaseURL))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", slog.Any("error", err))
	}
	logger.Info("http server stopped")
}
