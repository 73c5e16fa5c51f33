package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/EmiTor1144/09-prj-loreal-routine-builder/internal/assistant"
	"github.com/EmiTor1144/09-prj-loreal-routine-builder/internal/catalog"
	"github.com/EmiTor1144/09-prj-loreal-routine-builder/internal/config"
	"github.com/EmiTor1144/09-prj-loreal-routine-builder/internal/observability"
	"github.com/EmiTor1144/09-prj-loreal-routine-builder/internal/storage"
	"github.com/EmiTor1144/09-prj-loreal-routine-builder/internal/storefront"
	"github.com/EmiTor1144/09-prj-loreal-routine-builder/internal/view"
)

func main() {
	var envFile string
	flag.StringVar(&envFile, "env-file", ".env", "dotenv file with ROUTINE_* settings")
	flag.Parse()

	cfg, err := config.Load(config.WithEnvFile(envFile))
	if err != nil {
		// no logger yet
		_, _ = os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger, err := observability.NewLogger(observability.LoggerOptions{Level: cfg.Log.Level, File: cfg.Log.File, Dev: cfg.Dev})
	if err != nil {
		_, _ = os.Stderr.WriteString("logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := storage.Open(ctx, storage.Options{
		Driver:      cfg.Storage.Driver,
		SQLitePath:  cfg.Storage.SQLitePath,
		RedisAddr:   cfg.Storage.RedisAddr,
		RedisPrefix: cfg.Storage.RedisPrefix,
	})
	if err != nil {
		logger.Fatal("open storage", zap.String("driver", cfg.Storage.Driver), zap.Error(err))
	}
	defer func() { _ = store.Close() }()

	products := catalog.NewStore(cfg.Catalog.Source)
	if _, err := products.Load(observability.WithLogger(ctx, logger)); err != nil {
		// retried on first request
		logger.Warn("catalog unavailable at startup", zap.String("source", cfg.Catalog.Source), zap.Error(err))
	}

	client := assistant.NewClient(assistant.Options{
		Endpoint:  cfg.Assistant.Endpoint,
		Model:     cfg.Assistant.Model,
		WebSearch: cfg.Assistant.WebSearch,
		Timeout:   cfg.Assistant.Timeout,
	})
	if !client.Configured() {
		logger.Warn("ROUTINE_ASSISTANT_ENDPOINT is not set; chat replies will apologize")
	}

	views, err := view.New(view.Options{Dev: cfg.Dev})
	if err != nil {
		logger.Fatal("parse templates", zap.Error(err))
	}

	registry := storefront.NewRegistry(storefront.Deps{
		Catalog:     products,
		Store:       store,
		Assistant:   client,
		TurnTimeout: cfg.Assistant.Timeout,
		Logger:      logger,
	}, cfg.Workspace.IdleTTL)

	app := &server{
		registry:       registry,
		views:          views,
		logger:         logger,
		publicDir:      cfg.PublicDir,
		requestTimeout: cfg.Server.RequestTimeout,
		session:        sessionOptions(cfg, logger),
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           app.routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("web listening",
			zap.String("addr", cfg.Server.Addr),
			zap.Bool("dev", cfg.Dev),
			zap.String("storage", cfg.Storage.Driver),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
	logger.Info("web stopped")
}
