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

	"github.com/rparrett/synthlang-web/internal/config"
	"github.com/rparrett/synthlang-web/internal/observability"
)

func main() {
	var envFile string
	flag.StringVar(&envFile, "env-file", ".env", "optional dotenv file with local overrides")
	flag.Parse()

	cfg, err := config.Load(context.Background(), config.WithEnvFile(envFile))
	if err != nil {
		// no logger yet; fall back to a development logger for the fatal line
		zap.NewExample().Fatal("load config", zap.Error(err))
	}

	logger, err := observability.NewLogger(cfg.App.LogLevel)
	if err != nil {
		zap.NewExample().Fatal("build logger", zap.Error(err))
	}
	defer func() { _ = logger.Sync() }()

	a, err := newApp(cfg, logger)
	if err != nil {
		logger.Fatal("init app", zap.Error(err))
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           a.router(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server failed", zap.Error(err))
		}
	}()

	logger.Info("web listening",
		zap.String("addr", srv.Addr),
		zap.String("env", cfg.App.Environment),
		zap.Bool("dev", cfg.App.Dev),
		zap.String("version", cfg.App.Version),
	)

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
		cancel()
		stop()
		os.Exit(1)
	}
}
