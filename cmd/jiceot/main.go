package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"jiceot/internal/cache"
	"jiceot/internal/cli"
	apphttp "jiceot/internal/http"
	"jiceot/internal/log"
	"jiceot/internal/services"
)

const cacheSweepInterval = time.Minute

func main() {
	cli.LoadEnvFile()

	cfg := cli.LoadAndValidateConfig(log.New(log.DefaultConfig()))
	logger := cli.SetupLogger(cfg.LogLevel, log.ComponentApp)
	logger.Info("Starting jiceot", log.FieldOperation, log.OpStartup)

	res := cli.InitBackend(context.Background(), logger, cfg)

	due := services.NewDueService(res.Store, res.Publisher, logger, services.DueServiceConfig{
		DueSoonDays:   &cfg.DueSoonDays,
		UpcomingLimit: cfg.DashboardUpcomingLimit,
		Location:      cfg.Location(),
		CacheTTL:      cfg.CacheTTL,
		CacheSize:     cfg.CacheSize,
	})

	srv := apphttp.NewServer(":"+cfg.Port, due, apphttp.Options{
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		Logger:             logger,
		Ready:              res.Ready,
	})

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		if err := res.Close(); err != nil {
			logger.Error("Backend cleanup error", log.FieldError, err)
		}
	})

	caches := cache.NewManager(logger)
	for _, c := range due.Caches() {
		caches.Register(c)
	}
	go caches.Run(ctx, cacheSweepInterval)

	logger.Info("HTTP server listening",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"amqp_enabled", res.Publisher != nil)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
