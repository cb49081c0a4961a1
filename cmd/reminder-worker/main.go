package main

import (
	"context"
	"os"
	"time"

	"jiceot/internal/cache"
	"jiceot/internal/cli"
	"jiceot/internal/log"
	"jiceot/internal/services"
	"jiceot/internal/worker"
)

func main() {
	cli.LoadEnvFile()

	cfg := cli.LoadAndValidateConfig(log.New(log.DefaultConfig()))
	logger := cli.SetupLogger(cfg.LogLevel, log.ComponentReminder)
	logger.Info("Starting reminder-worker", log.FieldOperation, log.OpStartup)

	res := cli.InitBackend(context.Background(), logger, cfg)
	if res.Publisher == nil {
		logger.Error("Reminder worker needs a reachable AMQP broker; set AMQP_URL")
		_ = res.Close()
		os.Exit(1)
	}

	due := services.NewDueService(res.Store, res.Publisher, logger, services.DueServiceConfig{
		DueSoonDays: &cfg.DueSoonDays,
		Location:    cfg.Location(),
		CacheTTL:    cfg.CacheTTL,
		CacheSize:   cfg.CacheSize,
	})
	processor := services.NewReminderProcessor(due, res.Publisher, cfg.ReminderDaysBefore, logger)

	w, err := worker.NewReminderWorker(processor, cfg.ReminderSchedule, cfg.Location(), logger)
	if err != nil {
		logger.Error("Failed to schedule reminders", log.FieldError, err)
		_ = res.Close()
		os.Exit(1)
	}

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		select {
		case <-w.Stop().Done():
		case <-ctx.Done():
		}
		if err := res.Close(); err != nil {
			logger.Error("Backend cleanup error", log.FieldError, err)
		}
	})

	caches := cache.NewManager(logger)
	caches.Register(processor.Sent())
	go caches.Run(ctx, time.Hour)

	logger.Info("Reminder schedule configured",
		"schedule", cfg.ReminderSchedule,
		"days_before", cfg.ReminderDaysBefore,
		"timezone", cfg.Location().String())
	w.Start(ctx)

	cli.WaitForShutdown(ctx, done)
}
