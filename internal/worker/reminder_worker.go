package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"jiceot/internal/log"
)

// Runner performs one reminder pass as of now.
type Runner interface {
	Run(ctx context.Context, now time.Time) (int, error)
}

// ReminderWorker triggers a Runner on a cron schedule. Overlapping runs are
// skipped and a panicking run does not stop the schedule.
type ReminderWorker struct {
	runner Runner
	cron   *cron.Cron
	logger *log.Logger
	now    func() time.Time
	ctx    context.Context
}

// NewReminderWorker parses schedule as a standard five-field cron
// expression evaluated in loc.
func NewReminderWorker(runner Runner, schedule string, loc *time.Location, logger *log.Logger) (*ReminderWorker, error) {
	if loc == nil {
		loc = time.UTC
	}
	logger = logger.WithComponent(log.ComponentReminder)
	cl := cronLogger{logger: logger}

	w := &ReminderWorker{
		runner: runner,
		logger: logger,
		now:    time.Now,
		ctx:    context.Background(),
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
	}
	if _, err := w.cron.AddFunc(schedule, func() { w.RunOnce(w.ctx) }); err != nil {
		return nil, fmt.Errorf("invalid reminder schedule %q: %w", schedule, err)
	}
	return w, nil
}

// RunOnce runs a single pass and logs its outcome. Errors are not fatal;
// the next scheduled run tries again.
func (w *ReminderWorker) RunOnce(ctx context.Context) int {
	count, err := w.runner.Run(ctx, w.now())
	if err != nil {
		w.logger.ErrorContext(ctx, "Reminder run failed",
			log.FieldError, err,
			log.FieldOperation, log.OpRemind)
		return count
	}
	fields := []any{log.FieldCount, count}
	if next := w.Next(); !next.IsZero() {
		fields = append(fields, "next_run", next.Format(time.RFC3339))
	}
	w.logger.InfoContext(ctx, "Reminder run complete", fields...)
	return count
}

// Start runs an initial pass, then starts the schedule. Scheduled runs use
// ctx.
func (w *ReminderWorker) Start(ctx context.Context) {
	w.ctx = ctx
	w.RunOnce(ctx)
	w.cron.Start()
}

// Stop halts the schedule. The returned context is done once a running
// pass has finished.
func (w *ReminderWorker) Stop() context.Context {
	return w.cron.Stop()
}

// Next is the time of the next scheduled run, zero before Start.
func (w *ReminderWorker) Next() time.Time {
	entries := w.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

// cronLogger routes the scheduler's own messages to the structured logger.
type cronLogger struct {
	logger *log.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, append([]any{log.FieldError, err}, keysAndValues...)...)
}
