package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"jiceot/internal/amqp"
	"jiceot/internal/cache"
	"jiceot/internal/core"
	"jiceot/internal/log"
	"jiceot/internal/schedule"
)

// ReminderProcessor publishes a reminder for every open cyclic obligation
// due within the reminder window. Each obligation is reminded at most once
// per calendar day, however often Run is triggered.
type ReminderProcessor struct {
	due        *DueService
	publisher  amqp.Publisher
	daysBefore int
	sent       *cache.LRUCache[struct{}]
	logger     *log.Logger
}

func NewReminderProcessor(due *DueService, publisher amqp.Publisher, daysBefore int, logger *log.Logger) *ReminderProcessor {
	return &ReminderProcessor{
		due:        due,
		publisher:  publisher,
		daysBefore: daysBefore,
		sent:       cache.NewLRUCache[struct{}](4096, 24*time.Hour),
		logger:     logger.WithComponent(log.ComponentReminder),
	}
}

// Sent exposes the dedup cache for periodic expiry.
func (p *ReminderProcessor) Sent() cache.Cleaner {
	return p.sent
}

// Run evaluates every bill and expense type as of now and publishes the due
// reminders. Failures on single obligations are logged and skipped; the
// count of published reminders is returned.
func (p *ReminderProcessor) Run(ctx context.Context, now time.Time) (int, error) {
	if p.due == nil || p.publisher == nil {
		return 0, fmt.Errorf("processor not properly initialized")
	}

	today := schedule.Today(now.In(p.due.loc))
	published, checked := 0, 0

	for _, kind := range []core.Kind{core.KindBill, core.KindExpense} {
		obs, err := p.due.Obligations(ctx, kind, today)
		if err != nil {
			return published, fmt.Errorf("evaluate %s obligations: %w", kind, err)
		}

		for _, o := range obs {
			checked++
			if !p.shouldRemind(o) {
				continue
			}
			key := reminderKey(o, today)
			if _, done := p.sent.Get(key); done {
				continue
			}

			link := schedule.PrefillLink(o.Type, o.DuePeriod(), false)
			msg := amqp.NewDueReminderMessage(o.Type, o.NextDueDate, o.DaysUntilDue, link)
			if err := p.publisher.PublishDueReminder(ctx, msg); err != nil {
				p.logger.ErrorContext(ctx, "Failed to publish due reminder",
					log.NewFields().
						WithObligation(o.Type.ID, string(o.Type.Kind), o.Type.Name).
						WithError(err).
						ToSlice()...)
				continue
			}

			p.sent.Set(key, struct{}{})
			published++
			p.logger.InfoContext(ctx, "Due reminder published",
				log.NewFields().
					WithObligation(o.Type.ID, string(o.Type.Kind), o.Type.Name).
					WithSchedule(o.NextDueDate, o.DaysUntilDue, string(o.Status)).
					WithOperation(log.OpRemind).
					ToSlice()...)
		}
	}

	p.logger.InfoContext(ctx, "Reminder pass complete",
		"published", published,
		"total_checked", checked,
		"processing_date", today.Format(time.DateOnly))

	return published, nil
}

func (p *ReminderProcessor) shouldRemind(o schedule.Obligation) bool {
	if o.OnDemand || o.HasCurrentPeriodCompletion {
		return false
	}
	return o.DaysUntilDue >= 0 && o.DaysUntilDue <= p.daysBefore
}

func reminderKey(o schedule.Obligation, today time.Time) string {
	return strconv.FormatInt(o.Type.ID, 10) + "|" +
		o.NextDueDate.Format(time.DateOnly) + "|" +
		today.Format(time.DateOnly)
}
