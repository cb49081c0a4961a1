package services

import (
	"context"
	"testing"
	"time"
)

func TestReminderProcessor_Run(t *testing.T) {
	ctx := context.Background()
	pub := &fakePublisher{}
	svc, _ := newTestService(pub)
	p := NewReminderProcessor(svc, pub, 3, testLogger())

	n, err := p.Run(ctx, testNow)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if n != 1 || len(pub.reminders) != 1 {
		t.Fatalf("Run() published %d (%d messages), want 1", n, len(pub.reminders))
	}
	msg := pub.reminders[0]
	if msg.TypeID != 5 || msg.DueDate != "2025-03-12" || msg.DaysUntilDue != 2 {
		t.Errorf("reminder = %+v, want Power due 2025-03-12", msg)
	}
	if msg.PrefillLink != "/bill-payments/new?amount=&bill_type_id=5&month=3&year=2025" {
		t.Errorf("PrefillLink = %q", msg.PrefillLink)
	}

	// A later trigger on the same day does not repeat the reminder.
	n, _ = p.Run(ctx, testNow.Add(time.Hour))
	if n != 0 {
		t.Errorf("second Run() same day published %d, want 0", n)
	}

	// Next day it is due again.
	n, _ = p.Run(ctx, testNow.Add(24*time.Hour))
	if n != 1 {
		t.Errorf("Run() next day published %d, want 1", n)
	}
}

func TestReminderProcessor_SkipsCompleted(t *testing.T) {
	ctx := context.Background()
	pub := &fakePublisher{}
	svc, _ := newTestService(pub)
	p := NewReminderProcessor(svc, pub, 40, testLogger())

	// Window of 40 days covers Power (Mar 12), Groceries (Mar 31, already
	// created), Rent (Apr 5) and Water (Apr 15). Groceries is complete.
	n, err := p.Run(ctx, testNow)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if n != 3 {
		t.Errorf("Run() published %d, want 3", n)
	}
	for _, m := range pub.reminders {
		if m.TypeID == 6 {
			t.Error("completed obligation was reminded")
		}
		if m.TypeID == 3 {
			t.Error("on-demand obligation was reminded")
		}
	}
}

func TestReminderProcessor_PublishFailureRetriedNextRun(t *testing.T) {
	ctx := context.Background()
	pub := &fakePublisher{fail: true}
	svc, _ := newTestService(pub)
	p := NewReminderProcessor(svc, pub, 3, testLogger())

	n, err := p.Run(ctx, testNow)
	if err != nil || n != 0 {
		t.Fatalf("Run() = %d, %v; want 0 published and no error", n, err)
	}

	pub.fail = false
	if n, _ := p.Run(ctx, testNow); n != 1 {
		t.Errorf("Run() after recovery published %d, want 1", n)
	}
}

func TestReminderProcessor_NotInitialized(t *testing.T) {
	p := &ReminderProcessor{}
	if _, err := p.Run(context.Background(), testNow); err == nil {
		t.Error("Run() on empty processor should fail")
	}
}
