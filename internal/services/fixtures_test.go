package services

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"jiceot/internal/amqp"
	"jiceot/internal/core"
	"jiceot/internal/log"
	"jiceot/internal/records/memory"
)

var testNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

type fakePublisher struct {
	mu          sync.Mutex
	fail        bool
	reminders   []*amqp.DueReminderMessage
	completions []*amqp.CompletionRecordedMessage
}

func (f *fakePublisher) PublishDueReminder(_ context.Context, msg *amqp.DueReminderMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("broker unavailable")
	}
	f.reminders = append(f.reminders, msg)
	return nil
}

func (f *fakePublisher) PublishCompletionRecorded(_ context.Context, msg *amqp.CompletionRecordedMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("broker unavailable")
	}
	f.completions = append(f.completions, msg)
	return nil
}

func testLogger() *log.Logger {
	return log.New(log.Config{Output: io.Discard})
}

func money(cents int64) *core.Money {
	return &core.Money{Cents: cents}
}

// seededStore holds a small household as of testNow:
//
//	1 Rent      bill, monthly day 5, paid for March
//	2 Water     bill, quarterly day 15 from January
//	3 Internet  bill, on demand
//	4 Gym       bill, stopped
//	5 Power     bill, monthly day 12, open
//	6 Groceries expense, monthly end of month, created for March
func seededStore() *memory.Store {
	jan := core.NewPeriod(2025, 1)
	march := core.NewPeriod(2025, 3)
	s := memory.New()
	s.Seed(
		[]core.ObligationType{
			{ID: 1, Kind: core.KindBill, Name: "Rent", CycleMonths: 1, AnchorDay: 5, FixedAmount: money(90000), StartPeriod: jan},
			{ID: 2, Kind: core.KindBill, Name: "Water", CycleMonths: 3, AnchorDay: 15, StartPeriod: jan},
			{ID: 3, Kind: core.KindBill, Name: "Internet"},
			{ID: 4, Kind: core.KindBill, Name: "Gym", CycleMonths: 1, AnchorDay: 20, Stopped: true, StartPeriod: jan},
			{ID: 5, Kind: core.KindBill, Name: "Power", CycleMonths: 1, AnchorDay: 12, StartPeriod: jan},
			{ID: 6, Kind: core.KindExpense, Name: "Groceries", CycleMonths: 1, StartPeriod: jan},
		},
		[]core.CompletionRecord{
			{ID: 1, TypeID: 1, Kind: core.KindBill, Period: march, Amount: core.Money{Cents: 90000}},
			{ID: 2, TypeID: 6, Kind: core.KindExpense, Period: march, Amount: core.Money{Cents: 12050}},
			{ID: 3, TypeID: 1, Kind: core.KindBill, Period: core.NewPeriod(2025, 2), Amount: core.Money{Cents: 90000}},
		},
	)
	return s
}

func newTestService(pub amqp.Publisher) (*DueService, *memory.Store) {
	store := seededStore()
	svc := NewDueService(store, pub, testLogger(), DueServiceConfig{
		Now: func() time.Time { return testNow },
	})
	return svc, store
}
