package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"jiceot/internal/core"
	"jiceot/internal/schedule"
)

func entryIDs(l *DueList) []int64 {
	out := make([]int64, 0, len(l.Entries))
	for _, e := range l.Entries {
		out = append(out, e.Item.Obligation.Type.ID)
	}
	return out
}

func sameIDs(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestParseFilter(t *testing.T) {
	tests := []struct {
		in      string
		want    Filter
		wantErr bool
	}{
		{"", FilterAll, false},
		{"all", FilterAll, false},
		{"Bills", FilterBills, false},
		{"expenses", FilterExpenses, false},
		{"payments", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFilter(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFilter(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if tt.wantErr && !errors.Is(err, ErrInvalidFilter) {
			t.Errorf("ParseFilter(%q) error = %v, want ErrInvalidFilter", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseFilter(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDueService_DueItems(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(nil)
	march := core.NewPeriod(2025, 3)

	tests := []struct {
		filter Filter
		want   []int64
	}{
		{FilterAll, []int64{5, 6, 1, 2}},
		{FilterBills, []int64{5, 1, 2}},
		{FilterExpenses, []int64{6}},
	}
	for _, tt := range tests {
		t.Run(string(tt.filter), func(t *testing.T) {
			list, err := svc.DueItems(ctx, march, tt.filter)
			if err != nil {
				t.Fatalf("DueItems() error = %v", err)
			}
			if got := entryIDs(list); !sameIDs(got, tt.want) {
				t.Errorf("DueItems() order = %v, want %v", got, tt.want)
			}
		})
	}

	list, _ := svc.DueItems(ctx, march, FilterAll)
	byID := map[int64]DueEntry{}
	for _, e := range list.Entries {
		byID[e.Item.Obligation.Type.ID] = e
	}

	rent := byID[1]
	if rent.Item.Display() != schedule.DisplayNextDue || rent.Item.Label() != "Next due: 5 Apr" {
		t.Errorf("rent display = %s %q", rent.Item.Display(), rent.Item.Label())
	}
	if rent.Item.Latest == nil || rent.Item.Latest.Period != march {
		t.Errorf("rent latest = %+v, want March record", rent.Item.Latest)
	}
	if rent.Link != "/bill-payments/new?amount=900.00&bill_type_id=1&month=3&year=2025" {
		t.Errorf("rent link = %q", rent.Link)
	}
	if rent.SettleLink != "/bill-payments/new?amount=0&bill_type_id=1&month=3&year=2025" {
		t.Errorf("rent settle link = %q", rent.SettleLink)
	}

	power := byID[5]
	if power.Item.Status != schedule.StatusDueSoon || power.Item.DaysUntilDue != 2 {
		t.Errorf("power = %s in %d days, want due_soon in 2", power.Item.Status, power.Item.DaysUntilDue)
	}

	water := byID[2]
	if water.Item.DuePeriod != core.NewPeriod(2025, 4) || water.Item.DueInPeriod() {
		t.Errorf("water due period = %v", water.Item.DuePeriod)
	}
	if water.Link != "/bill-payments/new?amount=&bill_type_id=2&month=4&year=2025" {
		t.Errorf("water link = %q", water.Link)
	}
	if water.Item.Display() != schedule.DisplayNextDue || water.Item.Label() != "Next due: 15 Apr" {
		t.Errorf("water display = %s %q, want next_due \"Next due: 15 Apr\"", water.Item.Display(), water.Item.Label())
	}

	groceries := byID[6]
	if groceries.Item.Label() != "Created" {
		t.Errorf("groceries label = %q, want Created", groceries.Item.Label())
	}
}

func TestDueService_ZeroDueSoonHorizon(t *testing.T) {
	zero := 0
	svc := NewDueService(seededStore(), nil, testLogger(), DueServiceConfig{
		DueSoonDays: &zero,
		Now:         func() time.Time { return testNow },
	})

	list, err := svc.DueItems(context.Background(), core.NewPeriod(2025, 3), FilterBills)
	if err != nil {
		t.Fatalf("DueItems() error = %v", err)
	}
	for _, e := range list.Entries {
		if e.Item.Obligation.Type.ID == 5 && e.Item.Status != schedule.StatusUpcoming {
			t.Errorf("power two days out = %s, want upcoming with a zero horizon", e.Item.Status)
		}
	}
}

func TestDueService_DueItems_PastPeriodOverdue(t *testing.T) {
	svc, _ := newTestService(nil)
	list, err := svc.DueItems(context.Background(), core.NewPeriod(2025, 2), FilterBills)
	if err != nil {
		t.Fatalf("DueItems() error = %v", err)
	}
	for _, e := range list.Entries {
		if e.Item.Obligation.Type.ID == 5 {
			if e.Item.Status != schedule.StatusOverdue || e.Item.Label() != "Overdue by 26 days" {
				t.Errorf("power in February = %s %q", e.Item.Status, e.Item.Label())
			}
			return
		}
	}
	t.Error("power missing from February list")
}

func TestDueService_DueItems_InvalidPeriod(t *testing.T) {
	svc, _ := newTestService(nil)
	if _, err := svc.DueItems(context.Background(), core.NewPeriod(2025, 13), FilterAll); !errors.Is(err, core.ErrInvalidMonth) {
		t.Errorf("DueItems() error = %v, want ErrInvalidMonth", err)
	}
}

func TestDueService_Dashboard(t *testing.T) {
	svc, _ := newTestService(nil)
	d, err := svc.Dashboard(context.Background())
	if err != nil {
		t.Fatalf("Dashboard() error = %v", err)
	}

	if d.Period != core.NewPeriod(2025, 3) {
		t.Errorf("Period = %v", d.Period)
	}
	if d.TotalSpent.Cents != 102050 {
		t.Errorf("TotalSpent = %s, want 1020.50", d.TotalSpent)
	}
	if d.BillsPaid != 1 || d.Categories != 1 {
		t.Errorf("BillsPaid = %d Categories = %d, want 1 and 1", d.BillsPaid, d.Categories)
	}
	if d.PendingBills != 1 || len(d.UpcomingBills) != 1 || d.UpcomingBills[0].Type.ID != 5 {
		t.Errorf("upcoming bills = %+v (pending %d), want only Power", d.UpcomingBills, d.PendingBills)
	}
	if d.PendingExpenses != 0 || len(d.UpcomingExpenses) != 0 {
		t.Errorf("upcoming expenses = %+v, want none", d.UpcomingExpenses)
	}
	if len(d.OnDemandBills) != 1 || d.OnDemandBills[0].Name != "Internet" {
		t.Errorf("on-demand bills = %+v", d.OnDemandBills)
	}
}

func TestDueService_DashboardUpcomingLimit(t *testing.T) {
	store := seededStore()
	for day := 11; day <= 18; day++ {
		store.Seed([]core.ObligationType{{
			ID: int64(100 + day), Kind: core.KindBill, Name: "Bill", CycleMonths: 1, AnchorDay: day,
			StartPeriod: core.NewPeriod(2025, 1),
		}}, nil)
	}
	svc := NewDueService(store, nil, testLogger(), DueServiceConfig{
		UpcomingLimit: 3,
		Now:           func() time.Time { return testNow },
	})

	d, err := svc.Dashboard(context.Background())
	if err != nil {
		t.Fatalf("Dashboard() error = %v", err)
	}
	if len(d.UpcomingBills) != 3 || d.PendingBills != 9 {
		t.Errorf("upcoming = %d pending = %d, want 3 and 9", len(d.UpcomingBills), d.PendingBills)
	}
	if d.UpcomingBills[0].Type.ID != 111 {
		t.Errorf("first upcoming = %d, want the day-11 bill", d.UpcomingBills[0].Type.ID)
	}
}

func TestDueService_QuickAdd(t *testing.T) {
	svc, _ := newTestService(nil)
	obs, err := svc.QuickAdd(context.Background(), core.KindBill)
	if err != nil {
		t.Fatalf("QuickAdd() error = %v", err)
	}
	got := make([]int64, len(obs))
	for i, o := range obs {
		got[i] = o.Type.ID
	}
	if want := []int64{3, 5, 1, 2}; !sameIDs(got, want) {
		t.Errorf("QuickAdd() order = %v, want %v", got, want)
	}

	if _, err := svc.QuickAdd(context.Background(), core.Kind("income")); !errors.Is(err, core.ErrInvalidKind) {
		t.Errorf("QuickAdd(income) error = %v, want ErrInvalidKind", err)
	}
}

func TestDueService_RecordCompletion(t *testing.T) {
	ctx := context.Background()
	pub := &fakePublisher{}
	svc, _ := newTestService(pub)

	before, _ := svc.Dashboard(ctx)
	if before.PendingBills != 1 {
		t.Fatalf("PendingBills before = %d, want 1", before.PendingBills)
	}

	rec, err := svc.RecordCompletion(ctx, core.CompletionRecord{
		TypeID: 5, Period: core.NewPeriod(2025, 3), Amount: core.Money{Cents: 4500},
	})
	if err != nil {
		t.Fatalf("RecordCompletion() error = %v", err)
	}
	if rec.ID == 0 || rec.Kind != core.KindBill {
		t.Errorf("RecordCompletion() = %+v", rec)
	}

	after, _ := svc.Dashboard(ctx)
	if after.PendingBills != 0 || after.BillsPaid != 2 {
		t.Errorf("after recording: pending = %d paid = %d, want 0 and 2", after.PendingBills, after.BillsPaid)
	}
	if len(pub.completions) != 1 || pub.completions[0].TypeID != 5 {
		t.Errorf("published completions = %+v", pub.completions)
	}

	if _, err := svc.RecordCompletion(ctx, core.CompletionRecord{TypeID: 99, Period: core.NewPeriod(2025, 3)}); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("RecordCompletion(unknown) error = %v, want ErrNotFound", err)
	}
	if _, err := svc.RecordCompletion(ctx, core.CompletionRecord{TypeID: 5, Period: core.NewPeriod(2025, 3), Amount: core.Money{Cents: -1}}); !errors.Is(err, core.ErrInvalidAmount) {
		t.Errorf("RecordCompletion(negative) error = %v, want ErrInvalidAmount", err)
	}
	if len(pub.completions) != 1 {
		t.Errorf("failed records must not publish, got %d events", len(pub.completions))
	}
}

func TestDueService_RecordCompletion_PublishFailureIsNotFatal(t *testing.T) {
	svc, _ := newTestService(&fakePublisher{fail: true})
	if _, err := svc.RecordCompletion(context.Background(), core.CompletionRecord{
		TypeID: 5, Period: core.NewPeriod(2025, 3),
	}); err != nil {
		t.Errorf("RecordCompletion() error = %v, want nil despite publish failure", err)
	}
}

func TestDueService_CreateType(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(nil)

	created, err := svc.CreateType(ctx, core.ObligationType{Kind: core.KindExpense, Name: "Pet food", CycleMonths: 1, AnchorDay: 1})
	if err != nil {
		t.Fatalf("CreateType() error = %v", err)
	}
	if created.StartPeriod != core.NewPeriod(2025, 3) {
		t.Errorf("StartPeriod = %v, want current month", created.StartPeriod)
	}
	if got, err := store.GetObligationType(ctx, created.ID); err != nil || got.Name != "Pet food" {
		t.Errorf("stored type = %+v, %v", got, err)
	}

	onDemand, err := svc.CreateType(ctx, core.ObligationType{Kind: core.KindBill, Name: "Repairs"})
	if err != nil {
		t.Fatalf("CreateType(on-demand) error = %v", err)
	}
	if !onDemand.StartPeriod.IsZero() {
		t.Errorf("on-demand StartPeriod = %v, want zero", onDemand.StartPeriod)
	}

	if _, err := svc.CreateType(ctx, core.ObligationType{Kind: core.KindBill, Name: "Bad", CycleMonths: 1, AnchorDay: 32}); !errors.Is(err, core.ErrInvalidAnchorDay) {
		t.Errorf("CreateType(day 32) error = %v, want ErrInvalidAnchorDay", err)
	}

	// New type shows up in quick add despite the cached result.
	obs, _ := svc.QuickAdd(ctx, core.KindExpense)
	if len(obs) != 2 {
		t.Errorf("QuickAdd(expense) len = %d, want 2", len(obs))
	}
}
