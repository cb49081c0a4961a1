package schedule

import (
	"testing"

	"jiceot/internal/core"
)

func TestPrefillLink(t *testing.T) {
	fixed := core.Money{Cents: 12000}
	april := core.NewPeriod(2025, 4)
	tests := []struct {
		name   string
		typ    core.ObligationType
		settle bool
		want   string
	}{
		{
			name: "bill with fixed amount",
			typ:  core.ObligationType{ID: 7, Kind: core.KindBill, FixedAmount: &fixed},
			want: "/bill-payments/new?amount=120.00&bill_type_id=7&month=4&year=2025",
		},
		{
			name:   "bill settled without payment",
			typ:    core.ObligationType{ID: 7, Kind: core.KindBill, FixedAmount: &fixed},
			settle: true,
			want:   "/bill-payments/new?amount=0&bill_type_id=7&month=4&year=2025",
		},
		{
			name: "expense without fixed amount",
			typ:  core.ObligationType{ID: 3, Kind: core.KindExpense},
			want: "/expense-items/new?amount=&expense_type_id=3&month=4&year=2025",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PrefillLink(tt.typ, april, tt.settle); got != tt.want {
				t.Errorf("PrefillLink() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDueItem_LinkPeriod(t *testing.T) {
	view := core.NewPeriod(2025, 2)
	cyclic := DueItem{Period: view, DuePeriod: core.NewPeriod(2025, 4)}
	if got := cyclic.LinkPeriod(); got != core.NewPeriod(2025, 4) {
		t.Errorf("cyclic LinkPeriod() = %v, want 2025-04", got)
	}
	onDemand := DueItem{Obligation: Obligation{OnDemand: true}, Period: view}
	if got := onDemand.LinkPeriod(); got != view {
		t.Errorf("on-demand LinkPeriod() = %v, want %v", got, view)
	}
}
