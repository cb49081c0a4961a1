package http

import (
	"time"

	"jiceot/internal/core"
	"jiceot/internal/schedule"
	"jiceot/internal/services"
)

type obligationTypeView struct {
	ID          int64  `json:"id"`
	Kind        string `json:"kind"`
	Name        string `json:"name"`
	Icon        string `json:"icon"`
	Color       string `json:"color"`
	FixedAmount string `json:"fixed_amount"`
	BillDay     int    `json:"bill_day"`
	BillCycle   int    `json:"bill_cycle"`
	Stopped     bool   `json:"stopped"`
	StartYear   int    `json:"start_year,omitempty"`
	StartMonth  int    `json:"start_month,omitempty"`
}

func newObligationTypeView(t core.ObligationType) obligationTypeView {
	v := obligationTypeView{
		ID:         t.ID,
		Kind:       string(t.Kind),
		Name:       t.Name,
		Icon:       t.Icon,
		Color:      t.Color,
		BillDay:    t.AnchorDay,
		BillCycle:  t.CycleMonths,
		Stopped:    t.Stopped,
		StartYear:  t.StartPeriod.Year,
		StartMonth: t.StartPeriod.Month,
	}
	if t.FixedAmount != nil {
		v.FixedAmount = t.FixedAmount.String()
	}
	return v
}

// obligationView is the today-relative state used by the dashboard and
// quick-add lists. Date fields are empty for on-demand types.
type obligationView struct {
	obligationTypeView
	OnDemand             bool   `json:"on_demand"`
	NextDueDate          string `json:"next_due_date,omitempty"`
	DaysUntilDue         int    `json:"days_until_due"`
	Status               string `json:"status,omitempty"`
	HasCurrentCompletion bool   `json:"has_current_completion"`
}

func newObligationView(o schedule.Obligation) obligationView {
	v := obligationView{
		obligationTypeView:   newObligationTypeView(o.Type),
		OnDemand:             o.OnDemand,
		HasCurrentCompletion: o.HasCurrentPeriodCompletion,
	}
	if !o.OnDemand {
		v.NextDueDate = formatDate(o.NextDueDate)
		v.DaysUntilDue = o.DaysUntilDue
		v.Status = string(o.Status)
	}
	return v
}

func newObligationViews(obs []schedule.Obligation) []obligationView {
	out := make([]obligationView, 0, len(obs))
	for _, o := range obs {
		out = append(out, newObligationView(o))
	}
	return out
}

type dueItemView struct {
	obligationView
	DueYear              int     `json:"due_year"`
	DueMonth             int     `json:"due_month"`
	DueDate              string  `json:"due_date"`
	PeriodDaysUntilDue   int     `json:"period_days_until_due"`
	PeriodStatus         string  `json:"period_status"`
	Completed            bool    `json:"completed"`
	Display              string  `json:"display"`
	Label                string  `json:"label"`
	Link                 string  `json:"link"`
	SettleLink           string  `json:"settle_link"`
	LastCompletionYear   *int    `json:"last_completion_year,omitempty"`
	LastCompletionMonth  *int    `json:"last_completion_month,omitempty"`
	LastCompletionAmount *string `json:"last_completion_amount,omitempty"`
}

func newDueItemView(e services.DueEntry) dueItemView {
	item := e.Item
	v := dueItemView{
		obligationView:     newObligationView(item.Obligation),
		DueYear:            item.DuePeriod.Year,
		DueMonth:           item.DuePeriod.Month,
		DueDate:            formatDate(item.DueDate),
		PeriodDaysUntilDue: item.DaysUntilDue,
		PeriodStatus:       string(item.Status),
		Completed:          item.Completed,
		Display:            string(item.Display()),
		Label:              item.Label(),
		Link:               e.Link,
		SettleLink:         e.SettleLink,
	}
	if last := item.Latest; last != nil {
		year, month, amount := last.Period.Year, last.Period.Month, last.Amount.String()
		v.LastCompletionYear = &year
		v.LastCompletionMonth = &month
		v.LastCompletionAmount = &amount
	}
	return v
}

type dueListView struct {
	Year  int           `json:"year"`
	Month int           `json:"month"`
	Today string        `json:"today"`
	Items []dueItemView `json:"due_items"`
}

func newDueListView(l *services.DueList) dueListView {
	v := dueListView{
		Year:  l.Period.Year,
		Month: l.Period.Month,
		Today: formatDate(l.Today),
		Items: make([]dueItemView, 0, len(l.Entries)),
	}
	for _, e := range l.Entries {
		v.Items = append(v.Items, newDueItemView(e))
	}
	return v
}

type dashboardView struct {
	Year             int                  `json:"year"`
	Month            int                  `json:"month"`
	Today            string               `json:"today"`
	TotalExpenses    string               `json:"total_expenses"`
	BillsPaid        int                  `json:"bills_paid"`
	PendingBills     int                  `json:"pending_bills"`
	PendingExpenses  int                  `json:"pending_expenses"`
	Categories       int                  `json:"categories"`
	UpcomingBills    []obligationView     `json:"upcoming_bills"`
	UpcomingExpenses []obligationView     `json:"upcoming_expenses"`
	OnDemandBills    []obligationTypeView `json:"on_demand_bills"`
}

func newDashboardView(d *services.Dashboard) dashboardView {
	v := dashboardView{
		Year:             d.Period.Year,
		Month:            d.Period.Month,
		Today:            formatDate(d.Today),
		TotalExpenses:    d.TotalSpent.String(),
		BillsPaid:        d.BillsPaid,
		PendingBills:     d.PendingBills,
		PendingExpenses:  d.PendingExpenses,
		Categories:       d.Categories,
		UpcomingBills:    newObligationViews(d.UpcomingBills),
		UpcomingExpenses: newObligationViews(d.UpcomingExpenses),
		OnDemandBills:    make([]obligationTypeView, 0, len(d.OnDemandBills)),
	}
	for _, t := range d.OnDemandBills {
		v.OnDemandBills = append(v.OnDemandBills, newObligationTypeView(t))
	}
	return v
}

type completionView struct {
	ID     int64  `json:"id"`
	TypeID int64  `json:"type_id"`
	Kind   string `json:"kind"`
	Year   int    `json:"year"`
	Month  int    `json:"month"`
	Amount string `json:"amount"`
	Note   string `json:"note,omitempty"`
}

func newCompletionView(r core.CompletionRecord) completionView {
	return completionView{
		ID:     r.ID,
		TypeID: r.TypeID,
		Kind:   string(r.Kind),
		Year:   r.Period.Year,
		Month:  r.Period.Month,
		Amount: r.Amount.String(),
		Note:   r.Note,
	}
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.DateOnly)
}
