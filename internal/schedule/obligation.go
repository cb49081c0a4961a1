package schedule

import (
	"time"

	"jiceot/internal/core"
)

// Options tunes classification. The zero value uses the defaults.
type Options struct {
	// DueSoonDays is the horizon, in days, inside which an open obligation is
	// due soon. Nil selects DefaultDueSoonDays; zero means only the due day
	// itself.
	DueSoonDays *int
}

func (o Options) horizon() int {
	if o.DueSoonDays == nil || *o.DueSoonDays < 0 {
		return DefaultDueSoonDays
	}
	return *o.DueSoonDays
}

// Obligation is the today-relative state of one obligation type.
// On-demand obligations carry no date, day count or status.
type Obligation struct {
	Type                       core.ObligationType
	OnDemand                   bool
	NextDueDate                time.Time
	DaysUntilDue               int
	HasCurrentPeriodCompletion bool // record exists for the period of NextDueDate
	Status                     Status
}

// DuePeriod is the period containing NextDueDate.
func (o Obligation) DuePeriod() core.Period {
	return core.PeriodOf(o.NextDueDate)
}

// Evaluate computes the obligation state of t as of today.
func Evaluate(t core.ObligationType, records []core.CompletionRecord, today time.Time, opts Options) Obligation {
	o := Obligation{Type: t}
	next, err := NextDueDate(t, today)
	if err != nil {
		o.OnDemand = true
		return o
	}
	o.NextDueDate = next
	o.DaysUntilDue = DaysUntil(today, next)
	o.HasCurrentPeriodCompletion = Completed(records, t.ID, core.PeriodOf(next))
	o.Status = Classify(next, today, o.HasCurrentPeriodCompletion, opts.horizon())
	return o
}

// DueItem is an obligation seen from a specific period, as listed on the
// due-items page.
type DueItem struct {
	Obligation Obligation

	Period       core.Period // period being viewed
	DuePeriod    core.Period // occurrence the view belongs to
	DueDate      time.Time
	DaysUntilDue int
	Completed    bool // record exists for the viewed period
	Status       Status
	Latest       *core.CompletionRecord
}

// EvaluatePeriod computes the state of t for the viewed period. Unlike
// Evaluate, the due date is the occurrence of the viewed period, so a past
// unpaid period shows up as overdue.
func EvaluatePeriod(t core.ObligationType, records []core.CompletionRecord, view core.Period, today time.Time, opts Options) DueItem {
	item := DueItem{
		Obligation: Evaluate(t, records, today, opts),
		Period:     view,
		Completed:  Completed(records, t.ID, view),
	}
	if latest, ok := LatestCompletion(records, t.ID); ok {
		item.Latest = &latest
	}
	if item.Obligation.OnDemand {
		return item
	}

	occ, err := OccurrenceFor(t, view)
	if err != nil {
		return item
	}
	item.DuePeriod = occ
	item.DueDate = DueDateInPeriod(t.AnchorDay, occ)
	item.DaysUntilDue = DaysUntil(today, item.DueDate)
	done := item.Completed || Completed(records, t.ID, occ)
	item.Status = Classify(item.DueDate, today, done, opts.horizon())
	return item
}

// DueInPeriod reports whether the viewed period is itself a scheduled
// occurrence.
func (d DueItem) DueInPeriod() bool {
	return !d.Obligation.OnDemand && d.DuePeriod == d.Period
}

// Display reconciles the viewed period against the scheduler's current
// next due date. An open cyclic item viewed off its grid has nothing to act
// on and shows its next occurrence instead.
func (d DueItem) Display() Display {
	if !d.Completed && !d.Obligation.OnDemand && !d.DueInPeriod() {
		return DisplayNextDue
	}
	return Reconcile(d.Period, d.Completed, d.Obligation.NextDueDate)
}

// nextDue is the date a next-due label refers to: the occurrence of the
// viewed period when the view is off-cycle, the scheduler's next due date
// otherwise.
func (d DueItem) nextDue() time.Time {
	if !d.Completed && !d.DueInPeriod() && !d.DueDate.IsZero() {
		return d.DueDate
	}
	return d.Obligation.NextDueDate
}

// Label is the human-readable status line for the item.
func (d DueItem) Label() string {
	switch d.Display() {
	case DisplaySettled:
		return settledLabel(d.Obligation.Type.Kind)
	case DisplayNextDue:
		return "Next due: " + d.nextDue().Format("2 Jan")
	}
	if d.Obligation.OnDemand {
		return "On demand"
	}
	return dueLabel(d.DaysUntilDue)
}
