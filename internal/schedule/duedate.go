// Package schedule computes due dates, period completion, urgency and
// display order for recurring obligations.
//
// Every function is pure: inputs are never mutated, the reference date is
// always passed in, and nothing here performs I/O. Dates are calendar
// dates represented as midnight UTC.
package schedule

import (
	"errors"
	"time"

	"jiceot/internal/core"
)

var (
	// ErrOnDemand is returned when a date is requested for a type without a cycle.
	ErrOnDemand = errors.New("on-demand obligation has no due date")
)

// Today truncates an instant to its calendar date, as seen in the
// instant's own location.
func Today(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DueDateInPeriod returns the due date of an obligation inside period p.
// anchorDay 0 means the last day of the month; days past the end of a
// short month are clamped to its last day.
func DueDateInPeriod(anchorDay int, p core.Period) time.Time {
	last := p.LastDay()
	day := anchorDay
	if day <= 0 || day > last {
		day = last
	}
	return time.Date(p.Year, time.Month(p.Month), day, 0, 0, 0, 0, time.UTC)
}

// NextDueDate returns the first occurrence of t on or after today.
//
// Occurrences sit on a fixed grid of CycleMonths-sized steps starting at
// t.StartPeriod (or at the calendar epoch when no start is recorded), so a
// quarterly type due on the 15th moves from January 15 straight to
// April 15 once January 15 has passed.
func NextDueDate(t core.ObligationType, today time.Time) (time.Time, error) {
	if t.CycleMonths < 0 {
		return time.Time{}, core.ErrInvalidCycle
	}
	if t.OnDemand() {
		return time.Time{}, ErrOnDemand
	}

	today = Today(today)
	p := onGrid(t, core.PeriodOf(today))
	due := DueDateInPeriod(t.AnchorDay, p)
	if due.Before(today) {
		p = p.AddMonths(t.CycleMonths)
		due = DueDateInPeriod(t.AnchorDay, p)
	}
	return due, nil
}

// OccurrenceFor returns the scheduled period that a viewed period belongs
// to: the view itself when it is on the cycle grid, otherwise the next grid
// period after it.
func OccurrenceFor(t core.ObligationType, view core.Period) (core.Period, error) {
	if t.CycleMonths < 0 {
		return core.Period{}, core.ErrInvalidCycle
	}
	if t.OnDemand() {
		return core.Period{}, ErrOnDemand
	}
	return onGrid(t, view), nil
}

// onGrid returns the first grid period on or after max(from, StartPeriod).
// Requires CycleMonths > 0.
func onGrid(t core.ObligationType, from core.Period) core.Period {
	origin := 0
	if !t.StartPeriod.IsZero() {
		origin = t.StartPeriod.Index()
		if from.Before(t.StartPeriod) {
			from = t.StartPeriod
		}
	}
	steps := ceilDiv(from.Index()-origin, t.CycleMonths)
	return core.PeriodFromIndex(origin + steps*t.CycleMonths)
}

func ceilDiv(a, b int) int {
	q := a / b
	if a%b != 0 && a > 0 {
		q++
	}
	return q
}
