package schedule

import (
	"fmt"
	"time"

	"jiceot/internal/core"
)

const (
	StatusOverdue  Status = "overdue"
	StatusDueSoon  Status = "due_soon"
	StatusUpcoming Status = "upcoming"
)

// DefaultDueSoonDays is the default due-soon horizon.
const DefaultDueSoonDays = 7

// Status is the urgency of an obligation relative to a reference date.
type Status string

// DaysUntil returns the whole number of calendar days from today to due,
// negative when due is in the past.
func DaysUntil(today, due time.Time) int {
	return int(dayNumber(due) - dayNumber(today))
}

// dayNumber counts calendar days since the Unix epoch for the date of t in
// its own location. Unlike time.Sub it does not saturate for distant years.
func dayNumber(t time.Time) int64 {
	return Today(t).Unix() / 86400
}

// Classify maps a due date to an urgency state. A completed period is never
// overdue or due soon.
func Classify(due, today time.Time, completed bool, horizon int) Status {
	days := DaysUntil(today, due)
	switch {
	case days > horizon:
		return StatusUpcoming
	case completed:
		return StatusUpcoming
	case days < 0:
		return StatusOverdue
	default:
		return StatusDueSoon
	}
}

const (
	DisplayAction  Display = "action"
	DisplaySettled Display = "settled"
	DisplayNextDue Display = "next_due"
)

// Display tells a caller what to render for an obligation in a viewed
// period: the action button, a settled marker, or the next due date.
type Display string

// Reconcile derives the display state from the viewed period and the
// scheduler's current next due date. It must be called on every render;
// the result depends on which period is being viewed.
func Reconcile(view core.Period, completed bool, nextDue time.Time) Display {
	switch {
	case !completed:
		return DisplayAction
	case nextDue.IsZero() || core.PeriodOf(nextDue) == view:
		return DisplaySettled
	default:
		return DisplayNextDue
	}
}

// settledLabel is what a completed period shows for each kind.
func settledLabel(k core.Kind) string {
	if k == core.KindExpense {
		return "Created"
	}
	return "Paid"
}

// dueLabel describes how far away a due date is.
func dueLabel(days int) string {
	switch {
	case days < -1:
		return fmt.Sprintf("Overdue by %d days", -days)
	case days == -1:
		return "Overdue by 1 day"
	case days == 0:
		return "Due today"
	case days == 1:
		return "Due in 1 day"
	default:
		return fmt.Sprintf("Due in %d days", days)
	}
}
