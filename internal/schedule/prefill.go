package schedule

import (
	"net/url"
	"strconv"

	"jiceot/internal/core"
)

// PrefillLink builds the deep link that opens the payment (bill) or item
// (expense) creation form prefilled for period p. The query parameter names
// are consumed by the web and mobile forms and must stay stable. settle
// prefills a zero amount, marking the period settled without payment.
func PrefillLink(t core.ObligationType, p core.Period, settle bool) string {
	path, idKey := "/bill-payments/new", "bill_type_id"
	if t.Kind == core.KindExpense {
		path, idKey = "/expense-items/new", "expense_type_id"
	}

	amount := ""
	switch {
	case settle:
		amount = "0"
	case t.FixedAmount != nil:
		amount = t.FixedAmount.String()
	}

	q := url.Values{}
	q.Set(idKey, strconv.FormatInt(t.ID, 10))
	q.Set("year", strconv.Itoa(p.Year))
	q.Set("month", strconv.Itoa(p.Month))
	q.Set("amount", amount)
	return path + "?" + q.Encode()
}

// LinkPeriod is the period a form should be prefilled for: the occurrence
// of the viewed period for cyclic items, the viewed period itself for
// on-demand ones.
func (d DueItem) LinkPeriod() core.Period {
	if d.Obligation.OnDemand || d.DuePeriod.IsZero() {
		return d.Period
	}
	return d.DuePeriod
}
