package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	KindBill    Kind = "bill"
	KindExpense Kind = "expense"
)

// MaxAnchorDay is the largest configurable day-of-month target.
const MaxAnchorDay = 31

type (
	// Kind distinguishes bill types from expense types. Both share the same
	// recurrence fields and are scheduled identically.
	Kind string

	// Period is a calendar month. Completions are recorded against periods.
	Period struct {
		Year  int
		Month int // 1-12
	}

	Money struct {
		Cents int64
	}

	// ObligationType is a user-defined bill or expense category with an
	// optional monthly cycle.
	ObligationType struct {
		ID          int64
		Kind        Kind
		Name        string
		Icon        string
		Color       string
		CycleMonths int    // 0 = on-demand
		AnchorDay   int    // 0 = last day of month
		FixedAmount *Money // prefill only
		Stopped     bool
		StartPeriod Period // cycle origin; zero means calendar aligned
	}

	// CompletionRecord is a payment (bills) or item (expenses) for one period.
	// A zero Amount marks the period as settled without payment.
	CompletionRecord struct {
		ID     int64
		TypeID int64
		Kind   Kind
		Period Period
		Amount Money
		Note   string
	}
)

var (
	ErrInvalidDay       = errors.New("invalid day")
	ErrInvalidMonth     = errors.New("invalid month")
	ErrInvalidYear      = errors.New("invalid year")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidKind      = errors.New("invalid kind")
	ErrInvalidCycle     = errors.New("cycle months must not be negative")
	ErrInvalidAnchorDay = errors.New("anchor day must be between 0 and 31")
	ErrEmptyName        = errors.New("empty name")
	ErrMissingType      = errors.New("missing obligation type")
	ErrNotFound         = errors.New("not found")
)

// ParseKind accepts the singular and plural forms used by the API.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bill", "bills":
		return KindBill, nil
	case "expense", "expenses":
		return KindExpense, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidKind, s)
	}
}

func (k Kind) Validate() error {
	switch k {
	case KindBill, KindExpense:
		return nil
	default:
		return ErrInvalidKind
	}
}

// NewPeriod creates a period from year and month.
func NewPeriod(year, month int) Period {
	return Period{Year: year, Month: month}
}

// PeriodOf returns the calendar month containing t.
func PeriodOf(t time.Time) Period {
	return Period{Year: t.Year(), Month: int(t.Month())}
}

// PeriodFromIndex is the inverse of Period.Index.
func PeriodFromIndex(i int) Period {
	y := i / 12
	m := i % 12
	if m < 0 {
		m += 12
		y--
	}
	return Period{Year: y, Month: m + 1}
}

// Index returns a month counter where consecutive months differ by one.
func (p Period) Index() int {
	return p.Year*12 + p.Month - 1
}

// AddMonths returns the period n months later (earlier for negative n).
func (p Period) AddMonths(n int) Period {
	return PeriodFromIndex(p.Index() + n)
}

func (p Period) Before(o Period) bool { return p.Index() < o.Index() }
func (p Period) After(o Period) bool  { return p.Index() > o.Index() }

// IsZero reports whether the period was never set.
func (p Period) IsZero() bool {
	return p.Year == 0 && p.Month == 0
}

// FirstDay returns midnight UTC of the first day of the period.
func (p Period) FirstDay() time.Time {
	return time.Date(p.Year, time.Month(p.Month), 1, 0, 0, 0, 0, time.UTC)
}

// LastDay returns the number of days in the period.
func (p Period) LastDay() int {
	return time.Date(p.Year, time.Month(p.Month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, p.Month)
}

func (p Period) Validate() error {
	if p.Month < 1 || p.Month > 12 {
		return ErrInvalidMonth
	}
	if p.Year < 1 || p.Year > 9999 {
		return ErrInvalidYear
	}
	return nil
}

// OnDemand reports whether the type has no fixed schedule.
func (t ObligationType) OnDemand() bool {
	return t.CycleMonths == 0
}

func (t ObligationType) Validate() error {
	if err := t.Kind.Validate(); err != nil {
		return err
	}
	if len(strings.TrimSpace(t.Name)) == 0 {
		return ErrEmptyName
	}
	if len(t.Name) > 100 {
		return errors.New("name too long (max 100 characters)")
	}
	if t.CycleMonths < 0 {
		return ErrInvalidCycle
	}
	if t.AnchorDay < 0 || t.AnchorDay > MaxAnchorDay {
		return ErrInvalidAnchorDay
	}
	if t.FixedAmount != nil && t.FixedAmount.Cents < 0 {
		return ErrInvalidAmount
	}
	if !t.StartPeriod.IsZero() {
		if err := t.StartPeriod.Validate(); err != nil {
			return fmt.Errorf("invalid start period: %w", err)
		}
	}
	return nil
}

func (r CompletionRecord) Validate() error {
	if r.TypeID <= 0 {
		return ErrMissingType
	}
	if err := r.Period.Validate(); err != nil {
		return err
	}
	if r.Amount.Cents < 0 {
		return ErrInvalidAmount
	}
	if len(r.Note) > 500 {
		return errors.New("note too long (max 500 characters)")
	}
	return nil
}
