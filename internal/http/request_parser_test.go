package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"jiceot/internal/core"
)

func TestParsePeriodParams(t *testing.T) {
	today := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name    string
		query   url.Values
		want    core.Period
		wantErr error
	}{
		{"defaults to today", url.Values{}, core.NewPeriod(2025, 3), nil},
		{"explicit", url.Values{"year": {"2024"}, "month": {"12"}}, core.NewPeriod(2024, 12), nil},
		{"month only", url.Values{"month": {" 7 "}}, core.NewPeriod(2025, 7), nil},
		{"non-numeric", url.Values{"year": {"abc"}}, core.Period{}, errBadRequest},
		{"month zero", url.Values{"month": {"0"}}, core.Period{}, core.ErrInvalidMonth},
		{"year zero", url.Values{"year": {"0"}}, core.Period{}, core.ErrInvalidYear},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePeriodParams(tt.query, today)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ParsePeriodParams() error = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParsePeriodParams() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseKindParam(t *testing.T) {
	if k, err := ParseKindParam(url.Values{"kind": {"Expense"}}); err != nil || k != core.KindExpense {
		t.Errorf("ParseKindParam(Expense) = %q, %v, want expense", k, err)
	}
	if _, err := ParseKindParam(url.Values{}); !errors.Is(err, errBadRequest) {
		t.Errorf("ParseKindParam(missing) error = %v, want errBadRequest", err)
	}
	if _, err := ParseKindParam(url.Values{"kind": {"income"}}); !errors.Is(err, core.ErrInvalidKind) {
		t.Errorf("ParseKindParam(income) error = %v, want ErrInvalidKind", err)
	}
}

func newParser(contentType, body string) *RequestBodyParser {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	r.Header.Set("Content-Type", contentType)
	return NewRequestBodyParser(r)
}

func TestRequestBodyParser_JSON(t *testing.T) {
	p := newParser("application/json", `{"name":" Rent\u0007 ","type_id":12,"stopped":true}`)
	if err := p.Parse(); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if !p.IsJSON() {
		t.Error("IsJSON() = false, want true")
	}
	if got := p.Get("name"); got != "Rent" {
		t.Errorf("Get(name) = %q, want Rent", got)
	}
	if got := p.Get("type_id"); got != "12" {
		t.Errorf("Get(type_id) = %q, want 12", got)
	}
	if got, _ := p.Bool("stopped"); !got {
		t.Error("Bool(stopped) = false, want true")
	}
	if got := p.Get("missing"); got != "" {
		t.Errorf("Get(missing) = %q, want empty", got)
	}
}

func TestRequestBodyParser_FormData(t *testing.T) {
	p := newParser("application/x-www-form-urlencoded", "expense_type_id=6&year=2025&month=3&amount=12%2C50")
	if err := p.Parse(); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if p.IsJSON() {
		t.Error("IsJSON() = true, want false")
	}
	if got := p.First("type_id", "bill_type_id", "expense_type_id"); got != "6" {
		t.Errorf("First() = %q, want 6", got)
	}
	if got, err := p.Int(0, "month"); err != nil || got != 3 {
		t.Errorf("Int(month) = %d, %v, want 3", got, err)
	}
	if got := p.Get("amount"); got != "12,50" {
		t.Errorf("Get(amount) = %q, want 12,50", got)
	}
}

func TestRequestBodyParser_Errors(t *testing.T) {
	if err := newParser("application/json", `{"a":`).Parse(); !errors.Is(err, errBadRequest) {
		t.Errorf("malformed JSON error = %v, want errBadRequest", err)
	}
	big := `{"note":"` + strings.Repeat("x", maxBodyBytes) + `"}`
	if err := newParser("application/json", big).Parse(); !errors.Is(err, errBadRequest) {
		t.Errorf("oversized body error = %v, want errBadRequest", err)
	}
	if err := newParser("", "").Parse(); err != nil {
		t.Errorf("empty body error = %v, want nil", err)
	}
}

func TestParseObligationType(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    core.ObligationType
		wantErr error
	}{
		{
			name: "original field names",
			body: `{"kind":"bill","name":"Rent","bill_cycle":1,"bill_day":5,"fixed_amount":"900"}`,
			want: core.ObligationType{Kind: core.KindBill, Name: "Rent", CycleMonths: 1, AnchorDay: 5, FixedAmount: &core.Money{Cents: 90000}},
		},
		{
			name: "alternate field names with start",
			body: `{"kind":"expense","name":"Car","cycle_months":12,"anchor_day":0,"start_year":2024,"start_month":6}`,
			want: core.ObligationType{Kind: core.KindExpense, Name: "Car", CycleMonths: 12, StartPeriod: core.NewPeriod(2024, 6)},
		},
		{name: "bad kind", body: `{"kind":"income","name":"x"}`, wantErr: core.ErrInvalidKind},
		{name: "bad amount", body: `{"kind":"bill","name":"x","fixed_amount":"abc"}`, wantErr: core.ErrInvalidAmount},
		{name: "bad cycle", body: `{"kind":"bill","name":"x","bill_cycle":"monthly"}`, wantErr: errBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseObligationType(newParser("application/json", tt.body))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ParseObligationType() error = %v, want %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if got.Kind != tt.want.Kind || got.Name != tt.want.Name || got.CycleMonths != tt.want.CycleMonths ||
				got.AnchorDay != tt.want.AnchorDay || got.StartPeriod != tt.want.StartPeriod {
				t.Errorf("ParseObligationType() = %+v, want %+v", got, tt.want)
			}
			if (got.FixedAmount == nil) != (tt.want.FixedAmount == nil) ||
				(got.FixedAmount != nil && *got.FixedAmount != *tt.want.FixedAmount) {
				t.Errorf("FixedAmount = %v, want %v", got.FixedAmount, tt.want.FixedAmount)
			}
		})
	}
}

func TestParseCompletion(t *testing.T) {
	today := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	got, err := ParseCompletion(newParser("application/json", `{"bill_type_id":"1","amount":"0","note":"waived"}`), today)
	if err != nil {
		t.Fatalf("ParseCompletion() error = %v", err)
	}
	want := core.CompletionRecord{TypeID: 1, Period: core.NewPeriod(2025, 3), Note: "waived"}
	if got != want {
		t.Errorf("ParseCompletion() = %+v, want %+v", got, want)
	}

	if _, err := ParseCompletion(newParser("application/json", `{"type_id":"x","amount":"1"}`), today); !errors.Is(err, errBadRequest) {
		t.Errorf("non-numeric id error = %v, want errBadRequest", err)
	}
	if _, err := ParseCompletion(newParser("application/json", `{"type_id":1}`), today); !errors.Is(err, core.ErrInvalidAmount) {
		t.Errorf("missing amount error = %v, want ErrInvalidAmount", err)
	}
}
