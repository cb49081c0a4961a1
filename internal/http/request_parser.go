// Package http serves the JSON API over the due service.
//
// This file parses query parameters and request bodies into domain values.
// Bodies may be JSON or form encoded so the prefilled payment and item forms
// can post directly.

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"jiceot/internal/core"
)

const maxBodyBytes = 64 << 10

var errBadRequest = errors.New("bad request")

func badRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errBadRequest, fmt.Sprintf(format, args...))
}

// ParsePeriodParams reads year and month, each defaulting to the period of
// today. Non-numeric values are rejected.
func ParsePeriodParams(query url.Values, today time.Time) (core.Period, error) {
	p := core.PeriodOf(today)
	if v := strings.TrimSpace(query.Get("year")); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil {
			return core.Period{}, badRequest("year %q is not a number", v)
		}
		p.Year = y
	}
	if v := strings.TrimSpace(query.Get("month")); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil {
			return core.Period{}, badRequest("month %q is not a number", v)
		}
		p.Month = m
	}
	if err := p.Validate(); err != nil {
		return core.Period{}, err
	}
	return p, nil
}

// ParseKindParam reads a required kind parameter.
func ParseKindParam(query url.Values) (core.Kind, error) {
	v := strings.TrimSpace(query.Get("kind"))
	if v == "" {
		return "", badRequest("kind is required")
	}
	return core.ParseKind(v)
}

// ParseBoolParam reads an optional boolean parameter; absent means false.
func ParseBoolParam(query url.Values, key string) (bool, error) {
	v := strings.TrimSpace(query.Get(key))
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, badRequest("%s %q is not a boolean", key, v)
	}
	return b, nil
}

// RequestBodyParser reads a JSON or form-encoded body once and exposes its
// fields as strings.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]any
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser reads at most maxBodyBytes of the request body.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{contentType: r.Header.Get("Content-Type")}
	if r.Body == nil {
		return p
	}
	p.body, p.err = io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if p.err == nil && len(p.body) > maxBodyBytes {
		p.err = badRequest("body exceeds %d bytes", maxBodyBytes)
	}
	return p
}

// Parse decodes the body as JSON when it looks like an object, as form
// values otherwise.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true
	if p.err != nil {
		return p.err
	}

	trimmed := strings.TrimSpace(string(p.body))
	switch {
	case trimmed == "":
		p.formData = url.Values{}
	case strings.HasPrefix(trimmed, "{"):
		p.jsonData = make(map[string]any)
		if err := json.Unmarshal(p.body, &p.jsonData); err != nil {
			p.err = badRequest("malformed JSON body: %v", err)
		}
	default:
		var err error
		if p.formData, err = url.ParseQuery(trimmed); err != nil {
			p.err = badRequest("malformed form body: %v", err)
		}
	}
	return p.err
}

// Get returns the trimmed, sanitized string form of a field.
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return sanitizeInput(stringValue(val))
		}
		return ""
	}
	if p.formData != nil {
		return sanitizeInput(p.formData.Get(key))
	}
	return ""
}

// First returns the first non-empty field among keys.
func (p *RequestBodyParser) First(keys ...string) string {
	for _, k := range keys {
		if v := p.Get(k); v != "" {
			return v
		}
	}
	return ""
}

// Int parses an optional integer field; absent yields def.
func (p *RequestBodyParser) Int(def int, keys ...string) (int, error) {
	v := p.First(keys...)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, badRequest("%s %q is not a number", keys[0], v)
	}
	return n, nil
}

// Bool parses an optional boolean field; absent yields false.
func (p *RequestBodyParser) Bool(key string) (bool, error) {
	v := p.Get(key)
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, badRequest("%s %q is not a boolean", key, v)
	}
	return b, nil
}

func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

func (p *RequestBodyParser) ContentType() string {
	return p.contentType
}

func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// sanitizeInput trims whitespace and drops control characters other than
// tab and newlines.
func sanitizeInput(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, strings.TrimSpace(s))
}

// ParseObligationType builds a type from a creation body. Cycle and day
// accept both bill_cycle/bill_day and cycle_months/anchor_day.
func ParseObligationType(p *RequestBodyParser) (core.ObligationType, error) {
	if err := p.Parse(); err != nil {
		return core.ObligationType{}, err
	}

	kind, err := core.ParseKind(p.Get("kind"))
	if err != nil {
		return core.ObligationType{}, err
	}
	cycle, err := p.Int(0, "bill_cycle", "cycle_months")
	if err != nil {
		return core.ObligationType{}, err
	}
	day, err := p.Int(0, "bill_day", "anchor_day")
	if err != nil {
		return core.ObligationType{}, err
	}
	fixed, err := core.ParseOptionalAmount(p.Get("fixed_amount"))
	if err != nil {
		return core.ObligationType{}, err
	}
	stopped, err := p.Bool("stopped")
	if err != nil {
		return core.ObligationType{}, err
	}

	t := core.ObligationType{
		Kind:        kind,
		Name:        p.Get("name"),
		Icon:        p.Get("icon"),
		Color:       p.Get("color"),
		CycleMonths: cycle,
		AnchorDay:   day,
		FixedAmount: fixed,
		Stopped:     stopped,
	}

	startYear, err := p.Int(0, "start_year")
	if err != nil {
		return core.ObligationType{}, err
	}
	startMonth, err := p.Int(0, "start_month")
	if err != nil {
		return core.ObligationType{}, err
	}
	if startYear != 0 || startMonth != 0 {
		t.StartPeriod = core.NewPeriod(startYear, startMonth)
	}
	return t, nil
}

// ParseCompletion builds a completion from a creation body. The type id is
// read from type_id, bill_type_id or expense_type_id, matching the prefill
// link parameters. Year and month default to the period of today.
func ParseCompletion(p *RequestBodyParser, today time.Time) (core.CompletionRecord, error) {
	if err := p.Parse(); err != nil {
		return core.CompletionRecord{}, err
	}

	rawID := p.First("type_id", "bill_type_id", "expense_type_id")
	if rawID == "" {
		return core.CompletionRecord{}, core.ErrMissingType
	}
	typeID, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return core.CompletionRecord{}, badRequest("type id %q is not a number", rawID)
	}

	current := core.PeriodOf(today)
	year, err := p.Int(current.Year, "year")
	if err != nil {
		return core.CompletionRecord{}, err
	}
	month, err := p.Int(current.Month, "month")
	if err != nil {
		return core.CompletionRecord{}, err
	}
	amount, err := core.ParseAmount(p.Get("amount"))
	if err != nil {
		return core.CompletionRecord{}, err
	}

	return core.CompletionRecord{
		TypeID: typeID,
		Period: core.NewPeriod(year, month),
		Amount: amount,
		Note:   p.First("note", "description"),
	}, nil
}
