package core

import "testing"

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"1.23", 123, true},
		{"1,23", 123, true},
		{"0.01", 1, true},
		{"1.005", 101, true}, // half-up rounding
		{"1.004", 100, true},
		{" 2.50 ", 250, true},
		{"0", 0, true}, // settled without payment
		{"0.00", 0, true},
		{"-1", 0, false},
		{"+1", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
		{"999999999999999999999", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || got.Cents != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got.Cents, err)
			}
		} else if err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func TestParseOptionalAmount(t *testing.T) {
	m, err := ParseOptionalAmount("  ")
	if err != nil || m != nil {
		t.Fatalf("empty input: got %v, %v; want nil, nil", m, err)
	}
	m, err = ParseOptionalAmount("45.5")
	if err != nil || m == nil || m.Cents != 4550 {
		t.Fatalf("45.5: got %v, %v", m, err)
	}
	if _, err := ParseOptionalAmount("x"); err == nil {
		t.Fatal("expected error for garbage input")
	}
}

func TestMoneyString(t *testing.T) {
	cases := map[int64]string{
		0:      "0.00",
		5:      "0.05",
		1230:   "12.30",
		123456: "1234.56",
	}
	for cents, want := range cases {
		if got := (Money{Cents: cents}).String(); got != want {
			t.Errorf("Money{%d}.String() = %q, want %q", cents, got, want)
		}
	}
}

func TestSum(t *testing.T) {
	got := Sum(Money{Cents: 100}, Money{Cents: 0}, Money{Cents: 250})
	if got.Cents != 350 {
		t.Errorf("Sum() = %d, want 350", got.Cents)
	}
}
