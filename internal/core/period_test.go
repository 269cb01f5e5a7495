package core

import (
	"testing"
	"time"
)

func TestPeriodBounds(t *testing.T) {
	tests := []struct {
		p          Period
		start, end string
		key        string
	}{
		{Period{2023, time.January}, "2023-01-01", "2023-02-01", "2023-01"},
		{Period{2023, time.December}, "2023-12-01", "2024-01-01", "2023-12"},
		{Period{2024, time.February}, "2024-02-01", "2024-03-01", "2024-02"},
	}
	for _, tt := range tests {
		if got := tt.p.Start().String(); got != tt.start {
			t.Errorf("%v Start() = %s, want %s", tt.p, got, tt.start)
		}
		if got := tt.p.End().String(); got != tt.end {
			t.Errorf("%v End() = %s, want %s", tt.p, got, tt.end)
		}
		if got := tt.p.Key(); got != tt.key {
			t.Errorf("%v Key() = %s, want %s", tt.p, got, tt.key)
		}
	}
}

func TestPeriodYearBounds(t *testing.T) {
	p := Period{Year: 2023, Month: time.June}
	if p.YearStart().String() != "2023-01-01" || p.YearEnd().String() != "2024-01-01" {
		t.Fatalf("year bounds = %s..%s", p.YearStart(), p.YearEnd())
	}
}

func TestCurrentPeriod(t *testing.T) {
	p := CurrentPeriod(time.Date(2023, time.January, 31, 23, 59, 0, 0, time.UTC))
	if p != (Period{Year: 2023, Month: time.January}) {
		t.Fatalf("CurrentPeriod = %+v", p)
	}
	if p.String() != "January 2023" {
		t.Errorf("String() = %q", p.String())
	}
}

func TestPeriodValidate(t *testing.T) {
	if err := (Period{Year: 2023, Month: 13}).Validate(); err != ErrInvalidMonth {
		t.Errorf("month 13: got %v", err)
	}
	if err := (Period{Year: 0, Month: time.March}).Validate(); err == nil {
		t.Error("year 0 should be invalid")
	}
	if err := (Period{Year: 2023, Month: time.March}).Validate(); err != nil {
		t.Errorf("valid period rejected: %v", err)
	}
}
