package core

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Period is a calendar month. Aggregates on the overview are scoped to one.
type Period struct {
	Year  int
	Month time.Month
}

// CurrentPeriod returns the month containing now.
func CurrentPeriod(now time.Time) Period {
	return Period{Year: now.Year(), Month: now.Month()}
}

func (p Period) Validate() error {
	if p.Month < time.January || p.Month > time.December {
		return ErrInvalidMonth
	}
	if p.Year < 1 || p.Year > 9999 {
		return fmt.Errorf("invalid year %d", p.Year)
	}
	return nil
}

// Start is the first day of the month.
func (p Period) Start() Date {
	return NewDate(p.Year, int(p.Month), 1)
}

// End is the first day of the following month, exclusive.
func (p Period) End() Date {
	return Date{Time: p.Start().AddDate(0, 1, 0)}
}

// Key identifies the period, e.g. "2023-01".
func (p Period) Key() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}

func (p Period) String() string {
	return fmt.Sprintf("%s %d", p.Month, p.Year)
}

// YearStart and YearEnd bound the calendar year containing the period.
func (p Period) YearStart() Date { return NewDate(p.Year, 1, 1) }
func (p Period) YearEnd() Date   { return NewDate(p.Year+1, 1, 1) }

// ParseMonth accepts a month number (1-12), an English month name or
// a YYYY-MM key.
func ParseMonth(s string, fallbackYear int) (Period, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Period{}, ErrInvalidMonth
	}
	if t, err := time.Parse("2006-01", s); err == nil {
		return Period{Year: t.Year(), Month: t.Month()}, nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		p := Period{Year: fallbackYear, Month: time.Month(n)}
		if err := p.Validate(); err != nil {
			return Period{}, err
		}
		return p, nil
	}
	for m := time.January; m <= time.December; m++ {
		name := m.String()
		if strings.EqualFold(s, name) || strings.EqualFold(s, name[:3]) {
			return Period{Year: fallbackYear, Month: m}, nil
		}
	}
	return Period{}, ErrInvalidMonth
}
