package core

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// MaxAmountCents is the largest amount a form may carry (9999.99).
const MaxAmountCents = 999999

// amountPattern allows one to four integer digits and up to two decimals.
var amountPattern = regexp.MustCompile(`^\d{1,4}(?:\.\d{1,2})?$`)

var hundred = decimal.NewFromInt(100)

// ParseAmount converts form input like "12.5" into Money. Signs, grouping,
// commas and more than two decimals are rejected.
//
//	ParseAmount("12.5")    -> 1250
//	ParseAmount("0")       -> 0
//	ParseAmount("10000")   -> ErrInvalidAmount
//	ParseAmount("1.234")   -> ErrInvalidAmount
func ParseAmount(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if !amountPattern.MatchString(s) {
		return Money{}, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	return Money{Cents: d.Mul(hundred).IntPart()}, nil
}

// ValidAmount reports whether s is an acceptable amount string.
func ValidAmount(s string) bool {
	_, err := ParseAmount(s)
	return err == nil
}

func (m Money) Validate() error {
	if m.Cents < 0 || m.Cents > MaxAmountCents {
		return ErrInvalidAmount
	}
	return nil
}

// Decimal returns the amount in currency units.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// String formats with exactly two decimals, e.g. "12.50" or "-3.10".
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

func (m Money) Add(o Money) Money { return Money{Cents: m.Cents + o.Cents} }
func (m Money) Sub(o Money) Money { return Money{Cents: m.Cents - o.Cents} }

// Sum adds up amounts.
func Sum(ms ...Money) Money {
	var total Money
	for _, m := range ms {
		total = total.Add(m)
	}
	return total
}
