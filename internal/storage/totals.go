package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"budget/internal/core"
)

const sumAmount = `CAST(COALESCE(SUM(amount_cents), 0) AS BIGINT)`

func (s *Store) sumBetween(ctx context.Context, from, to core.Date) (core.Money, error) {
	var m core.Money
	err := s.queryRow(ctx, s.db,
		`SELECT `+sumAmount+` FROM entries WHERE entry_date >= ? AND entry_date < ?`,
		s.dateArg(from), s.dateArg(to)).Scan(&m.Cents)
	return m, err
}

// TotalSpent sums the entries of period p. No entries sum to zero.
func (s *Store) TotalSpent(ctx context.Context, p core.Period) (core.Money, error) {
	m, err := s.sumBetween(ctx, p.Start(), p.End())
	if err != nil {
		return core.Money{}, fmt.Errorf("total spent %s: %w", p.Key(), err)
	}
	return m, nil
}

// TotalBudgetCap sums the caps of every category.
func (s *Store) TotalBudgetCap(ctx context.Context) (core.Money, error) {
	var m core.Money
	err := s.queryRow(ctx, s.db,
		`SELECT CAST(COALESCE(SUM(max_amount_cents), 0) AS BIGINT) FROM categories`).Scan(&m.Cents)
	if err != nil {
		return core.Money{}, fmt.Errorf("total budget cap: %w", err)
	}
	return m, nil
}

// MonthlyTotal sums the entries of one calendar month.
func (s *Store) MonthlyTotal(ctx context.Context, year int, month time.Month) (core.Money, error) {
	p := core.Period{Year: year, Month: month}
	if err := p.Validate(); err != nil {
		return core.Money{}, err
	}
	m, err := s.sumBetween(ctx, p.Start(), p.End())
	if err != nil {
		return core.Money{}, fmt.Errorf("monthly total %s: %w", p.Key(), err)
	}
	return m, nil
}

// YearToDateTotal sums the entries dated from January 1st of year onwards
// within that year.
func (s *Store) YearToDateTotal(ctx context.Context, year int) (core.Money, error) {
	p := core.Period{Year: year, Month: time.January}
	m, err := s.sumBetween(ctx, p.YearStart(), p.YearEnd())
	if err != nil {
		return core.Money{}, fmt.Errorf("year to date total %d: %w", year, err)
	}
	return m, nil
}

// Reset deletes every row. Used by tests and budgetctl reset.
func (s *Store) Reset(ctx context.Context) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		for _, table := range []string{"entries", "bills", "categories"} {
			if _, err := s.exec(ctx, tx, `DELETE FROM `+table); err != nil {
				return fmt.Errorf("reset %s: %w", table, err)
			}
		}
		return nil
	})
}
