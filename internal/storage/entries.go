package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"budget/internal/core"
)

const entryColumns = `e.id, e.description, e.amount_cents, e.category_id, c.name, e.entry_date`

const entryFrom = ` FROM entries e JOIN categories c ON c.id = e.category_id`

func scanEntries(rows *sql.Rows) ([]core.Entry, error) {
	defer rows.Close()
	var out []core.Entry
	for rows.Next() {
		var e core.Entry
		if err := rows.Scan(&e.ID, &e.Description, &e.Amount.Cents, &e.CategoryID, &e.Category, dateColumn{&e.Date}); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}
	return out, nil
}

// ListEntries returns every entry with its category name, oldest first.
func (s *Store) ListEntries(ctx context.Context) ([]core.Entry, error) {
	rows, err := s.query(ctx, s.db, `SELECT `+entryColumns+entryFrom+` ORDER BY e.entry_date, e.id`)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	return scanEntries(rows)
}

// ListEntriesByMonth returns the entries dated within month of year.
func (s *Store) ListEntriesByMonth(ctx context.Context, year int, month time.Month) ([]core.Entry, error) {
	p := core.Period{Year: year, Month: month}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	rows, err := s.query(ctx, s.db,
		`SELECT `+entryColumns+entryFrom+`
		 WHERE e.entry_date >= ? AND e.entry_date < ?
		 ORDER BY e.entry_date, e.id`,
		s.dateArg(p.Start()), s.dateArg(p.End()))
	if err != nil {
		return nil, fmt.Errorf("list entries for %s: %w", p.Key(), err)
	}
	return scanEntries(rows)
}

// LastEntries returns at most n entries of the period, newest first.
func (s *Store) LastEntries(ctx context.Context, p core.Period, n int) ([]core.Entry, error) {
	if n <= 0 {
		return nil, nil
	}
	rows, err := s.query(ctx, s.db,
		`SELECT `+entryColumns+entryFrom+`
		 WHERE e.entry_date >= ? AND e.entry_date < ?
		 ORDER BY e.entry_date DESC, e.id DESC
		 LIMIT ?`,
		s.dateArg(p.Start()), s.dateArg(p.End()), n)
	if err != nil {
		return nil, fmt.Errorf("last entries: %w", err)
	}
	return scanEntries(rows)
}

// FindEntry returns core.ErrNotFound when id does not exist.
func (s *Store) FindEntry(ctx context.Context, id int64) (core.Entry, error) {
	var e core.Entry
	err := s.queryRow(ctx, s.db, `SELECT `+entryColumns+entryFrom+` WHERE e.id = ?`, id).
		Scan(&e.ID, &e.Description, &e.Amount.Cents, &e.CategoryID, &e.Category, dateColumn{&e.Date})
	if errors.Is(err, sql.ErrNoRows) {
		return core.Entry{}, core.ErrNotFound
	}
	if err != nil {
		return core.Entry{}, fmt.Errorf("find entry %d: %w", id, err)
	}
	return e, nil
}

// CreateEntry inserts e and returns its id.
func (s *Store) CreateEntry(ctx context.Context, e core.Entry) (int64, error) {
	if err := e.Validate(); err != nil {
		return 0, err
	}
	var id int64
	err := s.queryRow(ctx, s.db,
		`INSERT INTO entries (description, amount_cents, category_id, entry_date)
		 VALUES (?, ?, ?, ?) RETURNING id`,
		e.Description, e.Amount.Cents, e.CategoryID, s.dateArg(e.Date)).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create entry: %w", err)
	}
	return id, nil
}

// EditEntry overwrites every field of the entry with e.ID.
func (s *Store) EditEntry(ctx context.Context, e core.Entry) error {
	if err := e.Validate(); err != nil {
		return err
	}
	res, err := s.exec(ctx, s.db,
		`UPDATE entries SET description = ?, amount_cents = ?, category_id = ?, entry_date = ?
		 WHERE id = ?`,
		e.Description, e.Amount.Cents, e.CategoryID, s.dateArg(e.Date), e.ID)
	if err != nil {
		return fmt.Errorf("edit entry %d: %w", e.ID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return core.ErrNotFound
	}
	return nil
}

// DeleteEntry removes the entry; a missing id is not an error.
func (s *Store) DeleteEntry(ctx context.Context, id int64) error {
	if _, err := s.exec(ctx, s.db, `DELETE FROM entries WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete entry %d: %w", id, err)
	}
	return nil
}
