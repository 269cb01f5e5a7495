package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"budget/internal/core"
	"budget/internal/log"
)

// ListCategories returns every category ordered by name.
func (s *Store) ListCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := s.query(ctx, s.db, `SELECT id, name, max_amount_cents FROM categories ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.MaxAmount.Cents); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// CategoryProgress returns every category with what was spent in p,
// ordered by name. Categories without entries report zero spent.
func (s *Store) CategoryProgress(ctx context.Context, p core.Period) ([]core.CategoryProgress, error) {
	rows, err := s.query(ctx, s.db,
		`SELECT c.id, c.name, c.max_amount_cents,
		        CAST(COALESCE(SUM(e.amount_cents), 0) AS BIGINT)
		 FROM categories c
		 LEFT JOIN entries e
		        ON e.category_id = c.id AND e.entry_date >= ? AND e.entry_date < ?
		 GROUP BY c.id, c.name, c.max_amount_cents
		 ORDER BY c.name, c.id`,
		s.dateArg(p.Start()), s.dateArg(p.End()))
	if err != nil {
		return nil, fmt.Errorf("category progress: %w", err)
	}
	defer rows.Close()

	var out []core.CategoryProgress
	for rows.Next() {
		var cp core.CategoryProgress
		if err := rows.Scan(&cp.ID, &cp.Name, &cp.MaxAmount.Cents, &cp.Spent.Cents); err != nil {
			return nil, fmt.Errorf("scan category progress: %w", err)
		}
		cp.Remaining = cp.MaxAmount.Sub(cp.Spent)
		out = append(out, cp)
	}
	return out, rows.Err()
}

// FindCategory returns core.ErrNotFound when id does not exist.
func (s *Store) FindCategory(ctx context.Context, id int64) (core.Category, error) {
	var c core.Category
	err := s.queryRow(ctx, s.db, `SELECT id, name, max_amount_cents FROM categories WHERE id = ?`, id).
		Scan(&c.ID, &c.Name, &c.MaxAmount.Cents)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, core.ErrNotFound
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("find category %d: %w", id, err)
	}
	return c, nil
}

// FindCategoryIDByName looks name up case-insensitively.
func (s *Store) FindCategoryIDByName(ctx context.Context, name string) (int64, bool, error) {
	return s.findCategoryIDByName(ctx, s.db, name)
}

func (s *Store) findCategoryIDByName(ctx context.Context, q querier, name string) (int64, bool, error) {
	var id int64
	err := s.queryRow(ctx, q, `SELECT id FROM categories WHERE LOWER(name) = LOWER(?) ORDER BY id LIMIT 1`,
		core.NormalizeCategoryName(name)).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("find category %q: %w", name, err)
	}
	return id, true, nil
}

// CreateCategory stores a category with its name title-cased and returns
// its id. A case-insensitive name collision yields core.ErrDuplicateCategory.
func (s *Store) CreateCategory(ctx context.Context, name string, max core.Money) (int64, error) {
	return s.createCategory(ctx, s.db, name, max)
}

func (s *Store) createCategory(ctx context.Context, q querier, name string, max core.Money) (int64, error) {
	c := core.Category{Name: core.NormalizeCategoryName(name), MaxAmount: max}
	if err := c.Validate(); err != nil {
		return 0, err
	}
	var id int64
	err := s.queryRow(ctx, q,
		`INSERT INTO categories (name, max_amount_cents) VALUES (?, ?) RETURNING id`,
		c.Name, c.MaxAmount.Cents).Scan(&id)
	if isUniqueViolation(err) {
		return 0, core.ErrDuplicateCategory
	}
	if err != nil {
		return 0, fmt.Errorf("create category %q: %w", c.Name, err)
	}
	return id, nil
}

// EditCategory renames and re-caps the category in place.
func (s *Store) EditCategory(ctx context.Context, id int64, name string, max core.Money) error {
	c := core.Category{ID: id, Name: core.NormalizeCategoryName(name), MaxAmount: max}
	if err := c.Validate(); err != nil {
		return err
	}
	res, err := s.exec(ctx, s.db,
		`UPDATE categories SET name = ?, max_amount_cents = ? WHERE id = ?`,
		c.Name, c.MaxAmount.Cents, id)
	if isUniqueViolation(err) {
		return core.ErrDuplicateCategory
	}
	if err != nil {
		return fmt.Errorf("edit category %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return core.ErrNotFound
	}
	return nil
}

// DeleteCategory moves the category's entries to Uncategorized, creating
// it if needed, then removes the category. Everything happens in one
// transaction. Deleting a missing id is a no-op; deleting Uncategorized
// itself returns core.ErrProtectedCategory.
func (s *Store) DeleteCategory(ctx context.Context, id int64) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		var name string
		err := s.queryRow(ctx, tx, `SELECT name FROM categories WHERE id = ?`, id).Scan(&name)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("load category %d: %w", id, err)
		}
		if core.IsUncategorized(name) {
			return core.ErrProtectedCategory
		}

		target, found, err := s.findCategoryIDByName(ctx, tx, core.UncategorizedName)
		if err != nil {
			return err
		}
		if !found {
			target, err = s.createCategory(ctx, tx, core.UncategorizedName, core.Money{})
			if err != nil {
				return fmt.Errorf("create %s: %w", core.UncategorizedName, err)
			}
		}

		res, err := s.exec(ctx, tx, `UPDATE entries SET category_id = ? WHERE category_id = ?`, target, id)
		if err != nil {
			return fmt.Errorf("reassign entries of category %d: %w", id, err)
		}
		moved, _ := res.RowsAffected()

		if _, err := s.exec(ctx, tx, `DELETE FROM categories WHERE id = ?`, id); err != nil {
			return fmt.Errorf("delete category %d: %w", id, err)
		}
		s.logger.InfoContext(ctx, "Category deleted",
			log.FieldCategoryID, id, log.FieldCategory, name, "reassigned_entries", moved)
		return nil
	})
}
