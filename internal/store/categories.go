package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const categoryColumns = `id, value, label, icon, color, sort_order, hidden, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCategory(row rowScanner) (Category, error) {
	var c Category
	var createdAt, updatedAt string
	var hidden int
	if err := row.Scan(&c.ID, &c.Value, &c.Label, &c.Icon, &c.Color, &c.Order, &hidden, &createdAt, &updatedAt); err != nil {
		return Category{}, err
	}
	c.Hidden = hidden == 1
	c.CreatedAt = parseTime(createdAt)
	c.UpdatedAt = parseTime(updatedAt)
	return c, nil
}

// CreateCategory adds a category with a fresh id, ordered after every
// existing one. An empty label defaults to value.
func (s *Store) CreateCategory(value, label, icon, color string) (*Category, error) {
	if label == "" {
		label = value
	}
	if icon == "" {
		icon = "📋"
	}
	var maxOrder int
	if err := s.db.QueryRow(`SELECT COALESCE(MAX(sort_order), 0) FROM categories`).Scan(&maxOrder); err != nil {
		return nil, fmt.Errorf("next category order: %w", err)
	}
	id := uuid.NewString()
	ts := now()
	_, err := s.db.Exec(
		`INSERT INTO categories (id, value, label, icon, color, sort_order, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, value, label, icon, color, maxOrder+1, ts, ts,
	)
	if err != nil {
		return nil, fmt.Errorf("insert category: %w", err)
	}
	s.log.Debug("created category", zap.String("id", id), zap.String("value", value))
	return s.GetCategory(id)
}

// UpsertCategory writes c under its own id, used when importing.
func (s *Store) UpsertCategory(c Category) error {
	return upsertCategory(s.db, c)
}

func upsertCategory(db execer, c Category) error {
	if c.Label == "" {
		c.Label = c.Value
	}
	if c.Icon == "" {
		c.Icon = "📋"
	}
	hidden := 0
	if c.Hidden {
		hidden = 1
	}
	ts := now()
	_, err := db.Exec(
		`INSERT INTO categories (id, value, label, icon, color, sort_order, hidden, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   value = excluded.value, label = excluded.label, icon = excluded.icon,
		   color = excluded.color, sort_order = excluded.sort_order,
		   hidden = excluded.hidden, updated_at = excluded.updated_at`,
		c.ID, c.Value, c.Label, c.Icon, c.Color, c.Order, hidden, ts, ts,
	)
	if err != nil {
		return fmt.Errorf("upsert category %s: %w", c.ID, err)
	}
	return nil
}

func (s *Store) GetCategory(id string) (*Category, error) {
	c, err := scanCategory(s.db.QueryRow(`SELECT `+categoryColumns+` FROM categories WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get category %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get category %s: %w", id, err)
	}
	return &c, nil
}

func (s *Store) ListCategories(includeHidden bool) ([]Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories`
	if !includeHidden {
		query += ` WHERE hidden = 0`
	}
	query += ` ORDER BY sort_order, label`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (s *Store) UpdateCategory(id, label, icon, color string) error {
	res, err := s.db.Exec(
		`UPDATE categories SET label = ?, icon = ?, color = ?, updated_at = ? WHERE id = ?`,
		label, icon, color, now(), id,
	)
	if err != nil {
		return fmt.Errorf("update category %s: %w", id, err)
	}
	return expectRow(res, "update category", id)
}

// SetCategoryHidden hides a category from pickers. Its records still report
// under it.
func (s *Store) SetCategoryHidden(id string, hidden bool) error {
	v := 0
	if hidden {
		v = 1
	}
	res, err := s.db.Exec(
		`UPDATE categories SET hidden = ?, updated_at = ? WHERE id = ?`, v, now(), id,
	)
	if err != nil {
		return fmt.Errorf("hide category %s: %w", id, err)
	}
	return expectRow(res, "hide category", id)
}

func expectRow(res sql.Result, op, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s %s: %w", op, id, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", op, id, ErrNotFound)
	}
	return nil
}
