package store

import (
	"database/sql"
	"fmt"

	"go.uber.org/zap"
)

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
	QueryRow(query string, args ...any) *sql.Row
}

type ImportStats struct {
	Categories int
	Remapped   int
	Created    int
	Updated    int
}

// Import writes categories and then records in a single transaction, so a
// failure leaves the database as it was. A category whose value already
// exists under another id is merged into the existing one and its records
// follow. step is called after each row when non-nil.
func (s *Store) Import(categories []Category, records []TimeRecord, step func()) (ImportStats, error) {
	var stats ImportStats
	if step == nil {
		step = func() {}
	}

	tx, err := s.db.Begin()
	if err != nil {
		return stats, fmt.Errorf("begin import: %w", err)
	}
	defer tx.Rollback()

	byValue, err := categoryIDsByValue(tx)
	if err != nil {
		return stats, err
	}

	remap := make(map[string]string)
	for _, c := range categories {
		if id, ok := byValue[c.Value]; ok && id != c.ID {
			remap[c.ID] = id
			stats.Remapped++
		} else {
			if err := upsertCategory(tx, c); err != nil {
				return ImportStats{}, err
			}
			byValue[c.Value] = c.ID
		}
		stats.Categories++
		step()
	}

	for _, r := range records {
		if id, ok := remap[r.CategoryID]; ok {
			r.CategoryID = id
		}
		created, err := upsertImportedRecord(tx, r)
		if err != nil {
			return ImportStats{}, err
		}
		if created {
			stats.Created++
		} else {
			stats.Updated++
		}
		step()
	}

	if err := tx.Commit(); err != nil {
		return ImportStats{}, fmt.Errorf("commit import: %w", err)
	}
	s.log.Info("import finished",
		zap.Int("categories", stats.Categories),
		zap.Int("remapped", stats.Remapped),
		zap.Int("created", stats.Created),
		zap.Int("updated", stats.Updated))
	return stats, nil
}

func categoryIDsByValue(tx *sql.Tx) (map[string]string, error) {
	rows, err := tx.Query(`SELECT id, value FROM categories`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	m := make(map[string]string)
	for rows.Next() {
		var id, value string
		if err := rows.Scan(&id, &value); err != nil {
			return nil, fmt.Errorf("list categories: %w", err)
		}
		m[value] = id
	}
	return m, rows.Err()
}
