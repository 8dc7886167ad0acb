package store

import (
	"fmt"

	"github.com/sadopc/dayslice/internal/report"
	"go.uber.org/zap"
)

// DefaultCategories is the starter set given to a new database. Sub
// categories use "parent|child" values and share the parent's icon.
var DefaultCategories = []Category{
	{Value: "sleep", Icon: "😴", Order: 1001},
	{Value: "life", Icon: "🏠", Order: 2001},
	{Value: "life|meals", Icon: "🏠", Order: 2002},
	{Value: "life|bath", Icon: "🏠", Order: 2003},
	{Value: "life|chores", Icon: "🏠", Order: 2004},
	{Value: "work", Icon: "💼", Order: 3001},
	{Value: "work|commute", Icon: "💼", Order: 3002},
	{Value: "study", Icon: "📚", Order: 4001},
	{Value: "study|commute", Icon: "📚", Order: 4002},
	{Value: "study|school", Icon: "📚", Order: 4003},
	{Value: "study|cram school", Icon: "📚", Order: 4004},
	{Value: "exercise", Icon: "💪", Order: 5001},
	{Value: "exercise|gym", Icon: "💪", Order: 5002},
	{Value: "exercise|walking", Icon: "💪", Order: 5003},
	{Value: "exercise|stretching", Icon: "💪", Order: 5004},
	{Value: "exercise|sports", Icon: "💪", Order: 5005},
	{Value: "play", Icon: "🎨", Order: 6001},
	{Value: "play|friends", Icon: "🎨", Order: 6002},
	{Value: "play|reading", Icon: "🎨", Order: 6003},
	{Value: "play|music", Icon: "🎨", Order: 6004},
	{Value: "play|movies", Icon: "🎨", Order: 6005},
	{Value: "play|games", Icon: "🎨", Order: 6006},
	{Value: "play|social media", Icon: "🎨", Order: 6007},
	{Value: "other", Icon: "📋", Order: 99001},
}

// SeedDefaults inserts DefaultCategories when the categories table is empty
// and returns how many were added. The value doubles as the id and colours
// are handed out from the preset palette in order.
func (s *Store) SeedDefaults() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM categories`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count categories: %w", err)
	}
	if n > 0 {
		return 0, nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("seed categories: %w", err)
	}
	defer tx.Rollback()

	ts := now()
	for i, c := range DefaultCategories {
		color := report.PresetColors[i%len(report.PresetColors)]
		_, err := tx.Exec(
			`INSERT INTO categories (id, value, label, icon, color, sort_order, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			c.Value, c.Value, c.Value, c.Icon, color, c.Order, ts, ts,
		)
		if err != nil {
			return 0, fmt.Errorf("seed category %q: %w", c.Value, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("seed categories: %w", err)
	}
	s.log.Info("seeded default categories", zap.Int("count", len(DefaultCategories)))
	return len(DefaultCategories), nil
}
