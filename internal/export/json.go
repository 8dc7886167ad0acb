package export

import (
	"fmt"
	"os"
	"time"

	"github.com/sadopc/dayslice/internal/store"
	"github.com/sadopc/dayslice/internal/wire"
)

// ToJSON writes categories and records as a wire document, which the import
// command reads back.
func ToJSON(categories []store.Category, records []store.TimeRecord, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create json file: %w", err)
	}
	defer f.Close()

	doc := wire.NewDocument(categories, records, time.Now())
	if err := wire.Encode(f, doc); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return f.Close()
}

// CategoryMap indexes categories by id for ToCSV.
func CategoryMap(categories []store.Category) map[string]*store.Category {
	m := make(map[string]*store.Category, len(categories))
	for i := range categories {
		m[categories[i].ID] = &categories[i]
	}
	return m
}
