package wire

import (
	"fmt"
	"strconv"
	"time"

	"github.com/sadopc/dayslice/internal/report"
	"github.com/sadopc/dayslice/internal/store"
)

// StoreCategory converts c for the store. Categories without an id are keyed
// by their value.
func (c Category) StoreCategory() store.Category {
	id := c.ID
	if id == "" {
		id = c.Value
	}
	return store.Category{
		ID:     id,
		Value:  c.Value,
		Label:  c.Label,
		Icon:   c.Icon,
		Color:  c.Color,
		Order:  c.Order,
		Hidden: c.Hidden,
	}
}

func FromStoreCategory(c store.Category) Category {
	return Category{
		ID:     c.ID,
		Value:  c.Value,
		Label:  c.Label,
		Icon:   c.Icon,
		Color:  c.Color,
		Order:  c.Order,
		Hidden: c.Hidden,
	}
}

// StoreRecord converts r for import. The document id becomes the external id
// so importing the same document twice updates rather than duplicates.
func (r Record) StoreRecord() (store.TimeRecord, error) {
	if r.ID == "" {
		return store.TimeRecord{}, ErrMissingID
	}
	start, err := r.StartTime.Time()
	if err != nil {
		return store.TimeRecord{}, fmt.Errorf("record %s start: %w", r.ID, err)
	}
	out := store.TimeRecord{
		ExternalID: r.ID,
		CategoryID: r.CategoryID,
		Task:       r.Task,
		StartTime:  start,
		Duration:   r.Duration,
	}
	if r.EndTime != nil {
		end, err := r.EndTime.Time()
		if err != nil {
			return store.TimeRecord{}, fmt.Errorf("record %s end: %w", r.ID, err)
		}
		out.EndTime = &end
	}
	return out, nil
}

// ReportRecord converts r straight to the engine's type. Running records
// cannot be reported and return an error.
func (r Record) ReportRecord() (report.TimeRecord, error) {
	if r.ID == "" {
		return report.TimeRecord{}, ErrMissingID
	}
	if r.EndTime == nil {
		return report.TimeRecord{}, fmt.Errorf("record %s: no end time", r.ID)
	}
	start, err := r.StartTime.Time()
	if err != nil {
		return report.TimeRecord{}, fmt.Errorf("record %s start: %w", r.ID, err)
	}
	end, err := r.EndTime.Time()
	if err != nil {
		return report.TimeRecord{}, fmt.Errorf("record %s end: %w", r.ID, err)
	}
	return report.TimeRecord{
		ID:         r.ID,
		CategoryID: r.CategoryID,
		Task:       r.Task,
		Start:      start,
		End:        end,
		Duration:   r.Duration,
	}, nil
}

// FromStoreRecord converts a stored record. Records that were imported keep
// their original id; local ones are given "local-<id>".
func FromStoreRecord(r store.TimeRecord) Record {
	id := r.ExternalID
	if id == "" {
		id = "local-" + strconv.FormatInt(r.ID, 10)
	}
	out := Record{
		ID:         id,
		CategoryID: r.CategoryID,
		Task:       r.Task,
		StartTime:  FromTime(r.StartTime),
		Duration:   r.Duration,
	}
	if r.EndTime != nil {
		end := FromTime(*r.EndTime)
		out.EndTime = &end
	}
	if !r.CreatedAt.IsZero() {
		ts := FromTime(r.CreatedAt)
		out.CreatedAt = &ts
	}
	if !r.UpdatedAt.IsZero() {
		ts := FromTime(r.UpdatedAt)
		out.UpdatedAt = &ts
	}
	return out
}

// NewDocument builds a document from store contents.
func NewDocument(categories []store.Category, records []store.TimeRecord, exportedAt time.Time) *Document {
	ts := FromTime(exportedAt)
	doc := &Document{ExportedAt: &ts}
	for _, c := range categories {
		doc.Categories = append(doc.Categories, FromStoreCategory(c))
	}
	for _, r := range records {
		doc.Records = append(doc.Records, FromStoreRecord(r))
	}
	return doc
}

// ReportInput converts a document directly into engine input. Running records
// are left out. Records without an id or with a timestamp that does not
// convert are dropped and counted in skipped.
func (d *Document) ReportInput() (records []report.TimeRecord, cats report.Categories, skipped int) {
	cats = make(report.Categories, len(d.Categories))
	for _, c := range d.Categories {
		sc := c.StoreCategory()
		cats[sc.ID] = sc.ReportCategory()
	}
	for _, r := range d.Records {
		if r.EndTime == nil {
			continue
		}
		rr, err := r.ReportRecord()
		if err != nil {
			skipped++
			continue
		}
		records = append(records, rr)
	}
	return records, cats, skipped
}
