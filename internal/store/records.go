package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

const recordColumns = `id, external_id, category_id, task, start_time, end_time, duration, created_at, updated_at`

func scanRecord(row rowScanner) (TimeRecord, error) {
	var r TimeRecord
	var startTime, createdAt, updatedAt string
	var endTime, externalID sql.NullString
	if err := row.Scan(&r.ID, &externalID, &r.CategoryID, &r.Task, &startTime, &endTime, &r.Duration, &createdAt, &updatedAt); err != nil {
		return TimeRecord{}, err
	}
	r.ExternalID = externalID.String
	r.StartTime = parseTime(startTime)
	if endTime.Valid {
		t := parseTime(endTime.String)
		r.EndTime = &t
	}
	r.CreatedAt = parseTime(createdAt)
	r.UpdatedAt = parseTime(updatedAt)
	return r, nil
}

func durationSeconds(start, end time.Time) int64 {
	return int64(end.Sub(start) / time.Second)
}

// StartRecording opens a record with no end time. Only one recording may run
// at a time.
func (s *Store) StartRecording(categoryID, task string) (*TimeRecord, error) {
	running, err := s.RunningRecord()
	if err != nil {
		return nil, err
	}
	if running != nil {
		return nil, fmt.Errorf("start recording: %w", ErrRecordRunning)
	}

	ts := now()
	res, err := s.db.Exec(
		`INSERT INTO time_records (category_id, task, start_time, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		categoryID, task, ts, ts, ts,
	)
	if err != nil {
		return nil, fmt.Errorf("start recording: %w", err)
	}
	id, _ := res.LastInsertId()
	s.log.Debug("recording started", zap.Int64("id", id), zap.String("category", categoryID))
	return s.GetRecord(id)
}

// StopRecording closes the running record at the current time.
func (s *Store) StopRecording() (*TimeRecord, error) {
	return s.StopRecordingAt(time.Now())
}

// StopRecordingAt closes the running record at end. A recording that would
// end at or before its start is discarded and nil is returned.
func (s *Store) StopRecordingAt(end time.Time) (*TimeRecord, error) {
	running, err := s.RunningRecord()
	if err != nil {
		return nil, err
	}
	if running == nil {
		return nil, fmt.Errorf("stop recording: %w", ErrNotRecording)
	}

	end = end.UTC().Truncate(time.Second)
	if !end.After(running.StartTime) {
		s.log.Debug("discarding empty recording", zap.Int64("id", running.ID))
		return nil, s.DiscardRecording()
	}
	duration := durationSeconds(running.StartTime, end)

	_, err = s.db.Exec(
		`UPDATE time_records SET end_time = ?, duration = ?, updated_at = ? WHERE id = ?`,
		formatTime(end), duration, now(), running.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("stop recording: %w", err)
	}
	s.log.Debug("recording stopped", zap.Int64("id", running.ID), zap.Int64("seconds", duration))
	return s.GetRecord(running.ID)
}

// DiscardRecording deletes the running record without saving it.
func (s *Store) DiscardRecording() error {
	res, err := s.db.Exec(`DELETE FROM time_records WHERE end_time IS NULL`)
	if err != nil {
		return fmt.Errorf("discard recording: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("discard recording: %w", ErrNotRecording)
	}
	return nil
}

// RunningRecord returns the current recording, or nil when none is running.
func (s *Store) RunningRecord() (*TimeRecord, error) {
	r, err := scanRecord(s.db.QueryRow(
		`SELECT ` + recordColumns + ` FROM time_records WHERE end_time IS NULL ORDER BY id DESC LIMIT 1`,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get running record: %w", err)
	}
	return &r, nil
}

// CreateRecord saves a finished interval entered after the fact.
func (s *Store) CreateRecord(categoryID, task string, start, end time.Time) (*TimeRecord, error) {
	if !end.After(start) {
		return nil, fmt.Errorf("create record: %w", ErrInvalidRecord)
	}
	ts := now()
	res, err := s.db.Exec(
		`INSERT INTO time_records (category_id, task, start_time, end_time, duration, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		categoryID, task, formatTime(start), formatTime(end), durationSeconds(start, end), ts, ts,
	)
	if err != nil {
		return nil, fmt.Errorf("create record: %w", err)
	}
	id, _ := res.LastInsertId()
	return s.GetRecord(id)
}

// UpsertImportedRecord stores r keyed by r.ExternalID. The interval is kept
// as given even when malformed; reports drop such records. It reports whether
// a new row was created.
func (s *Store) UpsertImportedRecord(r TimeRecord) (bool, error) {
	return upsertImportedRecord(s.db, r)
}

func upsertImportedRecord(db execer, r TimeRecord) (bool, error) {
	if r.ExternalID == "" {
		return false, fmt.Errorf("import record: missing external id")
	}
	var existing int64
	err := db.QueryRow(`SELECT id FROM time_records WHERE external_id = ?`, r.ExternalID).Scan(&existing)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return false, fmt.Errorf("import record %s: %w", r.ExternalID, err)
	}

	var end any
	if r.EndTime != nil {
		end = formatTime(*r.EndTime)
	}
	ts := now()
	_, err = db.Exec(
		`INSERT INTO time_records (external_id, category_id, task, start_time, end_time, duration, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(external_id) DO UPDATE SET
		   category_id = excluded.category_id, task = excluded.task,
		   start_time = excluded.start_time, end_time = excluded.end_time,
		   duration = excluded.duration, updated_at = excluded.updated_at`,
		r.ExternalID, r.CategoryID, r.Task, formatTime(r.StartTime), end, r.Duration, ts, ts,
	)
	if err != nil {
		return false, fmt.Errorf("import record %s: %w", r.ExternalID, err)
	}
	return existing == 0, nil
}

func (s *Store) UpdateRecord(id int64, categoryID, task string, start, end time.Time) error {
	if !end.After(start) {
		return fmt.Errorf("update record %d: %w", id, ErrInvalidRecord)
	}
	res, err := s.db.Exec(
		`UPDATE time_records SET category_id = ?, task = ?, start_time = ?, end_time = ?, duration = ?, updated_at = ?
		 WHERE id = ?`,
		categoryID, task, formatTime(start), formatTime(end), durationSeconds(start, end), now(), id,
	)
	if err != nil {
		return fmt.Errorf("update record %d: %w", id, err)
	}
	return expectRow(res, "update record", fmt.Sprint(id))
}

func (s *Store) DeleteRecord(id int64) error {
	res, err := s.db.Exec(`DELETE FROM time_records WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete record %d: %w", id, err)
	}
	return expectRow(res, "delete record", fmt.Sprint(id))
}

func (s *Store) GetRecord(id int64) (*TimeRecord, error) {
	r, err := scanRecord(s.db.QueryRow(`SELECT `+recordColumns+` FROM time_records WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get record %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get record %d: %w", id, err)
	}
	return &r, nil
}

// ListRecords returns records newest first.
func (s *Store) ListRecords(f RecordFilter) ([]TimeRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM time_records WHERE 1=1`
	var args []any

	if !f.IncludeRunning {
		query += ` AND end_time IS NOT NULL`
	}
	if f.CategoryID != nil {
		query += ` AND category_id = ?`
		args = append(args, *f.CategoryID)
	}
	if f.From != nil {
		query += ` AND (end_time IS NULL OR end_time > ?)`
		args = append(args, formatTime(*f.From))
	}
	if f.To != nil {
		query += ` AND start_time < ?`
		args = append(args, formatTime(*f.To))
	}
	query += ` ORDER BY start_time DESC, id DESC`
	if f.Limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, f.Limit)
	}
	return s.queryRecords(query, args...)
}

// RecordsOverlapping returns finished records that overlap [from, to), oldest
// first. Records with the same start come out in insertion order, which is
// the order the report engine uses to break ties.
func (s *Store) RecordsOverlapping(from, to time.Time) ([]TimeRecord, error) {
	return s.queryRecords(
		`SELECT `+recordColumns+` FROM time_records
		 WHERE end_time IS NOT NULL AND end_time > ? AND start_time < ?
		 ORDER BY start_time, id`,
		formatTime(from), formatTime(to),
	)
}

// AllRecords returns every finished record, oldest first.
func (s *Store) AllRecords() ([]TimeRecord, error) {
	return s.queryRecords(
		`SELECT ` + recordColumns + ` FROM time_records WHERE end_time IS NOT NULL ORDER BY start_time, id`,
	)
}

func (s *Store) queryRecords(query string, args ...any) ([]TimeRecord, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	var records []TimeRecord
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// Bounds returns the earliest start and latest end over well-formed finished
// records. ok is false when there are none.
func (s *Store) Bounds() (first, last time.Time, ok bool, err error) {
	var lo, hi sql.NullString
	err = s.db.QueryRow(
		`SELECT MIN(start_time), MAX(end_time) FROM time_records
		 WHERE end_time IS NOT NULL AND end_time > start_time`,
	).Scan(&lo, &hi)
	if err != nil {
		return time.Time{}, time.Time{}, false, fmt.Errorf("record bounds: %w", err)
	}
	if !lo.Valid || !hi.Valid {
		return time.Time{}, time.Time{}, false, nil
	}
	return parseTime(lo.String), parseTime(hi.String), true, nil
}
