package store

import (
	"fmt"
	"strconv"
	"time"
)

func (s *Store) GetSetting(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err != nil {
		return "", fmt.Errorf("get setting %q: %w", key, err)
	}
	return value, nil
}

func (s *Store) SetSetting(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return err
}

func (s *Store) GetAllSettings() ([]Setting, error) {
	rows, err := s.db.Query(`SELECT key, value FROM settings ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	defer rows.Close()

	var settings []Setting
	for rows.Next() {
		var s Setting
		if err := rows.Scan(&s.Key, &s.Value); err != nil {
			return nil, err
		}
		settings = append(settings, s)
	}
	return settings, rows.Err()
}

// Preferences are the typed user settings.
type Preferences struct {
	IdleTimeout     time.Duration
	IdleAction      string // pause or stop
	DefaultPeriod   string // day, week or month
	ShowUnrecorded  bool
	UnrecordedLabel string
}

// Preferences reads the settings table, falling back to defaults for missing
// or unparsable values.
func (s *Store) Preferences() Preferences {
	p := Preferences{
		IdleTimeout:     5 * time.Minute,
		IdleAction:      "pause",
		DefaultPeriod:   "day",
		ShowUnrecorded:  true,
		UnrecordedLabel: "Unrecorded",
	}
	if v, err := s.GetSetting("idle_timeout"); err == nil {
		if secs, err := strconv.Atoi(v); err == nil {
			p.IdleTimeout = time.Duration(secs) * time.Second
		}
	}
	if v, err := s.GetSetting("idle_action"); err == nil && v != "" {
		p.IdleAction = v
	}
	if v, err := s.GetSetting("default_period"); err == nil && v != "" {
		p.DefaultPeriod = v
	}
	if v, err := s.GetSetting("show_unrecorded"); err == nil {
		if b, err := strconv.ParseBool(v); err == nil {
			p.ShowUnrecorded = b
		}
	}
	if v, err := s.GetSetting("unrecorded_label"); err == nil && v != "" {
		p.UnrecordedLabel = v
	}
	return p
}
