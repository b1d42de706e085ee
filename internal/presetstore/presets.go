package presetstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned when a requested preset doesn't exist.
var ErrNotFound = errors.New("not found")

// IsNotFound checks if an error is a not-found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// Preset is a stored, user-defined sequence description.
type Preset struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	Definition string    `json:"definition"` // YAML sequence description
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// timestampFormats are the layouts SQLite may hand back for TEXT datetimes.
var timestampFormats = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05.999999",
}

func parseTimestamp(s string) time.Time {
	for _, layout := range timestampFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// SavePreset inserts or replaces a named preset. The caller is responsible
// for validating the definition before saving.
func (s *Store) SavePreset(ctx context.Context, name, definition string) (*Preset, error) {
	query := `
		INSERT INTO presets (name, definition)
		VALUES (?, ?)
		ON CONFLICT(name) DO UPDATE SET
			definition = excluded.definition,
			updated_at = datetime('now')
	`
	if _, err := s.ExecContext(ctx, query, name, definition); err != nil {
		return nil, fmt.Errorf("save preset %q: %w", name, err)
	}
	return s.GetPreset(ctx, name)
}

// GetPreset retrieves a preset by name.
// Returns ErrNotFound if no preset has that name.
func (s *Store) GetPreset(ctx context.Context, name string) (*Preset, error) {
	query := `
		SELECT id, name, definition, created_at, updated_at
		FROM presets
		WHERE name = ?
	`
	var p Preset
	var createdAt, updatedAt string
	err := s.QueryRowContext(ctx, query, name).Scan(
		&p.ID, &p.Name, &p.Definition, &createdAt, &updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("preset %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get preset %q: %w", name, err)
	}
	p.CreatedAt = parseTimestamp(createdAt)
	p.UpdatedAt = parseTimestamp(updatedAt)
	return &p, nil
}

// ListPresets returns all stored presets ordered by name.
func (s *Store) ListPresets(ctx context.Context) ([]Preset, error) {
	query := `
		SELECT id, name, definition, created_at, updated_at
		FROM presets
		ORDER BY name
	`
	rows, err := s.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list presets: %w", err)
	}
	defer rows.Close()

	var presets []Preset
	for rows.Next() {
		var p Preset
		var createdAt, updatedAt string
		if err := rows.Scan(&p.ID, &p.Name, &p.Definition, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan preset: %w", err)
		}
		p.CreatedAt = parseTimestamp(createdAt)
		p.UpdatedAt = parseTimestamp(updatedAt)
		presets = append(presets, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list presets: %w", err)
	}
	return presets, nil
}

// DeletePreset removes a preset by name.
// Returns ErrNotFound if no preset has that name.
func (s *Store) DeletePreset(ctx context.Context, name string) error {
	res, err := s.ExecContext(ctx, "DELETE FROM presets WHERE name = ?", name)
	if err != nil {
		return fmt.Errorf("delete preset %q: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete preset %q: %w", name, err)
	}
	if n == 0 {
		return fmt.Errorf("preset %q: %w", name, ErrNotFound)
	}
	return nil
}
