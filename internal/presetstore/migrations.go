package presetstore

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
)

// migrationsSQL contains all store migrations, applied in order by version
// number. Each migration must be idempotent (safe to run multiple times).
var migrationsSQL = map[int]string{
	1: migrationV1Presets,
}

// migrationV1Presets creates the preset table. A preset is a named YAML
// sequence description; the definition is validated through the sequence
// factory before it is ever written, so rows always parse.
const migrationV1Presets = `
CREATE TABLE IF NOT EXISTS presets (
    id INTEGER PRIMARY KEY AUTOINCREMENT,

    -- Preset name as used by the loader and the API, unique
    name TEXT NOT NULL UNIQUE,

    -- YAML sequence description (type, days, excludes)
    definition TEXT NOT NULL,

    created_at TEXT NOT NULL DEFAULT (datetime('now')),
    updated_at TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_presets_name ON presets(name);
`

// Migrate applies all pending migrations and returns the number applied.
func (s *Store) Migrate(ctx context.Context) (int, error) {
	if _, err := s.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at TEXT NOT NULL DEFAULT (datetime('now'))
		)
	`); err != nil {
		return 0, fmt.Errorf("create migrations table: %w", err)
	}

	versions := make([]int, 0, len(migrationsSQL))
	for v := range migrationsSQL {
		versions = append(versions, v)
	}
	sort.Ints(versions)

	applied := 0
	for _, version := range versions {
		var exists int
		err := s.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM schema_migrations WHERE version = ?", version,
		).Scan(&exists)
		if err != nil {
			return applied, fmt.Errorf("check migration %d: %w", version, err)
		}
		if exists > 0 {
			continue
		}

		tx, err := s.BeginTx(ctx, nil)
		if err != nil {
			return applied, fmt.Errorf("begin migration %d: %w", version, err)
		}
		if _, err := tx.ExecContext(ctx, migrationsSQL[version]); err != nil {
			tx.Rollback()
			return applied, fmt.Errorf("apply migration %d: %w", version, err)
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO schema_migrations (version) VALUES (?)", version,
		); err != nil {
			tx.Rollback()
			return applied, fmt.Errorf("record migration %d: %w", version, err)
		}
		if err := tx.Commit(); err != nil {
			return applied, fmt.Errorf("commit migration %d: %w", version, err)
		}

		s.logger.Info("applied migration", slog.Int("version", version))
		applied++
	}
	return applied, nil
}
