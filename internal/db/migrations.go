package db

import (
	"database/sql"
	"fmt"
)

type migration struct {
	version int
	name    string
	sql     string
}

var migrations = []migration{
	{
		version: 1,
		name:    "local_state",
		sql: `
CREATE TABLE IF NOT EXISTS app_config (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS session (
  id INTEGER PRIMARY KEY CHECK(id = 1),
  username TEXT NOT NULL,
  token TEXT NOT NULL,
  expires_at DATETIME,
  created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`,
	},
	{
		version: 2,
		name:    "profile_cache",
		sql: `
CREATE TABLE IF NOT EXISTS profile_cache (
  id INTEGER PRIMARY KEY CHECK(id = 1),
  username TEXT NOT NULL,
  payload_json TEXT NOT NULL,
  fetched_at DATETIME NOT NULL
);
`,
	},
	{
		version: 3,
		name:    "food_facts_cache",
		sql: `
CREATE TABLE IF NOT EXISTS food_facts_cache (
  provider TEXT NOT NULL,
  barcode TEXT NOT NULL,
  name TEXT NOT NULL,
  brand TEXT NOT NULL DEFAULT '',
  serving TEXT NOT NULL DEFAULT '',
  calories REAL NOT NULL,
  per_100g INTEGER NOT NULL DEFAULT 0,
  raw_json TEXT,
  fetched_at DATETIME NOT NULL,
  expires_at DATETIME NOT NULL,
  PRIMARY KEY(provider, barcode)
);
`,
	},
}

// LatestVersion is the highest migration version known to this binary.
func LatestVersion() int {
	return migrations[len(migrations)-1].version
}

func ApplyMigrations(db *sql.DB) error {
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS schema_migrations (
  version INTEGER PRIMARY KEY,
  name TEXT NOT NULL,
  applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`); err != nil {
		return fmt.Errorf("ensure schema_migrations table: %w", err)
	}

	for _, m := range migrations {
		var exists int
		err := db.QueryRow(`SELECT 1 FROM schema_migrations WHERE version = ?`, m.version).Scan(&exists)
		if err == nil {
			continue
		}
		if err != sql.ErrNoRows {
			return fmt.Errorf("check migration version %d: %w", m.version, err)
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration tx: %w", err)
		}
		if _, err := tx.Exec(m.sql); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply migration version %d (%s): %w", m.version, m.name, err)
		}
		if _, err := tx.Exec(`INSERT INTO schema_migrations(version, name) VALUES(?, ?)`, m.version, m.name); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record migration version %d: %w", m.version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration version %d: %w", m.version, err)
		}
	}
	return nil
}

// AppliedVersion reports the highest recorded migration, or 0 on a fresh file.
func AppliedVersion(db *sql.DB) (int, error) {
	var v sql.NullInt64
	if err := db.QueryRow(`SELECT MAX(version) FROM schema_migrations`).Scan(&v); err != nil {
		return 0, fmt.Errorf("read applied migration version: %w", err)
	}
	if !v.Valid {
		return 0, nil
	}
	return int(v.Int64), nil
}
