package sqlite

import (
	"context"
	"database/sql"
	"fmt"
)

// migration is one versioned schema step. Versions apply in lexical order
// and are recorded in vesting_migrations so reruns are no-ops.
type migration struct {
	Name    string
	Version string
	Up      string
}

var migrations = []migration{
	{
		Name:    "create_vesting_allocations",
		Version: "20250101000001",
		Up: `
CREATE TABLE IF NOT EXISTS vesting_allocations (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    beneficiary TEXT NOT NULL,
    amount      TEXT NOT NULL DEFAULT '0',
    revoked     INTEGER NOT NULL DEFAULT 0,
    created_at  TEXT NOT NULL DEFAULT (datetime('now')),
    updated_at  TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_vesting_allocations_beneficiary ON vesting_allocations (beneficiary);
`,
	},
	{
		Name:    "create_vesting_airdrops",
		Version: "20250101000002",
		Up: `
CREATE TABLE IF NOT EXISTS vesting_airdrops (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    caller     TEXT NOT NULL,
    entries    TEXT NOT NULL DEFAULT '[]',
    created_at TEXT NOT NULL DEFAULT (datetime('now')),
    updated_at TEXT NOT NULL DEFAULT (datetime('now'))
);
`,
	},
	{
		Name:    "create_vesting_schedules",
		Version: "20250101000003",
		Up: `
CREATE TABLE IF NOT EXISTS vesting_schedules (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    beneficiary   TEXT NOT NULL,
    total_amount  TEXT NOT NULL DEFAULT '0',
    released      TEXT NOT NULL DEFAULT '0',
    start_at      TEXT NOT NULL,
    cliff_secs    INTEGER NOT NULL DEFAULT 0,
    duration_secs INTEGER NOT NULL DEFAULT 0,
    allocation_id INTEGER NOT NULL DEFAULT 0,
    status        TEXT NOT NULL DEFAULT 'active',
    created_at    TEXT NOT NULL DEFAULT (datetime('now')),
    updated_at    TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_vesting_schedules_beneficiary ON vesting_schedules (beneficiary);
CREATE INDEX IF NOT EXISTS idx_vesting_schedules_status ON vesting_schedules (status);
`,
	},
	{
		Name:    "create_vesting_managers",
		Version: "20250101000004",
		Up: `
CREATE TABLE IF NOT EXISTS vesting_managers (
    address  TEXT PRIMARY KEY,
    added_at TEXT NOT NULL DEFAULT (datetime('now'))
);
`,
	},
	{
		Name:    "create_vesting_totals",
		Version: "20250101000005",
		Up: `
CREATE TABLE IF NOT EXISTS vesting_totals (
    id            INTEGER PRIMARY KEY CHECK (id = 1),
    total_vested  TEXT NOT NULL DEFAULT '0',
    total_claimed TEXT NOT NULL DEFAULT '0'
);

INSERT OR IGNORE INTO vesting_totals (id, total_vested, total_claimed) VALUES (1, '0', '0');
`,
	},
	{
		Name:    "create_vesting_events",
		Version: "20250101000006",
		Up: `
CREATE TABLE IF NOT EXISTS vesting_events (
    id            TEXT PRIMARY KEY,
    kind          TEXT NOT NULL,
    at            TEXT NOT NULL,
    caller        TEXT NOT NULL DEFAULT '',
    beneficiary   TEXT NOT NULL DEFAULT '',
    allocation_id INTEGER NOT NULL DEFAULT 0,
    schedule_id   INTEGER NOT NULL DEFAULT 0,
    airdrop_id    INTEGER NOT NULL DEFAULT 0,
    amount        TEXT NOT NULL DEFAULT '0',
    remaining     TEXT NOT NULL DEFAULT '0',
    reason        TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_vesting_events_kind ON vesting_events (kind);
`,
	},
}

// runMigrations applies all unapplied migrations in version order inside a
// single transaction per step.
func runMigrations(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS vesting_migrations (
    version    TEXT PRIMARY KEY,
    name       TEXT NOT NULL,
    applied_at TEXT NOT NULL DEFAULT (datetime('now'))
)`)
	if err != nil {
		return fmt.Errorf("vesting/sqlite: create migrations table: %w", err)
	}

	for _, m := range migrations {
		var applied int
		err := db.QueryRowContext(ctx,
			`SELECT COUNT(1) FROM vesting_migrations WHERE version = ?`, m.Version,
		).Scan(&applied)
		if err != nil {
			return fmt.Errorf("vesting/sqlite: check migration %s: %w", m.Version, err)
		}
		if applied > 0 {
			continue
		}

		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("vesting/sqlite: begin migration %s: %w", m.Version, err)
		}
		if _, err := tx.ExecContext(ctx, m.Up); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("vesting/sqlite: apply migration %s (%s): %w", m.Version, m.Name, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO vesting_migrations (version, name) VALUES (?, ?)`, m.Version, m.Name,
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("vesting/sqlite: record migration %s: %w", m.Version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("vesting/sqlite: commit migration %s: %w", m.Version, err)
		}
	}
	return nil
}
