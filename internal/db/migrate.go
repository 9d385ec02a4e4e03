package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// Migrate runs all schema migrations. Every statement is safe to re-run.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// ALTER TABLE ADD COLUMN has no IF NOT EXISTS form.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	if err := migrateSeedTimelines(db); err != nil {
		return fmt.Errorf("seeding default timelines: %w", err)
	}
	if err := migrateBackfillPositions(db); err != nil {
		return fmt.Errorf("backfilling task positions: %w", err)
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS timelines (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		name       TEXT NOT NULL,
		unit       TEXT NOT NULL CHECK(unit IN ('day','week','month')),
		created_at TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS tasks (
		id           TEXT PRIMARY KEY,
		timeline_id  INTEGER NOT NULL REFERENCES timelines(id) ON DELETE CASCADE,
		block_start  TEXT NOT NULL,
		block_end    TEXT NOT NULL,
		title        TEXT NOT NULL,
		notes        TEXT NOT NULL DEFAULT '',
		status       TEXT NOT NULL DEFAULT 'todo'
		             CHECK(status IN ('todo','done','skipped')),
		position     INTEGER NOT NULL DEFAULT 0,
		created_at   TEXT NOT NULL,
		updated_at   TEXT NOT NULL,
		completed_at TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_block ON tasks(timeline_id, block_start)`,

	`ALTER TABLE tasks ADD COLUMN recurrence TEXT NOT NULL DEFAULT ''`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_recurring ON tasks(timeline_id) WHERE recurrence != ''`,
}

// DefaultTimelines are created in an empty database.
var DefaultTimelines = []struct {
	Name string
	Unit string
}{
	{"Day", "day"},
	{"Week", "week"},
	{"Month", "month"},
}

func migrateSeedTimelines(db *sql.DB) error {
	ctx := context.Background()
	var n int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM timelines`).Scan(&n); err != nil {
		return fmt.Errorf("counting timelines: %w", err)
	}
	if n > 0 {
		return nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting seed transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	now := time.Now().UTC().Format(time.RFC3339)
	for _, t := range DefaultTimelines {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO timelines (name, unit, created_at) VALUES (?, ?, ?)`,
			t.Name, t.Unit, now,
		); err != nil {
			return fmt.Errorf("inserting %s timeline: %w", t.Unit, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing seed: %w", err)
	}
	committed = true
	return nil
}

// migrateBackfillPositions numbers tasks in blocks where every task still
// sits at position 0, as written before manual ordering existed.
func migrateBackfillPositions(db *sql.DB) error {
	_, err := db.Exec(`UPDATE tasks SET position = (
			SELECT r.rn FROM (
				SELECT id, ROW_NUMBER() OVER (
					PARTITION BY timeline_id, block_start ORDER BY created_at, id
				) - 1 AS rn
				FROM tasks
			) r WHERE r.id = tasks.id
		)
		WHERE (timeline_id, block_start) IN (
			SELECT timeline_id, block_start FROM tasks
			GROUP BY timeline_id, block_start
			HAVING COUNT(*) > 1 AND MAX(position) = 0
		)`)
	return err
}
