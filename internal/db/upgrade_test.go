package db

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMigrate_UpgradeFromUnorderedTasks simulates a database written before
// recurrence and manual ordering: tasks have no recurrence column and every
// task in a block sits at position 0.
func TestMigrate_UpgradeFromUnorderedTasks(t *testing.T) {
	db, err := sql.Open("sqlite", MemoryPath)
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	legacy := []string{
		`CREATE TABLE timelines (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			name       TEXT NOT NULL,
			unit       TEXT NOT NULL CHECK(unit IN ('day','week','month')),
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE tasks (
			id           TEXT PRIMARY KEY,
			timeline_id  INTEGER NOT NULL REFERENCES timelines(id) ON DELETE CASCADE,
			block_start  TEXT NOT NULL,
			block_end    TEXT NOT NULL,
			title        TEXT NOT NULL,
			notes        TEXT NOT NULL DEFAULT '',
			status       TEXT NOT NULL DEFAULT 'todo',
			position     INTEGER NOT NULL DEFAULT 0,
			created_at   TEXT NOT NULL,
			updated_at   TEXT NOT NULL,
			completed_at TEXT
		)`,
		`INSERT INTO timelines (name, unit, created_at) VALUES ('Weeks', 'week', '2024-01-01T00:00:00Z')`,
		`INSERT INTO tasks (id, timeline_id, block_start, block_end, title, created_at, updated_at) VALUES
			('c', 1, '2024-03-04', '2024-03-10', 'third',  '2024-03-03T00:00:00Z', '2024-03-03T00:00:00Z'),
			('a', 1, '2024-03-04', '2024-03-10', 'first',  '2024-03-01T00:00:00Z', '2024-03-01T00:00:00Z'),
			('b', 1, '2024-03-04', '2024-03-10', 'second', '2024-03-02T00:00:00Z', '2024-03-02T00:00:00Z'),
			('z', 1, '2024-03-11', '2024-03-17', 'alone',  '2024-03-02T00:00:00Z', '2024-03-02T00:00:00Z')`,
	}
	for _, stmt := range legacy {
		_, err := db.Exec(stmt)
		require.NoError(t, err)
	}

	require.NoError(t, Migrate(db))

	rows, err := db.Query(`SELECT id, position, recurrence FROM tasks ORDER BY id`)
	require.NoError(t, err)
	defer rows.Close()
	got := map[string]int{}
	for rows.Next() {
		var id, rec string
		var pos int
		require.NoError(t, rows.Scan(&id, &pos, &rec))
		assert.Empty(t, rec)
		got[id] = pos
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, map[string]int{"a": 0, "b": 1, "c": 2, "z": 0}, got)

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM timelines`).Scan(&n))
	assert.Equal(t, 1, n, "existing timelines suppress seeding")
}
