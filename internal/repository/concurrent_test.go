package repository

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/alexanderramin/tempo/internal/calendar"
	"github.com/alexanderramin/tempo/internal/db"
	"github.com/alexanderramin/tempo/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newConcurrentTestDB creates a file-backed SQLite database in a temp directory.
// A :memory: database is private to one connection, so real concurrent access
// under WAL needs a file.
func newConcurrentTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "concurrent_test.db")
	database, err := db.OpenDB(dbPath)
	require.NoError(t, err, "failed to create concurrent test database")
	t.Cleanup(func() { database.Close() })
	return database
}

// TestConcurrentAccess_ReadDuringWrite runs block listings while a writer
// keeps adding tasks. Readers must never see an error or a partial row.
func TestConcurrentAccess_ReadDuringWrite(t *testing.T) {
	database := newConcurrentTestDB(t)
	ctx := context.Background()
	tasks := NewSQLiteTaskRepo(database)
	march := calendar.MonthOf(thursday).Range()

	const writes = 30
	var wg sync.WaitGroup
	stop := make(chan struct{})

	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func(reader int) {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				got, err := tasks.ListInRange(ctx, testutil.DayTimelineID, march)
				if err != nil {
					t.Errorf("reader %d: %v", reader, err)
					return
				}
				for _, task := range got {
					if task.Title == "" || task.Block.TimelineID != testutil.DayTimelineID {
						t.Errorf("reader %d: partial row %+v", reader, task)
						return
					}
				}
			}
		}(r)
	}

	for i := 0; i < writes; i++ {
		task := testutil.NewTestTask(fmt.Sprintf("task-%d", i), testutil.DayBlock(thursday.AddDays(i%7)),
			testutil.WithPosition(i))
		require.NoError(t, tasks.Create(ctx, task))
	}
	close(stop)
	wg.Wait()

	got, err := tasks.ListInRange(ctx, testutil.DayTimelineID, march)
	require.NoError(t, err)
	assert.Len(t, got, writes)
}

// TestConcurrentAccess_SequentialWritesConcurrentReads builds state one write
// at a time, then checks that many readers agree on it.
func TestConcurrentAccess_SequentialWritesConcurrentReads(t *testing.T) {
	database := newConcurrentTestDB(t)
	ctx := context.Background()
	timelines := NewSQLiteTimelineRepo(database)
	tasks := NewSQLiteTaskRepo(database)
	week := testutil.WeekBlock(thursday)

	const count = 10
	for i := 0; i < count; i++ {
		task := testutil.NewTestTask(fmt.Sprintf("task-%d", i), week, testutil.WithPosition(i))
		require.NoError(t, tasks.Create(ctx, task))
	}

	var wg sync.WaitGroup
	for r := 0; r < 20; r++ {
		wg.Add(1)
		go func(reader int) {
			defer wg.Done()

			tls, err := timelines.List(ctx)
			if err != nil {
				t.Errorf("reader %d: list timelines: %v", reader, err)
				return
			}
			if len(tls) != len(db.DefaultTimelines) {
				t.Errorf("reader %d: expected %d timelines, got %d", reader, len(db.DefaultTimelines), len(tls))
			}

			got, err := tasks.ListInRange(ctx, testutil.WeekTimelineID, week.Block.Range())
			if err != nil {
				t.Errorf("reader %d: list tasks: %v", reader, err)
				return
			}
			if len(got) != count {
				t.Errorf("reader %d: expected %d tasks, got %d", reader, count, len(got))
			}

			maxPos, err := tasks.MaxPosition(ctx, week)
			if err != nil {
				t.Errorf("reader %d: max position: %v", reader, err)
				return
			}
			if maxPos != count-1 {
				t.Errorf("reader %d: expected max position %d, got %d", reader, count-1, maxPos)
			}
		}(r)
	}
	wg.Wait()
}
