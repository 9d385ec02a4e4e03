package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/tempo/internal/db"
	"github.com/alexanderramin/tempo/internal/domain"
)

// SQLiteTimelineRepo implements TimelineRepo using a SQLite database.
type SQLiteTimelineRepo struct {
	db db.DBTX
}

// NewSQLiteTimelineRepo creates a new SQLiteTimelineRepo.
func NewSQLiteTimelineRepo(q db.DBTX) *SQLiteTimelineRepo {
	return &SQLiteTimelineRepo{db: q}
}

// Create inserts t and assigns its ID.
func (r *SQLiteTimelineRepo) Create(ctx context.Context, t *domain.Timeline) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO timelines (name, unit, created_at) VALUES (?, ?, ?)`,
		t.Name, t.Unit.String(), formatTime(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("inserting timeline: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading timeline id: %w", err)
	}
	t.ID = id
	return nil
}

func (r *SQLiteTimelineRepo) GetByID(ctx context.Context, id int64) (*domain.Timeline, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, name, unit FROM timelines WHERE id = ?`, id)
	var t domain.Timeline
	var unit string
	if err := row.Scan(&t.ID, &t.Name, &unit); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("timeline %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("scanning timeline: %w", err)
	}
	u, err := parseUnit(unit)
	if err != nil {
		return nil, err
	}
	t.Unit = u
	return &t, nil
}

// List returns every timeline, finest first.
func (r *SQLiteTimelineRepo) List(ctx context.Context) ([]domain.Timeline, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, unit FROM timelines ORDER BY `+unitOrder+`, id`)
	if err != nil {
		return nil, fmt.Errorf("listing timelines: %w", err)
	}
	defer rows.Close()

	var out []domain.Timeline
	for rows.Next() {
		var t domain.Timeline
		var unit string
		if err := rows.Scan(&t.ID, &t.Name, &unit); err != nil {
			return nil, fmt.Errorf("scanning timeline row: %w", err)
		}
		if t.Unit, err = parseUnit(unit); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating timelines: %w", err)
	}
	return out, nil
}

func (r *SQLiteTimelineRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM timelines`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting timelines: %w", err)
	}
	return n, nil
}

func (r *SQLiteTimelineRepo) Rename(ctx context.Context, id int64, name string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE timelines SET name = ? WHERE id = ?`, name, id)
	if err != nil {
		return fmt.Errorf("renaming timeline: %w", err)
	}
	return requireAffected(res, "timeline", id)
}

// Delete removes a timeline and, through the foreign key, its tasks.
func (r *SQLiteTimelineRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM timelines WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting timeline: %w", err)
	}
	return requireAffected(res, "timeline", id)
}

func requireAffected(res sql.Result, what string, id any) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %v: %w", what, id, ErrNotFound)
	}
	return nil
}
