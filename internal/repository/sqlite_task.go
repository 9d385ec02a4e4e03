package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/tempo/internal/calendar"
	"github.com/alexanderramin/tempo/internal/db"
	"github.com/alexanderramin/tempo/internal/domain"
)

// SQLiteTaskRepo implements TaskRepo using a SQLite database.
type SQLiteTaskRepo struct {
	db db.DBTX
}

// NewSQLiteTaskRepo creates a new SQLiteTaskRepo.
func NewSQLiteTaskRepo(q db.DBTX) *SQLiteTaskRepo {
	return &SQLiteTaskRepo{db: q}
}

// The block's unit lives on the timeline row, so reads join it in.
const taskColumns = `t.id, t.timeline_id, tl.unit, t.block_start, t.title, t.notes, t.status,
	t.position, t.recurrence, t.created_at, t.updated_at, t.completed_at`

const taskFrom = ` FROM tasks t JOIN timelines tl ON tl.id = t.timeline_id`

func (r *SQLiteTaskRepo) Create(ctx context.Context, t *domain.Task) error {
	status := t.Status
	if status == "" {
		status = domain.TaskTodo
	}
	query := `INSERT INTO tasks (id, timeline_id, block_start, block_end, title, notes, status,
		position, recurrence, created_at, updated_at, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		t.ID,
		t.Block.TimelineID,
		formatDate(t.Block.Block.Start()),
		formatDate(t.Block.Block.End()),
		t.Title,
		t.Notes,
		string(status),
		t.Position,
		t.Recurrence,
		formatTime(t.CreatedAt),
		formatTime(t.UpdatedAt),
		nullableTimeToString(t.CompletedAt, time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting task: %w", err)
	}
	t.Status = status
	return nil
}

func (r *SQLiteTaskRepo) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+taskColumns+taskFrom+` WHERE t.id = ?`, id)
	return r.scanTask(row)
}

func (r *SQLiteTaskRepo) ListInRange(ctx context.Context, timelineID int64, rng calendar.DateRange) ([]*domain.Task, error) {
	if rng.IsEmpty() {
		return nil, nil
	}
	query := `SELECT ` + taskColumns + taskFrom + `
		WHERE t.timeline_id = ? AND t.block_start <= ? AND t.block_end >= ?
		ORDER BY t.block_start, t.position, t.created_at, t.id`
	rows, err := r.db.QueryContext(ctx, query, timelineID, formatDate(rng.End), formatDate(rng.Start))
	if err != nil {
		return nil, fmt.Errorf("listing tasks in range: %w", err)
	}
	defer rows.Close()
	return r.scanTasks(rows)
}

func (r *SQLiteTaskRepo) ListRecurring(ctx context.Context, timelineID int64, before calendar.Date) ([]*domain.Task, error) {
	query := `SELECT ` + taskColumns + taskFrom + `
		WHERE t.timeline_id = ? AND t.recurrence != '' AND t.block_start <= ?
		ORDER BY t.block_start, t.position, t.id`
	rows, err := r.db.QueryContext(ctx, query, timelineID, formatDate(before))
	if err != nil {
		return nil, fmt.Errorf("listing recurring tasks: %w", err)
	}
	defer rows.Close()
	return r.scanTasks(rows)
}

// Update writes every mutable field. The block may move to another timeline.
func (r *SQLiteTaskRepo) Update(ctx context.Context, t *domain.Task) error {
	query := `UPDATE tasks SET timeline_id = ?, block_start = ?, block_end = ?, title = ?, notes = ?,
		status = ?, position = ?, recurrence = ?, updated_at = ?, completed_at = ?
		WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		t.Block.TimelineID,
		formatDate(t.Block.Block.Start()),
		formatDate(t.Block.Block.End()),
		t.Title,
		t.Notes,
		string(t.Status),
		t.Position,
		t.Recurrence,
		formatTime(t.UpdatedAt),
		nullableTimeToString(t.CompletedAt, time.RFC3339),
		t.ID,
	)
	if err != nil {
		return fmt.Errorf("updating task: %w", err)
	}
	return requireAffected(res, "task", t.ID)
}

// SetDone toggles completion. Completing keeps an existing completed_at.
func (r *SQLiteTaskRepo) SetDone(ctx context.Context, id string, done bool, at time.Time) error {
	var (
		res sql.Result
		err error
	)
	if done {
		res, err = r.db.ExecContext(ctx,
			`UPDATE tasks SET status = 'done', completed_at = COALESCE(completed_at, ?), updated_at = ? WHERE id = ?`,
			formatTime(at), formatTime(at), id)
	} else {
		res, err = r.db.ExecContext(ctx,
			`UPDATE tasks SET status = 'todo', completed_at = NULL, updated_at = ? WHERE id = ?`,
			formatTime(at), id)
	}
	if err != nil {
		return fmt.Errorf("setting task done: %w", err)
	}
	return requireAffected(res, "task", id)
}

func (r *SQLiteTaskRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting task: %w", err)
	}
	return requireAffected(res, "task", id)
}

func (r *SQLiteTaskRepo) MaxPosition(ctx context.Context, block domain.TimelineBlock) (int, error) {
	var maxPos sql.NullInt64
	err := r.db.QueryRowContext(ctx,
		`SELECT MAX(position) FROM tasks WHERE timeline_id = ? AND block_start = ?`,
		block.TimelineID, formatDate(block.Block.Start()),
	).Scan(&maxPos)
	if err != nil {
		return 0, fmt.Errorf("reading max position: %w", err)
	}
	if !maxPos.Valid {
		return -1, nil
	}
	return int(maxPos.Int64), nil
}

func (r *SQLiteTaskRepo) ShiftPositions(ctx context.Context, block domain.TimelineBlock, from, delta int) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE tasks SET position = position + ? WHERE timeline_id = ? AND block_start = ? AND position >= ?`,
		delta, block.TimelineID, formatDate(block.Block.Start()), from,
	)
	if err != nil {
		return fmt.Errorf("shifting positions: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

type taskRow struct {
	unit, blockStart, status, createdAt, updatedAt string
	completedAt                                    sql.NullString
}

func scanTaskRow(s rowScanner) (*domain.Task, *taskRow, error) {
	var t domain.Task
	var raw taskRow
	err := s.Scan(
		&t.ID, &t.Block.TimelineID, &raw.unit, &raw.blockStart, &t.Title, &t.Notes, &raw.status,
		&t.Position, &t.Recurrence, &raw.createdAt, &raw.updatedAt, &raw.completedAt,
	)
	return &t, &raw, err
}

// scanTask scans a single task from a *sql.Row.
func (r *SQLiteTaskRepo) scanTask(row *sql.Row) (*domain.Task, error) {
	t, raw, err := scanTaskRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("task: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning task: %w", err)
	}
	return r.populateTask(t, raw)
}

// scanTasks scans multiple tasks from *sql.Rows.
func (r *SQLiteTaskRepo) scanTasks(rows *sql.Rows) ([]*domain.Task, error) {
	var tasks []*domain.Task
	for rows.Next() {
		t, raw, err := scanTaskRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning task row: %w", err)
		}
		task, err := r.populateTask(t, raw)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tasks: %w", err)
	}
	return tasks, nil
}

// populateTask fills in parsed fields on a Task after scanning raw strings.
func (r *SQLiteTaskRepo) populateTask(t *domain.Task, raw *taskRow) (*domain.Task, error) {
	unit, err := parseUnit(raw.unit)
	if err != nil {
		return nil, err
	}
	start, err := calendar.ParseDate(raw.blockStart)
	if err != nil {
		return nil, fmt.Errorf("parsing block_start: %w", err)
	}
	t.Block.Block = unit.InstanceFrom(start)
	t.Status = domain.TaskStatus(raw.status)

	if t.CreatedAt, err = time.Parse(time.RFC3339, raw.createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if t.UpdatedAt, err = time.Parse(time.RFC3339, raw.updatedAt); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	t.CompletedAt = parseNullableTime(raw.completedAt, time.RFC3339)
	return t, nil
}
