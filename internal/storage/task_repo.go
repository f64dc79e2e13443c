package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type TaskRepo struct {
	db DBTX
}

func NewTaskRepo(db DBTX) *TaskRepo {
	return &TaskRepo{db: db}
}

type TaskInsert struct {
	Title       string
	Description string
	Priority    int
	Completed   bool
	Deadline    *time.Time
	CreatedAt   time.Time
}

const taskColumns = `id, title, description, priority, completed, deadline, created_at`

func (r *TaskRepo) Insert(ctx context.Context, in TaskInsert) (int64, error) {
	createdAt := in.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO tasks (title, description, priority, completed, deadline, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, in.Title, in.Description, in.Priority, boolToInt(in.Completed), utcPtr(in.Deadline), createdAt.UTC())
	if err != nil {
		return 0, fmt.Errorf("task insert: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("task last insert id: %w", err)
	}
	return id, nil
}

func (r *TaskRepo) Get(ctx context.Context, id int64) (*Task, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	t, err := scanTaskRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("task %d: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return t, nil
}

func (r *TaskRepo) ListAll(ctx context.Context) ([]Task, error) {
	return r.list(ctx, `SELECT `+taskColumns+` FROM tasks ORDER BY id ASC`)
}

// ListOverdue returns incomplete tasks whose deadline is before now.
func (r *TaskRepo) ListOverdue(ctx context.Context, now time.Time) ([]Task, error) {
	pending, err := r.list(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE completed = 0 AND deadline IS NOT NULL
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, err
	}
	var out []Task
	for _, t := range pending {
		if t.Deadline.Before(now) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *TaskRepo) Update(ctx context.Context, t *Task) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE tasks
		SET title = ?, description = ?, priority = ?, completed = ?, deadline = ?
		WHERE id = ?
	`, t.Title, t.Description, t.Priority, boolToInt(t.Completed), utcPtr(t.Deadline), t.ID)
	if err != nil {
		return fmt.Errorf("task update: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("task %d: %w", t.ID, ErrNotFound)
	}
	return nil
}

func (r *TaskRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("task delete: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("task %d: %w", id, ErrNotFound)
	}
	return nil
}

func (r *TaskRepo) list(ctx context.Context, query string, args ...any) ([]Task, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("task list: %w", err)
	}
	defer rows.Close()

	var out []Task
	for rows.Next() {
		t, err := scanTaskRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("task list rows: %w", err)
	}
	return out, nil
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

func utcPtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTaskRow(row scanner) (*Task, error) {
	var (
		t         Task
		completed int
		deadline  sql.NullTime
	)
	if err := row.Scan(&t.ID, &t.Title, &t.Description, &t.Priority, &completed, &deadline, &t.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("task scan: %w", err)
	}
	t.Completed = completed != 0
	if deadline.Valid {
		v := deadline.Time
		t.Deadline = &v
	}
	return &t, nil
}
