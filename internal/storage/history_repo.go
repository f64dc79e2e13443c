package storage

import (
	"context"
	"fmt"
	"time"
)

// HistoryRepo is append-only: there is deliberately no update or delete.
type HistoryRepo struct {
	db DBTX
}

func NewHistoryRepo(db DBTX) *HistoryRepo {
	return &HistoryRepo{db: db}
}

const historyColumns = `id, event_id, task_id, title, description, priority, status, recorded_at, xp_earned`

func (r *HistoryRepo) Insert(ctx context.Context, h HistoryEntry) (int64, error) {
	recordedAt := h.RecordedAt
	if recordedAt.IsZero() {
		recordedAt = time.Now()
	}
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO task_history (event_id, task_id, title, description, priority, status, recorded_at, xp_earned)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, h.EventID, h.TaskID, h.Title, h.Description, h.Priority, h.Status, recordedAt.UTC(), h.XPEarned)
	if err != nil {
		return 0, fmt.Errorf("history insert: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("history last insert id: %w", err)
	}
	return id, nil
}

// ListAll returns every record, newest first.
func (r *HistoryRepo) ListAll(ctx context.Context) ([]HistoryEntry, error) {
	return r.list(ctx, `SELECT `+historyColumns+` FROM task_history ORDER BY id DESC`)
}

func (r *HistoryRepo) ListByStatus(ctx context.Context, status string) ([]HistoryEntry, error) {
	return r.list(ctx, `SELECT `+historyColumns+` FROM task_history WHERE status = ? ORDER BY id DESC`, status)
}

// TotalXPEarned sums xp_earned across all records (penalties included).
func (r *HistoryRepo) TotalXPEarned(ctx context.Context) (int, error) {
	row := r.db.QueryRowContext(ctx, `SELECT COALESCE(SUM(xp_earned), 0) FROM task_history`)
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("history total xp: %w", err)
	}
	return n, nil
}

func (r *HistoryRepo) CountByStatus(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM task_history GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("history count: %w", err)
	}
	defer rows.Close()

	out := map[string]int{}
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("history count scan: %w", err)
		}
		out[status] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history count rows: %w", err)
	}
	return out, nil
}

func (r *HistoryRepo) list(ctx context.Context, query string, args ...any) ([]HistoryEntry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("history list: %w", err)
	}
	defer rows.Close()

	var out []HistoryEntry
	for rows.Next() {
		var h HistoryEntry
		if err := rows.Scan(&h.ID, &h.EventID, &h.TaskID, &h.Title, &h.Description, &h.Priority, &h.Status, &h.RecordedAt, &h.XPEarned); err != nil {
			return nil, fmt.Errorf("history scan: %w", err)
		}
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history rows: %w", err)
	}
	return out, nil
}
