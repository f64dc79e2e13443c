package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const MainProfileKey = "main_user"

type ProfileRepo struct {
	db DBTX
}

func NewProfileRepo(db DBTX) *ProfileRepo {
	return &ProfileRepo{db: db}
}

const profileColumns = `key, username, level, current_xp, tasks_completed, tasks_failed,
	high_priority_completed, streak_days, perfect_days, last_activity_at, last_event_id`

func (r *ProfileRepo) Get(ctx context.Context, key string) (*Profile, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+profileColumns+` FROM profile WHERE key = ?`, key)

	var (
		p            Profile
		lastActivity sql.NullTime
	)
	if err := row.Scan(
		&p.Key, &p.Username, &p.Level, &p.CurrentXP, &p.TasksCompleted, &p.TasksFailed,
		&p.HighPriorityCompleted, &p.StreakDays, &p.PerfectDays, &lastActivity, &p.LastEventID,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("profile get: %w", err)
	}
	if lastActivity.Valid {
		v := lastActivity.Time
		p.LastActivityAt = &v
	}
	return &p, nil
}

// GetOrCreateMain returns the singleton profile, materializing a fresh default row
// when none exists yet.
func (r *ProfileRepo) GetOrCreateMain(ctx context.Context, username string) (*Profile, error) {
	p, err := r.Get(ctx, MainProfileKey)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	if username == "" {
		username = "Player"
	}
	if _, err := r.db.ExecContext(ctx,
		`INSERT INTO profile (key, username) VALUES (?, ?) ON CONFLICT(key) DO NOTHING`,
		MainProfileKey, username); err != nil {
		return nil, fmt.Errorf("profile insert: %w", err)
	}
	return r.Get(ctx, MainProfileKey)
}

func (r *ProfileRepo) Update(ctx context.Context, p *Profile) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE profile
		SET username = ?, level = ?, current_xp = ?, tasks_completed = ?, tasks_failed = ?,
			high_priority_completed = ?, streak_days = ?, perfect_days = ?,
			last_activity_at = ?, last_event_id = ?
		WHERE key = ?
	`, p.Username, p.Level, p.CurrentXP, p.TasksCompleted, p.TasksFailed,
		p.HighPriorityCompleted, p.StreakDays, p.PerfectDays,
		utcPtr(p.LastActivityAt), p.LastEventID, p.Key)
	if err != nil {
		return fmt.Errorf("profile update: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("profile %q: %w", p.Key, ErrNotFound)
	}
	return nil
}
