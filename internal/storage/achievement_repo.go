package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

type AchievementRepo struct {
	db DBTX
}

func NewAchievementRepo(db DBTX) *AchievementRepo {
	return &AchievementRepo{db: db}
}

func (r *AchievementRepo) ListAll(ctx context.Context) ([]Achievement, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, code, title, description, requirement, type, unlocked, unlocked_at
		FROM achievements
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("achievement list: %w", err)
	}
	defer rows.Close()

	var out []Achievement
	for rows.Next() {
		var (
			a          Achievement
			unlocked   int
			unlockedAt sql.NullTime
		)
		if err := rows.Scan(&a.ID, &a.Code, &a.Title, &a.Description, &a.Requirement, &a.Type, &unlocked, &unlockedAt); err != nil {
			return nil, fmt.Errorf("achievement scan: %w", err)
		}
		a.Unlocked = unlocked != 0
		if unlockedAt.Valid {
			v := unlockedAt.Time
			a.UnlockedAt = &v
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("achievement rows: %w", err)
	}
	return out, nil
}

// Unlock flips a locked achievement to unlocked. It never re-stamps an already
// unlocked row; the returned bool reports whether this call changed anything.
func (r *AchievementRepo) Unlock(ctx context.Context, id int64, at time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE achievements SET unlocked = 1, unlocked_at = ?
		WHERE id = ? AND unlocked = 0
	`, at.UTC(), id)
	if err != nil {
		return false, fmt.Errorf("achievement unlock: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("achievement unlock rows: %w", err)
	}
	return n > 0, nil
}

// SeedIfEmpty inserts defs only when the table has no rows yet.
func (r *AchievementRepo) SeedIfEmpty(ctx context.Context, defs []Achievement) (int, error) {
	row := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM achievements`)
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("achievement count: %w", err)
	}
	if n > 0 {
		return 0, nil
	}

	for _, d := range defs {
		if _, err := r.db.ExecContext(ctx, `
			INSERT INTO achievements (code, title, description, requirement, type)
			VALUES (?, ?, ?, ?, ?)
		`, d.Code, d.Title, d.Description, d.Requirement, d.Type); err != nil {
			return 0, fmt.Errorf("achievement seed %s: %w", d.Code, err)
		}
	}
	return len(defs), nil
}
