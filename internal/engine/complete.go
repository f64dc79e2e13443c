package engine

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"todoquest/internal/storage"
)

type CompleteResult struct {
	TaskID      int64                 `json:"task_id" yaml:"task_id"`
	BaseXP      int                   `json:"base_xp" yaml:"base_xp"`
	StreakBonus int                   `json:"streak_bonus" yaml:"streak_bonus"`
	XPAwarded   int                   `json:"xp_awarded" yaml:"xp_awarded"`
	LevelBefore int                   `json:"level_before" yaml:"level_before"`
	LevelAfter  int                   `json:"level_after" yaml:"level_after"`
	LevelUp     bool                  `json:"level_up" yaml:"level_up"`
	History     storage.HistoryEntry  `json:"history" yaml:"history"`
	Unlocked    []storage.Achievement `json:"unlocked,omitempty" yaml:"unlocked,omitempty"`
	Profile     storage.Profile       `json:"profile" yaml:"profile"`
}

// CompleteTask awards XP for finishing a task, records it in history, removes
// the task and unlocks any achievements the new profile satisfies. All of it
// commits together or not at all.
func (s *Service) CompleteTask(ctx context.Context, id int64) (*CompleteResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var res *CompleteResult
	err := storage.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		r := reposFor(tx)
		task, err := r.tasks.Get(ctx, id)
		if err != nil {
			return err
		}
		if task.Completed {
			return fmt.Errorf("task %d: %w", id, ErrAlreadyCompleted)
		}
		res, err = s.completeInTx(ctx, r, task, s.now())
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("complete task %d: %w", id, err)
	}

	s.afterComplete(res)
	return res, nil
}

// completeInTx runs the completion sequence for task (which may carry unsaved
// edits) against repos bound to the caller's transaction.
func (s *Service) completeInTx(ctx context.Context, r repos, task *storage.Task, now time.Time) (*CompleteResult, error) {
	p, err := r.profiles.GetOrCreateMain(ctx, s.username)
	if err != nil {
		return nil, err
	}

	ExpireStreak(p, now)

	prio := Priority(task.Priority)
	base := CompletionXP(prio)
	bonus := StreakBonus(base, p.StreakDays)
	total := base + bonus

	change := ApplyXP(p, total)

	entry := storage.HistoryEntry{
		EventID:     uuid.NewString(),
		TaskID:      task.ID,
		Title:       task.Title,
		Description: task.Description,
		Priority:    task.Priority,
		Status:      string(HistoryCompleted),
		RecordedAt:  now,
		XPEarned:    total,
	}
	hid, err := r.history.Insert(ctx, entry)
	if err != nil {
		return nil, err
	}
	entry.ID = hid

	IncrementCompleted(p)
	if prio == PriorityHigh {
		IncrementHighPriority(p)
	}
	RecordActivity(p, now)
	p.LastEventID = entry.EventID
	if err := r.profiles.Update(ctx, p); err != nil {
		return nil, err
	}

	if err := r.tasks.Delete(ctx, task.ID); err != nil {
		return nil, err
	}

	unlocked, err := s.unlockAchievements(ctx, r, MetricsFromProfile(p), now)
	if err != nil {
		return nil, err
	}

	return &CompleteResult{
		TaskID:      task.ID,
		BaseXP:      base,
		StreakBonus: bonus,
		XPAwarded:   total,
		LevelBefore: change.LevelBefore,
		LevelAfter:  change.LevelAfter,
		LevelUp:     change.LevelUps() > 0,
		History:     entry,
		Unlocked:    unlocked,
		Profile:     *p,
	}, nil
}

// unlockAchievements evaluates m and persists the unlocks. Rows another writer
// already unlocked are dropped from the result.
func (s *Service) unlockAchievements(ctx context.Context, r repos, m Metrics, now time.Time) ([]storage.Achievement, error) {
	all, err := r.achievements.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	var out []storage.Achievement
	for _, a := range Evaluate(m, all, now) {
		changed, err := r.achievements.Unlock(ctx, a.ID, now)
		if err != nil {
			return nil, err
		}
		if changed {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *Service) afterComplete(res *CompleteResult) {
	s.logger.Info("task completed",
		"task_id", res.TaskID,
		"event_id", res.History.EventID,
		"xp", res.XPAwarded,
		"streak_bonus", res.StreakBonus,
		"level", res.LevelAfter,
	)
	events := []Event{
		{ID: res.History.EventID, Kind: EventTaskCompleted, TaskID: res.TaskID, At: res.History.RecordedAt},
		{ID: res.History.EventID, Kind: EventProfileUpdated, At: res.History.RecordedAt},
	}
	for _, a := range res.Unlocked {
		s.logger.Info("achievement unlocked", "code", a.Code, "title", a.Title)
		events = append(events, Event{ID: res.History.EventID, Kind: EventAchievementUnlocked, Code: a.Code, At: res.History.RecordedAt})
	}
	s.notifier.Publish(events...)
}
