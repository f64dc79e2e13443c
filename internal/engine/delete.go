package engine

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"todoquest/internal/storage"
)

type DeleteResult struct {
	TaskID int64 `json:"task_id" yaml:"task_id"`
	// Penalized is false when the task was already completed; such deletes have
	// no XP consequence and leave no history.
	Penalized   bool                  `json:"penalized" yaml:"penalized"`
	XPDelta     int                   `json:"xp_delta" yaml:"xp_delta"`
	LevelBefore int                   `json:"level_before" yaml:"level_before"`
	LevelAfter  int                   `json:"level_after" yaml:"level_after"`
	History     *storage.HistoryEntry `json:"history,omitempty" yaml:"history,omitempty"`
	Profile     storage.Profile       `json:"profile" yaml:"profile"`
}

// DeleteTask removes a task. Abandoning an incomplete task costs half its
// completion XP and is recorded as a deleted history entry.
func (s *Service) DeleteTask(ctx context.Context, id int64) (*DeleteResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	var res *DeleteResult
	err := storage.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		r := reposFor(tx)
		task, err := r.tasks.Get(ctx, id)
		if err != nil {
			return err
		}

		res = &DeleteResult{TaskID: id}
		if !task.Completed {
			entry, p, change, err := s.penalizeInTx(ctx, r, task, HistoryDeleted, now)
			if err != nil {
				return err
			}
			res.Penalized = true
			res.XPDelta = entry.XPEarned
			res.LevelBefore = change.LevelBefore
			res.LevelAfter = change.LevelAfter
			res.History = &entry
			res.Profile = *p
		} else {
			p, err := r.profiles.GetOrCreateMain(ctx, s.username)
			if err != nil {
				return err
			}
			ExpireStreak(p, now)
			res.LevelBefore = p.Level
			res.LevelAfter = p.Level
			res.Profile = *p
		}

		return r.tasks.Delete(ctx, id)
	})
	if err != nil {
		return nil, fmt.Errorf("delete task %d: %w", id, err)
	}

	ev := Event{Kind: EventTaskDeleted, TaskID: id, At: now}
	if res.History != nil {
		ev.ID = res.History.EventID
		s.logger.Info("task abandoned", "task_id", id, "event_id", ev.ID, "xp", res.XPDelta)
		s.notifier.Publish(ev, Event{ID: ev.ID, Kind: EventProfileUpdated, At: now})
	} else {
		s.logger.Info("task deleted", "task_id", id)
		s.notifier.Publish(ev)
	}
	return res, nil
}

// penalizeInTx applies the abandonment penalty for task and appends the matching
// history record. The profile update and the record share one event ID.
func (s *Service) penalizeInTx(ctx context.Context, r repos, task *storage.Task, status HistoryStatus, now time.Time) (storage.HistoryEntry, *storage.Profile, LevelChange, error) {
	p, err := r.profiles.GetOrCreateMain(ctx, s.username)
	if err != nil {
		return storage.HistoryEntry{}, nil, LevelChange{}, err
	}
	ExpireStreak(p, now)

	penalty := Penalty(Priority(task.Priority))
	change := ApplyXP(p, penalty)

	entry := storage.HistoryEntry{
		EventID:     uuid.NewString(),
		TaskID:      task.ID,
		Title:       task.Title,
		Description: task.Description,
		Priority:    task.Priority,
		Status:      string(status),
		RecordedAt:  now,
		XPEarned:    penalty,
	}
	hid, err := r.history.Insert(ctx, entry)
	if err != nil {
		return storage.HistoryEntry{}, nil, LevelChange{}, err
	}
	entry.ID = hid

	if status == HistoryFailed {
		IncrementFailed(p)
	}
	BreakPerfectRun(p)
	p.LastEventID = entry.EventID
	if err := r.profiles.Update(ctx, p); err != nil {
		return storage.HistoryEntry{}, nil, LevelChange{}, err
	}
	return entry, p, change, nil
}
