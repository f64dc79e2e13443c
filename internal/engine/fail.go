package engine

import (
	"context"
	"database/sql"
	"fmt"

	"todoquest/internal/storage"
)

type FailedTask struct {
	TaskID  int64                `json:"task_id" yaml:"task_id"`
	Title   string               `json:"title" yaml:"title"`
	XPDelta int                  `json:"xp_delta" yaml:"xp_delta"`
	History storage.HistoryEntry `json:"history" yaml:"history"`
}

// FailOverdue marks every incomplete task whose deadline has passed as failed:
// each one is penalized, recorded and removed in its own transaction. Tasks
// handled before an error stay failed; the error is returned with them.
func (s *Service) FailOverdue(ctx context.Context) ([]FailedTask, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	overdue, err := s.tasks.ListOverdue(ctx, now)
	if err != nil {
		return nil, err
	}

	var failed []FailedTask
	for i := range overdue {
		task := overdue[i]
		var entry storage.HistoryEntry
		err := storage.WithTx(ctx, s.db, func(tx *sql.Tx) error {
			r := reposFor(tx)
			e, _, _, err := s.penalizeInTx(ctx, r, &task, HistoryFailed, now)
			if err != nil {
				return err
			}
			entry = e
			return r.tasks.Delete(ctx, task.ID)
		})
		if err != nil {
			return failed, fmt.Errorf("fail task %d: %w", task.ID, err)
		}

		s.logger.Info("task failed", "task_id", task.ID, "event_id", entry.EventID, "xp", entry.XPEarned)
		s.notifier.Publish(
			Event{ID: entry.EventID, Kind: EventTaskFailed, TaskID: task.ID, At: now},
			Event{ID: entry.EventID, Kind: EventProfileUpdated, At: now},
		)
		failed = append(failed, FailedTask{TaskID: task.ID, Title: task.Title, XPDelta: entry.XPEarned, History: entry})
	}
	return failed, nil
}
