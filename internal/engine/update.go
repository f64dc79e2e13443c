package engine

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"todoquest/internal/storage"
)

// UpdateTaskInput carries the fields to change; nil fields are left alone.
type UpdateTaskInput struct {
	Title         *string
	Description   *string
	Priority      *Priority
	Completed     *bool
	Deadline      *time.Time
	ClearDeadline bool
}

type UpdateResult struct {
	// Task is the stored task, or nil when the edit completed it and it left the store.
	Task *storage.Task `json:"task,omitempty" yaml:"task,omitempty"`
	// Completion is set when the edit checked the task off.
	Completion *CompleteResult `json:"completion,omitempty" yaml:"completion,omitempty"`
}

// UpdateTask applies an edit. Checking off a task that was not completed runs the
// full completion sequence with the edited values, the same as CompleteTask.
func (s *Service) UpdateTask(ctx context.Context, id int64, in UpdateTaskInput) (*UpdateResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	res := &UpdateResult{}
	err := storage.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		r := reposFor(tx)
		task, err := r.tasks.Get(ctx, id)
		if err != nil {
			return err
		}
		wasCompleted := task.Completed

		if err := applyEdit(task, in); err != nil {
			return err
		}

		if task.Completed && !wasCompleted {
			res.Completion, err = s.completeInTx(ctx, r, task, now)
			return err
		}
		if err := r.tasks.Update(ctx, task); err != nil {
			return err
		}
		res.Task = task
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("update task %d: %w", id, err)
	}

	if res.Completion != nil {
		s.afterComplete(res.Completion)
	} else {
		s.notifier.Publish(Event{Kind: EventTaskUpdated, TaskID: id, At: now})
	}
	return res, nil
}

func applyEdit(t *storage.Task, in UpdateTaskInput) error {
	if in.Title != nil {
		title, err := normalizeTitle(*in.Title)
		if err != nil {
			return err
		}
		t.Title = title
	}
	if in.Description != nil {
		t.Description = strings.TrimSpace(*in.Description)
	}
	if in.Priority != nil {
		if !in.Priority.IsValid() {
			return ValidationError{Field: "priority", Reason: fmt.Sprintf("unknown priority %d", int(*in.Priority))}
		}
		t.Priority = int(*in.Priority)
	}
	if in.Completed != nil {
		t.Completed = *in.Completed
	}
	switch {
	case in.ClearDeadline:
		t.Deadline = nil
	case in.Deadline != nil:
		d := *in.Deadline
		t.Deadline = &d
	}
	return nil
}
