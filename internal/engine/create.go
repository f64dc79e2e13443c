package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"todoquest/internal/storage"
)

type CreateTaskInput struct {
	Title       string
	Description string
	Priority    Priority
	// Completed inserts the task already checked off. It earns XP only if it is
	// later unchecked and checked off again.
	Completed bool
	Deadline  *time.Time
}

func normalizeTitle(title string) (string, error) {
	t := strings.TrimSpace(title)
	if t == "" {
		return "", ValidationError{Field: "title", Reason: "title is required"}
	}
	return t, nil
}

func normalizePriority(p Priority) (Priority, error) {
	if p == 0 {
		return DefaultPriority, nil
	}
	if !p.IsValid() {
		return 0, ValidationError{Field: "priority", Reason: fmt.Sprintf("unknown priority %d", int(p))}
	}
	return p, nil
}

func (s *Service) CreateTask(ctx context.Context, in CreateTaskInput) (*storage.Task, error) {
	title, err := normalizeTitle(in.Title)
	if err != nil {
		return nil, err
	}
	prio, err := normalizePriority(in.Priority)
	if err != nil {
		return nil, err
	}

	now := s.now()
	id, err := s.tasks.Insert(ctx, storage.TaskInsert{
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		Priority:    int(prio),
		Completed:   in.Completed,
		Deadline:    in.Deadline,
		CreatedAt:   now,
	})
	if err != nil {
		return nil, err
	}

	t, err := s.tasks.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("task created", "task_id", id, "priority", prio.String())
	s.notifier.Publish(Event{Kind: EventTaskCreated, TaskID: id, At: now})
	return t, nil
}

func (s *Service) GetTask(ctx context.Context, id int64) (*storage.Task, error) {
	return s.tasks.Get(ctx, id)
}

func (s *Service) ListTasks(ctx context.Context) ([]storage.Task, error) {
	return s.tasks.ListAll(ctx)
}
