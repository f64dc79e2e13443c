package storage

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a keyed row does not exist.
var ErrNotFound = errors.New("not found")

type Task struct {
	ID          int64      `json:"id" yaml:"id"`
	Title       string     `json:"title" yaml:"title"`
	Description string     `json:"description" yaml:"description"`
	Priority    int        `json:"priority" yaml:"priority"`
	Completed   bool       `json:"completed" yaml:"completed"`
	Deadline    *time.Time `json:"deadline,omitempty" yaml:"deadline,omitempty"`
	CreatedAt   time.Time  `json:"created_at" yaml:"created_at"`
}

type Profile struct {
	Key                   string     `json:"key" yaml:"key"`
	Username              string     `json:"username" yaml:"username"`
	Level                 int        `json:"level" yaml:"level"`
	CurrentXP             int        `json:"current_xp" yaml:"current_xp"`
	TasksCompleted        int        `json:"tasks_completed" yaml:"tasks_completed"`
	TasksFailed           int        `json:"tasks_failed" yaml:"tasks_failed"`
	HighPriorityCompleted int        `json:"high_priority_completed" yaml:"high_priority_completed"`
	StreakDays            int        `json:"streak_days" yaml:"streak_days"`
	PerfectDays           int        `json:"perfect_days" yaml:"perfect_days"`
	LastActivityAt        *time.Time `json:"last_activity_at,omitempty" yaml:"last_activity_at,omitempty"`
	LastEventID           string     `json:"last_event_id" yaml:"last_event_id"`
}

type HistoryEntry struct {
	ID          int64     `json:"id" yaml:"id"`
	EventID     string    `json:"event_id" yaml:"event_id"`
	TaskID      int64     `json:"task_id" yaml:"task_id"`
	Title       string    `json:"title" yaml:"title"`
	Description string    `json:"description" yaml:"description"`
	Priority    int       `json:"priority" yaml:"priority"`
	Status      string    `json:"status" yaml:"status"`
	RecordedAt  time.Time `json:"recorded_at" yaml:"recorded_at"`
	XPEarned    int       `json:"xp_earned" yaml:"xp_earned"`
}

type Achievement struct {
	ID          int64      `json:"id" yaml:"id"`
	Code        string     `json:"code" yaml:"code"`
	Title       string     `json:"title" yaml:"title"`
	Description string     `json:"description" yaml:"description"`
	Requirement int        `json:"requirement" yaml:"requirement"`
	Type        string     `json:"type" yaml:"type"`
	Unlocked    bool       `json:"unlocked" yaml:"unlocked"`
	UnlockedAt  *time.Time `json:"unlocked_at,omitempty" yaml:"unlocked_at,omitempty"`
}
