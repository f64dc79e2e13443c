package engine

import (
	"fmt"
	"strconv"
	"strings"
)

type Priority int

const (
	PriorityLow    Priority = 1
	PriorityMedium Priority = 2
	PriorityHigh   Priority = 3
)

func (p Priority) IsValid() bool {
	return p >= PriorityLow && p <= PriorityHigh
}

func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "low"
	case PriorityMedium:
		return "medium"
	case PriorityHigh:
		return "high"
	default:
		return fmt.Sprintf("priority(%d)", int(p))
	}
}

// DefaultPriority is used when user input is missing.
const DefaultPriority Priority = PriorityLow

// ParsePriority accepts names (low|medium|high, l|m|h) or the numeric form (1-3).
func ParsePriority(input string) (Priority, error) {
	s := strings.TrimSpace(strings.ToLower(input))
	switch s {
	case "":
		return DefaultPriority, nil
	case "low", "l":
		return PriorityLow, nil
	case "medium", "med", "m":
		return PriorityMedium, nil
	case "high", "h":
		return PriorityHigh, nil
	}
	if n, err := strconv.Atoi(s); err == nil && Priority(n).IsValid() {
		return Priority(n), nil
	}
	return 0, ValidationError{Field: "priority", Reason: fmt.Sprintf("unknown priority %q", input)}
}

type HistoryStatus string

const (
	HistoryCompleted HistoryStatus = "completed"
	HistoryFailed    HistoryStatus = "failed"
	HistoryDeleted   HistoryStatus = "deleted"
)

func (s HistoryStatus) IsValid() bool {
	switch s {
	case HistoryCompleted, HistoryFailed, HistoryDeleted:
		return true
	default:
		return false
	}
}

type AchievementType string

const (
	AchievementTasksCompleted AchievementType = "tasks_completed"
	AchievementStreakDays     AchievementType = "streak_days"
	AchievementHighPriority   AchievementType = "high_priority"
	AchievementLevelReached   AchievementType = "level_reached"
	AchievementPerfectWeek    AchievementType = "perfect_week"
)
