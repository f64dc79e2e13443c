package engine

import (
	"time"

	"todoquest/internal/storage"
)

// Metrics is the immutable snapshot achievements are evaluated against.
type Metrics struct {
	TasksCompleted        int
	StreakDays            int
	Level                 int
	HighPriorityCompleted int
	PerfectWeeks          int
}

func MetricsFromProfile(p *storage.Profile) Metrics {
	return Metrics{
		TasksCompleted:        p.TasksCompleted,
		StreakDays:            p.StreakDays,
		Level:                 p.Level,
		HighPriorityCompleted: p.HighPriorityCompleted,
		PerfectWeeks:          p.PerfectDays / StreakWeekDays,
	}
}

// Value returns the metric an achievement type is measured by. Unknown types
// report ok=false and can never unlock.
func (m Metrics) Value(t AchievementType) (int, bool) {
	switch t {
	case AchievementTasksCompleted:
		return m.TasksCompleted, true
	case AchievementStreakDays:
		return m.StreakDays, true
	case AchievementHighPriority:
		return m.HighPriorityCompleted, true
	case AchievementLevelReached:
		return m.Level, true
	case AchievementPerfectWeek:
		return m.PerfectWeeks, true
	default:
		return 0, false
	}
}

// DefaultAchievements are seeded on first run.
func DefaultAchievements() []storage.Achievement {
	return []storage.Achievement{
		// Task completion milestones
		def("first_steps", "First Steps", "Complete your first task", AchievementTasksCompleted, 1),
		def("getting_started", "Getting Started", "Complete 10 tasks", AchievementTasksCompleted, 10),
		def("task_master", "Task Master", "Complete 50 tasks", AchievementTasksCompleted, 50),
		def("productivity_legend", "Productivity Legend", "Complete 100 tasks", AchievementTasksCompleted, 100),

		// Streaks
		def("consistency_king", "Consistency King", "Maintain a 7-day streak", AchievementStreakDays, 7),
		def("unstoppable_force", "Unstoppable Force", "Maintain a 30-day streak", AchievementStreakDays, 30),

		def("priority_master", "Priority Master", "Complete 20 high-priority tasks", AchievementHighPriority, 20),

		// Level milestones
		def("rising_star", "Rising Star", "Reach level 5", AchievementLevelReached, 5),
		def("elite_performer", "Elite Performer", "Reach level 10", AchievementLevelReached, 10),
		def("legendary_status", "Legendary Status", "Reach level 20", AchievementLevelReached, 20),
	}
}

func def(code, title, desc string, t AchievementType, requirement int) storage.Achievement {
	return storage.Achievement{
		Code:        code,
		Title:       title,
		Description: desc,
		Type:        string(t),
		Requirement: requirement,
	}
}

// Evaluate returns the locked achievements that m now satisfies, marked unlocked
// at now. The input slice is not modified and already unlocked entries are
// skipped, so running it again on the same snapshot after persisting returns nothing.
func Evaluate(m Metrics, achievements []storage.Achievement, now time.Time) []storage.Achievement {
	var unlocked []storage.Achievement
	for _, a := range achievements {
		if a.Unlocked {
			continue
		}
		v, ok := m.Value(AchievementType(a.Type))
		if !ok || v < a.Requirement {
			continue
		}
		at := now
		a.Unlocked = true
		a.UnlockedAt = &at
		unlocked = append(unlocked, a)
	}
	return unlocked
}

// CountUnlocked returns how many achievements have been unlocked.
func CountUnlocked(achievements []storage.Achievement) int {
	count := 0
	for _, a := range achievements {
		if a.Unlocked {
			count++
		}
	}
	return count
}
