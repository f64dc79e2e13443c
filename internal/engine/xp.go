package engine

const (
	// Completion rewards per priority.
	LowPriorityXP    = 10
	MediumPriorityXP = 20
	HighPriorityXP   = 35

	// StreakWeekDays is the streak length that earns one bonus step.
	StreakWeekDays = 7
	// StreakBonusPercent is the bonus per full streak week, in percent of base XP.
	StreakBonusPercent = 10

	// LevelBaseXP and LevelStepXP define XPRequiredForLevel: base + level*step.
	LevelBaseXP = 50
	LevelStepXP = 50
)

// CompletionXP is the reward for completing a task. Unknown priorities earn the
// Low reward.
func CompletionXP(p Priority) int {
	switch p {
	case PriorityMedium:
		return MediumPriorityXP
	case PriorityHigh:
		return HighPriorityXP
	default:
		return LowPriorityXP
	}
}

// Penalty is the (non-positive) XP delta for abandoning an incomplete task.
func Penalty(p Priority) int {
	return -(CompletionXP(p) / 2)
}

// StreakBonus adds 10% of baseXP per full 7-day streak week; partial weeks add nothing.
func StreakBonus(baseXP, streakDays int) int {
	if streakDays <= 0 || baseXP <= 0 {
		return 0
	}
	weeks := streakDays / StreakWeekDays
	return baseXP * weeks * StreakBonusPercent / 100
}

// XPRequiredForLevel returns the XP needed to advance past the given level.
// Level 1 needs 100, level 2 needs 150, and so on.
func XPRequiredForLevel(level int) int {
	return LevelBaseXP + level*LevelStepXP
}

// LevelProgress returns progress toward the next level in percent (0-100).
func LevelProgress(level, currentXP int) float64 {
	req := XPRequiredForLevel(level)
	if req <= 0 || currentXP <= 0 {
		return 0
	}
	pct := float64(currentXP) / float64(req) * 100
	if pct > 100 {
		return 100
	}
	return pct
}
