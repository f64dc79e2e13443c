package engine

import (
	"time"

	"todoquest/internal/storage"
)

// LevelChange describes the effect of ApplyXP on a profile.
type LevelChange struct {
	LevelBefore int
	LevelAfter  int
	XPBefore    int
	XPAfter     int
	// Clamped is set when a penalty would have pushed current XP below zero.
	Clamped bool
}

func (c LevelChange) LevelUps() int { return c.LevelAfter - c.LevelBefore }

// ApplyXP adds delta to the profile's current XP and rolls over as many level-ups
// as the result covers. Negative results are clamped to zero; levels are never lost.
func ApplyXP(p *storage.Profile, delta int) LevelChange {
	if p.Level < 1 {
		p.Level = 1
	}
	change := LevelChange{LevelBefore: p.Level, XPBefore: p.CurrentXP}

	xp := p.CurrentXP + delta
	if xp < 0 {
		xp = 0
		change.Clamped = true
	}
	level := p.Level
	for xp >= XPRequiredForLevel(level) {
		xp -= XPRequiredForLevel(level)
		level++
	}

	p.CurrentXP = xp
	p.Level = level
	change.LevelAfter = level
	change.XPAfter = xp
	return change
}

func IncrementCompleted(p *storage.Profile) { p.TasksCompleted++ }

func IncrementFailed(p *storage.Profile) { p.TasksFailed++ }

func IncrementHighPriority(p *storage.Profile) { p.HighPriorityCompleted++ }

// RecordActivity advances the daily streak for a completion at now. A completion
// on the same calendar day keeps the streak, the following day extends it, and
// any longer gap restarts it at one.
func RecordActivity(p *storage.Profile, now time.Time) {
	if p.LastActivityAt == nil {
		p.StreakDays = 1
		p.PerfectDays = 1
		p.LastActivityAt = &now
		return
	}

	switch daysBetween(*p.LastActivityAt, now) {
	case 0:
		if p.StreakDays == 0 {
			p.StreakDays = 1
		}
		if p.PerfectDays == 0 {
			p.PerfectDays = 1
		}
	case 1:
		p.StreakDays++
		p.PerfectDays++
	default:
		p.StreakDays = 1
		p.PerfectDays = 1
	}
	p.LastActivityAt = &now
}

// ExpireStreak zeroes the streak and perfect-day counters once more than a full
// calendar day has passed since the last completion. Stored counters only move on
// the next completion, so anything that reads or rewards them calls this first.
func ExpireStreak(p *storage.Profile, now time.Time) {
	if p.LastActivityAt == nil || daysBetween(*p.LastActivityAt, now) <= 1 {
		return
	}
	p.StreakDays = 0
	p.PerfectDays = 0
}

// BreakPerfectRun resets the perfect-day counter after a failed or penalised task.
func BreakPerfectRun(p *storage.Profile) { p.PerfectDays = 0 }

// daysBetween counts calendar days from a to b in b's location. Negative gaps
// (clock moved backwards) count as the same day.
func daysBetween(a, b time.Time) int {
	loc := b.Location()
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.Date()
	dayA := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	dayB := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	days := int(dayB.Sub(dayA).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}
