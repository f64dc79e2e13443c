package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"todoquest/internal/storage"
)

func seededAchievements() []storage.Achievement {
	defs := DefaultAchievements()
	for i := range defs {
		defs[i].ID = int64(i + 1)
	}
	return defs
}

func TestDefaultAchievements(t *testing.T) {
	defs := DefaultAchievements()
	require.Len(t, defs, 10)
	seen := map[string]bool{}
	for _, d := range defs {
		require.False(t, seen[d.Code], "duplicate code %s", d.Code)
		seen[d.Code] = true
		_, ok := Metrics{}.Value(AchievementType(d.Type))
		require.True(t, ok, "type %s", d.Type)
	}
}

func TestEvaluateUnlocksByType(t *testing.T) {
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	m := Metrics{TasksCompleted: 10, StreakDays: 7, Level: 5, HighPriorityCompleted: 3}

	got := Evaluate(m, seededAchievements(), now)
	codes := map[string]bool{}
	for _, a := range got {
		require.True(t, a.Unlocked)
		require.NotNil(t, a.UnlockedAt)
		require.True(t, a.UnlockedAt.Equal(now))
		codes[a.Code] = true
	}
	require.Equal(t, map[string]bool{
		"first_steps":      true,
		"getting_started":  true,
		"consistency_king": true,
		"rising_star":      true,
	}, codes)
}

func TestEvaluateIsIdempotent(t *testing.T) {
	first := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	m := Metrics{TasksCompleted: 1, Level: 1}
	all := seededAchievements()

	unlocked := Evaluate(m, all, first)
	require.Len(t, unlocked, 1)
	for i := range all {
		if all[i].ID == unlocked[0].ID {
			all[i] = unlocked[0]
		}
	}

	again := Evaluate(m, all, first.Add(time.Hour))
	require.Empty(t, again)
	require.True(t, all[0].UnlockedAt.Equal(first))
}

func TestEvaluateSkipsUnknownType(t *testing.T) {
	all := []storage.Achievement{{ID: 1, Code: "mystery", Type: "mystery", Requirement: 0}}
	require.Empty(t, Evaluate(Metrics{Level: 99}, all, time.Now()))
}

func TestPerfectWeekMetric(t *testing.T) {
	m := MetricsFromProfile(&storage.Profile{Level: 1, PerfectDays: 15})
	require.Equal(t, 2, m.PerfectWeeks)
	v, ok := m.Value(AchievementPerfectWeek)
	require.True(t, ok)
	require.Equal(t, 2, v)
}
