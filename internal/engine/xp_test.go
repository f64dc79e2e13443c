package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"todoquest/internal/storage"
)

func TestCompletionXP(t *testing.T) {
	require.Equal(t, 10, CompletionXP(PriorityLow))
	require.Equal(t, 20, CompletionXP(PriorityMedium))
	require.Equal(t, 35, CompletionXP(PriorityHigh))
	require.Equal(t, 10, CompletionXP(0))
	require.Equal(t, 10, CompletionXP(Priority(42)))
}

func TestPenalty(t *testing.T) {
	for _, p := range []Priority{0, PriorityLow, PriorityMedium, PriorityHigh, 9} {
		require.Equal(t, -(CompletionXP(p) / 2), Penalty(p), "priority %d", p)
		require.LessOrEqual(t, Penalty(p), 0)
	}
	require.Equal(t, -17, Penalty(PriorityHigh))
}

func TestStreakBonus(t *testing.T) {
	cases := []struct {
		base, streak, want int
	}{
		{100, 0, 0},
		{100, 6, 0},
		{100, 7, 10},
		{100, 13, 10},
		{100, 14, 20},
		{35, 7, 3},
		{10, 7, 1},
		{10, 21, 3},
		{20, -3, 0},
	}
	for _, c := range cases {
		require.Equal(t, c.want, StreakBonus(c.base, c.streak), "StreakBonus(%d, %d)", c.base, c.streak)
	}
}

func TestXPRequiredForLevel(t *testing.T) {
	require.Equal(t, 100, XPRequiredForLevel(1))
	require.Equal(t, 150, XPRequiredForLevel(2))
	prev := XPRequiredForLevel(1)
	for l := 2; l <= 200; l++ {
		got := XPRequiredForLevel(l)
		require.Equal(t, 50+50*l, got)
		require.Greater(t, got, prev)
		prev = got
	}
}

func TestApplyXPSingleLevelUp(t *testing.T) {
	p := &storage.Profile{Level: 1, CurrentXP: 95}
	c := ApplyXP(p, 10)
	require.Equal(t, 2, p.Level)
	require.Equal(t, 5, p.CurrentXP)
	require.Equal(t, 1, c.LevelUps())
}

func TestApplyXPMultipleLevelUps(t *testing.T) {
	p := &storage.Profile{Level: 1}
	c := ApplyXP(p, 260)
	require.Equal(t, 3, p.Level)
	require.Equal(t, 10, p.CurrentXP)
	require.Equal(t, 2, c.LevelUps())
}

func TestApplyXPExactThreshold(t *testing.T) {
	p := &storage.Profile{Level: 1}
	ApplyXP(p, 100)
	require.Equal(t, 2, p.Level)
	require.Equal(t, 0, p.CurrentXP)
}

func TestApplyXPClampsNegative(t *testing.T) {
	p := &storage.Profile{Level: 4, CurrentXP: 5}
	c := ApplyXP(p, -17)
	require.True(t, c.Clamped)
	require.Equal(t, 4, p.Level)
	require.Equal(t, 0, p.CurrentXP)

	p = &storage.Profile{Level: 1, CurrentXP: 30}
	c = ApplyXP(p, -10)
	require.False(t, c.Clamped)
	require.Equal(t, 20, p.CurrentXP)
}

func TestApplyXPKeepsInvariant(t *testing.T) {
	p := &storage.Profile{Level: 1}
	for _, d := range []int{35, 35, 35, -17, 1000, -5, 20, 10_000} {
		ApplyXP(p, d)
		require.GreaterOrEqual(t, p.CurrentXP, 0)
		require.Less(t, p.CurrentXP, XPRequiredForLevel(p.Level))
		require.GreaterOrEqual(t, p.Level, 1)
	}
}

func TestRecordActivity(t *testing.T) {
	day := func(d, h int) time.Time { return time.Date(2026, 3, d, h, 0, 0, 0, time.UTC) }
	p := &storage.Profile{Level: 1}

	RecordActivity(p, day(2, 9))
	require.Equal(t, 1, p.StreakDays)

	RecordActivity(p, day(2, 22))
	require.Equal(t, 1, p.StreakDays, "same day keeps streak")

	RecordActivity(p, day(3, 1))
	require.Equal(t, 2, p.StreakDays, "next day extends streak")

	RecordActivity(p, day(6, 12))
	require.Equal(t, 1, p.StreakDays, "gap resets streak")
	require.Equal(t, 1, p.PerfectDays)

	BreakPerfectRun(p)
	RecordActivity(p, day(6, 13))
	require.Equal(t, 1, p.StreakDays)
	require.Equal(t, 1, p.PerfectDays)
}

func TestParsePriority(t *testing.T) {
	for in, want := range map[string]Priority{"": PriorityLow, "low": PriorityLow, "M": PriorityMedium, "high": PriorityHigh, "3": PriorityHigh} {
		got, err := ParsePriority(in)
		require.NoError(t, err, in)
		require.Equal(t, want, got, in)
	}
	_, err := ParsePriority("urgent")
	var ve ValidationError
	require.ErrorAs(t, err, &ve)
}

func TestExpireStreak(t *testing.T) {
	day := func(d, h int) time.Time { return time.Date(2026, 3, d, h, 0, 0, 0, time.UTC) }
	last := day(2, 23)
	p := &storage.Profile{Level: 1, StreakDays: 9, PerfectDays: 4, LastActivityAt: &last}

	ExpireStreak(p, day(3, 20))
	require.Equal(t, 9, p.StreakDays, "next day still counts")
	require.Equal(t, 4, p.PerfectDays)

	ExpireStreak(p, day(4, 0))
	require.Zero(t, p.StreakDays)
	require.Zero(t, p.PerfectDays)

	fresh := &storage.Profile{Level: 1}
	ExpireStreak(fresh, day(4, 0))
	require.Nil(t, fresh.LastActivityAt)
}
