package engine

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"todoquest/internal/storage"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestService(t *testing.T) (*Service, *testClock) {
	t.Helper()
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "test.db")
	db, err := storage.Open(ctx, path)
	require.NoError(t, err, "open db")
	t.Cleanup(func() { _ = db.Close() })

	clock := &testClock{now: time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)}
	svc := NewService(db, WithClock(clock.Now))
	require.NoError(t, svc.Bootstrap(ctx))
	return svc, clock
}

func createTask(t *testing.T, svc *Service, title string, p Priority) *storage.Task {
	t.Helper()
	task, err := svc.CreateTask(context.Background(), CreateTaskInput{Title: title, Priority: p})
	require.NoError(t, err, "create %q", title)
	return task
}

func setProfile(t *testing.T, svc *Service, fn func(p *storage.Profile)) {
	t.Helper()
	ctx := context.Background()
	p, err := svc.Profile(ctx)
	require.NoError(t, err)
	fn(p)
	require.NoError(t, svc.ProfileRepo().Update(ctx, p))
}

func requireInvariant(t *testing.T, p *storage.Profile) {
	t.Helper()
	require.GreaterOrEqual(t, p.Level, 1)
	require.GreaterOrEqual(t, p.CurrentXP, 0)
	require.Less(t, p.CurrentXP, XPRequiredForLevel(p.Level))
}

func TestBootstrapIsRepeatable(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	require.NoError(t, svc.Bootstrap(ctx))

	all, err := svc.ListAchievements(ctx)
	require.NoError(t, err)
	require.Len(t, all, 10)
	require.Zero(t, CountUnlocked(all))

	p, err := svc.Profile(ctx)
	require.NoError(t, err)
	require.Equal(t, "Player", p.Username)
	require.Equal(t, 1, p.Level)
	require.Zero(t, p.CurrentXP)
}

func TestCompleteTask(t *testing.T) {
	svc, clock := newTestService(t)
	ctx := context.Background()
	task := createTask(t, svc, "Write report", PriorityMedium)

	res, err := svc.CompleteTask(ctx, task.ID)
	require.NoError(t, err)
	require.Equal(t, 20, res.BaseXP)
	require.Zero(t, res.StreakBonus)
	require.Equal(t, 20, res.XPAwarded)
	require.False(t, res.LevelUp)

	p, err := svc.Profile(ctx)
	require.NoError(t, err)
	requireInvariant(t, p)
	require.Equal(t, 20, p.CurrentXP)
	require.Equal(t, 1, p.TasksCompleted)
	require.Equal(t, 1, p.StreakDays)
	require.Equal(t, res.History.EventID, p.LastEventID)
	require.True(t, p.LastActivityAt.Equal(clock.Now()))

	hist, err := svc.ListHistory(ctx, HistoryCompleted)
	require.NoError(t, err)
	require.Len(t, hist, 1)
	require.Equal(t, 20, hist[0].XPEarned)
	require.Equal(t, "Write report", hist[0].Title)
	require.Equal(t, res.History.EventID, hist[0].EventID)

	_, err = svc.GetTask(ctx, task.ID)
	require.ErrorIs(t, err, storage.ErrNotFound)

	require.Len(t, res.Unlocked, 1)
	require.Equal(t, "first_steps", res.Unlocked[0].Code)
}

func TestCompleteTaskLevelsUpAcrossThresholds(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	setProfile(t, svc, func(p *storage.Profile) { p.CurrentXP = 90 })

	task := createTask(t, svc, "Ship it", PriorityHigh)
	res, err := svc.CompleteTask(ctx, task.ID)
	require.NoError(t, err)
	require.True(t, res.LevelUp)
	require.Equal(t, 1, res.LevelBefore)
	require.Equal(t, 2, res.LevelAfter)
	require.Equal(t, 25, res.Profile.CurrentXP)
	require.Equal(t, 1, res.Profile.HighPriorityCompleted)
	requireInvariant(t, &res.Profile)
}

func TestCompleteTaskAppliesStreakBonus(t *testing.T) {
	svc, clock := newTestService(t)
	ctx := context.Background()
	yesterday := clock.Now().Add(-24 * time.Hour)
	setProfile(t, svc, func(p *storage.Profile) {
		p.StreakDays = 14
		p.LastActivityAt = &yesterday
	})

	task := createTask(t, svc, "Gym", PriorityHigh)
	res, err := svc.CompleteTask(ctx, task.ID)
	require.NoError(t, err)
	require.Equal(t, 35, res.BaseXP)
	require.Equal(t, 7, res.StreakBonus)
	require.Equal(t, 42, res.XPAwarded)
	require.Equal(t, 42, res.History.XPEarned)
	require.Equal(t, 15, res.Profile.StreakDays)
	require.Len(t, res.Unlocked, 2, "first_steps and consistency_king")
}

func TestCompleteTaskRejectsCompleted(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	task, err := svc.CreateTask(ctx, CreateTaskInput{Title: "Done already", Completed: true})
	require.NoError(t, err)

	_, err = svc.CompleteTask(ctx, task.ID)
	require.ErrorIs(t, err, ErrAlreadyCompleted)

	p, err := svc.Profile(ctx)
	require.NoError(t, err)
	require.Zero(t, p.CurrentXP)
	require.Zero(t, p.TasksCompleted)

	got, err := svc.GetTask(ctx, task.ID)
	require.NoError(t, err, "task stays in store")
	require.True(t, got.Completed)
}

func TestCompleteTaskMissing(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.CompleteTask(context.Background(), 404)
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestCompleteTaskRollsBackOnFailure(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	task := createTask(t, svc, "Doomed", PriorityLow)

	// Dropping the history table makes the append fail mid-sequence.
	_, err := svc.db.ExecContext(ctx, `DROP TABLE task_history`)
	require.NoError(t, err)

	_, err = svc.CompleteTask(ctx, task.ID)
	require.Error(t, err)

	p, err := svc.Profile(ctx)
	require.NoError(t, err)
	require.Zero(t, p.CurrentXP)
	require.Zero(t, p.TasksCompleted)

	_, err = svc.GetTask(ctx, task.ID)
	require.NoError(t, err, "task keeps its prior state")
}

func TestDeleteCompletedTaskHasNoConsequence(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	task, err := svc.CreateTask(ctx, CreateTaskInput{Title: "Finished", Priority: PriorityHigh, Completed: true})
	require.NoError(t, err)

	res, err := svc.DeleteTask(ctx, task.ID)
	require.NoError(t, err)
	require.False(t, res.Penalized)
	require.Nil(t, res.History)

	hist, err := svc.ListHistory(ctx, "")
	require.NoError(t, err)
	require.Empty(t, hist)

	p, err := svc.Profile(ctx)
	require.NoError(t, err)
	require.Zero(t, p.CurrentXP)

	_, err = svc.GetTask(ctx, task.ID)
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestDeleteIncompleteTaskPenalizes(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	setProfile(t, svc, func(p *storage.Profile) { p.CurrentXP = 50 })
	task := createTask(t, svc, "Abandon", PriorityMedium)

	res, err := svc.DeleteTask(ctx, task.ID)
	require.NoError(t, err)
	require.True(t, res.Penalized)
	require.Equal(t, -10, res.XPDelta)
	require.Equal(t, 40, res.Profile.CurrentXP)

	hist, err := svc.ListHistory(ctx, HistoryDeleted)
	require.NoError(t, err)
	require.Len(t, hist, 1)
	require.LessOrEqual(t, hist[0].XPEarned, 0)
	require.Equal(t, -10, hist[0].XPEarned)

	all, err := svc.ListAchievements(ctx)
	require.NoError(t, err)
	require.Zero(t, CountUnlocked(all), "deletion never evaluates achievements")
}

func TestDeletePenaltyClampsAtZero(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	setProfile(t, svc, func(p *storage.Profile) {
		p.Level = 3
		p.CurrentXP = 4
	})
	task := createTask(t, svc, "Abandon", PriorityHigh)

	res, err := svc.DeleteTask(ctx, task.ID)
	require.NoError(t, err)
	require.Equal(t, -17, res.XPDelta)
	require.Equal(t, 3, res.Profile.Level)
	require.Zero(t, res.Profile.CurrentXP)
}

func TestUpdateTaskCheckingOffCompletes(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	task := createTask(t, svc, "Draft", PriorityLow)

	title := "Final"
	high := PriorityHigh
	done := true
	res, err := svc.UpdateTask(ctx, task.ID, UpdateTaskInput{Title: &title, Priority: &high, Completed: &done})
	require.NoError(t, err)
	require.Nil(t, res.Task)
	require.NotNil(t, res.Completion)
	require.Equal(t, 35, res.Completion.XPAwarded)
	require.Equal(t, "Final", res.Completion.History.Title)

	_, err = svc.GetTask(ctx, task.ID)
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestUpdateTaskRecheckingInsertedCompletedTask(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	task, err := svc.CreateTask(ctx, CreateTaskInput{Title: "Done already", Priority: PriorityHigh, Completed: true})
	require.NoError(t, err)

	p, err := svc.Profile(ctx)
	require.NoError(t, err)
	require.Zero(t, p.CurrentXP)

	undone, done := false, true
	res, err := svc.UpdateTask(ctx, task.ID, UpdateTaskInput{Completed: &undone})
	require.NoError(t, err)
	require.Nil(t, res.Completion)
	require.False(t, res.Task.Completed)

	res, err = svc.UpdateTask(ctx, task.ID, UpdateTaskInput{Completed: &done})
	require.NoError(t, err)
	require.NotNil(t, res.Completion)
	require.Equal(t, 35, res.Completion.XPAwarded)
	require.Equal(t, 35, res.Completion.Profile.CurrentXP)
}

func TestUpdateTaskPlainEdit(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	task := createTask(t, svc, "Draft", PriorityLow)

	deadline := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	desc := "  with notes "
	res, err := svc.UpdateTask(ctx, task.ID, UpdateTaskInput{Description: &desc, Deadline: &deadline})
	require.NoError(t, err)
	require.Nil(t, res.Completion)
	require.Equal(t, "with notes", res.Task.Description)

	got, err := svc.GetTask(ctx, task.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Deadline)
	require.True(t, got.Deadline.Equal(deadline))

	empty := " "
	_, err = svc.UpdateTask(ctx, task.ID, UpdateTaskInput{Title: &empty})
	var ve ValidationError
	require.ErrorAs(t, err, &ve)
	require.Equal(t, "title", ve.Field)
}

func TestCreateTaskValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateTask(ctx, CreateTaskInput{Title: "   "})
	var ve ValidationError
	require.ErrorAs(t, err, &ve)

	_, err = svc.CreateTask(ctx, CreateTaskInput{Title: "x", Priority: 7})
	require.ErrorAs(t, err, &ve)
	require.Equal(t, "priority", ve.Field)

	task, err := svc.CreateTask(ctx, CreateTaskInput{Title: "  trimmed  "})
	require.NoError(t, err)
	require.Equal(t, "trimmed", task.Title)
	require.Equal(t, int(PriorityLow), task.Priority)
}

func TestFailOverdue(t *testing.T) {
	svc, clock := newTestService(t)
	ctx := context.Background()
	past := clock.Now().Add(-time.Hour)
	future := clock.Now().Add(time.Hour)

	overdue, err := svc.CreateTask(ctx, CreateTaskInput{Title: "Late", Priority: PriorityHigh, Deadline: &past})
	require.NoError(t, err)
	_, err = svc.CreateTask(ctx, CreateTaskInput{Title: "On time", Deadline: &future})
	require.NoError(t, err)
	_, err = svc.CreateTask(ctx, CreateTaskInput{Title: "Done late", Deadline: &past, Completed: true})
	require.NoError(t, err)

	failed, err := svc.FailOverdue(ctx)
	require.NoError(t, err)
	require.Len(t, failed, 1)
	require.Equal(t, overdue.ID, failed[0].TaskID)
	require.Equal(t, -17, failed[0].XPDelta)

	p, err := svc.Profile(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, p.TasksFailed)
	require.Zero(t, p.PerfectDays)

	hist, err := svc.ListHistory(ctx, HistoryFailed)
	require.NoError(t, err)
	require.Len(t, hist, 1)

	tasks, err := svc.ListTasks(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 2)

	again, err := svc.FailOverdue(ctx)
	require.NoError(t, err)
	require.Empty(t, again)
}

func TestConcurrentCompletionsDoNotLoseXP(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	const n = 20
	ids := make([]int64, 0, n)
	for i := 0; i < n; i++ {
		ids = append(ids, createTask(t, svc, "task", PriorityLow).ID)
	}

	var wg sync.WaitGroup
	errs := make(chan error, n)
	for _, id := range ids {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			if _, err := svc.CompleteTask(ctx, id); err != nil {
				errs <- err
			}
		}(id)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	p, err := svc.Profile(ctx)
	require.NoError(t, err)
	require.Equal(t, n, p.TasksCompleted)
	// 200 XP: 100 for level 1 -> 2, 100 left toward level 3.
	require.Equal(t, 2, p.Level)
	require.Equal(t, 100, p.CurrentXP)

	hist, err := svc.ListHistory(ctx, HistoryCompleted)
	require.NoError(t, err)
	require.Len(t, hist, n)

	total, err := svc.HistoryRepo().TotalXPEarned(ctx)
	require.NoError(t, err)
	require.Equal(t, 200, total)
}

func TestStreakAcrossDays(t *testing.T) {
	svc, clock := newTestService(t)
	ctx := context.Background()

	for day := 0; day < 7; day++ {
		task := createTask(t, svc, "daily", PriorityLow)
		_, err := svc.CompleteTask(ctx, task.ID)
		require.NoError(t, err)
		clock.Advance(24 * time.Hour)
	}
	p, err := svc.Profile(ctx)
	require.NoError(t, err)
	require.Equal(t, 7, p.StreakDays)

	task := createTask(t, svc, "bonus day", PriorityLow)
	res, err := svc.CompleteTask(ctx, task.ID)
	require.NoError(t, err)
	require.Equal(t, 1, res.StreakBonus)
	require.Equal(t, 8, res.Profile.StreakDays)

	clock.Advance(72 * time.Hour)
	p, err = svc.Profile(ctx)
	require.NoError(t, err)
	require.Zero(t, p.StreakDays, "lapsed streak reads as zero")

	task = createTask(t, svc, "after a break", PriorityLow)
	res, err = svc.CompleteTask(ctx, task.ID)
	require.NoError(t, err)
	require.Zero(t, res.StreakBonus)
	require.Equal(t, 10, res.XPAwarded)
	require.Equal(t, 1, res.Profile.StreakDays)
}

func TestLapsedStreakEarnsNoBonus(t *testing.T) {
	svc, clock := newTestService(t)
	ctx := context.Background()

	monthAgo := clock.Now().Add(-30 * 24 * time.Hour)
	setProfile(t, svc, func(p *storage.Profile) {
		p.StreakDays = 14
		p.PerfectDays = 14
		p.LastActivityAt = &monthAgo
	})

	p, err := svc.Profile(ctx)
	require.NoError(t, err)
	require.Zero(t, p.StreakDays)
	require.Zero(t, p.PerfectDays)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	require.Zero(t, stats.Profile.StreakDays)

	task := createTask(t, svc, "comeback", PriorityHigh)
	res, err := svc.CompleteTask(ctx, task.ID)
	require.NoError(t, err)
	require.Zero(t, res.StreakBonus)
	require.Equal(t, 35, res.XPAwarded)
	require.Equal(t, 1, res.Profile.StreakDays)
}

func TestNotifierPublishesAfterCommit(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	events, cancel := svc.Notifier().Subscribe(16)
	defer cancel()

	task := createTask(t, svc, "notify", PriorityLow)
	_, err := svc.CompleteTask(ctx, task.ID)
	require.NoError(t, err)

	var kinds []EventKind
	for len(events) > 0 {
		ev := <-events
		kinds = append(kinds, ev.Kind)
	}
	require.Equal(t, []EventKind{
		EventTaskCreated,
		EventTaskCompleted,
		EventProfileUpdated,
		EventAchievementUnlocked,
	}, kinds)

	// Failed operations publish nothing.
	_, err = svc.CompleteTask(ctx, task.ID)
	require.True(t, errors.Is(err, storage.ErrNotFound))
	require.Empty(t, events)
}

func TestSetUsername(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	p, err := svc.SetUsername(ctx, " Ada ")
	require.NoError(t, err)
	require.Equal(t, "Ada", p.Username)

	_, err = svc.SetUsername(ctx, "")
	var ve ValidationError
	require.ErrorAs(t, err, &ve)
}

func TestStats(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	a := createTask(t, svc, "a", PriorityHigh)
	b := createTask(t, svc, "b", PriorityLow)
	createTask(t, svc, "c", PriorityLow)
	_, err := svc.CompleteTask(ctx, a.ID)
	require.NoError(t, err)
	_, err = svc.DeleteTask(ctx, b.ID)
	require.NoError(t, err)

	st, err := svc.Stats(ctx)
	require.NoError(t, err)
	require.Equal(t, 30, st.Profile.CurrentXP)
	require.Equal(t, 30, st.TotalXPEarned)
	require.Equal(t, 70, st.XPToNextLevel)
	require.InDelta(t, 30.0, st.LevelProgress, 0.001)
	require.Equal(t, 1, st.HistoryByStatus[HistoryCompleted])
	require.Equal(t, 1, st.HistoryByStatus[HistoryDeleted])
	require.Equal(t, 0, st.HistoryByStatus[HistoryFailed])
	require.Equal(t, 1, st.ActiveTasks)
	require.Equal(t, 1, st.AchievementsUnlocked)
	require.Equal(t, 10, st.AchievementsTotal)
}
