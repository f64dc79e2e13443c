package server

import (
	"time"

	"todoquest/internal/engine"
	"todoquest/internal/storage"
)

// Request payloads

type CreateTaskRequest struct {
	Title       string     `json:"title" minLength:"1" example:"Write weekly report"`
	Description string     `json:"description,omitempty"`
	Priority    string     `json:"priority,omitempty" example:"medium" doc:"low|medium|high or 1-3; defaults to low"`
	Completed   bool       `json:"completed,omitempty"`
	Deadline    *time.Time `json:"deadline,omitempty"`
}

type UpdateTaskRequest struct {
	Title         *string    `json:"title,omitempty"`
	Description   *string    `json:"description,omitempty"`
	Priority      *string    `json:"priority,omitempty"`
	Completed     *bool      `json:"completed,omitempty" doc:"setting true on an open task completes it and awards XP"`
	Deadline      *time.Time `json:"deadline,omitempty"`
	ClearDeadline bool       `json:"clear_deadline,omitempty"`
}

type SetUsernameRequest struct {
	Username string `json:"username" minLength:"1"`
}

// Response payloads

type TaskResponse struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Priority    string     `json:"priority"`
	XPValue     int        `json:"xp_value"`
	Completed   bool       `json:"completed"`
	Deadline    *time.Time `json:"deadline,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

type ProfileResponse struct {
	Username              string     `json:"username"`
	Level                 int        `json:"level"`
	CurrentXP             int        `json:"current_xp"`
	XPForNextLevel        int        `json:"xp_for_next_level"`
	TasksCompleted        int        `json:"tasks_completed"`
	TasksFailed           int        `json:"tasks_failed"`
	HighPriorityCompleted int        `json:"high_priority_completed"`
	StreakDays            int        `json:"streak_days"`
	PerfectDays           int        `json:"perfect_days"`
	LastActivityAt        *time.Time `json:"last_activity_at,omitempty"`
	LastEventID           string     `json:"last_event_id,omitempty"`
}

type HistoryResponse struct {
	ID          int64     `json:"id"`
	EventID     string    `json:"event_id"`
	TaskID      int64     `json:"task_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Priority    string    `json:"priority"`
	Status      string    `json:"status"`
	RecordedAt  time.Time `json:"recorded_at"`
	XPEarned    int       `json:"xp_earned"`
}

type AchievementResponse struct {
	Code        string     `json:"code"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Type        string     `json:"type"`
	Requirement int        `json:"requirement"`
	Unlocked    bool       `json:"unlocked"`
	UnlockedAt  *time.Time `json:"unlocked_at,omitempty"`
}

type CompleteResponse struct {
	TaskID      int64                 `json:"task_id"`
	BaseXP      int                   `json:"base_xp"`
	StreakBonus int                   `json:"streak_bonus"`
	XPAwarded   int                   `json:"xp_awarded"`
	LevelBefore int                   `json:"level_before"`
	LevelAfter  int                   `json:"level_after"`
	LevelUp     bool                  `json:"level_up"`
	History     HistoryResponse       `json:"history"`
	Unlocked    []AchievementResponse `json:"unlocked"`
	Profile     ProfileResponse       `json:"profile"`
}

type DeleteResponse struct {
	TaskID    int64            `json:"task_id"`
	Penalized bool             `json:"penalized"`
	XPDelta   int              `json:"xp_delta"`
	History   *HistoryResponse `json:"history,omitempty"`
	Profile   ProfileResponse  `json:"profile"`
}

type UpdateResponse struct {
	Task       *TaskResponse     `json:"task,omitempty"`
	Completion *CompleteResponse `json:"completion,omitempty"`
}

type FailedTaskResponse struct {
	TaskID  int64           `json:"task_id"`
	Title   string          `json:"title"`
	XPDelta int             `json:"xp_delta"`
	History HistoryResponse `json:"history"`
}

type StatsResponse struct {
	Profile              ProfileResponse `json:"profile"`
	XPToNextLevel        int             `json:"xp_to_next_level"`
	LevelProgress        float64         `json:"level_progress"`
	TotalXPEarned        int             `json:"total_xp_earned"`
	HistoryByStatus      map[string]int  `json:"history_by_status"`
	ActiveTasks          int             `json:"active_tasks"`
	AchievementsUnlocked int             `json:"achievements_unlocked"`
	AchievementsTotal    int             `json:"achievements_total"`
}

// Mapping helpers

func taskResponse(t storage.Task) TaskResponse {
	p := engine.Priority(t.Priority)
	return TaskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Priority:    p.String(),
		XPValue:     engine.CompletionXP(p),
		Completed:   t.Completed,
		Deadline:    t.Deadline,
		CreatedAt:   t.CreatedAt,
	}
}

func mapTasks(items []storage.Task) []TaskResponse {
	out := make([]TaskResponse, 0, len(items))
	for _, t := range items {
		out = append(out, taskResponse(t))
	}
	return out
}

func profileResponse(p storage.Profile) ProfileResponse {
	return ProfileResponse{
		Username:              p.Username,
		Level:                 p.Level,
		CurrentXP:             p.CurrentXP,
		XPForNextLevel:        engine.XPRequiredForLevel(p.Level),
		TasksCompleted:        p.TasksCompleted,
		TasksFailed:           p.TasksFailed,
		HighPriorityCompleted: p.HighPriorityCompleted,
		StreakDays:            p.StreakDays,
		PerfectDays:           p.PerfectDays,
		LastActivityAt:        p.LastActivityAt,
		LastEventID:           p.LastEventID,
	}
}

func historyResponse(h storage.HistoryEntry) HistoryResponse {
	return HistoryResponse{
		ID:          h.ID,
		EventID:     h.EventID,
		TaskID:      h.TaskID,
		Title:       h.Title,
		Description: h.Description,
		Priority:    engine.Priority(h.Priority).String(),
		Status:      h.Status,
		RecordedAt:  h.RecordedAt,
		XPEarned:    h.XPEarned,
	}
}

func mapHistory(items []storage.HistoryEntry) []HistoryResponse {
	out := make([]HistoryResponse, 0, len(items))
	for _, h := range items {
		out = append(out, historyResponse(h))
	}
	return out
}

func achievementResponse(a storage.Achievement) AchievementResponse {
	return AchievementResponse{
		Code:        a.Code,
		Title:       a.Title,
		Description: a.Description,
		Type:        a.Type,
		Requirement: a.Requirement,
		Unlocked:    a.Unlocked,
		UnlockedAt:  a.UnlockedAt,
	}
}

func mapAchievements(items []storage.Achievement) []AchievementResponse {
	out := make([]AchievementResponse, 0, len(items))
	for _, a := range items {
		out = append(out, achievementResponse(a))
	}
	return out
}

func completeResponse(res *engine.CompleteResult) CompleteResponse {
	return CompleteResponse{
		TaskID:      res.TaskID,
		BaseXP:      res.BaseXP,
		StreakBonus: res.StreakBonus,
		XPAwarded:   res.XPAwarded,
		LevelBefore: res.LevelBefore,
		LevelAfter:  res.LevelAfter,
		LevelUp:     res.LevelUp,
		History:     historyResponse(res.History),
		Unlocked:    mapAchievements(res.Unlocked),
		Profile:     profileResponse(res.Profile),
	}
}

func deleteResponse(res *engine.DeleteResult) DeleteResponse {
	out := DeleteResponse{
		TaskID:    res.TaskID,
		Penalized: res.Penalized,
		XPDelta:   res.XPDelta,
		Profile:   profileResponse(res.Profile),
	}
	if res.History != nil {
		h := historyResponse(*res.History)
		out.History = &h
	}
	return out
}

func statsResponse(st *engine.Stats) StatsResponse {
	byStatus := make(map[string]int, len(st.HistoryByStatus))
	for k, v := range st.HistoryByStatus {
		byStatus[string(k)] = v
	}
	return StatsResponse{
		Profile:              profileResponse(st.Profile),
		XPToNextLevel:        st.XPToNextLevel,
		LevelProgress:        st.LevelProgress,
		TotalXPEarned:        st.TotalXPEarned,
		HistoryByStatus:      byStatus,
		ActiveTasks:          st.ActiveTasks,
		AchievementsUnlocked: st.AchievementsUnlocked,
		AchievementsTotal:    st.AchievementsTotal,
	}
}
