package engine

import (
	"context"

	"todoquest/internal/storage"
)

type Stats struct {
	Profile              storage.Profile       `json:"profile" yaml:"profile"`
	XPToNextLevel        int                   `json:"xp_to_next_level" yaml:"xp_to_next_level"`
	LevelProgress        float64               `json:"level_progress" yaml:"level_progress"`
	TotalXPEarned        int                   `json:"total_xp_earned" yaml:"total_xp_earned"`
	HistoryByStatus      map[HistoryStatus]int `json:"history_by_status" yaml:"history_by_status"`
	ActiveTasks          int                   `json:"active_tasks" yaml:"active_tasks"`
	AchievementsUnlocked int                   `json:"achievements_unlocked" yaml:"achievements_unlocked"`
	AchievementsTotal    int                   `json:"achievements_total" yaml:"achievements_total"`
}

func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	p, err := s.Profile(ctx)
	if err != nil {
		return nil, err
	}
	total, err := s.history.TotalXPEarned(ctx)
	if err != nil {
		return nil, err
	}
	counts, err := s.history.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	tasks, err := s.tasks.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	achievements, err := s.achievements.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	byStatus := map[HistoryStatus]int{
		HistoryCompleted: 0,
		HistoryFailed:    0,
		HistoryDeleted:   0,
	}
	for k, v := range counts {
		byStatus[HistoryStatus(k)] = v
	}
	active := 0
	for _, t := range tasks {
		if !t.Completed {
			active++
		}
	}

	return &Stats{
		Profile:              *p,
		XPToNextLevel:        XPRequiredForLevel(p.Level) - p.CurrentXP,
		LevelProgress:        LevelProgress(p.Level, p.CurrentXP),
		TotalXPEarned:        total,
		HistoryByStatus:      byStatus,
		ActiveTasks:          active,
		AchievementsUnlocked: CountUnlocked(achievements),
		AchievementsTotal:    len(achievements),
	}, nil
}
