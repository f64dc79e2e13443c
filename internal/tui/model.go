package tui

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"todoquest/internal/engine"
	"todoquest/internal/storage"
	"todoquest/internal/ui"
)

type boardModel struct {
	ctx    context.Context
	svc    *engine.Service
	events <-chan engine.Event

	width  int
	height int

	profile      *storage.Profile
	tasks        []storage.Task
	achievements []storage.Achievement

	selected int
	// confirmDelete holds the task id awaiting a second "d".
	confirmDelete int64

	lastLog string
	loading bool
	err     error
}

type loadedMsg struct {
	profile      *storage.Profile
	tasks        []storage.Task
	achievements []storage.Achievement
	err          error
}

type completedMsg struct {
	id  int64
	res *engine.CompleteResult
	err error
}

type deletedMsg struct {
	id  int64
	res *engine.DeleteResult
	err error
}

type changedMsg struct {
	ev engine.Event
	ok bool
}

func newBoardModel(ctx context.Context, svc *engine.Service, events <-chan engine.Event) boardModel {
	return boardModel{
		ctx:     ctx,
		svc:     svc,
		events:  events,
		loading: true,
		lastLog: "Loaded.",
	}
}

func (m boardModel) Init() tea.Cmd {
	return tea.Batch(m.loadCmd(), m.waitCmd())
}

func (m boardModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		p, err := m.svc.Profile(m.ctx)
		if err != nil {
			return loadedMsg{err: err}
		}
		tasks, err := m.svc.ListTasks(m.ctx)
		if err != nil {
			return loadedMsg{err: err}
		}
		achievements, err := m.svc.ListAchievements(m.ctx)
		if err != nil {
			return loadedMsg{err: err}
		}
		return loadedMsg{profile: p, tasks: tasks, achievements: achievements}
	}
}

// waitCmd blocks until the service publishes a committed change.
func (m boardModel) waitCmd() tea.Cmd {
	if m.events == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-m.events
		return changedMsg{ev: ev, ok: ok}
	}
}

func (m boardModel) completeCmd(id int64) tea.Cmd {
	return func() tea.Msg {
		res, err := m.svc.CompleteTask(m.ctx, id)
		return completedMsg{id: id, res: res, err: err}
	}
}

func (m boardModel) deleteCmd(id int64) tea.Cmd {
	return func() tea.Msg {
		res, err := m.svc.DeleteTask(m.ctx, id)
		return deletedMsg{id: id, res: res, err: err}
	}
}

func (m boardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case loadedMsg:
		m.loading = false
		m.err = msg.err
		if msg.err != nil {
			m.lastLog = "Load failed: " + msg.err.Error()
			return m, nil
		}
		m.profile = msg.profile
		m.tasks = sortTasks(msg.tasks)
		m.achievements = msg.achievements
		m.clampSelection()
		return m, nil
	case changedMsg:
		if !msg.ok {
			return m, nil
		}
		return m, tea.Batch(m.loadCmd(), m.waitCmd())
	case completedMsg:
		if msg.err != nil {
			m.lastLog = "Complete failed: " + msg.err.Error()
			return m, nil
		}
		m.lastLog = completionLog(msg.res)
		return m, nil
	case deletedMsg:
		if msg.err != nil {
			m.lastLog = "Delete failed: " + msg.err.Error()
			return m, nil
		}
		if msg.res.Penalized {
			m.lastLog = fmt.Sprintf("Abandoned %d: %d XP", msg.id, msg.res.XPDelta)
		} else {
			m.lastLog = fmt.Sprintf("Removed %d.", msg.id)
		}
		return m, nil
	case tea.KeyMsg:
		key := msg.String()
		if key != "d" {
			m.confirmDelete = 0
		}
		switch key {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "r":
			m.loading = true
			m.lastLog = fmt.Sprintf("Refreshed at %s.", time.Now().Format("15:04:05"))
			return m, m.loadCmd()
		case "up", "k":
			if m.selected > 0 {
				m.selected--
			}
			return m, nil
		case "down", "j":
			if m.selected < len(m.tasks)-1 {
				m.selected++
			}
			return m, nil
		case "c", " ":
			t := m.current()
			if t == nil {
				return m, nil
			}
			if t.Completed {
				m.lastLog = "Already done."
				return m, nil
			}
			m.lastLog = fmt.Sprintf("Completing %d…", t.ID)
			return m, m.completeCmd(t.ID)
		case "d":
			t := m.current()
			if t == nil {
				return m, nil
			}
			if m.confirmDelete != t.ID {
				m.confirmDelete = t.ID
				if t.Completed {
					m.lastLog = fmt.Sprintf("Press d again to remove %q.", t.Title)
				} else {
					penalty := engine.Penalty(engine.Priority(t.Priority))
					m.lastLog = fmt.Sprintf("Press d again to abandon %q (%d XP).", t.Title, penalty)
				}
				return m, nil
			}
			m.confirmDelete = 0
			return m, m.deleteCmd(t.ID)
		}
	}
	return m, nil
}

func (m *boardModel) clampSelection() {
	if m.selected >= len(m.tasks) {
		m.selected = len(m.tasks) - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
}

func (m boardModel) current() *storage.Task {
	if m.selected < 0 || m.selected >= len(m.tasks) {
		return nil
	}
	return &m.tasks[m.selected]
}

func completionLog(res *engine.CompleteResult) string {
	s := fmt.Sprintf("Completed %d: +%d XP", res.TaskID, res.XPAwarded)
	if res.StreakBonus > 0 {
		s += fmt.Sprintf(" (streak +%d)", res.StreakBonus)
	}
	if res.LevelUp {
		s += fmt.Sprintf(" %s %d → %d", ui.BadgeLevelUp, res.LevelBefore, res.LevelAfter)
	}
	for _, a := range res.Unlocked {
		s += fmt.Sprintf(" %s %s", ui.IconTrophy, a.Title)
	}
	return s
}

func (m boardModel) View() string {
	if m.err != nil {
		return "Error: " + m.err.Error() + "\n\nPress q to quit.\n"
	}

	header := m.renderHeader()
	sidebar := m.renderSidebar()
	main := m.renderMain()
	footer := m.renderFooter()

	leftW := 30
	if m.width > 0 {
		maxLeft := m.width / 2
		if maxLeft < leftW {
			leftW = maxLeft
		}
		if leftW < 18 {
			leftW = 18
		}
	}

	linesLeft := strings.Split(sidebar, "\n")
	linesRight := strings.Split(main, "\n")
	rows := len(linesLeft)
	if len(linesRight) > rows {
		rows = len(linesRight)
	}

	var body strings.Builder
	for i := 0; i < rows; i++ {
		l := ""
		r := ""
		if i < len(linesLeft) {
			l = linesLeft[i]
		}
		if i < len(linesRight) {
			r = linesRight[i]
		}
		body.WriteString(padRight(l, leftW))
		body.WriteString("  ")
		body.WriteString(r)
		body.WriteString("\n")
	}

	return header + "\n" + body.String() + footer
}

func (m boardModel) renderHeader() string {
	if m.profile == nil {
		return "todoquest | loading…"
	}
	p := m.profile
	bar := ui.ProgressBar(p.CurrentXP, engine.XPRequiredForLevel(p.Level), 30)
	return fmt.Sprintf("todoquest | %s | Level %d | XP %d/%d %s | Streak %d",
		p.Username, p.Level, p.CurrentXP, engine.XPRequiredForLevel(p.Level), bar, p.StreakDays)
}

func (m boardModel) renderSidebar() string {
	if m.profile == nil {
		return "Stats\n\nLoading…"
	}
	lines := []string{
		"Stats",
		fmt.Sprintf("- completed: %d", m.profile.TasksCompleted),
		fmt.Sprintf("- failed:    %d", m.profile.TasksFailed),
		"",
		fmt.Sprintf("Achievements %d/%d", engine.CountUnlocked(m.achievements), len(m.achievements)),
	}
	for _, a := range m.achievements {
		mark := "[ ]"
		if a.Unlocked {
			mark = "[x]"
		}
		lines = append(lines, fmt.Sprintf("%s %s", mark, a.Title))
	}
	lines = append(lines,
		"",
		"Keys",
		"- ↑/↓ or j/k: move",
		"- c/space: complete",
		"- d d: delete",
		"- r: refresh",
		"- q: quit",
	)
	return strings.Join(lines, "\n")
}

func (m boardModel) renderMain() string {
	if m.loading && m.tasks == nil {
		return "Loading…"
	}
	out := []string{"Quests"}
	if len(m.tasks) == 0 {
		out = append(out, "(no tasks, add one with `tq add`)")
		return strings.Join(out, "\n")
	}
	for i, t := range m.tasks {
		cursor := "  "
		if i == m.selected {
			cursor = "> "
		}
		check := "[ ]"
		if t.Completed {
			check = "[x]"
		}
		prio := engine.Priority(t.Priority)
		line := fmt.Sprintf("%s%s %s (%s, %d XP)", cursor, check, t.Title, prio, engine.CompletionXP(prio))
		if t.Deadline != nil {
			line += " due " + t.Deadline.Local().Format("Jan 2 15:04")
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

func (m boardModel) renderFooter() string {
	return "\n" + m.lastLog
}

// sortTasks orders open tasks first, then by deadline (none last), then id.
func sortTasks(tasks []storage.Task) []storage.Task {
	out := append([]storage.Task(nil), tasks...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Completed != b.Completed {
			return !a.Completed
		}
		if (a.Deadline == nil) != (b.Deadline == nil) {
			return a.Deadline != nil
		}
		if a.Deadline != nil && !a.Deadline.Equal(*b.Deadline) {
			return a.Deadline.Before(*b.Deadline)
		}
		return a.ID < b.ID
	})
	return out
}

func padRight(s string, width int) string {
	if width <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) >= width {
		return string(r[:width])
	}
	return s + strings.Repeat(" ", width-len(r))
}
