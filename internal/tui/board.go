package tui

import (
	"context"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"todoquest/internal/engine"
)

// RunBoard shows the interactive board until the user quits. It refreshes
// whenever the service commits a change, including ones made by other callers
// sharing svc (the HTTP server when run in-process).
func RunBoard(ctx context.Context, svc *engine.Service, out io.Writer) error {
	events, cancel := svc.Notifier().Subscribe(32)
	defer cancel()

	m := newBoardModel(ctx, svc, events)
	p := tea.NewProgram(m, tea.WithOutput(out), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
