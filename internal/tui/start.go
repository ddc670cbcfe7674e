package tui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jbonatakis/mockingbird/internal/engine"
)

// Start runs the interactive UI on session until the user quits or ctx is
// cancelled.
func Start(ctx context.Context, session *engine.Session, opts Options) error {
	model := NewModel(ctx, session, opts)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
