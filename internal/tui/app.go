package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// Config contains configuration for the chat.
type Config struct {
	Runner Runner
	UserID string
}

// Run starts the chat and blocks until the user quits or ctx is done.
func Run(ctx context.Context, cfg Config) error {
	if cfg.Runner == nil {
		return errors.New("tui: runner is required")
	}
	if cfg.UserID == "" {
		return errors.New("tui: user id is required")
	}

	model := NewModel(ctx, cfg.Runner, cfg.UserID)
	program := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)
	model.SetSender(program.Send)

	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
