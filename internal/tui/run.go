package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/osirenko/finch/internal/client"
	"github.com/osirenko/finch/internal/derive"
	"github.com/osirenko/finch/internal/state"
)

// Run starts the browse UI and blocks until the user quits or the context
// is canceled.
func Run(ctx context.Context, s *state.AppState, e *derive.Engine, c *client.Client) error {
	p := tea.NewProgram(
		NewModel(ctx, s, e, c),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("failed to run browse UI: %w", err)
	}
	return nil
}
