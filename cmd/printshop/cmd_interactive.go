package main

import (
	"fmt"

	"printshop/cmd/printshop/ui"
	"printshop/internal/logging"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

// runInteractive starts the full-screen interface.
func runInteractive(cmd *cobra.Command, e *env) error {
	app := ui.NewApp(cmd.Context(), e.client, e.sess, e.styles)
	defer app.Close()

	logging.Boot("Starting interactive UI (api=%s)", e.cfg.API.BaseURL)
	p := tea.NewProgram(app,
		tea.WithAltScreen(),
		tea.WithContext(cmd.Context()),
		tea.WithInput(cmd.InOrStdin()),
		tea.WithOutput(cmd.OutOrStdout()),
	)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("interactive UI failed: %w", err)
	}
	return nil
}
