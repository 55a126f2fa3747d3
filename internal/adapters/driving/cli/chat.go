package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/pantry-labs/gourmet-cli/internal/adapters/driving/tui"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the recipe assistant in the terminal",
	Long: `Opens an interactive chat session in the terminal. The same
conversation runs here as over Telegram; quick replies show up as a
hint row you can type out.

Controls:
  Enter      - Send message
  PgUp/PgDn  - Scroll transcript
  Esc        - Quit`,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(_ *cobra.Command, _ []string) error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.Close()

	transcript := tui.NewTranscript()
	conversation := a.newConversation(tui.NewLoopback(transcript))

	program := tea.NewProgram(
		tui.NewApp(conversation, transcript),
		tea.WithAltScreen(),
	)
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("chat session failed: %w", err)
	}
	return nil
}
