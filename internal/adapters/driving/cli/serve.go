package cli

import (
	"bufio"
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/pantry-labs/gourmet-cli/internal/adapters/driving/telegram"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the Telegram bot",
	Long: `Connects to the Telegram Bot API and serves conversations until
interrupted. The bot token comes from the GOURMET_BOT_TOKEN variable,
the config file, or an interactive prompt.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.Close()

	token := a.cfg.Telegram.Token
	if token == "" {
		cmd.Print("Telegram bot token: ")
		token = readSecret()
		cmd.Println()
	}
	if token == "" {
		return errors.New("no bot token configured")
	}

	api, err := telegram.Connect(token)
	if err != nil {
		return err
	}

	messenger := telegram.NewMessenger(api, a.cfg.Telegram.RatePerSecond)
	bot := telegram.NewBot(api, a.newConversation(messenger))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := bot.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	cmd.Println("Shutting down.")
	return nil
}

//nolint:errcheck // CLI helper, error ignored for UX
func readSecret() string {
	// Try to read without echo
	if term.IsTerminal(int(os.Stdin.Fd())) {
		secret, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return strings.TrimSpace(string(secret))
		}
	}
	// Fallback to regular input
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}
