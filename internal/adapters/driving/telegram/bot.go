package telegram

import (
	"context"
	"fmt"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/pantry-labs/gourmet-cli/internal/core/ports/driving"
	"github.com/pantry-labs/gourmet-cli/internal/logger"
)

// Bot runs the long-polling update loop and feeds incoming messages to
// the conversation.
type Bot struct {
	api          *tgbotapi.BotAPI
	conversation driving.Conversation
}

// Connect authenticates against the Bot API with the given token.
func Connect(token string) (*tgbotapi.BotAPI, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("connecting to Telegram: %w", err)
	}
	logger.Info("Authorized as @%s", api.Self.UserName)
	return api, nil
}

// NewBot wires the update loop to a conversation.
func NewBot(api *tgbotapi.BotAPI, conversation driving.Conversation) *Bot {
	return &Bot{api: api, conversation: conversation}
}

// Run polls for updates until the context is cancelled. Updates are
// processed one at a time; a failed turn is logged and the loop moves
// on, so one chat's trouble never wedges the bot.
func (b *Bot) Run(ctx context.Context) error {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = 60
	updates := b.api.GetUpdatesChan(cfg)

	logger.Info("Listening for messages")
	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return ctx.Err()

		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil || update.Message.Text == "" {
				continue
			}

			sessionID := strconv.FormatInt(update.Message.Chat.ID, 10)
			if err := b.conversation.HandleMessage(ctx, sessionID, update.Message.Text); err != nil {
				logger.Warn("Turn failed for chat %s: %v", sessionID, err)
			}
		}
	}
}
