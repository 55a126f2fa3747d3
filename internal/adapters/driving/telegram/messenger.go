package telegram

import (
	"context"
	"fmt"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/time/rate"

	"github.com/pantry-labs/gourmet-cli/internal/core/ports/driven"
)

// Ensure Messenger implements the interface.
var _ driven.Messenger = (*Messenger)(nil)

// sender is the slice of the bot API the messenger needs. Tests provide
// a fake; production passes *tgbotapi.BotAPI.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Messenger delivers conversation output to Telegram chats. The session
// ID is the decimal chat ID.
type Messenger struct {
	api     sender
	limiter *rate.Limiter
}

// NewMessenger creates a messenger over the given API connection. A
// positive perSecond throttles outgoing sends; zero sends unthrottled.
func NewMessenger(api sender, perSecond float64) *Messenger {
	limiter := rate.NewLimiter(rate.Inf, 1)
	if perSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
	return &Messenger{api: api, limiter: limiter}
}

// SendText implements driven.Messenger.
func (m *Messenger) SendText(ctx context.Context, sessionID, text string) error {
	return m.send(ctx, sessionID, text, nil)
}

// SendPrompt implements driven.Messenger. A non-empty options grid shows
// a one-time reply keyboard; empty options remove any visible keyboard.
func (m *Messenger) SendPrompt(ctx context.Context, sessionID, text string, options [][]string) error {
	if len(options) == 0 {
		return m.send(ctx, sessionID, text, tgbotapi.NewRemoveKeyboard(false))
	}

	rows := make([][]tgbotapi.KeyboardButton, 0, len(options))
	for _, row := range options {
		buttons := make([]tgbotapi.KeyboardButton, 0, len(row))
		for _, label := range row {
			buttons = append(buttons, tgbotapi.NewKeyboardButton(label))
		}
		rows = append(rows, buttons)
	}

	keyboard := tgbotapi.NewReplyKeyboard(rows...)
	keyboard.OneTimeKeyboard = true
	keyboard.ResizeKeyboard = true
	return m.send(ctx, sessionID, text, keyboard)
}

func (m *Messenger) send(ctx context.Context, sessionID, text string, markup any) error {
	chatID, err := strconv.ParseInt(sessionID, 10, 64)
	if err != nil {
		return fmt.Errorf("session %q is not a chat ID: %w", sessionID, err)
	}

	if err := m.limiter.Wait(ctx); err != nil {
		return err
	}

	msg := tgbotapi.NewMessage(chatID, text)
	if markup != nil {
		msg.ReplyMarkup = markup
	}
	if _, err := m.api.Send(msg); err != nil {
		return fmt.Errorf("sending to chat %d: %w", chatID, err)
	}
	return nil
}
