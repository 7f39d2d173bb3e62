// Package notifier delivers run reports and failures to a Telegram chat.
package notifier

import (
	"context"
	"fmt"
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"FinSim/internal/logger"
)

// Notifier sends a text message somewhere a human will read it.
type Notifier interface {
	Send(ctx context.Context, text string) error
}

// NoopNotifier drops every message. It is used when Telegram is not configured.
type NoopNotifier struct{}

func (NoopNotifier) Send(context.Context, string) error { return nil }

// TelegramNotifier sends HTML messages to one chat via the Bot API.
type TelegramNotifier struct {
	api    *tgbotapi.BotAPI
	chatID int64
}

// NewTelegramNotifier authenticates the bot token and binds it to chatID.
func NewTelegramNotifier(botToken, chatID string) (*TelegramNotifier, error) {
	id, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parse chat id %q: %w", chatID, err)
	}
	api, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	logger.Info("telegram bot initialized", zap.String("username", api.Self.UserName))
	return &TelegramNotifier{api: api, chatID: id}, nil
}

// Send sends a message to the configured chat.
func (t *TelegramNotifier) Send(_ context.Context, text string) error {
	msg := tgbotapi.NewMessage(t.chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := t.api.Send(msg); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

// retryBaseDelay is the first backoff; each retry doubles it.
var retryBaseDelay = time.Second

// SendWithRetry sends text through n, retrying with exponential backoff.
func SendWithRetry(ctx context.Context, n Notifier, text string, maxRetries int) error {
	var lastErr error
	for i := 0; i <= maxRetries; i++ {
		err := n.Send(ctx, text)
		if err == nil {
			return nil
		}
		lastErr = err
		if i == maxRetries {
			break
		}
		backoff := retryBaseDelay << uint(i)
		logger.Warn("notification send failed, retrying",
			zap.Int("attempt", i+1),
			zap.Int("of", maxRetries+1),
			zap.Duration("backoff", backoff),
			zap.Error(err),
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}
	return fmt.Errorf("all %d attempts failed: %w", maxRetries+1, lastErr)
}
