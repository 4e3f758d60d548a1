package notify

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/tutoring_ledger/internal/repository"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// MessageSender - часть *bot.Bot для отправки сообщений
type MessageSender interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
}

// TelegramPusher отправляет уведомления пользователям с привязанным Telegram
type TelegramPusher struct {
	sender MessageSender
	users  repository.UserStore
	logger *zap.Logger
}

func NewTelegramPusher(sender MessageSender, users repository.UserStore, logger *zap.Logger) *TelegramPusher {
	return &TelegramPusher{
		sender: sender,
		users:  users,
		logger: logger,
	}
}

// Push отправляет уведомление в Telegram; пользователи без Telegram пропускаются
func (p *TelegramPusher) Push(ctx context.Context, userID int64, title, message string) error {
	user, err := p.users.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}
	if user == nil || user.TelegramID == nil {
		p.logger.Debug("Skipping telegram push, account not linked", zap.Int64("user_id", userID))
		return nil
	}

	_, err = p.sender.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: *user.TelegramID,
		Text:   FormatMessage(title, message),
	})
	if err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}

	return nil
}

// FormatMessage форматирует уведомление для чата
func FormatMessage(title, message string) string {
	if message == "" {
		return "🔔 " + title
	}
	return "🔔 " + title + "\n\n" + message
}
