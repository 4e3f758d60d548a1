package handlers

import (
	"context"

	"github.com/Freeeeeet/tutoring_ledger/internal/model"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

const (
	msgInternalError = "❌ Something went wrong. Please try again later."
	msgNotLinked     = "❌ Your Telegram account is not linked to the school yet. Ask the administration to link it, then send /start."
)

// lookupUser находит пользователя школы по Telegram ID.
// Возвращает текст ответа, если пользователь не найден или произошла ошибка.
func (h *Handlers) lookupUser(ctx context.Context, telegramID int64) (*model.User, string) {
	user, err := h.userService.GetByTelegramID(ctx, telegramID)
	if err != nil {
		h.logger.Error("Failed to get user", zap.Int64("telegram_id", telegramID), zap.Error(err))
		return nil, msgInternalError
	}
	if user == nil {
		return nil, msgNotLinked
	}
	return user, ""
}

func actorOf(user *model.User) model.Actor {
	return model.Actor{UserID: user.ID, Role: user.Role}
}

// sendMessage отправляет сообщение и логирует если не удалось
func (h *Handlers) sendMessage(ctx context.Context, b *bot.Bot, chatID int64, text string) {
	_, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	})
	if err != nil {
		h.logger.Error("Failed to send message",
			zap.Int64("chat_id", chatID),
			zap.Error(err),
		)
	}
}

// reply вызывает build для отправителя сообщения и отправляет результат
func (h *Handlers) reply(ctx context.Context, b *bot.Bot, update *models.Update, build func(ctx context.Context, telegramID int64) string) {
	if update.Message == nil || update.Message.From == nil {
		return
	}
	h.sendMessage(ctx, b, update.Message.Chat.ID, build(ctx, update.Message.From.ID))
}
