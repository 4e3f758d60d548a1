package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/Freeeeeet/tutoring_ledger/internal/model"
	"github.com/Freeeeeet/tutoring_ledger/internal/repository"
	"github.com/Freeeeeet/tutoring_ledger/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

const (
	maxListedSessions      = 10
	maxListedNotifications = 10
)

// HandleStart обрабатывает команду /start
func (h *Handlers) HandleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.reply(ctx, b, update, h.startText)
}

// HandleHelp обрабатывает команду /help
func (h *Handlers) HandleHelp(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	h.sendMessage(ctx, b, update.Message.Chat.ID, helpText)
}

// HandleBalance обрабатывает команду /balance
func (h *Handlers) HandleBalance(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.reply(ctx, b, update, h.balanceText)
}

// HandleSessions обрабатывает команду /sessions
func (h *Handlers) HandleSessions(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.reply(ctx, b, update, h.sessionsText)
}

// HandleNotifications обрабатывает команду /notifications
func (h *Handlers) HandleNotifications(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.reply(ctx, b, update, h.notificationsText)
}

const helpText = "📚 Commands:\n\n" +
	"/start - Check that your account is linked\n" +
	"/balance - Purchased and remaining hours (students)\n" +
	"/sessions - Upcoming sessions\n" +
	"/notifications - Unread notifications\n" +
	"/help - Show this help"

func (h *Handlers) startText(ctx context.Context, telegramID int64) string {
	user, errText := h.lookupUser(ctx, telegramID)
	if user == nil {
		return errText
	}
	return fmt.Sprintf("👋 Hello, %s!\n\nYou are signed in as %s.\n\n%s", user.FullName(), user.Role, helpText)
}

func (h *Handlers) balanceText(ctx context.Context, telegramID int64) string {
	user, errText := h.lookupUser(ctx, telegramID)
	if user == nil {
		return errText
	}
	if user.Role != model.RoleStudent {
		return "ℹ️ Hour balances are only kept for students."
	}

	student, err := h.userService.StudentProfile(ctx, user.ID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return "ℹ️ Your student profile has not been created yet."
		}
		h.logger.Error("Failed to get student profile", zap.Int64("user_id", user.ID), zap.Error(err))
		return msgInternalError
	}

	balance, err := h.ledgerService.BalanceFor(ctx, student.ID, actorOf(user))
	if err != nil {
		h.logger.Error("Failed to get balance", zap.Int64("student_id", student.ID), zap.Error(err))
		return msgInternalError
	}

	return FormatBalance(student.Matricule, balance)
}

func (h *Handlers) sessionsText(ctx context.Context, telegramID int64) string {
	user, errText := h.lookupUser(ctx, telegramID)
	if user == nil {
		return errText
	}

	sessions, err := h.sessionService.ListSessions(ctx, actorOf(user), repository.SessionFilter{
		Status: model.SessionStatusScheduled,
	})
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return "ℹ️ Your profile has not been created yet."
		}
		h.logger.Error("Failed to list sessions", zap.Int64("user_id", user.ID), zap.Error(err))
		return msgInternalError
	}

	return FormatUpcomingSessions(sessions, h.now(), maxListedSessions)
}

func (h *Handlers) notificationsText(ctx context.Context, telegramID int64) string {
	user, errText := h.lookupUser(ctx, telegramID)
	if user == nil {
		return errText
	}

	list, err := h.notificationService.List(ctx, actorOf(user), true)
	if err != nil {
		h.logger.Error("Failed to list notifications", zap.Int64("user_id", user.ID), zap.Error(err))
		return msgInternalError
	}

	return FormatNotifications(list, maxListedNotifications)
}
