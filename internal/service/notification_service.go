package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Freeeeeet/tutoring_ledger/internal/model"
	"github.com/Freeeeeet/tutoring_ledger/internal/repository"
	"go.uber.org/zap"
)

// Pusher доставляет уведомление наружу, например в чат
type Pusher interface {
	Push(ctx context.Context, userID int64, title, message string) error
}

// NotificationService сохраняет уведомления и при необходимости отправляет их.
// Реализует Notifier.
type NotificationService struct {
	store  repository.Transactor
	pusher Pusher
	logger *zap.Logger
}

// NewNotificationService создаёт сервис уведомлений; pusher может быть nil
func NewNotificationService(store repository.Transactor, pusher Pusher, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		store:  store,
		pusher: pusher,
		logger: logger,
	}
}

// Notify сохраняет уведомление и отправляет его в Telegram, если настроено.
// Ошибка отправки логируется и не возвращается.
func (s *NotificationService) Notify(ctx context.Context, userID int64, typ model.NotificationType, title, message string) error {
	if !typ.Valid() {
		return fmt.Errorf("%w: unknown notification type %q", ErrValidation, typ)
	}
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("%w: notification title is empty", ErrValidation)
	}

	n := &model.Notification{
		UserID:  userID,
		Type:    typ,
		Title:   title,
		Message: message,
	}
	if err := s.store.Repos().Notifications.Create(ctx, n); err != nil {
		return fmt.Errorf("create notification: %w", err)
	}

	if s.pusher != nil {
		if err := s.pusher.Push(ctx, userID, title, message); err != nil {
			s.logger.Warn("Failed to push notification",
				zap.Int64("notification_id", n.ID),
				zap.Int64("user_id", userID),
				zap.Error(err),
			)
		}
	}

	return nil
}

// List возвращает уведомления пользователя
func (s *NotificationService) List(ctx context.Context, actor model.Actor, unreadOnly bool) ([]*model.Notification, error) {
	list, err := s.store.Repos().Notifications.ListByUser(ctx, actor.UserID, unreadOnly)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return list, nil
}

// UnreadCount считает непрочитанные уведомления пользователя
func (s *NotificationService) UnreadCount(ctx context.Context, actor model.Actor) (int, error) {
	count, err := s.store.Repos().Notifications.CountUnread(ctx, actor.UserID)
	if err != nil {
		return 0, fmt.Errorf("count unread: %w", err)
	}
	return count, nil
}

// MarkRead отмечает уведомление прочитанным. Обратного перехода нет.
func (s *NotificationService) MarkRead(ctx context.Context, notificationID int64, actor model.Actor) error {
	repo := s.store.Repos().Notifications

	n, err := repo.GetByID(ctx, notificationID)
	if err != nil {
		return fmt.Errorf("get notification: %w", err)
	}
	if n == nil {
		return fmt.Errorf("notification %d: %w", notificationID, ErrNotFound)
	}
	if n.UserID != actor.UserID {
		return fmt.Errorf("%w: notification %d belongs to another user", ErrAccessDenied, notificationID)
	}
	if n.IsRead {
		return nil
	}

	if err := repo.MarkRead(ctx, notificationID); err != nil {
		return fmt.Errorf("mark read: %w", err)
	}
	return nil
}
