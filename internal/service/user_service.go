package service

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/tutoring_ledger/internal/model"
	"github.com/Freeeeeet/tutoring_ledger/internal/repository"
	"go.uber.org/zap"
)

type UserService struct {
	store  repository.Transactor
	logger *zap.Logger
}

func NewUserService(store repository.Transactor, logger *zap.Logger) *UserService {
	return &UserService{
		store:  store,
		logger: logger,
	}
}

// GetByTelegramID получает пользователя по Telegram ID
func (s *UserService) GetByTelegramID(ctx context.Context, telegramID int64) (*model.User, error) {
	return s.store.Repos().Users.GetByTelegramID(ctx, telegramID)
}

// GetByID получает пользователя по ID
func (s *UserService) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return s.store.Repos().Users.GetByID(ctx, id)
}

// StudentProfile возвращает профиль студента для пользователя
func (s *UserService) StudentProfile(ctx context.Context, userID int64) (*model.Student, error) {
	student, err := s.store.Repos().Students.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get student: %w", err)
	}
	if student == nil {
		return nil, fmt.Errorf("student profile for user %d: %w", userID, ErrNotFound)
	}
	return student, nil
}
