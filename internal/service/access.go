package service

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/tutoring_ledger/internal/model"
	"github.com/Freeeeeet/tutoring_ledger/internal/repository"
)

// AccessPolicy проверяет, что пользователь - учитель этого занятия.
type AccessPolicy interface {
	IsOwningTeacher(ctx context.Context, actor model.Actor, session *model.Session) (bool, error)
}

// TeacherOwnership находит профиль учителя пользователя и сравнивает с учителем занятия
type TeacherOwnership struct {
	teachers repository.TeacherStore
}

func NewTeacherOwnership(teachers repository.TeacherStore) *TeacherOwnership {
	return &TeacherOwnership{teachers: teachers}
}

func (p *TeacherOwnership) IsOwningTeacher(ctx context.Context, actor model.Actor, session *model.Session) (bool, error) {
	if !actor.IsTeacher() {
		return false, nil
	}

	teacher, err := p.teachers.GetByUserID(ctx, actor.UserID)
	if err != nil {
		return false, fmt.Errorf("get teacher: %w", err)
	}

	return teacher != nil && teacher.ID == session.TeacherID, nil
}

// Notifier доставляет уведомление пользователю. Доставка не гарантируется.
type Notifier interface {
	Notify(ctx context.Context, userID int64, typ model.NotificationType, title, message string) error
}
