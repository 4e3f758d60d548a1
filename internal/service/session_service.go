package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/tutoring_ledger/internal/model"
	"github.com/Freeeeeet/tutoring_ledger/internal/repository"
	"go.uber.org/zap"
)

type SessionService struct {
	store    repository.Transactor
	notifier Notifier
	logger   *zap.Logger
}

func NewSessionService(store repository.Transactor, notifier Notifier, logger *zap.Logger) *SessionService {
	return &SessionService{
		store:    store,
		notifier: notifier,
		logger:   logger,
	}
}

// ScheduleInput описывает новое занятие
type ScheduleInput struct {
	StudentID   int64
	TeacherID   int64
	LanguageID  int64
	Date        time.Time
	StartTime   model.Clock
	EndTime     model.Clock
	Notes       string
	MeetingLink string
}

// ScheduleSession создаёт занятие в статусе scheduled
func (s *SessionService) ScheduleSession(ctx context.Context, in ScheduleInput, actor model.Actor) (*model.Session, error) {
	if _, err := model.ComputeDurationHours(in.Date, in.StartTime, in.EndTime); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	repos := s.store.Repos()

	teacher, err := repos.Teachers.GetByID(ctx, in.TeacherID)
	if err != nil {
		return nil, fmt.Errorf("get teacher: %w", err)
	}
	if teacher == nil {
		return nil, fmt.Errorf("teacher %d: %w", in.TeacherID, ErrNotFound)
	}

	// Назначать занятия может админ или сам учитель
	switch {
	case actor.IsAdmin():
	case actor.IsTeacher() && teacher.UserID == actor.UserID:
	default:
		return nil, fmt.Errorf("%w: user %d cannot schedule sessions for teacher %d", ErrAccessDenied, actor.UserID, in.TeacherID)
	}

	if !teacher.Teaches(in.LanguageID) {
		return nil, fmt.Errorf("%w: teacher %d does not teach language %d", ErrValidation, in.TeacherID, in.LanguageID)
	}

	student, err := repos.Students.GetByID(ctx, in.StudentID)
	if err != nil {
		return nil, fmt.Errorf("get student: %w", err)
	}
	if student == nil {
		return nil, fmt.Errorf("student %d: %w", in.StudentID, ErrNotFound)
	}

	session := &model.Session{
		StudentID:   in.StudentID,
		TeacherID:   in.TeacherID,
		LanguageID:  in.LanguageID,
		Date:        in.Date,
		StartTime:   in.StartTime,
		EndTime:     in.EndTime,
		Status:      model.SessionStatusScheduled,
		Notes:       in.Notes,
		MeetingLink: in.MeetingLink,
	}

	if err := repos.Sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	s.logger.Info("Session scheduled",
		zap.Int64("session_id", session.ID),
		zap.Int64("student_id", session.StudentID),
		zap.Int64("teacher_id", session.TeacherID),
		zap.String("date", session.Date.Format("2006-01-02")),
		zap.String("start", session.StartTime.String()),
	)

	message := fmt.Sprintf("A session was scheduled on %s from %s to %s.",
		session.Date.Format("2006-01-02"), session.StartTime, session.EndTime)
	if err := s.notifier.Notify(ctx, student.UserID, model.NotificationSystem, "New session", message); err != nil {
		s.logger.Error("Failed to notify student about new session",
			zap.Int64("session_id", session.ID),
			zap.Error(err),
		)
	}

	return session, nil
}

// ListSessions возвращает занятия, видимые пользователю
func (s *SessionService) ListSessions(ctx context.Context, actor model.Actor, filter repository.SessionFilter) ([]*model.Session, error) {
	repos := s.store.Repos()

	switch actor.Role {
	case model.RoleAdmin:
	case model.RoleTeacher:
		teacher, err := repos.Teachers.GetByUserID(ctx, actor.UserID)
		if err != nil {
			return nil, fmt.Errorf("get teacher: %w", err)
		}
		if teacher == nil {
			return nil, fmt.Errorf("teacher profile for user %d: %w", actor.UserID, ErrNotFound)
		}
		filter.TeacherID = teacher.ID
	case model.RoleStudent:
		student, err := repos.Students.GetByUserID(ctx, actor.UserID)
		if err != nil {
			return nil, fmt.Errorf("get student: %w", err)
		}
		if student == nil {
			return nil, fmt.Errorf("student profile for user %d: %w", actor.UserID, ErrNotFound)
		}
		filter.StudentID = student.ID
	default:
		return nil, ErrAccessDenied
	}

	if filter.Status != "" && !filter.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown session status %q", ErrValidation, filter.Status)
	}

	sessions, err := repos.Sessions.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}
