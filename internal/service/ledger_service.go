package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Freeeeeet/tutoring_ledger/internal/metrics"
	"github.com/Freeeeeet/tutoring_ledger/internal/model"
	"github.com/Freeeeeet/tutoring_ledger/internal/repository"
	"go.uber.org/zap"
)

// LedgerService меняет статусы занятий и ведёт баланс часов студентов.
type LedgerService struct {
	store    repository.Transactor
	access   AccessPolicy
	notifier Notifier
	logger   *zap.Logger
	now      func() time.Time
}

func NewLedgerService(
	store repository.Transactor,
	access AccessPolicy,
	notifier Notifier,
	logger *zap.Logger,
) *LedgerService {
	return &LedgerService{
		store:    store,
		access:   access,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// TransitionResult - результат успешной смены статуса
type TransitionResult struct {
	Session *model.Session
	Balance model.Balance
	// Billed - часы списаны именно этим вызовом
	Billed bool
}

// Transition устанавливает новый статус занятия. Завершение списывает длительность
// с баланса студента один раз, повторные завершения баланс не меняют.
func (s *LedgerService) Transition(ctx context.Context, sessionID int64, status model.SessionStatus, actor model.Actor) (*TransitionResult, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown session status %q", ErrValidation, status)
	}

	if _, err := s.authorize(ctx, sessionID, actor); err != nil {
		return nil, err
	}

	var (
		result   TransitionResult
		previous model.SessionStatus
		student  *model.Student
	)

	err := s.store.WithTx(ctx, func(r *repository.Repos) error {
		// Блокируем занятие, затем студента - порядок одинаковый для всех операций
		session, err := r.Sessions.GetByIDForUpdate(ctx, sessionID)
		if err != nil {
			return fmt.Errorf("get session: %w", err)
		}
		if session == nil {
			return fmt.Errorf("session %d: %w", sessionID, ErrNotFound)
		}
		previous = session.Status

		if status == model.SessionStatusCompleted && !session.IsBilled() {
			if err := s.bill(ctx, r, session); err != nil {
				return err
			}
			result.Billed = true
		}

		if previous != status {
			if err := r.Sessions.UpdateStatus(ctx, sessionID, status); err != nil {
				return fmt.Errorf("update session status: %w", err)
			}
		}

		session, err = r.Sessions.GetByID(ctx, sessionID)
		if err != nil {
			return fmt.Errorf("reload session: %w", err)
		}
		student, err = r.Students.GetByID(ctx, session.StudentID)
		if err != nil {
			return fmt.Errorf("reload student: %w", err)
		}
		if student == nil {
			return fmt.Errorf("student %d: %w", session.StudentID, ErrNotFound)
		}

		result.Session = session
		result.Balance = student.Balance()
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrInsufficientHours) {
			metrics.InsufficientHours.Inc()
		}
		s.logger.Warn("Session transition rejected",
			zap.Int64("session_id", sessionID),
			zap.String("status", string(status)),
			zap.Int64("actor_id", actor.UserID),
			zap.Error(err),
		)
		return nil, err
	}

	metrics.SessionTransitions.WithLabelValues(string(status)).Inc()
	if result.Billed {
		metrics.MinutesDeducted.Add(float64(result.Session.BilledMinutes))
	}

	s.logger.Info("Session status changed",
		zap.Int64("session_id", sessionID),
		zap.String("from", string(previous)),
		zap.String("to", string(status)),
		zap.Bool("billed", result.Billed),
		zap.Int64("student_id", result.Balance.StudentID),
		zap.Float64("hours_remaining", result.Balance.HoursRemaining()),
	)

	if previous != status {
		s.notifyStatusChange(ctx, student.UserID, result.Session)
	}

	return &result, nil
}

// CompleteSession завершает занятие и возвращает новый баланс
func (s *LedgerService) CompleteSession(ctx context.Context, sessionID int64, actor model.Actor) (model.Balance, error) {
	result, err := s.Transition(ctx, sessionID, model.SessionStatusCompleted, actor)
	if err != nil {
		return model.Balance{}, err
	}
	return result.Balance, nil
}

// bill списывает длительность занятия с заблокированного баланса студента
func (s *LedgerService) bill(ctx context.Context, r *repository.Repos, session *model.Session) error {
	minutes, err := session.DurationMinutes()
	if err != nil {
		return fmt.Errorf("%w: session %d: %v", ErrValidation, session.ID, err)
	}

	student, err := r.Students.GetByIDForUpdate(ctx, session.StudentID)
	if err != nil {
		return fmt.Errorf("get student: %w", err)
	}
	if student == nil {
		return fmt.Errorf("student %d: %w", session.StudentID, ErrNotFound)
	}

	if remaining := student.RemainingMinutes(); remaining < minutes {
		return &InsufficientHoursError{
			StudentID:        student.ID,
			RemainingMinutes: remaining,
			RequiredMinutes:  minutes,
		}
	}

	if err := r.Students.AddMinutesUsed(ctx, student.ID, minutes); err != nil {
		return fmt.Errorf("add minutes used: %w", err)
	}
	if err := r.Sessions.MarkBilled(ctx, session.ID, minutes, s.now()); err != nil {
		return fmt.Errorf("mark session billed: %w", err)
	}

	return nil
}

// AttachFeedback перезаписывает отзыв о занятии, доступно только его учителю
func (s *LedgerService) AttachFeedback(ctx context.Context, sessionID int64, text string, actor model.Actor) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("%w: feedback is empty", ErrValidation)
	}

	if _, err := s.authorize(ctx, sessionID, actor); err != nil {
		return err
	}

	if err := s.store.Repos().Sessions.UpdateFeedback(ctx, sessionID, text); err != nil {
		return fmt.Errorf("update feedback: %w", err)
	}

	s.logger.Info("Session feedback saved",
		zap.Int64("session_id", sessionID),
		zap.Int64("actor_id", actor.UserID),
	)

	return nil
}

// Balance возвращает текущий баланс часов студента
func (s *LedgerService) Balance(ctx context.Context, studentID int64) (model.Balance, error) {
	student, err := s.store.Repos().Students.GetByID(ctx, studentID)
	if err != nil {
		return model.Balance{}, fmt.Errorf("get student: %w", err)
	}
	if student == nil {
		return model.Balance{}, fmt.Errorf("student %d: %w", studentID, ErrNotFound)
	}
	return student.Balance(), nil
}

// BalanceFor возвращает баланс, если пользователю можно его видеть: админы и
// учителя видят любого студента, студент только себя.
func (s *LedgerService) BalanceFor(ctx context.Context, studentID int64, actor model.Actor) (model.Balance, error) {
	if actor.IsStudent() {
		own, err := s.store.Repos().Students.GetByUserID(ctx, actor.UserID)
		if err != nil {
			return model.Balance{}, fmt.Errorf("get student: %w", err)
		}
		if own == nil || own.ID != studentID {
			return model.Balance{}, fmt.Errorf("%w: user %d cannot view student %d", ErrAccessDenied, actor.UserID, studentID)
		}
	} else if !actor.IsAdmin() && !actor.IsTeacher() {
		return model.Balance{}, ErrAccessDenied
	}
	return s.Balance(ctx, studentID)
}

// HoursRemaining возвращает остаток часов
func (s *LedgerService) HoursRemaining(ctx context.Context, studentID int64) (float64, error) {
	b, err := s.Balance(ctx, studentID)
	if err != nil {
		return 0, err
	}
	return b.HoursRemaining(), nil
}

// DurationHours возвращает длительность занятия в часах
func (s *LedgerService) DurationHours(ctx context.Context, sessionID int64) (float64, error) {
	session, err := s.store.Repos().Sessions.GetByID(ctx, sessionID)
	if err != nil {
		return 0, fmt.Errorf("get session: %w", err)
	}
	if session == nil {
		return 0, fmt.Errorf("session %d: %w", sessionID, ErrNotFound)
	}

	hours, err := session.DurationHours()
	if err != nil {
		return 0, fmt.Errorf("%w: session %d: %v", ErrValidation, sessionID, err)
	}
	return hours, nil
}

// authorize загружает занятие и проверяет, что пользователь - его учитель
func (s *LedgerService) authorize(ctx context.Context, sessionID int64, actor model.Actor) (*model.Session, error) {
	session, err := s.store.Repos().Sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if session == nil {
		return nil, fmt.Errorf("session %d: %w", sessionID, ErrNotFound)
	}

	ok, err := s.access.IsOwningTeacher(ctx, actor, session)
	if err != nil {
		return nil, fmt.Errorf("check session owner: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: user %d is not the teacher of session %d", ErrAccessDenied, actor.UserID, sessionID)
	}

	return session, nil
}

func (s *LedgerService) notifyStatusChange(ctx context.Context, userID int64, session *model.Session) {
	title := "Session " + statusLabel(session.Status)
	message := fmt.Sprintf("Your session on %s at %s is now %s.",
		session.Date.Format("2006-01-02"), session.StartTime, statusLabel(session.Status))

	if err := s.notifier.Notify(ctx, userID, model.NotificationSystem, title, message); err != nil {
		metrics.NotificationFailures.Inc()
		s.logger.Error("Failed to notify student about session status",
			zap.Int64("session_id", session.ID),
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
	}
}

func statusLabel(status model.SessionStatus) string {
	switch status {
	case model.SessionStatusScheduled:
		return "scheduled"
	case model.SessionStatusCompleted:
		return "completed"
	case model.SessionStatusCancelled:
		return "cancelled"
	case model.SessionStatusRescheduled:
		return "rescheduled"
	case model.SessionStatusAbsent:
		return "marked absent"
	default:
		return string(status)
	}
}
