package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/tutoring_ledger/internal/metrics"
	"github.com/Freeeeeet/tutoring_ledger/internal/model"
	"github.com/Freeeeeet/tutoring_ledger/internal/repository"
	"go.uber.org/zap"
)

// ReminderMarker запоминает занятия, по которым напоминание уже ушло.
// MarkSent возвращает false, если отметка уже есть. Release снимает отметку,
// чтобы следующий запуск попробовал снова.
type ReminderMarker interface {
	MarkSent(ctx context.Context, sessionID int64) (bool, error)
	Release(ctx context.Context, sessionID int64) error
}

type ReminderService struct {
	store    repository.Transactor
	notifier Notifier
	marker   ReminderMarker
	logger   *zap.Logger
	now      func() time.Time
}

func NewReminderService(store repository.Transactor, notifier Notifier, marker ReminderMarker, logger *zap.Logger) *ReminderService {
	return &ReminderService{
		store:    store,
		notifier: notifier,
		marker:   marker,
		logger:   logger,
		now:      time.Now,
	}
}

// SendReminders уведомляет студентов и учителей о занятиях на завтра (по UTC).
// Возвращает количество занятий, по которым доставлено хотя бы одно напоминание.
func (s *ReminderService) SendReminders(ctx context.Context) (int, error) {
	y, m, d := s.now().UTC().Date()
	tomorrow := time.Date(y, m, d+1, 0, 0, 0, 0, time.UTC)

	repos := s.store.Repos()
	sessions, err := repos.Sessions.List(ctx, repository.SessionFilter{
		Status: model.SessionStatusScheduled,
		Date:   &tomorrow,
	})
	if err != nil {
		return 0, fmt.Errorf("list tomorrow sessions: %w", err)
	}

	sent := 0
	for _, session := range sessions {
		first, err := s.marker.MarkSent(ctx, session.ID)
		if err != nil {
			s.logger.Error("Failed to mark reminder", zap.Int64("session_id", session.ID), zap.Error(err))
			continue
		}
		if !first {
			continue
		}

		recipients, err := s.recipients(ctx, repos, session)
		if err != nil {
			s.logger.Error("Failed to resolve reminder recipients", zap.Int64("session_id", session.ID), zap.Error(err))
			s.release(ctx, session.ID)
			continue
		}

		message := fmt.Sprintf("Reminder: session tomorrow (%s) from %s to %s.",
			session.Date.Format("2006-01-02"), session.StartTime, session.EndTime)
		if session.MeetingLink != "" {
			message += " Link: " + session.MeetingLink
		}

		delivered := 0
		for _, userID := range recipients {
			if err := s.notifier.Notify(ctx, userID, model.NotificationSessionReminder, "Session reminder", message); err != nil {
				metrics.NotificationFailures.Inc()
				s.logger.Error("Failed to send reminder",
					zap.Int64("session_id", session.ID),
					zap.Int64("user_id", userID),
					zap.Error(err),
				)
				continue
			}
			delivered++
		}

		if delivered == 0 {
			s.release(ctx, session.ID)
			continue
		}

		metrics.RemindersSent.Inc()
		sent++
	}

	s.logger.Info("Session reminders processed",
		zap.Int("sessions", len(sessions)),
		zap.Int("sent", sent),
	)

	return sent, nil
}

// release снимает отметку, если ни одно напоминание не доставлено
func (s *ReminderService) release(ctx context.Context, sessionID int64) {
	if err := s.marker.Release(ctx, sessionID); err != nil {
		s.logger.Error("Failed to release reminder mark", zap.Int64("session_id", sessionID), zap.Error(err))
	}
}

func (s *ReminderService) recipients(ctx context.Context, repos *repository.Repos, session *model.Session) ([]int64, error) {
	student, err := repos.Students.GetByID(ctx, session.StudentID)
	if err != nil {
		return nil, fmt.Errorf("get student: %w", err)
	}
	teacher, err := repos.Teachers.GetByID(ctx, session.TeacherID)
	if err != nil {
		return nil, fmt.Errorf("get teacher: %w", err)
	}

	var ids []int64
	if student != nil {
		ids = append(ids, student.UserID)
	}
	if teacher != nil {
		ids = append(ids, teacher.UserID)
	}
	return ids, nil
}
