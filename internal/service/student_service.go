package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/tutoring_ledger/internal/model"
	"github.com/Freeeeeet/tutoring_ledger/internal/repository"
	"go.uber.org/zap"
)

type StudentService struct {
	store  repository.Transactor
	school string
	logger *zap.Logger
	now    func() time.Time
}

func NewStudentService(store repository.Transactor, school string, logger *zap.Logger) *StudentService {
	return &StudentService{
		store:  store,
		school: school,
		logger: logger,
		now:    time.Now,
	}
}

// RegisterStudent создаёт профиль студента с новым матрикулом
func (s *StudentService) RegisterStudent(ctx context.Context, userID int64, actor model.Actor) (*model.Student, error) {
	if !actor.IsAdmin() {
		return nil, fmt.Errorf("%w: only admins register students", ErrAccessDenied)
	}

	var student *model.Student
	err := s.store.WithTx(ctx, func(r *repository.Repos) error {
		user, err := r.Users.GetByID(ctx, userID)
		if err != nil {
			return fmt.Errorf("get user: %w", err)
		}
		if user == nil {
			return fmt.Errorf("user %d: %w", userID, ErrNotFound)
		}
		if user.Role != model.RoleStudent {
			return fmt.Errorf("%w: user %d has role %s", ErrValidation, userID, user.Role)
		}

		existing, err := r.Students.GetByUserID(ctx, userID)
		if err != nil {
			return fmt.Errorf("get student: %w", err)
		}
		if existing != nil {
			return fmt.Errorf("%w: user %d already has a student profile", ErrInvalidState, userID)
		}

		year := s.now().Year()
		last, err := r.Students.LastMatricule(ctx, model.MatriculePrefix(s.school, year))
		if err != nil {
			return fmt.Errorf("get last matricule: %w", err)
		}
		matricule, err := model.NextMatricule(s.school, year, last)
		if err != nil {
			return fmt.Errorf("next matricule: %w", err)
		}

		student = &model.Student{UserID: userID, Matricule: matricule}
		if err := r.Students.Create(ctx, student); err != nil {
			return fmt.Errorf("create student: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Student registered",
		zap.Int64("student_id", student.ID),
		zap.Int64("user_id", userID),
		zap.String("matricule", student.Matricule),
	)

	return student, nil
}
