package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/tutoring_ledger/internal/model"
	"github.com/Freeeeeet/tutoring_ledger/internal/repository/base"
)

type StudentRepository struct {
	*base.Repository
}

func NewStudentRepository(db base.DBTX) *StudentRepository {
	return &StudentRepository{Repository: base.NewRepository(db)}
}

const studentColumns = `id, user_id, matricule, total_hours_purchased, total_minutes_used, date_joined`

// Create создаёт профиль студента
func (r *StudentRepository) Create(ctx context.Context, student *model.Student) error {
	query := `
		INSERT INTO students (user_id, matricule, total_hours_purchased, total_minutes_used)
		VALUES ($1, $2, $3, $4)
		RETURNING id, date_joined
	`

	err := r.QueryRow(
		ctx, query,
		student.UserID,
		student.Matricule,
		student.TotalHoursPurchased,
		student.TotalMinutesUsed,
	).Scan(&student.ID, &student.DateJoined)

	if err != nil {
		return fmt.Errorf("create student: %w", err)
	}

	return nil
}

// GetByID получает студента по ID
func (r *StudentRepository) GetByID(ctx context.Context, id int64) (*model.Student, error) {
	return r.getOne(ctx, `SELECT `+studentColumns+` FROM students WHERE id = $1`, id)
}

// GetByIDForUpdate получает студента и блокирует строку до конца транзакции
func (r *StudentRepository) GetByIDForUpdate(ctx context.Context, id int64) (*model.Student, error) {
	return r.getOne(ctx, `SELECT `+studentColumns+` FROM students WHERE id = $1 FOR UPDATE`, id)
}

// GetByUserID получает студента по ID пользователя
func (r *StudentRepository) GetByUserID(ctx context.Context, userID int64) (*model.Student, error) {
	return r.getOne(ctx, `SELECT `+studentColumns+` FROM students WHERE user_id = $1`, userID)
}

func (r *StudentRepository) getOne(ctx context.Context, query string, arg int64) (*model.Student, error) {
	var s model.Student
	err := r.QueryRow(ctx, query, arg).Scan(
		&s.ID,
		&s.UserID,
		&s.Matricule,
		&s.TotalHoursPurchased,
		&s.TotalMinutesUsed,
		&s.DateJoined,
	)
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get student: %w", err)
	}
	return &s, nil
}

// LastMatricule возвращает последний выданный матрикул с данным префиксом
func (r *StudentRepository) LastMatricule(ctx context.Context, prefix string) (string, error) {
	query := `
		SELECT matricule
		FROM students
		WHERE matricule LIKE $1 || '%'
		ORDER BY length(matricule) DESC, matricule DESC
		LIMIT 1
	`

	var matricule string
	err := r.QueryRow(ctx, query, prefix).Scan(&matricule)
	if err != nil {
		if base.IsNotFound(err) {
			return "", nil
		}
		return "", fmt.Errorf("get last matricule: %w", err)
	}

	return matricule, nil
}

// AddMinutesUsed увеличивает счётчик использованных минут
func (r *StudentRepository) AddMinutesUsed(ctx context.Context, id int64, minutes int) error {
	query := `
		UPDATE students
		SET total_minutes_used = total_minutes_used + $1
		WHERE id = $2
	`

	affected, err := r.ExecAffected(ctx, query, minutes, id)
	if err != nil {
		return fmt.Errorf("add minutes used: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("add minutes used: student %d: %w", id, ErrNotFound)
	}

	return nil
}

// AddHoursPurchased увеличивает счётчик купленных часов
func (r *StudentRepository) AddHoursPurchased(ctx context.Context, id int64, hours int) error {
	query := `
		UPDATE students
		SET total_hours_purchased = total_hours_purchased + $1
		WHERE id = $2
	`

	affected, err := r.ExecAffected(ctx, query, hours, id)
	if err != nil {
		return fmt.Errorf("add hours purchased: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("add hours purchased: student %d: %w", id, ErrNotFound)
	}

	return nil
}
