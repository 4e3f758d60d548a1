package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/tutoring_ledger/internal/model"
	"github.com/Freeeeeet/tutoring_ledger/internal/repository/base"
)

type TeacherRepository struct {
	*base.Repository
}

func NewTeacherRepository(db base.DBTX) *TeacherRepository {
	return &TeacherRepository{Repository: base.NewRepository(db)}
}

const teacherQuery = `
	SELECT t.id, t.user_id, t.speciality, t.hourly_rate, t.is_available, t.date_joined,
	       COALESCE(array_agg(tl.language_id) FILTER (WHERE tl.language_id IS NOT NULL), '{}')
	FROM teachers t
	LEFT JOIN teacher_languages tl ON tl.teacher_id = t.id
`

// GetByID получает учителя по ID вместе с языками
func (r *TeacherRepository) GetByID(ctx context.Context, id int64) (*model.Teacher, error) {
	return r.getOne(ctx, teacherQuery+` WHERE t.id = $1 GROUP BY t.id`, id)
}

// GetByUserID получает учителя по ID пользователя
func (r *TeacherRepository) GetByUserID(ctx context.Context, userID int64) (*model.Teacher, error) {
	return r.getOne(ctx, teacherQuery+` WHERE t.user_id = $1 GROUP BY t.id`, userID)
}

func (r *TeacherRepository) getOne(ctx context.Context, query string, arg int64) (*model.Teacher, error) {
	var t model.Teacher
	err := r.QueryRow(ctx, query, arg).Scan(
		&t.ID,
		&t.UserID,
		&t.Speciality,
		&t.HourlyRate,
		&t.IsAvailable,
		&t.DateJoined,
		&t.LanguageIDs,
	)
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get teacher: %w", err)
	}
	return &t, nil
}
