package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Freeeeeet/tutoring_ledger/internal/model"
	"github.com/Freeeeeet/tutoring_ledger/internal/repository/base"
	"github.com/jackc/pgx/v5/pgtype"
)

type SessionRepository struct {
	*base.Repository
}

func NewSessionRepository(db base.DBTX) *SessionRepository {
	return &SessionRepository{Repository: base.NewRepository(db)}
}

const sessionColumns = `s.id, s.student_id, s.teacher_id, s.language_id, s.date, s.start_time, s.end_time,
	s.status, s.notes, s.feedback, s.meeting_link, s.billed_minutes, s.billed_at, s.created_at, s.updated_at`

// Create создаёт новое занятие
func (r *SessionRepository) Create(ctx context.Context, session *model.Session) error {
	query := `
		INSERT INTO sessions (student_id, teacher_id, language_id, date, start_time, end_time, status, notes, meeting_link)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`

	err := r.QueryRow(
		ctx, query,
		session.StudentID,
		session.TeacherID,
		session.LanguageID,
		session.Date,
		clockToPg(session.StartTime),
		clockToPg(session.EndTime),
		session.Status,
		session.Notes,
		session.MeetingLink,
	).Scan(&session.ID, &session.CreatedAt, &session.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}

	return nil
}

// GetByID получает занятие по ID
func (r *SessionRepository) GetByID(ctx context.Context, id int64) (*model.Session, error) {
	return r.getOne(ctx, `SELECT `+sessionColumns+` FROM sessions s WHERE s.id = $1`, id)
}

// GetByIDForUpdate получает занятие и блокирует строку до конца транзакции
func (r *SessionRepository) GetByIDForUpdate(ctx context.Context, id int64) (*model.Session, error) {
	return r.getOne(ctx, `SELECT `+sessionColumns+` FROM sessions s WHERE s.id = $1 FOR UPDATE`, id)
}

func (r *SessionRepository) getOne(ctx context.Context, query string, id int64) (*model.Session, error) {
	session, err := scanSession(r.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get session by id: %w", err)
	}
	return session, nil
}

// List получает занятия по фильтру, новые первыми
func (r *SessionRepository) List(ctx context.Context, filter SessionFilter) ([]*model.Session, error) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if filter.StudentID != 0 {
		add("s.student_id = $%d", filter.StudentID)
	}
	if filter.TeacherID != 0 {
		add("s.teacher_id = $%d", filter.TeacherID)
	}
	if filter.Status != "" {
		add("s.status = $%d", filter.Status)
	}
	if filter.Date != nil {
		add("s.date = $%d", *filter.Date)
	}
	if filter.LanguageCode != "" {
		add("l.code = $%d", filter.LanguageCode)
	}

	query := `SELECT ` + sessionColumns + ` FROM sessions s JOIN languages l ON l.id = s.language_id`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY s.date DESC, s.start_time DESC`

	rows, err := r.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*model.Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, session)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}

	return sessions, nil
}

// UpdateStatus обновляет статус занятия
func (r *SessionRepository) UpdateStatus(ctx context.Context, id int64, status model.SessionStatus) error {
	query := `
		UPDATE sessions
		SET status = $1, updated_at = now()
		WHERE id = $2
	`

	affected, err := r.ExecAffected(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("update session status: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("update session status: session %d: %w", id, ErrNotFound)
	}

	return nil
}

// MarkBilled фиксирует списание часов за занятие; повторное списание невозможно
func (r *SessionRepository) MarkBilled(ctx context.Context, id int64, minutes int, at time.Time) error {
	query := `
		UPDATE sessions
		SET billed_minutes = $1, billed_at = $2, updated_at = now()
		WHERE id = $3 AND billed_at IS NULL
	`

	affected, err := r.ExecAffected(ctx, query, minutes, at, id)
	if err != nil {
		return fmt.Errorf("mark session billed: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("mark session billed: session %d already billed or missing: %w", id, ErrNotFound)
	}

	return nil
}

// UpdateFeedback перезаписывает отзыв учителя
func (r *SessionRepository) UpdateFeedback(ctx context.Context, id int64, feedback string) error {
	query := `
		UPDATE sessions
		SET feedback = $1, updated_at = now()
		WHERE id = $2
	`

	affected, err := r.ExecAffected(ctx, query, feedback, id)
	if err != nil {
		return fmt.Errorf("update session feedback: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("update session feedback: session %d: %w", id, ErrNotFound)
	}

	return nil
}

func scanSession(row rowScanner) (*model.Session, error) {
	var (
		s          model.Session
		start, end pgtype.Time
	)
	err := row.Scan(
		&s.ID,
		&s.StudentID,
		&s.TeacherID,
		&s.LanguageID,
		&s.Date,
		&start,
		&end,
		&s.Status,
		&s.Notes,
		&s.Feedback,
		&s.MeetingLink,
		&s.BilledMinutes,
		&s.BilledAt,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	s.StartTime = clockFromPg(start)
	s.EndTime = clockFromPg(end)
	return &s, nil
}

func clockToPg(c model.Clock) pgtype.Time {
	return base.ToPgTime(time.Duration(c).Microseconds())
}

func clockFromPg(t pgtype.Time) model.Clock {
	return model.Clock(time.Duration(t.Microseconds) * time.Microsecond)
}
