package model

import (
	"errors"
	"fmt"
	"time"
)

type SessionStatus string

const (
	SessionStatusScheduled   SessionStatus = "scheduled"   // Запланировано
	SessionStatusCompleted   SessionStatus = "completed"   // Проведено
	SessionStatusCancelled   SessionStatus = "cancelled"   // Отменено
	SessionStatusRescheduled SessionStatus = "rescheduled" // Перенесено
	SessionStatusAbsent      SessionStatus = "absent"      // Студент не пришёл
)

// Valid проверяет, что статус из допустимого списка
func (s SessionStatus) Valid() bool {
	switch s {
	case SessionStatusScheduled, SessionStatusCompleted, SessionStatusCancelled,
		SessionStatusRescheduled, SessionStatusAbsent:
		return true
	}
	return false
}

var (
	ErrInvalidTimeRange = errors.New("start time must be before end time")
	ErrInvalidClock     = errors.New("invalid time of day")
)

// Clock - время суток как смещение от полуночи.
type Clock time.Duration

// NewClock собирает Clock из часов и минут
func NewClock(hour, minute int) Clock {
	return Clock(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
}

// ParseClock разбирает "15:04" или "15:04:05". Секунды должны быть нулевыми:
// баланс ведётся в целых минутах.
func ParseClock(raw string) (Clock, error) {
	for _, layout := range []string{"15:04", "15:04:05"} {
		t, err := time.Parse(layout, raw)
		if err != nil {
			continue
		}
		if t.Second() != 0 {
			return 0, fmt.Errorf("%w: %q has seconds", ErrInvalidClock, raw)
		}
		return NewClock(t.Hour(), t.Minute()), nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidClock, raw)
}

// Valid - целое число минут в пределах суток
func (c Clock) Valid() bool {
	d := time.Duration(c)
	return d >= 0 && d < 24*time.Hour && d%time.Minute == 0
}

func (c Clock) String() string {
	d := time.Duration(c)
	return fmt.Sprintf("%02d:%02d", int(d.Hours()), int(d.Minutes())%60)
}

type Session struct {
	ID            int64         `json:"id"`
	StudentID     int64         `json:"student_id"`
	TeacherID     int64         `json:"teacher_id"`
	LanguageID    int64         `json:"language_id"`
	Date          time.Time     `json:"date"`
	StartTime     Clock         `json:"start_time"`
	EndTime       Clock         `json:"end_time"`
	Status        SessionStatus `json:"status"`
	Notes         string        `json:"notes"`
	Feedback      string        `json:"feedback"`
	MeetingLink   string        `json:"meeting_link"`
	BilledMinutes int           `json:"billed_minutes"`
	BilledAt      *time.Time    `json:"billed_at"` // nil - часы ещё не списаны
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// IsBilled - часы за занятие уже списаны
func (s *Session) IsBilled() bool {
	return s.BilledAt != nil
}

// StartsAt объединяет дату занятия и время начала
func (s *Session) StartsAt() time.Time {
	y, m, d := s.Date.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, s.Date.Location()).Add(time.Duration(s.StartTime))
}

// DurationMinutes возвращает длительность в минутах
func (s *Session) DurationMinutes() (int, error) {
	d, err := sessionDuration(s.StartTime, s.EndTime)
	if err != nil {
		return 0, err
	}
	return int(d / time.Minute), nil
}

// DurationHours возвращает длительность в часах, с дробной частью
func (s *Session) DurationHours() (float64, error) {
	return ComputeDurationHours(s.Date, s.StartTime, s.EndTime)
}

// ComputeDurationHours возвращает (end - start) в часах.
// Принимаются только интервалы внутри одного дня, начало строго раньше конца.
func ComputeDurationHours(date time.Time, start, end Clock) (float64, error) {
	if _, err := sessionDuration(start, end); err != nil {
		return 0, err
	}
	y, m, day := date.Date()
	base := time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
	return base.Add(time.Duration(end)).Sub(base.Add(time.Duration(start))).Hours(), nil
}

func sessionDuration(start, end Clock) (time.Duration, error) {
	if !start.Valid() || !end.Valid() {
		return 0, ErrInvalidClock
	}
	if start >= end {
		return 0, ErrInvalidTimeRange
	}
	return time.Duration(end - start), nil
}

func (c Clock) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Clock) UnmarshalText(text []byte) error {
	parsed, err := ParseClock(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
