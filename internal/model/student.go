package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

type Student struct {
	ID                  int64     `json:"id"`
	UserID              int64     `json:"user_id"`
	Matricule           string    `json:"matricule"`
	TotalHoursPurchased int       `json:"total_hours_purchased"`
	TotalMinutesUsed    int       `json:"total_minutes_used"`
	DateJoined          time.Time `json:"date_joined"`
}

// RemainingMinutes - купленное минус использованное, в минутах
func (s *Student) RemainingMinutes() int {
	return s.TotalHoursPurchased*60 - s.TotalMinutesUsed
}

// Balance возвращает снимок счётчиков часов студента
func (s *Student) Balance() Balance {
	return Balance{
		StudentID:      s.ID,
		HoursPurchased: s.TotalHoursPurchased,
		MinutesUsed:    s.TotalMinutesUsed,
	}
}

// Balance - купленные и использованные часы на момент чтения.
type Balance struct {
	StudentID      int64 `json:"student_id"`
	HoursPurchased int   `json:"total_hours_purchased"`
	MinutesUsed    int   `json:"total_minutes_used"`
}

func (b Balance) HoursUsed() float64 {
	return float64(b.MinutesUsed) / 60
}

func (b Balance) HoursRemaining() float64 {
	return float64(b.HoursPurchased) - b.HoursUsed()
}

// MatriculePrefix возвращает "<школа>-<год>-"
func MatriculePrefix(school string, year int) string {
	return fmt.Sprintf("%s-%d-", school, year)
}

// NextMatricule возвращает номер, следующий за last (last может быть пустым).
// Порядковый номер дополняется нулями до трёх цифр.
func NextMatricule(school string, year int, last string) (string, error) {
	prefix := MatriculePrefix(school, year)
	next := 1
	if last != "" {
		if !strings.HasPrefix(last, prefix) {
			return "", fmt.Errorf("matricule %q does not match prefix %q", last, prefix)
		}
		n, err := strconv.Atoi(strings.TrimPrefix(last, prefix))
		if err != nil {
			return "", fmt.Errorf("parse matricule sequence %q: %w", last, err)
		}
		next = n + 1
	}
	return fmt.Sprintf("%s%03d", prefix, next), nil
}
