package service

import (
	"errors"
	"fmt"
)

var (
	ErrValidation        = errors.New("validation error")
	ErrAccessDenied      = errors.New("access denied")
	ErrInsufficientHours = errors.New("insufficient hours")
	ErrNotFound          = errors.New("not found")
	ErrInvalidState      = errors.New("invalid state")
)

// InsufficientHoursError возвращается, если после завершения занятия
// остаток часов студента стал бы отрицательным.
type InsufficientHoursError struct {
	StudentID        int64
	RemainingMinutes int
	RequiredMinutes  int
}

func (e *InsufficientHoursError) Error() string {
	return fmt.Sprintf("insufficient hours: student %d has %.2fh remaining, session needs %.2fh",
		e.StudentID, float64(e.RemainingMinutes)/60, float64(e.RequiredMinutes)/60)
}

func (e *InsufficientHoursError) Is(target error) bool {
	return target == ErrInsufficientHours
}
