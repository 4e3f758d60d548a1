package model

import (
	"fmt"
	"time"
)

// Role - роль пользователя, определяется один раз при проверке доступа.
type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
	RoleAdmin   Role = "admin"
)

// ParseRole преобразует строку в Role
func ParseRole(raw string) (Role, error) {
	switch r := Role(raw); r {
	case RoleStudent, RoleTeacher, RoleAdmin:
		return r, nil
	default:
		return "", fmt.Errorf("unknown role %q", raw)
	}
}

type User struct {
	ID         int64     `json:"id"`
	TelegramID *int64    `json:"telegram_id"` // nil - пользователь не привязал Telegram
	Username   string    `json:"username"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	Role       Role      `json:"role"`
	CreatedAt  time.Time `json:"created_at"`
}

// FullName возвращает "Имя Фамилия", иначе username
func (u *User) FullName() string {
	name := u.FirstName
	if u.LastName != "" {
		if name != "" {
			name += " "
		}
		name += u.LastName
	}
	if name == "" {
		return u.Username
	}
	return name
}

// Actor - аутентифицированный пользователь, выполняющий операцию.
type Actor struct {
	UserID int64
	Role   Role
}

func (a Actor) IsAdmin() bool   { return a.Role == RoleAdmin }
func (a Actor) IsTeacher() bool { return a.Role == RoleTeacher }
func (a Actor) IsStudent() bool { return a.Role == RoleStudent }
