package model

import "time"

type Language struct {
	ID          int64  `json:"id"`
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description"`
	IsActive    bool   `json:"is_active"`
}

type Teacher struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	Speciality  string    `json:"speciality"`
	HourlyRate  int64     `json:"hourly_rate"` // в копейках/центах
	IsAvailable bool      `json:"is_available"`
	LanguageIDs []int64   `json:"language_ids"`
	DateJoined  time.Time `json:"date_joined"`
}

// Teaches проверяет, ведёт ли учитель язык.
// Учитель без указанных языков ведёт любой.
func (t *Teacher) Teaches(languageID int64) bool {
	if len(t.LanguageIDs) == 0 {
		return true
	}
	for _, id := range t.LanguageIDs {
		if id == languageID {
			return true
		}
	}
	return false
}
