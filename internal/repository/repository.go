package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Freeeeeet/tutoring_ledger/internal/model"
)

// ErrNotFound возвращается при обновлении несуществующей строки
var ErrNotFound = errors.New("record not found")

// Get-методы возвращают (nil, nil), если записи нет.

type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByTelegramID(ctx context.Context, telegramID int64) (*model.User, error)
}

type StudentStore interface {
	Create(ctx context.Context, student *model.Student) error
	GetByID(ctx context.Context, id int64) (*model.Student, error)
	GetByIDForUpdate(ctx context.Context, id int64) (*model.Student, error)
	GetByUserID(ctx context.Context, userID int64) (*model.Student, error)
	LastMatricule(ctx context.Context, prefix string) (string, error)
	AddMinutesUsed(ctx context.Context, id int64, minutes int) error
	AddHoursPurchased(ctx context.Context, id int64, hours int) error
}

type TeacherStore interface {
	GetByID(ctx context.Context, id int64) (*model.Teacher, error)
	GetByUserID(ctx context.Context, userID int64) (*model.Teacher, error)
}

// SessionFilter ограничивает выборку занятий; нулевые поля не фильтруют
type SessionFilter struct {
	StudentID    int64
	TeacherID    int64
	Status       model.SessionStatus
	Date         *time.Time
	LanguageCode string
}

type SessionStore interface {
	Create(ctx context.Context, session *model.Session) error
	GetByID(ctx context.Context, id int64) (*model.Session, error)
	GetByIDForUpdate(ctx context.Context, id int64) (*model.Session, error)
	List(ctx context.Context, filter SessionFilter) ([]*model.Session, error)
	UpdateStatus(ctx context.Context, id int64, status model.SessionStatus) error
	MarkBilled(ctx context.Context, id int64, minutes int, at time.Time) error
	UpdateFeedback(ctx context.Context, id int64, feedback string) error
}

type PaymentStore interface {
	Create(ctx context.Context, payment *model.Payment) error
	GetByID(ctx context.Context, id int64) (*model.Payment, error)
	GetByIDForUpdate(ctx context.Context, id int64) (*model.Payment, error)
	ListByStudent(ctx context.Context, studentID int64) ([]*model.Payment, error)
	UpdateStatus(ctx context.Context, id int64, status model.PaymentStatus) error
}

type NotificationStore interface {
	Create(ctx context.Context, n *model.Notification) error
	GetByID(ctx context.Context, id int64) (*model.Notification, error)
	ListByUser(ctx context.Context, userID int64, unreadOnly bool) ([]*model.Notification, error)
	CountUnread(ctx context.Context, userID int64) (int, error)
	MarkRead(ctx context.Context, id int64) error
}

// Repos набор репозиториев, привязанных к одному соединению или транзакции
type Repos struct {
	Users         UserStore
	Students      StudentStore
	Teachers      TeacherStore
	Sessions      SessionStore
	Payments      PaymentStore
	Notifications NotificationStore
}

// Transactor даёт доступ к репозиториям вне транзакции и внутри неё.
// Если fn возвращает ошибку, ни одна запись из fn не сохраняется.
type Transactor interface {
	Repos() *Repos
	WithTx(ctx context.Context, fn func(*Repos) error) error
}
