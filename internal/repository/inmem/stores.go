package inmem

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Freeeeeet/tutoring_ledger/internal/model"
	"github.com/Freeeeeet/tutoring_ledger/internal/repository"
)

type userStore struct{ h handle }

func (s *userStore) Create(_ context.Context, user *model.User) error {
	return s.h.do(func(st *state) error {
		for _, u := range st.users {
			if u.Username == user.Username {
				return fmt.Errorf("create user: username %q taken", user.Username)
			}
		}
		user.ID = st.nextID()
		user.CreatedAt = s.h.db.now()
		st.users[user.ID] = *user
		return nil
	})
}

func (s *userStore) GetByID(_ context.Context, id int64) (*model.User, error) {
	var out *model.User
	err := s.h.do(func(st *state) error {
		if u, ok := st.users[id]; ok {
			out = &u
		}
		return nil
	})
	return out, err
}

func (s *userStore) GetByTelegramID(_ context.Context, telegramID int64) (*model.User, error) {
	var out *model.User
	err := s.h.do(func(st *state) error {
		for _, u := range st.users {
			if u.TelegramID != nil && *u.TelegramID == telegramID {
				u := u
				out = &u
				return nil
			}
		}
		return nil
	})
	return out, err
}

type studentStore struct{ h handle }

func (s *studentStore) Create(_ context.Context, student *model.Student) error {
	return s.h.do(func(st *state) error {
		for _, other := range st.students {
			if other.UserID == student.UserID {
				return fmt.Errorf("create student: user %d already has a profile", student.UserID)
			}
			if other.Matricule == student.Matricule {
				return fmt.Errorf("create student: matricule %q taken", student.Matricule)
			}
		}
		student.ID = st.nextID()
		if student.DateJoined.IsZero() {
			student.DateJoined = s.h.db.now()
		}
		st.students[student.ID] = *student
		return nil
	})
}

func (s *studentStore) GetByID(_ context.Context, id int64) (*model.Student, error) {
	var out *model.Student
	err := s.h.do(func(st *state) error {
		if v, ok := st.students[id]; ok {
			out = &v
		}
		return nil
	})
	return out, err
}

func (s *studentStore) GetByIDForUpdate(ctx context.Context, id int64) (*model.Student, error) {
	return s.GetByID(ctx, id)
}

func (s *studentStore) GetByUserID(_ context.Context, userID int64) (*model.Student, error) {
	var out *model.Student
	err := s.h.do(func(st *state) error {
		for _, v := range st.students {
			if v.UserID == userID {
				v := v
				out = &v
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (s *studentStore) LastMatricule(_ context.Context, prefix string) (string, error) {
	var last string
	err := s.h.do(func(st *state) error {
		for _, v := range st.students {
			m := v.Matricule
			if !strings.HasPrefix(m, prefix) {
				continue
			}
			if len(m) > len(last) || (len(m) == len(last) && m > last) {
				last = m
			}
		}
		return nil
	})
	return last, err
}

func (s *studentStore) AddMinutesUsed(_ context.Context, id int64, minutes int) error {
	return s.h.do(func(st *state) error {
		v, ok := st.students[id]
		if !ok {
			return fmt.Errorf("add minutes used: student %d: %w", id, repository.ErrNotFound)
		}
		if v.TotalMinutesUsed+minutes > v.TotalHoursPurchased*60 {
			return fmt.Errorf("add minutes used: student %d: balance would be negative", id)
		}
		v.TotalMinutesUsed += minutes
		st.students[id] = v
		return nil
	})
}

func (s *studentStore) AddHoursPurchased(_ context.Context, id int64, hours int) error {
	return s.h.do(func(st *state) error {
		v, ok := st.students[id]
		if !ok {
			return fmt.Errorf("add hours purchased: student %d: %w", id, repository.ErrNotFound)
		}
		v.TotalHoursPurchased += hours
		st.students[id] = v
		return nil
	})
}

type teacherStore struct{ h handle }

func (s *teacherStore) GetByID(_ context.Context, id int64) (*model.Teacher, error) {
	var out *model.Teacher
	err := s.h.do(func(st *state) error {
		if v, ok := st.teachers[id]; ok {
			v.LanguageIDs = append([]int64(nil), v.LanguageIDs...)
			out = &v
		}
		return nil
	})
	return out, err
}

func (s *teacherStore) GetByUserID(_ context.Context, userID int64) (*model.Teacher, error) {
	var out *model.Teacher
	err := s.h.do(func(st *state) error {
		for _, v := range st.teachers {
			if v.UserID == userID {
				v.LanguageIDs = append([]int64(nil), v.LanguageIDs...)
				out = &v
				return nil
			}
		}
		return nil
	})
	return out, err
}

type sessionStore struct{ h handle }

func (s *sessionStore) Create(_ context.Context, session *model.Session) error {
	return s.h.do(func(st *state) error {
		session.ID = st.nextID()
		now := s.h.db.now()
		session.CreatedAt = now
		session.UpdatedAt = now
		st.sessions[session.ID] = *session
		return nil
	})
}

func (s *sessionStore) GetByID(_ context.Context, id int64) (*model.Session, error) {
	var out *model.Session
	err := s.h.do(func(st *state) error {
		if v, ok := st.sessions[id]; ok {
			out = &v
		}
		return nil
	})
	return out, err
}

func (s *sessionStore) GetByIDForUpdate(ctx context.Context, id int64) (*model.Session, error) {
	return s.GetByID(ctx, id)
}

func (s *sessionStore) List(_ context.Context, f repository.SessionFilter) ([]*model.Session, error) {
	var out []*model.Session
	err := s.h.do(func(st *state) error {
		for _, v := range st.sessions {
			if f.StudentID != 0 && v.StudentID != f.StudentID {
				continue
			}
			if f.TeacherID != 0 && v.TeacherID != f.TeacherID {
				continue
			}
			if f.Status != "" && v.Status != f.Status {
				continue
			}
			if f.Date != nil && !sameDay(v.Date, *f.Date) {
				continue
			}
			if f.LanguageCode != "" && st.languages[v.LanguageID].Code != f.LanguageCode {
				continue
			}
			v := v
			out = append(out, &v)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].StartTime > out[j].StartTime
	})
	return out, err
}

func (s *sessionStore) update(id int64, op string, fn func(*model.Session) error) error {
	return s.h.do(func(st *state) error {
		v, ok := st.sessions[id]
		if !ok {
			return fmt.Errorf("%s: session %d: %w", op, id, repository.ErrNotFound)
		}
		if err := fn(&v); err != nil {
			return err
		}
		v.UpdatedAt = s.h.db.now()
		st.sessions[id] = v
		return nil
	})
}

func (s *sessionStore) UpdateStatus(_ context.Context, id int64, status model.SessionStatus) error {
	return s.update(id, "update session status", func(v *model.Session) error {
		v.Status = status
		return nil
	})
}

func (s *sessionStore) MarkBilled(_ context.Context, id int64, minutes int, at time.Time) error {
	return s.update(id, "mark session billed", func(v *model.Session) error {
		if v.BilledAt != nil {
			return fmt.Errorf("mark session billed: session %d already billed: %w", id, repository.ErrNotFound)
		}
		v.BilledMinutes = minutes
		v.BilledAt = &at
		return nil
	})
}

func (s *sessionStore) UpdateFeedback(_ context.Context, id int64, feedback string) error {
	return s.update(id, "update session feedback", func(v *model.Session) error {
		v.Feedback = feedback
		return nil
	})
}

type paymentStore struct{ h handle }

func (s *paymentStore) Create(_ context.Context, p *model.Payment) error {
	return s.h.do(func(st *state) error {
		for _, other := range st.payments {
			if other.InvoiceNumber == p.InvoiceNumber {
				return fmt.Errorf("create payment: invoice %q taken", p.InvoiceNumber)
			}
		}
		p.ID = st.nextID()
		p.PaymentDate = s.h.db.now()
		st.payments[p.ID] = *p
		return nil
	})
}

func (s *paymentStore) GetByID(_ context.Context, id int64) (*model.Payment, error) {
	var out *model.Payment
	err := s.h.do(func(st *state) error {
		if v, ok := st.payments[id]; ok {
			out = &v
		}
		return nil
	})
	return out, err
}

func (s *paymentStore) GetByIDForUpdate(ctx context.Context, id int64) (*model.Payment, error) {
	return s.GetByID(ctx, id)
}

func (s *paymentStore) ListByStudent(_ context.Context, studentID int64) ([]*model.Payment, error) {
	var out []*model.Payment
	err := s.h.do(func(st *state) error {
		for _, v := range st.payments {
			if v.StudentID == studentID {
				v := v
				out = append(out, &v)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, err
}

func (s *paymentStore) UpdateStatus(_ context.Context, id int64, status model.PaymentStatus) error {
	return s.h.do(func(st *state) error {
		v, ok := st.payments[id]
		if !ok {
			return fmt.Errorf("update payment status: payment %d: %w", id, repository.ErrNotFound)
		}
		v.Status = status
		st.payments[id] = v
		return nil
	})
}

type notificationStore struct{ h handle }

func (s *notificationStore) Create(_ context.Context, n *model.Notification) error {
	return s.h.do(func(st *state) error {
		n.ID = st.nextID()
		n.IsRead = false
		n.CreatedAt = s.h.db.now()
		st.notifications[n.ID] = *n
		return nil
	})
}

func (s *notificationStore) GetByID(_ context.Context, id int64) (*model.Notification, error) {
	var out *model.Notification
	err := s.h.do(func(st *state) error {
		if v, ok := st.notifications[id]; ok {
			out = &v
		}
		return nil
	})
	return out, err
}

func (s *notificationStore) ListByUser(_ context.Context, userID int64, unreadOnly bool) ([]*model.Notification, error) {
	var out []*model.Notification
	err := s.h.do(func(st *state) error {
		for _, v := range st.notifications {
			if v.UserID != userID || (unreadOnly && v.IsRead) {
				continue
			}
			v := v
			out = append(out, &v)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, err
}

func (s *notificationStore) CountUnread(_ context.Context, userID int64) (int, error) {
	count := 0
	err := s.h.do(func(st *state) error {
		for _, v := range st.notifications {
			if v.UserID == userID && !v.IsRead {
				count++
			}
		}
		return nil
	})
	return count, err
}

func (s *notificationStore) MarkRead(_ context.Context, id int64) error {
	return s.h.do(func(st *state) error {
		v, ok := st.notifications[id]
		if !ok {
			return fmt.Errorf("mark notification read: notification %d: %w", id, repository.ErrNotFound)
		}
		v.IsRead = true
		st.notifications[id] = v
		return nil
	})
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
