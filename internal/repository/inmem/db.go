// Package inmem - репозитории в памяти.
// Транзакции выполняются по одной на копии данных, копия заменяет
// основные данные только при успешном завершении.
package inmem

import (
	"context"
	"sync"
	"time"

	"github.com/Freeeeeet/tutoring_ledger/internal/model"
	"github.com/Freeeeeet/tutoring_ledger/internal/repository"
)

type state struct {
	seq           int64
	users         map[int64]model.User
	students      map[int64]model.Student
	teachers      map[int64]model.Teacher
	languages     map[int64]model.Language
	sessions      map[int64]model.Session
	payments      map[int64]model.Payment
	notifications map[int64]model.Notification
}

func newState() *state {
	return &state{
		users:         map[int64]model.User{},
		students:      map[int64]model.Student{},
		teachers:      map[int64]model.Teacher{},
		languages:     map[int64]model.Language{},
		sessions:      map[int64]model.Session{},
		payments:      map[int64]model.Payment{},
		notifications: map[int64]model.Notification{},
	}
}

func (s *state) nextID() int64 {
	s.seq++
	return s.seq
}

func (s *state) clone() *state {
	c := &state{
		seq:           s.seq,
		users:         cloneMap(s.users),
		students:      cloneMap(s.students),
		teachers:      make(map[int64]model.Teacher, len(s.teachers)),
		languages:     cloneMap(s.languages),
		sessions:      cloneMap(s.sessions),
		payments:      cloneMap(s.payments),
		notifications: cloneMap(s.notifications),
	}
	for id, t := range s.teachers {
		t.LanguageIDs = append([]int64(nil), t.LanguageIDs...)
		c.teachers[id] = t
	}
	return c
}

func cloneMap[V any](m map[int64]V) map[int64]V {
	c := make(map[int64]V, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}

// DB - repository.Transactor в памяти.
type DB struct {
	mu    sync.Mutex
	data  *state
	repos *repository.Repos
	now   func() time.Time
}

func New() *DB {
	db := &DB{data: newState(), now: time.Now}
	db.repos = db.reposFor(handle{db: db})
	return db
}

// handle выполняет операции над основными данными под блокировкой
// или, внутри WithTx, над копией транзакции.
type handle struct {
	db *DB
	tx *state
}

func (h handle) do(fn func(*state) error) error {
	if h.tx != nil {
		return fn(h.tx)
	}
	h.db.mu.Lock()
	defer h.db.mu.Unlock()
	return fn(h.db.data)
}

func (db *DB) reposFor(h handle) *repository.Repos {
	return &repository.Repos{
		Users:         &userStore{h: h},
		Students:      &studentStore{h: h},
		Teachers:      &teacherStore{h: h},
		Sessions:      &sessionStore{h: h},
		Payments:      &paymentStore{h: h},
		Notifications: &notificationStore{h: h},
	}
}

func (db *DB) Repos() *repository.Repos {
	return db.repos
}

func (db *DB) WithTx(ctx context.Context, fn func(*repository.Repos) error) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	tx := db.data.clone()
	if err := fn(db.reposFor(handle{db: db, tx: tx})); err != nil {
		return err
	}
	db.data = tx
	return nil
}

// AddLanguage добавляет справочные данные
func (db *DB) AddLanguage(l *model.Language) {
	db.mu.Lock()
	defer db.mu.Unlock()
	l.ID = db.data.nextID()
	db.data.languages[l.ID] = *l
}

// AddTeacher добавляет справочные данные
func (db *DB) AddTeacher(t *model.Teacher) {
	db.mu.Lock()
	defer db.mu.Unlock()
	t.ID = db.data.nextID()
	if t.DateJoined.IsZero() {
		t.DateJoined = db.now()
	}
	c := *t
	c.LanguageIDs = append([]int64(nil), t.LanguageIDs...)
	db.data.teachers[t.ID] = c
}
