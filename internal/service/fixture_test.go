package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Freeeeeet/tutoring_ledger/internal/model"
	"github.com/Freeeeeet/tutoring_ledger/internal/repository/inmem"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type notifyCall struct {
	UserID  int64
	Type    model.NotificationType
	Title   string
	Message string
}

type recordingNotifier struct {
	mu    sync.Mutex
	calls []notifyCall
	err   error
}

func (n *recordingNotifier) Notify(_ context.Context, userID int64, typ model.NotificationType, title, message string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, notifyCall{UserID: userID, Type: typ, Title: title, Message: message})
	return n.err
}

func (n *recordingNotifier) Calls() []notifyCall {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notifyCall(nil), n.calls...)
}

var errNotifyDown = errors.New("notification sink down")

type fixture struct {
	db       *inmem.DB
	notifier *recordingNotifier

	language     *model.Language
	teacherUser  *model.User
	otherUser    *model.User
	studentUser  *model.User
	adminUser    *model.User
	teacher      *model.Teacher
	otherTeacher *model.Teacher
	student      *model.Student
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	f := &fixture{db: inmem.New(), notifier: &recordingNotifier{}}
	repos := f.db.Repos()

	f.language = &model.Language{Code: "en", Name: "English", IsActive: true}
	f.db.AddLanguage(f.language)

	f.teacherUser = &model.User{Username: "teacher", Role: model.RoleTeacher}
	f.otherUser = &model.User{Username: "other-teacher", Role: model.RoleTeacher}
	f.studentUser = &model.User{Username: "student", Role: model.RoleStudent}
	f.adminUser = &model.User{Username: "admin", Role: model.RoleAdmin}
	for _, u := range []*model.User{f.teacherUser, f.otherUser, f.studentUser, f.adminUser} {
		require.NoError(t, repos.Users.Create(ctx, u))
	}

	f.teacher = &model.Teacher{UserID: f.teacherUser.ID, LanguageIDs: []int64{f.language.ID}}
	f.db.AddTeacher(f.teacher)
	f.otherTeacher = &model.Teacher{UserID: f.otherUser.ID}
	f.db.AddTeacher(f.otherTeacher)

	// 10 куплено, 8 использовано
	f.student = &model.Student{
		UserID:              f.studentUser.ID,
		Matricule:           "Oralise-2026-001",
		TotalHoursPurchased: 10,
		TotalMinutesUsed:    8 * 60,
	}
	require.NoError(t, repos.Students.Create(ctx, f.student))

	return f
}

func (f *fixture) ledger(t *testing.T) *LedgerService {
	return NewLedgerService(f.db, NewTeacherOwnership(f.db.Repos().Teachers), f.notifier, zaptest.NewLogger(t))
}

func (f *fixture) teacherActor() model.Actor {
	return model.Actor{UserID: f.teacherUser.ID, Role: model.RoleTeacher}
}

func (f *fixture) studentActor() model.Actor {
	return model.Actor{UserID: f.studentUser.ID, Role: model.RoleStudent}
}

func (f *fixture) adminActor() model.Actor {
	return model.Actor{UserID: f.adminUser.ID, Role: model.RoleAdmin}
}

func (f *fixture) otherTeacherActor() model.Actor {
	return model.Actor{UserID: f.otherUser.ID, Role: model.RoleTeacher}
}

// addSession создаёт запланированное занятие заданной длины с началом в 09:00
func (f *fixture) addSession(t *testing.T, minutes int) *model.Session {
	t.Helper()
	s := &model.Session{
		StudentID:  f.student.ID,
		TeacherID:  f.teacher.ID,
		LanguageID: f.language.ID,
		Date:       time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		StartTime:  model.NewClock(9, 0),
		EndTime:    model.NewClock(9, 0) + model.Clock(time.Duration(minutes)*time.Minute),
		Status:     model.SessionStatusScheduled,
	}
	require.NoError(t, f.db.Repos().Sessions.Create(context.Background(), s))
	return s
}

func (f *fixture) reloadStudent(t *testing.T) *model.Student {
	t.Helper()
	s, err := f.db.Repos().Students.GetByID(context.Background(), f.student.ID)
	require.NoError(t, err)
	require.NotNil(t, s)
	return s
}

func (f *fixture) reloadSession(t *testing.T, id int64) *model.Session {
	t.Helper()
	s, err := f.db.Repos().Sessions.GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, s)
	return s
}
