package service

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/Freeeeeet/tutoring_ledger/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransitionCompletesAndDeducts(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ledger := f.ledger(t)
	session := f.addSession(t, 90)

	result, err := ledger.Transition(ctx, session.ID, model.SessionStatusCompleted, f.teacherActor())
	require.NoError(t, err)

	assert.True(t, result.Billed)
	assert.Equal(t, model.SessionStatusCompleted, result.Session.Status)
	assert.InDelta(t, 9.5, result.Balance.HoursUsed(), 1e-9)
	assert.InDelta(t, 0.5, result.Balance.HoursRemaining(), 1e-9)

	student := f.reloadStudent(t)
	assert.Equal(t, 8*60+90, student.TotalMinutesUsed)
	assert.Equal(t, 10, student.TotalHoursPurchased)

	stored := f.reloadSession(t, session.ID)
	assert.True(t, stored.IsBilled())
	assert.Equal(t, 90, stored.BilledMinutes)

	calls := f.notifier.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, f.studentUser.ID, calls[0].UserID)
}

func TestTransitionInsufficientHours(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ledger := f.ledger(t)

	first := f.addSession(t, 90)
	_, err := ledger.Transition(ctx, first.ID, model.SessionStatusCompleted, f.teacherActor())
	require.NoError(t, err)

	// 0.5h осталось, занятие на 2 часа
	second := f.addSession(t, 120)
	_, err = ledger.Transition(ctx, second.ID, model.SessionStatusCompleted, f.teacherActor())
	require.ErrorIs(t, err, ErrInsufficientHours)

	var insufficient *InsufficientHoursError
	require.True(t, errors.As(err, &insufficient))
	assert.Equal(t, 30, insufficient.RemainingMinutes)
	assert.Equal(t, 120, insufficient.RequiredMinutes)

	student := f.reloadStudent(t)
	assert.Equal(t, 8*60+90, student.TotalMinutesUsed)
	assert.InDelta(t, 0.5, student.Balance().HoursRemaining(), 1e-9)

	stored := f.reloadSession(t, second.ID)
	assert.Equal(t, model.SessionStatusScheduled, stored.Status)
	assert.False(t, stored.IsBilled())
}

func TestCompleteSessionTwiceDeductsOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ledger := f.ledger(t)
	session := f.addSession(t, 60)

	balance, err := ledger.CompleteSession(ctx, session.ID, f.teacherActor())
	require.NoError(t, err)
	assert.InDelta(t, 1.0, balance.HoursRemaining(), 1e-9)

	result, err := ledger.Transition(ctx, session.ID, model.SessionStatusCompleted, f.teacherActor())
	require.NoError(t, err)
	assert.False(t, result.Billed)
	assert.InDelta(t, 1.0, result.Balance.HoursRemaining(), 1e-9)

	// Повторное сохранение без смены статуса не уведомляет
	assert.Len(t, f.notifier.Calls(), 1)
}

func TestStatusCycleDoesNotDeductAgain(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ledger := f.ledger(t)
	session := f.addSession(t, 30)

	for _, status := range []model.SessionStatus{
		model.SessionStatusCompleted,
		model.SessionStatusRescheduled,
		model.SessionStatusCompleted,
	} {
		_, err := ledger.Transition(ctx, session.ID, status, f.teacherActor())
		require.NoError(t, err)
	}

	assert.Equal(t, 8*60+30, f.reloadStudent(t).TotalMinutesUsed)
}

func TestTransitionNonCompletingStatuses(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ledger := f.ledger(t)

	for _, status := range []model.SessionStatus{
		model.SessionStatusCancelled,
		model.SessionStatusRescheduled,
		model.SessionStatusAbsent,
		model.SessionStatusScheduled,
	} {
		t.Run(string(status), func(t *testing.T) {
			session := f.addSession(t, 60)
			result, err := ledger.Transition(ctx, session.ID, status, f.teacherActor())
			require.NoError(t, err)
			assert.False(t, result.Billed)
			assert.Equal(t, status, result.Session.Status)
			assert.Equal(t, 8*60, f.reloadStudent(t).TotalMinutesUsed)
		})
	}
}

func TestTransitionAccessDenied(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ledger := f.ledger(t)
	session := f.addSession(t, 60)

	tests := []struct {
		name  string
		actor model.Actor
	}{
		{name: "other teacher", actor: f.otherTeacherActor()},
		{name: "student", actor: f.studentActor()},
		{name: "admin", actor: f.adminActor()},
		{name: "teacher role without profile", actor: model.Actor{UserID: f.studentUser.ID, Role: model.RoleTeacher}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ledger.Transition(ctx, session.ID, model.SessionStatusCompleted, tt.actor)
			require.ErrorIs(t, err, ErrAccessDenied)

			err = ledger.AttachFeedback(ctx, session.ID, "good work", tt.actor)
			require.ErrorIs(t, err, ErrAccessDenied)
		})
	}

	stored := f.reloadSession(t, session.ID)
	assert.Equal(t, model.SessionStatusScheduled, stored.Status)
	assert.Empty(t, stored.Feedback)
	assert.Equal(t, 8*60, f.reloadStudent(t).TotalMinutesUsed)
}

func TestTransitionValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ledger := f.ledger(t)
	session := f.addSession(t, 60)

	_, err := ledger.Transition(ctx, session.ID, model.SessionStatus("finished"), f.teacherActor())
	assert.ErrorIs(t, err, ErrValidation)

	_, err = ledger.Transition(ctx, 9999, model.SessionStatusCompleted, f.teacherActor())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTransitionRejectsPartialMinuteSession(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ledger := f.ledger(t)

	// Занятие с секундами могло попасть в базу в обход ScheduleSession
	session := &model.Session{
		StudentID:  f.student.ID,
		TeacherID:  f.teacher.ID,
		LanguageID: f.language.ID,
		Date:       time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		StartTime:  model.NewClock(9, 0),
		EndTime:    model.NewClock(9, 0) + model.Clock(45*time.Second),
		Status:     model.SessionStatusScheduled,
	}
	require.NoError(t, f.db.Repos().Sessions.Create(ctx, session))

	_, err := ledger.Transition(ctx, session.ID, model.SessionStatusCompleted, f.teacherActor())
	require.ErrorIs(t, err, ErrValidation)

	stored := f.reloadSession(t, session.ID)
	assert.Equal(t, model.SessionStatusScheduled, stored.Status)
	assert.False(t, stored.IsBilled())
	assert.Equal(t, 8*60, f.reloadStudent(t).TotalMinutesUsed)
}

func TestConcurrentCompletionBillsOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ledger := f.ledger(t)
	session := f.addSession(t, 90)

	const workers = 20
	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		billed int
		errs   []error
	)
	start := make(chan struct{})
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			result, err := ledger.Transition(ctx, session.ID, model.SessionStatusCompleted, f.teacherActor())
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			if result.Billed {
				billed++
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Empty(t, errs)
	assert.Equal(t, 1, billed)

	student := f.reloadStudent(t)
	assert.Equal(t, 8*60+90, student.TotalMinutesUsed)
	assert.InDelta(t, 0.5, student.Balance().HoursRemaining(), 1e-9)

	stored := f.reloadSession(t, session.ID)
	assert.Equal(t, model.SessionStatusCompleted, stored.Status)
	assert.Equal(t, 90, stored.BilledMinutes)
}

func TestTransitionSurvivesNotifierFailure(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.notifier.err = errNotifyDown
	ledger := f.ledger(t)
	session := f.addSession(t, 60)

	result, err := ledger.Transition(ctx, session.ID, model.SessionStatusCompleted, f.teacherActor())
	require.NoError(t, err)
	assert.True(t, result.Billed)
	assert.Equal(t, model.SessionStatusCompleted, f.reloadSession(t, session.ID).Status)
	assert.Equal(t, 9*60, f.reloadStudent(t).TotalMinutesUsed)
}

func TestAttachFeedback(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ledger := f.ledger(t)
	session := f.addSession(t, 60)

	require.NoError(t, ledger.AttachFeedback(ctx, session.ID, "Good pronunciation", f.teacherActor()))
	require.NoError(t, ledger.AttachFeedback(ctx, session.ID, "Work on past tenses", f.teacherActor()))
	assert.Equal(t, "Work on past tenses", f.reloadSession(t, session.ID).Feedback)

	err := ledger.AttachFeedback(ctx, session.ID, "   ", f.teacherActor())
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "Work on past tenses", f.reloadSession(t, session.ID).Feedback)
}

func TestReadAccessors(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ledger := f.ledger(t)
	session := f.addSession(t, 90)

	hours, err := ledger.DurationHours(ctx, session.ID)
	require.NoError(t, err)
	assert.InDelta(t, 1.5, hours, 1e-9)

	remaining, err := ledger.HoursRemaining(ctx, f.student.ID)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, remaining, 1e-9)

	_, err = ledger.HoursRemaining(ctx, 9999)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = ledger.DurationHours(ctx, 9999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBalanceFor(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ledger := f.ledger(t)

	for _, actor := range []model.Actor{f.studentActor(), f.teacherActor(), f.adminActor()} {
		b, err := ledger.BalanceFor(ctx, f.student.ID, actor)
		require.NoError(t, err, actor.Role)
		assert.Equal(t, 10, b.HoursPurchased)
		assert.InDelta(t, 8.0, b.HoursUsed(), 1e-9)
	}

	otherUser := &model.User{Username: "another-student", Role: model.RoleStudent}
	require.NoError(t, f.db.Repos().Users.Create(ctx, otherUser))
	other := &model.Student{UserID: otherUser.ID, Matricule: "Oralise-2026-002", TotalHoursPurchased: 1}
	require.NoError(t, f.db.Repos().Students.Create(ctx, other))

	_, err := ledger.BalanceFor(ctx, f.student.ID, model.Actor{UserID: otherUser.ID, Role: model.RoleStudent})
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestBalanceNeverNegative(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ledger := f.ledger(t)
	rng := rand.New(rand.NewSource(42))

	statuses := []model.SessionStatus{
		model.SessionStatusCompleted,
		model.SessionStatusCancelled,
		model.SessionStatusRescheduled,
		model.SessionStatusAbsent,
		model.SessionStatusScheduled,
	}

	var sessions []*model.Session
	for i := 0; i < 8; i++ {
		sessions = append(sessions, f.addSession(t, 15*(1+rng.Intn(8))))
	}

	for i := 0; i < 200; i++ {
		session := sessions[rng.Intn(len(sessions))]
		status := statuses[rng.Intn(len(statuses))]
		_, err := ledger.Transition(ctx, session.ID, status, f.teacherActor())
		if err != nil {
			require.ErrorIs(t, err, ErrInsufficientHours)
		}

		student := f.reloadStudent(t)
		require.GreaterOrEqual(t, student.RemainingMinutes(), 0)

		billed := 0
		for _, s := range sessions {
			billed += f.reloadSession(t, s.ID).BilledMinutes
		}
		require.Equal(t, 8*60+billed, student.TotalMinutesUsed)
	}
}
