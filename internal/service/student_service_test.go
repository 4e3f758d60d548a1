package service

import (
	"context"
	"testing"
	"time"

	"github.com/Freeeeeet/tutoring_ledger/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestRegisterStudent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := NewStudentService(f.db, "Oralise", zaptest.NewLogger(t))
	svc.now = func() time.Time { return time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC) }

	var matricules []string
	for _, name := range []string{"anna", "boris"} {
		user := &model.User{Username: name, Role: model.RoleStudent}
		require.NoError(t, f.db.Repos().Users.Create(ctx, user))

		student, err := svc.RegisterStudent(ctx, user.ID, f.adminActor())
		require.NoError(t, err)
		assert.Equal(t, 0, student.TotalHoursPurchased)
		matricules = append(matricules, student.Matricule)

		_, err = svc.RegisterStudent(ctx, user.ID, f.adminActor())
		assert.ErrorIs(t, err, ErrInvalidState)
	}

	// Фикстура уже содержит Oralise-2026-001
	assert.Equal(t, []string{"Oralise-2026-002", "Oralise-2026-003"}, matricules)
}

func TestRegisterStudentRejects(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := NewStudentService(f.db, "Oralise", zaptest.NewLogger(t))

	_, err := svc.RegisterStudent(ctx, f.studentUser.ID, f.teacherActor())
	assert.ErrorIs(t, err, ErrAccessDenied)

	_, err = svc.RegisterStudent(ctx, f.teacherUser.ID, f.adminActor())
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.RegisterStudent(ctx, 9999, f.adminActor())
	assert.ErrorIs(t, err, ErrNotFound)
}
