package service

import (
	"context"
	"errors"
	"testing"

	"github.com/Freeeeeet/tutoring_ledger/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type stubPusher struct {
	pushed []int64
	err    error
}

func (p *stubPusher) Push(_ context.Context, userID int64, _, _ string) error {
	p.pushed = append(p.pushed, userID)
	return p.err
}

func TestNotifyPersistsAndPushes(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	pusher := &stubPusher{}
	svc := NewNotificationService(f.db, pusher, zaptest.NewLogger(t))

	require.NoError(t, svc.Notify(ctx, f.studentUser.ID, model.NotificationCertificateReady, "Certificate", "Your B2 certificate is ready"))
	assert.Equal(t, []int64{f.studentUser.ID}, pusher.pushed)

	list, err := svc.List(ctx, f.studentActor(), false)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.False(t, list[0].IsRead)
	assert.Equal(t, model.NotificationCertificateReady, list[0].Type)
}

func TestNotifyPushFailureIsSwallowed(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := NewNotificationService(f.db, &stubPusher{err: errors.New("telegram down")}, zaptest.NewLogger(t))

	require.NoError(t, svc.Notify(ctx, f.studentUser.ID, model.NotificationSystem, "Hello", "world"))

	count, err := svc.UnreadCount(ctx, f.studentActor())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestNotifyValidation(t *testing.T) {
	f := newFixture(t)
	svc := NewNotificationService(f.db, nil, zaptest.NewLogger(t))

	err := svc.Notify(context.Background(), f.studentUser.ID, "party", "Title", "")
	assert.ErrorIs(t, err, ErrValidation)

	err = svc.Notify(context.Background(), f.studentUser.ID, model.NotificationSystem, " ", "")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestMarkRead(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := NewNotificationService(f.db, nil, zaptest.NewLogger(t))

	require.NoError(t, svc.Notify(ctx, f.studentUser.ID, model.NotificationSystem, "One", ""))
	require.NoError(t, svc.Notify(ctx, f.studentUser.ID, model.NotificationSystem, "Two", ""))

	list, err := svc.List(ctx, f.studentActor(), true)
	require.NoError(t, err)
	require.Len(t, list, 2)
	target := list[0].ID

	err = svc.MarkRead(ctx, target, f.teacherActor())
	assert.ErrorIs(t, err, ErrAccessDenied)

	require.NoError(t, svc.MarkRead(ctx, target, f.studentActor()))
	require.NoError(t, svc.MarkRead(ctx, target, f.studentActor()))

	unread, err := svc.List(ctx, f.studentActor(), true)
	require.NoError(t, err)
	require.Len(t, unread, 1)
	assert.NotEqual(t, target, unread[0].ID)

	assert.ErrorIs(t, svc.MarkRead(ctx, 9999, f.studentActor()), ErrNotFound)
}
