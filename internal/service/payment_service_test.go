package service

import (
	"context"
	"regexp"
	"testing"

	"github.com/Freeeeeet/tutoring_ledger/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestPaymentLifecycle(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := NewPaymentService(f.db, f.notifier, zaptest.NewLogger(t))

	payment, err := svc.CreatePayment(ctx, CreatePaymentInput{
		StudentID:      f.student.ID,
		Amount:         25000,
		HoursPurchased: 5,
		PaymentType:    model.PaymentTypePackage,
	}, f.adminActor())
	require.NoError(t, err)
	assert.Equal(t, model.PaymentStatusPending, payment.Status)
	assert.Regexp(t, regexp.MustCompile(`^INV-\d{4}-[0-9A-F]{8}$`), payment.InvoiceNumber)

	// Ожидающий платёж не начисляет часы
	assert.Equal(t, 10, f.reloadStudent(t).TotalHoursPurchased)

	paid, balance, err := svc.ConfirmPayment(ctx, payment.ID, f.adminActor())
	require.NoError(t, err)
	assert.Equal(t, model.PaymentStatusPaid, paid.Status)
	assert.Equal(t, 15, balance.HoursPurchased)
	assert.InDelta(t, 7.0, balance.HoursRemaining(), 1e-9)
	assert.Equal(t, 15, f.reloadStudent(t).TotalHoursPurchased)

	_, _, err = svc.ConfirmPayment(ctx, payment.ID, f.adminActor())
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.Equal(t, 15, f.reloadStudent(t).TotalHoursPurchased)

	calls := f.notifier.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, model.NotificationPaymentDue, calls[0].Type)
	assert.Equal(t, f.studentUser.ID, calls[1].UserID)
}

func TestPaymentValidationAndAccess(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := NewPaymentService(f.db, f.notifier, zaptest.NewLogger(t))

	valid := CreatePaymentInput{StudentID: f.student.ID, Amount: 100, HoursPurchased: 1, PaymentType: model.PaymentTypeHourly}

	_, err := svc.CreatePayment(ctx, valid, f.teacherActor())
	assert.ErrorIs(t, err, ErrAccessDenied)

	bad := valid
	bad.HoursPurchased = 0
	_, err = svc.CreatePayment(ctx, bad, f.adminActor())
	assert.ErrorIs(t, err, ErrValidation)

	bad = valid
	bad.PaymentType = "barter"
	_, err = svc.CreatePayment(ctx, bad, f.adminActor())
	assert.ErrorIs(t, err, ErrValidation)

	bad = valid
	bad.StudentID = 9999
	_, err = svc.CreatePayment(ctx, bad, f.adminActor())
	assert.ErrorIs(t, err, ErrNotFound)

	payment, err := svc.CreatePayment(ctx, valid, f.adminActor())
	require.NoError(t, err)

	_, _, err = svc.ConfirmPayment(ctx, payment.ID, f.studentActor())
	assert.ErrorIs(t, err, ErrAccessDenied)

	require.NoError(t, svc.CancelPayment(ctx, payment.ID, f.adminActor()))
	_, _, err = svc.ConfirmPayment(ctx, payment.ID, f.adminActor())
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.Equal(t, 10, f.reloadStudent(t).TotalHoursPurchased)

	_, _, err = svc.ConfirmPayment(ctx, 9999, f.adminActor())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListPayments(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := NewPaymentService(f.db, f.notifier, zaptest.NewLogger(t))

	for i := 0; i < 2; i++ {
		_, err := svc.CreatePayment(ctx, CreatePaymentInput{
			StudentID: f.student.ID, Amount: 100, HoursPurchased: 1, PaymentType: model.PaymentTypeHourly,
		}, f.adminActor())
		require.NoError(t, err)
	}

	own, err := svc.ListPayments(ctx, f.student.ID, f.studentActor())
	require.NoError(t, err)
	assert.Len(t, own, 2)

	_, err = svc.ListPayments(ctx, f.student.ID, f.teacherActor())
	assert.ErrorIs(t, err, ErrAccessDenied)
}
