package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Freeeeeet/tutoring_ledger/internal/metrics"
	"github.com/Freeeeeet/tutoring_ledger/internal/model"
	"github.com/Freeeeeet/tutoring_ledger/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PaymentService - единственный, кто меняет купленные часы
type PaymentService struct {
	store    repository.Transactor
	notifier Notifier
	logger   *zap.Logger
	now      func() time.Time
}

func NewPaymentService(store repository.Transactor, notifier Notifier, logger *zap.Logger) *PaymentService {
	return &PaymentService{
		store:    store,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

type CreatePaymentInput struct {
	StudentID      int64
	Amount         int64
	HoursPurchased int
	PaymentType    model.PaymentType
	ExpiryDate     *time.Time
}

// CreatePayment регистрирует ожидающий оплаты платёж
func (s *PaymentService) CreatePayment(ctx context.Context, in CreatePaymentInput, actor model.Actor) (*model.Payment, error) {
	if !actor.IsAdmin() {
		return nil, fmt.Errorf("%w: only admins create payments", ErrAccessDenied)
	}
	if in.HoursPurchased <= 0 {
		return nil, fmt.Errorf("%w: hours purchased must be positive", ErrValidation)
	}
	if in.Amount < 0 {
		return nil, fmt.Errorf("%w: amount must not be negative", ErrValidation)
	}
	if !in.PaymentType.Valid() {
		return nil, fmt.Errorf("%w: unknown payment type %q", ErrValidation, in.PaymentType)
	}

	repos := s.store.Repos()

	student, err := repos.Students.GetByID(ctx, in.StudentID)
	if err != nil {
		return nil, fmt.Errorf("get student: %w", err)
	}
	if student == nil {
		return nil, fmt.Errorf("student %d: %w", in.StudentID, ErrNotFound)
	}

	payment := &model.Payment{
		StudentID:      in.StudentID,
		Amount:         in.Amount,
		HoursPurchased: in.HoursPurchased,
		PaymentType:    in.PaymentType,
		Status:         model.PaymentStatusPending,
		InvoiceNumber:  s.invoiceNumber(),
		ExpiryDate:     in.ExpiryDate,
	}

	if err := repos.Payments.Create(ctx, payment); err != nil {
		return nil, fmt.Errorf("create payment: %w", err)
	}

	s.logger.Info("Payment created",
		zap.Int64("payment_id", payment.ID),
		zap.Int64("student_id", payment.StudentID),
		zap.String("invoice", payment.InvoiceNumber),
		zap.Int("hours", payment.HoursPurchased),
	)

	message := fmt.Sprintf("Invoice %s for %d hours is awaiting payment.", payment.InvoiceNumber, payment.HoursPurchased)
	s.notify(ctx, student.UserID, model.NotificationPaymentDue, "Payment due", message)

	return payment, nil
}

// ConfirmPayment помечает платёж оплаченным и начисляет часы студенту
func (s *PaymentService) ConfirmPayment(ctx context.Context, paymentID int64, actor model.Actor) (*model.Payment, model.Balance, error) {
	if !actor.IsAdmin() {
		return nil, model.Balance{}, fmt.Errorf("%w: only admins confirm payments", ErrAccessDenied)
	}

	var (
		payment *model.Payment
		student *model.Student
	)

	err := s.store.WithTx(ctx, func(r *repository.Repos) error {
		var err error
		payment, err = r.Payments.GetByIDForUpdate(ctx, paymentID)
		if err != nil {
			return fmt.Errorf("get payment: %w", err)
		}
		if payment == nil {
			return fmt.Errorf("payment %d: %w", paymentID, ErrNotFound)
		}
		if !payment.IsPending() {
			return fmt.Errorf("%w: payment %d is %s", ErrInvalidState, paymentID, payment.Status)
		}

		if err := r.Payments.UpdateStatus(ctx, paymentID, model.PaymentStatusPaid); err != nil {
			return fmt.Errorf("update payment status: %w", err)
		}
		payment.Status = model.PaymentStatusPaid

		student, err = r.Students.GetByIDForUpdate(ctx, payment.StudentID)
		if err != nil {
			return fmt.Errorf("get student: %w", err)
		}
		if student == nil {
			return fmt.Errorf("student %d: %w", payment.StudentID, ErrNotFound)
		}

		if err := r.Students.AddHoursPurchased(ctx, student.ID, payment.HoursPurchased); err != nil {
			return fmt.Errorf("add hours purchased: %w", err)
		}
		student.TotalHoursPurchased += payment.HoursPurchased
		return nil
	})
	if err != nil {
		return nil, model.Balance{}, err
	}

	metrics.HoursCredited.Add(float64(payment.HoursPurchased))

	s.logger.Info("Payment confirmed",
		zap.Int64("payment_id", payment.ID),
		zap.Int64("student_id", student.ID),
		zap.Int("hours", payment.HoursPurchased),
	)

	message := fmt.Sprintf("Payment %s received, %d hours added to your balance.", payment.InvoiceNumber, payment.HoursPurchased)
	s.notify(ctx, student.UserID, model.NotificationSystem, "Payment received", message)

	return payment, student.Balance(), nil
}

// CancelPayment отменяет ожидающий платёж
func (s *PaymentService) CancelPayment(ctx context.Context, paymentID int64, actor model.Actor) error {
	if !actor.IsAdmin() {
		return fmt.Errorf("%w: only admins cancel payments", ErrAccessDenied)
	}

	err := s.store.WithTx(ctx, func(r *repository.Repos) error {
		payment, err := r.Payments.GetByIDForUpdate(ctx, paymentID)
		if err != nil {
			return fmt.Errorf("get payment: %w", err)
		}
		if payment == nil {
			return fmt.Errorf("payment %d: %w", paymentID, ErrNotFound)
		}
		if !payment.IsPending() {
			return fmt.Errorf("%w: payment %d is %s", ErrInvalidState, paymentID, payment.Status)
		}
		return r.Payments.UpdateStatus(ctx, paymentID, model.PaymentStatusCancelled)
	})
	if err != nil {
		return err
	}

	s.logger.Info("Payment cancelled", zap.Int64("payment_id", paymentID))
	return nil
}

// ListPayments возвращает платежи студента; доступно самому студенту и админу
func (s *PaymentService) ListPayments(ctx context.Context, studentID int64, actor model.Actor) ([]*model.Payment, error) {
	repos := s.store.Repos()

	student, err := repos.Students.GetByID(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("get student: %w", err)
	}
	if student == nil {
		return nil, fmt.Errorf("student %d: %w", studentID, ErrNotFound)
	}
	if !actor.IsAdmin() && student.UserID != actor.UserID {
		return nil, fmt.Errorf("%w: payments of student %d", ErrAccessDenied, studentID)
	}

	payments, err := repos.Payments.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return payments, nil
}

func (s *PaymentService) invoiceNumber() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return fmt.Sprintf("INV-%d-%s", s.now().Year(), strings.ToUpper(id[:8]))
}

func (s *PaymentService) notify(ctx context.Context, userID int64, typ model.NotificationType, title, message string) {
	if err := s.notifier.Notify(ctx, userID, typ, title, message); err != nil {
		metrics.NotificationFailures.Inc()
		s.logger.Error("Failed to send payment notification",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
	}
}
