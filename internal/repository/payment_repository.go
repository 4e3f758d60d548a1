package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/tutoring_ledger/internal/model"
	"github.com/Freeeeeet/tutoring_ledger/internal/repository/base"
)

type PaymentRepository struct {
	*base.Repository
}

func NewPaymentRepository(db base.DBTX) *PaymentRepository {
	return &PaymentRepository{Repository: base.NewRepository(db)}
}

const paymentColumns = `id, student_id, amount, hours_purchased, payment_type, status, invoice_number, payment_date, expiry_date`

// Create создаёт платёж
func (r *PaymentRepository) Create(ctx context.Context, payment *model.Payment) error {
	query := `
		INSERT INTO payments (student_id, amount, hours_purchased, payment_type, status, invoice_number, expiry_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, payment_date
	`

	err := r.QueryRow(
		ctx, query,
		payment.StudentID,
		payment.Amount,
		payment.HoursPurchased,
		payment.PaymentType,
		payment.Status,
		payment.InvoiceNumber,
		payment.ExpiryDate,
	).Scan(&payment.ID, &payment.PaymentDate)

	if err != nil {
		return fmt.Errorf("create payment: %w", err)
	}

	return nil
}

// GetByID получает платёж по ID
func (r *PaymentRepository) GetByID(ctx context.Context, id int64) (*model.Payment, error) {
	return r.getOne(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id = $1`, id)
}

// GetByIDForUpdate получает платёж и блокирует строку
func (r *PaymentRepository) GetByIDForUpdate(ctx context.Context, id int64) (*model.Payment, error) {
	return r.getOne(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id = $1 FOR UPDATE`, id)
}

func (r *PaymentRepository) getOne(ctx context.Context, query string, id int64) (*model.Payment, error) {
	payment, err := scanPayment(r.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get payment by id: %w", err)
	}
	return payment, nil
}

// ListByStudent получает платежи студента, новые первыми
func (r *PaymentRepository) ListByStudent(ctx context.Context, studentID int64) ([]*model.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE student_id = $1 ORDER BY payment_date DESC, id DESC`

	rows, err := r.Query(ctx, query, studentID)
	if err != nil {
		return nil, fmt.Errorf("get payments by student: %w", err)
	}
	defer rows.Close()

	var payments []*model.Payment
	for rows.Next() {
		payment, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		payments = append(payments, payment)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate payments: %w", err)
	}

	return payments, nil
}

// UpdateStatus обновляет статус платежа
func (r *PaymentRepository) UpdateStatus(ctx context.Context, id int64, status model.PaymentStatus) error {
	affected, err := r.ExecAffected(ctx, `UPDATE payments SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("update payment status: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("update payment status: payment %d: %w", id, ErrNotFound)
	}
	return nil
}

func scanPayment(row rowScanner) (*model.Payment, error) {
	var p model.Payment
	err := row.Scan(
		&p.ID,
		&p.StudentID,
		&p.Amount,
		&p.HoursPurchased,
		&p.PaymentType,
		&p.Status,
		&p.InvoiceNumber,
		&p.PaymentDate,
		&p.ExpiryDate,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
