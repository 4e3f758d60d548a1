package model

import "time"

type PaymentType string

const (
	PaymentTypeHourly       PaymentType = "hourly"
	PaymentTypePackage      PaymentType = "package"
	PaymentTypeSubscription PaymentType = "subscription"
)

func (t PaymentType) Valid() bool {
	switch t {
	case PaymentTypeHourly, PaymentTypePackage, PaymentTypeSubscription:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"   // Ожидает оплаты
	PaymentStatusPaid      PaymentStatus = "paid"      // Оплачено, часы начислены
	PaymentStatusCancelled PaymentStatus = "cancelled" // Отменено
	PaymentStatusRefunded  PaymentStatus = "refunded"  // Возврат
)

type Payment struct {
	ID             int64         `json:"id"`
	StudentID      int64         `json:"student_id"`
	Amount         int64         `json:"amount"` // в копейках/центах
	HoursPurchased int           `json:"hours_purchased"`
	PaymentType    PaymentType   `json:"payment_type"`
	Status         PaymentStatus `json:"status"`
	InvoiceNumber  string        `json:"invoice_number"`
	PaymentDate    time.Time     `json:"payment_date"`
	ExpiryDate     *time.Time    `json:"expiry_date"`
}

// IsPending проверяет, ожидает ли платёж подтверждения
func (p *Payment) IsPending() bool {
	return p.Status == PaymentStatusPending
}
