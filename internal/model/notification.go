package model

import "time"

type NotificationType string

const (
	NotificationSessionReminder  NotificationType = "session_reminder"
	NotificationPaymentDue       NotificationType = "payment_due"
	NotificationCertificateReady NotificationType = "certificate_ready"
	NotificationEvaluationReady  NotificationType = "evaluation_ready"
	NotificationSystem           NotificationType = "system"
)

func (t NotificationType) Valid() bool {
	switch t {
	case NotificationSessionReminder, NotificationPaymentDue, NotificationCertificateReady,
		NotificationEvaluationReady, NotificationSystem:
		return true
	}
	return false
}

// Notification - сообщение одному пользователю.
// IsRead меняется только с false на true.
type Notification struct {
	ID        int64            `json:"id"`
	UserID    int64            `json:"user_id"`
	Type      NotificationType `json:"notification_type"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	IsRead    bool             `json:"is_read"`
	CreatedAt time.Time        `json:"created_at"`
}
