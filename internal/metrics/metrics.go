package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	SessionTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_session_transitions_total",
			Help: "Number of successful session status transitions by target status",
		},
		[]string{"status"},
	)

	MinutesDeducted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ledger_minutes_deducted_total",
			Help: "Tutoring minutes deducted from student balances",
		},
	)

	InsufficientHours = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ledger_insufficient_hours_total",
			Help: "Number of completions rejected for insufficient hours",
		},
	)

	HoursCredited = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ledger_hours_credited_total",
			Help: "Hours credited to student balances by paid payments",
		},
	)

	NotificationFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ledger_notification_failures_total",
			Help: "Number of notifications that could not be delivered",
		},
	)

	RemindersSent = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ledger_session_reminders_total",
			Help: "Number of session reminders sent",
		},
	)
)

func Register() {
	prometheus.MustRegister(
		SessionTransitions,
		MinutesDeducted,
		InsufficientHours,
		HoursCredited,
		NotificationFailures,
		RemindersSent,
	)
}
