package httpapi

import (
	"net/http"

	"github.com/Freeeeeet/tutoring_ledger/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Services собирает сервисы, которые обслуживает HTTP API
type Services struct {
	Ledger        *service.LedgerService
	Sessions      *service.SessionService
	Payments      *service.PaymentService
	Notifications *service.NotificationService
	Students      *service.StudentService
}

type Server struct {
	ledger        *service.LedgerService
	sessions      *service.SessionService
	payments      *service.PaymentService
	notifications *service.NotificationService
	students      *service.StudentService
	jwtSecret     string
	jwtIssuer     string
	validate      *validator.Validate
	logger        *zap.Logger
}

func NewServer(svc Services, jwtSecret, jwtIssuer string, logger *zap.Logger) *Server {
	return &Server{
		ledger:        svc.Ledger,
		sessions:      svc.Sessions,
		payments:      svc.Payments,
		notifications: svc.Notifications,
		students:      svc.Students,
		jwtSecret:     jwtSecret,
		jwtIssuer:     jwtIssuer,
		validate:      validator.New(),
		logger:        logger,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.requestIDMiddleware)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(s.authMiddleware)

		r.Post("/sessions", s.handleScheduleSession)
		r.Get("/sessions", s.handleListSessions)
		r.Get("/sessions/{sessionId}/duration", s.handleSessionDuration)
		r.Post("/sessions/{sessionId}/status", s.handleTransition)
		r.Post("/sessions/{sessionId}/complete", s.handleComplete)
		r.Post("/sessions/{sessionId}/feedback", s.handleFeedback)

		r.Post("/students", s.handleRegisterStudent)
		r.Get("/students/{studentId}/balance", s.handleBalance)
		r.Get("/students/{studentId}/payments", s.handleListPayments)

		r.Post("/payments", s.handleCreatePayment)
		r.Post("/payments/{paymentId}/confirm", s.handleConfirmPayment)
		r.Post("/payments/{paymentId}/cancel", s.handleCancelPayment)

		r.Get("/notifications", s.handleListNotifications)
		r.Post("/notifications/{notificationId}/read", s.handleMarkRead)
	})

	return r
}
