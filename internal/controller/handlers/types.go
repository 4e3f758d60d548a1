package handlers

import (
	"time"

	"github.com/Freeeeeet/tutoring_ledger/internal/service"
	"go.uber.org/zap"
)

// Handlers содержит все зависимости для обработки команд
type Handlers struct {
	userService         *service.UserService
	ledgerService       *service.LedgerService
	sessionService      *service.SessionService
	notificationService *service.NotificationService
	logger              *zap.Logger
	now                 func() time.Time
}

// NewHandlers создаёт новый обработчик команд
func NewHandlers(
	userService *service.UserService,
	ledgerService *service.LedgerService,
	sessionService *service.SessionService,
	notificationService *service.NotificationService,
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		userService:         userService,
		ledgerService:       ledgerService,
		sessionService:      sessionService,
		notificationService: notificationService,
		logger:              logger,
		now:                 time.Now,
	}
}
