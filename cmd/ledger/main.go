package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Freeeeeet/tutoring_ledger/internal/app"
	"github.com/Freeeeeet/tutoring_ledger/internal/config"
	"github.com/Freeeeeet/tutoring_ledger/internal/controller"
	"github.com/Freeeeeet/tutoring_ledger/internal/controller/httpapi"
	"github.com/Freeeeeet/tutoring_ledger/internal/metrics"
	"github.com/Freeeeeet/tutoring_ledger/internal/notify"
	"github.com/Freeeeeet/tutoring_ledger/internal/repository"
	"github.com/Freeeeeet/tutoring_ledger/internal/service"
	"github.com/go-telegram/bot"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Напоминание о занятии помнится двое суток, дольше окна "завтра"
const reminderMarkerTTL = 48 * time.Hour

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := app.NewLogger(app.LoggerOptions{
		Environment: cfg.Environment,
		Service:     "tutoring_ledger",
		Level:       cfg.LogLevel,
	})
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("Starting tutoring ledger",
		zap.String("environment", cfg.Environment),
		zap.String("http_addr", cfg.HTTPAddr),
		zap.Bool("telegram", cfg.TelegramEnabled()),
		zap.Bool("redis", cfg.RedisEnabled()),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics.Register()

	pool, err := pgxpool.New(ctx, cfg.DBDSN)
	if err != nil {
		logger.Fatal("Failed to create connection pool", zap.Error(err))
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}

	migrator, err := app.NewMigrator(pool, logger)
	if err != nil {
		logger.Fatal("Failed to create migrator", zap.Error(err))
	}
	if err := migrator.Run(ctx); err != nil {
		logger.Fatal("Failed to apply migrations", zap.Error(err))
	}
	if err := migrator.Close(); err != nil {
		logger.Warn("Failed to close migrator", zap.Error(err))
	}

	store := repository.NewStore(pool)

	// Telegram опционален: без токена уведомления только сохраняются
	var (
		botInstance *bot.Bot
		pusher      service.Pusher
	)
	if cfg.TelegramEnabled() {
		botInstance, err = bot.New(cfg.TelegramToken)
		if err != nil {
			logger.Fatal("Failed to create telegram bot", zap.Error(err))
		}
		pusher = notify.NewTelegramPusher(botInstance, store.Repos().Users, logger)
	}

	var marker service.ReminderMarker = notify.NewMemoryReminderMarker()
	if cfg.RedisEnabled() {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := redisClient.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			logger.Fatal("Redis ping failed", zap.Error(err))
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("Redis close error", zap.Error(err))
			}
		}()
		marker = notify.NewRedisReminderMarker(redisClient, reminderMarkerTTL)
	}

	notificationService := service.NewNotificationService(store, pusher, logger)
	userService := service.NewUserService(store, logger)
	ledgerService := service.NewLedgerService(store, service.NewTeacherOwnership(store.Repos().Teachers), notificationService, logger)
	sessionService := service.NewSessionService(store, notificationService, logger)
	paymentService := service.NewPaymentService(store, notificationService, logger)
	studentService := service.NewStudentService(store, cfg.SchoolName, logger)
	reminderService := service.NewReminderService(store, notificationService, marker, logger)

	scheduler := app.NewScheduler(reminderService, cfg.ReminderInterval, logger)
	scheduler.Start(ctx)
	defer scheduler.Stop()

	if botInstance != nil {
		botController := controller.NewBotController(botInstance, userService, ledgerService, sessionService, notificationService, logger)
		if err := botController.RegisterHandlers(ctx); err != nil {
			logger.Warn("Failed to register bot commands", zap.Error(err))
		}
		go botController.Start(ctx)
	}

	server := httpapi.NewServer(httpapi.Services{
		Ledger:        ledgerService,
		Sessions:      sessionService,
		Payments:      paymentService,
		Notifications: notificationService,
		Students:      studentService,
	}, cfg.JWTSecret, cfg.JWTIssuer, logger)

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           server.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("HTTP server listening", zap.String("addr", cfg.HTTPAddr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP shutdown error", zap.Error(err))
	}
}
