package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Environment      string
	LogLevel         string
	DBDSN            string
	HTTPAddr         string
	JWTSecret        string
	JWTIssuer        string
	TelegramToken    string
	RedisAddr        string
	RedisPassword    string
	ReminderInterval time.Duration
	SchoolName       string
}

const (
	defaultHTTPAddr         = ":8080"
	defaultReminderInterval = time.Hour
	defaultSchoolName       = "Oralise"
)

func Load() (*Config, error) {
	// Пытаемся загрузить .env файл (игнорируем ошибку, если файла нет)
	if err := godotenv.Load(".env"); err != nil {
		log.Println("⚠️  No .env file found, using environment variables")
	} else {
		log.Println("✅ Loaded configuration from .env file")
	}

	return FromEnv()
}

// FromEnv читает конфигурацию только из переменных окружения
func FromEnv() (*Config, error) {
	cfg := &Config{
		Environment:   os.Getenv("ENV"),
		LogLevel:      os.Getenv("LOG_LEVEL"),
		DBDSN:         os.Getenv("DB_DSN"),
		HTTPAddr:      os.Getenv("HTTP_ADDR"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		JWTIssuer:     os.Getenv("JWT_ISSUER"),
		TelegramToken: os.Getenv("TELEGRAM_TOKEN"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		SchoolName:    os.Getenv("SCHOOL_NAME"),
	}

	// Устанавливаем дефолтные значения
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = defaultHTTPAddr
	}
	if cfg.SchoolName == "" {
		cfg.SchoolName = defaultSchoolName
	}

	cfg.ReminderInterval = defaultReminderInterval
	if raw := os.Getenv("REMINDER_INTERVAL"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("parse REMINDER_INTERVAL: %w", err)
		}
		if d <= 0 {
			return nil, fmt.Errorf("REMINDER_INTERVAL must be positive, got %s", raw)
		}
		cfg.ReminderInterval = d
	}

	// Проверяем обязательные поля
	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("DB_DSN is required but not set")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required but not set")
	}

	return cfg, nil
}

// TelegramEnabled - бот и push-уведомления включаются только при наличии токена
func (c *Config) TelegramEnabled() bool {
	return c.TelegramToken != ""
}

func (c *Config) RedisEnabled() bool {
	return c.RedisAddr != ""
}
