package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/tutoring_ledger/internal/repository/base"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store реализует Transactor поверх пула pgx
type Store struct {
	pool  *pgxpool.Pool
	repos *Repos
}

// NewStore создаёт хранилище с репозиториями на пуле
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool, repos: newRepos(pool)}
}

func newRepos(db base.DBTX) *Repos {
	return &Repos{
		Users:         NewUserRepository(db),
		Students:      NewStudentRepository(db),
		Teachers:      NewTeacherRepository(db),
		Sessions:      NewSessionRepository(db),
		Payments:      NewPaymentRepository(db),
		Notifications: NewNotificationRepository(db),
	}
}

// Repos возвращает репозитории без транзакции
func (s *Store) Repos() *Repos {
	return s.repos
}

// WithTx выполняет fn в одной транзакции
func (s *Store) WithTx(ctx context.Context, fn func(*Repos) error) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(newRepos(tx)); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
