package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisReminderMarker хранит отметки в Redis, общие для всех реплик
type RedisReminderMarker struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisReminderMarker(client *redis.Client, ttl time.Duration) *RedisReminderMarker {
	return &RedisReminderMarker{client: client, ttl: ttl}
}

func (m *RedisReminderMarker) MarkSent(ctx context.Context, sessionID int64) (bool, error) {
	ok, err := m.client.SetNX(ctx, reminderKey(sessionID), time.Now().Unix(), m.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx: %w", err)
	}
	return ok, nil
}

func (m *RedisReminderMarker) Release(ctx context.Context, sessionID int64) error {
	if err := m.client.Del(ctx, reminderKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

func reminderKey(sessionID int64) string {
	return fmt.Sprintf("ledger:reminder:session:%d", sessionID)
}

// MemoryReminderMarker хранит отметки в памяти процесса
type MemoryReminderMarker struct {
	mu   sync.Mutex
	sent map[int64]struct{}
}

func NewMemoryReminderMarker() *MemoryReminderMarker {
	return &MemoryReminderMarker{sent: make(map[int64]struct{})}
}

func (m *MemoryReminderMarker) MarkSent(_ context.Context, sessionID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sent[sessionID]; ok {
		return false, nil
	}
	m.sent[sessionID] = struct{}{}
	return true, nil
}

func (m *MemoryReminderMarker) Release(_ context.Context, sessionID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sent, sessionID)
	return nil
}
