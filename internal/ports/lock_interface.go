package ports

import (
	"context"
	"time"
)

// LockRepository : Redis слой, распределенная блокировка для фоновых задач
type LockRepository interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Unlock(ctx context.Context, key string) error
}
