package repository

import (
	"context"
	"fmt"
	"time"

	"expense-tracker/config"
	"expense-tracker/internal/common"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Снимает блокировку, только если ее держит этот владелец
var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type LockRepository struct {
	client *config.RedisClient
	owner  string
}

func NewLockRepository(rdb *config.RedisClient) *LockRepository {
	return &LockRepository{client: rdb, owner: uuid.NewString()}
}

// TryLock : SET key owner NX PX ttl. false, если блокировку держит другой экземпляр
func (r *LockRepository) TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	acquired, err := r.client.Client.SetNX(ctx, r.key(key), r.owner, ttl).Result()
	if err != nil {
		return false, common.StoreError("ошибка захвата блокировки в Redis", err)
	}
	return acquired, nil
}

func (r *LockRepository) Unlock(ctx context.Context, key string) error {
	if err := unlockScript.Run(ctx, r.client.Client, []string{r.key(key)}, r.owner).Err(); err != nil {
		return common.StoreError("ошибка снятия блокировки в Redis", err)
	}
	return nil
}

func (r *LockRepository) key(name string) string {
	return fmt.Sprintf("lock:%s", name)
}
