package ledger

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache fronts balance reads. Writes invalidate; only reads populate.
type Cache interface {
	GetBalance(ctx context.Context, ownerID uint64) (uint64, bool, error)
	SetBalance(ctx context.Context, ownerID uint64, amount uint64, ttl time.Duration) error
	DelBalance(ctx context.Context, ownerIDs ...uint64) error
}

type redisCache struct {
	client *redis.Client
}

func NewRedisCache(c *redis.Client) Cache {
	return &redisCache{client: c}
}

func (r *redisCache) GetBalance(ctx context.Context, ownerID uint64) (uint64, bool, error) {
	b, err := r.client.Get(ctx, balanceKey(ownerID)).Result()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	amount, err := strconv.ParseUint(b, 10, 64)
	if err != nil {
		// a corrupt entry keeps hitting otherwise; drop it
		_ = r.client.Del(ctx, balanceKey(ownerID)).Err()
		return 0, false, err
	}
	return amount, true, nil
}

func (r *redisCache) SetBalance(ctx context.Context, ownerID uint64, amount uint64, ttl time.Duration) error {
	return r.client.Set(ctx, balanceKey(ownerID), strconv.FormatUint(amount, 10), withJitter(ttl, 300*time.Millisecond)).Err()
}

func (r *redisCache) DelBalance(ctx context.Context, ownerIDs ...uint64) error {
	keys := make([]string, 0, len(ownerIDs))
	for _, id := range ownerIDs {
		keys = append(keys, balanceKey(id))
	}
	return r.client.Del(ctx, keys...).Err()
}

func balanceKey(ownerID uint64) string {
	return fmt.Sprintf("ledger:bal:%d", ownerID)
}

// withJitter spreads expirations so a burst of sets does not expire as one
// thundering herd.
func withJitter(ttl time.Duration, jitter time.Duration) time.Duration {
	if ttl <= 0 || jitter <= 0 {
		return ttl
	}
	return ttl + time.Duration(rand.Int63n(int64(jitter)))
}
