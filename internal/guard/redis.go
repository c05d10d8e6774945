package guard

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const keyPrefix = "guard:"

// defaultTTL bounds a claim when the caller passes zero, so a crashed
// instance cannot pin a key forever.
const defaultTTL = time.Minute

// releaseScript deletes the key only if it still carries our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// Redis implements Guard with SET NX PX so every editor instance sharing the
// Redis server sees the same in-flight set.
type Redis struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedis creates a Redis-backed guard.
func NewRedis(client *redis.Client, logger *zap.Logger) *Redis {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Redis{client: client, logger: logger}
}

// TryAcquire claims key if no instance holds it.
func (g *Redis) TryAcquire(ctx context.Context, key string, ttl time.Duration) (func(), bool, error) {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	token := uuid.NewString()
	ok, err := g.client.SetNX(ctx, keyPrefix+key, token, ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("guard setnx %s: %w", key, err)
	}
	if !ok {
		return nil, false, nil
	}

	var once sync.Once
	release := func() {
		once.Do(func() {
			// The caller's ctx may already be cancelled.
			rctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := releaseScript.Run(rctx, g.client, []string{keyPrefix + key}, token).Err(); err != nil {
				g.logger.Warn("guard release failed", zap.String("key", key), zap.Error(err))
			}
		})
	}
	return release, true, nil
}
