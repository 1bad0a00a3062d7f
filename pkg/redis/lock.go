package redis

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"social-blog/config"
	"social-blog/pkg/lock"
	"social-blog/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const lockKeyPrefix = "blog:lock:"

// unlockScript deletes the key only if it still holds our token, so a lock
// that expired and was taken by another process is left alone.
var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
    return redis.call("DEL", KEYS[1])
end
return 0
`)

// Locker is a lock.Locker shared by every server process talking to the
// same Redis. Each Lock call stores a fresh uuid under the key with SET NX
// and a TTL, retrying with a growing jittered delay.
type Locker struct {
	client *redis.Client
	ttl    time.Duration
	retry  int
}

var _ lock.Locker = (*Locker)(nil)

func NewLocker(client *redis.Client, cfg config.LockConfig) *Locker {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 5 * time.Second
	}
	retry := cfg.Retry
	if retry <= 0 {
		retry = 50
	}
	return &Locker{client: client, ttl: ttl, retry: retry}
}

func (l *Locker) Lock(ctx context.Context, key string) (func(), error) {
	redisKey := lockKeyPrefix + key
	value := uuid.New().String()

	for i := 0; i <= l.retry; i++ {
		if i > 0 {
			timer := time.NewTimer(retryDelay(i))
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil, ctx.Err()
			case <-timer.C:
			}
		}

		ok, err := l.client.SetNX(ctx, redisKey, value, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("acquire lock %s: %w", key, err)
		}
		if ok {
			return l.unlockFunc(redisKey, value), nil
		}
	}
	return nil, fmt.Errorf("%w: %s", lock.ErrNotAcquired, key)
}

func (l *Locker) unlockFunc(redisKey, value string) func() {
	return func() {
		// the caller's context may already be cancelled
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if err := unlockScript.Run(ctx, l.client, []string{redisKey}, value).Err(); err != nil {
			logger.Warn("release redis lock failed", zap.String("key", redisKey), zap.Error(err))
		}
	}
}

func retryDelay(times int) time.Duration {
	return time.Duration((times/5+1)*(10+rand.Intn(20))) * time.Millisecond
}
