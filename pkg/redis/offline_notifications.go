package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	OfflineKeyPrefix = "blog:offline:"
	OfflineTTL       = 7 * 24 * time.Hour
	OfflineLimit     = 100
)

// OfflineStore queues notifications for users without a live websocket.
// Each user has one list, newest first, capped at OfflineLimit entries and
// expiring OfflineTTL after the last push.
type OfflineStore struct {
	client *redis.Client
}

func NewOfflineStore(client *redis.Client) *OfflineStore {
	return &OfflineStore{client: client}
}

func offlineKey(userID uint) string {
	return fmt.Sprintf("%s%d", OfflineKeyPrefix, userID)
}

// Push queues payload for userID.
func (s *OfflineStore) Push(ctx context.Context, userID uint, payload []byte) error {
	if s.client == nil {
		return errNilClient
	}
	key := offlineKey(userID)

	pipe := s.client.TxPipeline()
	pipe.LPush(ctx, key, payload)
	pipe.LTrim(ctx, key, 0, OfflineLimit-1)
	pipe.Expire(ctx, key, OfflineTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("push offline notification: %w", err)
	}
	return nil
}

// Drain returns every queued payload for userID, oldest first, and empties
// the queue.
func (s *OfflineStore) Drain(ctx context.Context, userID uint) ([][]byte, error) {
	if s.client == nil {
		return nil, errNilClient
	}
	key := offlineKey(userID)

	pipe := s.client.TxPipeline()
	rangeCmd := pipe.LRange(ctx, key, 0, -1)
	pipe.Del(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("drain offline notifications: %w", err)
	}

	results := rangeCmd.Val()
	payloads := make([][]byte, 0, len(results))
	for i := len(results) - 1; i >= 0; i-- {
		payloads = append(payloads, []byte(results[i]))
	}
	return payloads, nil
}

// Count returns the queue length for userID.
func (s *OfflineStore) Count(ctx context.Context, userID uint) (int64, error) {
	if s.client == nil {
		return 0, errNilClient
	}
	n, err := s.client.LLen(ctx, offlineKey(userID)).Result()
	if err != nil {
		return 0, fmt.Errorf("count offline notifications: %w", err)
	}
	return n, nil
}
