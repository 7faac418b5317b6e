// Package cache wraps a Redis client for memoizing derived reports
// (propagation tables, score maps). Callers key entries by a hash of the
// inputs that produced them, so a change to those inputs yields a new
// key; stale entries are not deleted and expire by their TTL.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

type Service struct {
	client *redis.Client
}

func NewService(client *redis.Client) *Service {
	return &Service{client: client}
}

func (s *Service) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	if err := s.client.Set(ctx, key, data, expiration).Err(); err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}

	return nil
}

func (s *Service) Get(ctx context.Context, key string, dest interface{}) error {
	data, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return fmt.Errorf("key not found")
		}
		return fmt.Errorf("failed to get cache: %w", err)
	}

	if err := json.Unmarshal([]byte(data), dest); err != nil {
		return fmt.Errorf("failed to unmarshal value: %w", err)
	}

	return nil
}

func (s *Service) Delete(ctx context.Context, keys ...string) error {
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete cache: %w", err)
	}
	return nil
}

func (s *Service) Exists(ctx context.Context, key string) (bool, error) {
	val, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check cache existence: %w", err)
	}
	return val > 0, nil
}

// Cache key generators, one per derived report the engine memoizes.
func PropagationCacheKey(stateHash string) string {
	return fmt.Sprintf("propagation:%s", stateHash)
}

func ExpectedScoresCacheKey(stateHash string) string {
	return fmt.Sprintf("scores:%s", stateHash)
}

func DistributionCacheKey(stateHash string, n int, seed int64) string {
	return fmt.Sprintf("distribution:%s:%d:%d", stateHash, n, seed)
}

func QuoteCacheKey(team string) string {
	return fmt.Sprintf("quote:%s", team)
}

// SetWithRetry retries a Set up to maxRetries times, backing off
// linearly, and returns the last error if every attempt fails.
func (s *Service) SetWithRetry(ctx context.Context, key string, value interface{}, expiration time.Duration, maxRetries int) error {
	var err error
	for i := 0; i < maxRetries; i++ {
		if err = s.Set(ctx, key, value, expiration); err == nil {
			return nil
		}
		logrus.Warnf("cache set failed (attempt %d/%d): %v", i+1, maxRetries, err)
		time.Sleep(time.Millisecond * 100 * time.Duration(i+1))
	}
	return err
}

// Flush clears every key in the client's current Redis database.
func (s *Service) Flush(ctx context.Context) error {
	return s.client.FlushDB(ctx).Err()
}
