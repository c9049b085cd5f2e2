package fetch

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// SeenStore remembers article URLs already ingested by earlier digests so
// consecutive runs do not re-analyze yesterday's content
type SeenStore interface {
	Seen(ctx context.Context, url string) (bool, error)
	MarkSeen(ctx context.Context, urls []string) error
	Close() error
}

const (
	seenKey = "seointel:seen_urls"
	// seenTTL bounds the set; an article resurfacing after this long is
	// treated as new, which is acceptable for a daily pipeline.
	seenTTL = 14 * 24 * time.Hour
)

// RedisSeenStore implements SeenStore on a redis set
type RedisSeenStore struct {
	client *redis.Client
}

// NewRedisSeenStore connects to redis and verifies the connection
func NewRedisSeenStore(redisURL string) (*RedisSeenStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisSeenStore{client: client}, nil
}

// Seen reports whether the URL was already ingested
func (s *RedisSeenStore) Seen(ctx context.Context, url string) (bool, error) {
	seen, err := s.client.SIsMember(ctx, seenKey, url).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check seen set: %w", err)
	}
	return seen, nil
}

// MarkSeen records URLs and refreshes the set's expiry
func (s *RedisSeenStore) MarkSeen(ctx context.Context, urls []string) error {
	if len(urls) == 0 {
		return nil
	}

	members := make([]any, len(urls))
	for i, url := range urls {
		members[i] = url
	}

	if err := s.client.SAdd(ctx, seenKey, members...).Err(); err != nil {
		return fmt.Errorf("failed to add to seen set: %w", err)
	}
	if err := s.client.Expire(ctx, seenKey, seenTTL).Err(); err != nil {
		return fmt.Errorf("failed to refresh seen set expiry: %w", err)
	}

	return nil
}

// Close closes the redis connection
func (s *RedisSeenStore) Close() error {
	return s.client.Close()
}
