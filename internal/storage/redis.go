package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/user/lead-crawler/internal/domain"
)

const crawlKeyPrefix = "leadgen:crawl:v1:"

// RedisStore caches per-site crawl results so repeated searches over the
// same area do not crawl a website twice within the TTL.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(addr, password string, db int) *RedisStore {
	rdb := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	return &RedisStore{client: rdb}
}

// NewRedisStoreFromClient wraps an existing client.
func NewRedisStoreFromClient(c *redis.Client) *RedisStore {
	return &RedisStore{client: c}
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

// GetCrawl returns the cached result for website crawled with region's
// phone rules. ok is false on a miss.
func (s *RedisStore) GetCrawl(ctx context.Context, website, region string) (domain.ContactResult, bool, error) {
	var res domain.ContactResult
	raw, err := s.client.Get(ctx, crawlKey(website, region)).Bytes()
	if errors.Is(err, redis.Nil) {
		return res, false, nil
	}
	if err != nil {
		return res, false, err
	}
	if err := json.Unmarshal(raw, &res); err != nil {
		return res, false, fmt.Errorf("decode cached crawl for %s: %w", website, err)
	}
	return res, true, nil
}

// PutCrawl stores the result for website and region with the given TTL.
func (s *RedisStore) PutCrawl(ctx context.Context, website, region string, res domain.ContactResult, ttl time.Duration) error {
	raw, err := json.Marshal(res)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, crawlKey(website, region), raw, ttl).Err()
}

// crawlKey hashes the region and website so keys stay short and safe.
func crawlKey(website, region string) string {
	h := sha256.Sum256([]byte(region + "|" + website))
	return crawlKeyPrefix + hex.EncodeToString(h[:])
}
