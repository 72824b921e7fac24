package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"geodistance-service/internal/domain"
	"geodistance-service/internal/platform/obs"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "geocode:"

// RedisGeocodeStore shares resolved coordinates between processes.
// Expiry is delegated to Redis key TTLs.
type RedisGeocodeStore struct {
	Client redis.UniversalClient
}

func NewRedisGeocodeStore(client redis.UniversalClient) *RedisGeocodeStore {
	return &RedisGeocodeStore{Client: client}
}

// ConnectRedis parses a redis:// URL and verifies the server is reachable.
func ConnectRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("connect redis: parse url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect redis: ping: %w", err)
	}
	return client, nil
}

func (s *RedisGeocodeStore) Get(ctx context.Context, key string) (_ domain.Coordinates, _ bool, err error) {
	defer obs.Time(ctx, "geocode.redis.Get")(&err)

	if s.Client == nil {
		return domain.Coordinates{}, false, errors.New("geocode store: redis client is nil")
	}
	if strings.TrimSpace(key) == "" {
		return domain.Coordinates{}, false, errors.New("get geocode store: key must not be empty")
	}

	b, err := s.Client.Get(ctx, redisKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Coordinates{}, false, nil
	}
	if err != nil {
		return domain.Coordinates{}, false, fmt.Errorf("get geocode store %q: %w", key, err)
	}

	var c domain.Coordinates
	if err := json.Unmarshal(b, &c); err != nil {
		return domain.Coordinates{}, false, fmt.Errorf("get geocode store %q: decode: %w", key, err)
	}
	if !c.Finite() {
		return domain.Coordinates{}, false, fmt.Errorf("get geocode store %q: %w", key, domain.ErrInvalidCoordinates)
	}

	return c, true, nil
}

func (s *RedisGeocodeStore) Put(ctx context.Context, key string, c domain.Coordinates, ttl time.Duration) error {
	if s.Client == nil {
		return errors.New("geocode store: redis client is nil")
	}
	if strings.TrimSpace(key) == "" {
		return errors.New("put geocode store: key must not be empty")
	}
	if !c.Finite() {
		return fmt.Errorf("put geocode store %q: %w", key, domain.ErrInvalidCoordinates)
	}
	if ttl <= 0 {
		return fmt.Errorf("put geocode store %q: ttl must be positive", key)
	}

	b, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("put geocode store %q: encode: %w", key, err)
	}

	if err := s.Client.Set(ctx, redisKeyPrefix+key, b, ttl).Err(); err != nil {
		return fmt.Errorf("put geocode store %q: %w", key, err)
	}

	return nil
}
