package cache

import (
	"context"
	"geodistance-service/internal/domain"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedisStore(t *testing.T) (*RedisGeocodeStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisGeocodeStore(client), mr
}

func TestRedisGeocodeStorePutGet(t *testing.T) {
	store, _ := newTestRedisStore(t)
	ctx := context.Background()
	osaka := domain.Coordinates{Lat: 34.7024, Lon: 135.4959}

	if err := store.Put(ctx, "大阪駅", osaka, time.Hour); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, ok, err := store.Get(ctx, "大阪駅")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok || got != osaka {
		t.Fatalf("Get = %v, %v; want %v, true", got, ok, osaka)
	}
}

func TestRedisGeocodeStoreMissAndExpiry(t *testing.T) {
	store, mr := newTestRedisStore(t)
	ctx := context.Background()

	if _, ok, err := store.Get(ctx, "nowhere"); err != nil || ok {
		t.Fatalf("Get on miss = %v, %v; want false, nil", ok, err)
	}

	if err := store.Put(ctx, "k", domain.Coordinates{Lat: 1, Lon: 2}, time.Minute); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	mr.FastForward(2 * time.Minute)

	if _, ok, err := store.Get(ctx, "k"); err != nil || ok {
		t.Fatalf("Get after expiry = %v, %v; want false, nil", ok, err)
	}
}

func TestRedisGeocodeStoreRejectsBadInput(t *testing.T) {
	store, _ := newTestRedisStore(t)
	ctx := context.Background()

	if err := store.Put(ctx, " ", domain.Coordinates{}, time.Minute); err == nil {
		t.Fatal("expected error for empty key")
	}
	if err := store.Put(ctx, "k", domain.Coordinates{Lat: 1, Lon: 2}, 0); err == nil {
		t.Fatal("expected error for zero ttl")
	}
}

func TestRedisGeocodeStoreCorruptValue(t *testing.T) {
	store, mr := newTestRedisStore(t)

	if err := mr.Set(redisKeyPrefix+"k", "not json"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if _, _, err := store.Get(context.Background(), "k"); err == nil {
		t.Fatal("expected decode error")
	}
}
