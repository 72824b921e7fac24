package ports

import (
	"context"
	"geodistance-service/internal/domain"
	"time"
)

// Optional shared store behind the in-process geocode cache.
// Keys are normalized addresses.
type GeocodeStore interface {
	// Return the stored coordinates and whether a live entry exists.
	Get(ctx context.Context, key string) (domain.Coordinates, bool, error)
	// Store coordinates for key, expiring after ttl.
	Put(ctx context.Context, key string, c domain.Coordinates, ttl time.Duration) error
}
