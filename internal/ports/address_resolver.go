package ports

import (
	"context"
	"geodistance-service/internal/domain"
)

// Contract for turning a free-text address into coordinates.
type AddressResolver interface {
	Resolve(ctx context.Context, address string) (domain.Coordinates, error)
}
