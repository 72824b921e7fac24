package ports

import (
	"context"
	"encoding/json"
)

// One candidate returned by an address search, in GeoJSON feature shape.
// Adapters never fail on a malformed candidate; mistyped parts are left zero.
type GeocodeFeature struct {
	Type       string           `json:"type"`
	Geometry   *GeocodeGeometry `json:"geometry"`
	Properties struct {
		AddressCode string `json:"addressCode"`
		Title       string `json:"title"`
	} `json:"properties"`
}

// Coordinates are ordered [longitude, latitude]. Components are kept raw so
// callers can tell a missing or non-numeric value from a zero.
type GeocodeGeometry struct {
	Type        string            `json:"type"`
	Coordinates []json.RawMessage `json:"coordinates"`
}

// Contract for the external address search service.
type Geocoder interface {
	// Return candidates for an address ordered by relevance.
	// Transport failures are reported as *domain.TransportError.
	Search(ctx context.Context, address string) ([]GeocodeFeature, error)
}
