package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"geodistance-service/internal/domain"
	"geodistance-service/internal/ports"
	"strconv"
	"sync"
)

// MockGeocoder serves canned search results and counts calls per address.
type MockGeocoder struct {
	mu      sync.Mutex
	results map[string][]ports.GeocodeFeature
	errs    map[string][]error
	calls   map[string]int
}

func NewMockGeocoder() *MockGeocoder {
	return &MockGeocoder{
		results: make(map[string][]ports.GeocodeFeature),
		errs:    make(map[string][]error),
		calls:   make(map[string]int),
	}
}

// Answer address with one feature at c.
func (m *MockGeocoder) Add(address string, c domain.Coordinates) *MockGeocoder {
	return m.AddFeatures(address, Feature(c.Lon, c.Lat))
}

func (m *MockGeocoder) AddFeatures(address string, features ...ports.GeocodeFeature) *MockGeocoder {
	m.mu.Lock()
	defer m.mu.Unlock()
	if features == nil {
		features = []ports.GeocodeFeature{}
	}
	m.results[address] = features
	return m
}

// Fail the next len(errs) searches for address with errs, in order.
func (m *MockGeocoder) Fail(address string, errs ...error) *MockGeocoder {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs[address] = append(m.errs[address], errs...)
	return m
}

func (m *MockGeocoder) Calls(address string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[address]
}

func (m *MockGeocoder) TotalCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		n += c
	}
	return n
}

func (m *MockGeocoder) Search(ctx context.Context, address string) ([]ports.GeocodeFeature, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls[address]++

	if errs := m.errs[address]; len(errs) > 0 {
		m.errs[address] = errs[1:]
		return nil, errs[0]
	}

	r, ok := m.results[address]
	if !ok {
		return nil, fmt.Errorf("mock geocoder: no result for %q", address)
	}
	return r, nil
}

// Feature builds a point feature with GeoJSON [lon, lat] ordering.
func Feature(lon, lat float64) ports.GeocodeFeature {
	return RawFeature(formatFloat(lon), formatFloat(lat))
}

// RawFeature builds a point feature from raw JSON coordinate components.
func RawFeature(components ...string) ports.GeocodeFeature {
	coords := make([]json.RawMessage, 0, len(components))
	for _, c := range components {
		coords = append(coords, json.RawMessage(c))
	}
	return ports.GeocodeFeature{
		Type:     "Feature",
		Geometry: &ports.GeocodeGeometry{Type: "Point", Coordinates: coords},
	}
}

func formatFloat(f float64) string { return strconv.FormatFloat(f, 'g', -1, 64) }
