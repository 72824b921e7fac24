package services

import (
	"context"
	"errors"
	"geodistance-service/internal/adapters/geocode"
	"geodistance-service/internal/domain"
	"math"
	"testing"
	"time"
)

type distanceCall struct {
	lat1, lon1, lat2, lon2 float64
	ellipsoid              domain.Ellipsoid
}

// newRecordingService swaps the distance formula for one that records its inputs.
func newRecordingService(t *testing.T, g *geocode.MockGeocoder) (*DistanceService, *[]distanceCall) {
	t.Helper()

	r, _ := newTestResolver(t, g)
	svc, err := NewDistanceService(r)
	if err != nil {
		t.Fatalf("new distance service: %v", err)
	}

	calls := &[]distanceCall{}
	svc.distance = func(lat1, lon1, lat2, lon2 float64, e domain.Ellipsoid) (float64, error) {
		*calls = append(*calls, distanceCall{lat1, lon1, lat2, lon2, e})
		return 400_000, nil
	}
	return svc, calls
}

func TestGetDistanceCoordinates(t *testing.T) {
	g := geocode.NewMockGeocoder()
	svc, calls := newRecordingService(t, g)

	d, err := svc.GetDistance(context.Background(), domain.At(tokyoStation), domain.At(osakaStation), domain.GRS80)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d != 400_000 {
		t.Fatalf("distance = %v, want 400000", d)
	}

	want := distanceCall{tokyoStation.Lat, tokyoStation.Lon, osakaStation.Lat, osakaStation.Lon, domain.GRS80}
	if len(*calls) != 1 || (*calls)[0] != want {
		t.Fatalf("calls = %+v, want [%+v]", *calls, want)
	}
	if g.TotalCalls() != 0 {
		t.Fatal("coordinate endpoints must not reach the geocoder")
	}
}

func TestGetDistanceAddresses(t *testing.T) {
	g := geocode.NewMockGeocoder().Add(tokyoAddress, tokyoStation).Add(osakaAddress, osakaStation)
	svc, calls := newRecordingService(t, g)

	var zero domain.Ellipsoid
	if _, err := svc.GetDistance(context.Background(), domain.AddressOf(tokyoAddress), domain.AddressOf(osakaAddress), zero); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := distanceCall{tokyoStation.Lat, tokyoStation.Lon, osakaStation.Lat, osakaStation.Lon, domain.WGS84}
	if len(*calls) != 1 || (*calls)[0] != want {
		t.Fatalf("calls = %+v, want [%+v]", *calls, want)
	}
	if g.Calls(tokyoAddress) != 1 || g.Calls(osakaAddress) != 1 {
		t.Fatalf("geocoder calls = %d/%d, want 1/1", g.Calls(tokyoAddress), g.Calls(osakaAddress))
	}
}

func TestGetDistanceAddressesEndToEnd(t *testing.T) {
	g := geocode.NewMockGeocoder().Add(tokyoAddress, tokyoStation).Add(osakaAddress, osakaStation)
	r, _ := newTestResolver(t, g)
	svc, err := NewDistanceService(r)
	if err != nil {
		t.Fatalf("new distance service: %v", err)
	}

	byAddress, err := svc.GetDistance(context.Background(), domain.AddressOf(tokyoAddress), domain.AddressOf(osakaAddress), domain.WGS84)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	byCoords, err := svc.RawDistance(tokyoStation.Lat, tokyoStation.Lon, osakaStation.Lat, osakaStation.Lon, domain.WGS84)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if byAddress != byCoords {
		t.Fatalf("address distance %v != coordinate distance %v", byAddress, byCoords)
	}
}

func TestGetDistanceInvalidArguments(t *testing.T) {
	cases := map[string][2]domain.Endpoint{
		"coords then address": {domain.At(tokyoStation), domain.AddressOf(osakaAddress)},
		"address then coords": {domain.AddressOf(tokyoAddress), domain.At(osakaStation)},
		"absent from":         {{}, domain.At(osakaStation)},
		"absent to":           {domain.AddressOf(tokyoAddress), {}},
		"both absent":         {{}, {}},
	}

	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			g := geocode.NewMockGeocoder().Add(tokyoAddress, tokyoStation).Add(osakaAddress, osakaStation)
			svc, calls := newRecordingService(t, g)

			_, err := svc.GetDistance(context.Background(), c[0], c[1], domain.WGS84)
			if !errors.Is(err, domain.ErrInvalidArguments) {
				t.Fatalf("err = %v, want ErrInvalidArguments", err)
			}
			if g.TotalCalls() != 0 || len(*calls) != 0 {
				t.Fatal("invalid arguments must fail before any lookup or computation")
			}
		})
	}
}

func TestGetDistanceNaNCoordinates(t *testing.T) {
	svc, err := NewDistanceService(NewRetryingResolver(&scriptedResolver{}, RetryPolicy{}))
	if err != nil {
		t.Fatalf("new distance service: %v", err)
	}

	_, err = svc.GetDistance(context.Background(),
		domain.At(domain.Coordinates{Lat: math.NaN(), Lon: 0}), domain.At(osakaStation), domain.WGS84)
	if !errors.Is(err, domain.ErrInvalidCoordinates) {
		t.Fatalf("err = %v, want ErrInvalidCoordinates", err)
	}
}

func TestGetDistanceResolutionFailure(t *testing.T) {
	g := geocode.NewMockGeocoder().AddFeatures("無効な住所").Add(osakaAddress, osakaStation)
	svc, calls := newRecordingService(t, g)

	_, err := svc.GetDistance(context.Background(), domain.AddressOf("無効な住所"), domain.AddressOf(osakaAddress), domain.WGS84)
	if !errors.Is(err, domain.ErrUnsupportedRegion) {
		t.Fatalf("err = %v, want ErrUnsupportedRegion", err)
	}
	if len(*calls) != 0 {
		t.Fatal("distance must not be computed after a failed resolution")
	}
}

// slowResolver blocks on one address until released.
type slowResolver struct {
	slow    string
	release chan struct{}
}

func (s *slowResolver) Resolve(ctx context.Context, address string) (domain.Coordinates, error) {
	if address == s.slow {
		<-s.release
		return osakaStation, nil
	}
	return domain.Coordinates{}, &domain.TransportError{StatusCode: 500, Status: "500 Internal Server Error"}
}

func TestGetDistanceFirstFailureWins(t *testing.T) {
	r := &slowResolver{slow: osakaAddress, release: make(chan struct{})}
	defer close(r.release)

	svc, err := NewDistanceService(r)
	if err != nil {
		t.Fatalf("new distance service: %v", err)
	}

	done := make(chan error, 1)
	go func() {
		_, err := svc.GetDistance(context.Background(), domain.AddressOf(tokyoAddress), domain.AddressOf(osakaAddress), domain.WGS84)
		done <- err
	}()

	select {
	case err := <-done:
		if !domain.IsTransport(err) {
			t.Fatalf("err = %v, want transport error", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("failure should be returned without waiting for the other resolution")
	}
}

func TestGetDistanceUnknownEllipsoid(t *testing.T) {
	g := geocode.NewMockGeocoder().Add(tokyoAddress, tokyoStation).Add(osakaAddress, osakaStation)
	r, _ := newTestResolver(t, g)
	svc, _ := NewDistanceService(r)

	_, err := svc.GetDistance(context.Background(), domain.AddressOf(tokyoAddress), domain.AddressOf(osakaAddress), domain.Ellipsoid(7))
	if !errors.Is(err, domain.ErrUnknownEllipsoid) {
		t.Fatalf("err = %v, want ErrUnknownEllipsoid", err)
	}
	if g.TotalCalls() != 0 {
		t.Fatal("unknown ellipsoid must be rejected before any lookup")
	}
}
