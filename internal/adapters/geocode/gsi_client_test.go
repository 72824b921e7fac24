package geocode

import (
	"context"
	"errors"
	"geodistance-service/internal/domain"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const gsiTokyoStation = `[
  {
    "geometry": {"coordinates": [139.7671, 35.6812], "type": "Point"},
    "type": "Feature",
    "properties": {"addressCode": "13101", "title": "東京都千代田区丸の内一丁目"}
  },
  {
    "geometry": {"coordinates": [139.7, 35.6], "type": "Point"},
    "type": "Feature",
    "properties": {"addressCode": "", "title": "東京都"}
  }
]`

func newTestClient(t *testing.T, h http.HandlerFunc) *GSIClient {
	t.Helper()

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := NewGSIClient(GSIConfig{BaseURL: srv.URL, UserAgent: "geodistance-test/1.0", Timeout: 2 * time.Second})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return c
}

func TestGSIClientSearch(t *testing.T) {
	var gotQuery, gotAccept, gotUA string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		gotAccept = r.Header.Get("Accept")
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(gsiTokyoStation))
	})

	features, err := c.Search(context.Background(), "東京都千代田区丸の内1-9-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotQuery != "東京都千代田区丸の内1-9-1" {
		t.Errorf("q = %q", gotQuery)
	}
	if gotAccept != "application/json" {
		t.Errorf("Accept = %q", gotAccept)
	}
	if gotUA != "geodistance-test/1.0" {
		t.Errorf("User-Agent = %q", gotUA)
	}

	if len(features) != 2 {
		t.Fatalf("len(features) = %d, want 2", len(features))
	}
	f := features[0]
	if f.Properties.AddressCode != "13101" || f.Properties.Title != "東京都千代田区丸の内一丁目" {
		t.Errorf("properties = %+v", f.Properties)
	}
	if f.Geometry == nil || len(f.Geometry.Coordinates) != 2 {
		t.Fatalf("geometry = %+v", f.Geometry)
	}
	if string(f.Geometry.Coordinates[0]) != "139.7671" || string(f.Geometry.Coordinates[1]) != "35.6812" {
		t.Errorf("coordinates = %s, %s; want lon first", f.Geometry.Coordinates[0], f.Geometry.Coordinates[1])
	}
}

func TestGSIClientEmptyResult(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})

	features, err := c.Search(context.Background(), "nowhere")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(features) != 0 {
		t.Fatalf("len(features) = %d, want 0", len(features))
	}
}

func TestGSIClientStatusError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusServiceUnavailable)
	})

	_, err := c.Search(context.Background(), "東京駅")

	var te *domain.TransportError
	if !errors.As(err, &te) {
		t.Fatalf("err = %v, want *domain.TransportError", err)
	}
	if te.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("StatusCode = %d, want 503", te.StatusCode)
	}
	if te.Status != "503 Service Unavailable" {
		t.Errorf("Status = %q", te.Status)
	}
}

func TestGSIClientNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := NewGSIClient(GSIConfig{BaseURL: url, UserAgent: "t", Timeout: time.Second})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	_, err = c.Search(context.Background(), "東京駅")

	var te *domain.TransportError
	if !errors.As(err, &te) {
		t.Fatalf("err = %v, want *domain.TransportError", err)
	}
	if te.StatusCode != 0 {
		t.Errorf("StatusCode = %d, want 0 for network error", te.StatusCode)
	}
}

func TestGSIClientDecodeError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"not":"an array"}`))
	})

	_, err := c.Search(context.Background(), "東京駅")
	if err == nil {
		t.Fatal("expected decode error")
	}
	if domain.IsTransport(err) {
		t.Fatalf("decode failure should not be a transport error: %v", err)
	}
}

func TestNewGSIClientValidation(t *testing.T) {
	if _, err := NewGSIClient(GSIConfig{}); err == nil {
		t.Fatal("expected error for empty user agent")
	}
	if _, err := NewGSIClient(GSIConfig{UserAgent: "t", RequestsPerSecond: -1}); err == nil {
		t.Fatal("expected error for negative rate")
	}
}

func TestGSIClientKeepsMalformedCandidates(t *testing.T) {
	cases := map[string]struct {
		body         string
		wantGeometry bool
		wantCoords   int
	}{
		"string coordinates": {`[{"geometry":{"coordinates":"139.7,35.6"}}]`, true, 0},
		"string geometry":    {`[{"geometry":"none"}]`, false, 0},
		"null geometry":      {`[{"geometry":null}]`, false, 0},
		"bare number":        {`[1]`, false, 0},
		"numeric title":      {`[{"geometry":{"coordinates":[139.7,35.6]},"properties":{"title":1}}]`, true, 2},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tc.body))
			})

			features, err := c.Search(context.Background(), "addr")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(features) != 1 {
				t.Fatalf("len(features) = %d, want 1", len(features))
			}

			g := features[0].Geometry
			if (g != nil) != tc.wantGeometry {
				t.Fatalf("geometry = %+v, want present=%v", g, tc.wantGeometry)
			}
			if g != nil && len(g.Coordinates) != tc.wantCoords {
				t.Fatalf("len(coordinates) = %d, want %d", len(g.Coordinates), tc.wantCoords)
			}
		})
	}
}

func TestGSIClientMalformedLaterCandidateKeepsFirst(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"geometry":{"coordinates":[139.7,35.6]},"properties":{"title":"東京都"}},{"geometry":"x"}]`))
	})

	features, err := c.Search(context.Background(), "addr")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(features) != 2 {
		t.Fatalf("len(features) = %d, want 2", len(features))
	}
	f := features[0]
	if f.Properties.Title != "東京都" {
		t.Errorf("title = %q", f.Properties.Title)
	}
	if f.Geometry == nil || string(f.Geometry.Coordinates[0]) != "139.7" || string(f.Geometry.Coordinates[1]) != "35.6" {
		t.Fatalf("first geometry = %+v", f.Geometry)
	}
	if features[1].Geometry != nil {
		t.Fatalf("second geometry = %+v, want nil", features[1].Geometry)
	}
}
