package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"geodistance-service/internal/domain"
	"geodistance-service/internal/platform/obs"
	"geodistance-service/internal/ports"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const DefaultBaseURL = "https://msearch.gsi.go.jp/address-search/AddressSearch"

// GSIClient implements ports.Geocoder using the Geospatial Information
// Authority of Japan address search.
//
// The client makes a single attempt per call; retries belong to the caller.
// It is safe for concurrent use.
type GSIClient struct {
	session   *http.Client
	baseURL   string
	userAgent string
	limiter   *rate.Limiter
}

type GSIConfig struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
	// Requests per second. Zero disables client-side rate limiting.
	RequestsPerSecond float64
	// Overrides the default http.Client; Timeout is ignored when set.
	HTTPClient *http.Client
}

func NewGSIClient(cfg GSIConfig) (*GSIClient, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.UserAgent == "" {
		return nil, errors.New("gsi client: user agent is empty")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.RequestsPerSecond < 0 {
		return nil, fmt.Errorf("gsi client: negative rate limit %v", cfg.RequestsPerSecond)
	}

	session := cfg.HTTPClient
	if session == nil {
		session = &http.Client{Timeout: cfg.Timeout}
	}

	c := &GSIClient{
		session:   session,
		baseURL:   strings.TrimRight(cfg.BaseURL, "?"),
		userAgent: cfg.UserAgent,
	}
	if cfg.RequestsPerSecond > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}

	return c, nil
}

// Search returns address candidates ordered by relevance. An empty slice
// means the service understood the request but found nothing.
func (c *GSIClient) Search(ctx context.Context, address string) (_ []ports.GeocodeFeature, err error) {
	defer obs.Time(ctx, "gsi.Search")(&err)

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("gsi search: rate limit: %w", err)
		}
	}

	req, err := c.newRequest(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("gsi search: %w", err)
	}

	resp, err := c.do(req)
	if err != nil {
		return nil, fmt.Errorf("gsi search %q: %w", address, err)
	}
	defer resp.Body.Close()

	// Only a body that is not a JSON array fails here. Candidates are read
	// leniently so the resolver can classify a bad shape itself.
	var raw []json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("gsi search %q: decode response: %w", address, err)
	}

	features := make([]ports.GeocodeFeature, 0, len(raw))
	for _, r := range raw {
		features = append(features, decodeFeature(r))
	}

	return features, nil
}

func (c *GSIClient) newRequest(ctx context.Context, address string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	q := req.URL.Query()
	q.Set("q", address)
	req.URL.RawQuery = q.Encode()

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	return req, nil
}

// do maps network failures and non-2xx responses to *domain.TransportError.
func (c *GSIClient) do(req *http.Request) (*http.Response, error) {
	resp, err := c.session.Do(req)
	if err != nil {
		return nil, &domain.TransportError{Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		resp.Body.Close()

		te := &domain.TransportError{StatusCode: resp.StatusCode, Status: resp.Status}
		if body := strings.TrimSpace(string(b)); body != "" {
			te.Err = errors.New(body)
		}
		return nil, te
	}
	return resp, nil
}
