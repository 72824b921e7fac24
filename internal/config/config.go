package config

import (
	"fmt"
	"geodistance-service/internal/domain"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds runtime settings read from the environment.
type Config struct {
	Port string

	GeocodeBaseURL    string
	UserAgent         string
	HTTPTimeout       time.Duration
	RequestsPerSecond float64

	CacheTTL         time.Duration
	RetryMaxAttempts int
	RetryDelay       time.Duration
	AllowedPrefixes  []string
	DefaultEllipsoid domain.Ellipsoid

	// Optional second-tier geocode stores. Empty disables them.
	RedisURL    string
	DatabaseURL string
}

const (
	DefaultGeocodeBaseURL = "https://msearch.gsi.go.jp/address-search/AddressSearch"
	DefaultUserAgent      = "geodistance-service/1.0"
	DefaultCacheTTL       = 24 * time.Hour
)

// Load reads a .env file when present, then the environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}
	return FromEnv()
}

// FromEnv builds a Config from the current environment only.
func FromEnv() (Config, error) {
	cfg := Config{
		Port:           Get("PORT", "8080"),
		GeocodeBaseURL: Get("GEOCODE_BASE_URL", DefaultGeocodeBaseURL),
		UserAgent:      Get("GEOCODE_USER_AGENT", DefaultUserAgent),
		RedisURL:       Get("REDIS_URL", ""),
		DatabaseURL:    Get("DATABASE_URL", ""),
	}

	var err error
	if cfg.HTTPTimeout, err = getDuration("GEOCODE_TIMEOUT", 10*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.RequestsPerSecond, err = getFloat("GEOCODE_RPS", 0); err != nil {
		return Config{}, err
	}
	if cfg.CacheTTL, err = getDuration("GEOCODE_CACHE_TTL", DefaultCacheTTL); err != nil {
		return Config{}, err
	}
	if cfg.RetryMaxAttempts, err = getInt("GEOCODE_RETRY_ATTEMPTS", 5); err != nil {
		return Config{}, err
	}
	if cfg.RetryDelay, err = getDuration("GEOCODE_RETRY_DELAY", 5*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.DefaultEllipsoid, err = domain.ParseEllipsoid(Get("DEFAULT_ELLIPSOID", "WGS84")); err != nil {
		return Config{}, fmt.Errorf("config DEFAULT_ELLIPSOID: %w", err)
	}

	cfg.AllowedPrefixes = parsePrefixes(Get("ALLOWED_PREFIXES", ""))

	if cfg.RetryMaxAttempts < 1 {
		return Config{}, fmt.Errorf("config GEOCODE_RETRY_ATTEMPTS: must be at least 1, got %d", cfg.RetryMaxAttempts)
	}
	if cfg.CacheTTL <= 0 {
		return Config{}, fmt.Errorf("config GEOCODE_CACHE_TTL: must be positive, got %s", cfg.CacheTTL)
	}

	return cfg, nil
}

// Get returns the environment value for key, or fallback when unset or empty.
func Get(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// "prefectures" expands to the built-in list of Japanese prefectures.
func parsePrefixes(v string) []string {
	if v == "" {
		return nil
	}
	if strings.EqualFold(v, "prefectures") {
		return append([]string(nil), domain.JapanesePrefectures...)
	}
	return strings.Split(v, ",")
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := Get(key, "")
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("config %s: %w", key, err)
	}
	return d, nil
}

func getInt(key string, fallback int) (int, error) {
	v := Get(key, "")
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("config %s: %w", key, err)
	}
	return n, nil
}

func getFloat(key string, fallback float64) (float64, error) {
	v := Get(key, "")
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("config %s: %w", key, err)
	}
	return f, nil
}
