package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"geodistance-service/internal/domain"
	"geodistance-service/internal/platform/obs"
	"strings"
	"time"
)

// SQLGeocodeStore is a Postgres-backed store mapping addresses to coordinates.
// Rows past expires_at are ignored on read and replaced on write.
type SQLGeocodeStore struct {
	DB  *sql.DB
	now func() time.Time
}

func NewSQLGeocodeStore(db *sql.DB) *SQLGeocodeStore {
	return &SQLGeocodeStore{DB: db, now: time.Now}
}

// Create the geocode_cache table if it does not exist.
func InitGeocodeSchema(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return errors.New("init geocode schema: db is nil")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init geocode schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	statements := []string{
		`
	CREATE TABLE IF NOT EXISTS geocode_cache (
        address TEXT PRIMARY KEY,
        lat DOUBLE PRECISION NOT NULL,
        lon DOUBLE PRECISION NOT NULL,
        expires_at TIMESTAMPTZ NOT NULL
    );
	`,
		`
	CREATE INDEX IF NOT EXISTS idx_geocode_cache_expires_at
    ON geocode_cache(expires_at);
	`,
	}

	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init geocode schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init geocode schema: commit tx: %w", err)
	}

	return nil
}

func (s *SQLGeocodeStore) Get(ctx context.Context, key string) (_ domain.Coordinates, _ bool, err error) {
	defer obs.Time(ctx, "geocode.sql.Get")(&err)

	if s.DB == nil {
		return domain.Coordinates{}, false, errors.New("geocode store: db is nil")
	}
	if strings.TrimSpace(key) == "" {
		return domain.Coordinates{}, false, errors.New("get geocode store: key must not be empty")
	}

	q := `
	SELECT lat, lon
    FROM geocode_cache
    WHERE address = $1
        AND expires_at >= $2;
	`

	var c domain.Coordinates
	err = s.DB.QueryRowContext(ctx, q, key, s.now()).Scan(&c.Lat, &c.Lon)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Coordinates{}, false, nil
	}
	if err != nil {
		return domain.Coordinates{}, false, fmt.Errorf("get geocode store: query geocode_cache table: %w", err)
	}

	return c, true, nil
}

func (s *SQLGeocodeStore) Put(ctx context.Context, key string, c domain.Coordinates, ttl time.Duration) error {
	if s.DB == nil {
		return errors.New("geocode store: db is nil")
	}
	if strings.TrimSpace(key) == "" {
		return errors.New("insert geocode store: empty address key")
	}
	if !c.Finite() {
		return fmt.Errorf("insert geocode store %q: %w", key, domain.ErrInvalidCoordinates)
	}
	if ttl <= 0 {
		return fmt.Errorf("insert geocode store %q: ttl must be positive", key)
	}

	q := `
	INSERT INTO geocode_cache (address, lat, lon, expires_at)
    VALUES ($1, $2, $3, $4)
	ON CONFLICT (address) DO UPDATE
	SET lat = EXCLUDED.lat,
		lon = EXCLUDED.lon,
		expires_at = EXCLUDED.expires_at;
	`

	if _, err := s.DB.ExecContext(ctx, q, key, c.Lat, c.Lon, s.now().Add(ttl)); err != nil {
		return fmt.Errorf("insert geocode store address=%q: %w", key, err)
	}

	return nil
}

// Remove expired rows. Reads never return them, so this only reclaims space.
func (s *SQLGeocodeStore) Purge(ctx context.Context) (int64, error) {
	if s.DB == nil {
		return 0, errors.New("geocode store: db is nil")
	}

	res, err := s.DB.ExecContext(ctx, `DELETE FROM geocode_cache WHERE expires_at < $1;`, s.now())
	if err != nil {
		return 0, fmt.Errorf("purge geocode store: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("purge geocode store: rows affected: %w", err)
	}

	return n, nil
}
