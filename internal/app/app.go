package app

import (
	"context"
	"fmt"
	"geodistance-service/internal/adapters/cache"
	"geodistance-service/internal/adapters/geocode"
	"geodistance-service/internal/config"
	"geodistance-service/internal/platform/db"
	"geodistance-service/internal/ports"
	"geodistance-service/internal/services"
	"log"
)

// App is the composition root shared by the server and the CLI.
// It wires concrete adapters (GSI, Redis, Postgres) behind ports.
type App struct {
	Config  config.Config
	Cache   *cache.MemoryGeocodeCache
	Service *services.DistanceService

	closers []func() error
}

type Options struct {
	// Wrap the resolver with the retry policy from Config.
	Retry bool
}

func New(ctx context.Context, cfg config.Config, opts Options) (*App, error) {
	a := &App{Config: cfg}

	client, err := geocode.NewGSIClient(geocode.GSIConfig{
		BaseURL:           cfg.GeocodeBaseURL,
		UserAgent:         cfg.UserAgent,
		Timeout:           cfg.HTTPTimeout,
		RequestsPerSecond: cfg.RequestsPerSecond,
	})
	if err != nil {
		return nil, fmt.Errorf("new app: %w", err)
	}

	store, err := a.openStore(ctx)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("new app: %w", err)
	}

	a.Cache = cache.NewMemoryGeocodeCache(cfg.CacheTTL)

	resolverOpts := []services.ResolverOption{
		services.WithTTL(cfg.CacheTTL),
		services.WithAllowedPrefixes(cfg.AllowedPrefixes),
	}
	if store != nil {
		resolverOpts = append(resolverOpts, services.WithStore(store))
	}

	resolver, err := services.NewResolver(client, a.Cache, resolverOpts...)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("new app: %w", err)
	}

	var addressResolver ports.AddressResolver = resolver
	if opts.Retry {
		addressResolver = services.NewRetryingResolver(resolver, services.RetryPolicy{
			MaxAttempts: cfg.RetryMaxAttempts,
			Delay:       cfg.RetryDelay,
		})
	}

	a.Service, err = services.NewDistanceService(addressResolver)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("new app: %w", err)
	}

	return a, nil
}

// Redis takes precedence when both stores are configured.
func (a *App) openStore(ctx context.Context) (ports.GeocodeStore, error) {
	switch {
	case a.Config.RedisURL != "":
		client, err := cache.ConnectRedis(ctx, a.Config.RedisURL)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, client.Close)
		log.Println("geocode store: redis")
		return cache.NewRedisGeocodeStore(client), nil

	case a.Config.DatabaseURL != "":
		conn, err := db.Open(ctx, a.Config.DatabaseURL)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, conn.Close)
		if err := cache.InitGeocodeSchema(ctx, conn); err != nil {
			return nil, err
		}
		log.Println("geocode store: postgres")
		return cache.NewSQLGeocodeStore(conn), nil
	}

	return nil, nil
}

func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			log.Printf("close: %v", err)
		}
	}
	a.closers = nil
}
