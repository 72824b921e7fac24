package api

import (
	"geodistance-service/internal/adapters/cache"
	"geodistance-service/internal/api/handlers"
	"geodistance-service/internal/domain"
	"geodistance-service/internal/services"
	"net/http"
)

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(svc *services.DistanceService, geocodeCache *cache.MemoryGeocodeCache, defaultEllipsoid domain.Ellipsoid) http.Handler {
	mux := http.NewServeMux()

	distanceHandler := &handlers.DistanceHandler{Service: svc, DefaultEllipsoid: defaultEllipsoid}
	resolveHandler := &handlers.ResolveHandler{Service: svc}
	cacheHandler := &handlers.CacheHandler{Cache: geocodeCache}

	mux.HandleFunc("/health", handlers.Health)
	mux.HandleFunc("/distance", distanceHandler.Distance)
	mux.HandleFunc("/resolve", resolveHandler.Resolve)
	mux.HandleFunc("/cache", cacheHandler.Handle)

	return loggingMiddleware(mux)
}
