package handlers

import (
	"geodistance-service/internal/adapters/cache"
	"geodistance-service/internal/api/dto"
	"geodistance-service/internal/services"
	"net/http"
)

// CacheHandler exposes the in-process geocode cache for inspection and eviction.
type CacheHandler struct {
	Cache *cache.MemoryGeocodeCache
}

// Handle handles GET ?key= (lookup), DELETE ?key= (evict one) and DELETE (clear).
func (h *CacheHandler) Handle(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet, http.MethodDelete) {
		return
	}

	q := r.URL.Query()
	key := services.NormalizeAddress(q.Get("key"))

	if r.Method == http.MethodDelete {
		if !q.Has("key") {
			h.Cache.Clear()
		} else {
			h.Cache.Delete(key)
		}
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if key == "" {
		writeError(w, r, http.StatusBadRequest, "key is required")
		return
	}

	res := dto.CacheEntryResponse{Key: key}
	if c, ok := h.Cache.Get(key); ok {
		res.Cached = true
		res.Lat = &c.Lat
		res.Lon = &c.Lon
	}
	writeJSON(w, r, http.StatusOK, res)
}
