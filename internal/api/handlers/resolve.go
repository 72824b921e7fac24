package handlers

import (
	"geodistance-service/internal/api/dto"
	"geodistance-service/internal/services"
	"net/http"
	"strings"
)

type ResolveHandler struct {
	Service *services.DistanceService
}

func (h *ResolveHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	address := r.URL.Query().Get("address")
	if strings.TrimSpace(address) == "" {
		writeError(w, r, http.StatusBadRequest, "address is required")
		return
	}

	c, err := h.Service.ResolveAddress(r.Context(), address)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.CoordinatesResponse{
		Address: services.NormalizeAddress(address),
		Lat:     c.Lat,
		Lon:     c.Lon,
	})
}
