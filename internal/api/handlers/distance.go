package handlers

import (
	"encoding/json"
	"geodistance-service/internal/api/dto"
	"geodistance-service/internal/domain"
	"geodistance-service/internal/services"
	"io"
	"net/http"
)

type DistanceHandler struct {
	Service          *services.DistanceService
	DefaultEllipsoid domain.Ellipsoid
}

// Distance computes the distance between two endpoints.
//
// POST takes a JSON body whose endpoints are strings or {lat, lon} objects.
// GET takes two addresses as ?from=&to= query parameters.
func (h *DistanceHandler) Distance(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet, http.MethodPost) {
		return
	}

	var req dto.DistanceRequest
	if r.Method == http.MethodGet {
		q := r.URL.Query()
		if q.Has("from") {
			req.From = domain.AddressOf(q.Get("from"))
		}
		if q.Has("to") {
			req.To = domain.AddressOf(q.Get("to"))
		}
		req.Ellipsoid = q.Get("ellipsoid")
	} else {
		dec := json.NewDecoder(r.Body)
		defer r.Body.Close()
		dec.DisallowUnknownFields()

		if err := dec.Decode(&req); err != nil {
			writeError(w, r, http.StatusBadRequest, "invalid json body")
			return
		}
		if err := dec.Decode(&struct{}{}); err != io.EOF {
			writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
			return
		}
	}

	ellipsoid := h.DefaultEllipsoid
	if req.Ellipsoid != "" {
		e, err := domain.ParseEllipsoid(req.Ellipsoid)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		ellipsoid = e
	}

	meters, err := h.Service.GetDistance(r.Context(), req.From, req.To, ellipsoid)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.DistanceResponse{Meters: meters, Ellipsoid: ellipsoid})
}
