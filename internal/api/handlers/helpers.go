package handlers

import (
	"encoding/json"
	"errors"
	"geodistance-service/internal/domain"
	"geodistance-service/internal/platform/obs"
	"log"
	"net/http"
	"strings"
)

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode failed: method=%s path=%s err=%v", r.Method, r.URL.Path, err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, map[string]string{"error": msg})
}

func allowMethod(w http.ResponseWriter, r *http.Request, methods ...string) bool {
	for _, m := range methods {
		if r.Method == m {
			return true
		}
	}
	w.Header().Set("Allow", strings.Join(methods, ", "))
	writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
	return false
}

// writeDomainError maps resolution and distance failures to HTTP statuses.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var te *domain.TransportError
	switch {
	case errors.Is(err, domain.ErrInvalidArguments),
		errors.Is(err, domain.ErrInvalidCoordinates),
		errors.Is(err, domain.ErrUnknownEllipsoid):
		writeError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrUnsupportedRegion):
		writeError(w, r, http.StatusUnprocessableEntity, err.Error())
	case errors.As(err, &te):
		log.Printf("req_id=%s geocoding upstream failed: %v", obs.RequestID(r.Context()), err)
		writeError(w, r, http.StatusBadGateway, "geocoding service unavailable")
	case errors.Is(err, domain.ErrAddressNotFound):
		writeError(w, r, http.StatusNotFound, err.Error())
	default:
		log.Printf("req_id=%s request failed: %v", obs.RequestID(r.Context()), err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
	}
}
