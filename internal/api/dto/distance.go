package dto

import "geodistance-service/internal/domain"

type DistanceRequest struct {
	From      domain.Endpoint `json:"from"`
	To        domain.Endpoint `json:"to"`
	Ellipsoid string          `json:"ellipsoid"`
}

type DistanceResponse struct {
	Meters    float64          `json:"meters"`
	Ellipsoid domain.Ellipsoid `json:"ellipsoid"`
}

type CoordinatesResponse struct {
	Address string  `json:"address"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

type CacheEntryResponse struct {
	Key    string   `json:"key"`
	Cached bool     `json:"cached"`
	Lat    *float64 `json:"lat,omitempty"`
	Lon    *float64 `json:"lon,omitempty"`
}
