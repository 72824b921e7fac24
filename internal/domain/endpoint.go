package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

type endpointKind int

const (
	endpointAbsent endpointKind = iota
	endpointCoords
	endpointAddress
	endpointMalformed
)

// Endpoint is one side of a distance request: either explicit coordinates
// or a free-text address. The zero value is an absent endpoint.
type Endpoint struct {
	kind    endpointKind
	coords  Coordinates
	address string
}

// At returns an endpoint located at c.
func At(c Coordinates) Endpoint { return Endpoint{kind: endpointCoords, coords: c} }

// AddressOf returns an endpoint that must be geocoded first.
func AddressOf(address string) Endpoint { return Endpoint{kind: endpointAddress, address: address} }

// Coordinates returns the explicit coordinates, if the endpoint carries them.
func (e Endpoint) Coordinates() (Coordinates, bool) {
	return e.coords, e.kind == endpointCoords
}

// Address returns the free-text address, if the endpoint carries one.
func (e Endpoint) Address() (string, bool) {
	return e.address, e.kind == endpointAddress
}

func (e Endpoint) IsZero() bool { return e.kind == endpointAbsent }

func (e Endpoint) String() string {
	switch e.kind {
	case endpointCoords:
		return fmt.Sprintf("(%g, %g)", e.coords.Lat, e.coords.Lon)
	case endpointAddress:
		return fmt.Sprintf("%q", e.address)
	case endpointMalformed:
		return "<malformed>"
	}
	return "<absent>"
}

// UnmarshalJSON accepts a JSON string (address), an object with numeric
// "lat" and "lon" (coordinates), or null (absent). Any other object decodes
// to a malformed endpoint instead of failing, so the distance request can
// reject it as a whole.
func (e *Endpoint) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || bytes.Equal(b, []byte("null")):
		*e = Endpoint{}
		return nil
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*e = AddressOf(s)
		return nil
	case b[0] == '{':
		var raw map[string]json.RawMessage
		if err := json.Unmarshal(b, &raw); err != nil {
			return err
		}
		lat, okLat := jsonNumber(raw["lat"])
		lon, okLon := jsonNumber(raw["lon"])
		if !okLat || !okLon {
			*e = Endpoint{kind: endpointMalformed}
			return nil
		}
		*e = At(Coordinates{Lat: lat, Lon: lon})
		return nil
	}
	*e = Endpoint{kind: endpointMalformed}
	return nil
}

func (e Endpoint) MarshalJSON() ([]byte, error) {
	switch e.kind {
	case endpointCoords:
		return json.Marshal(e.coords)
	case endpointAddress:
		return json.Marshal(e.address)
	}
	return []byte("null"), nil
}

func jsonNumber(raw json.RawMessage) (float64, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] == '"' || bytes.Equal(raw, []byte("null")) {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return 0, false
	}
	return f, true
}
