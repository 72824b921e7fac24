package geocode

import (
	"bytes"
	"encoding/json"
	"geodistance-service/internal/ports"
)

// decodeFeature never fails. A part with the wrong JSON type is left zero:
// a non-object geometry becomes nil, non-array coordinates become empty.
func decodeFeature(raw json.RawMessage) ports.GeocodeFeature {
	var f ports.GeocodeFeature

	var parts struct {
		Type       json.RawMessage `json:"type"`
		Geometry   json.RawMessage `json:"geometry"`
		Properties json.RawMessage `json:"properties"`
	}
	if !isObject(raw) || json.Unmarshal(raw, &parts) != nil {
		return f
	}
	f.Type = looseString(parts.Type)
	f.Geometry = decodeGeometry(parts.Geometry)

	if isObject(parts.Properties) {
		var p struct {
			AddressCode json.RawMessage `json:"addressCode"`
			Title       json.RawMessage `json:"title"`
		}
		if json.Unmarshal(parts.Properties, &p) == nil {
			f.Properties.AddressCode = looseString(p.AddressCode)
			f.Properties.Title = looseString(p.Title)
		}
	}

	return f
}

func decodeGeometry(raw json.RawMessage) *ports.GeocodeGeometry {
	if !isObject(raw) {
		return nil
	}

	var g struct {
		Type        json.RawMessage `json:"type"`
		Coordinates json.RawMessage `json:"coordinates"`
	}
	if json.Unmarshal(raw, &g) != nil {
		return nil
	}

	geom := &ports.GeocodeGeometry{Type: looseString(g.Type)}
	var coords []json.RawMessage
	if json.Unmarshal(g.Coordinates, &coords) == nil {
		geom.Coordinates = coords
	}
	return geom
}

func isObject(raw json.RawMessage) bool {
	b := bytes.TrimSpace(raw)
	return len(b) > 0 && b[0] == '{'
}

func looseString(raw json.RawMessage) string {
	var s string
	if json.Unmarshal(raw, &s) != nil {
		return ""
	}
	return s
}
