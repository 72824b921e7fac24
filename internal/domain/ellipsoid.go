package domain

import (
	"fmt"
	"strings"
)

// Reference ellipsoid used by the distance formula.
// The zero value is WGS84, so an unset selector means the default model.
type Ellipsoid int

const (
	WGS84 Ellipsoid = iota
	GRS80
)

// Shape parameters of a reference ellipsoid.
type EllipsoidParams struct {
	SemiMajorAxis float64 // meters
	Flattening    float64
}

var ellipsoids = [...]struct {
	name   string
	params EllipsoidParams
}{
	WGS84: {"WGS84", EllipsoidParams{SemiMajorAxis: 6378137.0, Flattening: 1 / 298.257223563}},
	GRS80: {"GRS80", EllipsoidParams{SemiMajorAxis: 6378137.0, Flattening: 1 / 298.257222101}},
}

// Resolve a selector name to an Ellipsoid. Empty input selects WGS84.
func ParseEllipsoid(s string) (Ellipsoid, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	if name == "" {
		return WGS84, nil
	}
	for i, e := range ellipsoids {
		if e.name == name {
			return Ellipsoid(i), nil
		}
	}
	return 0, fmt.Errorf("parse ellipsoid %q: %w", s, ErrUnknownEllipsoid)
}

func (e Ellipsoid) Valid() bool { return e >= 0 && int(e) < len(ellipsoids) }

// Params returns the shape parameters. It panics for values outside the enum;
// check Valid first when the value did not come from ParseEllipsoid.
func (e Ellipsoid) Params() EllipsoidParams {
	if !e.Valid() {
		panic(fmt.Sprintf("domain: unknown ellipsoid %d", int(e)))
	}
	return ellipsoids[e].params
}

// Eccentricity squared, e² = 2f - f².
func (p EllipsoidParams) EccentricitySquared() float64 {
	f := p.Flattening
	return 2*f - f*f
}

func (e Ellipsoid) String() string {
	if !e.Valid() {
		return fmt.Sprintf("Ellipsoid(%d)", int(e))
	}
	return ellipsoids[e].name
}

func (e Ellipsoid) MarshalText() ([]byte, error) {
	if !e.Valid() {
		return nil, fmt.Errorf("marshal ellipsoid %d: %w", int(e), ErrUnknownEllipsoid)
	}
	return []byte(e.String()), nil
}

func (e *Ellipsoid) UnmarshalText(b []byte) error {
	v, err := ParseEllipsoid(string(b))
	if err != nil {
		return err
	}
	*e = v
	return nil
}
