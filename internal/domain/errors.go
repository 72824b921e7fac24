package domain

import (
	"errors"
	"fmt"
)

var (
	// Non-finite numeric input to the distance formula.
	ErrInvalidCoordinates = errors.New("invalid coordinates")

	// Malformed or mixed endpoints passed to a distance request.
	ErrInvalidArguments = errors.New("invalid arguments")

	// Terminal resolution failure for an address.
	ErrAddressNotFound = errors.New("address not found")

	// The address was geocoded but the result was empty or unusable, or the
	// address failed the region allow-list. It is a kind of ErrAddressNotFound.
	ErrUnsupportedRegion = fmt.Errorf("%w: unsupported region", ErrAddressNotFound)

	// Ellipsoid selector outside the supported models.
	ErrUnknownEllipsoid = errors.New("unknown ellipsoid")
)

// TransportError reports a failed call to the geocoding service.
// StatusCode is zero when no HTTP response was received.
type TransportError struct {
	StatusCode int
	Status     string
	Err        error
}

func (e *TransportError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Err != nil:
		return fmt.Sprintf("transport error: %s: %v", e.Status, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("transport error: %s", e.Status)
	case e.Err != nil:
		return fmt.Sprintf("transport error: %v", e.Err)
	}
	return "transport error"
}

func (e *TransportError) Unwrap() error { return e.Err }

// Report whether err is, or wraps, a TransportError.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
