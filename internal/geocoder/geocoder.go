// Package geocoder resolves free-form addresses and postal codes to coordinates.
package geocoder

//go:generate mockgen -source=geocoder.go -destination=../mocks/geocoder_mock.go -package=mocks

import (
	"context"
	"errors"
	"strings"
)

// ErrNoMatch is returned when the provider has no result for an address.
var ErrNoMatch = errors.New("geocoder: no match for address")

// Result is one resolved address.
type Result struct {
	Latitude         float64 `json:"latitude"`
	Longitude        float64 `json:"longitude"`
	FormattedAddress string  `json:"formattedAddress"`
	City             string  `json:"city"`
	State            string  `json:"state"`
	Zipcode          string  `json:"zipcode"`
	Country          string  `json:"country"`
}

// Geocoder resolves an address to its best match.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (*Result, error)
}

// Func adapts a plain function to Geocoder.
type Func func(ctx context.Context, address string) (*Result, error)

func (f Func) Geocode(ctx context.Context, address string) (*Result, error) {
	return f(ctx, address)
}

func normalize(address string) string {
	return strings.ToLower(strings.Join(strings.Fields(address), " "))
}
