// README: Geocode provider contract, candidate model, and confidence scoring.
package geocode

import (
	"context"

	"courier/internal/types"
)

// Confidence is a coarse quality rating of a geocoded candidate based on how
// much structured detail it carries.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// Preference selects which provider(s) the orchestrator may use for a lookup.
type Preference string

const (
	PreferencePrimary   Preference = "primary"
	PreferenceSecondary Preference = "secondary"
	PreferenceAuto      Preference = "auto"
)

// AddressParts holds the structured components a provider reports for a
// candidate. All fields are optional; confidence scoring looks at which ones
// are present.
type AddressParts struct {
	HouseNumber string `json:"house_number,omitempty"`
	Road        string `json:"road,omitempty"`
	City        string `json:"city,omitempty"`
	State       string `json:"state,omitempty"`
	Country     string `json:"country,omitempty"`
	PostalCode  string `json:"postal_code,omitempty"`
}

// Candidate is one ranked geocoding result. Coordinates are always valid for
// any candidate returned to a caller; providers drop results that fall
// outside the WGS84 range.
type Candidate struct {
	FormattedAddress string       `json:"formatted_address"`
	Coordinates      types.Point  `json:"coordinates"`
	Provider         string       `json:"provider"`
	Confidence       Confidence   `json:"confidence"`
	Parts            AddressParts `json:"parts"`
}

// Provider wraps one external address-lookup service.
//
// Implementations never surface transport failures to callers: Search yields
// an empty slice and Reverse an empty string on any error, logging the cause,
// so the orchestrator can proceed to its fallback without special-casing.
type Provider interface {
	Name() string
	Search(ctx context.Context, query string) []Candidate
	Reverse(ctx context.Context, pt types.Point) string
}

// ClassifyParts rates a candidate by its structured detail: house number,
// street, and city together rate high; a house number or street plus a city
// rates medium; anything less rates low.
func ClassifyParts(p AddressParts) Confidence {
	hasHouse := p.HouseNumber != ""
	hasRoad := p.Road != ""
	hasCity := p.City != ""
	switch {
	case hasHouse && hasRoad && hasCity:
		return ConfidenceHigh
	case (hasHouse || hasRoad) && hasCity:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}
