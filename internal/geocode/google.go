// README: Secondary (commercial) geocode provider backed by the Google Geocoding API.
package geocode

import (
	"context"
	"fmt"
	"log"

	"googlemaps.github.io/maps"

	"courier/internal/types"
)

// rooftopLocationType is Google's marker for a result snapped to an exact
// street address. Anything less precise maps to medium confidence.
const rooftopLocationType = "ROOFTOP"

// GoogleProvider implements Provider against the Google Geocoding API. It is
// the paid fallback, so the orchestrator only consults it when the primary
// provider's answer looks weak.
type GoogleProvider struct {
	client *maps.Client
	region string
	limit  int
}

// NewGoogleProvider creates the secondary provider. region biases results
// (ccTLD code, e.g. "ph"); limit caps candidates per search.
func NewGoogleProvider(apiKey, region string, limit int) (*GoogleProvider, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create maps client: %w", err)
	}
	return &GoogleProvider{client: client, region: region, limit: limit}, nil
}

func (p *GoogleProvider) Name() string { return "google" }

// Search performs a forward geocode. API failures are logged and reported as
// an empty result.
func (p *GoogleProvider) Search(ctx context.Context, query string) []Candidate {
	r := &maps.GeocodingRequest{
		Address: query,
		Region:  p.region,
	}
	results, err := p.client.Geocode(ctx, r)
	if err != nil {
		log.Printf("geocode: google: search %q: %v", query, err)
		return nil
	}

	candidates := make([]Candidate, 0, len(results))
	for _, res := range results {
		if len(candidates) >= p.limit {
			break
		}
		pt := types.Point{
			Lat: res.Geometry.Location.Lat,
			Lng: res.Geometry.Location.Lng,
		}
		if !pt.Valid() {
			continue
		}
		conf := ConfidenceMedium
		if res.Geometry.LocationType == rooftopLocationType {
			conf = ConfidenceHigh
		}
		candidates = append(candidates, Candidate{
			FormattedAddress: res.FormattedAddress,
			Coordinates:      pt,
			Provider:         p.Name(),
			Confidence:       conf,
			Parts:            componentsToParts(res.AddressComponents),
		})
	}
	return candidates
}

// Reverse resolves coordinates into a formatted address, or "" when Google
// has no result or the call fails.
func (p *GoogleProvider) Reverse(ctx context.Context, pt types.Point) string {
	r := &maps.GeocodingRequest{
		LatLng: &maps.LatLng{Lat: pt.Lat, Lng: pt.Lng},
	}
	results, err := p.client.ReverseGeocode(ctx, r)
	if err != nil {
		log.Printf("geocode: google: reverse (%f, %f): %v", pt.Lat, pt.Lng, err)
		return ""
	}
	if len(results) == 0 {
		return ""
	}
	return results[0].FormattedAddress
}

func componentsToParts(components []maps.AddressComponent) AddressParts {
	var parts AddressParts
	for _, comp := range components {
		for _, t := range comp.Types {
			switch t {
			case "street_number":
				parts.HouseNumber = comp.LongName
			case "route":
				parts.Road = comp.LongName
			case "locality":
				parts.City = comp.LongName
			case "administrative_area_level_1":
				parts.State = comp.LongName
			case "country":
				parts.Country = comp.LongName
			case "postal_code":
				parts.PostalCode = comp.LongName
			}
		}
	}
	return parts
}
