// README: Primary (free) geocode provider backed by a Nominatim-compatible HTTP API.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"courier/internal/types"
)

const (
	// nominatimTimeout is the maximum duration for one Nominatim API call.
	nominatimTimeout = 5 * time.Second

	// httpMaxIdleConns is the maximum number of idle (keep-alive) connections
	// kept in the transport pool.
	httpMaxIdleConns = 10

	// httpIdleConnTimeout keeps idle connections short-lived; public Nominatim
	// instances enforce aggressive server-side keep-alive limits.
	httpIdleConnTimeout = 30 * time.Second
)

// NominatimProvider implements Provider against a Nominatim-compatible
// forward/reverse geocoding API. It is the cost-free primary provider.
type NominatimProvider struct {
	baseURL      string
	countryCodes string
	limit        int
	httpClient   *http.Client
}

// NewNominatimProvider creates the primary provider. countryCodes may be
// empty to disable region biasing; limit caps the number of candidates
// requested per search.
func NewNominatimProvider(baseURL, countryCodes string, limit int) *NominatimProvider {
	transport := &http.Transport{
		MaxIdleConns:        httpMaxIdleConns,
		MaxIdleConnsPerHost: httpMaxIdleConns,
		IdleConnTimeout:     httpIdleConnTimeout,
	}
	return &NominatimProvider{
		baseURL:      baseURL,
		countryCodes: countryCodes,
		limit:        limit,
		httpClient: &http.Client{
			Timeout:   nominatimTimeout,
			Transport: transport,
		},
	}
}

func (p *NominatimProvider) Name() string { return "nominatim" }

type nominatimResult struct {
	DisplayName string           `json:"display_name"`
	Lat         string           `json:"lat"`
	Lon         string           `json:"lon"`
	Address     nominatimAddress `json:"address"`
}

type nominatimAddress struct {
	HouseNumber string `json:"house_number"`
	Road        string `json:"road"`
	City        string `json:"city"`
	Town        string `json:"town"`
	Village     string `json:"village"`
	State       string `json:"state"`
	Country     string `json:"country"`
	Postcode    string `json:"postcode"`
}

// Search performs a forward geocode. Transport and decode failures are logged
// and reported as an empty result, never as an error.
func (p *NominatimProvider) Search(ctx context.Context, query string) []Candidate {
	q := url.Values{}
	q.Set("q", query)
	q.Set("format", "json")
	q.Set("addressdetails", "1")
	q.Set("limit", strconv.Itoa(p.limit))
	if p.countryCodes != "" {
		q.Set("countrycodes", p.countryCodes)
	}

	var results []nominatimResult
	if err := p.getJSON(ctx, "/search", q, &results); err != nil {
		log.Printf("geocode: nominatim: search %q: %v", query, err)
		return nil
	}

	candidates := make([]Candidate, 0, len(results))
	for _, res := range results {
		pt, err := parseLatLon(res.Lat, res.Lon)
		if err != nil {
			log.Printf("geocode: nominatim: dropping result %q: %v", res.DisplayName, err)
			continue
		}
		parts := res.Address.toParts()
		candidates = append(candidates, Candidate{
			FormattedAddress: res.DisplayName,
			Coordinates:      pt,
			Provider:         p.Name(),
			Confidence:       ClassifyParts(parts),
			Parts:            parts,
		})
	}
	return candidates
}

// Reverse resolves coordinates into a display address, or "" when the service
// has nothing for the point or the call fails.
func (p *NominatimProvider) Reverse(ctx context.Context, pt types.Point) string {
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(pt.Lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(pt.Lng, 'f', -1, 64))
	q.Set("format", "json")

	var result struct {
		DisplayName string `json:"display_name"`
	}
	if err := p.getJSON(ctx, "/reverse", q, &result); err != nil {
		log.Printf("geocode: nominatim: reverse (%f, %f): %v", pt.Lat, pt.Lng, err)
		return ""
	}
	return result.DisplayName
}

func (p *NominatimProvider) getJSON(ctx context.Context, path string, q url.Values, out any) error {
	reqCtx, cancel := context.WithTimeout(ctx, nominatimTimeout)
	defer cancel()

	reqURL := p.baseURL + path + "?" + q.Encode()
	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func parseLatLon(latStr, lonStr string) (types.Point, error) {
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return types.Point{}, fmt.Errorf("parse lat %q: %w", latStr, err)
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return types.Point{}, fmt.Errorf("parse lon %q: %w", lonStr, err)
	}
	pt := types.Point{Lat: lat, Lng: lon}
	if !pt.Valid() {
		return types.Point{}, fmt.Errorf("coordinates out of range (%f, %f)", lat, lon)
	}
	return pt, nil
}

// toParts maps Nominatim's address fields onto AddressParts. Nominatim
// reports the locality under city, town, or village depending on the place
// class; the first non-empty one wins.
func (a nominatimAddress) toParts() AddressParts {
	city := a.City
	if city == "" {
		city = a.Town
	}
	if city == "" {
		city = a.Village
	}
	return AddressParts{
		HouseNumber: a.HouseNumber,
		Road:        a.Road,
		City:        city,
		State:       a.State,
		Country:     a.Country,
		PostalCode:  a.Postcode,
	}
}
