// README: OSRM-backed road distance estimator.
package routing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"courier/internal/types"
)

const (
	// osrmTimeout is the maximum duration for one OSRM API call.
	osrmTimeout = 5 * time.Second

	// osrmOKCode is OSRM's success marker; any other code means the service
	// could not produce a viable route.
	osrmOKCode = "Ok"
)

// OSRMEstimator implements Estimator against an OSRM routing server. It
// requests the shortest driving route without geometry (overview=false) and
// reports its total distance.
type OSRMEstimator struct {
	baseURL    string
	httpClient *http.Client
}

func NewOSRMEstimator(baseURL string) *OSRMEstimator {
	return &OSRMEstimator{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: osrmTimeout},
	}
}

type osrmResponse struct {
	Code   string      `json:"code"`
	Routes []osrmRoute `json:"routes"`
}

type osrmRoute struct {
	Distance float64 `json:"distance"` // meters
	Duration float64 `json:"duration"` // seconds
}

// Estimate returns the driving distance from from to to in kilometres.
// A non-Ok OSRM code yields ErrRouteNotFound; transport trouble yields a
// wrapped error the caller should log as a provider failure.
func (e *OSRMEstimator) Estimate(ctx context.Context, from, to types.Point) (float64, error) {
	// OSRM takes lng,lat pairs, not lat,lng.
	reqURL := fmt.Sprintf("%s/route/v1/driving/%s,%s;%s,%s?overview=false",
		e.baseURL,
		coord(from.Lng), coord(from.Lat),
		coord(to.Lng), coord(to.Lat),
	)

	reqCtx, cancel := context.WithTimeout(ctx, osrmTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, reqURL, nil)
	if err != nil {
		return 0, fmt.Errorf("routing: osrm: create request: %w", err)
	}

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("routing: osrm: http: %w", err)
	}
	defer resp.Body.Close()

	// OSRM reports "no route" as a 4xx with a code in the body, so decode
	// before rejecting on status.
	var decoded osrmResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return 0, fmt.Errorf("routing: osrm: status %d: decode response: %w", resp.StatusCode, err)
	}

	if decoded.Code != osrmOKCode || len(decoded.Routes) == 0 {
		return 0, ErrRouteNotFound
	}
	return decoded.Routes[0].Distance / 1000, nil
}

func coord(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
