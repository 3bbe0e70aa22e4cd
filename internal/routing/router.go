// README: Road-network distance estimation contract.
package routing

import (
	"context"
	"errors"

	"courier/internal/types"
)

// ErrRouteNotFound is returned when the routing service reports no drivable
// path between two points. Callers surface it as a non-blocking warning and
// leave the estimate incomplete rather than failing the booking flow.
var ErrRouteNotFound = errors.New("no drivable route between points")

// Estimator computes the road-network driving distance between two points,
// in kilometres.
type Estimator interface {
	Estimate(ctx context.Context, from, to types.Point) (float64, error)
}
