package delivery

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"courier/internal/modules/pricing"
	"courier/internal/routing"
	"courier/internal/types"
)

type fakeEstimator struct {
	km    float64
	err   error
	calls int
}

func (f *fakeEstimator) Estimate(_ context.Context, _, _ types.Point) (float64, error) {
	f.calls++
	return f.km, f.err
}

type fakePricer struct {
	vehicles map[string]pricing.Vehicle
}

func (f *fakePricer) Vehicle(_ context.Context, id string) (pricing.Vehicle, error) {
	v, ok := f.vehicles[id]
	if !ok {
		return pricing.Vehicle{}, pricing.ErrVehicleNotFound
	}
	return v, nil
}

func (f *fakePricer) ComputeFee(v pricing.Vehicle, distanceKm float64, _ pricing.ServiceTier) (pricing.Estimate, error) {
	return pricing.Estimate{
		DistanceKm: distanceKm,
		BaseRate:   v.BaseRate,
		PerKmRate:  v.PerKmRate,
		TotalFee:   v.BaseRate + distanceKm*v.PerKmRate,
		EtaMinutes: 20,
	}, nil
}

func testPricer() *fakePricer {
	return &fakePricer{vehicles: map[string]pricing.Vehicle{
		"moto": {ID: "moto", Name: "Motorcycle", BaseRate: 50, PerKmRate: 10},
	}}
}

var (
	pickupPt  = types.Point{Lat: 14.5995, Lng: 120.9842}
	dropoffPt = types.Point{Lat: 14.5547, Lng: 121.0244}
)

func TestEstimateDelivery(t *testing.T) {
	svc := NewService(nil, nil, &fakeEstimator{km: 5.2}, testPricer())

	est, err := svc.EstimateDelivery(context.Background(), pickupPt, dropoffPt, "moto", pricing.TierRegular)
	if err != nil {
		t.Fatalf("EstimateDelivery: %v", err)
	}
	if est.TotalFee != 102 {
		t.Errorf("TotalFee = %v, want 102", est.TotalFee)
	}
	if est.DistanceKm != 5.2 {
		t.Errorf("DistanceKm = %v, want 5.2", est.DistanceKm)
	}
}

func TestEstimateDeliveryRouteNotFound(t *testing.T) {
	svc := NewService(nil, nil, &fakeEstimator{err: routing.ErrRouteNotFound}, testPricer())

	_, err := svc.EstimateDelivery(context.Background(), pickupPt, dropoffPt, "moto", pricing.TierRegular)
	if !errors.Is(err, routing.ErrRouteNotFound) {
		t.Errorf("err = %v, want ErrRouteNotFound to pass through", err)
	}
}

func TestEstimateDeliveryValidation(t *testing.T) {
	estimator := &fakeEstimator{km: 5.2}
	svc := NewService(nil, nil, estimator, testPricer())

	_, err := svc.EstimateDelivery(context.Background(), types.Point{Lat: 95, Lng: 0}, dropoffPt, "moto", pricing.TierRegular)
	if !errors.Is(err, ErrBadRequest) {
		t.Errorf("out-of-range pickup: err = %v, want ErrBadRequest", err)
	}
	if estimator.calls != 0 {
		t.Errorf("estimator called %d times for invalid input, want 0", estimator.calls)
	}

	_, err = svc.EstimateDelivery(context.Background(), pickupPt, dropoffPt, "ghost", pricing.TierRegular)
	if !errors.Is(err, pricing.ErrVehicleNotFound) {
		t.Errorf("unknown vehicle: err = %v, want ErrVehicleNotFound", err)
	}
}

// TestRefreshEstimateRouteFailureSetsWarning verifies the degrade path: a
// missing road route must not fail the edit or unwind resolution, it leaves
// the session resolved-but-unpriced with a warning for the sender.
func TestRefreshEstimateRouteFailureSetsWarning(t *testing.T) {
	svc := NewService(nil, nil, &fakeEstimator{err: routing.ErrRouteNotFound}, testPricer())

	session := resolvedSession(t)
	if err := session.SelectVehicle("moto", pricing.TierRegular); err != nil {
		t.Fatalf("select vehicle: %v", err)
	}

	svc.refreshEstimate(context.Background(), session)

	if session.Warning == "" {
		t.Error("route failure must leave a warning on the session")
	}
	if session.Estimate != nil {
		t.Errorf("estimate = %+v, want nil when no route exists", session.Estimate)
	}
	if session.State != StateCoordinatesResolved {
		t.Errorf("state = %s, want coordinates_resolved to survive the failure", session.State)
	}
}

func TestRefreshEstimateTransportFailureSetsWarning(t *testing.T) {
	svc := NewService(nil, nil, &fakeEstimator{err: errors.New("osrm unreachable")}, testPricer())

	session := resolvedSession(t)
	if err := session.SelectVehicle("moto", pricing.TierRegular); err != nil {
		t.Fatalf("select vehicle: %v", err)
	}

	svc.refreshEstimate(context.Background(), session)

	if session.Warning == "" || session.Estimate != nil {
		t.Errorf("warning = %q, estimate = %+v; want warning set and estimate nil", session.Warning, session.Estimate)
	}
}

// TestRefreshEstimateRecoversAfterWarning: a later successful recompute must
// clear the stale warning and price the session.
func TestRefreshEstimateRecoversAfterWarning(t *testing.T) {
	estimator := &fakeEstimator{err: routing.ErrRouteNotFound}
	svc := NewService(nil, nil, estimator, testPricer())

	session := resolvedSession(t)
	if err := session.SelectVehicle("moto", pricing.TierRegular); err != nil {
		t.Fatalf("select vehicle: %v", err)
	}
	svc.refreshEstimate(context.Background(), session)
	if session.Warning == "" {
		t.Fatal("expected a warning after the failed recompute")
	}

	estimator.err = nil
	estimator.km = 5.2
	svc.refreshEstimate(context.Background(), session)

	if session.Warning != "" {
		t.Errorf("warning = %q, want cleared after a successful recompute", session.Warning)
	}
	if session.State != StatePriceComputed || session.Estimate == nil || session.Estimate.TotalFee != 102 {
		t.Errorf("state = %s, estimate = %+v; want priced at 102", session.State, session.Estimate)
	}
}

// TestSessionFlowWithRedis exercises the session path end to end against a
// real Redis. Skipped unless COURIER_REDIS_ADDR is set.
func TestSessionFlowWithRedis(t *testing.T) {
	redisAddr := os.Getenv("COURIER_REDIS_ADDR")
	if redisAddr == "" {
		t.Skip("COURIER_REDIS_ADDR not set; skipping integration test")
	}

	rdb := redis.NewClient(&redis.Options{Addr: redisAddr})
	defer rdb.Close()

	sessions := NewSessionStore(rdb, time.Minute)
	svc := NewService(nil, sessions, &fakeEstimator{km: 5.2}, testPricer())
	ctx := context.Background()

	session, err := svc.StartSession(ctx, "sender1")
	if err != nil {
		t.Fatalf("start session: %v", err)
	}

	if _, err := svc.SelectVehicle(ctx, session.ID, "moto", pricing.TierRegular); err != nil {
		t.Fatalf("select vehicle: %v", err)
	}

	if _, err := svc.UpdateEndpoint(ctx, session.ID, EndpointUpdate{
		Index:    -1,
		Endpoint: Endpoint{Address: "123 Rizal St", ContactName: "Ana", ContactPhone: "0917"},
	}); err != nil {
		t.Fatalf("enter pickup: %v", err)
	}
	if _, err := svc.UpdateEndpoint(ctx, session.ID, EndpointUpdate{
		Index:    0,
		Endpoint: Endpoint{Address: "45 Ayala Ave", ContactName: "Ben", ContactPhone: "0918"},
	}); err != nil {
		t.Fatalf("enter dropoff: %v", err)
	}

	if _, err := svc.UpdateEndpoint(ctx, session.ID, EndpointUpdate{Index: -1, Coordinates: &pickupPt}); err != nil {
		t.Fatalf("resolve pickup: %v", err)
	}
	got, err := svc.UpdateEndpoint(ctx, session.ID, EndpointUpdate{Index: 0, Coordinates: &dropoffPt})
	if err != nil {
		t.Fatalf("resolve dropoff: %v", err)
	}

	if got.State != StatePriceComputed {
		t.Fatalf("state = %s, want price_computed after full resolution", got.State)
	}
	if got.Estimate == nil || got.Estimate.TotalFee != 102 {
		t.Fatalf("estimate = %+v, want total 102", got.Estimate)
	}

	// the estimate must not survive an address edit
	edited, err := svc.UpdateEndpoint(ctx, session.ID, EndpointUpdate{
		Index:    0,
		Endpoint: Endpoint{Address: "1 Bonifacio High St"},
	})
	if err != nil {
		t.Fatalf("edit dropoff: %v", err)
	}
	if edited.State != StateAddressEntered || edited.Estimate != nil {
		t.Fatalf("edit did not invalidate: state=%s estimate=%v", edited.State, edited.Estimate)
	}
}
