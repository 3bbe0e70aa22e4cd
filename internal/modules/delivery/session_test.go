package delivery

import (
	"errors"
	"testing"

	"courier/internal/modules/pricing"
	"courier/internal/types"
)

// TestCanTransition verifies the delivery lifecycle table without a database.
func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to Status
		want     bool
	}{
		// happy-path forward transitions
		{StatusPending, StatusAssigned, true},
		{StatusAssigned, StatusPickedUp, true},
		{StatusPickedUp, StatusInTransit, true},
		{StatusInTransit, StatusDelivered, true},
		// cancels are allowed until pickup
		{StatusPending, StatusCancelled, true},
		{StatusAssigned, StatusCancelled, true},
		{StatusPickedUp, StatusCancelled, false},
		{StatusInTransit, StatusCancelled, false},
		// terminal states have no outgoing transitions
		{StatusDelivered, StatusPending, false},
		{StatusCancelled, StatusAssigned, false},
		// skipping states is invalid
		{StatusPending, StatusPickedUp, false},
		{StatusPending, StatusDelivered, false},
		{StatusAssigned, StatusInTransit, false},
	}
	for _, tc := range cases {
		if got := CanTransition(tc.from, tc.to); got != tc.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func resolvedSession(t *testing.T) *Session {
	t.Helper()
	s := NewSession("sess1", "sender1")

	if err := s.EnterPickupAddress(Endpoint{Address: "123 Rizal St", ContactName: "Ana", ContactPhone: "0917"}); err != nil {
		t.Fatalf("enter pickup: %v", err)
	}
	if err := s.EnterDropoffAddress(0, Endpoint{Address: "45 Ayala Ave", ContactName: "Ben", ContactPhone: "0918"}); err != nil {
		t.Fatalf("enter dropoff: %v", err)
	}
	if s.State != StateAddressEntered {
		t.Fatalf("state = %s, want address_entered", s.State)
	}

	if err := s.ResolvePickup(types.Point{Lat: 14.5995, Lng: 120.9842}); err != nil {
		t.Fatalf("resolve pickup: %v", err)
	}
	if s.State != StateAddressEntered {
		t.Fatalf("state = %s, want address_entered while dropoff unresolved", s.State)
	}
	if err := s.ResolveDropoff(0, types.Point{Lat: 14.5547, Lng: 121.0244}); err != nil {
		t.Fatalf("resolve dropoff: %v", err)
	}
	if s.State != StateCoordinatesResolved {
		t.Fatalf("state = %s, want coordinates_resolved", s.State)
	}
	return s
}

func priceSession(t *testing.T, s *Session) {
	t.Helper()
	if err := s.ApplyDistance(5.2); err != nil {
		t.Fatalf("apply distance: %v", err)
	}
	if s.State != StateDistanceComputed {
		t.Fatalf("state = %s, want distance_computed", s.State)
	}
	if err := s.ApplyPrice(pricing.Estimate{DistanceKm: 5.2, TotalFee: 102, EtaMinutes: 24}); err != nil {
		t.Fatalf("apply price: %v", err)
	}
	if s.State != StatePriceComputed {
		t.Fatalf("state = %s, want price_computed", s.State)
	}
}

func TestSessionHappyPath(t *testing.T) {
	s := resolvedSession(t)
	priceSession(t, s)

	if err := s.Confirm(); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if s.State != StateConfirmed {
		t.Fatalf("state = %s, want confirmed", s.State)
	}
}

func TestSessionAddressEditInvalidatesDownstream(t *testing.T) {
	s := resolvedSession(t)
	priceSession(t, s)

	// Editing the pickup address after everything was computed drops the
	// session back to AddressEntered and wipes the stale estimate.
	if err := s.EnterPickupAddress(Endpoint{Address: "789 Taft Ave"}); err != nil {
		t.Fatalf("edit pickup: %v", err)
	}
	if s.State != StateAddressEntered {
		t.Errorf("state = %s, want address_entered", s.State)
	}
	if s.Estimate != nil {
		t.Errorf("estimate survived an address edit: %+v", s.Estimate)
	}
	if s.Pickup.Coordinates != nil {
		t.Error("stale pickup coordinates survived an address edit")
	}
	if s.Dropoffs[0].Coordinates == nil {
		t.Error("untouched dropoff lost its coordinates")
	}
}

func TestSessionDropoffEditInvalidatesDownstream(t *testing.T) {
	s := resolvedSession(t)
	priceSession(t, s)

	if err := s.EnterDropoffAddress(0, Endpoint{Address: "1 Bonifacio High St"}); err != nil {
		t.Fatalf("edit dropoff: %v", err)
	}
	if s.State != StateAddressEntered || s.Estimate != nil {
		t.Errorf("downstream results not invalidated: state=%s estimate=%v", s.State, s.Estimate)
	}
}

func TestSessionConfirmRequiresPrice(t *testing.T) {
	s := resolvedSession(t)

	if err := s.Confirm(); !errors.Is(err, ErrSessionNotPriced) {
		t.Errorf("confirm before pricing: err = %v, want ErrSessionNotPriced", err)
	}

	if err := s.ApplyDistance(5.2); err != nil {
		t.Fatalf("apply distance: %v", err)
	}
	if err := s.Confirm(); !errors.Is(err, ErrSessionNotPriced) {
		t.Errorf("confirm before price: err = %v, want ErrSessionNotPriced", err)
	}
}

func TestSessionConfirmedIsFrozen(t *testing.T) {
	s := resolvedSession(t)
	priceSession(t, s)
	if err := s.Confirm(); err != nil {
		t.Fatalf("confirm: %v", err)
	}

	if err := s.EnterPickupAddress(Endpoint{Address: "late edit"}); !errors.Is(err, ErrSessionConfirmed) {
		t.Errorf("edit after confirm: err = %v, want ErrSessionConfirmed", err)
	}
	if err := s.Confirm(); !errors.Is(err, ErrSessionConfirmed) {
		t.Errorf("double confirm: err = %v, want ErrSessionConfirmed", err)
	}
}

func TestSessionVehicleChangeInvalidatesPrice(t *testing.T) {
	s := resolvedSession(t)
	if err := s.SelectVehicle("moto", pricing.TierRegular); err != nil {
		t.Fatalf("select vehicle: %v", err)
	}
	priceSession(t, s)

	if err := s.SelectVehicle("van", pricing.TierPriority); err != nil {
		t.Fatalf("reselect vehicle: %v", err)
	}
	if s.State != StateCoordinatesResolved {
		t.Errorf("state = %s, want coordinates_resolved", s.State)
	}
	if s.Estimate != nil {
		t.Errorf("estimate survived a vehicle change: %+v", s.Estimate)
	}
}

func TestSessionApplyDistanceRequiresResolution(t *testing.T) {
	s := NewSession("sess2", "sender1")
	if err := s.EnterPickupAddress(Endpoint{Address: "123 Rizal St"}); err != nil {
		t.Fatal(err)
	}
	if err := s.ApplyDistance(3); !errors.Is(err, ErrSessionNotResolved) {
		t.Errorf("apply distance unresolved: err = %v, want ErrSessionNotResolved", err)
	}
}

func TestSessionDropoffIndexValidation(t *testing.T) {
	s := NewSession("sess3", "sender1")
	if err := s.EnterDropoffAddress(2, Endpoint{Address: "gap"}); !errors.Is(err, ErrNoSuchDropoff) {
		t.Errorf("sparse dropoff index: err = %v, want ErrNoSuchDropoff", err)
	}
	if err := s.ResolveDropoff(0, types.Point{Lat: 1, Lng: 1}); !errors.Is(err, ErrNoSuchDropoff) {
		t.Errorf("resolve missing dropoff: err = %v, want ErrNoSuchDropoff", err)
	}
}
