// README: Pricing service computes delivery fees and ETAs.
package pricing

import (
	"context"
	"errors"
	"fmt"
	"math"
)

var (
	ErrUnknownTier     = errors.New("unknown service tier")
	ErrVehicleNotFound = errors.New("vehicle not found")
	ErrBadDistance     = errors.New("distance must be non-negative")
)

type Service struct {
	store      *Store
	surcharges SurchargeTable
	profiles   TierProfileTable
}

// NewService wires the pricing engine. store may be nil in tests that only
// exercise fee computation; surcharges and ETA profiles come from
// configuration, with nil profiles falling back to the stock assumptions.
func NewService(store *Store, surcharges SurchargeTable, profiles TierProfileTable) *Service {
	if profiles == nil {
		profiles = DefaultTierProfiles()
	}
	return &Service{store: store, surcharges: surcharges, profiles: profiles}
}

// ComputeFee combines a vehicle's rates, the route distance, and the tier
// surcharge into a full estimate. The total is floored at the vehicle's base
// rate so a scheduled discount can never drop the fee below it.
func (s *Service) ComputeFee(vehicle Vehicle, distanceKm float64, tier ServiceTier) (Estimate, error) {
	if distanceKm < 0 {
		return Estimate{}, ErrBadDistance
	}
	if _, ok := s.profiles[tier]; !ok {
		return Estimate{}, fmt.Errorf("%w: %q", ErrUnknownTier, tier)
	}

	surcharge := s.surcharges[tier]
	total := vehicle.BaseRate + distanceKm*vehicle.PerKmRate + surcharge
	if total < vehicle.BaseRate {
		total = vehicle.BaseRate
	}

	label, minutes, err := s.ComputeEta(distanceKm, tier)
	if err != nil {
		return Estimate{}, err
	}

	return Estimate{
		DistanceKm:       distanceKm,
		BaseRate:         vehicle.BaseRate,
		PerKmRate:        vehicle.PerKmRate,
		ServiceSurcharge: surcharge,
		TotalFee:         total,
		EtaMinutes:       minutes,
		EtaLabel:         label,
	}, nil
}

// ComputeEta derives a minutes estimate from distance and the tier's speed
// and pickup-overhead assumptions. Monotonic in distance for a fixed tier.
func (s *Service) ComputeEta(distanceKm float64, tier ServiceTier) (string, int, error) {
	if distanceKm < 0 {
		return "", 0, ErrBadDistance
	}
	profile, ok := s.profiles[tier]
	if !ok {
		return "", 0, fmt.Errorf("%w: %q", ErrUnknownTier, tier)
	}
	travel := int(math.Ceil(distanceKm / profile.SpeedKmh * 60))
	minutes := profile.OverheadMin + travel
	return fmt.Sprintf("~%d min", minutes), minutes, nil
}

// Vehicle looks up one catalog entry by ID.
func (s *Service) Vehicle(ctx context.Context, id string) (Vehicle, error) {
	return s.store.GetVehicle(ctx, id)
}

// Vehicles lists the catalog.
func (s *Service) Vehicles(ctx context.Context) ([]Vehicle, error) {
	return s.store.ListVehicles(ctx)
}
