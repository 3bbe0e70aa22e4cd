// README: Delivery-creation session state machine with explicit downstream invalidation.
package delivery

import (
	"errors"
	"time"

	"courier/internal/modules/pricing"
	"courier/internal/types"
)

type SessionState string

const (
	StateEmpty               SessionState = "empty"
	StateAddressEntered      SessionState = "address_entered"
	StateCoordinatesResolved SessionState = "coordinates_resolved"
	StateDistanceComputed    SessionState = "distance_computed"
	StatePriceComputed       SessionState = "price_computed"
	StateConfirmed           SessionState = "confirmed"
)

var (
	ErrSessionConfirmed   = errors.New("session already confirmed")
	ErrSessionNotPriced   = errors.New("session has no computed price")
	ErrSessionNotResolved = errors.New("session endpoints not resolved")
	ErrNoSuchDropoff      = errors.New("drop-off index out of range")
)

// Session is one sender's in-progress delivery setup: pickup, one or more
// drop-offs, vehicle and tier choice, and the current estimate. It is
// ephemeral state, held in Redis until confirmed or expired.
//
// Editing an address after its coordinates were resolved drops the session
// back to AddressEntered and clears any distance or price derived from the
// old coordinates. The estimate is never allowed to outlive the inputs it
// was computed from.
type Session struct {
	ID          types.ID            `json:"id"`
	SenderID    types.ID            `json:"sender_id"`
	State       SessionState        `json:"state"`
	Pickup      Endpoint            `json:"pickup"`
	Dropoffs    []Endpoint          `json:"dropoffs"`
	VehicleID   string              `json:"vehicle_id"`
	ServiceTier pricing.ServiceTier `json:"service_tier"`
	Estimate    *pricing.Estimate   `json:"estimate,omitempty"`
	Warning     string              `json:"warning,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// NewSession starts an empty session for a sender.
func NewSession(id, senderID types.ID) *Session {
	now := time.Now()
	return &Session{
		ID:          id,
		SenderID:    senderID,
		State:       StateEmpty,
		ServiceTier: pricing.TierRegular,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// EnterPickupAddress records an address edit on the pickup endpoint. Any
// previously resolved coordinates and downstream estimates are invalidated.
func (s *Session) EnterPickupAddress(ep Endpoint) error {
	if s.State == StateConfirmed {
		return ErrSessionConfirmed
	}
	ep.Coordinates = nil
	s.Pickup = ep
	s.invalidate()
	return nil
}

// EnterDropoffAddress records an address edit on the drop-off at index,
// appending a new drop-off when index equals the current count.
func (s *Session) EnterDropoffAddress(index int, ep Endpoint) error {
	if s.State == StateConfirmed {
		return ErrSessionConfirmed
	}
	if index < 0 || index > len(s.Dropoffs) {
		return ErrNoSuchDropoff
	}
	ep.Coordinates = nil
	if index == len(s.Dropoffs) {
		s.Dropoffs = append(s.Dropoffs, ep)
	} else {
		s.Dropoffs[index] = ep
	}
	s.invalidate()
	return nil
}

// ResolvePickup attaches geocoded coordinates to the pickup endpoint.
func (s *Session) ResolvePickup(pt types.Point) error {
	if s.State == StateConfirmed {
		return ErrSessionConfirmed
	}
	s.Pickup.Coordinates = &pt
	s.refreshResolution()
	return nil
}

// ResolveDropoff attaches geocoded coordinates to the drop-off at index.
func (s *Session) ResolveDropoff(index int, pt types.Point) error {
	if s.State == StateConfirmed {
		return ErrSessionConfirmed
	}
	if index < 0 || index >= len(s.Dropoffs) {
		return ErrNoSuchDropoff
	}
	s.Dropoffs[index].Coordinates = &pt
	s.refreshResolution()
	return nil
}

// SelectVehicle changes the vehicle or tier choice, invalidating any price
// computed for the previous selection. Coordinates stay resolved.
func (s *Session) SelectVehicle(vehicleID string, tier pricing.ServiceTier) error {
	if s.State == StateConfirmed {
		return ErrSessionConfirmed
	}
	s.VehicleID = vehicleID
	s.ServiceTier = tier
	if s.State == StateDistanceComputed || s.State == StatePriceComputed {
		// endpoints are untouched, so resolution survives; the estimate does not
		s.Estimate = nil
		s.State = StateCoordinatesResolved
	}
	s.touch()
	return nil
}

// ApplyDistance records a computed route distance. Requires all endpoints to
// be resolved.
func (s *Session) ApplyDistance(distanceKm float64) error {
	if s.State == StateConfirmed {
		return ErrSessionConfirmed
	}
	if !s.fullyResolved() {
		return ErrSessionNotResolved
	}
	s.Estimate = &pricing.Estimate{DistanceKm: distanceKm}
	s.State = StateDistanceComputed
	s.Warning = ""
	s.touch()
	return nil
}

// ApplyPrice records the full estimate for the computed distance.
func (s *Session) ApplyPrice(est pricing.Estimate) error {
	if s.State == StateConfirmed {
		return ErrSessionConfirmed
	}
	if s.State != StateDistanceComputed && s.State != StatePriceComputed {
		return ErrSessionNotResolved
	}
	s.Estimate = &est
	s.State = StatePriceComputed
	s.Warning = ""
	s.touch()
	return nil
}

// Confirm finalizes the session. Only a fully priced session can confirm.
func (s *Session) Confirm() error {
	if s.State == StateConfirmed {
		return ErrSessionConfirmed
	}
	if s.State != StatePriceComputed {
		return ErrSessionNotPriced
	}
	s.State = StateConfirmed
	s.touch()
	return nil
}

// invalidate resets the session after an address edit: back to AddressEntered
// (or Empty when nothing is filled in) with no estimate and no warning.
func (s *Session) invalidate() {
	s.Estimate = nil
	s.Warning = ""
	if s.Pickup.Address == "" && len(s.Dropoffs) == 0 {
		s.State = StateEmpty
	} else {
		s.State = StateAddressEntered
	}
	s.touch()
}

// refreshResolution promotes the session to CoordinatesResolved once every
// endpoint has coordinates. A partially resolved route stays AddressEntered.
func (s *Session) refreshResolution() {
	if s.fullyResolved() {
		s.State = StateCoordinatesResolved
	} else {
		s.State = StateAddressEntered
	}
	s.Estimate = nil
	s.Warning = ""
	s.touch()
}

func (s *Session) fullyResolved() bool {
	if !s.Pickup.Resolved() || len(s.Dropoffs) == 0 {
		return false
	}
	for _, d := range s.Dropoffs {
		if !d.Resolved() {
			return false
		}
	}
	return true
}

func (s *Session) touch() {
	s.UpdatedAt = time.Now()
}
