// README: Delivery aggregate and status definitions.
package delivery

import (
	"time"

	"courier/internal/modules/pricing"
	"courier/internal/types"
)

type Status string

const (
	StatusNone      Status = "none"
	StatusPending   Status = "pending"
	StatusAssigned  Status = "assigned"
	StatusPickedUp  Status = "picked_up"
	StatusInTransit Status = "in_transit"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

// Endpoint is one route endpoint of a delivery: the pickup or a drop-off.
// Coordinates stay nil until the address has been geocoded.
type Endpoint struct {
	Address      string       `json:"address"`
	HouseNumber  string       `json:"house_number"`
	ContactName  string       `json:"contact_name"`
	ContactPhone string       `json:"contact_phone"`
	Coordinates  *types.Point `json:"coordinates,omitempty"`
}

// Resolved reports whether the endpoint has geocoded coordinates.
func (e Endpoint) Resolved() bool {
	return e.Coordinates != nil && e.Coordinates.Valid()
}

// Delivery is the authoritative record, created server-side only when the
// sender confirms an estimation session.
type Delivery struct {
	ID          types.ID            `json:"id"`
	SenderID    types.ID            `json:"sender_id"`
	RiderID     *types.ID           `json:"rider_id,omitempty"`
	Status      Status              `json:"status"`
	Pickup      Endpoint            `json:"pickup"`
	Dropoffs    []Endpoint          `json:"dropoffs"`
	VehicleID   string              `json:"vehicle_id"`
	ServiceTier pricing.ServiceTier `json:"service_tier"`
	DistanceKm  float64             `json:"distance_km"`
	TotalFee    float64             `json:"total_fee"`
	EtaMinutes  int                 `json:"eta_minutes"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// Event records one status transition for auditing.
type Event struct {
	ID         int64
	DeliveryID types.ID
	FromStatus Status
	ToStatus   Status
	ActorType  string
	ActorID    *types.ID
	CreatedAt  time.Time
}

// AllowedTransitions represents the delivery lifecycle as code. Cancellation
// is possible until the parcel has been picked up.
var AllowedTransitions = map[Status][]Status{
	StatusPending:   {StatusAssigned, StatusCancelled},
	StatusAssigned:  {StatusPickedUp, StatusCancelled},
	StatusPickedUp:  {StatusInTransit},
	StatusInTransit: {StatusDelivered},
}

func CanTransition(from, to Status) bool {
	next, ok := AllowedTransitions[from]
	if !ok {
		return false
	}
	for _, s := range next {
		if s == to {
			return true
		}
	}
	return false
}
