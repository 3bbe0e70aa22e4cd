// README: Delivery service: estimation, session flow, and rider lifecycle transitions.
package delivery

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"courier/internal/modules/pricing"
	"courier/internal/routing"
	"courier/internal/types"
)

var (
	ErrNotFound     = errors.New("delivery not found")
	ErrInvalidState = errors.New("invalid state transition")
	ErrConflict     = errors.New("delivery state conflict")
	ErrBadRequest   = errors.New("bad request")
)

// Pricer is the slice of the pricing service the delivery flow needs.
type Pricer interface {
	Vehicle(ctx context.Context, id string) (pricing.Vehicle, error)
	ComputeFee(vehicle pricing.Vehicle, distanceKm float64, tier pricing.ServiceTier) (pricing.Estimate, error)
}

type Service struct {
	store    *Store
	sessions *SessionStore
	distance routing.Estimator
	pricer   Pricer
}

func NewService(store *Store, sessions *SessionStore, distance routing.Estimator, pricer Pricer) *Service {
	return &Service{store: store, sessions: sessions, distance: distance, pricer: pricer}
}

// EstimateDelivery prices a single pickup→drop-off route without a session.
// routing.ErrRouteNotFound passes through so callers can surface it as a
// warning instead of a failure.
func (s *Service) EstimateDelivery(ctx context.Context, pickup, dropoff types.Point, vehicleID string, tier pricing.ServiceTier) (pricing.Estimate, error) {
	if !pickup.Valid() || !dropoff.Valid() {
		return pricing.Estimate{}, ErrBadRequest
	}
	vehicle, err := s.pricer.Vehicle(ctx, vehicleID)
	if err != nil {
		return pricing.Estimate{}, err
	}
	km, err := s.routeDistance(ctx, pickup, []types.Point{dropoff})
	if err != nil {
		return pricing.Estimate{}, err
	}
	return s.pricer.ComputeFee(vehicle, km, tier)
}

// routeDistance sums the driving legs pickup → dropoff[0] → dropoff[1] → …
func (s *Service) routeDistance(ctx context.Context, pickup types.Point, dropoffs []types.Point) (float64, error) {
	total := 0.0
	prev := pickup
	for _, d := range dropoffs {
		leg, err := s.distance.Estimate(ctx, prev, d)
		if err != nil {
			return 0, err
		}
		total += leg
		prev = d
	}
	return total, nil
}

// --- Session flow ---

// StartSession opens an empty estimation session for a sender.
func (s *Service) StartSession(ctx context.Context, senderID types.ID) (*Session, error) {
	if senderID == "" {
		return nil, ErrBadRequest
	}
	session := NewSession(types.ID(uuid.NewString()), senderID)
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// EndpointUpdate describes one edit to a session endpoint. Index -1 targets
// the pickup; 0..n target drop-offs. When Coordinates is set the endpoint is
// being resolved (candidate selected); otherwise the address text changed.
type EndpointUpdate struct {
	Index       int
	Endpoint    Endpoint
	Coordinates *types.Point
}

// UpdateEndpoint applies one endpoint edit and, when the session becomes
// fully resolved with a vehicle selected, recomputes distance and price. A
// missing road route leaves the session resolved-but-unpriced with a warning
// rather than failing the edit.
func (s *Service) UpdateEndpoint(ctx context.Context, sessionID types.ID, upd EndpointUpdate) (*Session, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if upd.Coordinates != nil {
		if !upd.Coordinates.Valid() {
			return nil, ErrBadRequest
		}
		if upd.Index < 0 {
			err = session.ResolvePickup(*upd.Coordinates)
		} else {
			err = session.ResolveDropoff(upd.Index, *upd.Coordinates)
		}
	} else {
		if upd.Index < 0 {
			err = session.EnterPickupAddress(upd.Endpoint)
		} else {
			err = session.EnterDropoffAddress(upd.Index, upd.Endpoint)
		}
	}
	if err != nil {
		return nil, err
	}

	s.refreshEstimate(ctx, session)
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// SelectVehicle records the vehicle/tier choice and reprices.
func (s *Service) SelectVehicle(ctx context.Context, sessionID types.ID, vehicleID string, tier pricing.ServiceTier) (*Session, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := session.SelectVehicle(vehicleID, tier); err != nil {
		return nil, err
	}
	s.refreshEstimate(ctx, session)
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// GetSession returns the current session state.
func (s *Service) GetSession(ctx context.Context, sessionID types.ID) (*Session, error) {
	return s.sessions.Get(ctx, sessionID)
}

// refreshEstimate recomputes distance and price when the session has enough
// input. Failures degrade: the route or pricing problem becomes a session
// warning and the estimate stays blank.
func (s *Service) refreshEstimate(ctx context.Context, session *Session) {
	if session.State != StateCoordinatesResolved || session.VehicleID == "" {
		return
	}

	dropoffs := make([]types.Point, len(session.Dropoffs))
	for i, d := range session.Dropoffs {
		dropoffs[i] = *d.Coordinates
	}

	km, err := s.routeDistance(ctx, *session.Pickup.Coordinates, dropoffs)
	if err != nil {
		if errors.Is(err, routing.ErrRouteNotFound) {
			session.Warning = "no drivable route between the selected points"
		} else {
			log.Printf("delivery: distance estimate for session %s: %v", session.ID, err)
			session.Warning = "distance service unavailable, try again"
		}
		return
	}
	if err := session.ApplyDistance(km); err != nil {
		return
	}

	vehicle, err := s.pricer.Vehicle(ctx, session.VehicleID)
	if err != nil {
		session.Warning = "selected vehicle unavailable"
		return
	}
	est, err := s.pricer.ComputeFee(vehicle, km, session.ServiceTier)
	if err != nil {
		session.Warning = "could not price the selected tier"
		return
	}
	_ = session.ApplyPrice(est)
}

// Confirm turns a fully priced session into the authoritative delivery
// record and discards the session.
func (s *Service) Confirm(ctx context.Context, sessionID types.ID) (*Delivery, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := session.Confirm(); err != nil {
		return nil, err
	}

	now := time.Now()
	d := &Delivery{
		ID:          types.ID(uuid.NewString()),
		SenderID:    session.SenderID,
		Status:      StatusPending,
		Pickup:      session.Pickup,
		Dropoffs:    session.Dropoffs,
		VehicleID:   session.VehicleID,
		ServiceTier: session.ServiceTier,
		DistanceKm:  session.Estimate.DistanceKm,
		TotalFee:    session.Estimate.TotalFee,
		EtaMinutes:  session.Estimate.EtaMinutes,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.Create(ctx, d); err != nil {
		return nil, err
	}
	_ = s.store.AppendEvent(ctx, &Event{
		DeliveryID: d.ID,
		FromStatus: StatusNone,
		ToStatus:   StatusPending,
		ActorType:  "sender",
		ActorID:    &session.SenderID,
		CreatedAt:  now,
	})
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		log.Printf("delivery: drop confirmed session %s: %v", sessionID, err)
	}
	return d, nil
}

// --- Rider / admin lifecycle ---

func (s *Service) Get(ctx context.Context, id types.ID) (*Delivery, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, status Status) ([]*Delivery, error) {
	return s.store.List(ctx, status)
}

// Assign claims a pending delivery for a rider.
func (s *Service) Assign(ctx context.Context, id, riderID types.ID) error {
	if riderID == "" {
		return ErrBadRequest
	}
	return s.transition(ctx, id, StatusAssigned, "rider", &riderID)
}

func (s *Service) MarkPickedUp(ctx context.Context, id, riderID types.ID) error {
	return s.transition(ctx, id, StatusPickedUp, "rider", &riderID)
}

func (s *Service) MarkInTransit(ctx context.Context, id, riderID types.ID) error {
	return s.transition(ctx, id, StatusInTransit, "rider", &riderID)
}

func (s *Service) MarkDelivered(ctx context.Context, id, riderID types.ID) error {
	return s.transition(ctx, id, StatusDelivered, "rider", &riderID)
}

func (s *Service) Cancel(ctx context.Context, id types.ID, actorType string, actorID *types.ID) error {
	return s.transition(ctx, id, StatusCancelled, actorType, actorID)
}

func (s *Service) transition(ctx context.Context, id types.ID, to Status, actorType string, actorID *types.ID) error {
	d, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if !CanTransition(d.Status, to) {
		return ErrInvalidState
	}
	var rider *types.ID
	if to == StatusAssigned {
		rider = actorID
	}
	ok, err := s.store.UpdateStatus(ctx, d.ID, d.Status, to, rider)
	if err != nil {
		return err
	}
	if !ok {
		return ErrConflict
	}
	_ = s.store.AppendEvent(ctx, &Event{
		DeliveryID: d.ID,
		FromStatus: d.Status,
		ToStatus:   to,
		ActorType:  actorType,
		ActorID:    actorID,
		CreatedAt:  time.Now(),
	})
	return nil
}
