// README: Delivery store backed by PostgreSQL.
package delivery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"courier/internal/types"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func (s *Store) Create(ctx context.Context, d *Delivery) error {
	pickup, err := json.Marshal(d.Pickup)
	if err != nil {
		return fmt.Errorf("delivery: marshal pickup: %w", err)
	}
	dropoffs, err := json.Marshal(d.Dropoffs)
	if err != nil {
		return fmt.Errorf("delivery: marshal dropoffs: %w", err)
	}

	const q = `
		INSERT INTO deliveries
			(id, sender_id, status, pickup, dropoffs, vehicle_id, service_tier,
			 distance_km, total_fee, eta_minutes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err = s.db.Exec(ctx, q,
		d.ID, d.SenderID, d.Status, pickup, dropoffs, d.VehicleID, d.ServiceTier,
		d.DistanceKm, d.TotalFee, d.EtaMinutes, d.CreatedAt, d.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("delivery: create: %w", err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, id types.ID) (*Delivery, error) {
	const q = `
		SELECT id, sender_id, rider_id, status, pickup, dropoffs, vehicle_id,
		       service_tier, distance_km, total_fee, eta_minutes, created_at, updated_at
		FROM deliveries
		WHERE id = $1`

	d, err := scanDelivery(s.db.QueryRow(ctx, q, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("delivery: get: %w", err)
	}
	return d, nil
}

// List returns deliveries filtered by status; an empty status returns all.
func (s *Store) List(ctx context.Context, status Status) ([]*Delivery, error) {
	const base = `
		SELECT id, sender_id, rider_id, status, pickup, dropoffs, vehicle_id,
		       service_tier, distance_km, total_fee, eta_minutes, created_at, updated_at
		FROM deliveries`

	var (
		rows pgx.Rows
		err  error
	)
	if status == "" {
		rows, err = s.db.Query(ctx, base+` ORDER BY created_at DESC`)
	} else {
		rows, err = s.db.Query(ctx, base+` WHERE status = $1 ORDER BY created_at DESC`, status)
	}
	if err != nil {
		return nil, fmt.Errorf("delivery: list: %w", err)
	}
	defer rows.Close()

	var out []*Delivery
	for rows.Next() {
		d, err := scanDelivery(rows)
		if err != nil {
			return nil, fmt.Errorf("delivery: scan: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("delivery: list: %w", err)
	}
	return out, nil
}

// UpdateStatus moves a delivery from one status to another atomically,
// reporting false when another actor won the race.
func (s *Store) UpdateStatus(ctx context.Context, id types.ID, from, to Status, riderID *types.ID) (bool, error) {
	const q = `
		UPDATE deliveries
		SET status = $3, rider_id = COALESCE($4, rider_id), updated_at = NOW()
		WHERE id = $1 AND status = $2`

	tag, err := s.db.Exec(ctx, q, id, from, to, riderID)
	if err != nil {
		return false, fmt.Errorf("delivery: update status: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (s *Store) AppendEvent(ctx context.Context, e *Event) error {
	const q = `
		INSERT INTO delivery_events
			(delivery_id, from_status, to_status, actor_type, actor_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := s.db.Exec(ctx, q, e.DeliveryID, e.FromStatus, e.ToStatus, e.ActorType, e.ActorID, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("delivery: append event: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDelivery(row rowScanner) (*Delivery, error) {
	var (
		d        Delivery
		pickup   []byte
		dropoffs []byte
	)
	err := row.Scan(&d.ID, &d.SenderID, &d.RiderID, &d.Status, &pickup, &dropoffs,
		&d.VehicleID, &d.ServiceTier, &d.DistanceKm, &d.TotalFee, &d.EtaMinutes,
		&d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(pickup, &d.Pickup); err != nil {
		return nil, fmt.Errorf("unmarshal pickup: %w", err)
	}
	if err := json.Unmarshal(dropoffs, &d.Dropoffs); err != nil {
		return nil, fmt.Errorf("unmarshal dropoffs: %w", err)
	}
	return &d, nil
}
