// README: Vehicle catalog store backed by PostgreSQL.
package pricing

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func (s *Store) GetVehicle(ctx context.Context, id string) (Vehicle, error) {
	const q = `
		SELECT id, name, base_rate, per_km_rate
		FROM vehicles
		WHERE id = $1`

	var v Vehicle
	err := s.db.QueryRow(ctx, q, id).Scan(&v.ID, &v.Name, &v.BaseRate, &v.PerKmRate)
	if errors.Is(err, pgx.ErrNoRows) {
		return Vehicle{}, ErrVehicleNotFound
	}
	if err != nil {
		return Vehicle{}, fmt.Errorf("pricing: get vehicle: %w", err)
	}
	return v, nil
}

func (s *Store) ListVehicles(ctx context.Context) ([]Vehicle, error) {
	const q = `
		SELECT id, name, base_rate, per_km_rate
		FROM vehicles
		ORDER BY name`

	rows, err := s.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("pricing: list vehicles: %w", err)
	}
	defer rows.Close()

	var vehicles []Vehicle
	for rows.Next() {
		var v Vehicle
		if err := rows.Scan(&v.ID, &v.Name, &v.BaseRate, &v.PerKmRate); err != nil {
			return nil, fmt.Errorf("pricing: scan vehicle: %w", err)
		}
		vehicles = append(vehicles, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pricing: list vehicles: %w", err)
	}
	return vehicles, nil
}
