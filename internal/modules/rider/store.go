// README: Rider store backed by PostgreSQL.
package rider

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"chowline/internal/types"
)

var ErrNotFound = errors.New("rider not found")

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func (s *Store) Create(ctx context.Context, r *Rider) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO riders (
			id, user_id, vehicle_type, vehicle_number, license_number,
			is_available, active_order_id, total_deliveries, earnings,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)`,
		string(r.ID),
		string(r.UserID),
		r.VehicleType,
		r.VehicleNumber,
		r.LicenseNumber,
		r.IsAvailable,
		toStringPtr(r.ActiveOrderID),
		r.TotalDeliveries,
		r.Earnings.Amount,
		r.CreatedAt,
	)
	return err
}

func (s *Store) Get(ctx context.Context, id types.ID) (*Rider, error) {
	return s.getBy(ctx, "id", string(id))
}

func (s *Store) FindByUser(ctx context.Context, userID types.ID) (*Rider, error) {
	return s.getBy(ctx, "user_id", string(userID))
}

func (s *Store) getBy(ctx context.Context, column, value string) (*Rider, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, user_id, vehicle_type, vehicle_number, license_number,
		       is_available, active_order_id, total_deliveries, earnings,
		       created_at, updated_at
		FROM riders
		WHERE `+column+` = $1`, value,
	)

	var r Rider
	var activeOrder *string
	var earnings int64
	err := row.Scan(
		&r.ID, &r.UserID, &r.VehicleType, &r.VehicleNumber, &r.LicenseNumber,
		&r.IsAvailable, &activeOrder, &r.TotalDeliveries, &earnings,
		&r.CreatedAt, &r.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	r.Earnings = types.Cents(earnings)
	if activeOrder != nil {
		id := types.ID(*activeOrder)
		r.ActiveOrderID = &id
	}
	return &r, nil
}

// SetAvailability flips the rider-facing visibility flag. It touches only
// is_available so it can never race the dispatch engine's writes to
// active_order_id.
func (s *Store) SetAvailability(ctx context.Context, id types.ID, available bool) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE riders
		SET is_available = $1, updated_at = NOW()
		WHERE id = $2 AND is_available <> $1`,
		available, string(id),
	)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() == 1 {
		return true, nil
	}
	// No row changed: either unknown rider or already in that state.
	var exists bool
	if err := s.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM riders WHERE id = $1)`, string(id),
	).Scan(&exists); err != nil {
		return false, err
	}
	if !exists {
		return false, ErrNotFound
	}
	return false, nil
}

func toStringPtr(v *types.ID) *string {
	if v == nil {
		return nil
	}
	s := string(*v)
	return &s
}
