// README: Dispatch store: atomic accept/complete transactions over orders and riders.
package dispatch

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"chowline/internal/types"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// Accept pairs a rider with a ready order. Both UPDATE predicates are
// re-validated at write time inside one transaction, so under concurrent
// calls for the same order exactly one caller commits; everyone else gets
// a typed rejection. A read-then-write version of this is a lost-update
// race and is exactly what this store exists to prevent.
func (s *Store) Accept(ctx context.Context, riderID, orderID types.ID) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `
		UPDATE riders
		SET active_order_id = $1, updated_at = NOW()
		WHERE id = $2 AND active_order_id IS NULL`,
		string(orderID), string(riderID),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		exists, err := rowExists(ctx, tx, `SELECT EXISTS (SELECT 1 FROM riders WHERE id = $1)`, string(riderID))
		if err != nil {
			return err
		}
		if !exists {
			return ErrNotFound
		}
		return ErrRiderBusy
	}

	tag, err = tx.Exec(ctx, `
		UPDATE orders
		SET status = 'out_for_delivery',
		    rider_id = $1,
		    status_version = status_version + 1,
		    updated_at = NOW()
		WHERE id = $2 AND status = 'ready_for_pickup' AND rider_id IS NULL`,
		string(riderID), string(orderID),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		exists, err := rowExists(ctx, tx, `SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`, string(orderID))
		if err != nil {
			return err
		}
		if !exists {
			return ErrNotFound
		}
		return ErrOrderUnavailable
	}

	return tx.Commit(ctx)
}

// Complete marks the rider's active order delivered and settles the
// rider's counters in the same transaction: either both records move or
// neither does.
func (s *Store) Complete(ctx context.Context, riderID, orderID types.ID) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var fee int64
	err = tx.QueryRow(ctx, `
		UPDATE orders
		SET status = 'delivered',
		    status_version = status_version + 1,
		    updated_at = NOW()
		WHERE id = $1 AND rider_id = $2 AND status = 'out_for_delivery'
		RETURNING COALESCE(delivery_fee, 0)`,
		string(orderID), string(riderID),
	).Scan(&fee)
	if errors.Is(err, pgx.ErrNoRows) {
		exists, eerr := rowExists(ctx, tx, `SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`, string(orderID))
		if eerr != nil {
			return eerr
		}
		if !exists {
			return ErrNotFound
		}
		return ErrInvalidOrder
	}
	if err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, `
		UPDATE riders
		SET active_order_id = NULL,
		    total_deliveries = total_deliveries + 1,
		    earnings = earnings + $1,
		    updated_at = NOW()
		WHERE id = $2 AND active_order_id = $3`,
		fee, string(riderID), string(orderID),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		// The order claimed this rider but the rider row disagrees;
		// rolling back keeps the pair consistent.
		return ErrInvalidOrder
	}

	return tx.Commit(ctx)
}

func rowExists(ctx context.Context, tx pgx.Tx, query, arg string) (bool, error) {
	var exists bool
	err := tx.QueryRow(ctx, query, arg).Scan(&exists)
	return exists, err
}
