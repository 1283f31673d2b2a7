// README: Order store backed by PostgreSQL; status writes are compare-and-update.
package order

import (
	"context"
	"errors"
	"time"

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

func (s *Store) Create(ctx context.Context, o *Order) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		INSERT INTO orders (
			id, customer_id, guest_name, guest_email, guest_phone,
			restaurant_id, total_amount, delivery_fee,
			street, city, state, zip,
			status, status_version, rider_id, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8,
			$9, $10, $11, $12,
			$13, $14, $15, $16, $16
		)`,
		string(o.ID),
		toStringPtr(o.CustomerID),
		guestField(o.Guest, func(g *GuestInfo) string { return g.Name }),
		guestField(o.Guest, func(g *GuestInfo) string { return g.Email }),
		guestField(o.Guest, func(g *GuestInfo) string { return g.Phone }),
		string(o.RestaurantID),
		o.TotalAmount.Amount,
		o.DeliveryFee.Amount,
		o.Address.Street, o.Address.City, o.Address.State, o.Address.Zip,
		string(o.Status),
		o.StatusVersion,
		toStringPtr(o.RiderID),
		o.CreatedAt,
	)
	if err != nil {
		return err
	}

	for _, it := range o.Items {
		_, err = tx.Exec(ctx, `
			INSERT INTO order_items (order_id, item_id, name, unit_price, quantity)
			VALUES ($1, $2, $3, $4, $5)`,
			string(o.ID), string(it.ItemID), it.Name, it.UnitPrice.Amount, it.Quantity,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (s *Store) Get(ctx context.Context, id types.ID) (*Order, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, customer_id, guest_name, guest_email, guest_phone,
		       restaurant_id, total_amount, delivery_fee,
		       street, city, state, zip,
		       status, status_version, rider_id, created_at, updated_at
		FROM orders
		WHERE id = $1`, string(id),
	)

	o, err := scanOrder(row)
	if err != nil {
		return nil, err
	}

	items, err := s.itemsFor(ctx, []types.ID{o.ID})
	if err != nil {
		return nil, err
	}
	o.Items = items[o.ID]
	return o, nil
}

// UpdateStatus commits only when the row still matches (from, version) at
// write time and hands back the stored stamp so callers never invent their
// own; ok=false means the caller lost the race.
func (s *Store) UpdateStatus(ctx context.Context, id types.ID, from, to Status, version int) (updatedAt time.Time, newVersion int, ok bool, err error) {
	err = s.db.QueryRow(ctx, `
		UPDATE orders
		SET status = $1,
		    status_version = status_version + 1,
		    updated_at = NOW()
		WHERE id = $2 AND status = $3 AND status_version = $4
		RETURNING updated_at, status_version`,
		string(to), string(id), string(from), version,
	).Scan(&updatedAt, &newVersion)
	if errors.Is(err, pgx.ErrNoRows) {
		return time.Time{}, 0, false, nil
	}
	if err != nil {
		return time.Time{}, 0, false, err
	}
	return updatedAt, newVersion, true, nil
}

// ListAvailable returns ready orders with no rider yet, newest first.
// This is a live query, never a cache.
func (s *Store) ListAvailable(ctx context.Context) ([]*Order, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, customer_id, guest_name, guest_email, guest_phone,
		       restaurant_id, total_amount, delivery_fee,
		       street, city, state, zip,
		       status, status_version, rider_id, created_at, updated_at
		FROM orders
		WHERE status = 'ready_for_pickup' AND rider_id IS NULL
		ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Order
	var ids []types.ID
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	items, err := s.itemsFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, o := range out {
		o.Items = items[o.ID]
	}
	return out, nil
}

// Delivery is the slice of a delivered order the earnings aggregator needs.
type Delivery struct {
	OrderID     types.ID
	Fee         types.Money
	DeliveredAt time.Time
}

func (s *Store) DeliveriesByRider(ctx context.Context, riderID types.ID, since time.Time) ([]Delivery, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, delivery_fee, updated_at
		FROM orders
		WHERE rider_id = $1 AND status = 'delivered' AND updated_at >= $2
		ORDER BY updated_at`,
		string(riderID), since,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Delivery
	for rows.Next() {
		var d Delivery
		var fee int64
		if err := rows.Scan(&d.OrderID, &fee, &d.DeliveredAt); err != nil {
			return nil, err
		}
		d.Fee = types.Cents(fee)
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *Store) AppendEvent(ctx context.Context, e *Event) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO order_status_events (
			order_id, from_status, to_status, actor_role, actor_id, created_at
		) VALUES ($1, $2, $3, $4, $5, $6)`,
		string(e.OrderID),
		string(e.FromStatus),
		string(e.ToStatus),
		e.ActorRole,
		toStringPtr(e.ActorID),
		e.CreatedAt,
	)
	return err
}

// EventsFor returns the status journal for one order, oldest first.
func (s *Store) EventsFor(ctx context.Context, orderID types.ID) ([]Event, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, order_id, from_status, to_status, actor_role, actor_id, created_at
		FROM order_status_events
		WHERE order_id = $1
		ORDER BY id`, string(orderID),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var e Event
		var actorID *string
		if err := rows.Scan(&e.ID, &e.OrderID, &e.FromStatus, &e.ToStatus, &e.ActorRole, &actorID, &e.CreatedAt); err != nil {
			return nil, err
		}
		if actorID != nil {
			id := types.ID(*actorID)
			e.ActorID = &id
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) itemsFor(ctx context.Context, ids []types.ID) (map[types.ID][]Item, error) {
	out := make(map[types.ID][]Item, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	raw := make([]string, len(ids))
	for i, id := range ids {
		raw[i] = string(id)
	}
	rows, err := s.db.Query(ctx, `
		SELECT order_id, item_id, name, unit_price, quantity
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY id`, raw,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var orderID types.ID
		var it Item
		var price int64
		if err := rows.Scan(&orderID, &it.ItemID, &it.Name, &price, &it.Quantity); err != nil {
			return nil, err
		}
		it.UnitPrice = types.Cents(price)
		out[orderID] = append(out[orderID], it)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*Order, error) {
	var o Order
	var customerID, riderID *string
	var guestName, guestEmail, guestPhone *string
	var total, fee int64

	err := row.Scan(
		&o.ID, &customerID, &guestName, &guestEmail, &guestPhone,
		&o.RestaurantID, &total, &fee,
		&o.Address.Street, &o.Address.City, &o.Address.State, &o.Address.Zip,
		&o.Status, &o.StatusVersion, &riderID, &o.CreatedAt, &o.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	o.TotalAmount = types.Cents(total)
	o.DeliveryFee = types.Cents(fee)
	if customerID != nil {
		id := types.ID(*customerID)
		o.CustomerID = &id
	}
	if riderID != nil {
		id := types.ID(*riderID)
		o.RiderID = &id
	}
	if guestName != nil || guestEmail != nil || guestPhone != nil {
		o.Guest = &GuestInfo{
			Name:  deref(guestName),
			Email: deref(guestEmail),
			Phone: deref(guestPhone),
		}
	}
	return &o, nil
}

func toStringPtr(v *types.ID) *string {
	if v == nil {
		return nil
	}
	s := string(*v)
	return &s
}

func guestField(g *GuestInfo, f func(*GuestInfo) string) *string {
	if g == nil {
		return nil
	}
	v := f(g)
	return &v
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
