// README: Dispatch engine: available pool, exclusive accept, and delivery completion.
package dispatch

import (
	"context"
	"errors"
	"time"

	"chowline/internal/logger"
	"chowline/internal/modules/order"
	"chowline/internal/modules/rider"
	"chowline/internal/types"
)

var (
	ErrOrderUnavailable = errors.New("order unavailable")
	ErrRiderBusy        = errors.New("rider busy")
	ErrInvalidOrder     = errors.New("invalid order for rider")
	ErrNotFound         = errors.New("not found")
)

type Service struct {
	store  *Store
	orders *order.Store
	riders *rider.Store
	notify order.Publisher
	log    logger.ILogger
}

func NewService(store *Store, orders *order.Store, riders *rider.Store, notify order.Publisher, log logger.ILogger) *Service {
	if notify == nil {
		notify = order.NopPublisher{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Service{store: store, orders: orders, riders: riders, notify: notify, log: log}
}

// ListAvailable exposes the dispatch pool: every ready order with no
// rider, and nothing else.
func (s *Service) ListAvailable(ctx context.Context) ([]*order.Order, error) {
	return s.orders.ListAvailable(ctx)
}

// Accept atomically assigns the order to the rider. Rejections are typed
// and final; the caller re-polls the pool rather than the engine retrying.
func (s *Service) Accept(ctx context.Context, riderID, orderID types.ID) (*order.Order, error) {
	if err := s.store.Accept(ctx, riderID, orderID); err != nil {
		return nil, err
	}

	// The assignment is committed at this point; the read only shapes the
	// response. An error here means the store itself is failing, and the
	// rider still holds the order.
	o, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}

	actorID := riderID
	s.appendEvent(ctx, &order.Event{
		OrderID:    orderID,
		FromStatus: order.StatusReadyForPickup,
		ToStatus:   order.StatusOutForDelivery,
		ActorRole:  order.RoleRider,
		ActorID:    &actorID,
		CreatedAt:  time.Now(),
	})
	s.notify.Publish(ctx, order.EventOrderStatusUpdate, o)
	return o, nil
}

// Complete settles the delivery: order delivered, rider freed, counters
// and earnings bumped by the order's delivery fee.
func (s *Service) Complete(ctx context.Context, riderID, orderID types.ID) (*order.Order, *rider.Rider, error) {
	if err := s.store.Complete(ctx, riderID, orderID); err != nil {
		return nil, nil, err
	}

	// Settlement is committed; these reads only shape the response.
	o, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}
	r, err := s.riders.Get(ctx, riderID)
	if err != nil {
		return nil, nil, err
	}

	actorID := riderID
	s.appendEvent(ctx, &order.Event{
		OrderID:    orderID,
		FromStatus: order.StatusOutForDelivery,
		ToStatus:   order.StatusDelivered,
		ActorRole:  order.RoleRider,
		ActorID:    &actorID,
		CreatedAt:  time.Now(),
	})
	s.notify.Publish(ctx, order.EventOrderStatusUpdate, o)
	return o, r, nil
}

// appendEvent journals a dispatch-owned transition; the underlying write
// already committed, so failures are logged and dropped.
func (s *Service) appendEvent(ctx context.Context, e *order.Event) {
	if err := s.orders.AppendEvent(ctx, e); err != nil {
		s.log.Warn("event append failed",
			logger.Error(err),
			logger.String("order_id", string(e.OrderID)),
			logger.String("to_status", string(e.ToStatus)),
		)
	}
}
