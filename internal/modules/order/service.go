// README: Order lifecycle service: checkout creation and role-gated state transitions.
package order

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"chowline/internal/logger"
	"chowline/internal/types"
)

var (
	ErrInvalidTransition = errors.New("invalid state transition")
	ErrNotFound          = errors.New("order not found")
	ErrConflict          = errors.New("order state conflict")
	ErrBadRequest        = errors.New("bad request")
)

// Event names carried to subscribers.
const (
	EventNewOrder          = "newOrder"
	EventOrderStatusUpdate = "orderStatusUpdate"
)

// Publisher is the fan-out dependency; publish is best-effort and must
// never fail the transition that triggered it.
type Publisher interface {
	Publish(ctx context.Context, event string, o *Order)
}

type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, *Order) {}

type Service struct {
	store  *Store
	notify Publisher
	log    logger.ILogger
}

func NewService(store *Store, notify Publisher, log logger.ILogger) *Service {
	if notify == nil {
		notify = NopPublisher{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Service{store: store, notify: notify, log: log}
}

type CreateCommand struct {
	CustomerID   *types.ID
	Guest        *GuestInfo
	RestaurantID types.ID
	Items        []Item
	TotalAmount  types.Money
	DeliveryFee  types.Money
	Address      Address
}

type TransitionCommand struct {
	OrderID   types.ID
	ActorRole string
	ActorID   types.ID
	Target    Status
}

func (s *Service) Create(ctx context.Context, cmd CreateCommand) (*Order, error) {
	if cmd.RestaurantID == "" || len(cmd.Items) == 0 {
		return nil, ErrBadRequest
	}
	// Guest checkout carries a contact snapshot instead of a customer ref.
	if cmd.CustomerID == nil && cmd.Guest == nil {
		return nil, ErrBadRequest
	}
	if cmd.Address.Street == "" || cmd.Address.City == "" || cmd.Address.State == "" || cmd.Address.Zip == "" {
		return nil, ErrBadRequest
	}

	now := time.Now()
	o := &Order{
		ID:            newID(),
		CustomerID:    cmd.CustomerID,
		Guest:         cmd.Guest,
		RestaurantID:  cmd.RestaurantID,
		Items:         cmd.Items,
		TotalAmount:   cmd.TotalAmount,
		DeliveryFee:   cmd.DeliveryFee,
		Address:       cmd.Address,
		Status:        StatusPending,
		StatusVersion: 0,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.store.Create(ctx, o); err != nil {
		return nil, err
	}
	s.appendEvent(ctx, &Event{
		OrderID:    o.ID,
		FromStatus: StatusNone,
		ToStatus:   StatusPending,
		ActorRole:  RoleCustomer,
		ActorID:    cmd.CustomerID,
		CreatedAt:  now,
	})
	s.notify.Publish(ctx, EventNewOrder, o)
	return o, nil
}

// Transition applies a single edge of the lifecycle graph on behalf of a
// restaurant or admin actor. Dispatch-owned edges (out_for_delivery,
// delivered) are rejected here no matter who asks; only the dispatch
// engine may write them, which is what keeps assignment exclusive.
func (s *Service) Transition(ctx context.Context, cmd TransitionCommand) (*Order, error) {
	if cmd.Target == StatusOutForDelivery || cmd.Target == StatusDelivered {
		return nil, ErrInvalidTransition
	}
	if !RoleMayTarget(cmd.ActorRole, cmd.Target) {
		return nil, ErrInvalidTransition
	}

	o, err := s.store.Get(ctx, cmd.OrderID)
	if err != nil {
		return nil, err
	}
	if !CanTransition(o.Status, cmd.Target) {
		return nil, ErrInvalidTransition
	}

	updatedAt, version, ok, err := s.store.UpdateStatus(ctx, o.ID, o.Status, cmd.Target, o.StatusVersion)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrConflict
	}

	from := o.Status
	o.Status = cmd.Target
	o.StatusVersion = version
	o.UpdatedAt = updatedAt

	actorID := cmd.ActorID
	s.appendEvent(ctx, &Event{
		OrderID:    o.ID,
		FromStatus: from,
		ToStatus:   cmd.Target,
		ActorRole:  cmd.ActorRole,
		ActorID:    &actorID,
		CreatedAt:  o.UpdatedAt,
	})
	s.notify.Publish(ctx, EventOrderStatusUpdate, o)
	return o, nil
}

// appendEvent journals a transition. The status write already committed,
// so a journal failure is logged rather than failing the call.
func (s *Service) appendEvent(ctx context.Context, e *Event) {
	if err := s.store.AppendEvent(ctx, e); err != nil {
		s.log.Warn("event append failed",
			logger.Error(err),
			logger.String("order_id", string(e.OrderID)),
			logger.String("to_status", string(e.ToStatus)),
		)
	}
}

// Cancel is the shared restaurant/admin cancellation path. Orders already
// out for delivery cannot be cancelled; the rider's assignment slot would
// otherwise be left dangling.
func (s *Service) Cancel(ctx context.Context, orderID types.ID, actorRole string, actorID types.ID) (*Order, error) {
	return s.Transition(ctx, TransitionCommand{
		OrderID:   orderID,
		ActorRole: actorRole,
		ActorID:   actorID,
		Target:    StatusCancelled,
	})
}

func (s *Service) Get(ctx context.Context, id types.ID) (*Order, error) {
	return s.store.Get(ctx, id)
}

func newID() types.ID {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return types.ID(hex.EncodeToString(b[:]))
}
