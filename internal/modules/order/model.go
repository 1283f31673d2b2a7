// README: Order aggregate, status definitions, and the transition table.
package order

import (
	"time"

	"chowline/internal/types"
)

type Status string

const (
	StatusNone           Status = "none"
	StatusPending        Status = "pending"
	StatusConfirmed      Status = "confirmed"
	StatusPreparing      Status = "preparing"
	StatusReadyForPickup Status = "ready_for_pickup"
	StatusOutForDelivery Status = "out_for_delivery"
	StatusDelivered      Status = "delivered"
	StatusCancelled      Status = "cancelled"
)

// Actor roles as supplied by the identity collaborator.
const (
	RoleCustomer   = "customer"
	RoleRestaurant = "restaurant"
	RoleRider      = "rider"
	RoleAdmin      = "admin"
	RoleDispatch   = "dispatch"
)

type GuestInfo struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type Address struct {
	Street string `json:"street"`
	City   string `json:"city"`
	State  string `json:"state"`
	Zip    string `json:"zip"`
}

// Item name and unit price are snapshots taken at creation time;
// later catalog edits never touch them.
type Item struct {
	ItemID    types.ID    `json:"item_id"`
	Name      string      `json:"name"`
	UnitPrice types.Money `json:"unit_price"`
	Quantity  int         `json:"quantity"`
}

type Order struct {
	ID            types.ID    `json:"id"`
	CustomerID    *types.ID   `json:"customer_id,omitempty"`
	Guest         *GuestInfo  `json:"guest,omitempty"`
	RestaurantID  types.ID    `json:"restaurant_id"`
	Items         []Item      `json:"items"`
	TotalAmount   types.Money `json:"total_amount"`
	DeliveryFee   types.Money `json:"delivery_fee"`
	Address       Address     `json:"delivery_address"`
	Status        Status      `json:"status"`
	StatusVersion int         `json:"-"`
	RiderID       *types.ID   `json:"rider_id,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

type Event struct {
	ID         int64
	OrderID    types.ID
	FromStatus Status
	ToStatus   Status
	ActorRole  string
	ActorID    *types.ID
	CreatedAt  time.Time
}

// AllowedTransitions represents the order state flow as code.
// out_for_delivery and delivered are reachable only through dispatch.
var AllowedTransitions = map[Status][]Status{
	StatusPending:        {StatusConfirmed, StatusCancelled},
	StatusConfirmed:      {StatusPreparing, StatusCancelled},
	StatusPreparing:      {StatusReadyForPickup, StatusCancelled},
	StatusReadyForPickup: {StatusOutForDelivery, StatusCancelled},
	StatusOutForDelivery: {StatusDelivered},
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

// roleTargets limits which target statuses each actor role may request
// through the generic transition entry point. Dispatch-owned targets are
// deliberately absent for every role.
var roleTargets = map[string][]Status{
	RoleRestaurant: {StatusConfirmed, StatusPreparing, StatusReadyForPickup, StatusCancelled},
	RoleAdmin:      {StatusCancelled},
}

func RoleMayTarget(role string, to Status) bool {
	for _, s := range roleTargets[role] {
		if s == to {
			return true
		}
	}
	return false
}
