// README: Checkout and restaurant/admin order handlers.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"chowline/internal/http/middleware"
	"chowline/internal/modules/order"
	"chowline/internal/types"
)

type OrderHandler struct {
	order *order.Service
}

func NewOrderHandler(svc *order.Service) *OrderHandler {
	return &OrderHandler{order: svc}
}

type itemReq struct {
	ItemID    string `json:"item_id"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unit_price"`
	Quantity  int    `json:"quantity"`
}

type createOrderReq struct {
	RestaurantID string           `json:"restaurant_id"`
	Items        []itemReq        `json:"items"`
	TotalAmount  int64            `json:"total_amount"`
	DeliveryFee  int64            `json:"delivery_fee"`
	Address      order.Address    `json:"delivery_address"`
	Guest        *order.GuestInfo `json:"guest,omitempty"`
}

// Create handles checkout for both registered customers (actor id from
// the token) and guests (contact snapshot in the body).
func (h *OrderHandler) Create(c *gin.Context) {
	var req createOrderReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}

	var customerID *types.ID
	if actor := c.GetString(middleware.CtxActorID); actor != "" && c.GetString(middleware.CtxActorRole) == order.RoleCustomer {
		id := types.ID(actor)
		customerID = &id
	}

	items := make([]order.Item, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, order.Item{
			ItemID:    types.ID(it.ItemID),
			Name:      it.Name,
			UnitPrice: types.Cents(it.UnitPrice),
			Quantity:  it.Quantity,
		})
	}

	o, err := h.order.Create(c.Request.Context(), order.CreateCommand{
		CustomerID:   customerID,
		Guest:        req.Guest,
		RestaurantID: types.ID(req.RestaurantID),
		Items:        items,
		TotalAmount:  types.Cents(req.TotalAmount),
		DeliveryFee:  types.Cents(req.DeliveryFee),
		Address:      req.Address,
	})
	if err != nil {
		writeCoreError(c, err)
		return
	}
	c.JSON(http.StatusCreated, o)
}

func (h *OrderHandler) Get(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		writeError(c, http.StatusBadRequest, "missing order id")
		return
	}
	o, err := h.order.Get(c.Request.Context(), types.ID(id))
	if err != nil {
		writeCoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order_id": o.ID, "status": o.Status, "rider_id": o.RiderID, "updated_at": o.UpdatedAt})
}

type transitionReq struct {
	Target string `json:"target"`
}

func (h *OrderHandler) Transition(c *gin.Context) {
	id := c.Param("id")
	var req transitionReq
	if err := c.ShouldBindJSON(&req); err != nil || req.Target == "" {
		writeError(c, http.StatusBadRequest, "missing target status")
		return
	}

	o, err := h.order.Transition(c.Request.Context(), order.TransitionCommand{
		OrderID:   types.ID(id),
		ActorRole: c.GetString(middleware.CtxActorRole),
		ActorID:   types.ID(c.GetString(middleware.CtxActorID)),
		Target:    order.Status(req.Target),
	})
	if err != nil {
		writeCoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

func (h *OrderHandler) Cancel(c *gin.Context) {
	id := c.Param("id")
	o, err := h.order.Cancel(c.Request.Context(),
		types.ID(id),
		c.GetString(middleware.CtxActorRole),
		types.ID(c.GetString(middleware.CtxActorID)),
	)
	if err != nil {
		writeCoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}
