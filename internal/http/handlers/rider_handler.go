// README: Rider handlers: available pool, accept, complete, earnings, availability.
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"chowline/internal/http/middleware"
	"chowline/internal/modules/dispatch"
	"chowline/internal/modules/earnings"
	"chowline/internal/modules/rider"
	"chowline/internal/types"
)

type RiderHandler struct {
	dispatch *dispatch.Service
	earnings *earnings.Service
	riders   *rider.Store
}

func NewRiderHandler(dispatchSvc *dispatch.Service, earningsSvc *earnings.Service, riders *rider.Store) *RiderHandler {
	return &RiderHandler{dispatch: dispatchSvc, earnings: earningsSvc, riders: riders}
}

// rider resolves the calling actor's rider record; the token carries the
// user id, not the rider id.
func (h *RiderHandler) rider(c *gin.Context) (*rider.Rider, bool) {
	userID := types.ID(c.GetString(middleware.CtxActorID))
	r, err := h.riders.FindByUser(c.Request.Context(), userID)
	if err != nil {
		writeCoreError(c, err)
		return nil, false
	}
	return r, true
}

func (h *RiderHandler) ListAvailable(c *gin.Context) {
	orders, err := h.dispatch.ListAvailable(c.Request.Context())
	if err != nil {
		writeCoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

func (h *RiderHandler) Accept(c *gin.Context) {
	r, ok := h.rider(c)
	if !ok {
		return
	}
	o, err := h.dispatch.Accept(c.Request.Context(), r.ID, types.ID(c.Param("id")))
	if err != nil {
		writeCoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

func (h *RiderHandler) Complete(c *gin.Context) {
	r, ok := h.rider(c)
	if !ok {
		return
	}
	o, updated, err := h.dispatch.Complete(c.Request.Context(), r.ID, types.ID(c.Param("id")))
	if err != nil {
		writeCoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": o, "rider": updated})
}

func (h *RiderHandler) Earnings(c *gin.Context) {
	r, ok := h.rider(c)
	if !ok {
		return
	}
	sum, err := h.earnings.Summary(c.Request.Context(), r.ID, time.Now())
	if err != nil {
		writeCoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, sum)
}

type availabilityReq struct {
	Available *bool `json:"available"`
}

func (h *RiderHandler) SetAvailability(c *gin.Context) {
	var req availabilityReq
	if err := c.ShouldBindJSON(&req); err != nil || req.Available == nil {
		writeError(c, http.StatusBadRequest, "missing available flag")
		return
	}
	r, ok := h.rider(c)
	if !ok {
		return
	}
	if _, err := h.riders.SetAvailability(c.Request.Context(), r.ID, *req.Available); err != nil {
		writeCoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rider_id": r.ID, "is_available": *req.Available})
}
