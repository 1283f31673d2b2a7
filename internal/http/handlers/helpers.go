// README: Shared handler utilities for JSON errors and core error mapping.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"chowline/internal/modules/dispatch"
	"chowline/internal/modules/order"
	"chowline/internal/modules/rider"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(c *gin.Context, status int, msg string) {
	c.JSON(status, errorResponse{Error: msg})
}

// writeCoreError maps the core's typed rejections onto 4xx responses.
// Anything unrecognized is a store-level failure and stays a 500.
func writeCoreError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, order.ErrBadRequest):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, order.ErrNotFound),
		errors.Is(err, rider.ErrNotFound),
		errors.Is(err, dispatch.ErrNotFound):
		writeError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, order.ErrInvalidTransition),
		errors.Is(err, order.ErrConflict),
		errors.Is(err, dispatch.ErrOrderUnavailable),
		errors.Is(err, dispatch.ErrRiderBusy),
		errors.Is(err, dispatch.ErrInvalidOrder):
		writeError(c, http.StatusConflict, err.Error())
	default:
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}
