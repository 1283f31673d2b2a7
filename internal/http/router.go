// README: HTTP router registration.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"chowline/internal/http/handlers"
	"chowline/internal/http/middleware"
	"chowline/internal/logger"
	"chowline/internal/modules/dispatch"
	"chowline/internal/modules/earnings"
	"chowline/internal/modules/order"
	"chowline/internal/modules/rider"
)

type RouterDeps struct {
	Order     *order.Service
	Dispatch  *dispatch.Service
	Earnings  *earnings.Service
	Riders    *rider.Store
	JWTSecret string
	Log       logger.ILogger
}

func NewRouter(deps RouterDeps) http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(middleware.Recovery(deps.Log), middleware.Logging(deps.Log))

	orderHandler := handlers.NewOrderHandler(deps.Order)
	riderHandler := handlers.NewRiderHandler(deps.Dispatch, deps.Earnings, deps.Riders)

	api := r.Group("/api")

	// Checkout is open to guests; a customer token, when present, links
	// the order to the account.
	api.POST("/orders", middleware.OptionalAuth(deps.JWTSecret), orderHandler.Create)

	authed := api.Group("", middleware.Auth(deps.JWTSecret))
	authed.GET("/orders/:id", orderHandler.Get)
	authed.POST("/orders/:id/transition", orderHandler.Transition)
	authed.POST("/orders/:id/cancel", orderHandler.Cancel)

	riders := authed.Group("/rider", middleware.RequireRole(order.RoleRider))
	riders.GET("/orders/available", riderHandler.ListAvailable)
	riders.POST("/orders/:id/accept", riderHandler.Accept)
	riders.POST("/orders/:id/complete", riderHandler.Complete)
	riders.GET("/earnings", riderHandler.Earnings)
	riders.PUT("/availability", riderHandler.SetAvailability)

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	return r
}
