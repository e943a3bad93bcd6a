// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"megafast/internal/delivery/http/middleware"
	"megafast/internal/delivery/http/router/handler"
	"megafast/internal/domain/entity"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	SessionHandler      *handler.SessionHandler
	DriverHandler       *handler.DriverHandler
	ShipmentHandler     *handler.ShipmentHandler
	BatchHandler        *handler.BatchHandler
	NotificationHandler *handler.NotificationHandler
	AuthMiddleware      *middleware.AuthMiddleware
}

// router holds all the handlers that need to be registered.
type router struct {
	session        *handler.SessionHandler
	driver         *handler.DriverHandler
	shipment       *handler.ShipmentHandler
	batch          *handler.BatchHandler
	notification   *handler.NotificationHandler
	authMiddleware *middleware.AuthMiddleware
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		session:        params.SessionHandler,
		driver:         params.DriverHandler,
		shipment:       params.ShipmentHandler,
		batch:          params.BatchHandler,
		notification:   params.NotificationHandler,
		authMiddleware: params.AuthMiddleware,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	auth := r.authMiddleware

	e.GET("/health", handler.HealthCheck)

	authGroup := e.Group("/auth")
	{
		authGroup.POST("/login", r.session.Login)
		authGroup.POST("/refresh", r.session.RefreshToken)
		authGroup.GET("/me", r.session.Me, auth.Authenticate)
	}

	driverGroup := e.Group("/driver", auth.Authenticate, auth.RequireRole(entity.RoleDriver))
	{
		driverGroup.GET("/shipments", r.driver.ListShipments)
		driverGroup.GET("/shipments/watch", r.driver.WatchShipments)
		driverGroup.PATCH("/shipments/:id/status", r.driver.UpdateShipmentStatus)
		driverGroup.GET("/batches", r.driver.ListBatches)
		driverGroup.GET("/batches/statistics", r.driver.BatchStatistics)
		driverGroup.GET("/batches/:id/shipments", r.driver.BatchShipments)
		driverGroup.POST("/batches/:id/start", r.driver.StartBatch)
		driverGroup.POST("/batches/:id/complete", r.driver.CompleteBatch)
		driverGroup.GET("/stats", r.driver.Stats)
		driverGroup.GET("/cities", r.driver.Cities)
	}

	shipmentGroup := e.Group("/shipments", auth.Authenticate, auth.RequireRole(entity.RoleClient, entity.RoleAdmin))
	{
		shipmentGroup.POST("", r.shipment.CreateShipment)
		shipmentGroup.GET("", r.shipment.ListShipments)
		shipmentGroup.GET("/stats", r.shipment.ClientStats)
		shipmentGroup.GET("/track/:barcode", r.shipment.TrackShipment)
		shipmentGroup.GET("/:id", r.shipment.GetShipment)
		shipmentGroup.GET("/:id/label", r.shipment.Label)
		shipmentGroup.POST("/:id/cancel", r.shipment.CancelShipment)
	}

	adminGroup := e.Group("/admin", auth.Authenticate, auth.RequireRole(entity.RoleAdmin))
	{
		adminGroup.GET("/stats", r.shipment.OverviewStats)
		adminGroup.GET("/batches", r.batch.ListBatches)
		adminGroup.POST("/batches", r.batch.CreateBatch)
		adminGroup.POST("/batches/:id/cancel", r.batch.CancelBatch)
	}

	// Batch details are shared by admins and the assigned driver
	e.GET("/batches/:id", r.batch.GetBatch, auth.Authenticate, auth.RequireRole(entity.RoleAdmin, entity.RoleDriver))

	// Any authenticated account
	e.GET("/notifications", r.notification.ListNotifications, auth.Authenticate)
	e.POST("/notifications/:id/read", r.notification.MarkRead, auth.Authenticate)
	e.POST("/devices", r.notification.RegisterDevice, auth.Authenticate)
}
