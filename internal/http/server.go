// README: API server; registers HTTP routes and delegates to module services.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"courier/internal/geocode"
	"courier/internal/http/handlers"
	"courier/internal/http/middleware"
	"courier/internal/modules/delivery"
	"courier/internal/modules/pricing"
)

type ServerDeps struct {
	Geocode  *geocode.Orchestrator
	Suggest  *geocode.Suggester
	Pricing  *pricing.Service
	Delivery *delivery.Service
}

type Server struct {
	deps ServerDeps
}

func NewServer(deps ServerDeps) *Server {
	return &Server{deps: deps}
}

func (s *Server) Routes() http.Handler {
	r := gin.New()
	r.Use(middleware.Logging(), middleware.Recovery())

	geocodeHandler := handlers.NewGeocodeHandler(s.deps.Geocode, s.deps.Suggest)
	r.GET("/api/geocode/search", geocodeHandler.Search)
	r.GET("/api/geocode/reverse", geocodeHandler.Reverse)
	r.DELETE("/api/geocode/streams/:stream", geocodeHandler.CancelStream)

	estimateHandler := handlers.NewEstimateHandler(s.deps.Pricing, s.deps.Delivery)
	r.GET("/api/vehicles", estimateHandler.Vehicles)
	r.POST("/api/estimate", estimateHandler.Estimate)

	sessionHandler := handlers.NewSessionHandler(s.deps.Delivery)
	r.POST("/api/sessions", sessionHandler.Start)
	r.GET("/api/sessions/:id", sessionHandler.Get)
	r.PUT("/api/sessions/:id/endpoint", sessionHandler.UpdateEndpoint)
	r.PUT("/api/sessions/:id/vehicle", sessionHandler.SelectVehicle)
	r.POST("/api/sessions/:id/confirm", sessionHandler.Confirm)

	deliveryHandler := handlers.NewDeliveryHandler(s.deps.Delivery)
	r.GET("/api/deliveries", deliveryHandler.List)
	r.GET("/api/deliveries/:id", deliveryHandler.Get)
	r.POST("/api/deliveries/:id/assign", deliveryHandler.Assign)
	r.POST("/api/deliveries/:id/pickup", deliveryHandler.PickUp)
	r.POST("/api/deliveries/:id/transit", deliveryHandler.Transit)
	r.POST("/api/deliveries/:id/deliver", deliveryHandler.Deliver)
	r.POST("/api/deliveries/:id/cancel", deliveryHandler.Cancel)

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	return r
}
