// README: Vehicle catalog and one-shot estimate handlers.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"courier/internal/modules/delivery"
	"courier/internal/modules/pricing"
	"courier/internal/types"
)

type EstimateHandler struct {
	pricing  *pricing.Service
	delivery *delivery.Service
}

func NewEstimateHandler(pricingSvc *pricing.Service, deliverySvc *delivery.Service) *EstimateHandler {
	return &EstimateHandler{pricing: pricingSvc, delivery: deliverySvc}
}

// Vehicles handles GET /api/vehicles.
func (h *EstimateHandler) Vehicles(c *gin.Context) {
	vehicles, err := h.pricing.Vehicles(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"vehicles": vehicles})
}

type estimateReq struct {
	Pickup      types.Point `json:"pickup" binding:"required"`
	Dropoff     types.Point `json:"dropoff" binding:"required"`
	VehicleID   string      `json:"vehicle_id" binding:"required"`
	ServiceTier string      `json:"service_tier" binding:"required"`
}

// Estimate handles POST /api/estimate: a sessionless distance + fee + ETA
// computation for one pickup/drop-off pair.
func (h *EstimateHandler) Estimate(c *gin.Context) {
	var req estimateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	est, err := h.delivery.EstimateDelivery(
		c.Request.Context(),
		req.Pickup, req.Dropoff,
		req.VehicleID, pricing.ServiceTier(req.ServiceTier),
	)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, est)
}
