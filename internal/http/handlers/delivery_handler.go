// README: Delivery lifecycle handlers for riders and admins.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"courier/internal/modules/delivery"
	"courier/internal/types"
)

type DeliveryHandler struct {
	delivery *delivery.Service
}

func NewDeliveryHandler(svc *delivery.Service) *DeliveryHandler {
	return &DeliveryHandler{delivery: svc}
}

// Get handles GET /api/deliveries/:id.
func (h *DeliveryHandler) Get(c *gin.Context) {
	d, err := h.delivery.Get(c.Request.Context(), types.ID(c.Param("id")))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, d)
}

// List handles GET /api/deliveries?status=pending.
func (h *DeliveryHandler) List(c *gin.Context) {
	out, err := h.delivery.List(c.Request.Context(), delivery.Status(c.Query("status")))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	if out == nil {
		out = []*delivery.Delivery{}
	}
	writeJSON(c, http.StatusOK, gin.H{"deliveries": out})
}

type riderReq struct {
	RiderID string `json:"rider_id" binding:"required"`
}

// Assign handles POST /api/deliveries/:id/assign.
func (h *DeliveryHandler) Assign(c *gin.Context) {
	h.riderTransition(c, h.delivery.Assign)
}

// PickUp handles POST /api/deliveries/:id/pickup.
func (h *DeliveryHandler) PickUp(c *gin.Context) {
	h.riderTransition(c, h.delivery.MarkPickedUp)
}

// Transit handles POST /api/deliveries/:id/transit.
func (h *DeliveryHandler) Transit(c *gin.Context) {
	h.riderTransition(c, h.delivery.MarkInTransit)
}

// Deliver handles POST /api/deliveries/:id/deliver.
func (h *DeliveryHandler) Deliver(c *gin.Context) {
	h.riderTransition(c, h.delivery.MarkDelivered)
}

type cancelReq struct {
	ActorType string `json:"actor_type" binding:"required"`
	ActorID   string `json:"actor_id"`
}

// Cancel handles POST /api/deliveries/:id/cancel.
func (h *DeliveryHandler) Cancel(c *gin.Context) {
	var req cancelReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	var actorID *types.ID
	if req.ActorID != "" {
		id := types.ID(req.ActorID)
		actorID = &id
	}
	if err := h.delivery.Cancel(c.Request.Context(), types.ID(c.Param("id")), req.ActorType, actorID); err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"status": delivery.StatusCancelled})
}

func (h *DeliveryHandler) riderTransition(c *gin.Context, fn func(ctx context.Context, id, riderID types.ID) error) {
	var req riderReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := fn(c.Request.Context(), types.ID(c.Param("id")), types.ID(req.RiderID)); err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"status": "ok"})
}
