// README: Estimation session handlers driving the delivery-creation flow.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"courier/internal/modules/delivery"
	"courier/internal/modules/pricing"
	"courier/internal/types"
)

type SessionHandler struct {
	delivery *delivery.Service
}

func NewSessionHandler(svc *delivery.Service) *SessionHandler {
	return &SessionHandler{delivery: svc}
}

type startSessionReq struct {
	SenderID string `json:"sender_id" binding:"required"`
}

// Start handles POST /api/sessions.
func (h *SessionHandler) Start(c *gin.Context) {
	var req startSessionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	session, err := h.delivery.StartSession(c.Request.Context(), types.ID(req.SenderID))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, session)
}

// Get handles GET /api/sessions/:id.
func (h *SessionHandler) Get(c *gin.Context) {
	session, err := h.delivery.GetSession(c.Request.Context(), types.ID(c.Param("id")))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, session)
}

type endpointReq struct {
	// Index -1 targets the pickup endpoint; 0..n target drop-offs.
	Index        int          `json:"index"`
	Address      string       `json:"address"`
	HouseNumber  string       `json:"house_number"`
	ContactName  string       `json:"contact_name"`
	ContactPhone string       `json:"contact_phone"`
	Coordinates  *types.Point `json:"coordinates"`
}

// UpdateEndpoint handles PUT /api/sessions/:id/endpoint. Supplying
// coordinates marks the endpoint resolved (the sender picked a candidate);
// omitting them records an address edit, which invalidates any estimate.
func (h *SessionHandler) UpdateEndpoint(c *gin.Context) {
	var req endpointReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	session, err := h.delivery.UpdateEndpoint(c.Request.Context(), types.ID(c.Param("id")), delivery.EndpointUpdate{
		Index: req.Index,
		Endpoint: delivery.Endpoint{
			Address:      req.Address,
			HouseNumber:  req.HouseNumber,
			ContactName:  req.ContactName,
			ContactPhone: req.ContactPhone,
		},
		Coordinates: req.Coordinates,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, session)
}

type selectVehicleReq struct {
	VehicleID   string `json:"vehicle_id" binding:"required"`
	ServiceTier string `json:"service_tier" binding:"required"`
}

// SelectVehicle handles PUT /api/sessions/:id/vehicle.
func (h *SessionHandler) SelectVehicle(c *gin.Context) {
	var req selectVehicleReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	session, err := h.delivery.SelectVehicle(
		c.Request.Context(),
		types.ID(c.Param("id")),
		req.VehicleID,
		pricing.ServiceTier(req.ServiceTier),
	)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, session)
}

// Confirm handles POST /api/sessions/:id/confirm, creating the authoritative
// delivery record.
func (h *SessionHandler) Confirm(c *gin.Context) {
	d, err := h.delivery.Confirm(c.Request.Context(), types.ID(c.Param("id")))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, d)
}
