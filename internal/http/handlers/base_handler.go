// README: Base handler utilities (JSON helpers, error mapping).
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"courier/internal/modules/delivery"
	"courier/internal/modules/pricing"
	"courier/internal/routing"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, errorResponse{Error: msg})
}

// writeServiceError maps module errors onto HTTP statuses. Anything
// unrecognized is a 500 with the detail kept out of the response.
func writeServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, delivery.ErrBadRequest),
		errors.Is(err, delivery.ErrNoSuchDropoff),
		errors.Is(err, pricing.ErrUnknownTier),
		errors.Is(err, pricing.ErrBadDistance):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, delivery.ErrNotFound),
		errors.Is(err, pricing.ErrVehicleNotFound):
		writeError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, delivery.ErrInvalidState),
		errors.Is(err, delivery.ErrConflict),
		errors.Is(err, delivery.ErrSessionConfirmed),
		errors.Is(err, delivery.ErrSessionNotPriced),
		errors.Is(err, delivery.ErrSessionNotResolved):
		writeError(c, http.StatusConflict, err.Error())
	case errors.Is(err, routing.ErrRouteNotFound):
		// a missing road route is a warning, not a server failure
		writeError(c, http.StatusUnprocessableEntity, err.Error())
	default:
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}
