// README: Geocode handlers for address search, typeahead, and reverse lookup.
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"courier/internal/geocode"
	"courier/internal/types"
)

type GeocodeHandler struct {
	orch    *geocode.Orchestrator
	suggest *geocode.Suggester
}

func NewGeocodeHandler(orch *geocode.Orchestrator, suggest *geocode.Suggester) *GeocodeHandler {
	return &GeocodeHandler{orch: orch, suggest: suggest}
}

// Search handles GET /api/geocode/search?q=...&provider=auto&stream=...
//
// A short query returns an empty candidate list, not an error: the client
// simply has not typed enough yet. When a stream key is supplied the lookup
// goes through the suggester so a stale response (superseded by faster
// typing) comes back as 204 and must be ignored by the client.
func (h *GeocodeHandler) Search(c *gin.Context) {
	query := c.Query("q")
	pref := parsePreference(c.Query("provider"))

	if stream := c.Query("stream"); stream != "" {
		suggestion, ok := h.suggest.Search(c.Request.Context(), stream, query, pref)
		if !ok {
			c.Status(http.StatusNoContent)
			return
		}
		writeJSON(c, http.StatusOK, suggestion)
		return
	}

	candidates := h.orch.Search(c.Request.Context(), query, pref)
	writeJSON(c, http.StatusOK, gin.H{"query": query, "candidates": emptyIfNil(candidates)})
}

// Reverse handles GET /api/geocode/reverse?lat=...&lng=...
func (h *GeocodeHandler) Reverse(c *gin.Context) {
	lat, latErr := strconv.ParseFloat(c.Query("lat"), 64)
	lng, lngErr := strconv.ParseFloat(c.Query("lng"), 64)
	if latErr != nil || lngErr != nil {
		writeError(c, http.StatusBadRequest, "lat and lng must be numbers")
		return
	}
	pt := types.Point{Lat: lat, Lng: lng}
	if !pt.Valid() {
		writeError(c, http.StatusBadRequest, "coordinates out of range")
		return
	}
	address := h.orch.Reverse(c.Request.Context(), pt, parsePreference(c.Query("provider")))
	writeJSON(c, http.StatusOK, gin.H{"address": address, "coordinates": pt})
}

// CancelStream handles DELETE /api/geocode/streams/:stream, aborting any
// in-flight typeahead lookup when the client closes its location panel.
func (h *GeocodeHandler) CancelStream(c *gin.Context) {
	h.suggest.Cancel(c.Param("stream"))
	c.Status(http.StatusNoContent)
}

func parsePreference(v string) geocode.Preference {
	switch v {
	case string(geocode.PreferencePrimary):
		return geocode.PreferencePrimary
	case string(geocode.PreferenceSecondary):
		return geocode.PreferenceSecondary
	default:
		return geocode.PreferenceAuto
	}
}

func emptyIfNil(candidates []geocode.Candidate) []geocode.Candidate {
	if candidates == nil {
		return []geocode.Candidate{}
	}
	return candidates
}
