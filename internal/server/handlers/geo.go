// internal/server/handlers/geo.go

package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/stelios-avg/locom/internal/domain/geo"
)

// GeoHandler handles geospatial HTTP requests
type GeoHandler struct {
	log      *zap.Logger
	selector geo.Selector
}

// NewGeoHandler creates a new geo handler
func NewGeoHandler(log *zap.Logger, selector geo.Selector) *GeoHandler {
	return &GeoHandler{
		log:      log,
		selector: selector,
	}
}

// GetDistance returns the great-circle distance between two "lat,lng" points.
// With a radius parameter it also reports whether "to" lies inside it.
func (h *GeoHandler) GetDistance(w http.ResponseWriter, r *http.Request) {
	fromStr := r.URL.Query().Get("from")
	toStr := r.URL.Query().Get("to")

	if fromStr == "" || toStr == "" {
		respondWithError(h.log, w, http.StatusBadRequest, "Missing from or to parameter", nil)
		return
	}

	from, err := geo.ParseCoordinate(fromStr)
	if err != nil {
		respondWithError(h.log, w, http.StatusBadRequest, "Invalid from coordinate", err)
		return
	}

	to, err := geo.ParseCoordinate(toStr)
	if err != nil {
		respondWithError(h.log, w, http.StatusBadRequest, "Invalid to coordinate", err)
		return
	}

	radius, err := parseRadius(r)
	if err != nil {
		respondWithError(h.log, w, http.StatusBadRequest, err.Error(), err)
		return
	}

	response := map[string]interface{}{
		"from":       from,
		"to":         to,
		"distanceKm": h.selector.DistanceKm(from, to),
	}

	if radius > 0 {
		radius = h.selector.NormalizeRadius(radius)
		response["radiusKm"] = radius
		response["withinRadius"] = h.selector.WithinRadius(from, to, radius)
	}

	respondWithJSON(w, http.StatusOK, response)
}
