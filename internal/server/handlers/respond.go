// internal/server/handlers/respond.go

package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/stelios-avg/locom/internal/domain/geo"
	"github.com/stelios-avg/locom/internal/domain/post"
	"github.com/stelios-avg/locom/internal/domain/profile"
)

// UserIDHeader carries the caller identity set by the upstream gateway
const UserIDHeader = "X-User-ID"

// maxBodyBytes bounds JSON request bodies
const maxBodyBytes = 1 << 20

// Helper for JSON responses
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("Failed to marshal response"))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// Helper for error responses. Server errors are logged with the cause.
func respondWithError(log *zap.Logger, w http.ResponseWriter, code int, message string, err error) {
	if err != nil && code >= 500 {
		log.Error("HTTP error", zap.Int("code", code), zap.String("message", message), zap.Error(err))
	}

	respondWithJSON(w, code, map[string]string{"error": message})
}

// respondWithServiceError maps domain errors to status codes
func respondWithServiceError(log *zap.Logger, w http.ResponseWriter, message string, err error) {
	var rejected *post.RejectedError
	switch {
	case errors.As(err, &rejected):
		respondWithJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"error":  "Content rejected",
			"errors": rejected.Errors,
		})
	case errors.Is(err, post.ErrNotFound), errors.Is(err, profile.ErrNotFound):
		respondWithError(log, w, http.StatusNotFound, "Not found", err)
	case errors.Is(err, post.ErrForbidden):
		respondWithError(log, w, http.StatusForbidden, "Forbidden", err)
	case errors.Is(err, post.ErrInvalid):
		respondWithError(log, w, http.StatusBadRequest, err.Error(), err)
	case errors.Is(err, post.ErrRateLimited):
		respondWithError(log, w, http.StatusTooManyRequests, "Too many requests, try again later", err)
	default:
		respondWithError(log, w, http.StatusInternalServerError, message, err)
	}
}

// decodeJSON reads a bounded JSON body into v
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
}

// userID returns the caller identity, or "" for anonymous requests
func userID(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(UserIDHeader))
}

// requireUser answers 401 and returns false when the request has no identity
func requireUser(log *zap.Logger, w http.ResponseWriter, r *http.Request) (string, bool) {
	id := userID(r)
	if id == "" {
		respondWithError(log, w, http.StatusUnauthorized, "Missing "+UserIDHeader+" header", nil)
		return "", false
	}
	return id, true
}

// parseDevice reads optional lat and lng query parameters
func parseDevice(r *http.Request) (*geo.Coordinate, error) {
	latStr := r.URL.Query().Get("lat")
	lngStr := r.URL.Query().Get("lng")

	if latStr == "" && lngStr == "" {
		return nil, nil
	}
	if latStr == "" || lngStr == "" {
		return nil, errors.New("lat and lng must be given together")
	}

	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return nil, errors.New("invalid latitude")
	}

	lng, err := strconv.ParseFloat(lngStr, 64)
	if err != nil {
		return nil, errors.New("invalid longitude")
	}

	c := geo.Coordinate{Latitude: lat, Longitude: lng}
	if !c.Valid() {
		return nil, errors.New("coordinate out of range")
	}
	return &c, nil
}

// parseRadius reads the optional radius query parameter in kilometres
func parseRadius(r *http.Request) (float64, error) {
	radiusStr := r.URL.Query().Get("radius")
	if radiusStr == "" {
		return 0, nil
	}

	radius, err := strconv.ParseFloat(radiusStr, 64)
	if err != nil || radius < 0 {
		return 0, errors.New("invalid radius")
	}
	return radius, nil
}
