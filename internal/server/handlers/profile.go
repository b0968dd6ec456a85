// internal/server/handlers/profile.go

package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/stelios-avg/locom/internal/domain/profile"
)

// ProfileHandler handles profile and neighborhood HTTP requests
type ProfileHandler struct {
	log     *zap.Logger
	service profile.Service
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(log *zap.Logger, service profile.Service) *ProfileHandler {
	return &ProfileHandler{
		log:     log,
		service: service,
	}
}

// GetProfile returns a user's profile
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.GetProfile(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		respondWithServiceError(h.log, w, "Failed to get profile", err)
		return
	}

	respondWithJSON(w, http.StatusOK, p)
}

// UpdateProfile edits the caller's own profile
func (h *ProfileHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(h.log, w, r)
	if !ok {
		return
	}

	var update profile.Update
	if err := decodeJSON(w, r, &update); err != nil {
		respondWithError(h.log, w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	p, err := h.service.UpdateProfile(r.Context(), user, update)
	if err != nil {
		respondWithServiceError(h.log, w, "Failed to update profile", err)
		return
	}

	respondWithJSON(w, http.StatusOK, p)
}

// ListNeighborhoods returns the known neighborhoods
func (h *ProfileHandler) ListNeighborhoods(w http.ResponseWriter, r *http.Request) {
	neighborhoods, err := h.service.ListNeighborhoods(r.Context())
	if err != nil {
		respondWithServiceError(h.log, w, "Failed to list neighborhoods", err)
		return
	}

	respondWithJSON(w, http.StatusOK, neighborhoods)
}
