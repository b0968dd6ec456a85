// internal/server/handlers/admin.go

package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/stelios-avg/locom/internal/domain/post"
)

// AdminHandler handles moderator HTTP requests
type AdminHandler struct {
	log   *zap.Logger
	admin post.Admin
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(log *zap.Logger, admin post.Admin) *AdminHandler {
	return &AdminHandler{
		log:   log,
		admin: admin,
	}
}

// RequireAdmin rejects callers that are not configured moderators
func (h *AdminHandler) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := requireUser(h.log, w, r)
		if !ok {
			return
		}
		if !h.admin.IsAdmin(user) {
			respondWithError(h.log, w, http.StatusForbidden, "Forbidden", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ListPosts returns recent posts of every status with their filter verdicts
func (h *AdminHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.admin.ListAll(r.Context())
	if err != nil {
		respondWithServiceError(h.log, w, "Failed to list posts", err)
		return
	}

	respondWithJSON(w, http.StatusOK, posts)
}

// ModeratePost approves or rejects a post
func (h *AdminHandler) ModeratePost(w http.ResponseWriter, r *http.Request) {
	var decision post.Moderation
	if err := decodeJSON(w, r, &decision); err != nil {
		respondWithError(h.log, w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	p, err := h.admin.Moderate(r.Context(), userID(r), chi.URLParam(r, "id"), decision)
	if err != nil {
		respondWithServiceError(h.log, w, "Failed to moderate post", err)
		return
	}

	respondWithJSON(w, http.StatusOK, p)
}

// DeletePost removes any post
func (h *AdminHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	if err := h.admin.Delete(r.Context(), userID(r), chi.URLParam(r, "id")); err != nil {
		respondWithServiceError(h.log, w, "Failed to delete post", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
