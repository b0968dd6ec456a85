// internal/server/handlers/post.go

package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/stelios-avg/locom/internal/domain/post"
)

// PostHandler handles post and comment HTTP requests
type PostHandler struct {
	log     *zap.Logger
	manager post.Manager
}

// NewPostHandler creates a new post handler
func NewPostHandler(log *zap.Logger, manager post.Manager) *PostHandler {
	return &PostHandler{
		log:     log,
		manager: manager,
	}
}

// ListFeed returns feed posts within the radius of the viewer
func (h *PostHandler) ListFeed(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.manager.ListFeed)
}

// ListMarketplace returns marketplace listings
func (h *PostHandler) ListMarketplace(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.manager.ListMarketplace)
}

// ListEvents returns events by date
func (h *PostHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.manager.ListEvents)
}

func (h *PostHandler) list(
	w http.ResponseWriter,
	r *http.Request,
	fetch func(context.Context, post.ListRequest) ([]post.Post, error),
) {
	radius, err := parseRadius(r)
	if err != nil {
		respondWithError(h.log, w, http.StatusBadRequest, err.Error(), err)
		return
	}

	device, err := parseDevice(r)
	if err != nil {
		respondWithError(h.log, w, http.StatusBadRequest, err.Error(), err)
		return
	}

	posts, err := fetch(r.Context(), post.ListRequest{
		ViewerID: userID(r),
		Category: r.URL.Query().Get("category"),
		RadiusKm: radius,
		Device:   device,
	})
	if err != nil {
		respondWithServiceError(h.log, w, "Failed to list posts", err)
		return
	}

	respondWithJSON(w, http.StatusOK, posts)
}

// CreatePost moderates and stores a new post
func (h *PostHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(h.log, w, r)
	if !ok {
		return
	}

	var draft post.Draft
	if err := decodeJSON(w, r, &draft); err != nil {
		respondWithError(h.log, w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	p, err := h.manager.CreatePost(r.Context(), user, draft)
	if err != nil {
		respondWithServiceError(h.log, w, "Failed to create post", err)
		return
	}

	respondWithJSON(w, http.StatusCreated, p)
}

// GetPost returns a post by ID
func (h *PostHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	p, err := h.manager.GetPost(r.Context(), userID(r), chi.URLParam(r, "id"))
	if err != nil {
		respondWithServiceError(h.log, w, "Failed to get post", err)
		return
	}

	respondWithJSON(w, http.StatusOK, p)
}

// DeletePost removes the caller's own post
func (h *PostHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(h.log, w, r)
	if !ok {
		return
	}

	if err := h.manager.DeletePost(r.Context(), user, chi.URLParam(r, "id")); err != nil {
		respondWithServiceError(h.log, w, "Failed to delete post", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListComments returns a post's comments
func (h *PostHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	comments, err := h.manager.ListComments(r.Context(), userID(r), chi.URLParam(r, "id"))
	if err != nil {
		respondWithServiceError(h.log, w, "Failed to list comments", err)
		return
	}

	respondWithJSON(w, http.StatusOK, comments)
}

// AddComment moderates and stores a comment
func (h *PostHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(h.log, w, r)
	if !ok {
		return
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(h.log, w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	c, err := h.manager.AddComment(r.Context(), user, chi.URLParam(r, "id"), req.Content)
	if err != nil {
		respondWithServiceError(h.log, w, "Failed to add comment", err)
		return
	}

	respondWithJSON(w, http.StatusCreated, c)
}
