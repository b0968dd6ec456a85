// internal/server/handlers/moderation.go

package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/stelios-avg/locom/internal/domain/moderation"
)

// ModerationHandler exposes the content filter for client-side pre-checks
type ModerationHandler struct {
	log     *zap.Logger
	checker moderation.Checker
}

// NewModerationHandler creates a new moderation handler
func NewModerationHandler(log *zap.Logger, checker moderation.Checker) *ModerationHandler {
	return &ModerationHandler{
		log:     log,
		checker: checker,
	}
}

type checkResponse struct {
	moderation.Verdict
	Submission *moderation.SubmissionResult `json:"submission,omitempty"`
}

// Check returns the text verdict, and the full submission result when an image is attached
func (h *ModerationHandler) Check(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text  string            `json:"text"`
		Image *moderation.Image `json:"image"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(h.log, w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	resp := checkResponse{Verdict: h.checker.CheckText(req.Text)}
	if req.Image != nil {
		result := h.checker.ValidateSubmission(req.Text, req.Image)
		resp.Submission = &result
	}

	respondWithJSON(w, http.StatusOK, resp)
}
