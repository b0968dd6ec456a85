// internal/server/handlers/sync.go

package handlers

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/stelios-avg/locom/internal/domain/municipality"
	svc "github.com/stelios-avg/locom/internal/service/municipality"
)

// Syncer is the municipality sync trigger
type Syncer interface {
	Authorize(header string) error
	Probe() svc.Probe
	Run(ctx context.Context) (*municipality.SyncResult, error)
}

// SyncHandler serves the scheduled municipality sync endpoint
type SyncHandler struct {
	log    *zap.Logger
	syncer Syncer
}

// NewSyncHandler creates a new sync handler
func NewSyncHandler(log *zap.Logger, syncer Syncer) *SyncHandler {
	return &SyncHandler{
		log:    log,
		syncer: syncer,
	}
}

type syncResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Failed  int    `json:"failed"`
	*municipality.SyncResult
}

// Trigger authorizes the caller and runs one ingest
func (h *SyncHandler) Trigger(w http.ResponseWriter, r *http.Request) {
	if err := h.syncer.Authorize(r.Header.Get("Authorization")); err != nil {
		respondWithError(h.log, w, http.StatusUnauthorized, "Unauthorized", nil)
		return
	}

	// The run outlives a dropped client so written items are always counted
	result, err := h.syncer.Run(context.WithoutCancel(r.Context()))
	if errors.Is(err, municipality.ErrNotConfigured) {
		respondWithError(h.log, w, http.StatusInternalServerError, err.Error(), err)
		return
	}
	if err != nil {
		h.log.Error("Municipality sync error", zap.Error(err))
		respondWithError(h.log, w, http.StatusInternalServerError, err.Error(), nil)
		return
	}

	h.log.Info("Municipality sync completed",
		zap.Int("added", result.Added),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", result.Failed()),
		zap.Int("total", result.Total),
	)

	respondWithJSON(w, http.StatusOK, syncResponse{
		Success:    true,
		Message:    "Municipality sync completed",
		Failed:     result.Failed(),
		SyncResult: result,
	})
}

// Probe reports which settings are present without running a sync
func (h *SyncHandler) Probe(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.syncer.Probe())
}
