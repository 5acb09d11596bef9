package handlers

import (
	"context"
	"errors"
	"net/http"

	"smm-market/internal/storefront/reconciler"
	"smm-market/pkg/logging"
)

type ReconcileService interface {
	RunCycle(ctx context.Context) (int, error)
}

type ReconcileResponse struct {
	Updated int `json:"updated"`
}

type ReconcileHandler struct {
	service ReconcileService
	logger  *logging.ZapLogger
}

func NewReconcileHandler(service ReconcileService, logger *logging.ZapLogger) *ReconcileHandler {
	return &ReconcileHandler{
		service: service,
		logger:  logger,
	}
}

func (h *ReconcileHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	updated, err := h.service.RunCycle(r.Context())
	if err != nil {
		if errors.Is(err, reconciler.ErrCycleInProgress) {
			writeJSON(r.Context(), w, http.StatusConflict, errorResponse{Error: err.Error()}, h.logger)
			return
		}
		writeError(r.Context(), w, err, h.logger)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, ReconcileResponse{Updated: updated}, h.logger)
}
