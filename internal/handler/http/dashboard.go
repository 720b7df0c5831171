package http

import (
	"log/slog"
	"net/http"

	"github.com/ThanhDoDuy/order-system-hani-BE/internal/service"
	apperrors "github.com/ThanhDoDuy/order-system-hani-BE/pkg/errors"
	"github.com/ThanhDoDuy/order-system-hani-BE/pkg/httputil"
)

// DashboardHandler serves aggregated order statistics for the caller's
// own catalog.
type DashboardHandler struct {
	service *service.DashboardService
	logger  *slog.Logger
}

// NewDashboardHandler creates a new dashboard HTTP handler.
func NewDashboardHandler(svc *service.DashboardService, logger *slog.Logger) *DashboardHandler {
	return &DashboardHandler{service: svc, logger: logger}
}

// Stats handles GET /api/dashboard/stats
func (h *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(r)
	if !ok {
		httputil.WriteError(w, r, apperrors.InvalidToken(), h.logger)
		return
	}

	stats, err := h.service.Stats(r.Context(), owner)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, stats)
}
