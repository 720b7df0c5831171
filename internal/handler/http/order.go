package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ThanhDoDuy/order-system-hani-BE/internal/domain"
	"github.com/ThanhDoDuy/order-system-hani-BE/internal/service"
	apperrors "github.com/ThanhDoDuy/order-system-hani-BE/pkg/errors"
	"github.com/ThanhDoDuy/order-system-hani-BE/pkg/httputil"
	"github.com/ThanhDoDuy/order-system-hani-BE/pkg/pagination"
	"github.com/ThanhDoDuy/order-system-hani-BE/pkg/validator"
)

// OrderHandler handles owner-scoped order endpoints.
type OrderHandler struct {
	service   *service.OrderService
	dashboard *service.DashboardService
	logger    *slog.Logger
}

// NewOrderHandler creates a new order HTTP handler. The dashboard service is
// used to invalidate the stats cache after order writes.
func NewOrderHandler(svc *service.OrderService, dashboard *service.DashboardService, logger *slog.Logger) *OrderHandler {
	return &OrderHandler{service: svc, dashboard: dashboard, logger: logger}
}

// UpdateStatusRequest is the JSON request body for a status transition.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=new preparing shipped cancelled rejected draft"`
}

// Create handles POST /api/orders
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(r)
	if !ok {
		httputil.WriteError(w, r, apperrors.InvalidToken(), h.logger)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req service.CreateOrderInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("invalid request body: "+err.Error()), h.logger)
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	order, err := h.service.Create(r.Context(), owner, req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	h.dashboard.Invalidate(r.Context(), owner)
	httputil.WriteData(w, http.StatusCreated, order)
}

// List handles GET /api/orders
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(r)
	if !ok {
		httputil.WriteError(w, r, apperrors.InvalidToken(), h.logger)
		return
	}

	params := pagination.FromRequest(r)
	filter := domain.OrderFilters{
		Status: r.URL.Query().Get("status"),
		Search: r.URL.Query().Get("search"),
	}

	result, err := h.service.List(r.Context(), owner, filter, params)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, result)
}

// Get handles GET /api/orders/{id}
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(r)
	if !ok {
		httputil.WriteError(w, r, apperrors.InvalidToken(), h.logger)
		return
	}

	order, err := h.service.Get(r.Context(), owner, chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, order)
}

// Update handles PUT /api/orders/{id}
func (h *OrderHandler) Update(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(r)
	if !ok {
		httputil.WriteError(w, r, apperrors.InvalidToken(), h.logger)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req service.UpdateOrderInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("invalid request body: "+err.Error()), h.logger)
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	order, err := h.service.Update(r.Context(), owner, chi.URLParam(r, "id"), req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, order)
}

// UpdateStatus handles PATCH /api/orders/{id}/status
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(r)
	if !ok {
		httputil.WriteError(w, r, apperrors.InvalidToken(), h.logger)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("invalid request body: "+err.Error()), h.logger)
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	order, err := h.service.UpdateStatus(r.Context(), owner, chi.URLParam(r, "id"), req.Status)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	h.dashboard.Invalidate(r.Context(), owner)
	httputil.WriteData(w, http.StatusOK, order)
}

// Stats handles GET /api/orders/stats
func (h *OrderHandler) Stats(w http.ResponseWriter, r *http.Request) {
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

// Delete handles DELETE /api/orders/{id}
func (h *OrderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(r)
	if !ok {
		httputil.WriteError(w, r, apperrors.InvalidToken(), h.logger)
		return
	}

	if err := h.service.Delete(r.Context(), owner, chi.URLParam(r, "id")); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	h.dashboard.Invalidate(r.Context(), owner)
	w.WriteHeader(http.StatusNoContent)
}
