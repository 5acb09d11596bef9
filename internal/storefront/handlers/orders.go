package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"smm-market/internal/common/providerprotocol"
	"smm-market/internal/storefront/data"
	"smm-market/internal/storefront/service"
	"smm-market/pkg/logging"
)

type OrdersService interface {
	Create(ctx context.Context, input service.NewOrder) (data.Order, error)
	Get(ctx context.Context, id string) (data.Order, error)
	List(ctx context.Context, status data.Status, limit int) ([]data.Order, error)
	Place(ctx context.Context, id string) (data.Order, error)
	Refill(ctx context.Context, id string) (string, error)
	Cancel(ctx context.Context, id string) (providerprotocol.Payload, error)
}

type OrderInput struct {
	UserID      string          `json:"userId"`
	ServiceID   string          `json:"serviceId"`
	ServiceName string          `json:"serviceName"`
	Link        string          `json:"link"`
	Quantity    int64           `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	ProviderID  string          `json:"providerId"`
}

type RefillResponse struct {
	Refill string `json:"refill"`
}

type OrdersHandler struct {
	service OrdersService
	logger  *logging.ZapLogger
}

func NewOrdersHandler(service OrdersService, logger *logging.ZapLogger) *OrdersHandler {
	return &OrdersHandler{
		service: service,
		logger:  logger,
	}
}

func (h *OrdersHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			badRequest(r.Context(), w, strconv.ErrSyntax, h.logger)
			return
		}
		limit = parsed
	}
	orders, err := h.service.List(r.Context(), data.Status(r.URL.Query().Get("status")), limit)
	if err != nil {
		writeError(r.Context(), w, err, h.logger)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, mapSlice(orders, newOrderResponse), h.logger)
}

func (h *OrdersHandler) Create(w http.ResponseWriter, r *http.Request) {
	defer closeBody(r.Context(), r.Body, h.logger)

	input, err := decodeJSON[OrderInput](r.Body)
	if err != nil {
		badRequest(r.Context(), w, err, h.logger)
		return
	}
	order, err := h.service.Create(r.Context(), service.NewOrder(input))
	if err != nil {
		writeError(r.Context(), w, err, h.logger)
		return
	}
	writeJSON(r.Context(), w, http.StatusCreated, newOrderResponse(order), h.logger)
}

func (h *OrdersHandler) Get(w http.ResponseWriter, r *http.Request) {
	order, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(r.Context(), w, err, h.logger)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, newOrderResponse(order), h.logger)
}

func (h *OrdersHandler) Place(w http.ResponseWriter, r *http.Request) {
	order, err := h.service.Place(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(r.Context(), w, err, h.logger)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, newOrderResponse(order), h.logger)
}

func (h *OrdersHandler) Refill(w http.ResponseWriter, r *http.Request) {
	refillID, err := h.service.Refill(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(r.Context(), w, err, h.logger)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, RefillResponse{Refill: refillID}, h.logger)
}

func (h *OrdersHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Cancel(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(r.Context(), w, err, h.logger)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, result, h.logger)
}
