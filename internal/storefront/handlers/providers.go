package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"smm-market/internal/common/providerprotocol"
	"smm-market/internal/storefront/data"
	"smm-market/internal/storefront/service"
	"smm-market/pkg/logging"
)

type ProvidersService interface {
	Create(ctx context.Context, input service.NewProvider) (data.Provider, error)
	List(ctx context.Context) ([]data.Provider, error)
	Get(ctx context.Context, id string) (data.Provider, error)
	Update(ctx context.Context, id string, input service.ProviderUpdate) (data.Provider, error)
	Balance(ctx context.Context, id string) (providerprotocol.Balance, error)
	Services(ctx context.Context, id string) ([]providerprotocol.Service, error)
}

type ProviderInput struct {
	Name   string `json:"name"`
	URL    string `json:"url"`
	APIKey string `json:"apiKey"`
	Active *bool  `json:"active"`
}

type ProviderUpdateInput struct {
	Name   *string `json:"name"`
	URL    *string `json:"url"`
	APIKey *string `json:"apiKey"`
	Active *bool   `json:"active"`
}

type ProvidersHandler struct {
	service ProvidersService
	logger  *logging.ZapLogger
}

func NewProvidersHandler(service ProvidersService, logger *logging.ZapLogger) *ProvidersHandler {
	return &ProvidersHandler{
		service: service,
		logger:  logger,
	}
}

func (h *ProvidersHandler) List(w http.ResponseWriter, r *http.Request) {
	providers, err := h.service.List(r.Context())
	if err != nil {
		writeError(r.Context(), w, err, h.logger)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, mapSlice(providers, newProviderResponse), h.logger)
}

func (h *ProvidersHandler) Create(w http.ResponseWriter, r *http.Request) {
	defer closeBody(r.Context(), r.Body, h.logger)

	input, err := decodeJSON[ProviderInput](r.Body)
	if err != nil {
		badRequest(r.Context(), w, err, h.logger)
		return
	}
	active := true
	if input.Active != nil {
		active = *input.Active
	}
	provider, err := h.service.Create(r.Context(), service.NewProvider{
		Name:   input.Name,
		URL:    input.URL,
		APIKey: input.APIKey,
		Active: active,
	})
	if err != nil {
		writeError(r.Context(), w, err, h.logger)
		return
	}
	writeJSON(r.Context(), w, http.StatusCreated, newProviderResponse(provider), h.logger)
}

func (h *ProvidersHandler) Get(w http.ResponseWriter, r *http.Request) {
	provider, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(r.Context(), w, err, h.logger)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, newProviderResponse(provider), h.logger)
}

func (h *ProvidersHandler) Update(w http.ResponseWriter, r *http.Request) {
	defer closeBody(r.Context(), r.Body, h.logger)

	input, err := decodeJSON[ProviderUpdateInput](r.Body)
	if err != nil {
		badRequest(r.Context(), w, err, h.logger)
		return
	}
	provider, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), service.ProviderUpdate(input))
	if err != nil {
		writeError(r.Context(), w, err, h.logger)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, newProviderResponse(provider), h.logger)
}

func (h *ProvidersHandler) Balance(w http.ResponseWriter, r *http.Request) {
	balance, err := h.service.Balance(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(r.Context(), w, err, h.logger)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, balance, h.logger)
}

func (h *ProvidersHandler) Services(w http.ResponseWriter, r *http.Request) {
	services, err := h.service.Services(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(r.Context(), w, err, h.logger)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, services, h.logger)
}
