package handlers

import (
	"time"

	"github.com/shopspring/decimal"

	"smm-market/internal/storefront/data"
)

type ProviderResponse struct {
	CreatedAt time.Time `json:"createdAt"`
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	URL       string    `json:"url"`
	Active    bool      `json:"active"`
}

func newProviderResponse(p data.Provider) ProviderResponse {
	return ProviderResponse{
		CreatedAt: p.CreatedAt,
		ID:        p.ID,
		Name:      p.Name,
		URL:       p.URL,
		Active:    p.Active,
	}
}

type OrderResponse struct {
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
	ID              string          `json:"id"`
	UserID          string          `json:"userId"`
	ServiceID       string          `json:"serviceId"`
	ServiceName     string          `json:"serviceName,omitempty"`
	Link            string          `json:"link"`
	Quantity        int64           `json:"quantity"`
	Price           decimal.Decimal `json:"price"`
	Status          data.Status     `json:"status"`
	ProviderID      string          `json:"providerId"`
	ExternalOrderID string          `json:"externalOrderId"`
	ProviderStatus  string          `json:"providerStatus"`
	ProviderCharge  decimal.Decimal `json:"providerCharge"`
}

func newOrderResponse(o data.Order) OrderResponse {
	return OrderResponse{
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
		ID:              o.ID,
		UserID:          o.UserID,
		ServiceID:       o.ServiceID,
		ServiceName:     o.ServiceName,
		Link:            o.Link,
		Quantity:        o.Quantity,
		Price:           o.Price,
		Status:          o.Status,
		ProviderID:      o.ProviderID,
		ExternalOrderID: o.ExternalOrderID,
		ProviderStatus:  o.ProviderStatus,
		ProviderCharge:  o.ProviderCharge,
	}
}

func mapSlice[T, R any](items []T, f func(T) R) []R {
	res := make([]R, len(items))
	for i, item := range items {
		res[i] = f(item)
	}
	return res
}
