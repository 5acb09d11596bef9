package mongorepository

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"smm-market/internal/storefront/data"
)

type orderDocument struct {
	ID              string               `bson:"_id"`
	UserID          string               `bson:"userId"`
	ServiceID       string               `bson:"serviceId"`
	ServiceName     string               `bson:"serviceName"`
	Link            string               `bson:"link"`
	Quantity        int64                `bson:"quantity"`
	Price           primitive.Decimal128 `bson:"price"`
	Status          string               `bson:"status"`
	ProviderID      string               `bson:"providerId"`
	ExternalOrderID string               `bson:"externalOrderId"`
	ProviderStatus  string               `bson:"providerStatus"`
	ProviderCharge  primitive.Decimal128 `bson:"providerCharge"`
	CreatedAt       time.Time            `bson:"createdAt"`
	UpdatedAt       time.Time            `bson:"updatedAt"`
}

type providerDocument struct {
	ID        string    `bson:"_id"`
	Name      string    `bson:"name"`
	URL       string    `bson:"url"`
	APIKey    string    `bson:"apiKey"`
	Active    bool      `bson:"active"`
	CreatedAt time.Time `bson:"createdAt"`
}

func toDecimal128(d decimal.Decimal) (primitive.Decimal128, error) {
	value, err := primitive.ParseDecimal128(d.String())
	if err != nil {
		return primitive.Decimal128{}, fmt.Errorf("failed to convert %s to decimal128: %w", d.String(), err)
	}
	return value, nil
}

func fromDecimal128(value primitive.Decimal128) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(value.String())
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse decimal128 %s: %w", value.String(), err)
	}
	return d, nil
}

func newOrderDocument(order data.Order) (orderDocument, error) {
	price, err := toDecimal128(order.Price)
	if err != nil {
		return orderDocument{}, err
	}
	charge, err := toDecimal128(order.ProviderCharge)
	if err != nil {
		return orderDocument{}, err
	}
	return orderDocument{
		ID:              order.ID,
		UserID:          order.UserID,
		ServiceID:       order.ServiceID,
		ServiceName:     order.ServiceName,
		Link:            order.Link,
		Quantity:        order.Quantity,
		Price:           price,
		Status:          string(order.Status),
		ProviderID:      order.ProviderID,
		ExternalOrderID: order.ExternalOrderID,
		ProviderStatus:  order.ProviderStatus,
		ProviderCharge:  charge,
		CreatedAt:       order.CreatedAt,
		UpdatedAt:       order.UpdatedAt,
	}, nil
}

func (d *orderDocument) toOrder() (data.Order, error) {
	price, err := fromDecimal128(d.Price)
	if err != nil {
		return data.Order{}, err
	}
	charge, err := fromDecimal128(d.ProviderCharge)
	if err != nil {
		return data.Order{}, err
	}
	return data.Order{
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
		ID:              d.ID,
		UserID:          d.UserID,
		ServiceID:       d.ServiceID,
		ServiceName:     d.ServiceName,
		Link:            d.Link,
		Quantity:        d.Quantity,
		Price:           price,
		Status:          data.Status(d.Status),
		ProviderID:      d.ProviderID,
		ExternalOrderID: d.ExternalOrderID,
		ProviderStatus:  d.ProviderStatus,
		ProviderCharge:  charge,
	}, nil
}

func newProviderDocument(provider data.Provider) providerDocument {
	return providerDocument{
		ID:        provider.ID,
		Name:      provider.Name,
		URL:       provider.URL,
		APIKey:    provider.APIKey,
		Active:    provider.Active,
		CreatedAt: provider.CreatedAt,
	}
}

func (d *providerDocument) toProvider() data.Provider {
	return data.Provider{
		CreatedAt: d.CreatedAt,
		ID:        d.ID,
		Name:      d.Name,
		URL:       d.URL,
		APIKey:    d.APIKey,
		Active:    d.Active,
	}
}
