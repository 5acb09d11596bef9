package service

import (
	"context"

	"smm-market/internal/common/providerprotocol"
	"smm-market/internal/storefront/data"
	"smm-market/internal/storefront/providerapi"
)

type TransactionManager interface {
	DoWithTransaction(ctx context.Context, f func(ctx context.Context) error) error
}

type ProviderRepository interface {
	InsertProvider(ctx context.Context, provider data.Provider) error
	GetProvider(ctx context.Context, id string) (data.Provider, error)
	ListProviders(ctx context.Context) ([]data.Provider, error)
	UpdateProvider(ctx context.Context, provider data.Provider) error
}

type OrderRepository interface {
	InsertOrder(ctx context.Context, order data.Order) error
	GetOrder(ctx context.Context, id string) (data.Order, error)
	ListOrders(ctx context.Context, status data.Status, limit int) ([]data.Order, error)
	SetExternalOrderID(ctx context.Context, id, externalOrderID string) error
}

type ProviderClient interface {
	GetBalance(ctx context.Context) (providerprotocol.Balance, error)
	GetServices(ctx context.Context) ([]providerprotocol.Service, error)
	AddOrder(ctx context.Context, serviceID, link string, quantity int64) (string, error)
	CreateRefill(ctx context.Context, externalOrderID string) (string, error)
	CancelOrders(ctx context.Context, externalOrderIDs []string) ([]providerprotocol.Payload, error)
}

type Clients interface {
	Client(provider data.Provider) ProviderClient
	Forget(providerID string)
}

type TokenFactory interface {
	Generate(subject string) (string, error)
}

// CachedClients serves provider clients out of a providerapi.ClientCache.
type CachedClients struct {
	Cache *providerapi.ClientCache
}

func (c CachedClients) Client(provider data.Provider) ProviderClient {
	return c.Cache.Client(provider)
}

func (c CachedClients) Forget(providerID string) {
	c.Cache.Forget(providerID)
}
