package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"smm-market/internal/common/providerprotocol"
	"smm-market/internal/storefront/data"
	"smm-market/pkg/logging"
	"smm-market/pkg/threadsafe"
)

type NewOrder struct {
	UserID      string `validate:"required"`
	ServiceID   string `validate:"required"`
	ServiceName string `validate:"max=256"`
	Link        string `validate:"required,url"`
	Quantity    int64  `validate:"gt=0"`
	Price       decimal.Decimal
	ProviderID  string `validate:"required"`
}

type Orders struct {
	orderRepository    OrderRepository
	providerRepository ProviderRepository
	clients            Clients
	logger             *logging.ZapLogger
	placing            *threadsafe.HashSet[string]
	now                func() time.Time
}

func NewOrders(
	orderRepository OrderRepository,
	providerRepository ProviderRepository,
	clients Clients,
	logger *logging.ZapLogger,
) *Orders {
	return &Orders{
		orderRepository:    orderRepository,
		providerRepository: providerRepository,
		clients:            clients,
		logger:             logger,
		placing:            threadsafe.NewHashSet[string](),
		now:                time.Now,
	}
}

func (o *Orders) Create(ctx context.Context, input NewOrder) (data.Order, error) {
	if err := validateInput(input); err != nil {
		return data.Order{}, err
	}
	if input.Price.IsNegative() {
		return data.Order{}, fmt.Errorf("%w: negative price", ErrInvalidInput)
	}
	if _, err := o.providerRepository.GetProvider(ctx, input.ProviderID); err != nil {
		return data.Order{}, fmt.Errorf("error checking provider: %w", err)
	}
	now := o.now().UTC()
	order := data.Order{
		CreatedAt:      now,
		UpdatedAt:      now,
		ID:             uuid.NewString(),
		UserID:         input.UserID,
		ServiceID:      input.ServiceID,
		ServiceName:    input.ServiceName,
		Link:           input.Link,
		Quantity:       input.Quantity,
		Price:          input.Price,
		Status:         data.PendingStatus,
		ProviderID:     input.ProviderID,
		ProviderCharge: decimal.Zero,
	}
	if err := o.orderRepository.InsertOrder(ctx, order); err != nil {
		return data.Order{}, fmt.Errorf("error inserting order: %w", err)
	}
	return order, nil
}

func (o *Orders) Get(ctx context.Context, id string) (data.Order, error) {
	order, err := o.orderRepository.GetOrder(ctx, id)
	if err != nil {
		return data.Order{}, fmt.Errorf("error getting order: %w", err)
	}
	return order, nil
}

func (o *Orders) List(ctx context.Context, status data.Status, limit int) ([]data.Order, error) {
	if status != data.NullStatus && !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, status)
	}
	orders, err := o.orderRepository.ListOrders(ctx, status, limit)
	if err != nil {
		return nil, fmt.Errorf("error listing orders: %w", err)
	}
	return orders, nil
}

// Place submits the order to its provider and records the identifier the
// provider assigned. Concurrent placements of the same order are rejected.
func (o *Orders) Place(ctx context.Context, id string) (data.Order, error) {
	if !o.placing.Add(id) {
		return data.Order{}, ErrOrderBusy
	}
	defer o.placing.Remove(id)

	order, err := o.Get(ctx, id)
	if err != nil {
		return data.Order{}, err
	}
	if order.ExternalOrderID != "" {
		return data.Order{}, ErrOrderAlreadyPlaced
	}
	client, err := o.providerClient(ctx, order.ProviderID)
	if err != nil {
		return data.Order{}, err
	}
	externalID, err := client.AddOrder(ctx, order.ServiceID, order.Link, order.Quantity)
	if err != nil {
		return data.Order{}, fmt.Errorf("error placing order upstream: %w", err)
	}
	if err := o.orderRepository.SetExternalOrderID(ctx, id, externalID); err != nil {
		o.logger.ErrorCtx(ctx, "order placed upstream but not saved",
			zap.String("orderID", id),
			zap.String("externalOrderID", externalID),
			zap.Error(err),
		)
		return data.Order{}, fmt.Errorf("error saving external order id: %w", err)
	}
	order.ExternalOrderID = externalID
	o.logger.InfoCtx(ctx, "order placed", zap.String("orderID", id), zap.String("externalOrderID", externalID))
	return order, nil
}

// Refill asks the provider to refill a placed order and returns the refill id.
func (o *Orders) Refill(ctx context.Context, id string) (string, error) {
	order, client, err := o.placedOrder(ctx, id)
	if err != nil {
		return "", err
	}
	refillID, err := client.CreateRefill(ctx, order.ExternalOrderID)
	if err != nil {
		return "", fmt.Errorf("error requesting refill: %w", err)
	}
	return refillID, nil
}

// Cancel asks the provider to cancel a placed order. The local status is left
// to reconciliation.
func (o *Orders) Cancel(ctx context.Context, id string) (providerprotocol.Payload, error) {
	order, client, err := o.placedOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	results, err := client.CancelOrders(ctx, []string{order.ExternalOrderID})
	if err != nil {
		return nil, fmt.Errorf("error requesting cancel: %w", err)
	}
	if len(results) == 0 {
		return providerprotocol.Payload{}, nil
	}
	return results[0], nil
}

func (o *Orders) placedOrder(ctx context.Context, id string) (data.Order, ProviderClient, error) {
	order, err := o.Get(ctx, id)
	if err != nil {
		return data.Order{}, nil, err
	}
	if order.ExternalOrderID == "" {
		return data.Order{}, nil, ErrOrderNotPlaced
	}
	client, err := o.providerClient(ctx, order.ProviderID)
	if err != nil {
		return data.Order{}, nil, err
	}
	return order, client, nil
}

func (o *Orders) providerClient(ctx context.Context, providerID string) (ProviderClient, error) {
	provider, err := o.providerRepository.GetProvider(ctx, providerID)
	if err != nil {
		if errors.Is(err, data.ErrProviderNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("error getting provider: %w", err)
	}
	if !provider.Active {
		return nil, ErrProviderInactive
	}
	return o.clients.Client(provider), nil
}
