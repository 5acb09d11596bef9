package reconciler

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"smm-market/internal/common/providerprotocol"
	"smm-market/internal/storefront/data"
	"smm-market/internal/storefront/statusmap"
	"smm-market/pkg/logging"
	"smm-market/pkg/threadsafe"
)

const (
	DefaultTickPeriod  = 2 * time.Minute
	DefaultConcurrency = 4
)

var ErrCycleInProgress = errors.New("reconciliation cycle already in progress")

type OrdersRepository interface {
	GetReconcilableOrders(ctx context.Context) ([]data.Order, error)
	SaveReconciliation(ctx context.Context, order data.Order) error
}

type ProvidersRepository interface {
	GetProvider(ctx context.Context, providerID string) (data.Provider, error)
}

type ProviderClient interface {
	GetOrderStatus(ctx context.Context, externalOrderID string) (providerprotocol.Payload, error)
}

// ClientFactory returns the client bound to a provider's credentials.
type ClientFactory func(provider data.Provider) ProviderClient

// Notifier is told about orders a cycle moved into a terminal status.
type Notifier interface {
	OrderFinished(ctx context.Context, order data.Order)
}

type Config struct {
	TickPeriod time.Duration
	// Concurrency bounds how many provider groups are checked at once.
	// Orders of one provider are always checked one after another.
	Concurrency int
}

type Reconciler struct {
	ordersRepository    OrdersRepository
	providersRepository ProvidersRepository
	clients             ClientFactory
	notifier            Notifier
	config              Config
	logger              *logging.ZapLogger
	running             threadsafe.Flag
	cycles              atomic.Int64
}

func New(
	config Config,
	ordersRepository OrdersRepository,
	providersRepository ProvidersRepository,
	clients ClientFactory,
	notifier Notifier,
	logger *logging.ZapLogger,
) *Reconciler {
	if config.TickPeriod <= 0 {
		config.TickPeriod = DefaultTickPeriod
	}
	if config.Concurrency <= 0 {
		config.Concurrency = DefaultConcurrency
	}
	return &Reconciler{
		ordersRepository:    ordersRepository,
		providersRepository: providersRepository,
		clients:             clients,
		notifier:            notifier,
		config:              config,
		logger:              logger,
	}
}

// Run starts a cycle on every tick until ctx is done. Cancelling ctx also
// aborts provider calls of the cycle in flight.
func (r *Reconciler) Run(ctx context.Context) {
	ticker := time.NewTicker(r.config.TickPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.tick(ctx)
		}
	}
}

func (r *Reconciler) tick(ctx context.Context) {
	defer func() {
		if rcv := recover(); rcv != nil {
			r.logger.ErrorCtx(ctx, "panic in reconciliation cycle", zap.Any("recover", rcv))
		}
	}()
	_, err := r.RunCycle(ctx)
	switch {
	case err == nil:
	case errors.Is(err, ErrCycleInProgress):
		r.logger.DebugCtx(ctx, "previous reconciliation cycle still running, tick skipped")
	default:
		r.logger.ErrorCtx(ctx, "reconciliation cycle failed", zap.Error(err))
	}
}

// RunCycle checks every reconcilable order once and returns how many orders
// were updated.
func (r *Reconciler) RunCycle(ctx context.Context) (int, error) {
	if !r.running.TrySet() {
		return 0, ErrCycleInProgress
	}
	defer r.running.Reset()

	ctx = logging.WithContextFields(ctx, zap.Int64("cycle", r.cycles.Add(1)))

	orders, err := r.ordersRepository.GetReconcilableOrders(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get reconcilable orders: %w", err)
	}
	if len(orders) == 0 {
		return 0, nil
	}

	var updated atomic.Int64
	g := &errgroup.Group{}
	g.SetLimit(r.config.Concurrency)
	for providerID, group := range groupByProvider(orders) {
		g.Go(func() error {
			defer func() {
				if rcv := recover(); rcv != nil {
					r.logger.ErrorCtx(ctx, "panic while reconciling provider orders",
						zap.String("providerID", providerID), zap.Any("recover", rcv))
				}
			}()
			updated.Add(int64(r.reconcileGroup(ctx, providerID, group)))
			return nil
		})
	}
	_ = g.Wait()

	count := int(updated.Load())
	if count > 0 {
		r.logger.InfoCtx(ctx, "orders reconciled", zap.Int("updated", count))
	}
	return count, nil
}

func groupByProvider(orders []data.Order) map[string][]data.Order {
	groups := make(map[string][]data.Order)
	for _, order := range orders {
		if !order.Reconcilable() {
			continue
		}
		groups[order.ProviderID] = append(groups[order.ProviderID], order)
	}
	return groups
}

func (r *Reconciler) reconcileGroup(ctx context.Context, providerID string, orders []data.Order) int {
	ctx = logging.WithContextFields(ctx, zap.String("providerID", providerID))

	provider, err := r.providersRepository.GetProvider(ctx, providerID)
	if err != nil {
		if errors.Is(err, data.ErrProviderNotFound) {
			r.logger.DebugCtx(ctx, "provider not found, group skipped", zap.Int("orders", len(orders)))
		} else {
			r.logger.ErrorCtx(ctx, "failed to get provider, group skipped", zap.Error(err))
		}
		return 0
	}
	if !provider.Active {
		r.logger.DebugCtx(ctx, "provider inactive, group skipped", zap.Int("orders", len(orders)))
		return 0
	}

	client := r.clients(provider)
	updated := 0
	for _, order := range orders {
		if ctx.Err() != nil {
			break
		}
		if r.reconcileOrder(ctx, client, order) {
			updated++
		}
	}
	return updated
}

func (r *Reconciler) reconcileOrder(ctx context.Context, client ProviderClient, order data.Order) bool {
	ctx = logging.WithContextFields(ctx,
		zap.String("orderID", order.ID),
		zap.String("externalOrderID", order.ExternalOrderID),
	)

	payload, err := client.GetOrderStatus(ctx, order.ExternalOrderID)
	if err != nil {
		r.logger.DebugCtx(ctx, "order status check failed", zap.Error(err))
		return false
	}
	result, ok := apply(order, payload)
	if !ok {
		r.logger.DebugCtx(ctx, "provider response has no status")
		return false
	}
	if !changed(order, result) {
		return false
	}
	if err := r.ordersRepository.SaveReconciliation(ctx, result); err != nil {
		r.logger.WarnCtx(ctx, "failed to save reconciled order", zap.Error(err))
		return false
	}
	r.logger.DebugCtx(ctx, "order reconciled",
		zap.String("status", string(result.Status)),
		zap.String("providerStatus", result.ProviderStatus),
	)
	if result.Status != order.Status && result.Status.Terminal() && r.notifier != nil {
		r.notifier.OrderFinished(ctx, result)
	}
	return true
}

// apply copies the provider's view onto the order. The raw status and the
// charge are always taken, the charge at storage precision so that a stored
// order compares equal to an unchanged response. The order status is taken
// only when the raw status maps.
func apply(order data.Order, payload providerprotocol.Payload) (data.Order, bool) {
	providerStatus, ok := payload.String(providerprotocol.FieldStatus)
	if !ok {
		return order, false
	}
	order.ProviderStatus = providerStatus
	order.ProviderCharge = data.NormalizeCharge(payload.Decimal(providerprotocol.FieldCharge))
	if status, mapped := statusmap.Map(providerStatus); mapped {
		order.Status = status
	}
	return order, true
}

func changed(before, after data.Order) bool {
	return before.Status != after.Status ||
		before.ProviderStatus != after.ProviderStatus ||
		!before.ProviderCharge.Equal(after.ProviderCharge)
}
