package reconciler

import (
	"context"
	"errors"
	"sort"
	"sync"

	"smm-market/internal/common/providerprotocol"
	"smm-market/internal/storefront/data"
)

type fakeOrders struct {
	mux     sync.Mutex
	orders  map[string]data.Order
	saves   []string
	loadErr error
	saveErr map[string]error
	loaded  chan struct{}
	block   chan struct{}
}

func newFakeOrders(orders ...data.Order) *fakeOrders {
	f := &fakeOrders{
		orders:  make(map[string]data.Order),
		saveErr: make(map[string]error),
	}
	for _, order := range orders {
		f.orders[order.ID] = order
	}
	return f
}

// GetReconcilableOrders returns every stored order so that the scheduler's own
// eligibility filtering is exercised too.
func (f *fakeOrders) GetReconcilableOrders(ctx context.Context) ([]data.Order, error) {
	if f.loaded != nil {
		f.loaded <- struct{}{}
	}
	if f.block != nil {
		<-f.block
	}
	f.mux.Lock()
	defer f.mux.Unlock()
	if f.loadErr != nil {
		err := f.loadErr
		f.loadErr = nil
		return nil, err
	}
	res := make([]data.Order, 0, len(f.orders))
	for _, order := range f.orders {
		res = append(res, order)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res, nil
}

func (f *fakeOrders) SaveReconciliation(ctx context.Context, order data.Order) error {
	f.mux.Lock()
	defer f.mux.Unlock()
	if err := f.saveErr[order.ID]; err != nil {
		return err
	}
	// provider_charge is NUMERIC(18, 6)
	order.ProviderCharge = order.ProviderCharge.Round(data.ChargeScale)
	f.orders[order.ID] = order
	f.saves = append(f.saves, order.ID)
	return nil
}

func (f *fakeOrders) get(id string) data.Order {
	f.mux.Lock()
	defer f.mux.Unlock()
	return f.orders[id]
}

func (f *fakeOrders) saved() []string {
	f.mux.Lock()
	defer f.mux.Unlock()
	return append([]string(nil), f.saves...)
}

type fakeProviders struct {
	providers map[string]data.Provider
	err       error
}

func (f *fakeProviders) GetProvider(ctx context.Context, providerID string) (data.Provider, error) {
	if f.err != nil {
		return data.Provider{}, f.err
	}
	provider, ok := f.providers[providerID]
	if !ok {
		return data.Provider{}, data.ErrProviderNotFound
	}
	return provider, nil
}

type reply struct {
	payload providerprotocol.Payload
	err     error
}

type fakeClient struct {
	mux     sync.Mutex
	replies map[string]reply
	calls   []string
}

func (c *fakeClient) GetOrderStatus(ctx context.Context, externalOrderID string) (providerprotocol.Payload, error) {
	c.mux.Lock()
	defer c.mux.Unlock()
	c.calls = append(c.calls, externalOrderID)
	r, ok := c.replies[externalOrderID]
	if !ok {
		return nil, errors.New("unexpected order")
	}
	return r.payload, r.err
}

func (c *fakeClient) called() []string {
	c.mux.Lock()
	defer c.mux.Unlock()
	return append([]string(nil), c.calls...)
}

type clientRegistry struct {
	mux     sync.Mutex
	clients map[string]*fakeClient
	built   map[string]int
}

func newClientRegistry() *clientRegistry {
	return &clientRegistry{
		clients: make(map[string]*fakeClient),
		built:   make(map[string]int),
	}
}

func (r *clientRegistry) add(providerID string, replies map[string]reply) *fakeClient {
	client := &fakeClient{replies: replies}
	r.clients[providerID] = client
	return client
}

func (r *clientRegistry) factory(provider data.Provider) ProviderClient {
	r.mux.Lock()
	defer r.mux.Unlock()
	r.built[provider.ID]++
	client, ok := r.clients[provider.ID]
	if !ok {
		client = &fakeClient{replies: map[string]reply{}}
		r.clients[provider.ID] = client
	}
	return client
}

type fakeNotifier struct {
	mux      sync.Mutex
	finished []data.Order
}

func (n *fakeNotifier) OrderFinished(ctx context.Context, order data.Order) {
	n.mux.Lock()
	defer n.mux.Unlock()
	n.finished = append(n.finished, order)
}
