package service

import (
	"context"
	"sync"

	"smm-market/internal/common/providerprotocol"
	"smm-market/internal/storefront/data"
)

type passthroughTransactions struct {
	calls int
}

func (tm *passthroughTransactions) DoWithTransaction(ctx context.Context, f func(ctx context.Context) error) error {
	tm.calls++
	return f(ctx)
}

type fakeProviders struct {
	mux       sync.Mutex
	providers map[string]data.Provider
	insertErr error
}

func newFakeProviders(providers ...data.Provider) *fakeProviders {
	f := &fakeProviders{providers: make(map[string]data.Provider)}
	for _, p := range providers {
		f.providers[p.ID] = p
	}
	return f
}

func (f *fakeProviders) InsertProvider(_ context.Context, provider data.Provider) error {
	f.mux.Lock()
	defer f.mux.Unlock()
	if f.insertErr != nil {
		return f.insertErr
	}
	f.providers[provider.ID] = provider
	return nil
}

func (f *fakeProviders) GetProvider(_ context.Context, id string) (data.Provider, error) {
	f.mux.Lock()
	defer f.mux.Unlock()
	p, ok := f.providers[id]
	if !ok {
		return data.Provider{}, data.ErrProviderNotFound
	}
	return p, nil
}

func (f *fakeProviders) ListProviders(_ context.Context) ([]data.Provider, error) {
	f.mux.Lock()
	defer f.mux.Unlock()
	res := make([]data.Provider, 0, len(f.providers))
	for _, p := range f.providers {
		res = append(res, p)
	}
	return res, nil
}

func (f *fakeProviders) UpdateProvider(_ context.Context, provider data.Provider) error {
	f.mux.Lock()
	defer f.mux.Unlock()
	if _, ok := f.providers[provider.ID]; !ok {
		return data.ErrProviderNotFound
	}
	f.providers[provider.ID] = provider
	return nil
}

type fakeOrders struct {
	mux    sync.Mutex
	orders map[string]data.Order
	setErr error
}

func newFakeOrders(orders ...data.Order) *fakeOrders {
	f := &fakeOrders{orders: make(map[string]data.Order)}
	for _, o := range orders {
		f.orders[o.ID] = o
	}
	return f
}

func (f *fakeOrders) InsertOrder(_ context.Context, order data.Order) error {
	f.mux.Lock()
	defer f.mux.Unlock()
	if _, ok := f.orders[order.ID]; ok {
		return data.ErrUniqueConstraintViolation
	}
	f.orders[order.ID] = order
	return nil
}

func (f *fakeOrders) GetOrder(_ context.Context, id string) (data.Order, error) {
	f.mux.Lock()
	defer f.mux.Unlock()
	o, ok := f.orders[id]
	if !ok {
		return data.Order{}, data.ErrOrderNotFound
	}
	return o, nil
}

func (f *fakeOrders) ListOrders(_ context.Context, status data.Status, _ int) ([]data.Order, error) {
	f.mux.Lock()
	defer f.mux.Unlock()
	res := make([]data.Order, 0)
	for _, o := range f.orders {
		if status == data.NullStatus || o.Status == status {
			res = append(res, o)
		}
	}
	return res, nil
}

func (f *fakeOrders) SetExternalOrderID(_ context.Context, id, externalOrderID string) error {
	f.mux.Lock()
	defer f.mux.Unlock()
	if f.setErr != nil {
		return f.setErr
	}
	o, ok := f.orders[id]
	if !ok {
		return data.ErrOrderNotFound
	}
	o.ExternalOrderID = externalOrderID
	f.orders[id] = o
	return nil
}

type fakeClient struct {
	balance   providerprotocol.Balance
	services  []providerprotocol.Service
	addID     string
	addErr    error
	refillID  string
	cancelled []string
	added     chan struct{}
	release   chan struct{}
}

func (c *fakeClient) GetBalance(context.Context) (providerprotocol.Balance, error) {
	return c.balance, nil
}

func (c *fakeClient) GetServices(context.Context) ([]providerprotocol.Service, error) {
	return c.services, nil
}

func (c *fakeClient) AddOrder(context.Context, string, string, int64) (string, error) {
	if c.added != nil {
		c.added <- struct{}{}
	}
	if c.release != nil {
		<-c.release
	}
	return c.addID, c.addErr
}

func (c *fakeClient) CreateRefill(context.Context, string) (string, error) {
	return c.refillID, nil
}

func (c *fakeClient) CancelOrders(_ context.Context, ids []string) ([]providerprotocol.Payload, error) {
	c.cancelled = append(c.cancelled, ids...)
	return []providerprotocol.Payload{{"order": ids[0], "cancel": 1}}, nil
}

type fakeClients struct {
	client    *fakeClient
	forgotten []string
}

func (f *fakeClients) Client(data.Provider) ProviderClient {
	return f.client
}

func (f *fakeClients) Forget(providerID string) {
	f.forgotten = append(f.forgotten, providerID)
}

type fakeTokens struct{}

func (fakeTokens) Generate(subject string) (string, error) {
	return "token-for-" + subject, nil
}
