package handlers

import (
	"context"

	"smm-market/internal/common/providerprotocol"
	"smm-market/internal/storefront/data"
	"smm-market/internal/storefront/notify"
	"smm-market/internal/storefront/service"
)

type fakeProvidersService struct {
	created service.NewProvider
	updated service.ProviderUpdate
	err     error
}

func (f *fakeProvidersService) Create(_ context.Context, input service.NewProvider) (data.Provider, error) {
	f.created = input
	return data.Provider{ID: "p1", Name: input.Name, URL: input.URL, APIKey: input.APIKey, Active: input.Active}, f.err
}

func (f *fakeProvidersService) List(context.Context) ([]data.Provider, error) {
	return []data.Provider{{ID: "p1", Name: "Panel", APIKey: "secret"}}, f.err
}

func (f *fakeProvidersService) Get(_ context.Context, id string) (data.Provider, error) {
	return data.Provider{ID: id, APIKey: "secret"}, f.err
}

func (f *fakeProvidersService) Update(_ context.Context, id string, input service.ProviderUpdate) (data.Provider, error) {
	f.updated = input
	return data.Provider{ID: id}, f.err
}

func (f *fakeProvidersService) Balance(context.Context, string) (providerprotocol.Balance, error) {
	return providerprotocol.Balance{Currency: "USD"}, f.err
}

func (f *fakeProvidersService) Services(context.Context, string) ([]providerprotocol.Service, error) {
	return []providerprotocol.Service{{Name: "Followers"}}, f.err
}

type fakeOrdersService struct {
	created    service.NewOrder
	listStatus data.Status
	listLimit  int
	err        error
}

func (f *fakeOrdersService) Create(_ context.Context, input service.NewOrder) (data.Order, error) {
	f.created = input
	return data.Order{ID: "o1", Status: data.PendingStatus, Quantity: input.Quantity, Price: input.Price}, f.err
}

func (f *fakeOrdersService) Get(_ context.Context, id string) (data.Order, error) {
	return data.Order{ID: id}, f.err
}

func (f *fakeOrdersService) List(_ context.Context, status data.Status, limit int) ([]data.Order, error) {
	f.listStatus, f.listLimit = status, limit
	return []data.Order{{ID: "o1"}}, f.err
}

func (f *fakeOrdersService) Place(_ context.Context, id string) (data.Order, error) {
	return data.Order{ID: id, ExternalOrderID: "23501"}, f.err
}

func (f *fakeOrdersService) Refill(context.Context, string) (string, error) {
	return "77", f.err
}

func (f *fakeOrdersService) Cancel(context.Context, string) (providerprotocol.Payload, error) {
	return providerprotocol.Payload{"order": "23501", "cancel": 1}, f.err
}

type fakeReconciler struct {
	updated int
	err     error
}

func (f *fakeReconciler) RunCycle(context.Context) (int, error) {
	return f.updated, f.err
}

type fakeMailer struct {
	cfg       notify.SMTPConfig
	recipient string
}

func (f *fakeMailer) Configure(cfg notify.SMTPConfig, recipient string) {
	f.cfg, f.recipient = cfg, recipient
}

type fakeLogin struct{}

func (fakeLogin) Login(_ context.Context, login, password string) (string, error) {
	if login == "admin" && password == "pa55" {
		return "jwt", nil
	}
	return "", service.ErrInvalidCredentials
}
