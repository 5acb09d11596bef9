package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"smm-market/internal/common/providerprotocol"
	"smm-market/internal/storefront/data"
	"smm-market/pkg/logging"
)

type NewProvider struct {
	Name   string `validate:"required,max=128"`
	URL    string `validate:"required,http_url"`
	APIKey string `validate:"required"`
	Active bool
}

// ProviderUpdate changes only the fields that are set.
type ProviderUpdate struct {
	Name   *string `validate:"omitempty,min=1,max=128"`
	URL    *string `validate:"omitempty,http_url"`
	APIKey *string `validate:"omitempty,min=1"`
	Active *bool
}

type Providers struct {
	repository         ProviderRepository
	transactionManager TransactionManager
	clients            Clients
	logger             *logging.ZapLogger
	now                func() time.Time
}

func NewProviders(
	repository ProviderRepository,
	transactionManager TransactionManager,
	clients Clients,
	logger *logging.ZapLogger,
) *Providers {
	return &Providers{
		repository:         repository,
		transactionManager: transactionManager,
		clients:            clients,
		logger:             logger,
		now:                time.Now,
	}
}

func (p *Providers) Create(ctx context.Context, input NewProvider) (data.Provider, error) {
	if err := validateInput(input); err != nil {
		return data.Provider{}, err
	}
	provider := data.Provider{
		CreatedAt: p.now().UTC(),
		ID:        uuid.NewString(),
		Name:      input.Name,
		URL:       strings.TrimRight(input.URL, "/"),
		APIKey:    input.APIKey,
		Active:    input.Active,
	}
	if err := p.repository.InsertProvider(ctx, provider); err != nil {
		return data.Provider{}, fmt.Errorf("error inserting provider: %w", err)
	}
	p.logger.InfoCtx(ctx, "provider created", zap.String("providerID", provider.ID), zap.String("name", provider.Name))
	return provider, nil
}

func (p *Providers) List(ctx context.Context) ([]data.Provider, error) {
	providers, err := p.repository.ListProviders(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing providers: %w", err)
	}
	return providers, nil
}

func (p *Providers) Get(ctx context.Context, id string) (data.Provider, error) {
	provider, err := p.repository.GetProvider(ctx, id)
	if err != nil {
		return data.Provider{}, fmt.Errorf("error getting provider: %w", err)
	}
	return provider, nil
}

func (p *Providers) Update(ctx context.Context, id string, input ProviderUpdate) (data.Provider, error) {
	if err := validateInput(input); err != nil {
		return data.Provider{}, err
	}
	var provider data.Provider
	err := p.transactionManager.DoWithTransaction(ctx, func(ctx context.Context) error {
		var err error
		provider, err = p.repository.GetProvider(ctx, id)
		if err != nil {
			return err
		}
		if input.Name != nil {
			provider.Name = *input.Name
		}
		if input.URL != nil {
			provider.URL = strings.TrimRight(*input.URL, "/")
		}
		if input.APIKey != nil {
			provider.APIKey = *input.APIKey
		}
		if input.Active != nil {
			provider.Active = *input.Active
		}
		return p.repository.UpdateProvider(ctx, provider)
	})
	if err != nil {
		return data.Provider{}, fmt.Errorf("error updating provider: %w", err)
	}
	p.clients.Forget(id)
	p.logger.InfoCtx(ctx, "provider updated", zap.String("providerID", id), zap.Bool("active", provider.Active))
	return provider, nil
}

func (p *Providers) Balance(ctx context.Context, id string) (providerprotocol.Balance, error) {
	client, err := p.activeClient(ctx, id)
	if err != nil {
		return providerprotocol.Balance{}, err
	}
	balance, err := client.GetBalance(ctx)
	if err != nil {
		return providerprotocol.Balance{}, fmt.Errorf("error getting provider balance: %w", err)
	}
	return balance, nil
}

func (p *Providers) Services(ctx context.Context, id string) ([]providerprotocol.Service, error) {
	client, err := p.activeClient(ctx, id)
	if err != nil {
		return nil, err
	}
	services, err := client.GetServices(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting provider services: %w", err)
	}
	return services, nil
}

func (p *Providers) activeClient(ctx context.Context, id string) (ProviderClient, error) {
	provider, err := p.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !provider.Active {
		return nil, ErrProviderInactive
	}
	return p.clients.Client(provider), nil
}
