package dbrepository

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"smm-market/internal/storefront/data"
	"smm-market/pkg/logging"
)

const DefaultListLimit = 100

type DBStorage interface {
	Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, query string, args ...any) (pgx.Row, error)
	Query(ctx context.Context, query string, args ...any) (pgx.Rows, error)
	QueryValue(ctx context.Context, query string, args []any, dest []any) error
}

type DBRepository struct {
	storage DBStorage
	logger  *logging.ZapLogger
}

func New(storage DBStorage, logger *logging.ZapLogger) *DBRepository {
	return &DBRepository{
		storage: storage,
		logger:  logger,
	}
}

//go:embed sql/select_reconcilable_orders.sql
var selectReconcilableOrdersQuery string

func (db *DBRepository) GetReconcilableOrders(ctx context.Context) ([]data.Order, error) {
	rows, err := db.storage.Query(ctx, selectReconcilableOrdersQuery)
	if err != nil {
		return nil, handleSQLError(err)
	}
	return collectOrders(rows)
}

//go:embed sql/update_order_reconciliation.sql
var updateOrderReconciliationQuery string

func (db *DBRepository) SaveReconciliation(ctx context.Context, order data.Order) error {
	tag, err := db.storage.Exec(
		ctx,
		updateOrderReconciliationQuery,
		order.ID,
		string(order.Status),
		order.ProviderStatus,
		order.ProviderCharge,
	)
	if err != nil {
		return handleSQLError(err)
	}
	if tag.RowsAffected() == 0 {
		return data.ErrOrderNotFound
	}
	return nil
}

//go:embed sql/insert_order.sql
var insertOrderQuery string

func (db *DBRepository) InsertOrder(ctx context.Context, order data.Order) error {
	_, err := db.storage.Exec(
		ctx,
		insertOrderQuery,
		order.ID,
		order.UserID,
		order.ServiceID,
		order.ServiceName,
		order.Link,
		order.Quantity,
		order.Price,
		string(order.Status),
		order.ProviderID,
		order.CreatedAt,
	)
	if err != nil {
		return handleSQLError(err)
	}
	return nil
}

//go:embed sql/select_order.sql
var selectOrderQuery string

func (db *DBRepository) GetOrder(ctx context.Context, id string) (data.Order, error) {
	db.logger.DebugCtx(ctx, "getting order", zap.String("orderID", id))
	var order data.Order
	err := db.storage.QueryValue(ctx, selectOrderQuery, []any{id}, orderFields(&order))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return data.Order{}, data.ErrOrderNotFound
		}
		return data.Order{}, handleSQLError(err)
	}
	return order, nil
}

//go:embed sql/select_orders.sql
var selectOrdersQuery string

// ListOrders returns the newest orders first. An empty status matches all.
func (db *DBRepository) ListOrders(ctx context.Context, status data.Status, limit int) ([]data.Order, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	rows, err := db.storage.Query(ctx, selectOrdersQuery, string(status), limit)
	if err != nil {
		return nil, handleSQLError(err)
	}
	return collectOrders(rows)
}

//go:embed sql/update_order_external_id.sql
var updateOrderExternalIDQuery string

func (db *DBRepository) SetExternalOrderID(ctx context.Context, id, externalOrderID string) error {
	tag, err := db.storage.Exec(ctx, updateOrderExternalIDQuery, id, externalOrderID)
	if err != nil {
		return handleSQLError(err)
	}
	if tag.RowsAffected() == 0 {
		return data.ErrOrderNotFound
	}
	return nil
}

//go:embed sql/insert_provider.sql
var insertProviderQuery string

func (db *DBRepository) InsertProvider(ctx context.Context, provider data.Provider) error {
	_, err := db.storage.Exec(
		ctx,
		insertProviderQuery,
		provider.ID,
		provider.Name,
		provider.URL,
		provider.APIKey,
		provider.Active,
		provider.CreatedAt,
	)
	if err != nil {
		return handleSQLError(err)
	}
	return nil
}

//go:embed sql/select_provider.sql
var selectProviderQuery string

func (db *DBRepository) GetProvider(ctx context.Context, id string) (data.Provider, error) {
	var provider data.Provider
	err := db.storage.QueryValue(ctx, selectProviderQuery, []any{id}, providerFields(&provider))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return data.Provider{}, data.ErrProviderNotFound
		}
		return data.Provider{}, handleSQLError(err)
	}
	return provider, nil
}

//go:embed sql/select_providers.sql
var selectProvidersQuery string

func (db *DBRepository) ListProviders(ctx context.Context) ([]data.Provider, error) {
	rows, err := db.storage.Query(ctx, selectProvidersQuery)
	if err != nil {
		return nil, handleSQLError(err)
	}
	defer rows.Close()

	result := make([]data.Provider, 0)
	for rows.Next() {
		var provider data.Provider
		if err := rows.Scan(providerFields(&provider)...); err != nil {
			return nil, handleSQLError(err)
		}
		result = append(result, provider)
	}
	if err := rows.Err(); err != nil {
		return nil, handleSQLError(err)
	}
	return result, nil
}

//go:embed sql/update_provider.sql
var updateProviderQuery string

func (db *DBRepository) UpdateProvider(ctx context.Context, provider data.Provider) error {
	tag, err := db.storage.Exec(
		ctx,
		updateProviderQuery,
		provider.ID,
		provider.Name,
		provider.URL,
		provider.APIKey,
		provider.Active,
	)
	if err != nil {
		return handleSQLError(err)
	}
	if tag.RowsAffected() == 0 {
		return data.ErrProviderNotFound
	}
	return nil
}

func orderFields(order *data.Order) []any {
	return []any{
		&order.ID,
		&order.UserID,
		&order.ServiceID,
		&order.ServiceName,
		&order.Link,
		&order.Quantity,
		&order.Price,
		&order.Status,
		&order.ProviderID,
		&order.ExternalOrderID,
		&order.ProviderStatus,
		&order.ProviderCharge,
		&order.CreatedAt,
		&order.UpdatedAt,
	}
}

func providerFields(provider *data.Provider) []any {
	return []any{
		&provider.ID,
		&provider.Name,
		&provider.URL,
		&provider.APIKey,
		&provider.Active,
		&provider.CreatedAt,
	}
}

func collectOrders(rows pgx.Rows) ([]data.Order, error) {
	defer rows.Close()

	result := make([]data.Order, 0)
	for rows.Next() {
		var order data.Order
		if err := rows.Scan(orderFields(&order)...); err != nil {
			return nil, handleSQLError(err)
		}
		result = append(result, order)
	}
	if err := rows.Err(); err != nil {
		return nil, handleSQLError(err)
	}
	return result, nil
}

func handleSQLError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "23505" {
			return data.ErrUniqueConstraintViolation
		}
	}
	return fmt.Errorf("database error: %w", err)
}
