package pgxstorage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// TransactionsManager runs units of work inside one database transaction.
// Repositories pick the transaction up from the context through DBStorage.
type TransactionsManager struct {
	storage *DBStorage
	options pgx.TxOptions
}

type TransactionsManagerOption func(tm *TransactionsManager)

// WithIsolationLevel overrides the default repeatable-read isolation.
func WithIsolationLevel(level pgx.TxIsoLevel) TransactionsManagerOption {
	return func(tm *TransactionsManager) {
		tm.options.IsoLevel = level
	}
}

func NewTransactionsManager(storage *DBStorage, options ...TransactionsManagerOption) *TransactionsManager {
	tm := &TransactionsManager{
		storage: storage,
		options: pgx.TxOptions{IsoLevel: pgx.RepeatableRead},
	}
	for _, option := range options {
		option(tm)
	}
	return tm
}

// DoWithTransaction runs f with a context bound to a fresh transaction. Nested
// calls join the outer transaction. A panic in f rolls the transaction back
// and is re-raised.
func (tm *TransactionsManager) DoWithTransaction(
	ctx context.Context,
	f func(ctx context.Context) error,
) error {
	if _, txErr := getTransaction(ctx); txErr == nil {
		return f(ctx)
	}
	ctxWithTransaction, tx, err := tm.storage.withTransaction(ctx, tm.options)
	if err != nil {
		return err
	}
	defer func() {
		if rcv := recover(); rcv != nil {
			_ = tx.Rollback(context.Background())
			panic(rcv)
		}
	}()

	if err := f(ctxWithTransaction); err != nil {
		return rollback(tx, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return rollback(tx, fmt.Errorf("transaction commit failed: %w", err))
	}
	return nil
}

func rollback(tx pgx.Tx, cause error) error {
	// the caller's context may already be cancelled
	if err := tx.Rollback(context.Background()); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return errors.Join(cause, fmt.Errorf("transaction rollback failed: %w", err))
	}
	return cause
}
