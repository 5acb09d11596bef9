package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"github.com/go-chi/jwtauth/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"smm-market/cmd/storefront/config"
	"smm-market/internal/storefront"
	"smm-market/internal/storefront/data"
	"smm-market/internal/storefront/data/database"
	"smm-market/internal/storefront/data/dbrepository"
	"smm-market/internal/storefront/data/mongorepository"
	"smm-market/internal/storefront/notify"
	"smm-market/internal/storefront/providerapi"
	"smm-market/internal/storefront/reconciler"
	"smm-market/internal/storefront/service"
	"smm-market/pkg/jwtfactory"
	"smm-market/pkg/logging"
	"smm-market/pkg/pgxstorage"
)

type repository interface {
	reconciler.OrdersRepository
	reconciler.ProvidersRepository
	service.OrderRepository
	service.ProviderRepository
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	var logOptions []logging.Option
	if cfg.Log.File != "" {
		logOptions = append(logOptions, logging.WithFile(cfg.Log.File))
	}
	logger, err := logging.NewZapLogger(cfg.Log.Level, logOptions...)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync() //nolint:errcheck // nothing to do on failure

	rootCtx, cancelCtx := signal.NotifyContext(
		context.Background(),
		syscall.SIGHUP,
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT,
		syscall.SIGABRT,
	)
	defer cancelCtx()

	repo, transactionManager, closeStorage, err := openStorage(rootCtx, cfg, logger)
	if err != nil {
		logger.ErrorCtx(rootCtx, "failed to open storage", zap.Error(err))
		return
	}
	defer closeStorage()

	clientCache := providerapi.NewClientCache(cfg.ProviderTimeout, logger)
	clients := service.CachedClients{Cache: clientCache}
	mailer := notify.NewMailer(cfg.SMTP, cfg.NotifyEmail, notify.NewGomailDialer, logger)

	orderReconciler := reconciler.New(
		cfg.Reconciler,
		repo,
		repo,
		func(provider data.Provider) reconciler.ProviderClient {
			return clientCache.Client(provider)
		},
		mailer,
		logger,
	)

	tokenAuth := jwtauth.New(cfg.JWTConfig.Algorithm, []byte(cfg.JWTConfig.Secret), nil)
	tokenFactory := jwtfactory.New(tokenAuth, cfg.JWTConfig.ExpirationTime)

	server := storefront.NewServer(cfg.Server, tokenAuth, storefront.Services{
		Login:     service.NewLogin(service.AdminCredentials(cfg.Admin), tokenFactory),
		Providers: service.NewProviders(repo, transactionManager, clients, logger),
		Orders:    service.NewOrders(repo, repo, clients, logger),
		Reconcile: orderReconciler,
		Mail:      mailer,
	}, logger)

	if err := run(rootCtx, cfg, server, orderReconciler, logger); err != nil {
		logger.ErrorCtx(rootCtx, "Server shutdown with error", zap.Error(err))
	} else {
		logger.InfoCtx(rootCtx, "Server shutdown gracefully")
	}
}

func openStorage(
	ctx context.Context,
	cfg *config.Config,
	logger *logging.ZapLogger,
) (repository, service.TransactionManager, func(), error) {
	switch cfg.DB.Backend {
	case config.MongoBackend:
		client, db, err := mongorepository.Connect(ctx, mongorepository.Config{
			URI:      cfg.DB.ConnectionString,
			Database: cfg.DB.MongoDatabase,
		})
		if err != nil {
			return nil, nil, nil, err
		}
		closeClient := func() {
			if err := client.Disconnect(context.Background()); err != nil {
				logger.ErrorCtx(ctx, "failed to disconnect from mongo", zap.Error(err))
			}
		}
		repo := mongorepository.New(db, logger)
		if err := repo.EnsureIndexes(ctx); err != nil {
			closeClient()
			return nil, nil, nil, err
		}
		return repo, repo, closeClient, nil
	default:
		pool, err := database.NewPgxDatabaseFactory(
			database.Config{ConnectionString: cfg.DB.ConnectionString},
			logger,
		).Create(ctx)
		if err != nil {
			return nil, nil, nil, err
		}
		storage := pgxstorage.New(pool)
		return dbrepository.New(storage, logger), pgxstorage.NewTransactionsManager(storage), storage.Close, nil
	}
}

func run(
	rootCtx context.Context,
	cfg *config.Config,
	server *storefront.Server,
	orderReconciler *reconciler.Reconciler,
	logger *logging.ZapLogger,
) error {
	g, ctx := errgroup.WithContext(rootCtx)

	context.AfterFunc(ctx, func() {
		ctx, cancelCtx := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancelCtx()

		<-ctx.Done()
		log.Fatal("failed to gracefully shutdown the server")
	})

	g.Go(func() error {
		if err := server.Run(); err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		logger.InfoCtx(ctx, "Order reconciliation started", zap.Duration("interval", cfg.Reconciler.TickPeriod))
		orderReconciler.Run(ctx)
		logger.InfoCtx(ctx, "Order reconciliation stopped")
		return nil
	})

	g.Go(func() error {
		defer logger.InfoCtx(ctx, "Shutting down server")
		<-ctx.Done()
		if err := server.Shutdown(); err != nil {
			return fmt.Errorf("failed to shutdown server: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("goroutine error occured: %w", err)
	}

	return nil
}
