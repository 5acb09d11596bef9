package storefront

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth/v5"

	"smm-market/internal/storefront/handlers"
	"smm-market/internal/storefront/middleware"
	"smm-market/pkg/logging"
)

type Config struct {
	ServerAddress   string
	ShutdownTimeout time.Duration
}

type Services struct {
	Login     handlers.LoginService
	Providers handlers.ProvidersService
	Orders    handlers.OrdersService
	Reconcile handlers.ReconcileService
	Mail      handlers.MailConfigurer
}

type Server struct {
	logger     *logging.ZapLogger
	httpServer *http.Server
	cfg        Config
}

func NewServer(
	cfg Config,
	tokenAuth *jwtauth.JWTAuth,
	services Services,
	logger *logging.ZapLogger,
) *Server {
	srv := &http.Server{
		Addr:              cfg.ServerAddress,
		Handler:           NewRouter(tokenAuth, services, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &Server{
		cfg:        cfg,
		logger:     logger,
		httpServer: srv,
	}
}

func (s *Server) Run() error {
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server ListenAndServe failed: %w", err)
	}
	return nil
}

func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}

func NewRouter(tokenAuth *jwtauth.JWTAuth, services Services, logger *logging.ZapLogger) *chi.Mux {
	loginHandler := handlers.NewLoginHandler(services.Login, logger)
	providersHandler := handlers.NewProvidersHandler(services.Providers, logger)
	ordersHandler := handlers.NewOrdersHandler(services.Orders, logger)
	reconcileHandler := handlers.NewReconcileHandler(services.Reconcile, logger)
	mailHandler := handlers.NewMailHandler(services.Mail, logger)

	router := chi.NewRouter()
	router.Use(
		chimiddleware.RequestID,
		middleware.NewLoggerContext().CreateHandler,
		middleware.NewAccessLog(logger).CreateHandler,
		middleware.NewPanicRecover(logger).CreateHandler,
	)

	router.Route("/api/admin", func(router chi.Router) {
		router.Post("/login", loginHandler.ServeHTTP)

		router.Group(func(router chi.Router) {
			router.Use(jwtauth.Verifier(tokenAuth), jwtauth.Authenticator(tokenAuth))

			router.Route("/providers", func(router chi.Router) {
				router.Get("/", providersHandler.List)
				router.Post("/", providersHandler.Create)
				router.Get("/{id}", providersHandler.Get)
				router.Put("/{id}", providersHandler.Update)
				router.Get("/{id}/balance", providersHandler.Balance)
				router.Get("/{id}/services", providersHandler.Services)
			})

			router.Route("/orders", func(router chi.Router) {
				router.Get("/", ordersHandler.List)
				router.Post("/", ordersHandler.Create)
				router.Get("/{id}", ordersHandler.Get)
				router.Post("/{id}/place", ordersHandler.Place)
				router.Post("/{id}/refill", ordersHandler.Refill)
				router.Post("/{id}/cancel", ordersHandler.Cancel)
			})

			router.Post("/reconcile", reconcileHandler.ServeHTTP)
			router.Put("/mail", mailHandler.ServeHTTP)
		})
	})

	return router
}
