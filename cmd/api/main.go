package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/pubsub"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"

	"github.com/manira/api/internal/events"
	"github.com/manira/api/internal/handlers"
	"github.com/manira/api/internal/payments"
	"github.com/manira/api/internal/platform/auth"
	"github.com/manira/api/internal/platform/config"
	pfirestore "github.com/manira/api/internal/platform/firestore"
	"github.com/manira/api/internal/platform/idempotency"
	"github.com/manira/api/internal/platform/observability"
	"github.com/manira/api/internal/platform/secrets"
	firestoreRepo "github.com/manira/api/internal/repositories/firestore"
	"github.com/manira/api/internal/services"
)

func main() {
	ctx := context.Background()

	baseLogger, err := observability.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = baseLogger.Sync()
	}()

	logger := baseLogger.Named("api")
	ctx = observability.WithLogger(ctx, logger)

	fetcher, err := secrets.NewFetcher(ctx,
		secrets.WithLogger(logger.Named("secrets")),
		secrets.WithProject(os.Getenv("API_FIRESTORE_PROJECT_ID")),
	)
	if err != nil {
		logger.Fatal("failed to initialise secret fetcher", zap.Error(err))
	}
	defer func() {
		if err := fetcher.Close(); err != nil {
			logger.Warn("secret fetcher close error", zap.Error(err))
		}
	}()

	cfg, err := config.Load(ctx, config.WithSecretResolver(fetcher))
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	firestoreProvider := pfirestore.NewProvider(cfg.Firestore)
	firestoreClient, err := firestoreProvider.Client(ctx)
	if err != nil {
		logger.Fatal("failed to initialise firestore client", zap.Error(err))
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := firestoreProvider.Close(closeCtx); err != nil {
			logger.Warn("firestore close error", zap.Error(err))
		}
	}()

	registry, err := firestoreRepo.NewRegistry(firestoreProvider)
	if err != nil {
		logger.Fatal("failed to initialise repositories", zap.Error(err))
	}

	tokenManager, err := auth.NewTokenManager(cfg.Auth.JWTSecret, auth.WithTokenTTL(cfg.Auth.TokenTTL))
	if err != nil {
		logger.Fatal("failed to initialise token manager", zap.Error(err))
	}
	authenticator := auth.NewAuthenticator(tokenManager)

	var publisher services.OrderEventPublisher
	if cfg.Events.Enabled {
		pubsubClient, err := pubsub.NewClient(ctx, cfg.Events.ProjectID)
		if err != nil {
			logger.Fatal("failed to initialise pubsub client", zap.Error(err))
		}
		defer pubsubClient.Close()
		topic := pubsubClient.Topic(cfg.Events.OrderTopic)
		defer topic.Stop()
		publisher, err = events.NewPubSubOrderPublisher(topic)
		if err != nil {
			logger.Fatal("failed to initialise order event publisher", zap.Error(err))
		}
	}

	gateway, err := payments.NewRazorpayGateway(payments.RazorpayConfig{
		KeyID:     cfg.Gateway.KeyID,
		KeySecret: cfg.Gateway.Secret,
		Currency:  cfg.Gateway.Currency,
		Logger:    zapEventLogger(logger.Named("gateway")),
	})
	if err != nil {
		logger.Fatal("failed to initialise payment gateway", zap.Error(err))
	}

	promotionService, err := services.NewPromotionService(services.PromotionServiceDeps{
		Promotions: registry.Promotions(),
	})
	if err != nil {
		logger.Fatal("failed to initialise promotion service", zap.Error(err))
	}

	catalogService, err := services.NewCatalogService(services.CatalogServiceDeps{
		Products: registry.Products(),
		Settings: registry.Settings(),
	})
	if err != nil {
		logger.Fatal("failed to initialise catalog service", zap.Error(err))
	}

	cartService, err := services.NewCartService(services.CartServiceDeps{
		Carts:    registry.Carts(),
		Products: registry.Products(),
	})
	if err != nil {
		logger.Fatal("failed to initialise cart service", zap.Error(err))
	}

	var orderPromotions services.PromotionService
	if cfg.Features.EnablePromotions {
		orderPromotions = promotionService
	}
	orderService, err := services.NewOrderService(services.OrderServiceDeps{
		Orders:     registry.Orders(),
		Products:   registry.Products(),
		Carts:      registry.Carts(),
		Promotions: orderPromotions,
		Currency:   cfg.Gateway.Currency,
		Events:     publisher,
		Logger:     zapEventLogger(logger.Named("orders")),
	})
	if err != nil {
		logger.Fatal("failed to initialise order service", zap.Error(err))
	}

	paymentService, err := services.NewPaymentService(services.PaymentServiceDeps{
		Orders:       registry.Orders(),
		Gateway:      gateway,
		GatewayKeyID: cfg.Gateway.KeyID,
		Events:       publisher,
		Logger:       zapEventLogger(logger.Named("payments")),
	})
	if err != nil {
		logger.Fatal("failed to initialise payment service", zap.Error(err))
	}

	userService, err := services.NewUserService(services.UserServiceDeps{
		Users:      registry.Users(),
		Tokens:     tokenManager,
		BcryptCost: cfg.Auth.BcryptCost,
		Logger:     zapEventLogger(logger.Named("users")),
	})
	if err != nil {
		logger.Fatal("failed to initialise user service", zap.Error(err))
	}

	settingsService, err := services.NewSettingsService(services.SettingsServiceDeps{
		Settings: registry.Settings(),
	})
	if err != nil {
		logger.Fatal("failed to initialise settings service", zap.Error(err))
	}

	idempotencyStore := idempotency.NewFirestoreStore(firestoreClient)
	idempotencyMiddleware := idempotency.Middleware(
		idempotencyStore,
		idempotency.WithHeader(cfg.Idempotency.Header),
		idempotency.WithTTL(cfg.Idempotency.TTL),
		idempotency.WithLogger(logger.Named("idempotency")),
	)

	authHandlers := handlers.NewAuthHandlers(userService)
	catalogHandlers := handlers.NewCatalogHandlers(catalogService, promotionService)
	cartHandlers := handlers.NewCartHandlers(authenticator, cartService)
	orderHandlers := handlers.NewOrderHandlers(authenticator, orderService)
	paymentHandlers := handlers.NewPaymentHandlers(paymentService, idempotencyMiddleware)
	profileHandlers := handlers.NewProfileHandlers(authenticator, userService)
	adminOrderHandlers := handlers.NewAdminOrderHandlers(orderService)
	adminCatalogHandlers := handlers.NewAdminCatalogHandlers(catalogService, promotionService, settingsService)

	middlewares := []func(http.Handler) http.Handler{
		observability.InjectLoggerMiddleware(logger.Named("http")),
		observability.TraceMiddleware(cfg.Firestore.ProjectID),
		observability.RecoveryMiddleware(logger.Named("http")),
		observability.RequestLoggerMiddleware(cfg.Firestore.ProjectID),
	}

	healthHandlers := handlers.NewHealthHandlers(
		handlers.WithHealthVersion(os.Getenv("API_BUILD_VERSION")),
		handlers.WithReadinessCheck("firestore", func(ctx context.Context) error {
			probeCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
			defer cancel()
			if _, err := firestoreClient.Collections(probeCtx).Next(); err != nil && !errors.Is(err, iterator.Done) {
				return err
			}
			return nil
		}),
	)

	router := handlers.NewRouter(
		handlers.WithMiddlewares(middlewares...),
		handlers.WithHealthHandlers(healthHandlers),
		handlers.WithAuthRoutes(authHandlers.Routes),
		handlers.WithCatalogRoutes(catalogHandlers.Routes),
		handlers.WithCartRoutes(cartHandlers.Routes),
		handlers.WithOrderRoutes(func(r chi.Router) {
			orderHandlers.Routes(r)
			paymentHandlers.Routes(r)
		}),
		handlers.WithProfileRoutes(profileHandlers.Routes),
		handlers.WithAdminRoutes(func(r chi.Router) {
			r.Use(authenticator.RequireAuth(auth.RoleAdmin))
			adminOrderHandlers.Routes(r)
			adminCatalogHandlers.Routes(r)
		}),
	)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	serverLogger := logger.Named("http").With(zap.String("addr", server.Addr))
	go func() {
		serverLogger.Info("manira api listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverLogger.Fatal("http server error", zap.Error(err))
		}
	}()

	<-shutdown
	logger.Info("shutdown signal received; draining requests")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

func zapEventLogger(logger *zap.Logger) func(ctx context.Context, event string, fields map[string]any) {
	return func(_ context.Context, event string, fields map[string]any) {
		zFields := make([]zap.Field, 0, len(fields)+1)
		zFields = append(zFields, zap.String("event", event))
		for k, v := range fields {
			zFields = append(zFields, zap.Any(k, v))
		}
		logger.Debug("service event", zFields...)
	}
}
