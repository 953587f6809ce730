package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/swiftcart/storefront-platform/internal/ai"
	"github.com/swiftcart/storefront-platform/internal/billing"
	"github.com/swiftcart/storefront-platform/internal/cart"
	"github.com/swiftcart/storefront-platform/internal/catalog"
	"github.com/swiftcart/storefront-platform/internal/config"
	"github.com/swiftcart/storefront-platform/internal/db"
	storefrontHttp "github.com/swiftcart/storefront-platform/internal/handler/http"
	"github.com/swiftcart/storefront-platform/internal/identity"
	"github.com/swiftcart/storefront-platform/internal/media"
	"github.com/swiftcart/storefront-platform/internal/order"
	"github.com/swiftcart/storefront-platform/internal/store"
)

func main() {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	log.Logger = log.With().Str("service", "storefront-platform").Logger()

	log.Info().Msg("Storefront platform starting...")

	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	ctx := context.Background()

	var storeRepo store.Repository
	switch cfg.Storage.Driver {
	case "postgres":
		pool, err := db.NewPostgres(ctx, cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to database")
		}
		defer pool.Close()
		storeRepo = store.NewPostgresRepository(pool)
	default:
		log.Warn().Str("driver", cfg.Storage.Driver).Msg("Using in-memory store repository")
		storeRepo = store.NewMemoryRepository()
	}

	var cartRepo cart.Repository
	if cfg.Redis.Addr != "" {
		redisClient, err := db.NewRedis(ctx, cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to redis")
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				log.Error().Err(err).Msg("Failed to close redis client")
			}
		}()
		cartRepo = cart.NewRedisRepository(redisClient)
	} else {
		log.Warn().Msg("Using in-memory cart repository")
		cartRepo = cart.NewMemoryRepository()
	}

	registry := store.NewRegistry(storeRepo)
	carts := cart.NewEngine(cartRepo)
	catalogSvc := catalog.NewService(registry, cfg.Plans)
	gate := billing.NewGate(registry)
	notifier := &order.WhatsAppNotifier{Open: func(link string) {
		log.Info().Str("link", link).Msg("WhatsApp handoff link ready")
	}}
	orders := order.NewService(registry, carts, notifier, cfg.App.ShippingFee)
	provider := identity.NewMemoryProvider()

	var describer ai.Describer
	if cfg.AI.Endpoint != "" {
		describer = ai.NewClient(cfg.AI.Endpoint, cfg.AI.APIKey)
	}

	var uploader media.Uploader
	if cfg.Media.Endpoint != "" {
		uploader = media.NewClient(cfg.Media.Endpoint, cfg.Media.Preset)
	}

	authHandler := storefrontHttp.NewAuthHandler(provider)
	storeHandler := storefrontHttp.NewStoreHandler(registry, gate)
	catalogHandler := storefrontHttp.NewCatalogHandler(registry, catalogSvc)
	cartHandler := storefrontHttp.NewCartHandler(registry, carts)
	orderHandler := storefrontHttp.NewOrderHandler(registry, orders)
	toolsHandler := storefrontHttp.NewToolsHandler(describer, uploader)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	authHandler.RegisterRoutes(router)
	storeHandler.RegisterPublicRoutes(router)
	cartHandler.RegisterRoutes(router)
	orderHandler.RegisterPublicRoutes(router)

	router.Group(func(r chi.Router) {
		r.Use(storefrontHttp.RequireAuth(provider))
		storeHandler.RegisterOwnerRoutes(r)
		catalogHandler.RegisterOwnerRoutes(r)
		orderHandler.RegisterOwnerRoutes(r)
		toolsHandler.RegisterOwnerRoutes(r)
	})

	server := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.App.Port).Msg("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)
	<-stopCh

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server shutdown failed")
	}

	log.Info().Msg("Storefront platform stopped gracefully.")
}
