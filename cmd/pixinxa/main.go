package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pixinxa/cashback-api/internal/config"
	"github.com/pixinxa/cashback-api/internal/domain"
	"github.com/pixinxa/cashback-api/internal/handler"
	"github.com/pixinxa/cashback-api/internal/infra/address"
	"github.com/pixinxa/cashback-api/internal/infra/cache"
	"github.com/pixinxa/cashback-api/internal/infra/observability"
	"github.com/pixinxa/cashback-api/internal/infra/resilience"
	"github.com/pixinxa/cashback-api/internal/infra/supabase"
	"github.com/pixinxa/cashback-api/internal/service"

	"go.uber.org/zap"
)

func main() {
	// --- Load .env file (for local development) ---
	_ = config.LoadDotEnv(".env")

	// --- Config ---
	cfg := config.Load()

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	if cfg.SupabaseURL == "" {
		logger.Fatal("SUPABASE_URL is required")
	}

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.Duration("cache_ttl", cfg.CacheTTL),
		zap.Int("max_retries", cfg.MaxRetries),
		zap.Duration("initial_backoff", cfg.InitialBackoff),
		zap.Duration("jwt_access_ttl", cfg.JWTAccessTTL),
		zap.Duration("jwt_refresh_ttl", cfg.JWTRefreshTTL),
		zap.Duration("temp_code_ttl", cfg.TempCodeTTL),
	)

	// --- Tracing ---
	shutdown, err := observability.InitTracer(cfg.OTLPEndpoint, "pixinxa-api")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Resilience ---
	resilienceCfg := resilience.Config{
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: cfg.InitialBackoff,
		MaxConcurrency: cfg.MaxConcurrency,
	}
	supabaseCB := resilience.NewCircuitBreaker("supabase")
	addressCB := resilience.NewCircuitBreaker("address-apis")

	// --- Clients ---
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	store := supabase.NewClient(
		httpClient,
		cfg.SupabaseURL,
		cfg.SupabaseAnonKey,
		cfg.SupabaseServiceKey,
		cfg.StorageBucket,
		supabaseCB,
		resilienceCfg,
		logger,
	)

	addressClient := address.NewClient(httpClient, cfg.ViaCEPBaseURL, cfg.IBGEBaseURL, addressCB, resilienceCfg)

	// --- Caches ---
	categoryCache := cache.New[[]domain.Category](cfg.CacheTTL)
	subcategoryCache := cache.New[[]domain.Subcategory](cfg.CacheTTL)
	cepCache := cache.New[*domain.Address](cfg.CacheTTL)
	estadoCache := cache.New[[]domain.Estado](cfg.CacheTTL)
	cidadeCache := cache.New[[]domain.Cidade](cfg.CacheTTL)

	// --- Services ---
	svcs := handler.Services{
		Auth:       service.NewAuthService(store, store, store, cfg.JWTSecret, cfg.JWTAccessTTL, cfg.JWTRefreshTTL, logger),
		Cashback:   service.NewCashbackService(store, store, cfg.TempCodeTTL, metrics, logger),
		Coupons:    service.NewCouponService(store, store, metrics, logger),
		Merchant:   service.NewMerchantService(store, store, store, store, store, logger),
		Offers:     service.NewOfferService(store, store, logger),
		Rules:      service.NewRuleService(store, logger),
		Admin:      service.NewAdminService(store, store, cfg.DefaultPassword, logger),
		Categories: service.NewCategoryService(store, categoryCache, subcategoryCache, metrics),
		Address:    service.NewAddressService(addressClient, cepCache, estadoCache, cidadeCache, metrics),
	}

	// --- Router ---
	router := handler.NewRouter(svcs, metrics, cfg.AllowedOrigins, logger)

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- Graceful shutdown ---
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
