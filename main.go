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

	account "memorabilia-market/internal/accountService"
	"memorabilia-market/internal/auth"
	bidding "memorabilia-market/internal/biddingService"
	catalog "memorabilia-market/internal/catalogService"
	"memorabilia-market/internal/config"
	"memorabilia-market/internal/database"
	"memorabilia-market/internal/locker"
	ordering "memorabilia-market/internal/orderService"
	"memorabilia-market/internal/pricing"
	"memorabilia-market/internal/repository"
	"memorabilia-market/internal/server"
	"memorabilia-market/utils"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	utils.SetLogLevel(cfg.LogLevel)
	gin.SetMode(cfg.GinMode)

	ctx := context.Background()

	repo, closeStore, err := openStore(cfg)
	if err != nil {
		utils.Fatal("failed to open store", map[string]any{"driver": cfg.StoreDriver, "error": err.Error()})
	}
	defer closeStore()

	locks, closeLocks, err := openLocker(ctx, cfg)
	if err != nil {
		utils.Fatal("failed to set up bid lock", map[string]any{"driver": cfg.LockDriver, "error": err.Error()})
	}
	defer closeLocks()

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)

	biddingSvc := bidding.NewBiddingService(repo,
		bidding.WithLocker(locks),
		bidding.WithLockTimeout(cfg.BidLockTimeout),
	)
	catalogSvc := catalog.NewCatalogService(repo)
	orderSvc := ordering.NewOrderService(repo, pricing.Rates{TaxRate: cfg.TaxRate, ShippingFee: cfg.ShippingFee})
	accountSvc := account.NewAccountService(repo, tokens)

	if _, err := accountSvc.EnsureAdmin(ctx, account.Registration{
		Username: cfg.AdminUsername,
		Email:    cfg.AdminEmail,
		Password: cfg.AdminPassword,
		FullName: "Administrator",
	}); err != nil {
		utils.Fatal("failed to ensure admin account", map[string]any{"error": err.Error()})
	}

	if cfg.SeedCatalog {
		n, err := catalogSvc.SeedCatalog(ctx, catalog.SampleCatalog(time.Now()))
		if err != nil {
			utils.Fatal("failed to seed catalog", map[string]any{"error": err.Error()})
		}
		if n > 0 {
			utils.Info("catalog seeded", map[string]any{"products": n})
		}
	}

	router := server.SetupRouter(server.Services{
		Bidding:  biddingSvc,
		Catalog:  catalogSvc,
		Orders:   orderSvc,
		Accounts: accountSvc,
		Tokens:   tokens,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		utils.Info("starting marketplace server", map[string]any{
			"addr":  cfg.Addr(),
			"store": cfg.StoreDriver,
			"lock":  cfg.LockDriver,
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.Fatal("failed to start server", map[string]any{"error": err.Error()})
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	utils.Info("shutdown signal received", nil)
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		utils.Error("server shutdown failed", map[string]any{"error": err.Error()})
	}
}

// openStore returns the configured repository and a function releasing it
func openStore(cfg *config.Config) (repository.MarketDB, func(), error) {
	if cfg.StoreDriver == config.StoreMemory {
		return repository.NewMemoryRepo(), func() {}, nil
	}

	db, err := database.Open(cfg, utils.Logger())
	if err != nil {
		return nil, nil, err
	}
	closer := func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	return repository.NewGormRepo(db), closer, nil
}

// openLocker returns the configured per-product bid lock and a function releasing it
func openLocker(ctx context.Context, cfg *config.Config) (locker.Locker, func(), error) {
	if cfg.LockDriver == config.LockLocal {
		return locker.NewKeyedMutex(), func() {}, nil
	}

	client, err := locker.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		return nil, nil, err
	}
	return locker.NewRedisLocker(client, cfg.BidLockTTL), func() { _ = client.Close() }, nil
}
