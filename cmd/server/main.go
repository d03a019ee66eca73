package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/collectique/backend/internal/api"
	"github.com/collectique/backend/internal/config"
	"github.com/collectique/backend/internal/database"
	"github.com/collectique/backend/internal/services"
)

func main() {
	// Load .env if present; real env vars take precedence
	_ = godotenv.Load()

	cfg := config.DefaultConfig()
	cfg.LoadFromEnv()

	// Initialize database
	if err := database.Initialize(cfg.DBPath); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// Initialize stores
	itemStore := database.NewItemStore(database.GetDB())
	kvStore := database.NewKVStore(database.GetDB())

	// Initialize the market-price sync engine
	quoteCache := services.NewQuoteCache(kvStore, cfg.CacheTTL)
	rateLimiter := services.NewRateLimiter(cfg.MaxDailyCalls, cfg.MinCallInterval)
	ebayClient := services.NewEbayClient(cfg.EbayAPIKey, cfg.EbayBaseURL, cfg.MaxRetries)
	priceManager := services.NewPriceManager(ebayClient, quoteCache, rateLimiter, itemStore, cfg.HistoryCap, cfg.BatchDelay)

	// Background workers
	refreshWorker := services.NewRefreshWorker(priceManager, itemStore, rateLimiter, cfg.RefreshInterval)
	snapshotService := services.NewSnapshotService(cfg.SnapshotHour)

	// Create a cancellable context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start refresh worker in background with panic recovery
	go func() {
		for {
			func() {
				defer func() {
					if r := recover(); r != nil {
						log.Printf("PANIC in refresh worker: %v - restarting in 30 seconds", r)
					}
				}()
				refreshWorker.Start(ctx)
			}()

			select {
			case <-ctx.Done():
				return // Graceful shutdown
			case <-time.After(30 * time.Second):
				log.Println("Refresh worker restarting after panic recovery...")
			}
		}
	}()

	// Start snapshot service in background
	go snapshotService.Start(ctx)

	// Sweep expired cache entries periodically
	go func() {
		ticker := time.NewTicker(6 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				quoteCache.Sweep()
			}
		}
	}()

	// Setup router
	router := api.SetupRouter(cfg, itemStore, priceManager, refreshWorker, snapshotService)

	// Create HTTP server for graceful shutdown
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Cancel the context to stop the background workers
	cancel()

	// Give outstanding requests a deadline to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
