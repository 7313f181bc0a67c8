package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/glowdesk/walletd/internal/credstore"
	"github.com/glowdesk/walletd/internal/gateway/salonapi"
	"github.com/glowdesk/walletd/internal/httpcache"
	"github.com/glowdesk/walletd/internal/poller"
	"github.com/glowdesk/walletd/internal/statement"
	"github.com/glowdesk/walletd/internal/transport/httpapi"
	"github.com/glowdesk/walletd/internal/transport/httpapi/handler"
	"github.com/glowdesk/walletd/pkg/config"
	"github.com/glowdesk/walletd/pkg/logger"
)

func main() {
	// Create context that listens for termination signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewDefault(cfg.Env)
	log.Info("Starting walletd",
		"env", cfg.Env,
		"port", cfg.Port,
		"api_base_url", cfg.APIBaseURL,
	)

	// Response cache: Redis when configured (shared across replicas),
	// otherwise per-process memory.
	var (
		cacheStore   httpcache.Store
		redisClient  *redis.Client
		healthPinger handler.CachePinger
	)
	if cfg.RedisURL != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisURL,
			Password: cfg.RedisPassword,
			DB:       0,
		})
		defer redisClient.Close()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Error("Failed to connect to Redis", "error", err)
			os.Exit(1)
		}
		cacheStore = httpcache.NewRedisStore(redisClient, log)
		healthPinger = redisPinger{redisClient}
		log.Info("Redis response cache enabled", "addr", cfg.RedisURL)
	} else {
		cacheStore = httpcache.NewMemoryStore()
		log.Info("In-memory response cache enabled")
	}

	fetcher := httpcache.NewFetcher(cacheStore, log)
	creds := credstore.New()

	// Upstream glowdesk API client
	apiClient := salonapi.NewClient(cfg.APIBaseURL, creds, fetcher, cfg.CacheTTL, log)

	// Statement pipeline and payment poller
	statementSvc := statement.NewService(apiClient, log)
	paymentPoller := poller.New(apiClient, poller.DefaultInterval, poller.DefaultMaxAttempts, log)

	// HTTP surface
	r := httpapi.NewRouter(httpapi.Config{
		Logger:         log,
		AllowedOrigins: cfg.AllowedOrigins,
		Credentials:    creds,
		AuthHandler:    handler.NewAuthHandler(apiClient, creds),
		WalletHandler:  handler.NewWalletHandler(statementSvc),
		PaymentHandler: handler.NewPaymentHandler(apiClient, paymentPoller),
		HealthHandler:  handler.NewHealthHandler(healthPinger),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // ?wait=true payment polls can block a while
		IdleTimeout:  60 * time.Second,
	}

	// Start HTTP server
	go func() {
		log.Info("HTTP server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", "error", err)
			stop()
		}
	}()

	// Wait for termination signal
	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Graceful shutdown failed", "error", err)
		os.Exit(1)
	}

	log.Info("Server stopped")
}

// redisPinger adapts the redis client to the health handler's check.
type redisPinger struct {
	client *redis.Client
}

func (p redisPinger) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}
