// Package main is the entry point for the complaint desk backend.
// It serves the complaint, resolve history, feedback and statistics APIs,
// and publishes a Merkle root over the resolve history for tamper detection.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aawaaz/complaint-desk/internal/config"
	"github.com/aawaaz/complaint-desk/internal/database"
	"github.com/aawaaz/complaint-desk/internal/dictionary"
	"github.com/aawaaz/complaint-desk/internal/handlers"
	"github.com/aawaaz/complaint-desk/internal/middleware"
	"github.com/aawaaz/complaint-desk/internal/services"
	"github.com/aawaaz/complaint-desk/internal/store"
	"github.com/aawaaz/complaint-desk/internal/store/memory"
	"github.com/aawaaz/complaint-desk/internal/store/postgres"
	"github.com/aawaaz/complaint-desk/internal/telemetry"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	// Load configuration from environment
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize structured logger
	logger, _ := zap.NewProduction()
	if cfg.IsDevelopment() {
		logger, _ = zap.NewDevelopment()
	}
	defer logger.Sync()
	sugar := logger.Sugar()

	sugar.Infow("Starting complaint desk",
		"port", cfg.Port,
		"env", cfg.Environment,
		"dictionary", cfg.DictionarySource,
		"auth", cfg.JWTSecret != "",
	)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	shutdownTracing := telemetry.Setup(ctx, "complaint-desk", cfg.OTLPEndpoint, sugar)

	// Storage
	var (
		st   store.Store
		pool *pgxpool.Pool
	)
	if cfg.DatabaseURL != "" {
		pool, err = database.NewPool(cfg.DatabaseURL)
		if err != nil {
			sugar.Fatalf("Failed to connect to database: %v", err)
		}
		defer pool.Close()
		if err := database.EnsureSchema(ctx, pool); err != nil {
			sugar.Fatalf("Failed to apply schema: %v", err)
		}
		st = postgres.NewStore(pool)
	} else {
		sugar.Warn("DATABASE_URL not set, using in-memory store")
		st = memory.NewStore()
	}

	rdb := connectRedis(ctx, cfg.RedisURL, sugar)
	if rdb != nil {
		defer rdb.Close()
	}

	// Dictionaries
	var source dictionary.Source = dictionary.FileSource{Path: cfg.DictionaryFile}
	if cfg.DictionarySource == config.DictionaryFromPostgres {
		source = dictionary.PostgresSource{DB: pool}
	}
	if rdb != nil {
		source = dictionary.NewRedisCache(rdb, source, cfg.DictionaryCacheTTL, sugar)
	}
	dict := dictionary.NewRegistry(source, sugar)
	if err := dict.Reload(ctx); err != nil {
		sugar.Fatalf("Failed to load dictionaries: %v", err)
	}
	go dict.Run(ctx, cfg.DictionaryCacheTTL)

	// Rate limiting
	var limiter middleware.Limiter
	if rdb != nil {
		limiter = middleware.NewRedisLimiter(rdb, sugar)
	} else {
		mem := middleware.NewMemoryLimiter()
		go mem.Run(ctx)
		limiter = mem
	}

	// Initialize services
	complaintSvc := services.NewComplaintService(st, dict, sugar, nil)
	historySvc := services.NewHistoryService(st, complaintSvc, sugar)
	feedbackSvc := services.NewFeedbackService(st, dict, sugar, nil)
	statisticsSvc := services.NewStatisticsService(st, cfg.UrgentLevels, sugar, nil)
	merkleSvc := services.NewMerkleService(sugar)
	integrityWorker := services.NewIntegrityWorker(merkleSvc, st, sugar)

	// Start background integrity worker (rebuilds Merkle tree periodically)
	go integrityWorker.Start(ctx, cfg.IntegrityRebuildInterval)

	router := handlers.NewRouter(handlers.Services{
		Complaints: complaintSvc,
		History:    historySvc,
		Feedback:   feedbackSvc,
		Statistics: statisticsSvc,
		Merkle:     merkleSvc,
		Dictionary: dict,
		Store:      st,
	}, handlers.RouterConfig{
		Logger:         logger,
		JWTSecret:      cfg.JWTSecret,
		AllowedOrigins: cfg.AllowedOrigins,
		Limiter:        limiter,
		RateLimitRPM:   cfg.RateLimitRPM,
		RequestTimeout: 30 * time.Second,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sugar.Infof("Server listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			sugar.Fatalf("Server error: %v", err)
		}
	}()

	<-done
	sugar.Info("Shutting down gracefully...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		sugar.Fatalf("Forced shutdown: %v", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		sugar.Warnw("Tracer shutdown failed", "error", err)
	}

	sugar.Info("Server stopped")
}

// connectRedis returns nil when url is empty or the server is unreachable;
// callers then fall back to in-process limiting and uncached dictionaries.
func connectRedis(ctx context.Context, url string, logger *zap.SugaredLogger) *redis.Client {
	if url == "" {
		return nil
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		logger.Warnw("Invalid REDIS_URL, continuing without Redis", "error", err)
		return nil
	}
	rdb := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		logger.Warnw("Redis unreachable, continuing without Redis", "error", err)
		rdb.Close()
		return nil
	}
	logger.Infow("Connected to Redis", "addr", opts.Addr)
	return rdb
}
