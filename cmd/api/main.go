// cmd/api/main.go
// Main entry point for the application
// This file bootstraps all components and starts the server

package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/roamcrew/roamcrew-backend/internal/common/database"
	"github.com/roamcrew/roamcrew-backend/internal/common/logger"
	"github.com/roamcrew/roamcrew-backend/internal/common/utils"
	"github.com/roamcrew/roamcrew-backend/internal/compatibility"
	"github.com/roamcrew/roamcrew-backend/internal/config"
)

func main() {
	// 1. Load environment variables; a missing .env file is fine in
	// containerized deployments
	_ = godotenv.Load()

	// 2. Load and validate configuration
	cfg := config.Load()

	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	defer log.Sync()

	log.Info("starting roamcrew API",
		zap.String("environment", cfg.Environment),
		zap.String("port", cfg.Port))

	if err := cfg.Validate(); err != nil {
		log.Fatal("configuration validation failed", zap.Error(err))
	}

	// 3. Connect to PostgreSQL
	db, err := database.NewPostgresDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("failed to connect to PostgreSQL", zap.Error(err))
	}
	defer db.Close()
	log.Info("connected to PostgreSQL")

	// 4. Connect to Redis when the shared cache tier is enabled
	var redisClient *redis.Client
	if cfg.CacheBackend == "redis" {
		redisClient, err = database.NewRedisClient(cfg.RedisURL)
		if err != nil {
			log.Fatal("failed to connect to Redis", zap.Error(err))
		}
		defer redisClient.Close()
		log.Info("connected to Redis")
	}

	// 5. Assemble the compatibility engine
	var cache compatibility.ProfileCache
	if redisClient != nil {
		cache = compatibility.NewRedisCache(redisClient, cfg.ProfileCacheTTL, "")
	} else {
		cache = compatibility.NewMemoryCache(cfg.ProfileCacheTTL)
	}

	seed := cfg.SyntheticSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	store := compatibility.NewPostgresStore(db)
	recorder := compatibility.NewRecorder()
	loader := compatibility.NewProfileLoader(store, cache, compatibility.NewSyntheticGenerator(seed), recorder, log)
	engine := compatibility.NewEngine(loader, recorder, log, cfg.BatchChunkSize, cfg.BatchChunkPause)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	compatibility.NewJanitor(cache, cfg.CacheSweepEvery, log).Start(ctx)

	// 6. Set up routes
	router := mux.NewRouter()
	router.Handle("/metrics", promhttp.Handler())
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		utils.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	compatibility.RegisterRoutes(router, compatibility.NewHandler(engine))

	// 7. Start the server with graceful shutdown
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("forced shutdown", zap.Error(err))
	}
}
