package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joy095/workspace/config"
	"github.com/joy095/workspace/config/db"
	redisclient "github.com/joy095/workspace/config/redis"
	"github.com/joy095/workspace/logger"
	"github.com/joy095/workspace/middlewares/cors"
	logger_middleware "github.com/joy095/workspace/middlewares/logger"
	"github.com/joy095/workspace/routes"
	"github.com/joy095/workspace/seed"
	"github.com/joy095/workspace/store"
	"github.com/joy095/workspace/store/memory_store"
	"github.com/joy095/workspace/store/postgres_store"
	"github.com/joy095/workspace/utils/jwt_parse"
	"github.com/redis/go-redis/v9"
)

func init() {
	config.LoadEnv()
	logger.InitLoggers()
}

func main() {
	cfg := config.Load()
	ctx := context.Background()

	var s store.Store
	switch cfg.StoreDriver {
	case config.StoreDriverPostgres:
		pool, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.ErrorLogger.Fatalf("Database unavailable: %v", err)
		}
		defer db.Close(pool)
		if err := db.Migrate(ctx, pool); err != nil {
			logger.ErrorLogger.Fatalf("Migration failed: %v", err)
		}
		s = postgres_store.New(pool)
	case config.StoreDriverMemory:
		s = memory_store.New()
		logger.WarnLogger.Warn("Using the in-memory store; data is lost on restart")
	default:
		logger.ErrorLogger.Fatalf("Unknown STORE_DRIVER %q", cfg.StoreDriver)
	}

	if cfg.SeedDemo {
		if _, err := seed.Load(ctx, s, time.Now()); err != nil {
			logger.ErrorLogger.Fatalf("Failed to seed demo data: %v", err)
		}
	}

	var rdb *redis.Client
	if cfg.RedisURL != "" {
		client, err := redisclient.GetRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			logger.WarnLogger.Warnf("Rate limits fall back to process memory: %v", err)
		} else {
			rdb = client
			defer redisclient.CloseRedis()
		}
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.CorsMiddleware(cfg.CORSOrigins))
	r.Use(logger_middleware.GinLogger())

	routes.RegisterRoutes(r, routes.Dependencies{
		Store:       s,
		Signer:      jwt_parse.NewSigner(cfg.JWTSecret, cfg.TokenTTL),
		Redis:       rdb,
		BookingRate: cfg.BookingRate,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.InfoLogger.Infof("Starting server on port %s (store: %s)", cfg.Port, cfg.StoreDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.ErrorLogger.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.InfoLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.ErrorLogger.Errorf("Server forced to shutdown: %v", err)
	}
	logger.InfoLogger.Info("Server exited")
}
