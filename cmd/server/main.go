package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"booking-api/internal/booking"
	"booking-api/internal/cache"
	"booking-api/internal/config"
	"booking-api/internal/handler"
	"booking-api/internal/logger"
	"booking-api/internal/metrics"
	"booking-api/internal/middleware"
	"booking-api/internal/selection"
	"booking-api/internal/store"
)

func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()

	zlog, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer zlog.Sync()

	// database
	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		zlog.Fatal("db", zap.Error(err))
	}
	defer pool.Close()
	if err := pool.Ping(context.Background()); err != nil {
		zlog.Fatal("db ping", zap.Error(err))
	}
	zlog.Info("connected to postgres")

	// run migrations
	if migration, err := os.ReadFile("db/migrations/001_init.sql"); err != nil {
		zlog.Warn("migration file not found, skipping", zap.Error(err))
	} else if _, err := pool.Exec(context.Background(), string(migration)); err != nil {
		zlog.Warn("migration warning", zap.Error(err))
	} else {
		zlog.Info("migration applied")
	}

	// optional redis: availability cache + selector sessions
	redisClient, err := cache.New(cfg.RedisURL)
	if err != nil {
		zlog.Fatal("redis", zap.Error(err))
	}
	var selections selection.Store
	if redisClient != nil {
		defer redisClient.Close()
		selections = cache.NewSelectionStore(redisClient)
		zlog.Info("connected to redis")
	} else {
		selections = selection.NewMemoryStore()
		zlog.Info("redis not configured, keeping selections in memory")
	}

	st := store.New(pool)
	met := metrics.New(prometheus.DefaultRegisterer)
	coord := booking.NewCoordinator(st, zlog, met)
	if redisClient != nil {
		coord = coord.WithCache(redisClient)
	}
	h := handler.New(st, coord, selections, zlog, met)

	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst)
	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: h.Routes(rl),
	}

	go func() {
		zlog.Info("http listening", zap.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zlog.Error("http", zap.Error(err))
		}
	}()

	// graceful shutdown
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	<-ch
	zlog.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zlog.Warn("shutdown", zap.Error(err))
	}
}
