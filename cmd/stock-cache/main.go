package main

import (
	"context"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/stackline/order-service/internal/catalog/infrastructure/cache"
	catalogkafka "github.com/stackline/order-service/internal/catalog/infrastructure/kafka"
	catalogpg "github.com/stackline/order-service/internal/catalog/infrastructure/postgres"
	"github.com/stackline/order-service/internal/config"
	"github.com/stackline/order-service/pkg/idempotency"
	"github.com/stackline/order-service/pkg/logging"
	"github.com/stackline/order-service/pkg/shutdown"
	"github.com/stackline/order-service/pkg/tracing"
)

func main() {
	_ = godotenv.Load()
	log := logging.New()
	cfg := config.Load()

	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	tp, err := tracing.Init(ctx, "stock-cache", cfg.JaegerURL, log)
	if err != nil {
		log.Error("otel init failed", "err", err)
		os.Exit(1)
	}
	defer func() { _ = tp.Shutdown(context.Background()) }()

	pool, err := pgxpool.New(ctx, cfg.PostgresURL)
	if err != nil {
		log.Error("pg connect failed", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer rdb.Close()

	idem := idempotency.NewStore(rdb, 10*time.Minute)
	availability := cache.New(rdb, time.Hour)
	products := catalogpg.NewRepository(log, pool)

	consumer := catalogkafka.NewConsumer(log, cfg.KafkaBrokers, cfg.OrderTopic, cfg.ConsumerGroup, products, availability, idem)

	go func() {
		log.Info("stock-cache consumer started", "topic", cfg.OrderTopic, "group", cfg.ConsumerGroup)
		if err := consumer.Run(ctx); err != nil {
			log.Error("consumer stopped", "err", err)
			cancel()
		}
	}()

	<-ctx.Done()
	log.Info("stock-cache shutdown")
}
