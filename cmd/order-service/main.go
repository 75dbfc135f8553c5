package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	catalogpg "github.com/stackline/order-service/internal/catalog/infrastructure/postgres"
	"github.com/stackline/order-service/internal/config"
	customerpg "github.com/stackline/order-service/internal/customer/infrastructure/postgres"
	"github.com/stackline/order-service/internal/order/application"
	orderhttp "github.com/stackline/order-service/internal/order/infrastructure/http"
	orderkafka "github.com/stackline/order-service/internal/order/infrastructure/kafka"
	orderpg "github.com/stackline/order-service/internal/order/infrastructure/postgres"
	"github.com/stackline/order-service/pkg/logging"
	"github.com/stackline/order-service/pkg/outbox"
	"github.com/stackline/order-service/pkg/shutdown"
	"github.com/stackline/order-service/pkg/tracing"
)

func main() {
	_ = godotenv.Load()
	log := logging.New()
	cfg := config.Load()

	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	tp, err := tracing.Init(ctx, cfg.ServiceName, cfg.JaegerURL, log)
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

	writer := orderkafka.NewWriter(cfg.KafkaBrokers)
	defer writer.Close()

	orders := orderpg.NewRepository(log, pool)
	products := catalogpg.NewRepository(log, pool)
	customers := customerpg.NewRepository(log, pool)

	store := orderpg.NewOutboxStore(log, pool)
	dispatch := outbox.NewDispatcher(log, writer, cfg.OrderTopic)
	relay := outbox.NewRelay(log, store, dispatch, cfg.ServiceName+"-relay")

	svc := application.NewService(orders, products, customers)
	handler := orderhttp.NewHandler(log, svc, rdb)

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Mount("/", handler.Routes())

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		if err := relay.Run(ctx); err != nil {
			log.Error("relay stopped with error", "err", err)
		}
	}()

	go func() {
		log.Info("http listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("http server error", "err", err)
			cancel()
		}
	}()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)
	log.Info("order-service shutdown complete")
}
