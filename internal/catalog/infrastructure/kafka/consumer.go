package kafka

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	catalog "github.com/stackline/order-service/internal/catalog/domain"
	"github.com/stackline/order-service/internal/catalog/infrastructure/cache"
	"github.com/stackline/order-service/internal/order/domain"
	"github.com/stackline/order-service/pkg/idempotency"
	"github.com/stackline/order-service/pkg/tracing"
)

// ProductFinder is the slice of the catalog repository the consumer needs.
type ProductFinder interface {
	FindAllByID(ctx context.Context, ids []string) ([]catalog.Product, error)
}

// Consumer applies OrderPlaced events to the availability read cache. The
// post-order quantities are re-read from the catalog rather than derived from
// the event, so a replayed or reordered delivery cannot skew the cache.
type Consumer struct {
	log      *slog.Logger
	reader   *kafka.Reader
	products ProductFinder
	cache    *cache.AvailabilityCache
	idem     *idempotency.Store
	tracer   trace.Tracer
}

func NewConsumer(log *slog.Logger, brokers []string, topic, group string, products ProductFinder, availability *cache.AvailabilityCache, idem *idempotency.Store) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers: brokers,
		Topic:   topic,
		GroupID: group,
	})
	return &Consumer{
		log:      log,
		reader:   r,
		products: products,
		cache:    availability,
		idem:     idem,
		tracer:   otel.Tracer("stock-cache-consumer"),
	}
}

func (c *Consumer) Run(ctx context.Context) error {
	defer c.reader.Close()
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			return err
		}
		key := c.idem.Key(msg.Topic, msg.Partition, msg.Offset)
		seen, err := c.idem.Seen(ctx, key)
		if err != nil {
			c.log.Error("idempotency check failed", "err", err)
			continue
		}
		if seen {
			c.log.Info("duplicate message skipped", "key", key)
			_ = c.reader.CommitMessages(ctx, msg)
			continue
		}
		if headerValue(msg.Headers, "event_type") != domain.EventOrderPlaced {
			_ = c.reader.CommitMessages(ctx, msg)
			continue
		}

		msgCtx := tracing.ExtractKafkaHeaders(ctx, msg.Headers)
		msgCtx, span := c.tracer.Start(msgCtx, "ConsumeOrderPlaced")

		var ev domain.OrderPlaced
		if err := json.Unmarshal(msg.Value, &ev); err != nil {
			c.log.Error("unmarshal failed", "err", err)
			span.End()
			_ = c.reader.CommitMessages(ctx, msg)
			continue
		}

		if err := c.refresh(msgCtx, ev); err != nil {
			c.log.Error("availability refresh failed", "order_id", ev.OrderID, "err", err)
		} else {
			c.log.Info("availability refreshed", "order_id", ev.OrderID, "products", len(ev.Items))
		}
		span.End()
		_ = c.reader.CommitMessages(ctx, msg)
	}
}

func (c *Consumer) refresh(ctx context.Context, ev domain.OrderPlaced) error {
	ids := make([]string, 0, len(ev.Items))
	for _, item := range ev.Items {
		ids = append(ids, item.ProductID)
	}
	products, err := c.products.FindAllByID(ctx, ids)
	if err != nil {
		return err
	}
	for _, p := range products {
		if err := c.cache.Set(ctx, p.ID, p.Quantity); err != nil {
			return err
		}
	}
	return nil
}

func headerValue(h []kafka.Header, key string) string {
	for _, hh := range h {
		if hh.Key == key {
			return string(hh.Value)
		}
	}
	return ""
}
