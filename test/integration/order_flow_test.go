package integration

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	segmentio "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"

	catalogpg "github.com/stackline/order-service/internal/catalog/infrastructure/postgres"
	customerpg "github.com/stackline/order-service/internal/customer/infrastructure/postgres"
	"github.com/stackline/order-service/internal/order/application"
	"github.com/stackline/order-service/internal/order/domain"
	orderkafka "github.com/stackline/order-service/internal/order/infrastructure/kafka"
	orderpg "github.com/stackline/order-service/internal/order/infrastructure/postgres"
	"github.com/stackline/order-service/pkg/logging"
	"github.com/stackline/order-service/pkg/outbox"
)

const orderTopic = "order.events"

// Requires docker; run with INTEGRATION=1 go test ./test/integration/...
func TestOrderFlow(t *testing.T) {
	if os.Getenv("INTEGRATION") == "" {
		t.Skip("set INTEGRATION=1 to run container-backed tests")
	}

	ctx := context.Background()
	env, err := Setup(ctx)
	require.NoError(t, err)
	defer env.Teardown(ctx)

	pool, err := pgxpool.New(ctx, env.PGURL)
	require.NoError(t, err)
	defer pool.Close()

	schema, err := os.ReadFile("../../db/schema.sql")
	require.NoError(t, err)
	_, err = pool.Exec(ctx, string(schema))
	require.NoError(t, err)

	_, err = pool.Exec(ctx, `INSERT INTO customers (id, name, email) VALUES ('cust-1', 'Ada', 'ada@example.com')`)
	require.NoError(t, err)
	_, err = pool.Exec(ctx, `INSERT INTO products (id, name, price, quantity) VALUES
		('prod-1', 'Widget', 19.99, 5),
		('prod-2', 'Gadget', 4.50, 2)`)
	require.NoError(t, err)

	log := logging.New()
	orders := orderpg.NewRepository(log, pool)
	products := catalogpg.NewRepository(log, pool)
	customers := customerpg.NewRepository(log, pool)
	svc := application.NewService(orders, products, customers)

	t.Run("insufficient stock leaves no trace", func(t *testing.T) {
		_, err := svc.PlaceOrder(ctx, "cust-1", []domain.ItemRequest{{ProductID: "prod-2", Quantity: 3}}, "")
		var insufficient *domain.InsufficientStockError
		require.ErrorAs(t, err, &insufficient)

		var qty int
		require.NoError(t, pool.QueryRow(ctx, `SELECT quantity FROM products WHERE id='prod-2'`).Scan(&qty))
		require.Equal(t, 2, qty)

		var count int
		require.NoError(t, pool.QueryRow(ctx, `SELECT count(*) FROM orders`).Scan(&count))
		require.Equal(t, 0, count)
	})

	var placed *domain.Order
	t.Run("place order persists and decrements", func(t *testing.T) {
		var err error
		placed, err = svc.PlaceOrder(ctx, "cust-1", []domain.ItemRequest{
			{ProductID: "prod-1", Quantity: 2},
			{ProductID: "prod-2", Quantity: 1},
		}, "")
		require.NoError(t, err)

		stored, err := orders.Get(ctx, placed.ID)
		require.NoError(t, err)
		require.Len(t, stored.Items, 2)
		require.True(t, stored.Total.Equal(placed.Total))

		var qty1, qty2 int
		require.NoError(t, pool.QueryRow(ctx, `SELECT quantity FROM products WHERE id='prod-1'`).Scan(&qty1))
		require.NoError(t, pool.QueryRow(ctx, `SELECT quantity FROM products WHERE id='prod-2'`).Scan(&qty2))
		require.Equal(t, 3, qty1)
		require.Equal(t, 1, qty2)

		var pending int
		require.NoError(t, pool.QueryRow(ctx, `SELECT count(*) FROM outbox WHERE status='pending'`).Scan(&pending))
		require.Equal(t, 1, pending)
	})

	t.Run("relay dispatches the outbox event", func(t *testing.T) {
		writer := orderkafka.NewWriter(env.KafkaBrokers)
		defer writer.Close()

		store := orderpg.NewOutboxStore(log, pool)
		dispatch := outbox.NewDispatcher(log, writer, orderTopic)
		relay := outbox.NewRelay(log, store, dispatch, "it-relay")

		relayCtx, relayCancel := context.WithCancel(ctx)
		defer relayCancel()
		go func() { _ = relay.Run(relayCtx) }()

		reader := segmentio.NewReader(segmentio.ReaderConfig{
			Brokers: env.KafkaBrokers,
			Topic:   orderTopic,
			GroupID: "it-check",
		})
		defer reader.Close()

		readCtx, readCancel := context.WithTimeout(ctx, 60*time.Second)
		defer readCancel()
		msg, err := reader.ReadMessage(readCtx)
		require.NoError(t, err)

		var ev domain.OrderPlaced
		require.NoError(t, json.Unmarshal(msg.Value, &ev))
		require.Equal(t, placed.ID, ev.OrderID)
		require.Equal(t, placed.ID, string(msg.Key))

		require.Eventually(t, func() bool {
			var sent int
			if err := pool.QueryRow(ctx, `SELECT count(*) FROM outbox WHERE status='sent'`).Scan(&sent); err != nil {
				return false
			}
			return sent == 1
		}, 10*time.Second, 200*time.Millisecond)
	})

	t.Run("unknown customer resolves to not found", func(t *testing.T) {
		_, err := svc.PlaceOrder(ctx, "ghost", []domain.ItemRequest{{ProductID: "prod-1", Quantity: 1}}, "")
		require.ErrorIs(t, err, domain.ErrCustomerNotFound)
	})
}
