package application

import (
	"context"

	catalog "github.com/stackline/order-service/internal/catalog/domain"
	customer "github.com/stackline/order-service/internal/customer/domain"
	"github.com/stackline/order-service/internal/order/domain"
)

// CustomerRepository resolves customer ids. A nil customer with a nil error
// means the id does not exist; absence is not an error at this layer.
type CustomerRepository interface {
	FindByID(ctx context.Context, id string) (*customer.Customer, error)
}

// ProductRepository is the catalog collaborator. FindAllByID returns only
// products that currently exist and silently omits unknown ids; the omission
// is the signal the orchestrator uses to detect missing products.
type ProductRepository interface {
	FindAllByID(ctx context.Context, ids []string) ([]catalog.Product, error)
	List(ctx context.Context) ([]catalog.Product, error)
	UpdateQuantities(ctx context.Context, updates []catalog.QuantityUpdate) error
}

// OrderRepository persists an order, its line items and the outbox event in
// one logical unit.
type OrderRepository interface {
	Create(ctx context.Context, o domain.Order, eventType string, payload []byte, traceparent string) error
	Get(ctx context.Context, id string) (domain.Order, error)
}
