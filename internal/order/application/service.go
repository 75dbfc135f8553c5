package application

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	catalog "github.com/stackline/order-service/internal/catalog/domain"
	"github.com/stackline/order-service/internal/order/domain"
)

type Service struct {
	orders    OrderRepository
	products  ProductRepository
	customers CustomerRepository
}

func NewService(orders OrderRepository, products ProductRepository, customers CustomerRepository) *Service {
	return &Service{orders: orders, products: products, customers: customers}
}

// PlaceOrder validates the request against current catalog state, persists the
// order with price snapshots and submits the post-order quantities to the
// catalog. Validation completes before any mutation; every validation error is
// terminal and leaves no partial state behind.
//
// Duplicate product ids in one request are not coalesced: each entry becomes
// its own line item and is checked against the same snapshot availability.
func (s *Service) PlaceOrder(ctx context.Context, customerID string, items []domain.ItemRequest, traceparent string) (*domain.Order, error) {
	c, err := s.customers.FindByID(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("find customer: %w", err)
	}
	if c == nil {
		return nil, domain.ErrCustomerNotFound
	}

	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}
	products, err := s.products.FindAllByID(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("find products: %w", err)
	}
	if len(products) == 0 {
		return nil, domain.ErrNoProductsFound
	}

	byID := make(map[string]catalog.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	var missing []string
	for _, item := range items {
		if _, ok := byID[item.ProductID]; !ok {
			missing = append(missing, item.ProductID)
		}
	}
	if len(missing) > 0 {
		return nil, &domain.ProductsNotFoundError{IDs: missing}
	}

	var shortages []domain.StockShortage
	for _, item := range items {
		p := byID[item.ProductID]
		if item.Quantity > p.Quantity {
			shortages = append(shortages, domain.StockShortage{
				ProductID: item.ProductID,
				Requested: item.Quantity,
				Available: p.Quantity,
			})
		}
	}
	if len(shortages) > 0 {
		return nil, &domain.InsufficientStockError{Shortages: shortages}
	}

	lineItems := make([]domain.LineItem, 0, len(items))
	for _, item := range items {
		lineItems = append(lineItems, domain.LineItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: byID[item.ProductID].Price,
		})
	}
	order := domain.NewOrder(uuid.NewString(), customerID, lineItems)

	event := domain.OrderPlaced{
		OrderID:    order.ID,
		CustomerID: order.CustomerID,
		Total:      order.Total,
		Items:      order.Items,
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, err
	}
	if err := s.orders.Create(ctx, order, domain.EventOrderPlaced, payload, traceparent); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	// Quantities never go negative here: step 4 already compared every
	// request against the same snapshot.
	updates := make([]catalog.QuantityUpdate, 0, len(items))
	for _, item := range items {
		updates = append(updates, catalog.QuantityUpdate{
			ProductID: item.ProductID,
			Quantity:  byID[item.ProductID].Quantity - item.Quantity,
		})
	}
	if err := s.products.UpdateQuantities(ctx, updates); err != nil {
		return nil, fmt.Errorf("update quantities: %w", err)
	}

	return &order, nil
}

func (s *Service) GetOrder(ctx context.Context, id string) (domain.Order, error) {
	return s.orders.Get(ctx, id)
}

func (s *Service) ListProducts(ctx context.Context) ([]catalog.Product, error) {
	return s.products.List(ctx)
}
