// Package memory holds in-memory repositories. They back the unit test
// suites and local development without a database.
package memory

import (
	"context"
	"sync"

	catalog "github.com/stackline/order-service/internal/catalog/domain"
	customer "github.com/stackline/order-service/internal/customer/domain"
	"github.com/stackline/order-service/internal/order/domain"
)

type CustomerStore struct {
	mu        sync.RWMutex
	customers map[string]customer.Customer
}

func NewCustomerStore() *CustomerStore {
	return &CustomerStore{customers: map[string]customer.Customer{}}
}

func (s *CustomerStore) Add(c customer.Customer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.customers[c.ID] = c
}

func (s *CustomerStore) FindByID(ctx context.Context, id string) (*customer.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.customers[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

type ProductStore struct {
	mu       sync.RWMutex
	products map[string]catalog.Product
}

func NewProductStore() *ProductStore {
	return &ProductStore{products: map[string]catalog.Product{}}
}

func (s *ProductStore) Add(p catalog.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.ID] = p
}

// Get is a test helper for asserting on current stock.
func (s *ProductStore) Get(id string) (catalog.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[id]
	return p, ok
}

// FindAllByID omits unknown ids and returns each known product once even if
// its id is requested more than once.
func (s *ProductStore) FindAllByID(ctx context.Context, ids []string) ([]catalog.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[string]bool, len(ids))
	out := make([]catalog.Product, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if p, ok := s.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *ProductStore) List(ctx context.Context) ([]catalog.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]catalog.Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, p)
	}
	return out, nil
}

func (s *ProductStore) UpdateQuantities(ctx context.Context, updates []catalog.QuantityUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range updates {
		p, ok := s.products[u.ProductID]
		if !ok {
			continue
		}
		p.Quantity = u.Quantity
		s.products[u.ProductID] = p
	}
	return nil
}

// RecordedEvent captures the outbox arguments handed to Create so tests can
// assert on the event without a real outbox table.
type RecordedEvent struct {
	OrderID     string
	Type        string
	Payload     []byte
	Traceparent string
}

type OrderStore struct {
	mu     sync.RWMutex
	orders map[string]domain.Order
	events []RecordedEvent
}

func NewOrderStore() *OrderStore {
	return &OrderStore{orders: map[string]domain.Order{}}
}

func (s *OrderStore) Create(ctx context.Context, o domain.Order, eventType string, payload []byte, traceparent string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders[o.ID] = o
	s.events = append(s.events, RecordedEvent{
		OrderID:     o.ID,
		Type:        eventType,
		Payload:     payload,
		Traceparent: traceparent,
	})
	return nil
}

func (s *OrderStore) Get(ctx context.Context, id string) (domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.orders[id]
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	return o, nil
}

func (s *OrderStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.orders)
}

func (s *OrderStore) Events() []RecordedEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]RecordedEvent, len(s.events))
	copy(out, s.events)
	return out
}
