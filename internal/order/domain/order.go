package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LineItem is one priced (product, quantity) entry attached to an order.
// UnitPrice is a snapshot taken at order time; later catalog price changes
// do not touch it.
type LineItem struct {
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type Order struct {
	ID         string          `json:"id"`
	CustomerID string          `json:"customer_id"`
	Items      []LineItem      `json:"items"`
	Total      decimal.Decimal `json:"total"`
	CreatedAt  time.Time       `json:"created_at"`
}

// ItemRequest is one requested (product, quantity) pair. Requests are
// transient and never persisted as-is.
type ItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

func NewOrder(id, customerID string, items []LineItem) Order {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return Order{
		ID:         id,
		CustomerID: customerID,
		Items:      items,
		Total:      total,
		CreatedAt:  time.Now().UTC(),
	}
}
