package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID        string
	Name      string
	Price     decimal.Decimal
	Quantity  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// QuantityUpdate carries the absolute post-order quantity for one product,
// not a delta.
type QuantityUpdate struct {
	ProductID string
	Quantity  int
}
