package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrCustomerNotFound means the requested customer id does not resolve.
	ErrCustomerNotFound = errors.New("customer not found")

	// ErrNoProductsFound means none of the requested product ids resolve.
	ErrNoProductsFound = errors.New("no products found for the given ids")

	// ErrOrderNotFound is returned by order stores on lookup misses.
	ErrOrderNotFound = errors.New("order not found")
)

// ProductsNotFoundError reports a partial mismatch: at least one requested
// product id resolved but at least one did not. IDs holds every missing id.
type ProductsNotFoundError struct {
	IDs []string
}

func (e *ProductsNotFoundError) Error() string {
	return fmt.Sprintf("products not found: %s", strings.Join(e.IDs, ", "))
}

// StockShortage describes one product whose requested quantity exceeds its
// available quantity.
type StockShortage struct {
	ProductID string `json:"product_id"`
	Requested int    `json:"requested"`
	Available int    `json:"available"`
}

// InsufficientStockError reports the whole failing set, not just the first
// shortfall.
type InsufficientStockError struct {
	Shortages []StockShortage
}

func (e *InsufficientStockError) Error() string {
	parts := make([]string, 0, len(e.Shortages))
	for _, s := range e.Shortages {
		parts = append(parts, fmt.Sprintf("%s (requested %d, available %d)", s.ProductID, s.Requested, s.Available))
	}
	return fmt.Sprintf("insufficient stock: %s", strings.Join(parts, "; "))
}
