package domain_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stackline/order-service/internal/order/domain"
)

func TestProductsNotFoundError_Message(t *testing.T) {
	err := &domain.ProductsNotFoundError{IDs: []string{"a", "b"}}
	require.Equal(t, "products not found: a, b", err.Error())
}

func TestInsufficientStockError_Message(t *testing.T) {
	err := &domain.InsufficientStockError{Shortages: []domain.StockShortage{
		{ProductID: "a", Requested: 5, Available: 3},
		{ProductID: "b", Requested: 2, Available: 0},
	}}
	require.Equal(t, "insufficient stock: a (requested 5, available 3); b (requested 2, available 0)", err.Error())
}

func TestErrorsSurviveWrapping(t *testing.T) {
	wrapped := fmt.Errorf("place order: %w", &domain.InsufficientStockError{
		Shortages: []domain.StockShortage{{ProductID: "a", Requested: 1, Available: 0}},
	})
	var insufficient *domain.InsufficientStockError
	require.ErrorAs(t, wrapped, &insufficient)
	require.Len(t, insufficient.Shortages, 1)
}
