package domain

import "github.com/shopspring/decimal"

const EventOrderPlaced = "OrderPlaced"

type OrderPlaced struct {
	OrderID    string          `json:"order_id"`
	CustomerID string          `json:"customer_id"`
	Total      decimal.Decimal `json:"total"`
	Items      []LineItem      `json:"items"`
}
