package domain

import "time"

// OrderStatus enumerates purchase request states.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusCompleted OrderStatus = "COMPLETED"
	OrderStatusCanceled  OrderStatus = "CANCELED"
)

// Valid reports whether s is a known order status.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusCompleted, OrderStatusCanceled:
		return true
	}
	return false
}

// Order is a buyer's request for a product.
type Order struct {
	ID           string
	ProductID    string
	BuyerID      string
	Status       OrderStatus
	ProductTitle string
	BuyerName    string
	BuyerEmail   string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// OwnerID returns the buyer that placed the order.
func (o *Order) OwnerID() string {
	return o.BuyerID
}
