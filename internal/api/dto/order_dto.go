package dto

import "github.com/spec-kit/marketplace/internal/domain"

// OrderCreateRequest payload for POST /api/orders.
type OrderCreateRequest struct {
	ProductID string `json:"product_id" validate:"required"`
}

// OrderResponse is the public view of a purchase request.
type OrderResponse struct {
	ID           string             `json:"id"`
	ProductID    string             `json:"product_id"`
	ProductTitle string             `json:"product_title,omitempty"`
	BuyerID      string             `json:"buyer_id"`
	BuyerName    string             `json:"buyer_name,omitempty"`
	BuyerEmail   string             `json:"buyer_email,omitempty"`
	Status       domain.OrderStatus `json:"status"`
	CreatedAt    string             `json:"created_at"`
}

// NewOrderResponse maps a domain order.
func NewOrderResponse(o *domain.Order) OrderResponse {
	return OrderResponse{
		ID:           o.ID,
		ProductID:    o.ProductID,
		ProductTitle: o.ProductTitle,
		BuyerID:      o.BuyerID,
		BuyerName:    o.BuyerName,
		BuyerEmail:   o.BuyerEmail,
		Status:       o.Status,
		CreatedAt:    o.CreatedAt.UTC().Format(timeLayout),
	}
}

// NewOrderList maps a slice of orders.
func NewOrderList(orders []domain.Order) []OrderResponse {
	out := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		out = append(out, NewOrderResponse(&orders[i]))
	}
	return out
}
