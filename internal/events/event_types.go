package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/marketplace/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventOrderRequested     EventType = "order_requested"
	EventOrderStatusChanged EventType = "order_status_changed"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	OrderID   string    `json:"order_id"`
	ActorID   string    `json:"actor_id"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// New stamps an event with an id and the current time.
func New(eventType EventType, orderID, actorID string, payload any) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		OrderID:   orderID,
		ActorID:   actorID,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// OrderRequestedPayload payload.
type OrderRequestedPayload struct {
	ProductID    string `json:"product_id"`
	ProductTitle string `json:"product_title"`
	SellerID     string `json:"seller_id"`
	BuyerID      string `json:"buyer_id"`
}

// OrderStatusChangedPayload names the buyer to notify.
type OrderStatusChangedPayload struct {
	ProductID      string             `json:"product_id"`
	BuyerID        string             `json:"buyer_id"`
	PreviousStatus domain.OrderStatus `json:"previous_status"`
	NewStatus      domain.OrderStatus `json:"new_status"`
}
