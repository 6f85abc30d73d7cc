package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/marketplace/internal/events"
)

// NotificationService turns order events into seller and buyer
// notifications. Delivery channels (email, push) are external; the service
// records what would be sent.
type NotificationService struct {
	logger *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{logger: logger}
}

// Topics lists the event types the service consumes.
func (n *NotificationService) Topics() []events.EventType {
	return []events.EventType{events.EventOrderRequested, events.EventOrderStatusChanged}
}

// Handle processes one event. Unknown types are ignored.
func (n *NotificationService) Handle(_ context.Context, event events.Event) error {
	switch payload := event.Payload.(type) {
	case events.OrderRequestedPayload:
		n.logger.Info("notify seller of order request",
			zap.String("event_id", event.ID),
			zap.String("order_id", event.OrderID),
			zap.String("seller_id", payload.SellerID),
			zap.String("product_id", payload.ProductID))
	case events.OrderStatusChangedPayload:
		n.logger.Info("notify buyer of order status",
			zap.String("event_id", event.ID),
			zap.String("order_id", event.OrderID),
			zap.String("buyer_id", payload.BuyerID),
			zap.String("product_id", payload.ProductID),
			zap.String("status", string(payload.NewStatus)))
	default:
		if event.Type == events.EventOrderRequested || event.Type == events.EventOrderStatusChanged {
			return fmt.Errorf("%s: unexpected payload %T", event.Type, event.Payload)
		}
	}
	return nil
}

func publish(ctx context.Context, dispatcher events.Dispatcher, logger *zap.Logger, event events.Event) {
	if dispatcher == nil {
		return
	}
	if err := dispatcher.Publish(ctx, event); err != nil {
		logger.Warn("event handler failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}
