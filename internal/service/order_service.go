package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/spec-kit/marketplace/internal/domain"
	"github.com/spec-kit/marketplace/internal/events"
	"github.com/spec-kit/marketplace/internal/policy"
	"github.com/spec-kit/marketplace/internal/repository"
	apperrors "github.com/spec-kit/marketplace/pkg/util"
)

// OrderService handles purchase requests.
type OrderService struct {
	orders   repository.OrderRepository
	products repository.ProductRepository
	policy   *policy.Engine
	events   events.Dispatcher
	logger   *zap.Logger
}

// NewOrderService constructs the service. dispatcher may be nil.
func NewOrderService(orders repository.OrderRepository, products repository.ProductRepository, engine *policy.Engine, dispatcher events.Dispatcher, logger *zap.Logger) *OrderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderService{orders: orders, products: products, policy: engine, events: dispatcher, logger: logger}
}

// Request records the caller's request for a product. A buyer may request
// each product once.
func (s *OrderService) Request(ctx context.Context, caller policy.Identity, productID string) (*domain.Order, error) {
	if s.policy.Admit(caller.Role, policy.KindBuyerPrivate) != policy.Allow {
		return nil, apperrors.NewForbidden("forbidden")
	}
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		if apperrors.IsNoRows(err) {
			return nil, apperrors.NewNotFound("product", nil)
		}
		return nil, apperrors.NewInternalError(err)
	}
	if product.Status != domain.ProductStatusActive {
		return nil, apperrors.NewValidationError("product is not available", map[string]any{"status": product.Status})
	}

	if _, err := s.orders.FindByBuyerAndProduct(ctx, caller.SubjectID, product.ID); err == nil {
		return nil, apperrors.NewConflict("you've already requested this product", nil)
	} else if !apperrors.IsNoRows(err) {
		return nil, apperrors.NewInternalError(err)
	}

	order := &domain.Order{
		ProductID:    product.ID,
		BuyerID:      caller.SubjectID,
		Status:       domain.OrderStatusPending,
		ProductTitle: product.Title,
		BuyerEmail:   caller.Email,
	}
	if err := s.orders.Create(ctx, order); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewConflict("you've already requested this product", nil)
		}
		return nil, apperrors.NewInternalError(err)
	}
	s.logger.Info("order requested", zap.String("order_id", order.ID), zap.String("product_id", product.ID))
	publish(ctx, s.events, s.logger, events.New(events.EventOrderRequested, order.ID, caller.SubjectID, events.OrderRequestedPayload{
		ProductID:    product.ID,
		ProductTitle: product.Title,
		SellerID:     product.SellerID,
		BuyerID:      caller.SubjectID,
	}))
	return order, nil
}

// List returns the orders visible to the caller.
func (s *OrderService) List(ctx context.Context, caller policy.Identity) ([]domain.Order, error) {
	scope, ok := policy.ListScope(policy.ResourceOrders, caller)
	if !ok {
		return nil, apperrors.NewForbidden("forbidden")
	}
	orders, err := s.orders.List(ctx, scope)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return orders, nil
}
