package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/marketplace/internal/domain"
	"github.com/spec-kit/marketplace/internal/events"
	"github.com/spec-kit/marketplace/internal/policy"
	"github.com/spec-kit/marketplace/internal/repository"
	apperrors "github.com/spec-kit/marketplace/pkg/util"
)

// AdminService exposes account and order management. Every call re-checks
// the caller against ADMIN_ONLY admission.
type AdminService struct {
	users  repository.UserRepository
	orders repository.OrderRepository
	policy *policy.Engine
	events events.Dispatcher
	logger *zap.Logger
}

// NewAdminService constructs the service. dispatcher may be nil.
func NewAdminService(users repository.UserRepository, orders repository.OrderRepository, engine *policy.Engine, dispatcher events.Dispatcher, logger *zap.Logger) *AdminService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminService{users: users, orders: orders, policy: engine, events: dispatcher, logger: logger}
}

// ListUsers returns every account.
func (s *AdminService) ListUsers(ctx context.Context, caller policy.Identity) ([]domain.User, error) {
	if err := s.require(caller); err != nil {
		return nil, err
	}
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return users, nil
}

// ChangeRole sets the role of another account. It applies from that
// account's next login.
func (s *AdminService) ChangeRole(ctx context.Context, caller policy.Identity, userID string, role domain.Role) error {
	if err := s.require(caller); err != nil {
		return err
	}
	if !role.Valid() {
		return apperrors.NewValidationError("invalid role", map[string]any{"role": role})
	}
	if userID == caller.SubjectID {
		return apperrors.NewValidationError("cannot change your own role", nil)
	}
	if err := s.users.UpdateRole(ctx, userID, role); err != nil {
		if apperrors.IsNoRows(err) {
			return apperrors.NewNotFound("user", nil)
		}
		return apperrors.NewInternalError(err)
	}
	s.logger.Info("role changed", zap.String("user_id", userID), zap.String("role", string(role)), zap.String("by", caller.SubjectID))
	return nil
}

// UpdateOrderStatus moves an order to status.
func (s *AdminService) UpdateOrderStatus(ctx context.Context, caller policy.Identity, orderID string, status domain.OrderStatus) error {
	if err := s.require(caller); err != nil {
		return err
	}
	if !status.Valid() {
		return apperrors.NewValidationError("invalid status", map[string]any{"status": status})
	}
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		if apperrors.IsNoRows(err) {
			return apperrors.NewNotFound("order", nil)
		}
		return apperrors.NewInternalError(err)
	}
	if err := s.orders.UpdateStatus(ctx, orderID, status); err != nil {
		if apperrors.IsNoRows(err) {
			return apperrors.NewNotFound("order", nil)
		}
		return apperrors.NewInternalError(err)
	}
	publish(ctx, s.events, s.logger, events.New(events.EventOrderStatusChanged, order.ID, caller.SubjectID, events.OrderStatusChangedPayload{
		ProductID:      order.ProductID,
		BuyerID:        order.BuyerID,
		PreviousStatus: order.Status,
		NewStatus:      status,
	}))
	return nil
}

// DeleteOrder removes an order.
func (s *AdminService) DeleteOrder(ctx context.Context, caller policy.Identity, orderID string) error {
	if err := s.require(caller); err != nil {
		return err
	}
	if err := s.orders.Delete(ctx, orderID); err != nil {
		if apperrors.IsNoRows(err) {
			return apperrors.NewNotFound("order", nil)
		}
		return apperrors.NewInternalError(err)
	}
	return nil
}

func (s *AdminService) require(caller policy.Identity) error {
	if s.policy.Admit(caller.Role, policy.KindAdminOnly) != policy.Allow {
		return apperrors.NewForbidden("forbidden")
	}
	return nil
}
