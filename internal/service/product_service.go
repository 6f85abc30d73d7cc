package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/marketplace/internal/domain"
	"github.com/spec-kit/marketplace/internal/policy"
	"github.com/spec-kit/marketplace/internal/repository"
	apperrors "github.com/spec-kit/marketplace/pkg/util"
)

// ProductInput carries the fields of a new listing.
type ProductInput struct {
	Title       string
	Description string
	Price       float64
	FileURL     string
}

// ProductPatch carries optional listing changes. Status is admin only.
type ProductPatch struct {
	Title       *string
	Description *string
	Price       *float64
	FileURL     *string
	Status      *domain.ProductStatus
}

// ProductService manages listings under ownership rules.
type ProductService struct {
	products repository.ProductRepository
	policy   *policy.Engine
	logger   *zap.Logger
}

// NewProductService constructs the service.
func NewProductService(products repository.ProductRepository, engine *policy.Engine, logger *zap.Logger) *ProductService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductService{products: products, policy: engine, logger: logger}
}

// List returns the listings visible to the caller.
func (s *ProductService) List(ctx context.Context, caller policy.Identity) ([]domain.Product, error) {
	scope, ok := policy.ListScope(policy.ResourceProducts, caller)
	if !ok {
		return nil, apperrors.NewForbidden("forbidden")
	}
	products, err := s.products.List(ctx, scope)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return products, nil
}

// Create adds a listing owned by the caller.
func (s *ProductService) Create(ctx context.Context, caller policy.Identity, in ProductInput) (*domain.Product, error) {
	if s.policy.Admit(caller.Role, policy.KindSellerOnly) != policy.Allow {
		return nil, apperrors.NewForbidden("forbidden")
	}
	product := &domain.Product{
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Price:       in.Price,
		FileURL:     in.FileURL,
		Status:      domain.ProductStatusActive,
		SellerID:    caller.SubjectID,
	}
	if err := s.products.Create(ctx, product); err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	s.logger.Info("product created", zap.String("product_id", product.ID), zap.String("seller_id", product.SellerID))
	return product, nil
}

// Update applies patch to a listing the caller owns.
func (s *ProductService) Update(ctx context.Context, caller policy.Identity, id string, patch ProductPatch) (*domain.Product, error) {
	product, err := s.owned(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	if patch.Status != nil && caller.Role != domain.RoleAdmin {
		return nil, apperrors.NewForbidden("product status is managed by administrators")
	}
	if patch.Title != nil {
		product.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Description != nil {
		product.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.Price != nil {
		product.Price = *patch.Price
	}
	if patch.FileURL != nil {
		product.FileURL = *patch.FileURL
	}
	if patch.Status != nil {
		product.Status = *patch.Status
	}

	if err := s.products.Update(ctx, product); err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return product, nil
}

// Delete removes a listing the caller owns.
func (s *ProductService) Delete(ctx context.Context, caller policy.Identity, id string) error {
	product, err := s.owned(ctx, caller, id)
	if err != nil {
		return err
	}
	if err := s.products.Delete(ctx, product.ID); err != nil {
		if apperrors.IsNoRows(err) {
			return apperrors.NewNotAllowed()
		}
		return apperrors.NewInternalError(err)
	}
	s.logger.Info("product deleted", zap.String("product_id", product.ID), zap.String("by", caller.SubjectID))
	return nil
}

// owned loads a product and applies the ownership predicate. Missing and
// foreign products produce the same error.
func (s *ProductService) owned(ctx context.Context, caller policy.Identity, id string) (*domain.Product, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		if apperrors.IsNoRows(err) {
			return nil, apperrors.NewNotAllowed()
		}
		return nil, apperrors.NewInternalError(err)
	}
	if policy.AuthorizeOwnership(caller.Role, caller.SubjectID, product.OwnerID()) != policy.Allow {
		return nil, apperrors.NewNotAllowed()
	}
	return product, nil
}
