package dto

import (
	"time"

	"github.com/spec-kit/marketplace/internal/domain"
	"github.com/spec-kit/marketplace/internal/service"
)

const timeLayout = time.RFC3339

// ProductCreateRequest payload for POST /api/products.
type ProductCreateRequest struct {
	Title       string  `json:"title" validate:"required,max=200"`
	Description string  `json:"description" validate:"required,max=5000"`
	Price       float64 `json:"price" validate:"required,gt=0"`
	FileURL     string  `json:"file_url" validate:"required,url"`
}

// Input converts the payload for the product service.
func (r ProductCreateRequest) Input() service.ProductInput {
	return service.ProductInput{Title: r.Title, Description: r.Description, Price: r.Price, FileURL: r.FileURL}
}

// ProductUpdateRequest payload for PATCH on a product.
type ProductUpdateRequest struct {
	Title       *string  `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string  `json:"description" validate:"omitempty,max=5000"`
	Price       *float64 `json:"price" validate:"omitempty,gt=0"`
	FileURL     *string  `json:"file_url" validate:"omitempty,url"`
	Status      *string  `json:"status" validate:"omitempty,oneof=ACTIVE INACTIVE SOLD"`
}

// Patch converts the payload for the product service.
func (r ProductUpdateRequest) Patch() service.ProductPatch {
	patch := service.ProductPatch{
		Title:       r.Title,
		Description: r.Description,
		Price:       r.Price,
		FileURL:     r.FileURL,
	}
	if r.Status != nil {
		status := domain.ProductStatus(*r.Status)
		patch.Status = &status
	}
	return patch
}

// ProductResponse is the public view of a listing.
type ProductResponse struct {
	ID          string               `json:"id"`
	Title       string               `json:"title"`
	Description string               `json:"description"`
	Price       float64              `json:"price"`
	FileURL     string               `json:"file_url"`
	Status      domain.ProductStatus `json:"status"`
	SellerID    string               `json:"seller_id"`
	SellerName  string               `json:"seller_name,omitempty"`
	SellerEmail string               `json:"seller_email,omitempty"`
	CreatedAt   string               `json:"created_at"`
}

// NewProductResponse maps a domain product.
func NewProductResponse(p *domain.Product) ProductResponse {
	return ProductResponse{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Price:       p.Price,
		FileURL:     p.FileURL,
		Status:      p.Status,
		SellerID:    p.SellerID,
		SellerName:  p.SellerName,
		SellerEmail: p.SellerEmail,
		CreatedAt:   p.CreatedAt.UTC().Format(timeLayout),
	}
}

// NewProductList maps a slice of products.
func NewProductList(products []domain.Product) []ProductResponse {
	out := make([]ProductResponse, 0, len(products))
	for i := range products {
		out = append(out, NewProductResponse(&products[i]))
	}
	return out
}
