package domain

import "time"

// ProductStatus enumerates listing visibility states managed by admins.
type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "ACTIVE"
	ProductStatusInactive ProductStatus = "INACTIVE"
	ProductStatusSold     ProductStatus = "SOLD"
)

// Valid reports whether s is a known product status.
func (s ProductStatus) Valid() bool {
	switch s {
	case ProductStatusActive, ProductStatusInactive, ProductStatusSold:
		return true
	}
	return false
}

// Product is a listing owned by a seller.
type Product struct {
	ID          string
	Title       string
	Description string
	Price       float64
	FileURL     string
	Status      ProductStatus
	SellerID    string
	SellerName  string
	SellerEmail string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// OwnerID returns the principal that owns the listing.
func (p *Product) OwnerID() string {
	return p.SellerID
}
