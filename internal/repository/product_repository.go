package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/marketplace/internal/domain"
	"github.com/spec-kit/marketplace/internal/policy"
)

// ProductRepository defines persistence access for listings.
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	List(ctx context.Context, scope policy.Scope) ([]domain.Product, error)
}

type productRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository returns a Postgres-backed implementation.
func NewProductRepository(pool *pgxpool.Pool) ProductRepository {
	return &productRepository{pool: pool}
}

const productSelect = `
        SELECT p.id, p.title, p.description, p.price, p.file_url, p.status, p.seller_id,
               u.name, u.email, p.created_at, p.updated_at
        FROM products p
        JOIN users u ON u.id = p.seller_id`

func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	const query = `
        INSERT INTO products (title, description, price, file_url, status, seller_id)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		product.Title,
		product.Description,
		product.Price,
		product.FileURL,
		product.Status,
		product.SellerID,
	).Scan(&product.ID, &product.CreatedAt, &product.UpdatedAt)
}

func (r *productRepository) Update(ctx context.Context, product *domain.Product) error {
	if err := checkID(product.ID); err != nil {
		return err
	}
	const query = `
        UPDATE products SET title=$1, description=$2, price=$3, file_url=$4, status=$5, updated_at=NOW()
        WHERE id=$6
        RETURNING updated_at`

	return r.pool.QueryRow(ctx, query,
		product.Title,
		product.Description,
		product.Price,
		product.FileURL,
		product.Status,
		product.ID,
	).Scan(&product.UpdatedAt)
}

func (r *productRepository) Delete(ctx context.Context, id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	cmd, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *productRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	return scanProduct(r.pool.QueryRow(ctx, productSelect+` WHERE p.id=$1`, id))
}

func (r *productRepository) List(ctx context.Context, scope policy.Scope) ([]domain.Product, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if scope.All {
		rows, err = r.pool.Query(ctx, productSelect+` ORDER BY p.created_at DESC`)
	} else {
		rows, err = r.pool.Query(ctx, productSelect+` WHERE p.seller_id=$1 ORDER BY p.created_at DESC`, scope.OwnerID)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := make([]domain.Product, 0)
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *product)
	}
	return products, rows.Err()
}

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var p domain.Product
	if err := row.Scan(
		&p.ID,
		&p.Title,
		&p.Description,
		&p.Price,
		&p.FileURL,
		&p.Status,
		&p.SellerID,
		&p.SellerName,
		&p.SellerEmail,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &p, nil
}
