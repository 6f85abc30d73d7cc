package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/marketplace/internal/domain"
	"github.com/spec-kit/marketplace/internal/policy"
)

// OrderRepository defines persistence access for purchase requests.
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	FindByBuyerAndProduct(ctx context.Context, buyerID, productID string) (*domain.Order, error)
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	List(ctx context.Context, scope policy.Scope) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) error
	Delete(ctx context.Context, id string) error
}

type orderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns a Postgres-backed implementation.
func NewOrderRepository(pool *pgxpool.Pool) OrderRepository {
	return &orderRepository{pool: pool}
}

const orderSelect = `
        SELECT o.id, o.product_id, o.buyer_id, o.status, p.title, u.name, u.email, o.created_at, o.updated_at
        FROM orders o
        JOIN products p ON p.id = o.product_id
        JOIN users u ON u.id = o.buyer_id`

// Create inserts an order. The (product_id, buyer_id) constraint turns a
// concurrent duplicate into ErrDuplicate.
func (r *orderRepository) Create(ctx context.Context, order *domain.Order) error {
	if err := checkID(order.ProductID); err != nil {
		return err
	}
	const query = `
        INSERT INTO orders (product_id, buyer_id, status)
        VALUES ($1, $2, $3)
        RETURNING id, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		order.ProductID,
		order.BuyerID,
		order.Status,
	).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
	return mapWriteError(err)
}

func (r *orderRepository) FindByBuyerAndProduct(ctx context.Context, buyerID, productID string) (*domain.Order, error) {
	if err := checkID(productID); err != nil {
		return nil, err
	}
	return scanOrder(r.pool.QueryRow(ctx, orderSelect+` WHERE o.buyer_id=$1 AND o.product_id=$2`, buyerID, productID))
}

func (r *orderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	return scanOrder(r.pool.QueryRow(ctx, orderSelect+` WHERE o.id=$1`, id))
}

func (r *orderRepository) List(ctx context.Context, scope policy.Scope) ([]domain.Order, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if scope.All {
		rows, err = r.pool.Query(ctx, orderSelect+` ORDER BY o.created_at DESC`)
	} else {
		rows, err = r.pool.Query(ctx, orderSelect+` WHERE o.buyer_id=$1 ORDER BY o.created_at DESC`, scope.OwnerID)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]domain.Order, 0)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *order)
	}
	return orders, rows.Err()
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) error {
	if err := checkID(id); err != nil {
		return err
	}
	cmd, err := r.pool.Exec(ctx, `UPDATE orders SET status=$1, updated_at=NOW() WHERE id=$2`, status, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *orderRepository) Delete(ctx context.Context, id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	cmd, err := r.pool.Exec(ctx, `DELETE FROM orders WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var o domain.Order
	if err := row.Scan(
		&o.ID,
		&o.ProductID,
		&o.BuyerID,
		&o.Status,
		&o.ProductTitle,
		&o.BuyerName,
		&o.BuyerEmail,
		&o.CreatedAt,
		&o.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &o, nil
}
