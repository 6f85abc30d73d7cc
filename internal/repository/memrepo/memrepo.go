// Package memrepo holds in-memory repositories used when no database is
// configured and by tests. They follow the Postgres implementations: missing
// rows are pgx.ErrNoRows and unique conflicts are repository.ErrDuplicate.
package memrepo

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/marketplace/internal/domain"
	"github.com/spec-kit/marketplace/internal/policy"
	"github.com/spec-kit/marketplace/internal/repository"
)

// Store backs all three repositories so joins see the same data.
type Store struct {
	mu       sync.RWMutex
	now      func() time.Time
	users    map[string]domain.User
	products map[string]domain.Product
	orders   map[string]domain.Order
}

// New returns an empty store.
func New() *Store {
	return &Store{
		now:      time.Now,
		users:    make(map[string]domain.User),
		products: make(map[string]domain.Product),
		orders:   make(map[string]domain.Order),
	}
}

// Users returns the user repository view.
func (s *Store) Users() repository.UserRepository { return userRepo{s} }

// Products returns the product repository view.
func (s *Store) Products() repository.ProductRepository { return productRepo{s} }

// Orders returns the order repository view.
func (s *Store) Orders() repository.OrderRepository { return orderRepo{s} }

func (s *Store) stamp() time.Time {
	return s.now().UTC()
}

type userRepo struct{ s *Store }

func (r userRepo) Create(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return repository.ErrDuplicate
		}
	}
	now := r.s.stamp()
	user.ID = uuid.NewString()
	user.CreatedAt, user.UpdatedAt = now, now
	r.s.users[user.ID] = *user
	return nil
}

func (r userRepo) Update(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.users[user.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	existing.Name = user.Name
	existing.Email = user.Email
	existing.PasswordHash = user.PasswordHash
	existing.UpdatedAt = r.s.stamp()
	r.s.users[user.ID] = existing
	user.UpdatedAt = existing.UpdatedAt
	return nil
}

func (r userRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	user, ok := r.s.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &user, nil
}

func (r userRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, user := range r.s.users {
		if strings.EqualFold(user.Email, email) {
			u := user
			return &u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r userRepo) List(_ context.Context) ([]domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	users := make([]domain.User, 0, len(r.s.users))
	for _, user := range r.s.users {
		users = append(users, user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.After(users[j].CreatedAt) })
	return users, nil
}

func (r userRepo) UpdateRole(_ context.Context, id string, role domain.Role) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	user, ok := r.s.users[id]
	if !ok {
		return pgx.ErrNoRows
	}
	user.Role = role
	user.UpdatedAt = r.s.stamp()
	r.s.users[id] = user
	return nil
}

type productRepo struct{ s *Store }

func (r productRepo) Create(_ context.Context, product *domain.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[product.SellerID]; !ok {
		return pgx.ErrNoRows
	}
	now := r.s.stamp()
	product.ID = uuid.NewString()
	product.CreatedAt, product.UpdatedAt = now, now
	stored := *product
	stored.SellerName, stored.SellerEmail = "", ""
	r.s.products[product.ID] = stored
	return nil
}

func (r productRepo) Update(_ context.Context, product *domain.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.products[product.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	existing.Title = product.Title
	existing.Description = product.Description
	existing.Price = product.Price
	existing.FileURL = product.FileURL
	existing.Status = product.Status
	existing.UpdatedAt = r.s.stamp()
	r.s.products[product.ID] = existing
	product.UpdatedAt = existing.UpdatedAt
	return nil
}

func (r productRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.products[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.s.products, id)
	for orderID, order := range r.s.orders {
		if order.ProductID == id {
			delete(r.s.orders, orderID)
		}
	}
	return nil
}

func (r productRepo) GetByID(_ context.Context, id string) (*domain.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	product, ok := r.s.products[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	joined := r.s.joinProduct(product)
	return &joined, nil
}

func (r productRepo) List(_ context.Context, scope policy.Scope) ([]domain.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	products := make([]domain.Product, 0)
	for _, product := range r.s.products {
		if !scope.All && product.SellerID != scope.OwnerID {
			continue
		}
		products = append(products, r.s.joinProduct(product))
	}
	sort.Slice(products, func(i, j int) bool { return products[i].CreatedAt.After(products[j].CreatedAt) })
	return products, nil
}

func (s *Store) joinProduct(p domain.Product) domain.Product {
	if seller, ok := s.users[p.SellerID]; ok {
		p.SellerName, p.SellerEmail = seller.Name, seller.Email
	}
	return p
}

type orderRepo struct{ s *Store }

func (r orderRepo) Create(_ context.Context, order *domain.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.products[order.ProductID]; !ok {
		return pgx.ErrNoRows
	}
	for _, existing := range r.s.orders {
		if existing.BuyerID == order.BuyerID && existing.ProductID == order.ProductID {
			return repository.ErrDuplicate
		}
	}
	now := r.s.stamp()
	order.ID = uuid.NewString()
	order.CreatedAt, order.UpdatedAt = now, now
	r.s.orders[order.ID] = *order
	return nil
}

func (r orderRepo) FindByBuyerAndProduct(_ context.Context, buyerID, productID string) (*domain.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, order := range r.s.orders {
		if order.BuyerID == buyerID && order.ProductID == productID {
			joined := r.s.joinOrder(order)
			return &joined, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r orderRepo) GetByID(_ context.Context, id string) (*domain.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	order, ok := r.s.orders[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	joined := r.s.joinOrder(order)
	return &joined, nil
}

func (r orderRepo) List(_ context.Context, scope policy.Scope) ([]domain.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	orders := make([]domain.Order, 0)
	for _, order := range r.s.orders {
		if !scope.All && order.BuyerID != scope.OwnerID {
			continue
		}
		orders = append(orders, r.s.joinOrder(order))
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].CreatedAt.After(orders[j].CreatedAt) })
	return orders, nil
}

func (r orderRepo) UpdateStatus(_ context.Context, id string, status domain.OrderStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	order, ok := r.s.orders[id]
	if !ok {
		return pgx.ErrNoRows
	}
	order.Status = status
	order.UpdatedAt = r.s.stamp()
	r.s.orders[id] = order
	return nil
}

func (r orderRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.orders[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.s.orders, id)
	return nil
}

func (s *Store) joinOrder(o domain.Order) domain.Order {
	if product, ok := s.products[o.ProductID]; ok {
		o.ProductTitle = product.Title
	}
	if buyer, ok := s.users[o.BuyerID]; ok {
		o.BuyerName, o.BuyerEmail = buyer.Name, buyer.Email
	}
	return o
}
