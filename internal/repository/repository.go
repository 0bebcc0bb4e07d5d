package repository

//go:generate mockgen -destination=mock_repository.go -package=repository memorabilia-market/internal/repository MarketDB

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"memorabilia-market/internal/marketerrors"
	model "memorabilia-market/internal/models"
)

// ProductStore defines catalog storage
type ProductStore interface {
	ListProducts(ctx context.Context, filter model.ProductFilter) ([]model.Product, error)
	GetProduct(ctx context.Context, id int64) (model.Product, error)
	CreateProduct(ctx context.Context, product *model.Product) error
	UpdateProduct(ctx context.Context, product *model.Product) error
	DeleteProduct(ctx context.Context, id int64) error
}

// BidStore defines the append-only bid ledger
type BidStore interface {
	RecordBid(ctx context.Context, bid *model.Bid) error
	GetBidsByProduct(ctx context.Context, productID int64) ([]model.Bid, error)
	GetHighestBid(ctx context.Context, productID int64) (model.Bid, error)
	GetProductsByUser(ctx context.Context, userID int64) ([]model.Product, error)
}

// OrderStore defines the order ledger
type OrderStore interface {
	CreateOrder(ctx context.Context, order *model.Order) error
	GetOrder(ctx context.Context, id int64) (model.Order, error)
	ListOrders(ctx context.Context, filter model.OrderFilter) ([]model.Order, error)
	UpdateOrderStatus(ctx context.Context, id int64, status string) (model.Order, error)
}

// UserStore defines account storage
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUser(ctx context.Context, id int64) (model.User, error)
	GetUserByUsername(ctx context.Context, username string) (model.User, error)
}

// MarketDB is the full storage capability set used by the services
type MarketDB interface {
	ProductStore
	BidStore
	OrderStore
	UserStore
}

var _ MarketDB = (*MemoryRepo)(nil)

// MemoryRepo is a concurrency-safe in-memory implementation of MarketDB.
// Identifiers are sequential per entity and owned by the repository.
type MemoryRepo struct {
	mu           sync.RWMutex
	products     map[int64]model.Product
	bids         map[int64][]model.Bid // key: productID -> bids in insertion order
	orders       map[int64]model.Order
	orderItems   map[int64][]model.OrderItem // key: orderID -> items
	users        map[int64]model.User
	userProducts map[int64][]int64 // key: userID -> productIDs the user has bid on

	nextProductID   int64
	nextBidID       int64
	nextOrderID     int64
	nextOrderItemID int64
	nextUserID      int64
}

// NewMemoryRepo creates a new in-memory repository instance
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		products:     make(map[int64]model.Product),
		bids:         make(map[int64][]model.Bid),
		orders:       make(map[int64]model.Order),
		orderItems:   make(map[int64][]model.OrderItem),
		users:        make(map[int64]model.User),
		userProducts: make(map[int64][]int64),
	}
}

func stamp(t *time.Time) {
	if t.IsZero() {
		*t = time.Now().UTC()
	}
}

// ListProducts returns products ordered by id
func (r *MemoryRepo) ListProducts(_ context.Context, filter model.ProductFilter) ([]model.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	products := make([]model.Product, 0, len(r.products))
	for _, p := range r.products {
		if filter.IsAuction != nil && p.IsAuction != *filter.IsAuction {
			continue
		}
		products = append(products, p)
	}
	sort.Slice(products, func(i, j int) bool { return products[i].ID < products[j].ID })
	return products, nil
}

// GetProduct returns a single product
func (r *MemoryRepo) GetProduct(_ context.Context, id int64) (model.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.products[id]
	if !ok {
		return model.Product{}, fmt.Errorf("get product %d: %w", id, marketerrors.ErrProductNotFound)
	}
	return p, nil
}

// CreateProduct assigns an id and stores the product
func (r *MemoryRepo) CreateProduct(_ context.Context, product *model.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextProductID++
	product.ID = r.nextProductID
	stamp(&product.CreatedAt)
	r.products[product.ID] = *product
	return nil
}

// UpdateProduct replaces a stored product
func (r *MemoryRepo) UpdateProduct(_ context.Context, product *model.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[product.ID]; !ok {
		return fmt.Errorf("update product %d: %w", product.ID, marketerrors.ErrProductNotFound)
	}
	r.products[product.ID] = *product
	return nil
}

// DeleteProduct hard-deletes a product. Its bids stay in the ledger.
func (r *MemoryRepo) DeleteProduct(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[id]; !ok {
		return fmt.Errorf("delete product %d: %w", id, marketerrors.ErrProductNotFound)
	}
	delete(r.products, id)
	return nil
}

// RecordBid appends a bid for an existing product
func (r *MemoryRepo) RecordBid(_ context.Context, bid *model.Bid) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[bid.ProductID]; !ok {
		return fmt.Errorf("record bid for product %d: %w", bid.ProductID, marketerrors.ErrProductNotFound)
	}

	r.nextBidID++
	bid.ID = r.nextBidID
	stamp(&bid.CreatedAt)
	r.bids[bid.ProductID] = append(r.bids[bid.ProductID], *bid)

	for _, id := range r.userProducts[bid.UserID] {
		if id == bid.ProductID {
			return nil
		}
	}
	r.userProducts[bid.UserID] = append(r.userProducts[bid.UserID], bid.ProductID)

	return nil
}

// GetBidsByProduct returns all bids for a product, oldest first
func (r *MemoryRepo) GetBidsByProduct(_ context.Context, productID int64) ([]model.Bid, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	bids, ok := r.bids[productID]
	if !ok || len(bids) == 0 {
		return nil, fmt.Errorf("get bids for product %d: %w", productID, marketerrors.ErrNoBids)
	}
	return append([]model.Bid(nil), bids...), nil
}

// GetHighestBid returns the highest bid for a product; ties go to the earliest bid
func (r *MemoryRepo) GetHighestBid(_ context.Context, productID int64) (model.Bid, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	bids, ok := r.bids[productID]
	if !ok || len(bids) == 0 {
		return model.Bid{}, fmt.Errorf("get highest bid for product %d: %w", productID, marketerrors.ErrNoBids)
	}

	return HighestBid(bids), nil
}

// HighestBid picks the bid with the greatest amount, breaking ties by
// createdAt and then id ascending. bids must be non-empty.
func HighestBid(bids []model.Bid) model.Bid {
	highest := bids[0]
	for _, b := range bids[1:] {
		switch {
		case b.Amount > highest.Amount:
			highest = b
		case b.Amount == highest.Amount && b.CreatedAt.Before(highest.CreatedAt):
			highest = b
		case b.Amount == highest.Amount && b.CreatedAt.Equal(highest.CreatedAt) && b.ID < highest.ID:
			highest = b
		}
	}
	return highest
}

// GetProductsByUser returns the products a user has bid on, in first-bid order
func (r *MemoryRepo) GetProductsByUser(_ context.Context, userID int64) ([]model.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	productIDs, ok := r.userProducts[userID]
	if !ok || len(productIDs) == 0 {
		return nil, fmt.Errorf("get products for user %d: %w", userID, marketerrors.ErrUserNoBids)
	}

	products := make([]model.Product, 0, len(productIDs))
	for _, id := range productIDs {
		if p, exists := r.products[id]; exists {
			products = append(products, p)
		}
	}
	return products, nil
}

// CreateOrder stores an order and its items under one lock
func (r *MemoryRepo) CreateOrder(_ context.Context, order *model.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextOrderID++
	order.ID = r.nextOrderID
	stamp(&order.CreatedAt)

	items := make([]model.OrderItem, len(order.Items))
	for i, item := range order.Items {
		r.nextOrderItemID++
		item.ID = r.nextOrderItemID
		item.OrderID = order.ID
		items[i] = item
	}
	order.Items = items

	stored := *order
	stored.Items = nil
	r.orders[order.ID] = stored
	r.orderItems[order.ID] = append([]model.OrderItem(nil), items...)
	return nil
}

// GetOrder returns an order with its items
func (r *MemoryRepo) GetOrder(_ context.Context, id int64) (model.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.orders[id]
	if !ok {
		return model.Order{}, fmt.Errorf("get order %d: %w", id, marketerrors.ErrOrderNotFound)
	}
	o.Items = append([]model.OrderItem(nil), r.orderItems[id]...)
	return o, nil
}

// ListOrders returns orders ordered by id, optionally for one user
func (r *MemoryRepo) ListOrders(_ context.Context, filter model.OrderFilter) ([]model.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	orders := make([]model.Order, 0)
	for id, o := range r.orders {
		if filter.UserID != 0 && o.UserID != filter.UserID {
			continue
		}
		o.Items = append([]model.OrderItem(nil), r.orderItems[id]...)
		orders = append(orders, o)
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].ID < orders[j].ID })
	return orders, nil
}

// UpdateOrderStatus sets the status of an order
func (r *MemoryRepo) UpdateOrderStatus(_ context.Context, id int64, status string) (model.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.orders[id]
	if !ok {
		return model.Order{}, fmt.Errorf("update order %d status: %w", id, marketerrors.ErrOrderNotFound)
	}
	o.Status = status
	r.orders[id] = o

	o.Items = append([]model.OrderItem(nil), r.orderItems[id]...)
	return o, nil
}

// CreateUser stores a user, rejecting duplicate usernames or emails
func (r *MemoryRepo) CreateUser(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Username == user.Username || u.Email == user.Email {
			return fmt.Errorf("create user %s: %w", user.Username, marketerrors.ErrUserExists)
		}
	}

	r.nextUserID++
	user.ID = r.nextUserID
	stamp(&user.CreatedAt)
	r.users[user.ID] = *user
	return nil
}

// GetUser returns a user by id
func (r *MemoryRepo) GetUser(_ context.Context, id int64) (model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return model.User{}, fmt.Errorf("get user %d: %w", id, marketerrors.ErrUserNotFound)
	}
	return u, nil
}

// GetUserByUsername returns a user by username
func (r *MemoryRepo) GetUserByUsername(_ context.Context, username string) (model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Username == username {
			return u, nil
		}
	}
	return model.User{}, fmt.Errorf("get user %q: %w", username, marketerrors.ErrUserNotFound)
}

// AddProduct stores a product as-is, advancing the id counter past it. Intended for seeding and tests.
func (r *MemoryRepo) AddProduct(product model.Product) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stamp(&product.CreatedAt)
	r.products[product.ID] = product
	if product.ID > r.nextProductID {
		r.nextProductID = product.ID
	}
}
