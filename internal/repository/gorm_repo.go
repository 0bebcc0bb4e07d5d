package repository

import (
	"context"
	"errors"
	"fmt"

	"memorabilia-market/internal/marketerrors"
	model "memorabilia-market/internal/models"

	"gorm.io/gorm"
)

var _ MarketDB = (*GormRepo)(nil)

// GormRepo is a SQL implementation of MarketDB. Ids are database auto-increments.
type GormRepo struct {
	db *gorm.DB
}

// NewGormRepo creates a repository over an opened and migrated database
func NewGormRepo(db *gorm.DB) *GormRepo {
	return &GormRepo{db: db}
}

func notFound(err error, target error, format string, args ...any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf(format+": %w", append(args, target)...)
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

func (r *GormRepo) ListProducts(ctx context.Context, filter model.ProductFilter) ([]model.Product, error) {
	q := r.db.WithContext(ctx).Order("id")
	if filter.IsAuction != nil {
		q = q.Where("is_auction = ?", *filter.IsAuction)
	}

	var products []model.Product
	if err := q.Find(&products).Error; err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

func (r *GormRepo) GetProduct(ctx context.Context, id int64) (model.Product, error) {
	var p model.Product
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return model.Product{}, notFound(err, marketerrors.ErrProductNotFound, "get product %d", id)
	}
	return p, nil
}

func (r *GormRepo) CreateProduct(ctx context.Context, product *model.Product) error {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return fmt.Errorf("create product: %w", err)
	}
	return nil
}

func (r *GormRepo) UpdateProduct(ctx context.Context, product *model.Product) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.Product
		if err := tx.Select("id").First(&existing, product.ID).Error; err != nil {
			return notFound(err, marketerrors.ErrProductNotFound, "update product %d", product.ID)
		}
		if err := tx.Save(product).Error; err != nil {
			return fmt.Errorf("update product %d: %w", product.ID, err)
		}
		return nil
	})
}

func (r *GormRepo) DeleteProduct(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&model.Product{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete product %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("delete product %d: %w", id, marketerrors.ErrProductNotFound)
	}
	return nil
}

func (r *GormRepo) RecordBid(ctx context.Context, bid *model.Bid) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p model.Product
		if err := tx.Select("id").First(&p, bid.ProductID).Error; err != nil {
			return notFound(err, marketerrors.ErrProductNotFound, "record bid for product %d", bid.ProductID)
		}
		if err := tx.Create(bid).Error; err != nil {
			return fmt.Errorf("record bid for product %d: %w", bid.ProductID, err)
		}
		return nil
	})
}

func (r *GormRepo) GetBidsByProduct(ctx context.Context, productID int64) ([]model.Bid, error) {
	var bids []model.Bid
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("created_at ASC").Order("id ASC").
		Find(&bids).Error
	if err != nil {
		return nil, fmt.Errorf("get bids for product %d: %w", productID, err)
	}
	if len(bids) == 0 {
		return nil, fmt.Errorf("get bids for product %d: %w", productID, marketerrors.ErrNoBids)
	}
	return bids, nil
}

func (r *GormRepo) GetHighestBid(ctx context.Context, productID int64) (model.Bid, error) {
	var bid model.Bid
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("amount DESC").Order("created_at ASC").Order("id ASC").
		First(&bid).Error
	if err != nil {
		return model.Bid{}, notFound(err, marketerrors.ErrNoBids, "get highest bid for product %d", productID)
	}
	return bid, nil
}

func (r *GormRepo) GetProductsByUser(ctx context.Context, userID int64) ([]model.Product, error) {
	var productIDs []int64
	err := r.db.WithContext(ctx).Model(&model.Bid{}).
		Select("product_id").
		Where("user_id = ?", userID).
		Group("product_id").
		Order("MIN(id)").
		Pluck("product_id", &productIDs).Error
	if err != nil {
		return nil, fmt.Errorf("get products for user %d: %w", userID, err)
	}
	if len(productIDs) == 0 {
		return nil, fmt.Errorf("get products for user %d: %w", userID, marketerrors.ErrUserNoBids)
	}

	var found []model.Product
	if err := r.db.WithContext(ctx).Where("id IN ?", productIDs).Find(&found).Error; err != nil {
		return nil, fmt.Errorf("get products for user %d: %w", userID, err)
	}

	byID := make(map[int64]model.Product, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}
	products := make([]model.Product, 0, len(found))
	for _, id := range productIDs {
		if p, ok := byID[id]; ok {
			products = append(products, p)
		}
	}
	return products, nil
}

// CreateOrder inserts the order and its items in one transaction
func (r *GormRepo) CreateOrder(ctx context.Context, order *model.Order) error {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return fmt.Errorf("create order: %w", err)
	}
	return nil
}

func (r *GormRepo) GetOrder(ctx context.Context, id int64) (model.Order, error) {
	var o model.Order
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		First(&o, id).Error
	if err != nil {
		return model.Order{}, notFound(err, marketerrors.ErrOrderNotFound, "get order %d", id)
	}
	return o, nil
}

func (r *GormRepo) ListOrders(ctx context.Context, filter model.OrderFilter) ([]model.Order, error) {
	q := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Order("id")
	if filter.UserID != 0 {
		q = q.Where("user_id = ?", filter.UserID)
	}

	orders := make([]model.Order, 0)
	if err := q.Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

func (r *GormRepo) UpdateOrderStatus(ctx context.Context, id int64, status string) (model.Order, error) {
	res := r.db.WithContext(ctx).Model(&model.Order{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return model.Order{}, fmt.Errorf("update order %d status: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return model.Order{}, fmt.Errorf("update order %d status: %w", id, marketerrors.ErrOrderNotFound)
	}
	return r.GetOrder(ctx, id)
}

func (r *GormRepo) CreateUser(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		err := tx.Model(&model.User{}).
			Where("username = ? OR email = ?", user.Username, user.Email).
			Count(&count).Error
		if err != nil {
			return fmt.Errorf("create user %s: %w", user.Username, err)
		}
		if count > 0 {
			return fmt.Errorf("create user %s: %w", user.Username, marketerrors.ErrUserExists)
		}

		if err := tx.Create(user).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fmt.Errorf("create user %s: %w", user.Username, marketerrors.ErrUserExists)
			}
			return fmt.Errorf("create user %s: %w", user.Username, err)
		}
		return nil
	})
}

func (r *GormRepo) GetUser(ctx context.Context, id int64) (model.User, error) {
	var u model.User
	if err := r.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return model.User{}, notFound(err, marketerrors.ErrUserNotFound, "get user %d", id)
	}
	return u, nil
}

func (r *GormRepo) GetUserByUsername(ctx context.Context, username string) (model.User, error) {
	var u model.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&u).Error; err != nil {
		return model.User{}, notFound(err, marketerrors.ErrUserNotFound, "get user %q", username)
	}
	return u, nil
}
