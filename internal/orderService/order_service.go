package ordering

import (
	"context"
	"fmt"
	"strings"
	"time"

	"memorabilia-market/internal/marketerrors"
	"memorabilia-market/internal/metrics"
	"memorabilia-market/internal/models"
	"memorabilia-market/internal/pricing"
	"memorabilia-market/internal/repository"
	"memorabilia-market/utils"
)

// Store is the persistence the order service needs
type Store interface {
	repository.OrderStore
	repository.ProductStore
}

// Draft is a checkout submission. Item prices and the total are taken as submitted.
type Draft struct {
	Total            float64
	PaymentReference *string
	Status           string
	Items            []models.OrderItem
}

// OrderService creates orders and manages their status
type OrderService struct {
	repo  Store
	rates pricing.Rates
	now   func() time.Time
}

// NewOrderService creates a new OrderService instance
func NewOrderService(repo Store, rates pricing.Rates) *OrderService {
	return &OrderService{
		repo:  repo,
		rates: rates,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// CreateOrder records an order and one item per submitted line.
// Status defaults to pending and quantity defaults to 1.
func (s *OrderService) CreateOrder(ctx context.Context, userID int64, draft Draft) (models.Order, error) {
	if userID <= 0 {
		return models.Order{}, fmt.Errorf("service: %w - missing user", marketerrors.ErrUnauthorized)
	}
	if draft.Total < 0 {
		return models.Order{}, fmt.Errorf("service: %w - negative total", marketerrors.ErrInvalidOrder)
	}

	status := strings.TrimSpace(draft.Status)
	if status == "" {
		status = models.OrderStatusPending
	}

	items := make([]models.OrderItem, 0, len(draft.Items))
	for i, item := range draft.Items {
		if item.ProductID <= 0 {
			return models.Order{}, fmt.Errorf("service: %w - item %d has no productId", marketerrors.ErrInvalidOrder, i)
		}
		if item.Price < 0 {
			return models.Order{}, fmt.Errorf("service: %w - item %d has a negative price", marketerrors.ErrInvalidOrder, i)
		}
		if item.Quantity < 0 {
			return models.Order{}, fmt.Errorf("service: %w - item %d has a negative quantity", marketerrors.ErrInvalidOrder, i)
		}
		if item.Quantity == 0 {
			item.Quantity = 1
		}
		items = append(items, models.OrderItem{
			ProductID: item.ProductID,
			Price:     item.Price,
			Quantity:  item.Quantity,
		})
	}

	order := models.Order{
		UserID:           userID,
		Total:            draft.Total,
		PaymentReference: draft.PaymentReference,
		Status:           status,
		CreatedAt:        s.now(),
		Items:            items,
	}

	if err := s.repo.CreateOrder(ctx, &order); err != nil {
		return models.Order{}, fmt.Errorf("service: failed to create order for user %d: %w", userID, err)
	}

	metrics.OrdersCreated.Inc()
	return order, nil
}

// GetOrder returns an order visible to the actor: its owner or an admin
func (s *OrderService) GetOrder(ctx context.Context, id int64, actor models.Actor) (models.Order, error) {
	if actor.UserID <= 0 {
		return models.Order{}, fmt.Errorf("service: %w - missing user", marketerrors.ErrUnauthorized)
	}
	if id <= 0 {
		return models.Order{}, fmt.Errorf("service: %w - invalid order ID", marketerrors.ErrOrderNotFound)
	}

	order, err := s.repo.GetOrder(ctx, id)
	if err != nil {
		return models.Order{}, fmt.Errorf("service: failed to get order %d: %w", id, err)
	}
	if !actor.IsAdmin && order.UserID != actor.UserID {
		return models.Order{}, fmt.Errorf("service: %w - order %d belongs to another user", marketerrors.ErrForbidden, id)
	}
	return order, nil
}

// ListOrders returns every order for admins and the caller's own orders otherwise
func (s *OrderService) ListOrders(ctx context.Context, actor models.Actor) ([]models.Order, error) {
	if actor.UserID <= 0 {
		return nil, fmt.Errorf("service: %w - missing user", marketerrors.ErrUnauthorized)
	}

	filter := models.OrderFilter{UserID: actor.UserID}
	if actor.IsAdmin {
		filter = models.OrderFilter{}
	}

	orders, err := s.repo.ListOrders(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list orders: %w", err)
	}
	return orders, nil
}

// UpdateOrderStatus sets any non-empty status; transitions are unconstrained
func (s *OrderService) UpdateOrderStatus(ctx context.Context, id int64, status string) (models.Order, error) {
	if id <= 0 {
		return models.Order{}, fmt.Errorf("service: %w - invalid order ID", marketerrors.ErrOrderNotFound)
	}
	status = strings.TrimSpace(status)
	if status == "" {
		return models.Order{}, fmt.Errorf("service: %w - status is required", marketerrors.ErrInvalidOrder)
	}
	label := status
	if !models.IsCanonicalOrderStatus(status) {
		utils.Warn("UpdateOrderStatus: non-canonical status", map[string]any{"order_id": id, "status": status})
		label = metrics.OtherStatus
	}

	order, err := s.repo.UpdateOrderStatus(ctx, id, status)
	if err != nil {
		return models.Order{}, fmt.Errorf("service: failed to update order %d: %w", id, err)
	}

	metrics.OrderStatusChanges.WithLabelValues(label).Inc()
	return order, nil
}

// QuoteCart prices a cart from live product data. It never creates or changes an order.
func (s *OrderService) QuoteCart(ctx context.Context, cart []models.CartLine) (pricing.Summary, error) {
	lines := make([]pricing.Line, 0, len(cart))
	for _, c := range cart {
		if c.Quantity < 0 {
			return pricing.Summary{}, fmt.Errorf("service: %w - negative quantity for product %d", marketerrors.ErrInvalidOrder, c.ProductID)
		}
		product, err := s.repo.GetProduct(ctx, c.ProductID)
		if err != nil {
			return pricing.Summary{}, fmt.Errorf("service: failed to price product %d: %w", c.ProductID, err)
		}
		lines = append(lines, pricing.Line{
			ProductID:      product.ID,
			UnitPrice:      product.Price,
			Quantity:       c.Quantity,
			CharityPercent: product.CharityPercent,
		})
	}
	return pricing.Quote(lines, s.rates), nil
}
