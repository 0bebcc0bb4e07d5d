package bidding

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"memorabilia-market/internal/locker"
	"memorabilia-market/internal/marketerrors"
	"memorabilia-market/internal/metrics"
	"memorabilia-market/internal/models"
	"memorabilia-market/internal/repository"
)

const defaultLockTimeout = 3 * time.Second

// BiddingService defines the business logic for auction bidding
type BiddingService struct {
	repo        repository.MarketDB
	locks       locker.Locker
	lockTimeout time.Duration
	now         func() time.Time
}

// Option configures a BiddingService
type Option func(*BiddingService)

// WithLocker replaces the default in-process per-product lock
func WithLocker(l locker.Locker) Option {
	return func(s *BiddingService) { s.locks = l }
}

// WithLockTimeout bounds how long PlaceBid waits for the product lock
func WithLockTimeout(d time.Duration) Option {
	return func(s *BiddingService) { s.lockTimeout = d }
}

// WithClock overrides the time source used for end-date checks and bid timestamps
func WithClock(now func() time.Time) Option {
	return func(s *BiddingService) { s.now = now }
}

// NewBiddingService creates a new BiddingService instance
func NewBiddingService(repo repository.MarketDB, opts ...Option) *BiddingService {
	s := &BiddingService{
		repo:        repo,
		locks:       locker.NewKeyedMutex(),
		lockTimeout: defaultLockTimeout,
		now:         func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PlaceBid validates and records a user's bid for an auction product.
// The floor check and the append run under the product's lock.
func (s *BiddingService) PlaceBid(ctx context.Context, productID, userID int64, amount float64) (models.Bid, error) {
	bid, err := s.placeBid(ctx, productID, userID, amount)
	switch {
	case err == nil:
		metrics.BidsTotal.WithLabelValues(metrics.BidAccepted).Inc()
	case isRejection(err):
		metrics.BidsTotal.WithLabelValues(metrics.BidRejected).Inc()
	default:
		metrics.BidsTotal.WithLabelValues(metrics.BidFailed).Inc()
	}
	return bid, err
}

func (s *BiddingService) placeBid(ctx context.Context, productID, userID int64, amount float64) (models.Bid, error) {
	if userID <= 0 {
		return models.Bid{}, fmt.Errorf("service: %w - missing user", marketerrors.ErrUnauthorized)
	}
	if productID <= 0 {
		return models.Bid{}, fmt.Errorf("service: %w - missing productID", marketerrors.ErrInvalidBid)
	}

	lockCtx, cancel := context.WithTimeout(ctx, s.lockTimeout)
	defer cancel()

	waitStart := time.Now()
	unlock, err := s.locks.Lock(lockCtx, productLockKey(productID))
	metrics.BidLockWait.Observe(time.Since(waitStart).Seconds())
	if err != nil {
		return models.Bid{}, fmt.Errorf("service: %w for product %d: %v", marketerrors.ErrLockUnavailable, productID, err)
	}
	defer unlock()

	now := s.now()
	if err := s.validateBid(ctx, productID, amount, now); err != nil {
		return models.Bid{}, err
	}

	bid := models.Bid{
		ProductID: productID,
		UserID:    userID,
		Amount:    amount,
		CreatedAt: now,
	}

	if err := s.repo.RecordBid(ctx, &bid); err != nil {
		return models.Bid{}, fmt.Errorf("service: failed to record bid for product %d by user %d: %w", productID, userID, err)
	}

	return bid, nil
}

// validateBid checks the product and the current floor
func (s *BiddingService) validateBid(ctx context.Context, productID int64, amount float64, now time.Time) error {
	product, err := s.repo.GetProduct(ctx, productID)
	if err != nil {
		return fmt.Errorf("service: failed to load product %d: %w", productID, err)
	}
	if !product.IsAuction {
		return fmt.Errorf("service: %w", marketerrors.ErrNotAuction)
	}
	if product.AuctionEnded(now) {
		return fmt.Errorf("service: %w - ended at %s", marketerrors.ErrAuctionEnded, product.EndDate.UTC().Format(time.RFC3339))
	}

	floor, err := s.currentFloor(ctx, product)
	if err != nil {
		return err
	}
	if amount <= floor {
		return fmt.Errorf("service: %w", &marketerrors.BidTooLowError{Floor: floor})
	}

	return nil
}

// currentFloor is the highest bid amount, or the product price when there are no bids
func (s *BiddingService) currentFloor(ctx context.Context, product models.Product) (float64, error) {
	highest, err := s.repo.GetHighestBid(ctx, product.ID)
	if err == nil {
		return highest.Amount, nil
	}
	if errors.Is(err, marketerrors.ErrNoBids) {
		return product.Price, nil
	}
	return 0, fmt.Errorf("service: failed to check highest bid: %w", err)
}

// GetBidsForProduct returns all bids for a specific product
func (s *BiddingService) GetBidsForProduct(ctx context.Context, productID int64) ([]models.Bid, error) {
	if productID <= 0 {
		return nil, fmt.Errorf("service: %w - invalid product ID", marketerrors.ErrInvalidBid)
	}

	bids, err := s.repo.GetBidsByProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get bids for product %d: %w", productID, err)
	}

	return bids, nil
}

// GetHighestBid returns the highest bid for a specific product
func (s *BiddingService) GetHighestBid(ctx context.Context, productID int64) (models.Bid, error) {
	if productID <= 0 {
		return models.Bid{}, fmt.Errorf("service: %w - invalid product ID", marketerrors.ErrInvalidBid)
	}

	highest, err := s.repo.GetHighestBid(ctx, productID)
	if err != nil {
		return models.Bid{}, fmt.Errorf("service: failed to get highest bid for product %d: %w", productID, err)
	}

	return highest, nil
}

// GetProductsByUser returns all products a user has placed bids on
func (s *BiddingService) GetProductsByUser(ctx context.Context, userID int64) ([]models.Product, error) {
	if userID <= 0 {
		return nil, fmt.Errorf("service: %w - missing user", marketerrors.ErrUnauthorized)
	}

	products, err := s.repo.GetProductsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get products for user %d: %w", userID, err)
	}

	return products, nil
}

func productLockKey(productID int64) string {
	return "product:" + strconv.FormatInt(productID, 10)
}

func isRejection(err error) bool {
	for _, target := range []error{
		marketerrors.ErrInvalidBid,
		marketerrors.ErrBidTooLow,
		marketerrors.ErrNotAuction,
		marketerrors.ErrAuctionEnded,
		marketerrors.ErrProductNotFound,
		marketerrors.ErrUnauthorized,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
