package marketerrors

import (
	"errors"
	"fmt"
)

// Repository-level errors
var (
	ErrProductNotFound = errors.New("product not found")
	ErrOrderNotFound   = errors.New("order not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrUserExists      = errors.New("username or email already registered")
	ErrNoBids          = errors.New("no bids found for product")
	ErrUserNoBids      = errors.New("user has not placed any bids")
)

// access errors
var (
	ErrUnauthorized       = errors.New("authentication required")
	ErrForbidden          = errors.New("insufficient permissions")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

// business logic errors
var (
	ErrInvalidBid     = errors.New("invalid bid")
	ErrBidTooLow      = errors.New("bid amount too low")
	ErrNotAuction     = errors.New("cannot bid on fixed-price items")
	ErrAuctionEnded   = errors.New("auction has ended")
	ErrNoEndDate      = errors.New("auction has no end date")
	ErrInvalidProduct = errors.New("invalid product")
	ErrInvalidOrder   = errors.New("invalid order")
	ErrInvalidUser    = errors.New("invalid user details")
)

// infrastructure errors
var (
	ErrLockUnavailable = errors.New("bid lock unavailable")
)

// BidTooLowError reports the floor a rejected bid had to exceed
type BidTooLowError struct {
	Floor float64
}

func (e *BidTooLowError) Error() string {
	return fmt.Sprintf("%s: must be higher than %.2f", ErrBidTooLow, e.Floor)
}

// Is lets errors.Is(err, ErrBidTooLow) match
func (e *BidTooLowError) Is(target error) bool {
	return target == ErrBidTooLow
}
