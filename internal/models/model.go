package models

import "time"

// Canonical order statuses offered to admins
const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusCompleted  = "completed"
	OrderStatusCancelled  = "cancelled"
)

// OrderStatuses lists the canonical statuses in lifecycle order
var OrderStatuses = []string{
	OrderStatusPending,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusCompleted,
	OrderStatusCancelled,
}

// IsCanonicalOrderStatus reports whether status is one of the five known values
func IsCanonicalOrderStatus(status string) bool {
	for _, s := range OrderStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// User represents a marketplace account
type User struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Username  string    `json:"username" gorm:"uniqueIndex;not null"`
	Email     string    `json:"email" gorm:"uniqueIndex;not null"`
	Password  string    `json:"-" gorm:"not null"`
	FullName  string    `json:"fullName"`
	IsAdmin   bool      `json:"isAdmin" gorm:"not null;default:false"`
	CreatedAt time.Time `json:"createdAt"`
}

// Product represents a catalog listing, either fixed-price or auction
type Product struct {
	ID             int64      `json:"id" gorm:"primaryKey;autoIncrement"`
	Name           string     `json:"name" gorm:"not null"`
	Description    string     `json:"description" gorm:"type:text;not null"`
	Price          float64    `json:"price" gorm:"not null"`
	ImageURL       string     `json:"imageUrl" gorm:"column:image_url"`
	CelebrityName  string     `json:"celebrityName" gorm:"not null"`
	IsAuction      bool       `json:"isAuction" gorm:"not null;default:false;index"`
	EndDate        *time.Time `json:"endDate"`
	CharityPercent float64    `json:"charityPercent" gorm:"not null;default:0"`
	CreatedAt      time.Time  `json:"createdAt"`
}

// AuctionEnded reports whether the product's auction end date has passed at now
func (p Product) AuctionEnded(now time.Time) bool {
	return p.IsAuction && p.EndDate != nil && !p.EndDate.After(now)
}

// ProductPatch carries the fields of a partial product update; nil fields keep their value
type ProductPatch struct {
	Name           *string    `json:"name"`
	Description    *string    `json:"description"`
	Price          *float64   `json:"price" binding:"omitempty,gt=0"`
	ImageURL       *string    `json:"imageUrl"`
	CelebrityName  *string    `json:"celebrityName"`
	IsAuction      *bool      `json:"isAuction"`
	EndDate        *time.Time `json:"endDate"`
	CharityPercent *float64   `json:"charityPercent" binding:"omitempty,gte=0,lte=100"`
}

// Apply merges the supplied fields into p
func (patch ProductPatch) Apply(p *Product) {
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.ImageURL != nil {
		p.ImageURL = *patch.ImageURL
	}
	if patch.CelebrityName != nil {
		p.CelebrityName = *patch.CelebrityName
	}
	if patch.IsAuction != nil {
		p.IsAuction = *patch.IsAuction
	}
	if patch.EndDate != nil {
		end := *patch.EndDate
		p.EndDate = &end
	}
	if patch.CharityPercent != nil {
		p.CharityPercent = *patch.CharityPercent
	}
}

// ProductFilter narrows product listings; a nil IsAuction lists everything
type ProductFilter struct {
	IsAuction *bool
}

// Bid represents a user's bid on an auction product. Bids are never mutated.
type Bid struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	ProductID int64     `json:"productId" gorm:"not null;index"`
	UserID    int64     `json:"userId" gorm:"not null;index"`
	Amount    float64   `json:"amount" gorm:"not null"`
	CreatedAt time.Time `json:"createdAt"`
}

// Order represents a checkout; only Status changes after creation
type Order struct {
	ID               int64       `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID           int64       `json:"userId" gorm:"not null;index"`
	Total            float64     `json:"total" gorm:"not null"`
	PaymentReference *string     `json:"paymentReference"`
	Status           string      `json:"status" gorm:"not null;default:pending"`
	CreatedAt        time.Time   `json:"createdAt"`
	Items            []OrderItem `json:"items,omitempty" gorm:"foreignKey:OrderID"`
}

// OrderItem is a line of an order with the price captured at purchase time
type OrderItem struct {
	ID        int64   `json:"id" gorm:"primaryKey;autoIncrement"`
	OrderID   int64   `json:"orderId" gorm:"not null;index"`
	ProductID int64   `json:"productId" gorm:"not null"`
	Price     float64 `json:"price" gorm:"not null"`
	Quantity  int     `json:"quantity" gorm:"not null;default:1"`
}

// OrderFilter narrows order listings; UserID 0 lists every order
type OrderFilter struct {
	UserID int64
}

// Actor identifies the caller of an operation
type Actor struct {
	UserID  int64
	IsAdmin bool
}

// CartLine is a product and quantity submitted for a checkout quote
type CartLine struct {
	ProductID int64
	Quantity  int
}
