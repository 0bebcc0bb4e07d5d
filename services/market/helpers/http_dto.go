package helpers

import (
	"time"

	"memorabilia-market/internal/countdown"
	model "memorabilia-market/internal/models"
)

// Request/Response DTOs
type PlaceBidRequest struct {
	ProductID int64    `json:"productId" binding:"required,gt=0"`
	Amount    *float64 `json:"amount" binding:"required"`
}

type CreateProductRequest struct {
	Name           string     `json:"name" binding:"required"`
	Description    string     `json:"description" binding:"required"`
	Price          float64    `json:"price" binding:"required,gt=0"`
	ImageURL       string     `json:"imageUrl"`
	CelebrityName  string     `json:"celebrityName" binding:"required"`
	IsAuction      bool       `json:"isAuction"`
	EndDate        *time.Time `json:"endDate"`
	CharityPercent float64    `json:"charityPercent" binding:"gte=0,lte=100"`
}

// ToProduct converts the request into an unsaved product
func (r CreateProductRequest) ToProduct() model.Product {
	return model.Product{
		Name:           r.Name,
		Description:    r.Description,
		Price:          r.Price,
		ImageURL:       r.ImageURL,
		CelebrityName:  r.CelebrityName,
		IsAuction:      r.IsAuction,
		EndDate:        r.EndDate,
		CharityPercent: r.CharityPercent,
	}
}

type OrderItemRequest struct {
	ProductID int64    `json:"productId" binding:"required,gt=0"`
	Price     *float64 `json:"price" binding:"required,gte=0"`
	Quantity  int      `json:"quantity" binding:"gte=0"`
}

type CreateOrderRequest struct {
	Total            *float64           `json:"total" binding:"required,gte=0"`
	PaymentReference *string            `json:"paymentReference"`
	Status           string             `json:"status"`
	Items            []OrderItemRequest `json:"items" binding:"dive"`
}

// ToItems converts the submitted lines, keeping their prices as given
func (r CreateOrderRequest) ToItems() []model.OrderItem {
	items := make([]model.OrderItem, 0, len(r.Items))
	for _, it := range r.Items {
		items = append(items, model.OrderItem{ProductID: it.ProductID, Price: *it.Price, Quantity: it.Quantity})
	}
	return items
}

type QuoteItemRequest struct {
	ProductID int64 `json:"productId" binding:"required,gt=0"`
	Quantity  int   `json:"quantity" binding:"gte=0"`
}

type QuoteRequest struct {
	Items []QuoteItemRequest `json:"items" binding:"dive"`
}

// ToCart converts the request into cart lines
func (r QuoteRequest) ToCart() []model.CartLine {
	cart := make([]model.CartLine, 0, len(r.Items))
	for _, it := range r.Items {
		cart = append(cart, model.CartLine{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return cart
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=64"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	FullName string `json:"fullName"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// ProductResponse is a product plus its derived countdown fields.
// The countdown fields are present only for auctions with an end date.
type ProductResponse struct {
	model.Product
	TimeRemaining *string `json:"timeRemaining,omitempty"`
	AuctionEnded  *bool   `json:"auctionEnded,omitempty"`
}

// NewProductResponse decorates p with its countdown as of now
func NewProductResponse(p model.Product, now time.Time) ProductResponse {
	resp := ProductResponse{Product: p}
	if p.IsAuction && p.EndDate != nil {
		r := countdown.Until(*p.EndDate, now)
		text := r.String()
		ended := r.Ended
		resp.TimeRemaining = &text
		resp.AuctionEnded = &ended
	}
	return resp
}

// NewProductResponses decorates every product in ps
func NewProductResponses(ps []model.Product, now time.Time) []ProductResponse {
	out := make([]ProductResponse, 0, len(ps))
	for _, p := range ps {
		out = append(out, NewProductResponse(p, now))
	}
	return out
}

// CountdownEvent is one server-sent countdown tick
type CountdownEvent struct {
	ProductID     int64  `json:"productId"`
	Days          int    `json:"days"`
	Hours         int    `json:"hours"`
	Minutes       int    `json:"minutes"`
	Seconds       int    `json:"seconds"`
	TimeRemaining string `json:"timeRemaining"`
	AuctionEnded  bool   `json:"auctionEnded"`
}

// NewCountdownEvent builds the event payload for r
func NewCountdownEvent(productID int64, r countdown.Remaining) CountdownEvent {
	return CountdownEvent{
		ProductID:     productID,
		Days:          r.Days,
		Hours:         r.Hours,
		Minutes:       r.Minutes,
		Seconds:       r.Seconds,
		TimeRemaining: r.String(),
		AuctionEnded:  r.Ended,
	}
}
