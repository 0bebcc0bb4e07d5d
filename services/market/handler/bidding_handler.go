package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"memorabilia-market/internal/marketerrors"
	model "memorabilia-market/internal/models"
	"memorabilia-market/services/market/helpers"
	"memorabilia-market/utils"

	"github.com/gin-gonic/gin"
)

//go:generate mockgen -destination=mock_bidding_service.go -package=handler memorabilia-market/services/market/handler BiddingServiceInterface

type BiddingServiceInterface interface {
	PlaceBid(ctx context.Context, productID, userID int64, amount float64) (model.Bid, error)
	GetBidsForProduct(ctx context.Context, productID int64) ([]model.Bid, error)
	GetHighestBid(ctx context.Context, productID int64) (model.Bid, error)
	GetProductsByUser(ctx context.Context, userID int64) ([]model.Product, error)
}

type BiddingHandler struct {
	service BiddingServiceInterface
	now     func() time.Time
}

func NewBiddingHandler(service BiddingServiceInterface) *BiddingHandler {
	return &BiddingHandler{service: service, now: time.Now}
}

// PlaceBidHandler handles POST /api/bids
func (h *BiddingHandler) PlaceBidHandler(c *gin.Context) {
	actor, ok := helpers.CurrentUser(c)
	if !ok {
		helpers.RespondError(c, "PlaceBidHandler", marketerrors.ErrUnauthorized, nil)
		return
	}

	var req helpers.PlaceBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "PlaceBidHandler", err)
		return
	}

	bid, err := h.service.PlaceBid(c.Request.Context(), req.ProductID, actor.UserID, *req.Amount)
	if err != nil {
		helpers.RespondError(c, "PlaceBidHandler", err, map[string]any{
			"product_id": req.ProductID,
			"user_id":    actor.UserID,
			"amount":     *req.Amount,
		})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, bid, "bid placed successfully")
	helpers.LogSuccess("PlaceBidHandler", "bid placed successfully", map[string]any{
		"bid_id":     bid.ID,
		"product_id": bid.ProductID,
		"user_id":    bid.UserID,
		"amount":     bid.Amount,
	})
}

// GetBidsByProductHandler handles GET /api/bids/product/:productId
func (h *BiddingHandler) GetBidsByProductHandler(c *gin.Context) {
	productID, ok := helpers.ParseIDParam(c, "GetBidsByProductHandler", "productId")
	if !ok {
		return
	}

	bids, err := h.service.GetBidsForProduct(c.Request.Context(), productID)
	if err != nil && !errors.Is(err, marketerrors.ErrNoBids) {
		helpers.RespondError(c, "GetBidsByProductHandler", err, map[string]any{"product_id": productID})
		return
	}

	if bids == nil {
		bids = []model.Bid{}
	}

	utils.JSONResponse(c, http.StatusOK, bids, "bids retrieved successfully")
	helpers.LogSuccess("GetBidsByProductHandler", "bids retrieved successfully", map[string]any{
		"product_id": productID,
		"count":      len(bids),
	})
}

// GetHighestBidHandler handles GET /api/bids/highest/:productId
func (h *BiddingHandler) GetHighestBidHandler(c *gin.Context) {
	productID, ok := helpers.ParseIDParam(c, "GetHighestBidHandler", "productId")
	if !ok {
		return
	}

	bid, err := h.service.GetHighestBid(c.Request.Context(), productID)
	if err != nil {
		// no bids -> 404
		if errors.Is(err, marketerrors.ErrNoBids) {
			utils.JSONError(c, http.StatusNotFound, err, "no bids found for product")
			utils.Info("GetHighestBidHandler: no bids found", map[string]any{"product_id": productID})
			return
		}
		helpers.RespondError(c, "GetHighestBidHandler", err, map[string]any{"product_id": productID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, bid, "highest bid retrieved successfully")
	helpers.LogSuccess("GetHighestBidHandler", "highest bid retrieved successfully", map[string]any{
		"bid_id":     bid.ID,
		"product_id": bid.ProductID,
		"amount":     bid.Amount,
	})
}

// GetMyBidProductsHandler handles GET /api/bids/mine
func (h *BiddingHandler) GetMyBidProductsHandler(c *gin.Context) {
	actor, ok := helpers.CurrentUser(c)
	if !ok {
		helpers.RespondError(c, "GetMyBidProductsHandler", marketerrors.ErrUnauthorized, nil)
		return
	}

	products, err := h.service.GetProductsByUser(c.Request.Context(), actor.UserID)
	if err != nil && !errors.Is(err, marketerrors.ErrUserNoBids) {
		helpers.RespondError(c, "GetMyBidProductsHandler", err, map[string]any{"user_id": actor.UserID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.NewProductResponses(products, h.now()), "products retrieved successfully")
	helpers.LogSuccess("GetMyBidProductsHandler", fmt.Sprintf("%d products retrieved", len(products)), map[string]any{
		"user_id": actor.UserID,
	})
}
