package handler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"memorabilia-market/internal/countdown"
	"memorabilia-market/internal/marketerrors"
	model "memorabilia-market/internal/models"
	"memorabilia-market/services/market/helpers"
	"memorabilia-market/utils"

	"github.com/gin-gonic/gin"
)

//go:generate mockgen -destination=mock_catalog_service.go -package=handler memorabilia-market/services/market/handler CatalogServiceInterface

type CatalogServiceInterface interface {
	ListProducts(ctx context.Context, filter model.ProductFilter) ([]model.Product, error)
	GetProduct(ctx context.Context, id int64) (model.Product, error)
	CreateProduct(ctx context.Context, product model.Product) (model.Product, error)
	UpdateProduct(ctx context.Context, id int64, patch model.ProductPatch) (model.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
}

type ProductHandler struct {
	service CatalogServiceInterface
	now     func() time.Time
	tick    time.Duration
}

func NewProductHandler(service CatalogServiceInterface) *ProductHandler {
	return &ProductHandler{service: service, now: time.Now, tick: time.Second}
}

// ListProductsHandler handles GET /api/products. An optional isAuction query narrows the list.
func (h *ProductHandler) ListProductsHandler(c *gin.Context) {
	var filter model.ProductFilter
	if raw := c.Query("isAuction"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			utils.JSONError(c, http.StatusBadRequest, fmt.Errorf("invalid isAuction %q", raw), "invalid isAuction filter")
			return
		}
		filter.IsAuction = &v
	}
	h.listProducts(c, "ListProductsHandler", filter)
}

// ListAuctionsHandler handles GET /api/products/auctions
func (h *ProductHandler) ListAuctionsHandler(c *gin.Context) {
	isAuction := true
	h.listProducts(c, "ListAuctionsHandler", model.ProductFilter{IsAuction: &isAuction})
}

// ListFixedPriceHandler handles GET /api/products/fixed-price
func (h *ProductHandler) ListFixedPriceHandler(c *gin.Context) {
	isAuction := false
	h.listProducts(c, "ListFixedPriceHandler", model.ProductFilter{IsAuction: &isAuction})
}

func (h *ProductHandler) listProducts(c *gin.Context, handlerName string, filter model.ProductFilter) {
	products, err := h.service.ListProducts(c.Request.Context(), filter)
	if err != nil {
		helpers.RespondError(c, handlerName, err, nil)
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.NewProductResponses(products, h.now()), "products retrieved successfully")
	helpers.LogSuccess(handlerName, "products retrieved successfully", map[string]any{"count": len(products)})
}

// GetProductHandler handles GET /api/products/:id
func (h *ProductHandler) GetProductHandler(c *gin.Context) {
	id, ok := helpers.ParseIDParam(c, "GetProductHandler", "id")
	if !ok {
		return
	}

	product, err := h.service.GetProduct(c.Request.Context(), id)
	if err != nil {
		helpers.RespondError(c, "GetProductHandler", err, map[string]any{"product_id": id})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.NewProductResponse(product, h.now()), "product retrieved successfully")
}

// CreateProductHandler handles POST /api/products
func (h *ProductHandler) CreateProductHandler(c *gin.Context) {
	var req helpers.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "CreateProductHandler", err)
		return
	}

	product, err := h.service.CreateProduct(c.Request.Context(), req.ToProduct())
	if err != nil {
		helpers.RespondError(c, "CreateProductHandler", err, map[string]any{"name": req.Name})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, helpers.NewProductResponse(product, h.now()), "product created successfully")
	helpers.LogSuccess("CreateProductHandler", "product created successfully", map[string]any{
		"product_id": product.ID,
		"is_auction": product.IsAuction,
	})
}

// UpdateProductHandler handles PATCH /api/products/:id
func (h *ProductHandler) UpdateProductHandler(c *gin.Context) {
	id, ok := helpers.ParseIDParam(c, "UpdateProductHandler", "id")
	if !ok {
		return
	}

	var patch model.ProductPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		helpers.HandleBindError(c, "UpdateProductHandler", err)
		return
	}

	product, err := h.service.UpdateProduct(c.Request.Context(), id, patch)
	if err != nil {
		helpers.RespondError(c, "UpdateProductHandler", err, map[string]any{"product_id": id})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.NewProductResponse(product, h.now()), "product updated successfully")
	helpers.LogSuccess("UpdateProductHandler", "product updated successfully", map[string]any{"product_id": id})
}

// DeleteProductHandler handles DELETE /api/products/:id
func (h *ProductHandler) DeleteProductHandler(c *gin.Context) {
	id, ok := helpers.ParseIDParam(c, "DeleteProductHandler", "id")
	if !ok {
		return
	}

	if err := h.service.DeleteProduct(c.Request.Context(), id); err != nil {
		helpers.RespondError(c, "DeleteProductHandler", err, map[string]any{"product_id": id})
		return
	}

	c.Status(http.StatusNoContent)
	helpers.LogSuccess("DeleteProductHandler", "product deleted", map[string]any{"product_id": id})
}

// CountdownHandler handles GET /api/products/:id/countdown as a server-sent event stream.
// The stream ends after the "Auction Ended" event or when the client disconnects.
func (h *ProductHandler) CountdownHandler(c *gin.Context) {
	id, ok := helpers.ParseIDParam(c, "CountdownHandler", "id")
	if !ok {
		return
	}

	product, err := h.service.GetProduct(c.Request.Context(), id)
	if err != nil {
		helpers.RespondError(c, "CountdownHandler", err, map[string]any{"product_id": id})
		return
	}
	if !product.IsAuction || product.EndDate == nil {
		helpers.RespondError(c, "CountdownHandler", fmt.Errorf("product %d: %w", id, marketerrors.ErrNoEndDate), nil)
		return
	}

	ticks := countdown.Watch(c.Request.Context(), *product.EndDate, h.tick, h.now)

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Stream(func(w io.Writer) bool {
		r, open := <-ticks
		if !open {
			return false
		}
		c.SSEvent("countdown", helpers.NewCountdownEvent(id, r))
		return !r.Ended
	})
}
