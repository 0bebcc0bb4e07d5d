package server

import (
	"net/http"

	"memorabilia-market/internal/auth"
	handler "memorabilia-market/services/market/handler"
	"memorabilia-market/utils"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Services bundles what the router dispatches to
type Services struct {
	Bidding  handler.BiddingServiceInterface
	Catalog  handler.CatalogServiceInterface
	Orders   handler.OrderServiceInterface
	Accounts handler.AccountServiceInterface
	Tokens   *auth.TokenManager
}

// SetupRouter configures all Gin routes for the application
func SetupRouter(svc Services) *gin.Engine {
	router := gin.New() // New router without default middleware for full control over middleware and logging

	router.Use(gin.Recovery())          // recover from panics
	router.Use(RequestIDMiddleware)     // request correlation
	router.Use(RequestLoggerMiddleware) // custom request logging
	router.Use(MetricsMiddleware)

	router.GET("/healthz", func(c *gin.Context) {
		utils.JSONResponse(c, http.StatusOK, gin.H{"status": "ok"}, "healthy")
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	biddingHandler := handler.NewBiddingHandler(svc.Bidding)
	productHandler := handler.NewProductHandler(svc.Catalog)
	orderHandler := handler.NewOrderHandler(svc.Orders)
	authHandler := handler.NewAuthHandler(svc.Accounts)

	api := router.Group("/api")
	api.Use(Authenticate(svc.Tokens))

	authRoutes := api.Group("/auth")
	{
		authRoutes.POST("/register", authHandler.RegisterHandler)
		authRoutes.POST("/login", authHandler.LoginHandler)
		authRoutes.GET("/me", RequireAuth, authHandler.MeHandler)
	}

	products := api.Group("/products")
	{
		products.GET("", productHandler.ListProductsHandler)
		products.GET("/auctions", productHandler.ListAuctionsHandler)
		products.GET("/fixed-price", productHandler.ListFixedPriceHandler)
		products.GET("/:id", productHandler.GetProductHandler)
		products.GET("/:id/countdown", productHandler.CountdownHandler)

		products.POST("", RequireAdmin, productHandler.CreateProductHandler)
		products.PATCH("/:id", RequireAdmin, productHandler.UpdateProductHandler)
		products.DELETE("/:id", RequireAdmin, productHandler.DeleteProductHandler)
	}

	bids := api.Group("/bids")
	{
		bids.GET("/product/:productId", biddingHandler.GetBidsByProductHandler)
		bids.GET("/highest/:productId", biddingHandler.GetHighestBidHandler)
		bids.GET("/mine", RequireAuth, biddingHandler.GetMyBidProductsHandler)
		bids.POST("", RequireAuth, biddingHandler.PlaceBidHandler)
	}

	orders := api.Group("/orders")
	{
		orders.POST("/quote", orderHandler.QuoteHandler)

		orders.GET("", RequireAuth, orderHandler.ListOrdersHandler)
		orders.POST("", RequireAuth, orderHandler.CreateOrderHandler)
		orders.GET("/:id", RequireAuth, orderHandler.GetOrderHandler)
		orders.PATCH("/:id/status", RequireAdmin, orderHandler.UpdateOrderStatusHandler)
	}

	return router
}
