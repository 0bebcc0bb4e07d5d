package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"memorabilia-market/internal/marketerrors"
	model "memorabilia-market/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
)

func newProductRouter(actor *model.Actor, h *ProductHandler) *gin.Engine {
	router := newTestRouter(actor)
	router.GET("/api/products", h.ListProductsHandler)
	router.GET("/api/products/auctions", h.ListAuctionsHandler)
	router.GET("/api/products/fixed-price", h.ListFixedPriceHandler)
	router.GET("/api/products/:id", h.GetProductHandler)
	router.GET("/api/products/:id/countdown", h.CountdownHandler)
	router.POST("/api/products", h.CreateProductHandler)
	router.PATCH("/api/products/:id", h.UpdateProductHandler)
	router.DELETE("/api/products/:id", h.DeleteProductHandler)
	return router
}

func isAuction(v bool) gomock.Matcher {
	return gomock.Eq(model.ProductFilter{IsAuction: &v})
}

// Test the list endpoints pass the right filter
func TestListProductsHandlers(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		filter gomock.Matcher
		status int
	}{
		{name: "all", path: "/api/products", filter: gomock.Eq(model.ProductFilter{}), status: http.StatusOK},
		{name: "auctions", path: "/api/products/auctions", filter: isAuction(true), status: http.StatusOK},
		{name: "fixed_price", path: "/api/products/fixed-price", filter: isAuction(false), status: http.StatusOK},
		{name: "query_filter", path: "/api/products?isAuction=false", filter: isAuction(false), status: http.StatusOK},
		{name: "bad_query_filter", path: "/api/products?isAuction=maybe", status: http.StatusBadRequest},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			mockService := NewMockCatalogServiceInterface(ctrl)
			if tc.filter != nil {
				mockService.EXPECT().ListProducts(gomock.Any(), tc.filter).
					Return([]model.Product{{ID: 1, Name: "Signed guitar"}}, nil)
			}

			w := doRequest(t, newProductRouter(nil, NewProductHandler(mockService)), http.MethodGet, tc.path, nil)
			require.Equal(t, tc.status, w.Code)
			if w.Code == http.StatusOK {
				require.Len(t, decode(t, w)["data"].([]any), 1)
			}
		})
	}
}

// Test GetProductHandler
func TestGetProductHandler(t *testing.T) {
	future := time.Now().Add(49 * time.Hour)

	tests := []struct {
		name           string
		path           string
		mockSetup      func(m *MockCatalogServiceInterface)
		expectedStatus int
		validateData   func(t *testing.T, data map[string]any)
	}{
		{
			name: "auction_with_countdown",
			path: "/api/products/1",
			mockSetup: func(m *MockCatalogServiceInterface) {
				m.EXPECT().GetProduct(gomock.Any(), int64(1)).
					Return(model.Product{ID: 1, Name: "Gown", IsAuction: true, EndDate: &future, CharityPercent: 20}, nil)
			},
			expectedStatus: http.StatusOK,
			validateData: func(t *testing.T, data map[string]any) {
				require.Equal(t, "Gown", data["name"])
				require.Equal(t, 20.0, data["charityPercent"])
				require.Equal(t, false, data["auctionEnded"])
				require.True(t, strings.HasPrefix(data["timeRemaining"].(string), "2d "), data["timeRemaining"])
			},
		},
		{
			name: "fixed_price_has_no_countdown",
			path: "/api/products/2",
			mockSetup: func(m *MockCatalogServiceInterface) {
				m.EXPECT().GetProduct(gomock.Any(), int64(2)).Return(model.Product{ID: 2, Name: "Jersey"}, nil)
			},
			expectedStatus: http.StatusOK,
			validateData: func(t *testing.T, data map[string]any) {
				_, ok := data["timeRemaining"]
				require.False(t, ok)
				require.Nil(t, data["endDate"])
			},
		},
		{
			name: "not_found",
			path: "/api/products/3",
			mockSetup: func(m *MockCatalogServiceInterface) {
				m.EXPECT().GetProduct(gomock.Any(), int64(3)).Return(model.Product{}, marketerrors.ErrProductNotFound)
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "invalid_id",
			path:           "/api/products/-4",
			mockSetup:      func(m *MockCatalogServiceInterface) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			mockService := NewMockCatalogServiceInterface(ctrl)
			tc.mockSetup(mockService)

			w := doRequest(t, newProductRouter(nil, NewProductHandler(mockService)), http.MethodGet, tc.path, nil)
			require.Equal(t, tc.expectedStatus, w.Code)
			if tc.validateData != nil {
				tc.validateData(t, decode(t, w)["data"].(map[string]any))
			}
		})
	}
}

// Test CreateProductHandler
func TestCreateProductHandler(t *testing.T) {
	valid := map[string]any{
		"name":          "Signed guitar",
		"description":   "Played on tour",
		"price":         2500,
		"imageUrl":      "/guitar.jpg",
		"celebrityName": "Jimi Vale",
		"isAuction":     true,
	}
	created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name           string
		body           any
		mockSetup      func(m *MockCatalogServiceInterface)
		expectedStatus int
		expectFields   []string
	}{
		{
			name: "created",
			body: valid,
			mockSetup: func(m *MockCatalogServiceInterface) {
				m.EXPECT().CreateProduct(gomock.Any(), gomock.Any()).DoAndReturn(
					func(_ any, p model.Product) (model.Product, error) {
						p.ID = 11
						p.CreatedAt = created
						return p, nil
					})
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "missing_fields",
			body:           map[string]any{"price": -1, "charityPercent": 150},
			mockSetup:      func(m *MockCatalogServiceInterface) {},
			expectedStatus: http.StatusBadRequest,
			expectFields:   []string{"name", "description", "price", "celebrityName", "charityPercent"},
		},
		{
			name: "service_validation_error",
			body: valid,
			mockSetup: func(m *MockCatalogServiceInterface) {
				m.EXPECT().CreateProduct(gomock.Any(), gomock.Any()).Return(model.Product{}, marketerrors.ErrInvalidProduct)
			},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			mockService := NewMockCatalogServiceInterface(ctrl)
			tc.mockSetup(mockService)

			w := doRequest(t, newProductRouter(admin, NewProductHandler(mockService)), http.MethodPost, "/api/products", tc.body)
			require.Equal(t, tc.expectedStatus, w.Code)
			resp := decode(t, w)

			if w.Code == http.StatusCreated {
				data := resp["data"].(map[string]any)
				require.Equal(t, 11.0, data["id"])
				require.Equal(t, "Signed guitar", data["name"])
				require.Equal(t, "Jimi Vale", data["celebrityName"])
				require.Equal(t, 2500.0, data["price"])
				require.Equal(t, true, data["isAuction"])
				require.Equal(t, created.Format(time.RFC3339), data["createdAt"])
			}

			if tc.expectFields != nil {
				var got []string
				for _, e := range resp["errors"].([]any) {
					got = append(got, e.(map[string]any)["field"].(string))
				}
				require.ElementsMatch(t, tc.expectFields, got)
			}
		})
	}
}

// Test UpdateProductHandler passes only the supplied fields
func TestUpdateProductHandler(t *testing.T) {
	t.Run("partial_patch", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockService := NewMockCatalogServiceInterface(ctrl)
		mockService.EXPECT().UpdateProduct(gomock.Any(), int64(5), gomock.Any()).DoAndReturn(
			func(_ any, _ int64, patch model.ProductPatch) (model.Product, error) {
				require.NotNil(t, patch.Price)
				require.Equal(t, 300.0, *patch.Price)
				require.Nil(t, patch.Name)
				require.Nil(t, patch.EndDate)
				return model.Product{ID: 5, Name: "kept", Price: 300}, nil
			})

		w := doRequest(t, newProductRouter(admin, NewProductHandler(mockService)), http.MethodPatch, "/api/products/5", map[string]any{"price": 300})
		require.Equal(t, http.StatusOK, w.Code)
		data := decode(t, w)["data"].(map[string]any)
		require.Equal(t, "kept", data["name"])
	})

	t.Run("invalid_price", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockService := NewMockCatalogServiceInterface(ctrl)

		w := doRequest(t, newProductRouter(admin, NewProductHandler(mockService)), http.MethodPatch, "/api/products/5", map[string]any{"price": 0})
		require.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("not_found", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockService := NewMockCatalogServiceInterface(ctrl)
		mockService.EXPECT().UpdateProduct(gomock.Any(), int64(6), gomock.Any()).Return(model.Product{}, marketerrors.ErrProductNotFound)

		w := doRequest(t, newProductRouter(admin, NewProductHandler(mockService)), http.MethodPatch, "/api/products/6", map[string]any{"name": "x"})
		require.Equal(t, http.StatusNotFound, w.Code)
	})
}

// Test DeleteProductHandler
func TestDeleteProductHandler(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{name: "deleted", err: nil, status: http.StatusNoContent},
		{name: "missing", err: marketerrors.ErrProductNotFound, status: http.StatusNotFound},
		{name: "failure", err: errors.New("db down"), status: http.StatusInternalServerError},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			mockService := NewMockCatalogServiceInterface(ctrl)
			mockService.EXPECT().DeleteProduct(gomock.Any(), int64(8)).Return(tc.err)

			w := doRequest(t, newProductRouter(admin, NewProductHandler(mockService)), http.MethodDelete, "/api/products/8", nil)
			require.Equal(t, tc.status, w.Code)
			if tc.status == http.StatusNoContent {
				require.Empty(t, w.Body.String())
			}
		})
	}
}

// stepClock advances by step on every read
type stepClock struct {
	mu   sync.Mutex
	t    time.Time
	step time.Duration
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.t
	c.t = c.t.Add(c.step)
	return now
}

// Test CountdownHandler streams until the auction ends
func TestCountdownHandler(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(2 * time.Second)

	t.Run("streams_until_ended", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockService := NewMockCatalogServiceInterface(ctrl)
		mockService.EXPECT().GetProduct(gomock.Any(), int64(1)).
			Return(model.Product{ID: 1, IsAuction: true, EndDate: &end}, nil)

		h := NewProductHandler(mockService)
		h.now = (&stepClock{t: start, step: time.Second}).Now
		h.tick = time.Millisecond

		w := newCloseNotifyRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/products/1/countdown", nil)
		newProductRouter(nil, h).ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		require.Contains(t, w.Header().Get("Content-Type"), "text/event-stream")

		body := w.Body.String()
		require.Equal(t, 3, strings.Count(body, "event:countdown"), body)
		require.Contains(t, body, "00:00:02")
		require.Contains(t, body, "00:00:01")
		require.Contains(t, body, "Auction Ended")
	})

	t.Run("fixed_price_rejected", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockService := NewMockCatalogServiceInterface(ctrl)
		mockService.EXPECT().GetProduct(gomock.Any(), int64(2)).Return(model.Product{ID: 2, IsAuction: false}, nil)

		w := doRequest(t, newProductRouter(nil, NewProductHandler(mockService)), http.MethodGet, "/api/products/2/countdown", nil)
		require.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("auction_without_end_date_rejected", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockService := NewMockCatalogServiceInterface(ctrl)
		mockService.EXPECT().GetProduct(gomock.Any(), int64(3)).Return(model.Product{ID: 3, IsAuction: true}, nil)

		w := doRequest(t, newProductRouter(nil, NewProductHandler(mockService)), http.MethodGet, "/api/products/3/countdown", nil)
		require.Equal(t, http.StatusBadRequest, w.Code)
	})
}
