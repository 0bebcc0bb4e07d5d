package integrationtests

import (
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// Product administration round trip
func TestProductLifecycle(t *testing.T) {
	env := SetupTestEnv(t)
	admin := env.AdminToken(t)
	fan, _ := env.RegisterUser(t, "fan")

	end := time.Now().Add(48 * time.Hour).UTC().Truncate(time.Second)
	body := map[string]any{
		"name":           "Signed Bat",
		"description":    "Final season bat",
		"price":          300,
		"imageUrl":       "/images/bat.jpg",
		"celebrityName":  "Slugger",
		"isAuction":      true,
		"endDate":        end.Format(time.RFC3339),
		"charityPercent": 15,
	}

	_, w := ExecuteRequestAndParse(t, env.Router, http.MethodPost, "/api/products", fan, body)
	require.Equal(t, http.StatusForbidden, w.Code)

	_, w = ExecuteRequestAndParse(t, env.Router, http.MethodPost, "/api/products", "", body)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	created, w := ExecuteRequestAndParse(t, env.Router, http.MethodPost, "/api/products", admin, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	for _, field := range []string{"name", "description", "price", "imageUrl", "celebrityName", "isAuction", "charityPercent"} {
		require.EqualValues(t, body[field], created[field], field)
	}
	require.NotZero(t, created["id"])
	require.NotEmpty(t, created["createdAt"])
	path := "/api/products/" + strconv.Itoa(int(created["id"].(float64)))

	resp, w := ExecuteRequestAndParse(t, env.Router, http.MethodGet, path, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	product := resp["data"].(map[string]any)
	require.Equal(t, false, product["auctionEnded"])
	require.NotEmpty(t, product["timeRemaining"])

	resp, w = ExecuteRequestAndParse(t, env.Router, http.MethodPatch, path, admin, map[string]any{"price": 350})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Equal(t, 350.0, resp["data"].(map[string]any)["price"])
	require.Equal(t, "Signed Bat", resp["data"].(map[string]any)["name"])

	resp, w = ExecuteRequestAndParse(t, env.Router, http.MethodGet, "/api/products/auctions", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, resp["data"], 1)

	resp, w = ExecuteRequestAndParse(t, env.Router, http.MethodGet, "/api/products/fixed-price", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Empty(t, resp["data"])

	_, w = ExecuteRequestAndParse(t, env.Router, http.MethodDelete, path, fan, nil)
	require.Equal(t, http.StatusForbidden, w.Code)

	_, w = ExecuteRequestAndParse(t, env.Router, http.MethodDelete, path, admin, nil)
	require.Equal(t, http.StatusNoContent, w.Code)
	require.Empty(t, w.Body.String())

	_, w = ExecuteRequestAndParse(t, env.Router, http.MethodGet, path, "", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

// Checkout flow with order items and access rules
func TestOrderFlow(t *testing.T) {
	env := SetupTestEnv(t, fixedPriceProduct(1, 100), fixedPriceProduct(2, 50), fixedPriceProduct(3, 20))
	admin := env.AdminToken(t)
	buyer, buyerID := env.RegisterUser(t, "buyer")
	other, _ := env.RegisterUser(t, "other")

	order, w := ExecuteRequestAndParse(t, env.Router, http.MethodPost, "/api/orders", buyer, map[string]any{
		"total":            203,
		"paymentReference": "PAY-123",
		"items": []map[string]any{
			{"productId": 1, "price": 100},
			{"productId": 2, "price": 50, "quantity": 1},
			{"productId": 3, "price": 20, "quantity": 1},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	require.Equal(t, "pending", order["status"])
	require.Equal(t, float64(buyerID), order["userId"])
	orderID := order["id"].(float64)
	items := order["items"].([]any)
	require.Len(t, items, 3)
	for _, it := range items {
		require.Equal(t, orderID, it.(map[string]any)["orderId"])
		require.Equal(t, 1.0, it.(map[string]any)["quantity"])
	}
	path := "/api/orders/" + strconv.Itoa(int(orderID))

	_, w = ExecuteRequestAndParse(t, env.Router, http.MethodGet, path, buyer, nil)
	require.Equal(t, http.StatusOK, w.Code)
	_, w = ExecuteRequestAndParse(t, env.Router, http.MethodGet, path, other, nil)
	require.Equal(t, http.StatusForbidden, w.Code)
	_, w = ExecuteRequestAndParse(t, env.Router, http.MethodGet, path, admin, nil)
	require.Equal(t, http.StatusOK, w.Code)

	resp, w := ExecuteRequestAndParse(t, env.Router, http.MethodGet, "/api/orders", other, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Empty(t, resp["data"])

	resp, w = ExecuteRequestAndParse(t, env.Router, http.MethodGet, "/api/orders", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, resp["data"], 1)

	_, w = ExecuteRequestAndParse(t, env.Router, http.MethodPatch, path+"/status", buyer, map[string]any{"status": "shipped"})
	require.Equal(t, http.StatusForbidden, w.Code)

	resp, w = ExecuteRequestAndParse(t, env.Router, http.MethodPatch, path+"/status", admin, map[string]any{"status": "shipped"})
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "shipped", resp["data"].(map[string]any)["status"])

	_, w = ExecuteRequestAndParse(t, env.Router, http.MethodPost, "/api/orders", "", map[string]any{"total": 1})
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

// Quote uses live catalog prices
func TestQuote(t *testing.T) {
	env := SetupTestEnv(t, fixedPriceProduct(1, 100))

	resp, w := ExecuteRequestAndParse(t, env.Router, http.MethodPost, "/api/orders/quote", "", map[string]any{
		"items": []map[string]any{{"productId": 1, "quantity": 2}},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data := resp["data"].(map[string]any)
	require.Equal(t, 200.0, data["subtotal"])
	require.Equal(t, 16.0, data["tax"])
	require.Equal(t, 25.0, data["shipping"])
	require.Equal(t, 241.0, data["total"])
}

// Account endpoints
func TestAccounts(t *testing.T) {
	env := SetupTestEnv(t)
	token, id := env.RegisterUser(t, "dana")

	_, w := ExecuteRequestAndParse(t, env.Router, http.MethodPost, "/api/auth/register", "", map[string]any{
		"username": "dana", "email": "other@example.com", "password": "password123",
	})
	require.Equal(t, http.StatusConflict, w.Code)

	_, w = ExecuteRequestAndParse(t, env.Router, http.MethodPost, "/api/auth/login", "", map[string]any{"username": "dana", "password": "wrong-pass"})
	require.Equal(t, http.StatusUnauthorized, w.Code)

	resp, w := ExecuteRequestAndParse(t, env.Router, http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	me := resp["data"].(map[string]any)
	require.Equal(t, float64(id), me["id"])
	require.Equal(t, false, me["isAdmin"])
	require.NotContains(t, me, "password")

	_, w = ExecuteRequestAndParse(t, env.Router, http.MethodGet, "/api/auth/me", "not-a-token", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}
