package controllers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/dukani-store/dukani-api/initializers"
	"github.com/dukani-store/dukani-api/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetCartCreatesLazily(t *testing.T) {
	server := setupTestServer(t)
	user, token := createTestUser(t, "jane", "user")

	rec := doRequest(t, server, http.MethodGet, "/api/cart", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var cart models.Cart
	require.NoError(t, initializers.DB.Where("user_id = ?", user.ID).First(&cart).Error)

	body := decodeBody(t, rec)
	totals := body["totals"].(map[string]any)
	assert.Equal(t, 0.0, totals["totalItems"])
	assert.Equal(t, 0.0, totals["totalPrice"])
}

func TestAddCartItemSnapshotsProduct(t *testing.T) {
	server := setupTestServer(t)
	_, token := createTestUser(t, "jane", "user")
	product := createTestProduct(t, "Kettle", 60.00, 10)

	rec := doRequest(t, server, http.MethodPost, "/api/cart/items", token, map[string]any{
		"productId": product.ID,
		"quantity":  2,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var item models.CartItem
	require.NoError(t, initializers.DB.First(&item).Error)
	assert.Equal(t, "Kettle", item.ProductName)
	assert.Equal(t, 60.00, item.ProductPrice)
	assert.Equal(t, 2, item.Quantity)
	assert.False(t, item.AddedAt.IsZero())

	totals := decodeBody(t, rec)["totals"].(map[string]any)
	assert.Equal(t, 2.0, totals["totalItems"])
	assert.Equal(t, 120.0, totals["totalPrice"])
}

func TestAddCartItemMergesDuplicates(t *testing.T) {
	server := setupTestServer(t)
	_, token := createTestUser(t, "jane", "user")
	product := createTestProduct(t, "Kettle", 60.00, 10)

	for range 2 {
		rec := doRequest(t, server, http.MethodPost, "/api/cart/items", token, map[string]any{
			"productId": product.ID,
			"quantity":  1,
		})
		require.Equal(t, http.StatusOK, rec.Code)
	}

	var count int64
	initializers.DB.Model(&models.CartItem{}).Count(&count)
	assert.Equal(t, int64(1), count)

	var item models.CartItem
	require.NoError(t, initializers.DB.First(&item).Error)
	assert.Equal(t, 2, item.Quantity)
}

func TestAddCartItemRejectsZeroQuantity(t *testing.T) {
	server := setupTestServer(t)
	_, token := createTestUser(t, "jane", "user")
	product := createTestProduct(t, "Kettle", 60.00, 10)

	rec := doRequest(t, server, http.MethodPost, "/api/cart/items", token, map[string]any{
		"productId": product.ID,
		"quantity":  0,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAddCartItemRejectsInactiveProduct(t *testing.T) {
	server := setupTestServer(t)
	_, token := createTestUser(t, "jane", "user")
	product := createTestProduct(t, "Kettle", 60.00, 10)
	require.NoError(t, initializers.DB.Model(&product).Update("active", false).Error)

	rec := doRequest(t, server, http.MethodPost, "/api/cart/items", token, map[string]any{
		"productId": product.ID,
		"quantity":  1,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeBody(t, rec)["message"], "Kettle")
}

func TestUpdateCartItemQuantity(t *testing.T) {
	server := setupTestServer(t)
	user, token := createTestUser(t, "jane", "user")
	product := createTestProduct(t, "Kettle", 60.00, 10)
	addToCart(t, int(user.ID), product, 1)

	rec := doRequest(t, server, http.MethodPut, fmt.Sprintf("/api/cart/items/%d", product.ID), token, map[string]any{
		"quantity": 4,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	totals := decodeBody(t, rec)["totals"].(map[string]any)
	assert.Equal(t, 4.0, totals["totalItems"])
	assert.Equal(t, 240.0, totals["totalPrice"])
}

func TestUpdateMissingCartItem(t *testing.T) {
	server := setupTestServer(t)
	_, token := createTestUser(t, "jane", "user")

	rec := doRequest(t, server, http.MethodPut, "/api/cart/items/42", token, map[string]any{
		"quantity": 4,
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRemoveCartItemRecomputesTotals(t *testing.T) {
	server := setupTestServer(t)
	user, token := createTestUser(t, "jane", "user")
	kettle := createTestProduct(t, "Kettle", 60.00, 10)
	mug := createTestProduct(t, "Mug", 8.00, 10)
	addToCart(t, int(user.ID), kettle, 1)
	addToCart(t, int(user.ID), mug, 2)

	rec := doRequest(t, server, http.MethodDelete, fmt.Sprintf("/api/cart/items/%d", kettle.ID), token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	totals := decodeBody(t, rec)["totals"].(map[string]any)
	assert.Equal(t, 2.0, totals["totalItems"])
	assert.Equal(t, 16.0, totals["totalPrice"])
}

func TestClearCartKeepsCartRow(t *testing.T) {
	server := setupTestServer(t)
	user, token := createTestUser(t, "jane", "user")
	product := createTestProduct(t, "Kettle", 60.00, 10)
	addToCart(t, int(user.ID), product, 3)

	rec := doRequest(t, server, http.MethodDelete, "/api/cart", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var itemCount int64
	initializers.DB.Model(&models.CartItem{}).Count(&itemCount)
	assert.Zero(t, itemCount)

	var cartCount int64
	initializers.DB.Model(&models.Cart{}).Where("user_id = ?", user.ID).Count(&cartCount)
	assert.Equal(t, int64(1), cartCount)
}

func TestCartRequiresAuth(t *testing.T) {
	server := setupTestServer(t)

	rec := doRequest(t, server, http.MethodGet, "/api/cart", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
