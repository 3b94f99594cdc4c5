package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func GetHome(ctx *gin.Context) {
	message := `Welcome to the Dukani API.

AUTH
- POST "/auth/signup" - Create user account
- POST "/auth/login" - Access user account
- POST "/auth/verify-email/:activationToken" - Activate user account
- POST "/auth/forgot-password" - Request password reset
- POST "/auth/reset-password/:resetToken" - Reset user password

PRODUCTS
- GET "/api/products" - List products (pagination, search, category)
- GET "/api/products/:id" - Get product by ID
- POST "/api/products" - Create product (admin)
- PUT "/api/products/:id" - Update product (admin)
- DELETE "/api/products/:id" - Delete or deactivate product (admin)
- POST "/api/products/specs" - Add product specifications (admin)
- POST "/api/products/images" - Upload product images (admin)

CART
- GET "/api/cart" - Get your cart
- POST "/api/cart/items" - Add item (merges duplicates)
- PUT "/api/cart/items/:productId" - Set item quantity
- DELETE "/api/cart/items/:productId" - Remove item
- DELETE "/api/cart" - Clear cart

ORDERS
- POST "/api/orders" - Checkout your cart
- GET "/api/orders" - List your orders
- GET "/api/orders/:id" - Order detail
- GET "/api/orders/:id/timeline" - Status history
- GET "/api/orders/track/:orderNumber" - Public tracking
- PUT "/api/orders/:id/cancel" - Cancel order
- PUT "/api/orders/:id/return" - Request return
- GET "/api/orders/admin/all" - All orders (admin)
- GET "/api/orders/admin/stats" - Order stats (admin)
- PUT "/api/orders/:id/status" - Update status (admin)`

	ctx.JSON(http.StatusOK, gin.H{
		"message": message,
	})
}
