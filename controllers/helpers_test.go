package controllers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dukani-store/dukani-api/initializers"
	"github.com/dukani-store/dukani-api/middlewares"
	"github.com/dukani-store/dukani-api/models"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// setupTestServer wires an in-memory database plus the cart and order
// routes the way main.go does.
func setupTestServer(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	t.Setenv("JWT_SECRET", "test-secret")

	dsn := "file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.ProductImage{},
		&models.ProductSpecs{},
		&models.Cart{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
	))
	initializers.DB = db

	server := gin.New()

	cart := server.Group("/api/cart", middlewares.RequireAuth())
	cart.GET("", GetCart)
	cart.DELETE("", ClearCart)
	cart.POST("/items", AddCartItem)
	cart.PUT("/items/:productId", UpdateCartItem)
	cart.DELETE("/items/:productId", RemoveCartItem)

	orders := server.Group("/api/orders")
	orders.GET("/track/:orderNumber", TrackOrder)
	authed := orders.Group("", middlewares.RequireAuth())
	authed.POST("", CreateOrder)
	authed.GET("", GetMyOrders)
	authed.GET("/:id", GetOrderById)
	authed.GET("/:id/timeline", GetOrderTimeline)
	authed.PUT("/:id/cancel", CancelOrder)
	authed.PUT("/:id/return", ReturnOrder)
	admin := orders.Group("", middlewares.RequireAuth(), middlewares.RequireAdmin())
	admin.GET("/admin/all", GetAllOrders)
	admin.GET("/admin/stats", GetOrderStats)
	admin.PUT("/:id/status", UpdateOrderStatus)

	return server
}

func createTestUser(t *testing.T, username, role string) (models.User, string) {
	t.Helper()
	user := models.User{
		Fullname:         username,
		Username:         username,
		Email:            username + "@example.com",
		Password:         "not-a-real-hash",
		Role:             role,
		AccountActivated: true,
	}
	require.NoError(t, initializers.DB.Create(&user).Error)
	token, err := issueToken(user)
	require.NoError(t, err)
	return user, token
}

func createTestProduct(t *testing.T, name string, price float64, stock int) models.Product {
	t.Helper()
	product := models.Product{
		Brand:       "Acme",
		Name:        name,
		Description: "Test product " + name,
		Price:       price,
		Category:    "misc",
		Stock:       stock,
		Active:      true,
	}
	require.NoError(t, initializers.DB.Create(&product).Error)
	return product
}

func addToCart(t *testing.T, userId int, product models.Product, quantity int) {
	t.Helper()
	cart, err := getOrCreateCart(initializers.DB, userId)
	require.NoError(t, err)
	item := models.CartItem{
		CartID:       int(cart.ID),
		ProductId:    int(product.ID),
		ProductName:  product.Name,
		ProductPrice: product.Price,
		Quantity:     quantity,
		AddedAt:      time.Now().UTC(),
	}
	require.NoError(t, initializers.DB.Create(&item).Error)
}

// createOrderInState plants an order directly, for exercising transitions
// that checkout alone cannot reach.
func createOrderInState(t *testing.T, userId int, product models.Product, quantity int, status models.OrderStatus, paymentStatus models.PaymentStatus) models.Order {
	t.Helper()
	subtotal := models.Round2(product.Price * float64(quantity))
	shipping := models.ShippingFee(subtotal)
	tax := models.TaxOn(subtotal)
	order := models.Order{
		UserID:        userId,
		OrderNumber:   models.GenerateOrderNumber(),
		PaymentMethod: "card",
		PaymentStatus: paymentStatus,
		Subtotal:      subtotal,
		Shipping:      shipping,
		Tax:           tax,
		Total:         models.Round2(subtotal + shipping + tax),
		Currency:      "KES",
		Items: []models.OrderItem{{
			ProductId: int(product.ID),
			Name:      product.Name,
			Price:     product.Price,
			Quantity:  quantity,
		}},
	}
	order.AppendTimeline(models.OrderStatusPending, models.StatusNotes[models.OrderStatusPending], models.ActorSystem)
	if status != models.OrderStatusPending {
		order.AppendTimeline(status, models.StatusNotes[status], models.ActorAdmin)
	}
	require.NoError(t, initializers.DB.Create(&order).Error)
	return order
}

func doRequest(t *testing.T, server *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func checkoutPayload() map[string]any {
	return map[string]any{
		"shippingAddress": map[string]any{
			"name":    "Jane Wanjiku",
			"street":  "12 Biashara Street",
			"city":    "Nairobi",
			"state":   "Nairobi",
			"zip":     "00100",
			"country": "KE",
		},
		"paymentMethod": "card",
	}
}
