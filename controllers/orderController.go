package controllers

import (
	"errors"
	"fmt"
	"log"
	"math"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/dukani-store/dukani-api/initializers"
	"github.com/dukani-store/dukani-api/models"
	"github.com/dukani-store/dukani-api/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Checkout failure reasons. Wrapped with the offending product name where
// one applies.
var (
	errEmptyCart          = errors.New("your cart is empty")
	errProductUnavailable = errors.New("product is no longer available")
	errInsufficientStock  = errors.New("insufficient stock")
)

const deliveryEstimateWindow = 72 * time.Hour

type checkoutRequest struct {
	ShippingAddress models.Address  `json:"shippingAddress" binding:"required"`
	BillingAddress  *models.Address `json:"billingAddress"`
	PaymentMethod   string          `json:"paymentMethod" binding:"required,oneof=card paypal bank_transfer cash_on_delivery"`
	Notes           string          `json:"notes"`
}

// orderView annotates an order with the customer eligibility predicates so
// clients never reimplement the transition rules.
type orderView struct {
	models.Order
	Cancelable bool `json:"cancelable"`
	Returnable bool `json:"returnable"`
}

func newOrderView(order models.Order) orderView {
	return orderView{Order: order, Cancelable: order.Cancelable(), Returnable: order.Returnable()}
}

// CreateOrder turns the caller's cart into an order. The cart read, stock
// decrements, order insert and cart clear all commit or roll back as one
// transaction, so a failed checkout leaves nothing behind.
func CreateOrder(ctx *gin.Context) {
	var req checkoutRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		sendValidationError(ctx, err)
		return
	}

	userId := ctx.GetInt("userId")
	var order models.Order

	err := initializers.DB.Transaction(func(tx *gorm.DB) error {
		var cart models.Cart
		if err := tx.Preload("Items").Where("user_id = ?", userId).First(&cart).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errEmptyCart
			}
			return err
		}
		if len(cart.Items) == 0 {
			return errEmptyCart
		}

		var subtotal float64
		var orderItems []models.OrderItem
		for _, item := range cart.Items {
			var product models.Product
			if err := tx.First(&product, item.ProductId).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("%w: %s", errProductUnavailable, item.ProductName)
				}
				return err
			}
			if !product.Active {
				return fmt.Errorf("%w: %s", errProductUnavailable, product.Name)
			}
			if product.Stock < item.Quantity {
				return fmt.Errorf("%w for %s", errInsufficientStock, product.Name)
			}

			// Conditional decrement; zero rows means a concurrent checkout
			// took the stock between our read and this write.
			result := tx.Model(&models.Product{}).
				Where("id = ? AND stock >= ?", product.ID, item.Quantity).
				Update("stock", gorm.Expr("stock - ?", item.Quantity))
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return fmt.Errorf("%w for %s", errInsufficientStock, product.Name)
			}

			subtotal += product.Price * float64(item.Quantity)
			orderItems = append(orderItems, models.OrderItem{
				ProductId: item.ProductId,
				Name:      product.Name,
				Price:     product.Price,
				Quantity:  item.Quantity,
				ImageUrl:  item.ProductImageUrl,
			})
		}

		subtotal = models.Round2(subtotal)
		shipping := models.ShippingFee(subtotal)
		tax := models.TaxOn(subtotal)
		total := models.Round2(subtotal + shipping + tax)

		billing := req.ShippingAddress
		if req.BillingAddress != nil {
			billing = *req.BillingAddress
		}

		order = models.Order{
			UserID:          userId,
			OrderNumber:     models.GenerateOrderNumber(),
			Items:           orderItems,
			ShippingAddress: datatypes.NewJSONType(req.ShippingAddress),
			BillingAddress:  datatypes.NewJSONType(billing),
			PaymentMethod:   req.PaymentMethod,
			PaymentStatus:   models.PaymentStatusPending,
			Subtotal:        subtotal,
			Tax:             tax,
			Shipping:        shipping,
			Discount:        0,
			Total:           total,
			Currency:        "KES",
			Notes:           req.Notes,
		}
		order.AppendTimeline(models.OrderStatusPending, models.StatusNotes[models.OrderStatusPending], models.ActorSystem)

		if err := tx.Create(&order).Error; err != nil {
			return err
		}
		return tx.Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error
	})

	if err != nil {
		switch {
		case errors.Is(err, errEmptyCart), errors.Is(err, errProductUnavailable), errors.Is(err, errInsufficientStock):
			sendErrorResponse(ctx, http.StatusBadRequest, err.Error())
		default:
			log.Println("Checkout error:", err)
			sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to create order")
		}
		return
	}

	sendOrderConfirmationEmail(userId, order)
	utils.PublishOrderEvent(utils.OrderEvent{
		OrderNumber: order.OrderNumber,
		Status:      string(order.Status),
		Actor:       string(models.ActorSystem),
		Note:        models.StatusNotes[models.OrderStatusPending],
		Timestamp:   time.Now().UTC(),
	})

	sendJSONResponse(ctx, http.StatusCreated, gin.H{"order": newOrderView(order)})
}

func sendOrderConfirmationEmail(userId int, order models.Order) {
	var user models.User
	if err := initializers.DB.First(&user, userId).Error; err != nil {
		log.Println("Could not load user for confirmation email:", err)
		return
	}
	data := utils.EmailData{
		Name:        user.Username,
		Message:     "Thank you for your order! We will let you know as soon as it ships.",
		OrderNumber: order.OrderNumber,
		OrderTotal:  fmt.Sprintf("%s %.2f", order.Currency, order.Total),
	}
	if err := utils.SendEmail(user.Email, "Order confirmation "+order.OrderNumber, data, filepath.Join("templates", "order_confirmation.html")); err != nil {
		log.Println("Error sending order confirmation email:", err)
	}
}

// GetMyOrders lists the caller's orders, newest first, with pagination and
// status filters.
func GetMyOrders(ctx *gin.Context) {
	userId := ctx.GetInt("userId")

	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "15"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 15
	}
	offset := (page - 1) * limit

	query := initializers.DB.Preload("Items").Where("user_id = ?", userId)
	countQuery := initializers.DB.Model(&models.Order{}).Where("user_id = ?", userId)

	if status := ctx.Query("status"); status != "" {
		parsed, err := models.ParseOrderStatus(status)
		if err != nil {
			sendErrorResponse(ctx, http.StatusBadRequest, err.Error())
			return
		}
		query = query.Where("status = ?", parsed)
		countQuery = countQuery.Where("status = ?", parsed)
	}
	if paymentStatus := ctx.Query("paymentStatus"); paymentStatus != "" {
		parsed, err := models.ParsePaymentStatus(paymentStatus)
		if err != nil {
			sendErrorResponse(ctx, http.StatusBadRequest, err.Error())
			return
		}
		query = query.Where("payment_status = ?", parsed)
		countQuery = countQuery.Where("payment_status = ?", parsed)
	}

	var orders []models.Order
	if result := query.Order("created_at desc").Limit(limit).Offset(offset).Find(&orders); result.Error != nil {
		log.Println("Database error fetching orders:", result.Error)
		sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to fetch orders")
		return
	}

	var count int64
	countQuery.Count(&count)
	totalPages := int(math.Ceil(float64(count) / float64(limit)))

	views := make([]orderView, 0, len(orders))
	for _, order := range orders {
		views = append(views, newOrderView(order))
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{
		"orders": views,
		"metadata": gin.H{
			"total":       count,
			"currentPage": page,
			"limit":       limit,
			"hasPrevPage": page > 1,
			"hasNextPage": totalPages > page,
		},
	})
}

// findOwnOrder resolves an order by id for the calling user. A missing
// order and someone else's order are deliberately the same 404.
func findOwnOrder(ctx *gin.Context, preloadItems bool) (models.Order, bool) {
	var order models.Order
	orderId, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		sendErrorResponse(ctx, http.StatusNotFound, "Order not found")
		return order, false
	}

	query := initializers.DB.Where("id = ? AND user_id = ?", orderId, ctx.GetInt("userId"))
	if preloadItems {
		query = query.Preload("Items")
	}
	if err := query.First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			sendErrorResponse(ctx, http.StatusNotFound, "Order not found")
		} else {
			log.Println("Database error fetching order:", err)
			sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to fetch order")
		}
		return order, false
	}
	return order, true
}

func GetOrderById(ctx *gin.Context) {
	order, ok := findOwnOrder(ctx, true)
	if !ok {
		return
	}
	sendJSONResponse(ctx, http.StatusOK, gin.H{"order": newOrderView(order)})
}

func GetOrderTimeline(ctx *gin.Context) {
	order, ok := findOwnOrder(ctx, false)
	if !ok {
		return
	}
	sendJSONResponse(ctx, http.StatusOK, gin.H{
		"orderNumber": order.OrderNumber,
		"status":      order.Status,
		"timeline":    order.Timeline,
		"cancelable":  order.Cancelable(),
		"returnable":  order.Returnable(),
	})
}

// TrackOrder is the public read by order number. The delivery estimate is
// anchored to the shipped timeline entry, not the query time, so polling
// does not move it.
func TrackOrder(ctx *gin.Context) {
	orderNumber := ctx.Param("orderNumber")

	var order models.Order
	if err := initializers.DB.Where("order_number = ?", orderNumber).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			sendErrorResponse(ctx, http.StatusNotFound, "Order not found")
		} else {
			log.Println("Database error tracking order:", err)
			sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to fetch order")
		}
		return
	}

	response := gin.H{
		"orderNumber":    order.OrderNumber,
		"status":         order.Status,
		"paymentStatus":  order.PaymentStatus,
		"trackingNumber": order.TrackingNumber,
		"timeline":       order.Timeline,
		"createdAt":      order.CreatedAt,
	}
	if order.Status == models.OrderStatusShipped {
		if shippedAt, ok := order.ShippedAt(); ok {
			response["estimatedDelivery"] = shippedAt.Add(deliveryEstimateWindow)
		}
	}

	sendJSONResponse(ctx, http.StatusOK, response)
}

// CancelOrder lets a customer cancel while the order is still pending or
// processing. Stock goes back in the same transaction as the status write.
func CancelOrder(ctx *gin.Context) {
	order, ok := findOwnOrder(ctx, true)
	if !ok {
		return
	}

	if !order.Cancelable() {
		sendErrorResponse(ctx, http.StatusBadRequest, "Order can no longer be cancelled")
		return
	}

	err := initializers.DB.Transaction(func(tx *gorm.DB) error {
		for _, item := range order.Items {
			result := tx.Model(&models.Product{}).
				Where("id = ?", item.ProductId).
				Update("stock", gorm.Expr("stock + ?", item.Quantity))
			if result.Error != nil {
				return result.Error
			}
		}
		order.AppendTimeline(models.OrderStatusCancelled, "Order cancelled by customer", models.ActorCustomer)
		return tx.Model(&order).Updates(map[string]any{
			"status":   order.Status,
			"timeline": order.Timeline,
		}).Error
	})
	if err != nil {
		log.Println("Order cancellation error:", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to cancel order")
		return
	}

	utils.PublishOrderEvent(utils.OrderEvent{
		OrderNumber: order.OrderNumber,
		Status:      string(order.Status),
		Actor:       string(models.ActorCustomer),
		Note:        "Order cancelled by customer",
		Timestamp:   time.Now().UTC(),
	})

	sendJSONResponse(ctx, http.StatusOK, gin.H{"order": newOrderView(order)})
}

// ReturnOrder records a return request for a delivered, paid order. Stock
// is not restored here; returned goods re-enter stock when the warehouse
// receives them.
func ReturnOrder(ctx *gin.Context) {
	order, ok := findOwnOrder(ctx, true)
	if !ok {
		return
	}

	if !order.Returnable() {
		sendErrorResponse(ctx, http.StatusBadRequest, "Order is not eligible for return")
		return
	}

	order.AppendTimeline(models.OrderStatusReturned, "Return requested by customer", models.ActorCustomer)
	if err := initializers.DB.Model(&order).Updates(map[string]any{
		"status":   order.Status,
		"timeline": order.Timeline,
	}).Error; err != nil {
		log.Println("Order return error:", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to request return")
		return
	}

	utils.PublishOrderEvent(utils.OrderEvent{
		OrderNumber: order.OrderNumber,
		Status:      string(order.Status),
		Actor:       string(models.ActorCustomer),
		Note:        "Return requested by customer",
		Timestamp:   time.Now().UTC(),
	})

	sendJSONResponse(ctx, http.StatusOK, gin.H{"order": newOrderView(order)})
}

// GetAllOrders is the admin listing across all customers.
func GetAllOrders(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "15"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 15
	}
	offset := (page - 1) * limit

	sortOrder := ctx.DefaultQuery("sort", "desc")
	if sortOrder != "asc" && sortOrder != "desc" {
		sortOrder = "desc"
	}

	query := initializers.DB.Preload("Items")
	countQuery := initializers.DB.Model(&models.Order{})

	if status := ctx.Query("status"); status != "" {
		parsed, err := models.ParseOrderStatus(status)
		if err != nil {
			sendErrorResponse(ctx, http.StatusBadRequest, err.Error())
			return
		}
		query = query.Where("status = ?", parsed)
		countQuery = countQuery.Where("status = ?", parsed)
	}
	if paymentStatus := ctx.Query("paymentStatus"); paymentStatus != "" {
		parsed, err := models.ParsePaymentStatus(paymentStatus)
		if err != nil {
			sendErrorResponse(ctx, http.StatusBadRequest, err.Error())
			return
		}
		query = query.Where("payment_status = ?", parsed)
		countQuery = countQuery.Where("payment_status = ?", parsed)
	}
	if search := ctx.Query("search"); search != "" {
		query = query.Where("order_number LIKE ?", "%"+search+"%")
		countQuery = countQuery.Where("order_number LIKE ?", "%"+search+"%")
	}

	var orders []models.Order
	if result := query.Order("created_at " + sortOrder).Limit(limit).Offset(offset).Find(&orders); result.Error != nil {
		log.Println("Database error fetching orders:", result.Error)
		sendErrorResponse(ctx, http.StatusInternalServerError, "Unable to fetch orders")
		return
	}

	var count int64
	countQuery.Count(&count)
	totalPages := math.Ceil(float64(count) / float64(limit))

	sendJSONResponse(ctx, http.StatusOK, gin.H{
		"orders": orders,
		"metadata": gin.H{
			"total":       count,
			"currentPage": page,
			"limit":       limit,
			"hasPrevPage": page > 1,
			"hasNextPage": int(totalPages) > page,
		},
	})
}

// UpdateOrderStatus is the admin transition endpoint. Status changes are
// validated against the admin transition table; payment status and
// tracking number may be updated with or without a status change.
func UpdateOrderStatus(ctx *gin.Context) {
	var body struct {
		Status         string `json:"status"`
		PaymentStatus  string `json:"paymentStatus"`
		TrackingNumber string `json:"trackingNumber"`
		Note           string `json:"note"`
	}
	if err := ctx.ShouldBindJSON(&body); err != nil {
		sendValidationError(ctx, err)
		return
	}
	if body.Status == "" && body.PaymentStatus == "" && body.TrackingNumber == "" {
		sendErrorResponse(ctx, http.StatusBadRequest, "Nothing to update")
		return
	}

	orderId, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		sendErrorResponse(ctx, http.StatusNotFound, "Order not found")
		return
	}

	var order models.Order
	if err := initializers.DB.First(&order, orderId).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			sendErrorResponse(ctx, http.StatusNotFound, "Order not found")
		} else {
			log.Println("Database error fetching order:", err)
			sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to fetch order")
		}
		return
	}

	updates := map[string]any{}
	statusChanged := false
	var note string

	if body.Status != "" {
		newStatus, err := models.ParseOrderStatus(body.Status)
		if err != nil {
			sendErrorResponse(ctx, http.StatusBadRequest, err.Error())
			return
		}
		if !models.CanTransition(models.ActorAdmin, order.Status, newStatus) {
			sendErrorResponse(ctx, http.StatusBadRequest,
				fmt.Sprintf("Cannot move order from %s to %s", order.Status, newStatus))
			return
		}
		note = body.Note
		if note == "" {
			note = models.StatusNotes[newStatus]
		}
		order.AppendTimeline(newStatus, note, models.ActorAdmin)
		updates["status"] = order.Status
		updates["timeline"] = order.Timeline
		statusChanged = true
	}
	if body.PaymentStatus != "" {
		newPaymentStatus, err := models.ParsePaymentStatus(body.PaymentStatus)
		if err != nil {
			sendErrorResponse(ctx, http.StatusBadRequest, err.Error())
			return
		}
		order.PaymentStatus = newPaymentStatus
		updates["payment_status"] = newPaymentStatus
	}
	if body.TrackingNumber != "" {
		order.TrackingNumber = body.TrackingNumber
		updates["tracking_number"] = body.TrackingNumber
	}

	if err := initializers.DB.Model(&order).Updates(updates).Error; err != nil {
		log.Println("Order status update error:", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to update order")
		return
	}

	if statusChanged {
		utils.PublishOrderEvent(utils.OrderEvent{
			OrderNumber: order.OrderNumber,
			Status:      string(order.Status),
			Actor:       string(models.ActorAdmin),
			Note:        note,
			Timestamp:   time.Now().UTC(),
		})
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{"order": newOrderView(order)})
}

// GetOrderStats powers the admin dashboard counters.
func GetOrderStats(ctx *gin.Context) {
	var totalOrders, openOrders int64
	var revenue float64

	if err := initializers.DB.Model(&models.Order{}).Count(&totalOrders).Error; err != nil {
		log.Println("Order stats error:", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to compute order stats")
		return
	}
	initializers.DB.Model(&models.Order{}).
		Where("status NOT IN ?", []models.OrderStatus{
			models.OrderStatusDelivered, models.OrderStatusCancelled, models.OrderStatusReturned,
		}).
		Count(&openOrders)
	initializers.DB.Model(&models.Order{}).
		Where("payment_status = ?", models.PaymentStatusPaid).
		Select("COALESCE(SUM(total), 0)").
		Scan(&revenue)

	sendJSONResponse(ctx, http.StatusOK, gin.H{
		"totalOrders": totalOrders,
		"openOrders":  openOrders,
		"paidRevenue": models.Round2(revenue),
	})
}
