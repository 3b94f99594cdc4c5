package controllers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/dukani-store/dukani-api/initializers"
	"github.com/dukani-store/dukani-api/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// getOrCreateCart loads the caller's cart, creating an empty one on first
// use. There is exactly one cart per user.
func getOrCreateCart(db *gorm.DB, userId int) (models.Cart, error) {
	var cart models.Cart
	err := db.Preload("Items").Where("user_id = ?", userId).First(&cart).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		cart = models.Cart{UserID: userId}
		err = db.Create(&cart).Error
	}
	return cart, err
}

func cartResponse(cart models.Cart) gin.H {
	return gin.H{"cart": cart, "totals": cart.Totals()}
}

func GetCart(ctx *gin.Context) {
	cart, err := getOrCreateCart(initializers.DB, ctx.GetInt("userId"))
	if err != nil {
		log.Println("Database error fetching cart:", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to fetch cart")
		return
	}
	sendJSONResponse(ctx, http.StatusOK, cartResponse(cart))
}

// AddCartItem puts a product in the cart, snapshotting its name, price and
// image. Adding a product that is already present merges quantities.
func AddCartItem(ctx *gin.Context) {
	var body struct {
		ProductId int `json:"productId" binding:"required"`
		Quantity  int `json:"quantity" binding:"required,min=1"`
	}
	if err := ctx.ShouldBindJSON(&body); err != nil {
		sendValidationError(ctx, err)
		return
	}

	var product models.Product
	if err := initializers.DB.Preload("Images").First(&product, body.ProductId).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			sendErrorResponse(ctx, http.StatusNotFound, "Product not found")
		} else {
			log.Println("Database error fetching product:", err)
			sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to fetch product")
		}
		return
	}
	if !product.Active {
		sendErrorResponse(ctx, http.StatusBadRequest, product.Name+" is no longer available")
		return
	}

	cart, err := getOrCreateCart(initializers.DB, ctx.GetInt("userId"))
	if err != nil {
		log.Println("Database error fetching cart:", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to fetch cart")
		return
	}

	var existing models.CartItem
	err = initializers.DB.Where("cart_id = ? AND product_id = ?", cart.ID, body.ProductId).First(&existing).Error
	switch {
	case err == nil:
		existing.Quantity += body.Quantity
		if err := initializers.DB.Save(&existing).Error; err != nil {
			log.Println("Cart item update error:", err)
			sendErrorResponse(ctx, http.StatusInternalServerError, "Unable to update cart item quantity")
			return
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		imageUrl := ""
		if len(product.Images) > 0 {
			imageUrl = product.Images[0].Url
		}
		item := models.CartItem{
			CartID:          int(cart.ID),
			ProductId:       body.ProductId,
			ProductName:     product.Name,
			ProductPrice:    product.Price,
			ProductImageUrl: imageUrl,
			Quantity:        body.Quantity,
			AddedAt:         time.Now().UTC(),
		}
		if err := initializers.DB.Create(&item).Error; err != nil {
			log.Println("Cart item create error:", err)
			sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to add item to cart")
			return
		}
	default:
		log.Println("Database error fetching cart item:", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, "Unable to fetch cart item")
		return
	}

	cart, err = getOrCreateCart(initializers.DB, ctx.GetInt("userId"))
	if err != nil {
		log.Println("Database error fetching cart:", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to fetch cart")
		return
	}
	sendJSONResponse(ctx, http.StatusOK, cartResponse(cart))
}

// UpdateCartItem sets the quantity of a line item.
func UpdateCartItem(ctx *gin.Context) {
	productId, err := strconv.Atoi(ctx.Param("productId"))
	if err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, "Invalid product id")
		return
	}

	var body struct {
		Quantity int `json:"quantity" binding:"required,min=1"`
	}
	if err := ctx.ShouldBindJSON(&body); err != nil {
		sendValidationError(ctx, err)
		return
	}

	cart, err := getOrCreateCart(initializers.DB, ctx.GetInt("userId"))
	if err != nil {
		log.Println("Database error fetching cart:", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to fetch cart")
		return
	}

	result := initializers.DB.Model(&models.CartItem{}).
		Where("cart_id = ? AND product_id = ?", cart.ID, productId).
		Update("quantity", body.Quantity)
	if result.Error != nil {
		log.Println("Cart item update error:", result.Error)
		sendErrorResponse(ctx, http.StatusInternalServerError, "Unable to update cart item")
		return
	}
	if result.RowsAffected == 0 {
		sendErrorResponse(ctx, http.StatusNotFound, "Item not in cart")
		return
	}

	cart, _ = getOrCreateCart(initializers.DB, ctx.GetInt("userId"))
	sendJSONResponse(ctx, http.StatusOK, cartResponse(cart))
}

func RemoveCartItem(ctx *gin.Context) {
	productId, err := strconv.Atoi(ctx.Param("productId"))
	if err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, "Invalid product id")
		return
	}

	cart, err := getOrCreateCart(initializers.DB, ctx.GetInt("userId"))
	if err != nil {
		log.Println("Database error fetching cart:", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to fetch cart")
		return
	}

	result := initializers.DB.Where("cart_id = ? AND product_id = ?", cart.ID, productId).Delete(&models.CartItem{})
	if result.Error != nil {
		log.Println("Cart item delete error:", result.Error)
		sendErrorResponse(ctx, http.StatusInternalServerError, "Unable to remove cart item")
		return
	}
	if result.RowsAffected == 0 {
		sendErrorResponse(ctx, http.StatusNotFound, "Item not in cart")
		return
	}

	cart, _ = getOrCreateCart(initializers.DB, ctx.GetInt("userId"))
	sendJSONResponse(ctx, http.StatusOK, cartResponse(cart))
}

// ClearCart removes every item but keeps the cart row.
func ClearCart(ctx *gin.Context) {
	cart, err := getOrCreateCart(initializers.DB, ctx.GetInt("userId"))
	if err != nil {
		log.Println("Database error fetching cart:", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to fetch cart")
		return
	}

	if err := initializers.DB.Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error; err != nil {
		log.Println("Cart clear error:", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, "Unable to clear cart")
		return
	}

	cart.Items = nil
	sendJSONResponse(ctx, http.StatusOK, cartResponse(cart))
}
