package models

import (
	"time"

	"gorm.io/gorm"
)

// Cart is created lazily on the first read or write for a user and is
// never deleted; checkout only clears its items. The unique index keeps
// it one per user.
type Cart struct {
	gorm.Model
	UserID int        `json:"userId" gorm:"uniqueIndex"`
	Items  []CartItem `json:"items" gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
}

// CartItem snapshots name, price and image at the moment the product was
// added. Adding the same product again merges quantities instead of
// creating a second row.
type CartItem struct {
	gorm.Model
	CartID          int       `json:"cartId"`
	ProductId       int       `json:"productId"`
	ProductName     string    `json:"productName"`
	ProductPrice    float64   `json:"productPrice"`
	ProductImageUrl string    `json:"productImageUrl"`
	Quantity        int       `json:"quantity"`
	AddedAt         time.Time `json:"addedAt"`
}

// CartTotals are derived on every read, never stored.
type CartTotals struct {
	TotalItems int     `json:"totalItems"`
	TotalPrice float64 `json:"totalPrice"`
}

func (c *Cart) Totals() CartTotals {
	totals := CartTotals{}
	for _, item := range c.Items {
		totals.TotalItems += item.Quantity
		totals.TotalPrice += item.ProductPrice * float64(item.Quantity)
	}
	totals.TotalPrice = Round2(totals.TotalPrice)
	return totals
}
