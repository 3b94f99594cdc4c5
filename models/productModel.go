package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ProductSpecs struct {
	gorm.Model
	Label     string `json:"label" binding:"required"`
	Value     string `json:"value" binding:"required"`
	ProductID int    `json:"productId" binding:"required"`
}

type ProductImage struct {
	gorm.Model
	Url       string `json:"url" binding:"required"`
	ProductID int    `json:"productId" binding:"required"`
}

// Product supplies price and stock at checkout time. Stock is decremented
// by checkout and restored by customer cancellation; deactivated products
// stay in the catalog for historical orders but cannot be bought.
type Product struct {
	gorm.Model
	Brand          string         `json:"brand" binding:"required"`
	Name           string         `json:"name" binding:"required"`
	Description    string         `json:"description" binding:"required"`
	Price          float64        `json:"price" binding:"required"`
	Category       string         `json:"category" binding:"required"`
	Stock          int            `json:"stock"`
	Active         bool           `json:"active" gorm:"default:true"`
	Colors         datatypes.JSON `json:"colors"`
	Specifications []ProductSpecs `json:"specifications" gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	Images         []ProductImage `json:"images" gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
}
