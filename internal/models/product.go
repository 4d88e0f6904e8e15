// internal/models/product.go
package models

import (
	"github.com/shopspring/decimal"
)

// Product is the relational (transactional) representation of a catalog
// product. ProductNo is shared with the catalog document.
type Product struct {
	BaseModel
	ProductNo     string          `json:"product_no" gorm:"size:32;not null;uniqueIndex"`
	ProductName   string          `json:"product_name" gorm:"size:255;not null"`
	Price         decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null"`
	Status        ProductStatus   `json:"status" gorm:"type:varchar(20);default:'active';index"`
	Description   string          `json:"description" gorm:"size:82"`
	CategoryID    uint            `json:"category_id" gorm:"not null;index"`
	SubcategoryID *uint           `json:"subcategory_id" gorm:"index"`
	ThumbnailURL  *string         `json:"thumbnail_url" gorm:"type:text"`

	// Relationships
	Category    Category     `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	Subcategory *Subcategory `json:"subcategory,omitempty" gorm:"foreignKey:SubcategoryID"`
	Inventory   *Inventory   `json:"inventory,omitempty" gorm:"foreignKey:ProductID"`
}

type Inventory struct {
	ID        uint `json:"id" gorm:"primaryKey;autoIncrement"`
	ProductID uint `json:"product_id" gorm:"not null;uniqueIndex"`
	Stock     int  `json:"stock" gorm:"not null;default:0"`
	Reserved  int  `json:"reserved" gorm:"not null;default:0"`
}

func (Inventory) TableName() string {
	return "inventory"
}

// Available is derived and never stored.
func (i Inventory) Available() int {
	return i.Stock - i.Reserved
}

type Category struct {
	BaseModel
	Name          string        `json:"name" gorm:"size:100;not null;uniqueIndex"`
	Subcategories []Subcategory `json:"subcategories,omitempty" gorm:"foreignKey:CategoryID"`
}

type Subcategory struct {
	BaseModel
	Name       string `json:"name" gorm:"size:100;not null;uniqueIndex"`
	CategoryID uint   `json:"category_id" gorm:"not null;index"`
}

type CartItem struct {
	BaseModel
	CartID    uint `json:"cart_id" gorm:"not null;index"`
	ProductID uint `json:"product_id" gorm:"not null;index"`
	Quantity  int  `json:"quantity" gorm:"not null;default:1"`

	Product *Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}
