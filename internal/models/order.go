// internal/models/order.go
package models

import (
	"github.com/shopspring/decimal"
)

type Order struct {
	BaseModel
	OrderNo         string          `json:"order_no" gorm:"size:32;not null;uniqueIndex"`
	SubTotal        decimal.Decimal `json:"sub_total" gorm:"type:decimal(10,2);not null;default:0"`
	Shipping        decimal.Decimal `json:"shipping" gorm:"type:decimal(10,2);not null;default:0"`
	Tax             decimal.Decimal `json:"tax" gorm:"type:decimal(10,2);not null;default:0"`
	TotalAmount     decimal.Decimal `json:"total_amount" gorm:"type:decimal(10,2);not null;default:0"`
	City            string          `json:"city" gorm:"size:100"`
	ZipCode         string          `json:"zip_code" gorm:"size:10"`
	Email           string          `json:"email" gorm:"size:255"`
	PhoneNumber     string          `json:"phone_number" gorm:"size:20"`
	StateAbbr       string          `json:"state_abbr" gorm:"size:2"`
	ShippingAddress string          `json:"shipping_address" gorm:"type:text"`
	OrderStatus     OrderStatus     `json:"order_status" gorm:"type:varchar(20);default:'in process';index"`

	Items []OrderItem `json:"items,omitempty" gorm:"foreignKey:OrderID"`
}

type OrderItem struct {
	OrderItemID       uint              `json:"order_item_id" gorm:"column:order_item_id;primaryKey;autoIncrement"`
	OrderID           uint              `json:"order_id" gorm:"not null;index"`
	ProductNo         string            `json:"product_no" gorm:"size:32;not null;index"`
	Quantity          int               `json:"quantity" gorm:"not null"`
	PriceWhenOrdered  decimal.Decimal   `json:"price_when_ordered" gorm:"type:decimal(10,2);not null"`
	FulfillmentStatus FulfillmentStatus `json:"fulfillment_status" gorm:"type:varchar(20);default:'in process'"`
}

// LineTotal is quantity × priceWhenOrdered.
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.PriceWhenOrdered.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
