// internal/models/common.go
package models

import (
	"time"
)

// Base model with common fields for relational rows
type BaseModel struct {
	ID        uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Enums
type ProductStatus string

const (
	ProductStatusActive       ProductStatus = "active"
	ProductStatusDiscontinued ProductStatus = "discontinued"
)

func (s ProductStatus) Valid() bool {
	return s == ProductStatusActive || s == ProductStatusDiscontinued
}

// FulfillmentStatus is the per line item state.
type FulfillmentStatus string

const (
	FulfillmentInProcess   FulfillmentStatus = "in process"
	FulfillmentBackOrdered FulfillmentStatus = "back ordered"
	FulfillmentFulfilled   FulfillmentStatus = "fulfilled"
	FulfillmentCancelled   FulfillmentStatus = "cancelled"
	FulfillmentShipped     FulfillmentStatus = "shipped"
	FulfillmentDelivered   FulfillmentStatus = "delivered"
)

func (s FulfillmentStatus) Valid() bool {
	switch s {
	case FulfillmentInProcess, FulfillmentBackOrdered, FulfillmentFulfilled,
		FulfillmentCancelled, FulfillmentShipped, FulfillmentDelivered:
		return true
	}
	return false
}

// OrderStatus is the aggregate state derived from an order's line items.
type OrderStatus string

const (
	OrderStatusInProcess   OrderStatus = "in process"
	OrderStatusReadyToShip OrderStatus = "ready to ship"
	OrderStatusShipped     OrderStatus = "shipped"
	OrderStatusDelivered   OrderStatus = "delivered"
	OrderStatusCancelled   OrderStatus = "cancelled"
	OrderStatusBackOrdered OrderStatus = "back ordered"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusInProcess, OrderStatusReadyToShip, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled, OrderStatusBackOrdered:
		return true
	}
	return false
}

// Terminal reports whether the status is only ever set explicitly.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusShipped || s == OrderStatusDelivered
}

type DiscountType string

const (
	DiscountTypePercentage DiscountType = "percentage"
	DiscountTypeFlat       DiscountType = "flat"
)
