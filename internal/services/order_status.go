// internal/services/order_status.go
package services

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	"github.com/hearthline/commerce-api/internal/models"
)

// Fixed order charges. They are not configurable per order.
var (
	TaxRate     = decimal.RequireFromString("0.06")
	ShippingFee = decimal.RequireFromString("9.99")
)

type OrderTotals struct {
	SubTotal    decimal.Decimal `json:"sub_total"`
	Shipping    decimal.Decimal `json:"shipping"`
	Tax         decimal.Decimal `json:"tax"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

func (t OrderTotals) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		SubTotal    models.Money `json:"sub_total"`
		Shipping    models.Money `json:"shipping"`
		Tax         models.Money `json:"tax"`
		TotalAmount models.Money `json:"total_amount"`
	}{
		SubTotal:    models.Money(t.SubTotal),
		Shipping:    models.Money(t.Shipping),
		Tax:         models.Money(t.Tax),
		TotalAmount: models.Money(t.TotalAmount),
	})
}

// OrderState is the outcome of reducing an order's line items.
type OrderState struct {
	Status models.OrderStatus `json:"order_status"`
	Items  []models.OrderItem `json:"items"`
	Totals OrderTotals        `json:"totals"`
}

type itemCounts struct {
	total       int
	cancelled   int
	backOrdered int
	fulfilled   int
	shipped     int
	other       int
}

func countItems(items []models.OrderItem) itemCounts {
	c := itemCounts{total: len(items)}
	for _, item := range items {
		switch item.FulfillmentStatus {
		case models.FulfillmentCancelled:
			c.cancelled++
		case models.FulfillmentBackOrdered:
			c.backOrdered++
		case models.FulfillmentFulfilled:
			c.fulfilled++
		case models.FulfillmentShipped:
			c.shipped++
			c.other++
		default:
			c.other++
		}
	}
	return c
}

// DeriveOrderStatus is the live reducer. Shipped and delivered orders keep
// their status; otherwise the first matching rule wins: all cancelled, any
// back ordered, any still processing, then ready to ship.
func DeriveOrderStatus(current models.OrderStatus, items []models.OrderItem) models.OrderStatus {
	if current.Terminal() || len(items) == 0 {
		return current
	}

	c := countItems(items)
	allCancelled := c.cancelled == c.total

	switch {
	case allCancelled:
		return models.OrderStatusCancelled
	case c.backOrdered > 0:
		return models.OrderStatusBackOrdered
	case c.other > 0:
		return models.OrderStatusInProcess
	case c.fulfilled > 0 && readyEligible(current):
		return models.OrderStatusReadyToShip
	}
	return current
}

func readyEligible(current models.OrderStatus) bool {
	switch current {
	case models.OrderStatusInProcess, models.OrderStatusCancelled, models.OrderStatusBackOrdered:
		return true
	}
	return false
}

// ResolveSavedStatus applies the persistence-time overrides, evaluated in
// order: all cancelled, all shipped, all back ordered, all fulfilled.
func ResolveSavedStatus(current models.OrderStatus, items []models.OrderItem) models.OrderStatus {
	if len(items) == 0 {
		return current
	}

	c := countItems(items)
	switch {
	case c.cancelled == c.total:
		return models.OrderStatusCancelled
	case c.shipped == c.total:
		return models.OrderStatusShipped
	case c.backOrdered == c.total:
		return models.OrderStatusBackOrdered
	case c.fulfilled == c.total && !current.Terminal():
		return models.OrderStatusReadyToShip
	}
	return current
}

// ComputeTotals zeroes a cancelled order; otherwise it sums non-cancelled
// lines and adds shipping and tax when the subtotal is positive.
func ComputeTotals(status models.OrderStatus, items []models.OrderItem) OrderTotals {
	zero := OrderTotals{
		SubTotal:    decimal.Zero,
		Shipping:    decimal.Zero,
		Tax:         decimal.Zero,
		TotalAmount: decimal.Zero,
	}
	if status == models.OrderStatusCancelled {
		return zero
	}

	subTotal := decimal.Zero
	for _, item := range items {
		if item.FulfillmentStatus == models.FulfillmentCancelled {
			continue
		}
		subTotal = subTotal.Add(item.LineTotal())
	}
	subTotal = subTotal.Round(2)

	if !subTotal.IsPositive() {
		return zero
	}

	tax := subTotal.Add(ShippingFee).Mul(TaxRate).Round(2)
	return OrderTotals{
		SubTotal:    subTotal,
		Shipping:    ShippingFee,
		Tax:         tax,
		TotalAmount: subTotal.Add(tax).Add(ShippingFee),
	}
}

// ReduceOrder runs the live reducer over a copy of items. Moving to
// cancelled forces every line item to cancelled.
func ReduceOrder(current models.OrderStatus, items []models.OrderItem) OrderState {
	out := make([]models.OrderItem, len(items))
	copy(out, items)

	status := DeriveOrderStatus(current, out)
	if status == models.OrderStatusCancelled {
		cancelAll(out)
	}

	return OrderState{
		Status: status,
		Items:  out,
		Totals: ComputeTotals(status, out),
	}
}

// SettleOrder is ReduceOrder followed by the persistence-time overrides.
func SettleOrder(current models.OrderStatus, items []models.OrderItem) OrderState {
	state := ReduceOrder(current, items)

	status := ResolveSavedStatus(state.Status, state.Items)
	if status != state.Status {
		if status == models.OrderStatusCancelled {
			cancelAll(state.Items)
		}
		state.Status = status
		state.Totals = ComputeTotals(status, state.Items)
	}
	return state
}

func cancelAll(items []models.OrderItem) {
	for i := range items {
		items[i].FulfillmentStatus = models.FulfillmentCancelled
	}
}

// Apply copies the reduced state onto order.
func (s OrderState) Apply(order *models.Order) {
	order.OrderStatus = s.Status
	order.Items = s.Items
	order.SubTotal = s.Totals.SubTotal
	order.Shipping = s.Totals.Shipping
	order.Tax = s.Totals.Tax
	order.TotalAmount = s.Totals.TotalAmount
}
