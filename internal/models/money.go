// internal/models/money.go
package models

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Money renders an amount as a string with exactly two fractional digits.
type Money decimal.Decimal

func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(decimal.Decimal(m).StringFixed(2))
}

func (o Order) MarshalJSON() ([]byte, error) {
	type order Order
	return json.Marshal(struct {
		order
		SubTotal    Money `json:"sub_total"`
		Shipping    Money `json:"shipping"`
		Tax         Money `json:"tax"`
		TotalAmount Money `json:"total_amount"`
	}{
		order:       order(o),
		SubTotal:    Money(o.SubTotal),
		Shipping:    Money(o.Shipping),
		Tax:         Money(o.Tax),
		TotalAmount: Money(o.TotalAmount),
	})
}

func (i OrderItem) MarshalJSON() ([]byte, error) {
	type orderItem OrderItem
	return json.Marshal(struct {
		orderItem
		PriceWhenOrdered Money `json:"price_when_ordered"`
	}{
		orderItem:        orderItem(i),
		PriceWhenOrdered: Money(i.PriceWhenOrdered),
	})
}

func (p Product) MarshalJSON() ([]byte, error) {
	type product Product
	return json.Marshal(struct {
		product
		Price Money `json:"price"`
	}{
		product: product(p),
		Price:   Money(p.Price),
	})
}
