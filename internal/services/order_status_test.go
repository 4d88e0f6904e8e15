// internal/services/order_status_test.go
package services

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hearthline/commerce-api/internal/models"
)

func item(qty int, price string, status models.FulfillmentStatus) models.OrderItem {
	return models.OrderItem{
		Quantity:          qty,
		PriceWhenOrdered:  decimal.RequireFromString(price),
		FulfillmentStatus: status,
	}
}

func statuses(list ...models.FulfillmentStatus) []models.OrderItem {
	items := make([]models.OrderItem, len(list))
	for i, s := range list {
		items[i] = item(1, "1.00", s)
	}
	return items
}

func TestDeriveOrderStatus(t *testing.T) {
	const (
		inProcess   = models.FulfillmentInProcess
		backOrdered = models.FulfillmentBackOrdered
		fulfilled   = models.FulfillmentFulfilled
		cancelled   = models.FulfillmentCancelled
		shipped     = models.FulfillmentShipped
	)

	tests := []struct {
		name    string
		current models.OrderStatus
		items   []models.OrderItem
		want    models.OrderStatus
	}{
		{"all cancelled", models.OrderStatusInProcess, statuses(cancelled, cancelled), models.OrderStatusCancelled},
		{"back ordered wins over processing", models.OrderStatusInProcess, statuses(backOrdered, inProcess), models.OrderStatusBackOrdered},
		{"back ordered with cancelled", models.OrderStatusInProcess, statuses(backOrdered, cancelled), models.OrderStatusBackOrdered},
		{"processing", models.OrderStatusReadyToShip, statuses(fulfilled, inProcess), models.OrderStatusInProcess},
		{"shipped item counts as processing", models.OrderStatusInProcess, statuses(fulfilled, shipped), models.OrderStatusInProcess},
		{"ready from in process", models.OrderStatusInProcess, statuses(fulfilled, cancelled), models.OrderStatusReadyToShip},
		{"ready from back ordered", models.OrderStatusBackOrdered, statuses(fulfilled), models.OrderStatusReadyToShip},
		{"ready from cancelled", models.OrderStatusCancelled, statuses(fulfilled), models.OrderStatusReadyToShip},
		{"ready stays ready", models.OrderStatusReadyToShip, statuses(fulfilled), models.OrderStatusReadyToShip},
		{"shipped is sticky", models.OrderStatusShipped, statuses(inProcess), models.OrderStatusShipped},
		{"delivered is sticky", models.OrderStatusDelivered, statuses(cancelled), models.OrderStatusDelivered},
		{"no items keeps status", models.OrderStatusBackOrdered, nil, models.OrderStatusBackOrdered},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveOrderStatus(tt.current, tt.items))
		})
	}
}

func TestResolveSavedStatus(t *testing.T) {
	tests := []struct {
		name    string
		current models.OrderStatus
		items   []models.OrderItem
		want    models.OrderStatus
	}{
		{"all cancelled overrides delivered", models.OrderStatusDelivered, statuses(models.FulfillmentCancelled), models.OrderStatusCancelled},
		{"all shipped", models.OrderStatusInProcess, statuses(models.FulfillmentShipped, models.FulfillmentShipped), models.OrderStatusShipped},
		{"all back ordered", models.OrderStatusInProcess, statuses(models.FulfillmentBackOrdered), models.OrderStatusBackOrdered},
		{"all fulfilled", models.OrderStatusInProcess, statuses(models.FulfillmentFulfilled), models.OrderStatusReadyToShip},
		{"all fulfilled but shipped", models.OrderStatusShipped, statuses(models.FulfillmentFulfilled), models.OrderStatusShipped},
		{"mixed keeps current", models.OrderStatusInProcess, statuses(models.FulfillmentFulfilled, models.FulfillmentCancelled), models.OrderStatusInProcess},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveSavedStatus(tt.current, tt.items))
		})
	}
}

func TestReduceOrderCancellationZeroesTotals(t *testing.T) {
	items := []models.OrderItem{
		item(2, "10", models.FulfillmentCancelled),
		item(1, "5", models.FulfillmentCancelled),
	}

	state := ReduceOrder(models.OrderStatusInProcess, items)

	assert.Equal(t, models.OrderStatusCancelled, state.Status)
	assert.Equal(t, "0.00", state.Totals.SubTotal.StringFixed(2))
	assert.Equal(t, "0.00", state.Totals.Tax.StringFixed(2))
	assert.Equal(t, "0.00", state.Totals.Shipping.StringFixed(2))
	assert.Equal(t, "0.00", state.Totals.TotalAmount.StringFixed(2))
}

func TestReduceOrderRecomputesSubtotal(t *testing.T) {
	state := ReduceOrder(models.OrderStatusInProcess, []models.OrderItem{
		item(3, "10.00", models.FulfillmentInProcess),
	})

	assert.Equal(t, models.OrderStatusInProcess, state.Status)
	assert.Equal(t, "30.00", state.Totals.SubTotal.StringFixed(2))
	assert.Equal(t, "9.99", state.Totals.Shipping.StringFixed(2))
	assert.Equal(t, "2.40", state.Totals.Tax.StringFixed(2))
	assert.Equal(t, "42.39", state.Totals.TotalAmount.StringFixed(2))
}

func TestReduceOrderSkipsCancelledLines(t *testing.T) {
	state := ReduceOrder(models.OrderStatusInProcess, []models.OrderItem{
		item(2, "10.00", models.FulfillmentFulfilled),
		item(1, "5.00", models.FulfillmentCancelled),
	})

	assert.Equal(t, models.OrderStatusReadyToShip, state.Status)
	assert.Equal(t, "20.00", state.Totals.SubTotal.StringFixed(2))
	// (20 + 9.99) * 0.06 = 1.7994
	assert.Equal(t, "1.80", state.Totals.Tax.StringFixed(2))
	assert.Equal(t, "31.79", state.Totals.TotalAmount.StringFixed(2))
}

func TestReduceOrderDoesNotMutateInput(t *testing.T) {
	items := []models.OrderItem{
		item(1, "5.00", models.FulfillmentCancelled),
	}
	first := ReduceOrder(models.OrderStatusInProcess, items)
	second := ReduceOrder(models.OrderStatusInProcess, items)

	assert.Equal(t, first, second)
	assert.Equal(t, models.FulfillmentCancelled, items[0].FulfillmentStatus)
}

func TestComputeTotalsZeroSubtotal(t *testing.T) {
	totals := ComputeTotals(models.OrderStatusInProcess, []models.OrderItem{item(0, "10.00", models.FulfillmentInProcess)})
	assert.True(t, totals.Shipping.IsZero())
	assert.True(t, totals.TotalAmount.IsZero())
}

func TestSettleOrderAllShipped(t *testing.T) {
	state := SettleOrder(models.OrderStatusReadyToShip, []models.OrderItem{
		item(1, "10.00", models.FulfillmentShipped),
		item(1, "10.00", models.FulfillmentShipped),
	})

	require.Equal(t, models.OrderStatusShipped, state.Status)
	assert.Equal(t, "20.00", state.Totals.SubTotal.StringFixed(2))
}

func TestSettleOrderCancelsShippedOrderWhenEveryItemCancelled(t *testing.T) {
	state := SettleOrder(models.OrderStatusShipped, []models.OrderItem{
		item(1, "10.00", models.FulfillmentCancelled),
	})

	assert.Equal(t, models.OrderStatusCancelled, state.Status)
	assert.True(t, state.Totals.TotalAmount.IsZero())
}

func TestOrderTotalsJSONKeepsCents(t *testing.T) {
	state := ReduceOrder(models.OrderStatusInProcess, []models.OrderItem{
		item(3, "10.00", models.FulfillmentInProcess),
	})
	raw, err := json.Marshal(state.Totals)
	require.NoError(t, err)
	assert.JSONEq(t, `{"sub_total":"30.00","shipping":"9.99","tax":"2.40","total_amount":"42.39"}`, string(raw))

	cancelled := ReduceOrder(models.OrderStatusInProcess, []models.OrderItem{
		item(2, "10.00", models.FulfillmentCancelled),
	})
	raw, err = json.Marshal(cancelled.Totals)
	require.NoError(t, err)
	assert.JSONEq(t, `{"sub_total":"0.00","shipping":"0.00","tax":"0.00","total_amount":"0.00"}`, string(raw))
}

func TestProductViewJSONKeepsCents(t *testing.T) {
	raw, err := json.Marshal(ProductView{
		ProductNo:       "AB1234",
		Price:           decimal.RequireFromString("80"),
		DiscountedPrice: decimal.RequireFromString("53.6"),
	})
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, "80.00", got["price"])
	assert.Equal(t, "53.60", got["discountedPrice"])
	assert.Equal(t, "AB1234", got["productNo"])
}
