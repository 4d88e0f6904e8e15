// internal/models/money_test.go
package models

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderJSONUsesTwoDecimalPlaces(t *testing.T) {
	order := Order{
		OrderNo:     "ORD-1",
		SubTotal:    decimal.RequireFromString("30"),
		Shipping:    decimal.RequireFromString("9.99"),
		Tax:         decimal.RequireFromString("2.4"),
		TotalAmount: decimal.RequireFromString("42.39"),
		OrderStatus: OrderStatusInProcess,
		Items: []OrderItem{{
			ProductNo:         "AB1234",
			Quantity:          3,
			PriceWhenOrdered:  decimal.RequireFromString("10"),
			FulfillmentStatus: FulfillmentInProcess,
		}},
	}

	raw, err := json.Marshal(order)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, "30.00", got["sub_total"])
	assert.Equal(t, "9.99", got["shipping"])
	assert.Equal(t, "2.40", got["tax"])
	assert.Equal(t, "42.39", got["total_amount"])
	assert.Equal(t, "ORD-1", got["order_no"])
	assert.Equal(t, "in process", got["order_status"])

	items := got["items"].([]any)
	require.Len(t, items, 1)
	item := items[0].(map[string]any)
	assert.Equal(t, "10.00", item["price_when_ordered"])
	assert.EqualValues(t, 3, item["quantity"])
}

func TestProductJSONUsesTwoDecimalPlaces(t *testing.T) {
	raw, err := json.Marshal(Product{ProductNo: "AB1234", Price: decimal.RequireFromString("49.9")})
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"price":"49.90"`)
	assert.Contains(t, string(raw), `"product_no":"AB1234"`)
}
