// internal/services/pricing.go
package services

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/hearthline/commerce-api/internal/models"
)

var hundred = decimal.NewFromInt(100)

// ActivePromotion returns the first promotion in declaration order that is
// active at now, even when a later one would discount more.
func ActivePromotion(promotions []models.Promotion, now time.Time) *models.Promotion {
	for i := range promotions {
		if promotions[i].CurrentlyActive(now) {
			return &promotions[i]
		}
	}
	return nil
}

// DiscountedPrice applies promo to price and rounds to cents. A nil promo
// returns the price unchanged.
func DiscountedPrice(price decimal.Decimal, promo *models.Promotion) decimal.Decimal {
	if promo == nil {
		return price.Round(2)
	}

	value := decimal.NewFromFloat(promo.DiscountValue)
	var discounted decimal.Decimal
	switch promo.DiscountType {
	case models.DiscountTypePercentage:
		discounted = price.Mul(decimal.NewFromInt(1).Sub(value.Div(hundred)))
	case models.DiscountTypeFlat:
		discounted = price.Sub(value)
	default:
		discounted = price
	}

	if discounted.IsNegative() {
		discounted = decimal.Zero
	}
	return discounted.Round(2)
}

func validatePromotions(promotions []models.Promotion) error {
	for i, p := range promotions {
		switch p.DiscountType {
		case models.DiscountTypePercentage:
			if p.DiscountValue > 100 {
				return validationErr("promotion %d: percentage discount cannot exceed 100", i)
			}
		case models.DiscountTypeFlat:
		default:
			return validationErr("promotion %d: unknown discount type %q", i, p.DiscountType)
		}
		if p.DiscountValue < 0 {
			return validationErr("promotion %d: discount value cannot be negative", i)
		}
		if !p.EndDate.After(p.StartDate) {
			return validationErr("promotion %d: end date must be after start date", i)
		}
	}
	return nil
}
