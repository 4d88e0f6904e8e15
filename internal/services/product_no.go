// internal/services/product_no.go
package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/hearthline/commerce-api/internal/repositories"
	"github.com/hearthline/commerce-api/internal/utils"
)

const (
	productNoDigits   = 4
	productNoAttempts = 10
)

// ProductNoGenerator returns a candidate product number for prefix.
type ProductNoGenerator func(prefix string) (string, error)

// RandomProductNo yields the uppercased prefix followed by four random digits.
func RandomProductNo(prefix string) (string, error) {
	suffix, err := utils.GenerateRandomDigits(productNoDigits)
	if err != nil {
		return "", fmt.Errorf("failed to generate product number: %w", err)
	}
	return strings.ToUpper(prefix) + suffix, nil
}

func nextProductNo(ctx context.Context, tx repositories.LedgerTx, gen ProductNoGenerator, prefix string) (string, error) {
	for attempt := 0; attempt < productNoAttempts; attempt++ {
		candidate, err := gen(prefix)
		if err != nil {
			return "", err
		}
		exists, err := tx.ProductNoExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w: no free product number for prefix %q after %d attempts", ErrConflict, prefix, productNoAttempts)
}
