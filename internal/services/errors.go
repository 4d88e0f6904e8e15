// internal/services/errors.go
package services

import (
	"errors"
	"fmt"
)

// Error kinds. Callers classify failures with errors.Is.
var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrAsset      = errors.New("asset error")
	ErrNoChange   = errors.New("no records were modified")
)

// Operation prefixes attached to every coordinator failure.
const (
	opAddProduct        = "error adding product"
	opUpdateProduct     = "error updating product"
	opUpdateStatus      = "error updating product status"
	opDeleteProduct     = "error deleting product"
	opUpdatePromotions  = "error updating product promotions"
	opGetProduct        = "error fetching product"
	opListProducts      = "error listing products"
	opUpdateOrder       = "error updating order"
	opPreviewOrder      = "error previewing order"
	errReferencedOrders = "product is referenced by existing order items"
)

func validationErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func notFoundErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

func conflictErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConflict, fmt.Sprintf(format, args...))
}

func wrapOp(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}
