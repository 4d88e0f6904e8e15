// internal/repositories/errors.go
package repositories

import "errors"

// ErrRecordNotFound is returned by writes whose filter matched nothing.
var ErrRecordNotFound = errors.New("record not found")
