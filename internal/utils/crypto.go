// internal/utils/crypto.go
package utils

import (
	"crypto/rand"
	"math/big"
)

const digits = "0123456789"

func randomFromCharset(charset string, length int) (string, error) {
	b := make([]byte, length)

	for i := range b {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		b[i] = charset[n.Int64()]
	}

	return string(b), nil
}

// GenerateRandomDigits returns length decimal digits, leading zeros allowed.
func GenerateRandomDigits(length int) (string, error) {
	return randomFromCharset(digits, length)
}
