// internal/utils/crypto_test.go
package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateRandomDigits(t *testing.T) {
	for i := 0; i < 50; i++ {
		s, err := GenerateRandomDigits(4)
		require.NoError(t, err)
		assert.Regexp(t, `^[0-9]{4}$`, s)
	}
}
