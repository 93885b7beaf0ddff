package services

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"
)

// codeSpan covers [100000, 999999], so a generated code always has six
// digits and never a leading zero.
const (
	codeFloor = 100000
	codeSpan  = 900000
)

// GenerateCode returns a 6-digit numeric code drawn uniformly from a
// cryptographically secure source.
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeSpan))
	if err != nil {
		return "", fmt.Errorf("failed to generate code: %w", err)
	}
	return strconv.FormatInt(n.Int64()+codeFloor, 10), nil
}
