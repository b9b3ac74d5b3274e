package helpers

import (
	"crypto/rand"
	"encoding/hex"
	"math/big"
)

// GenerateResetToken returns an opaque hex token with n bytes of entropy.
// Callers pass 32 for the 256-bit password-reset tokens.
func GenerateResetToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// GenerateAccountNumber returns a random 10-digit account number with a
// non-zero leading digit. Uniqueness is enforced at insert time; callers
// retry on conflict.
func GenerateAccountNumber() (string, error) {
	// range [1000000000, 9999999999]
	n, err := rand.Int(rand.Reader, big.NewInt(9_000_000_000))
	if err != nil {
		return "", err
	}
	return n.Add(n, big.NewInt(1_000_000_000)).String(), nil
}
