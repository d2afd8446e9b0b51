package solanarpc

import (
	"errors"
	"strings"

	"github.com/mr-tron/base58"
)

// PublicKeyLength is the decoded size of a Solana account address.
const PublicKeyLength = 32

// ErrInvalidAddress is returned for strings that are not base58 public keys.
var ErrInvalidAddress = errors.New("solana: invalid address")

// ValidateAddress checks that addr decodes from base58 to a 32-byte key.
func ValidateAddress(addr string) error {
	addr = strings.TrimSpace(addr)
	// base58 keys are 32 to 44 characters long.
	if len(addr) < 32 || len(addr) > 44 {
		return ErrInvalidAddress
	}
	raw, err := base58.Decode(addr)
	if err != nil || len(raw) != PublicKeyLength {
		return ErrInvalidAddress
	}
	return nil
}

// IsValidAddress is ValidateAddress as a predicate.
func IsValidAddress(addr string) bool {
	return ValidateAddress(addr) == nil
}
