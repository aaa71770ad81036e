package discovery

import (
	"fmt"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

// ValidateAddress checks that addr is a well-formed Solana address:
// base58 text decoding to exactly 32 bytes.
func ValidateAddress(addr string) error {
	if addr == "" {
		return fmt.Errorf("empty address")
	}

	decoded, err := base58.Decode(addr)
	if err != nil {
		return fmt.Errorf("invalid base58 address %q: %w", addr, err)
	}
	if len(decoded) != 32 {
		return fmt.Errorf("address %q decodes to %d bytes, want 32", addr, len(decoded))
	}

	return nil
}

// IsProgramDerived reports whether a valid address lies off the ed25519
// curve. Program derived addresses have no private key and are
// guaranteed off-curve; keypair-owned accounts are on-curve.
func IsProgramDerived(addr string) bool {
	decoded, err := base58.Decode(addr)
	if err != nil || len(decoded) != 32 {
		return false
	}
	return !isOnCurve(decoded)
}

func isOnCurve(point []byte) bool {
	if len(point) != 32 {
		return false
	}
	_, err := new(edwards25519.Point).SetBytes(point)
	return err == nil
}
