// Package state models the external account data the interpreter's
// WorldState collaborator exposes: addresses, accounts, per-account
// storage, and an in-memory reference implementation of the contract.
package state

import (
	"encoding/hex"
	"fmt"

	"github.com/eth2030/coreintp/word"
)

// AddressLength is the byte width of an Address.
const AddressLength = 20

// Address is a 20-byte account address.
type Address [AddressLength]byte

// AddressFromWord derives an Address from a Word's low 20 bytes
// (big-endian indices 12..32).
func AddressFromWord(w word.Word) Address {
	b := w.Bytes32()
	var a Address
	copy(a[:], b[32-AddressLength:])
	return a
}

// Bytes returns the raw 20 bytes.
func (a Address) Bytes() []byte { return a[:] }

// Hex returns the 40-character lowercase hex encoding, no "0x" prefix.
func (a Address) Hex() string { return hex.EncodeToString(a[:]) }

// String implements fmt.Stringer.
func (a Address) String() string { return a.Hex() }

// IsZero reports whether a is the all-zero address.
func (a Address) IsZero() bool { return a == Address{} }

// AddressFromHex parses a 40-character hex string into an Address.
func AddressFromHex(s string) (Address, error) {
	if len(s) != AddressLength*2 {
		return Address{}, fmt.Errorf("state: address hex must be exactly %d characters, got %d", AddressLength*2, len(s))
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return Address{}, fmt.Errorf("state: invalid address hex: %w", err)
	}
	var a Address
	copy(a[:], b)
	return a, nil
}

// MarshalJSON encodes a as its hex string.
func (a Address) MarshalJSON() ([]byte, error) {
	return []byte(`"` + a.Hex() + `"`), nil
}

// UnmarshalJSON decodes a from a hex string.
func (a *Address) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("state: address must be a JSON string")
	}
	parsed, err := AddressFromHex(s[1 : len(s)-1])
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
