package word

import (
	"encoding/json"
	"fmt"

	"github.com/holiman/uint256"
)

// U256 carries the same 256-bit value as Word but serializes as an
// unsigned decimal string rather than fixed-length hex, matching the
// wire format used for account balances.
type U256 Word

// FromWord reinterprets a Word's bit pattern as a U256.
func FromWord(w Word) U256 { return U256(w) }

// Word reinterprets a U256's bit pattern as a Word.
func (u U256) Word() Word { return Word(u) }

// Decimal returns the canonical unsigned decimal string.
func (u U256) Decimal() string { return u.u.Dec() }

// U256FromDecimal parses a canonical decimal integer in [0, 2**256) into
// a U256.
func U256FromDecimal(s string) (U256, error) {
	var ui uint256.Int
	if err := ui.SetFromDecimal(s); err != nil {
		return U256{}, fmt.Errorf("word: invalid decimal string %q: %w", s, err)
	}
	return U256{u: ui}, nil
}

// MarshalJSON encodes u as its decimal string.
func (u U256) MarshalJSON() ([]byte, error) {
	return json.Marshal(u.Decimal())
}

// UnmarshalJSON decodes u from a decimal string.
func (u *U256) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := U256FromDecimal(s)
	if err != nil {
		return err
	}
	*u = parsed
	return nil
}

// String implements fmt.Stringer as the decimal form.
func (u U256) String() string { return u.Decimal() }
