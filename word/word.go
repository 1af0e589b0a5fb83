// Package word implements the 256-bit fixed-width integer that is the
// sole value type carried on the interpreter's operand stack and in
// memory words. Arithmetic is modulo 2**256; a signed (two's-complement)
// view is layered on top of the same bit pattern for the signed opcodes.
package word

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/holiman/uint256"
)

// Word is a 256-bit big-endian value. The zero Word is Zero.
type Word struct {
	u uint256.Int
}

// Zero is the distinguished all-zero Word.
var Zero = Word{}

// One is the Word with value 1, used by several opcode handlers.
var One = FromUint64(1)

// FromUint64 builds a Word from a native uint64.
func FromUint64(v uint64) Word {
	var w Word
	w.u.SetUint64(v)
	return w
}

// FromBytes32 builds a Word from an exact 32-byte big-endian array.
func FromBytes32(b [32]byte) Word {
	var w Word
	w.u.SetBytes32(b[:])
	return w
}

// FromBigEndian builds a Word from up to 32 big-endian bytes, left-padding
// with zeroes as needed. A byte slice longer than 32 bytes is interpreted
// as its low 32 bytes.
func FromBigEndian(b []byte) Word {
	var arr [32]byte
	if len(b) > 32 {
		b = b[len(b)-32:]
	}
	copy(arr[32-len(b):], b)
	return FromBytes32(arr)
}

// Bytes32 returns the 32-byte big-endian representation.
func (w Word) Bytes32() [32]byte {
	return w.u.Bytes32()
}

// Bytes returns the 32-byte big-endian representation as a slice.
func (w Word) Bytes() []byte {
	b := w.u.Bytes32()
	return b[:]
}

// IsZero reports whether w is the all-zero Word.
func (w Word) IsZero() bool { return w.u.IsZero() }

// Eq reports bitwise equality.
func (w Word) Eq(o Word) bool { return w.u.Eq(&o.u) }

// Cmp compares w and o as unsigned 256-bit integers.
func (w Word) Cmp(o Word) int { return w.u.Cmp(&o.u) }

// Add returns w + o, mod 2**256.
func (w Word) Add(o Word) Word { var r Word; r.u.Add(&w.u, &o.u); return r }

// Sub returns w - o, mod 2**256.
func (w Word) Sub(o Word) Word { var r Word; r.u.Sub(&w.u, &o.u); return r }

// Mul returns w * o, mod 2**256.
func (w Word) Mul(o Word) Word { var r Word; r.u.Mul(&w.u, &o.u); return r }

// Div returns the unsigned quotient w / o, or Zero if o is zero. Callers
// needing the "push zero on divide-by-zero" opcode behavior get it for
// free; division by zero is never an error at this layer.
func (w Word) Div(o Word) Word { var r Word; r.u.Div(&w.u, &o.u); return r }

// Mod returns the unsigned remainder w mod o, or Zero if o is zero.
func (w Word) Mod(o Word) Word { var r Word; r.u.Mod(&w.u, &o.u); return r }

// Exp returns w**o, mod 2**256.
func (w Word) Exp(o Word) Word { var r Word; r.u.Exp(&w.u, &o.u); return r }

// AddMod returns ((w + o) mod 2**256) mod m: the sum wraps at 2**256
// first, and only the wrapped result is reduced by m. Returns Zero if
// m is zero.
func (w Word) AddMod(o, m Word) Word {
	return w.Add(o).Mod(m)
}

// MulMod returns ((w * o) mod 2**256) mod m, analogous to AddMod.
func (w Word) MulMod(o, m Word) Word {
	return w.Mul(o).Mod(m)
}

// And returns the bitwise AND of w and o.
func (w Word) And(o Word) Word { var r Word; r.u.And(&w.u, &o.u); return r }

// Or returns the bitwise OR of w and o.
func (w Word) Or(o Word) Word { var r Word; r.u.Or(&w.u, &o.u); return r }

// Xor returns the bitwise XOR of w and o.
func (w Word) Xor(o Word) Word { var r Word; r.u.Xor(&w.u, &o.u); return r }

// Not returns the bitwise complement of w.
func (w Word) Not() Word { var r Word; r.u.Not(&w.u); return r }

// Lsh returns w shifted left by n bits (logical), mod 2**256.
func (w Word) Lsh(n uint) Word { var r Word; r.u.Lsh(&w.u, n); return r }

// Rsh returns w shifted right by n bits (logical).
func (w Word) Rsh(n uint) Word { var r Word; r.u.Rsh(&w.u, n); return r }

// Byte returns the n-th most significant byte of w (0-indexed), or 0 if
// n > 31.
func (w Word) Byte(n uint64) byte {
	if n > 31 {
		return 0
	}
	b := w.u.Bytes32()
	return b[n]
}

// Uint64 returns the low 64 bits of w, discarding the rest.
func (w Word) Uint64() uint64 { return w.u.Uint64() }

// IsNegative reports whether bit 255 -- the sign bit under the
// two's-complement view -- is set.
func (w Word) IsNegative() bool {
	return w.u.Bit(255) == 1
}

// twosComplement returns ~w + 1, unconditionally, computed as 0 - w
// under mod-2**256 arithmetic.
func (w Word) twosComplement() Word {
	var zero uint256.Int
	var r Word
	r.u.Sub(&zero, &w.u)
	return r
}

// Negate implements the source's conditional negation: it produces the
// additive inverse when w is non-negative, and leaves an already-negative
// w untouched. This is deliberately not an unconditional two's-complement
// negation; core/vm's SDIV/SMOD handlers only apply it to the
// magnitudes Abs produces.
func (w Word) Negate() Word {
	if w.IsNegative() {
		return w
	}
	return w.twosComplement()
}

// Abs returns the magnitude of w under the signed view: w unchanged if
// non-negative, otherwise its two's-complement negation.
func (w Word) Abs() Word {
	if w.IsNegative() {
		return w.twosComplement()
	}
	return w
}

// ActualByteSize returns the number of bytes in the minimal big-endian
// representation of w, floored at 1 (so Zero reports 1, matching the
// EXP gas formula's treatment of a zero exponent).
func (w Word) ActualByteSize() int {
	b := w.u.Bytes32()
	for i := 0; i < 31; i++ {
		if b[i] != 0 {
			return 32 - i
		}
	}
	return 1
}

// Hex returns the 64-character lowercase hex encoding, no "0x" prefix.
func (w Word) Hex() string {
	b := w.u.Bytes32()
	return hex.EncodeToString(b[:])
}

// FromHex parses a 64-character hex string (no "0x" prefix) into a Word.
// Length is checked strictly; only [0-9a-fA-F] is accepted.
func FromHex(s string) (Word, error) {
	if len(s) != 64 {
		return Word{}, fmt.Errorf("word: hex string must be exactly 64 characters, got %d", len(s))
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return Word{}, fmt.Errorf("word: invalid hex string: %w", err)
	}
	var arr [32]byte
	copy(arr[:], b)
	return FromBytes32(arr), nil
}

// String implements fmt.Stringer as the hex form, for debugging/logging.
func (w Word) String() string { return w.Hex() }

// MarshalJSON encodes w as its 64-character hex string.
func (w Word) MarshalJSON() ([]byte, error) {
	return json.Marshal(w.Hex())
}

// UnmarshalJSON decodes w from a 64-character hex string.
func (w *Word) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := FromHex(s)
	if err != nil {
		return err
	}
	*w = parsed
	return nil
}
