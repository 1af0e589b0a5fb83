package vm

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/eth2030/coreintp/word"
)

// run is a small test helper: build a context over code with a generous
// gas budget (unless the test wants to probe OutOfGas) and execute it.
func run(code []byte, gas uint64) *ExecutionContext {
	return Run(NewExecutionContext(code, gas))
}

func topOf(t *testing.T, ctx *ExecutionContext) word.Word {
	t.Helper()
	v, err := ctx.Stack.Peek()
	if err != nil {
		t.Fatalf("Peek() on result stack: %v", err)
	}
	return v
}

// Scenario 1: PUSH1 1; PUSH32 2^256-1; ADD -> top = 0.
func TestE2EAddWraps(t *testing.T) {
	maxWord, _ := hex.DecodeString(strings.Repeat("ff", 32))
	code := append([]byte{0x60, 0x01, 0x7f}, maxWord...)
	code = append(code, 0x01)

	ctx := run(code, 100000)
	if ctx.State != Success {
		t.Fatalf("state = %v, want Success", ctx.State)
	}
	if top := topOf(t, ctx); !top.IsZero() {
		t.Errorf("top = %s, want 0", top.Hex())
	}
}

// Scenario 2: PUSH1 0x0a; PUSH1 0x01; SUB -> top = 2^256-9.
func TestE2ESubWraps(t *testing.T) {
	code := []byte{0x60, 0x0a, 0x60, 0x01, 0x03}
	ctx := run(code, 100000)
	want := strings.Repeat("ff", 31) + "f7"
	if top := topOf(t, ctx); top.Hex() != want {
		t.Errorf("top = %s, want %s", top.Hex(), want)
	}
}

// Scenario 3: PUSH32 2^255; PUSH1 2; MUL -> top = 0.
func TestE2EMulWraps(t *testing.T) {
	half, _ := hex.DecodeString("80" + strings.Repeat("00", 31))
	code := append([]byte{0x7f}, half...)
	code = append(code, 0x60, 0x02, 0x02)

	ctx := run(code, 100000)
	if top := topOf(t, ctx); !top.IsZero() {
		t.Errorf("top = %s, want 0", top.Hex())
	}
}

// Scenario 4: PUSH32 -2; PUSH32 -2; SDIV -> top = 1.
func TestE2ESdivNegByNeg(t *testing.T) {
	negTwo, _ := hex.DecodeString(strings.Repeat("ff", 31) + "fe")
	code := append([]byte{0x7f}, negTwo...)
	code = append(code, 0x7f)
	code = append(code, negTwo...)
	code = append(code, 0x05)

	ctx := run(code, 100000)
	if top := topOf(t, ctx); top.Uint64() != 1 {
		t.Errorf("top = %s, want 1", top.Hex())
	}
}

// Scenario 5: PUSH1 3; PUSH32 -7; SMOD -> top = 2^256-1.
func TestE2ESmodNegative(t *testing.T) {
	negSeven, _ := hex.DecodeString(strings.Repeat("ff", 31) + "f9")
	code := []byte{0x60, 0x03, 0x7f}
	code = append(code, negSeven...)
	code = append(code, 0x07)

	ctx := run(code, 100000)
	want := strings.Repeat("ff", 32)
	if top := topOf(t, ctx); top.Hex() != want {
		t.Errorf("top = %s, want %s", top.Hex(), want)
	}
}

// Scenario 6: PUSH1 3; PUSH1 2; EXP -> top = 8, used_gas = 66.
func TestE2EExp(t *testing.T) {
	code := []byte{0x60, 0x03, 0x60, 0x02, 0x0a}
	ctx := run(code, 100000)
	if top := topOf(t, ctx); top.Uint64() != 8 {
		t.Errorf("top = %d, want 8", top.Uint64())
	}
	if ctx.UsedGas != 66 {
		t.Errorf("used_gas = %d, want 66", ctx.UsedGas)
	}
}

// Scenario 7: PUSH1 0x80; PUSH1 0x40; MSTORE -> memory length 96,
// last byte = 0x80, used_gas = 18.
func TestE2EMstore(t *testing.T) {
	code := []byte{0x60, 0x80, 0x60, 0x40, 0x52}
	ctx := run(code, 100000)
	if ctx.Memory.Len() != 96 {
		t.Errorf("memory Len() = %d, want 96", ctx.Memory.Len())
	}
	if got := ctx.Memory.Data()[95]; got != 0x80 {
		t.Errorf("memory[95] = 0x%x, want 0x80", got)
	}
	if ctx.UsedGas != 18 {
		t.Errorf("used_gas = %d, want 18", ctx.UsedGas)
	}
}

// Scenario 8: PUSH1 0x80; PUSH1 0x40; MSTORE; PUSH1 0x40; MLOAD ->
// top = 128, used_gas = 24.
func TestE2EMstoreThenMload(t *testing.T) {
	code := []byte{0x60, 0x80, 0x60, 0x40, 0x52, 0x60, 0x40, 0x51}
	ctx := run(code, 100000)
	if top := topOf(t, ctx); top.Uint64() != 128 {
		t.Errorf("top = %d, want 128", top.Uint64())
	}
	if ctx.UsedGas != 24 {
		t.Errorf("used_gas = %d, want 24", ctx.UsedGas)
	}
}

// Scenario 9: store "test" at 0x40, KECCAK256 of the 4 bytes at 0x5c ->
// top = keccak256("test"), used_gas = 60.
func TestE2EKeccak256(t *testing.T) {
	code := []byte{
		0x63, 't', 'e', 's', 't', // PUSH4 "test"
		0x60, 0x40, // PUSH1 0x40
		0x52,       // MSTORE
		0x60, 0x04, // PUSH1 0x04
		0x60, 0x5c, // PUSH1 0x5c
		0x20, // KECCAK256
	}
	ctx := run(code, 100000)
	want := "9c22ff5f21f0b81b113e63f7db6da94fedef11b2119b4088b89664fb9a3cb658"
	if top := topOf(t, ctx); top.Hex() != want {
		t.Errorf("top = %s, want %s", top.Hex(), want)
	}
	if ctx.UsedGas != 60 {
		t.Errorf("used_gas = %d, want 60", ctx.UsedGas)
	}
}

func TestRunSuccessAtEndOfCode(t *testing.T) {
	code := []byte{0x60, 0x01}
	ctx := run(code, 100000)
	if ctx.State != Success {
		t.Errorf("state = %v, want Success", ctx.State)
	}
	if ctx.PC != uint64(len(code)) {
		t.Errorf("pc = %d, want %d", ctx.PC, len(code))
	}
}

func TestRunEmptyCodeIsSuccess(t *testing.T) {
	ctx := run(nil, 100000)
	if ctx.State != Success {
		t.Errorf("state = %v, want Success", ctx.State)
	}
}

func TestRunUnknownOpcodeIsInvalid(t *testing.T) {
	code := []byte{0x0c} // between SIGNEXTEND and LT, never assigned
	ctx := run(code, 100000)
	if ctx.State != Invalid {
		t.Errorf("state = %v, want Invalid", ctx.State)
	}
	if ctx.PC != uint64(len(code)) {
		t.Errorf("pc = %d, want %d (forced to end on halt)", ctx.PC, len(code))
	}
}

func TestRunExplicitInvalidOpcode(t *testing.T) {
	ctx := run([]byte{byte(INVALID)}, 100000)
	if ctx.State != Invalid {
		t.Errorf("state = %v, want Invalid", ctx.State)
	}
}

func TestRunStackUnderflowIsInvalid(t *testing.T) {
	ctx := run([]byte{byte(ADD)}, 100000)
	if ctx.State != Invalid {
		t.Errorf("state = %v, want Invalid", ctx.State)
	}
}

func TestRunOutOfGasOnBaseCost(t *testing.T) {
	ctx := run([]byte{byte(ADD)}, 2) // ADD costs 3
	if ctx.State != OutOfGas {
		t.Errorf("state = %v, want OutOfGas", ctx.State)
	}
}

func TestRunOutOfGasOnMemoryExpansion(t *testing.T) {
	// PUSH1 0; PUSH1 0; MSTORE, but gas only covers the PUSHes and the
	// MSTORE base cost, not the memory-expansion delta.
	code := []byte{0x60, 0x00, 0x60, 0x00, 0x52}
	ctx := run(code, 9) // 3+3+3 = 9, no room for the expansion delta
	if ctx.State != OutOfGas {
		t.Errorf("state = %v, want OutOfGas", ctx.State)
	}
}

func TestRunOffsetTooLargeIsOutOfGas(t *testing.T) {
	// PUSH1 0 (value); PUSH32 2^32 (offset, exceeds MaxMemorySize); MSTORE.
	big32, _ := hex.DecodeString(strings.Repeat("00", 27) + "0100000000")
	code := append([]byte{0x60, 0x00, 0x7f}, big32...)
	code = append(code, 0x52)
	ctx := run(code, 1_000_000)
	if ctx.State != OutOfGas {
		t.Errorf("state = %v, want OutOfGas", ctx.State)
	}
}

func TestRunPushPastEndOfCodeZeroPads(t *testing.T) {
	// PUSH2 with only one byte of immediate data left in the code.
	code := []byte{0x61, 0xff}
	ctx := run(code, 100000)
	if ctx.State != Success {
		t.Fatalf("state = %v, want Success", ctx.State)
	}
	if top := topOf(t, ctx); top.Uint64() != 0xff00 {
		t.Errorf("top = 0x%x, want 0xff00", top.Uint64())
	}
}

func TestSignExtendCanonicalLargeExt(t *testing.T) {
	// PUSH1 0x42; PUSH1 31; SIGNEXTEND -- ext==31 takes the canonical
	// (not ext>=31-skips-pop) path per spec.md §9: base is popped and
	// pushed back unchanged.
	code := []byte{0x60, 0x42, 0x60, 31, 0x0b}
	ctx := run(code, 100000)
	if top := topOf(t, ctx); top.Uint64() != 0x42 {
		t.Errorf("top = 0x%x, want 0x42", top.Uint64())
	}
}

func TestSignExtendNegativeBit(t *testing.T) {
	// PUSH1 0xff (all ones in byte 0); PUSH1 0; SIGNEXTEND sign-extends
	// from bit 7, producing all-ones across the whole word.
	code := []byte{0x60, 0xff, 0x60, 0x00, 0x0b}
	ctx := run(code, 100000)
	want := strings.Repeat("ff", 32)
	if top := topOf(t, ctx); top.Hex() != want {
		t.Errorf("top = %s, want %s", top.Hex(), want)
	}
}

func TestSignExtendPositiveBit(t *testing.T) {
	// PUSH1 0x7f (sign bit clear in byte 0); PUSH1 0; SIGNEXTEND leaves
	// the value unchanged (positive extension is all zero bits).
	code := []byte{0x60, 0x7f, 0x60, 0x00, 0x0b}
	ctx := run(code, 100000)
	if top := topOf(t, ctx); top.Uint64() != 0x7f {
		t.Errorf("top = 0x%x, want 0x7f", top.Uint64())
	}
}

func TestShiftByAtLeast256IsZero(t *testing.T) {
	// PUSH1 1; PUSH2 256; SHL -> shifting by >=256 clears everything.
	code := []byte{0x60, 0x01, 0x61, 0x01, 0x00, 0x1b}
	ctx := run(code, 100000)
	if top := topOf(t, ctx); !top.IsZero() {
		t.Errorf("top = %s, want 0", top.Hex())
	}
}

func TestSarNegativeLargeShiftIsAllOnes(t *testing.T) {
	// PUSH32 -1; PUSH2 300; SAR -> a negative value shifted further than
	// its width arithmetic-shifts to all-ones.
	negOne, _ := hex.DecodeString(strings.Repeat("ff", 32))
	code := append([]byte{0x7f}, negOne...)
	code = append(code, 0x61, 0x01, 0x2c, 0x1d) // PUSH2 300; SAR
	ctx := run(code, 100000)
	if want := strings.Repeat("ff", 32); topOf(t, ctx).Hex() != want {
		t.Errorf("top = %s, want %s", topOf(t, ctx).Hex(), want)
	}
}

func TestByteOutOfRangeIsZero(t *testing.T) {
	// PUSH1 0xff; PUSH1 32; BYTE -> n>31 always yields 0.
	code := []byte{0x60, 0xff, 0x60, 32, 0x1a}
	ctx := run(code, 100000)
	if top := topOf(t, ctx); !top.IsZero() {
		t.Errorf("top = %s, want 0", top.Hex())
	}
}

func TestDivByZero(t *testing.T) {
	// PUSH1 0; PUSH1 5; DIV -> 0 (divide by zero pushes zero, not Invalid).
	code := []byte{0x60, 0x00, 0x60, 0x05, 0x04}
	ctx := run(code, 100000)
	if ctx.State != Success {
		t.Fatalf("state = %v, want Success", ctx.State)
	}
	if top := topOf(t, ctx); !top.IsZero() {
		t.Errorf("top = %s, want 0", top.Hex())
	}
}

// TestAddModWrapsAt256Bits pins spec.md §4.5: ADDMOD is ((a+b) mod
// 2**256) mod c, not a full-precision reduction of a+b. Operands are
// popped a, b, c in that order (a on top), so c=3 must be pushed first
// (bottom of the three) and the two MAX words pushed after it.
// PUSH1 3; PUSH32 MAX; PUSH32 MAX; ADDMOD -> (MAX+MAX) wraps to
// 2**256-2, which mod 3 is 2.
func TestAddModWrapsAt256Bits(t *testing.T) {
	maxWord, _ := hex.DecodeString(strings.Repeat("ff", 32))
	code := []byte{0x60, 0x03} // PUSH1 3
	code = append(code, 0x7f)
	code = append(code, maxWord...)
	code = append(code, 0x7f)
	code = append(code, maxWord...)
	code = append(code, 0x08) // ADDMOD
	ctx := run(code, 100000)
	if top := topOf(t, ctx); top.Uint64() != 2 {
		t.Errorf("top = %d, want 2", top.Uint64())
	}
}

// TestMulModWrapsAt256Bits is ADDMOD's analogue for MULMOD. PUSH1 3;
// PUSH32 MAX; PUSH32 MAX; MULMOD -> (MAX*MAX) wraps to 1, which mod 3
// is 1.
func TestMulModWrapsAt256Bits(t *testing.T) {
	maxWord, _ := hex.DecodeString(strings.Repeat("ff", 32))
	code := []byte{0x60, 0x03} // PUSH1 3
	code = append(code, 0x7f)
	code = append(code, maxWord...)
	code = append(code, 0x7f)
	code = append(code, maxWord...)
	code = append(code, 0x09) // MULMOD
	ctx := run(code, 100000)
	if top := topOf(t, ctx); top.Uint64() != 1 {
		t.Errorf("top = %d, want 1", top.Uint64())
	}
}

// TestKeccak256ZeroLengthStillExpandsMemory pins spec.md §4.4's
// pseudocode literally: the memory-expansion check runs (and its gas
// charged) even when size is zero, because allocate(offset+0) still
// grows memory up to offset. PUSH1 0 (size); PUSH1 0x40 (offset);
// KECCAK256 -> memory grows to 64 bytes and the expansion delta (6 gas)
// is charged, even though nothing is hashed.
func TestKeccak256ZeroLengthStillExpandsMemory(t *testing.T) {
	code := []byte{0x60, 0x00, 0x60, 0x40, 0x20} // PUSH1 0; PUSH1 0x40; KECCAK256
	ctx := run(code, 100000)
	if ctx.State != Success {
		t.Fatalf("state = %v, want Success", ctx.State)
	}
	if ctx.Memory.Len() != 64 {
		t.Errorf("memory Len() = %d, want 64", ctx.Memory.Len())
	}
	// PUSH1+PUSH1 (3+3) + KECCAK256 base (30) + memory expansion to 64
	// bytes from empty (6) = 42; no per-word KECCAK256 surcharge since
	// wordCount(0) == 0.
	if ctx.UsedGas != 42 {
		t.Errorf("used_gas = %d, want 42", ctx.UsedGas)
	}
}
