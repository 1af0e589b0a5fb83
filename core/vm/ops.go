package vm

import (
	"github.com/eth2030/coreintp/crypto"
	"github.com/eth2030/coreintp/word"
)

// executionFunc implements one opcode's state transition on ctx. It is
// responsible for popping its own operands, pushing its result, and
// advancing pc via ctx.advance -- see jump_table.go's operation.execute.
// Any failure (stack underflow, memory bounds, gas) halts ctx itself;
// callers never need to inspect a return value.
type executionFunc func(ctx *ExecutionContext)

// advance moves pc forward by n, unless ctx has already become terminal
// (a halt forces pc to len(codes), and an execute function must not
// undo that by advancing past it).
func (ctx *ExecutionContext) advance(n uint64) {
	if ctx.State == Processing {
		ctx.PC += n
	}
}

// toMemSize converts a stack word used as a memory offset or length into
// a uint64, halting OutOfGas instead of truncating if the word's value
// exceeds MaxMemorySize. Values within range always fit uint64 cleanly,
// so this is the only place truncation risk exists.
func (ctx *ExecutionContext) toMemSize(w word.Word) (uint64, bool) {
	if w.Cmp(word.FromUint64(MaxMemorySize)) > 0 {
		ctx.halt(OutOfGas)
		return 0, false
	}
	return w.Uint64(), true
}

var allOnes = word.Zero.Not()

func opAdd(ctx *ExecutionContext) {
	a, ok := ctx.pop()
	if !ok {
		return
	}
	b, ok := ctx.pop()
	if !ok {
		return
	}
	ctx.push(a.Add(b))
	ctx.advance(1)
}

func opMul(ctx *ExecutionContext) {
	a, ok := ctx.pop()
	if !ok {
		return
	}
	b, ok := ctx.pop()
	if !ok {
		return
	}
	ctx.push(a.Mul(b))
	ctx.advance(1)
}

func opSub(ctx *ExecutionContext) {
	a, ok := ctx.pop()
	if !ok {
		return
	}
	b, ok := ctx.pop()
	if !ok {
		return
	}
	ctx.push(a.Sub(b))
	ctx.advance(1)
}

func opDiv(ctx *ExecutionContext) {
	a, ok := ctx.pop()
	if !ok {
		return
	}
	b, ok := ctx.pop()
	if !ok {
		return
	}
	if b.IsZero() {
		ctx.push(word.Zero)
	} else {
		ctx.push(a.Div(b))
	}
	ctx.advance(1)
}

func opSdiv(ctx *ExecutionContext) {
	a, ok := ctx.pop()
	if !ok {
		return
	}
	b, ok := ctx.pop()
	if !ok {
		return
	}
	if b.IsZero() {
		ctx.push(word.Zero)
		ctx.advance(1)
		return
	}
	if a.IsNegative() != b.IsNegative() {
		mag := a.Abs().Div(b.Abs())
		ctx.push(mag.Negate())
	} else {
		ctx.push(a.Div(b))
	}
	ctx.advance(1)
}

func opMod(ctx *ExecutionContext) {
	a, ok := ctx.pop()
	if !ok {
		return
	}
	b, ok := ctx.pop()
	if !ok {
		return
	}
	if b.IsZero() {
		ctx.push(word.Zero)
	} else {
		ctx.push(a.Mod(b))
	}
	ctx.advance(1)
}

func opSmod(ctx *ExecutionContext) {
	a, ok := ctx.pop()
	if !ok {
		return
	}
	b, ok := ctx.pop()
	if !ok {
		return
	}
	if b.IsZero() {
		ctx.push(word.Zero)
		ctx.advance(1)
		return
	}
	if a.IsNegative() {
		ctx.push(a.Abs().Mod(b).Negate())
	} else {
		ctx.push(a.Mod(b))
	}
	ctx.advance(1)
}

func opAddMod(ctx *ExecutionContext) {
	a, ok := ctx.pop()
	if !ok {
		return
	}
	b, ok := ctx.pop()
	if !ok {
		return
	}
	c, ok := ctx.pop()
	if !ok {
		return
	}
	if c.IsZero() {
		ctx.push(word.Zero)
	} else {
		ctx.push(a.AddMod(b, c))
	}
	ctx.advance(1)
}

func opMulMod(ctx *ExecutionContext) {
	a, ok := ctx.pop()
	if !ok {
		return
	}
	b, ok := ctx.pop()
	if !ok {
		return
	}
	c, ok := ctx.pop()
	if !ok {
		return
	}
	if c.IsZero() {
		ctx.push(word.Zero)
	} else {
		ctx.push(a.MulMod(b, c))
	}
	ctx.advance(1)
}

func opExp(ctx *ExecutionContext) {
	base, ok := ctx.pop()
	if !ok {
		return
	}
	exponent, ok := ctx.pop()
	if !ok {
		return
	}
	extra := GasExpByte * uint64(exponent.ActualByteSize())
	if !ctx.chargeGas(extra) {
		return
	}
	ctx.push(base.Exp(exponent))
	ctx.advance(1)
}

func opSignExtend(ctx *ExecutionContext) {
	ext, ok := ctx.pop()
	if !ok {
		return
	}
	if ext.Cmp(word.FromUint64(31)) >= 0 {
		// Canonical behavior (spec.md §9 open question): pop the
		// second operand (base) too and push it back unchanged.
		base, ok := ctx.pop()
		if !ok {
			return
		}
		ctx.push(base)
		ctx.advance(1)
		return
	}
	base, ok := ctx.pop()
	if !ok {
		return
	}
	bit := 8*ext.Uint64() + 7
	mask := word.One.Lsh(uint(bit))
	if !base.And(mask).IsZero() {
		ctx.push(base.Or(mask.Sub(word.One).Not()))
	} else {
		ctx.push(base.And(mask.Sub(word.One)))
	}
	ctx.advance(1)
}

func opLt(ctx *ExecutionContext) {
	a, ok := ctx.pop()
	if !ok {
		return
	}
	b, ok := ctx.pop()
	if !ok {
		return
	}
	ctx.push(boolWord(a.Cmp(b) < 0))
	ctx.advance(1)
}

func opGt(ctx *ExecutionContext) {
	a, ok := ctx.pop()
	if !ok {
		return
	}
	b, ok := ctx.pop()
	if !ok {
		return
	}
	ctx.push(boolWord(a.Cmp(b) > 0))
	ctx.advance(1)
}

func opSlt(ctx *ExecutionContext) {
	a, ok := ctx.pop()
	if !ok {
		return
	}
	b, ok := ctx.pop()
	if !ok {
		return
	}
	an, bn := a.IsNegative(), b.IsNegative()
	var result bool
	if an != bn {
		result = an
	} else {
		result = a.Cmp(b) < 0
	}
	ctx.push(boolWord(result))
	ctx.advance(1)
}

func opSgt(ctx *ExecutionContext) {
	a, ok := ctx.pop()
	if !ok {
		return
	}
	b, ok := ctx.pop()
	if !ok {
		return
	}
	an, bn := a.IsNegative(), b.IsNegative()
	var result bool
	if an != bn {
		result = bn
	} else {
		result = a.Cmp(b) > 0
	}
	ctx.push(boolWord(result))
	ctx.advance(1)
}

func opEq(ctx *ExecutionContext) {
	a, ok := ctx.pop()
	if !ok {
		return
	}
	b, ok := ctx.pop()
	if !ok {
		return
	}
	ctx.push(boolWord(a.Eq(b)))
	ctx.advance(1)
}

func opIsZero(ctx *ExecutionContext) {
	a, ok := ctx.pop()
	if !ok {
		return
	}
	ctx.push(boolWord(a.IsZero()))
	ctx.advance(1)
}

func opAnd(ctx *ExecutionContext) {
	a, ok := ctx.pop()
	if !ok {
		return
	}
	b, ok := ctx.pop()
	if !ok {
		return
	}
	ctx.push(a.And(b))
	ctx.advance(1)
}

func opOr(ctx *ExecutionContext) {
	a, ok := ctx.pop()
	if !ok {
		return
	}
	b, ok := ctx.pop()
	if !ok {
		return
	}
	ctx.push(a.Or(b))
	ctx.advance(1)
}

func opXor(ctx *ExecutionContext) {
	a, ok := ctx.pop()
	if !ok {
		return
	}
	b, ok := ctx.pop()
	if !ok {
		return
	}
	ctx.push(a.Xor(b))
	ctx.advance(1)
}

func opNot(ctx *ExecutionContext) {
	a, ok := ctx.pop()
	if !ok {
		return
	}
	ctx.push(a.Not())
	ctx.advance(1)
}

func opByte(ctx *ExecutionContext) {
	n, ok := ctx.pop()
	if !ok {
		return
	}
	x, ok := ctx.pop()
	if !ok {
		return
	}
	if n.Cmp(word.FromUint64(31)) > 0 {
		ctx.push(word.Zero)
	} else {
		ctx.push(word.FromUint64(uint64(x.Byte(n.Uint64()))))
	}
	ctx.advance(1)
}

// shiftTooLarge reports whether a shift count is large enough that the
// result is always the degenerate case (zero for logical shifts): any
// count of 256 or more shifts every bit out.
func shiftTooLarge(n word.Word) bool {
	return n.Cmp(word.FromUint64(256)) >= 0
}

func opShl(ctx *ExecutionContext) {
	sh, ok := ctx.pop()
	if !ok {
		return
	}
	x, ok := ctx.pop()
	if !ok {
		return
	}
	if shiftTooLarge(sh) {
		ctx.push(word.Zero)
	} else {
		ctx.push(x.Lsh(uint(sh.Uint64())))
	}
	ctx.advance(1)
}

func opShr(ctx *ExecutionContext) {
	sh, ok := ctx.pop()
	if !ok {
		return
	}
	x, ok := ctx.pop()
	if !ok {
		return
	}
	if shiftTooLarge(sh) {
		ctx.push(word.Zero)
	} else {
		ctx.push(x.Rsh(uint(sh.Uint64())))
	}
	ctx.advance(1)
}

func opSar(ctx *ExecutionContext) {
	sh, ok := ctx.pop()
	if !ok {
		return
	}
	x, ok := ctx.pop()
	if !ok {
		return
	}
	if !x.IsNegative() {
		if shiftTooLarge(sh) {
			ctx.push(word.Zero)
		} else {
			ctx.push(x.Rsh(uint(sh.Uint64())))
		}
		ctx.advance(1)
		return
	}
	if sh.Cmp(word.FromUint64(256)) > 0 {
		ctx.push(allOnes)
		ctx.advance(1)
		return
	}
	n := sh.Uint64()
	if n == 256 {
		ctx.push(allOnes)
		ctx.advance(1)
		return
	}
	shifted := x.Rsh(uint(n))
	mask := allOnes.Lsh(uint(256 - n))
	ctx.push(shifted.Or(mask))
	ctx.advance(1)
}

func opKeccak256(ctx *ExecutionContext) {
	off, ok := ctx.pop()
	if !ok {
		return
	}
	size, ok := ctx.pop()
	if !ok {
		return
	}
	offset, ok := ctx.toMemSize(off)
	if !ok {
		return
	}
	length, ok := ctx.toMemSize(size)
	if !ok {
		return
	}
	if !ctx.checkMemory(offset, length) {
		return
	}
	extra := GasKeccak256Word * wordCount(length)
	if !ctx.chargeGas(extra) {
		return
	}
	data := ctx.Memory.ReadMulti(offset, length)
	hash := crypto.Keccak256(data)
	ctx.push(word.FromBigEndian(hash))
	ctx.advance(1)
}

func opMload(ctx *ExecutionContext) {
	off, ok := ctx.pop()
	if !ok {
		return
	}
	offset, ok := ctx.toMemSize(off)
	if !ok {
		return
	}
	if !ctx.checkMemory(offset, 32) {
		return
	}
	ctx.push(word.FromBytes32(ctx.Memory.Read(offset)))
	ctx.advance(1)
}

func opMstore(ctx *ExecutionContext) {
	off, ok := ctx.pop()
	if !ok {
		return
	}
	v, ok := ctx.pop()
	if !ok {
		return
	}
	offset, ok := ctx.toMemSize(off)
	if !ok {
		return
	}
	if !ctx.checkMemory(offset, 32) {
		return
	}
	ctx.Memory.Write(offset, v.Bytes())
	ctx.advance(1)
}

func opMstore8(ctx *ExecutionContext) {
	off, ok := ctx.pop()
	if !ok {
		return
	}
	v, ok := ctx.pop()
	if !ok {
		return
	}
	offset, ok := ctx.toMemSize(off)
	if !ok {
		return
	}
	if !ctx.checkMemory(offset, 1) {
		return
	}
	ctx.Memory.Write(offset, []byte{v.Byte(31)})
	ctx.advance(1)
}

// boolWord maps a boolean predicate to the canonical 0/1 stack encoding.
func boolWord(b bool) word.Word {
	if b {
		return word.One
	}
	return word.Zero
}

// makePush returns the execute function for PUSHn: read n bytes
// following the opcode byte, left-pad to 32 bytes, push, and advance pc
// by 1+n regardless of whether code ran short (missing bytes read as
// zero, matching the teacher's own PUSH semantics at end-of-code).
func makePush(n int) executionFunc {
	return func(ctx *ExecutionContext) {
		start := ctx.PC + 1
		codeLen := uint64(len(ctx.Codes))
		var buf [32]byte
		for i := 0; i < n; i++ {
			idx := start + uint64(i)
			if idx < codeLen {
				buf[32-n+i] = ctx.Codes[idx]
			}
		}
		ctx.push(word.FromBytes32(buf))
		ctx.advance(uint64(1 + n))
	}
}
