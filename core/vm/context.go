package vm

import "github.com/eth2030/coreintp/word"

// Status is the terminal (or in-flight) state of an ExecutionContext.
type Status int

const (
	// Processing is the initial state, and the state of every
	// in-progress step.
	Processing Status = iota
	// Success is reached when pc advances past the end of codes
	// without hitting another terminal state.
	Success
	// Revert is reserved for an explicit revert opcode; the current
	// opcode set never reaches it (see SPEC_FULL.md §C).
	Revert
	// Invalid is reached on an unknown opcode or a stack underflow.
	Invalid
	// OutOfGas is reached when a memory offset/size exceeds the
	// MaxMemorySize bound, or when used_gas would exceed remaining_gas.
	OutOfGas
)

// String names the status for logging/debugging.
func (s Status) String() string {
	switch s {
	case Processing:
		return "Processing"
	case Success:
		return "Success"
	case Revert:
		return "Revert"
	case Invalid:
		return "Invalid"
	case OutOfGas:
		return "OutOfGas"
	default:
		return "Status(?)"
	}
}

// ExecutionContext holds everything a single bytecode execution owns:
// the code under execution, the program counter, the operand stack,
// memory, and the gas counters. It is exclusively owned by one
// execution and is returned to the caller at termination, partial state included, for
// diagnostics.
type ExecutionContext struct {
	State        Status
	Codes        []byte
	PC           uint64
	Stack        *Stack
	Memory       *Memory
	RemainingGas uint64
	RefundGas    uint64
	UsedGas      uint64
	Config       Config
}

// NewExecutionContext returns a fresh Processing context over codes,
// with the given initial gas budget and a zero-value Config (no
// tracer, no debug logging).
func NewExecutionContext(codes []byte, gas uint64) *ExecutionContext {
	return NewExecutionContextWithConfig(codes, gas, Config{})
}

// NewExecutionContextWithConfig is NewExecutionContext with an explicit
// Config, for callers that want step tracing or debug logging.
func NewExecutionContextWithConfig(codes []byte, gas uint64, cfg Config) *ExecutionContext {
	return &ExecutionContext{
		State:        Processing,
		Codes:        codes,
		Stack:        NewStack(),
		Memory:       NewMemory(),
		RemainingGas: gas,
		Config:       cfg,
	}
}

// halt transitions the context to a terminal status and, per §4.6,
// forces pc to the end of codes so the driver loop's bounds check
// terminates on the next iteration.
func (ctx *ExecutionContext) halt(status Status) {
	ctx.State = status
	ctx.PC = uint64(len(ctx.Codes))
}

// chargeGas adds amount to UsedGas, transitioning to OutOfGas instead
// if that would make used_gas exceed the budget held in RemainingGas
// (which is never decremented). Returns whether the charge succeeded.
func (ctx *ExecutionContext) chargeGas(amount uint64) bool {
	if ctx.UsedGas+amount > ctx.RemainingGas {
		ctx.halt(OutOfGas)
		return false
	}
	ctx.UsedGas += amount
	return true
}

// checkMemory performs the memory-expansion gas check from spec.md
// §4.4: if offset or size exceeds MaxMemorySize, halt OutOfGas without
// touching memory; otherwise charge the pre/post expansion delta and
// grow memory. Returns whether the check passed.
func (ctx *ExecutionContext) checkMemory(offset, size uint64) bool {
	if offset > MaxMemorySize || size > MaxMemorySize {
		ctx.halt(OutOfGas)
		return false
	}
	required := offset + size
	if required > MaxMemorySize {
		ctx.halt(OutOfGas)
		return false
	}
	cost, ok := MemoryCost(uint64(ctx.Memory.Len()), required)
	if !ok {
		ctx.halt(OutOfGas)
		return false
	}
	if !ctx.chargeGas(cost) {
		return false
	}
	ctx.Memory.Allocate(required)
	return true
}

// pop pops the stack, transitioning to Invalid on underflow instead of
// propagating the error -- the conversion the Open Question in
// spec.md §9 requires.
func (ctx *ExecutionContext) pop() (word.Word, bool) {
	v, err := ctx.Stack.Pop()
	if err != nil {
		ctx.halt(Invalid)
		return word.Zero, false
	}
	return v, true
}

// push pushes onto the stack, halting Invalid on overflow (stack
// overflow is not separately named by spec.md's Status set, so it is
// folded into Invalid alongside unknown-opcode and underflow).
func (ctx *ExecutionContext) push(v word.Word) bool {
	if err := ctx.Stack.Push(v); err != nil {
		ctx.halt(Invalid)
		return false
	}
	return true
}
