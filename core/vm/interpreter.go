// Package vm implements the fetch-decode-execute loop, the opcode
// dispatch table, and the per-opcode gas/state semantics described by
// SPEC_FULL.md. Memory, Stack, and ExecutionContext are the resources a
// single execution owns exclusively; Run is the only entry point that
// advances one from Processing to a terminal Status.
package vm

// Run drives ctx from its current pc through fetch-decode-execute until
// it reaches a terminal Status or pc runs past the end of Codes. It
// mutates ctx in place and also returns it, so callers can chain
// construction and execution in one expression.
//
// Per spec.md §4.6: an execution that reaches the end of Codes without
// ever hitting another terminal state is treated as Success.
func Run(ctx *ExecutionContext) *ExecutionContext {
	for ctx.State == Processing && ctx.PC < uint64(len(ctx.Codes)) {
		pc := ctx.PC
		before := ctx.UsedGas
		op := OpCode(ctx.Codes[pc])
		operation := table[op]
		if operation == nil {
			ctx.halt(Invalid)
			traceStep(ctx, pc, op, 0)
			break
		}
		if !ctx.chargeGas(operation.constantGas) {
			traceStep(ctx, pc, op, ctx.UsedGas-before)
			break
		}
		operation.execute(ctx)
		traceStep(ctx, pc, op, ctx.UsedGas-before)
	}
	if ctx.State == Processing {
		ctx.State = Success
	}
	return ctx
}

// traceStep reports one completed step to ctx.Config's Tracer and/or
// debug logger, if either is configured. cost is the gas the step
// added to UsedGas: the base cost plus any dynamic gas from
// EXP/KECCAK256/memory expansion, or 0 when nothing could be charged.
func traceStep(ctx *ExecutionContext, pc uint64, op OpCode, cost uint64) {
	cfg := ctx.Config
	if cfg.Tracer != nil {
		cfg.Tracer.CaptureState(pc, op, cost, ctx)
	}
	if cfg.Debug {
		cfg.logger().Debug("step", "pc", pc, "op", op.String(), "usedGas", ctx.UsedGas, "state", ctx.State.String())
	}
}
