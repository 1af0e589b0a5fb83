package vm

import "github.com/eth2030/coreintp/log"

// Tracer observes each step the driver loop takes, mirroring the
// teacher's EVMLogger/EVMTracer hook shape (evm_logger.go) trimmed to
// what a call-less machine can report: there is no CaptureEnter/Exit
// pair here because this opcode set never calls into another context.
type Tracer interface {
	// CaptureState is invoked after an opcode has executed, with the pc
	// and the gas the step added to UsedGas (0 for an unknown opcode or
	// a base cost that could not be paid). ctx reflects state *after* the step,
	// so a tracer can read the pushed result or the terminal Status.
	CaptureState(pc uint64, op OpCode, cost uint64, ctx *ExecutionContext)
}

// Config holds optional execution-time behavior that isn't part of the
// opcode semantics themselves: a step tracer and a logger, mirroring
// the teacher's EVM.Config{Debug, Tracer} trimmed to this machine's
// narrower scope (no MaxCallDepth: there is no call stack to bound).
type Config struct {
	// Debug, when true, makes Run emit one log/slog Debug line per
	// step via Logger (or log.Default() if Logger is nil).
	Debug bool
	// Tracer, if non-nil, is called after every step regardless of
	// Debug.
	Tracer Tracer
	// Logger receives the per-step Debug lines when Debug is set. A
	// nil Logger with Debug true falls back to log.Default().Module("vm").
	Logger *log.Logger
}

func (c Config) logger() *log.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return log.Default().Module("vm")
}
