package vm

import "errors"

// Sentinel errors returned by Stack operations. They never escape
// Run's boundary: ExecutionContext.pop/push (context.go) convert them
// into a terminal ExecutionContext.Status instead, per the
// error-handling policy in SPEC_FULL.md §A.
var (
	ErrStackUnderflow = errors.New("vm: stack underflow")
	ErrStackOverflow  = errors.New("vm: stack overflow")
)
