// Command coreintp is a placeholder entry point. The interpreter is a
// library meant to be embedded by a caller that owns the surrounding
// transaction/block machinery; this binary only demonstrates wiring
// code bytes and a gas budget through a single Run call.
package main

import (
	"fmt"

	"github.com/eth2030/coreintp/core/vm"
	"github.com/eth2030/coreintp/log"
)

func main() {
	logger := log.Default().Module("coreintp")

	// PUSH1 0x03; PUSH1 0x02; ADD
	code := []byte{0x60, 0x03, 0x60, 0x02, 0x01}

	ctx := vm.NewExecutionContext(code, 100000)
	vm.Run(ctx)

	logger.Info("execution finished", "status", ctx.State.String(), "used_gas", ctx.UsedGas)
	if top, err := ctx.Stack.Peek(); err == nil {
		fmt.Printf("top of stack: %s\n", top.Hex())
	}
}
