package main

import (
	"fmt"
	"io"

	"github.com/helvlang/helv/internal/bytecode"
)

// vmDumper writes a human readable account of VM state, used for trace
// output after a failed run and in test failure logs.
type vmDumper struct {
	vm  *VM
	out io.Writer

	// skip the program listing
	noCode bool
}

func (dump vmDumper) dump() error {
	vm := dump.vm
	fmt.Fprintf(dump.out, "# VM Dump\n")
	fmt.Fprintf(dump.out, "  at: prog %v @%v %v\n", vm.prog, vm.offset, vm.op)
	fmt.Fprintf(dump.out, "  depth: %v\n", vm.depth)
	if lim := vm.stack.Limit; lim != 0 {
		fmt.Fprintf(dump.out, "  stack: %v (limit %v)\n", vm.stack.Values(), lim)
	} else {
		fmt.Fprintf(dump.out, "  stack: %v\n", vm.stack.Values())
	}
	if dump.noCode || vm.table == nil {
		return nil
	}
	return bytecode.Dump(dump.out, vm.table)
}
