package main

import (
	"context"
	"io"

	"github.com/helvlang/helv/internal/bytecode"
	"github.com/helvlang/helv/internal/panicerr"
)

// New creates a VM to run the given table.
func New(table *bytecode.Table, opts ...VMOption) *VM {
	vm := VM{table: table}
	vm.apply(opts...)
	return &vm
}

// Run runs program 0 of the table until it returns. Any fatal condition is
// returned as a *RunError.
func (vm *VM) Run(ctx context.Context) error {
	return panicerr.Recover("VM", func() error {
		return vm.run(ctx)
	})
}

// Stack returns a copy of the runtime stack, bottom first.
func (vm *VM) Stack() []byte { return vm.stack.Values() }

// WithInitialStack sets values on the stack before the run starts.
func WithInitialStack(values ...byte) VMOption { return initialStackOption(values) }

// WithOutput sets where printed bytes go; output is discarded by default.
func WithOutput(w io.Writer) VMOption { return outputOption{w} }

// WithTee copies printed bytes to w as well as to the output.
func WithTee(w io.Writer) VMOption { return teeOption{w} }

// WithDepthLimit limits how deeply programs may call each other; 0 disables
// the limit.
func WithDepthLimit(limit int) VMOption { return depthLimitOption(limit) }

// WithStackLimit limits the runtime stack height; 0 disables the limit.
func WithStackLimit(limit uint) VMOption { return stackLimitOption(limit) }

// WithLogf traces every instruction run through logfn.
func WithLogf(logfn func(mess string, args ...interface{})) VMOption { return withLogfn(logfn) }
