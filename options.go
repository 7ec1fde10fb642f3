package main

import (
	"io"

	"github.com/helvlang/helv/internal/flushio"
)

// DefaultDepthLimit bounds program call depth, so that runaway recursion
// fails as an error rather than exhausting the host.
const DefaultDepthLimit = 262144

type VMOption interface{ apply(vm *VM) }

var defaults = []VMOption{
	depthLimitOption(DefaultDepthLimit),
}

func (vm *VM) apply(opts ...VMOption) {
	for _, opt := range defaults {
		if opt != nil {
			opt.apply(vm)
		}
	}
	for _, opt := range opts {
		if opt != nil {
			opt.apply(vm)
		}
	}
	vm.out = flushio.NewByteSink(append([]io.Writer{vm.output}, vm.tees...)...)
}

// VMOptions combines many options into one.
func VMOptions(opts ...VMOption) VMOption {
	var res options
	for _, opt := range opts {
		switch impl := opt.(type) {
		case nil:
		case options:
			res = append(res, impl...)
		default:
			res = append(res, impl)
		}
	}
	if len(res) == 1 {
		return res[0]
	}
	return res
}

type options []VMOption

func (opts options) apply(vm *VM) {
	for _, opt := range opts {
		opt.apply(vm)
	}
}

type withLogfn func(mess string, args ...interface{})

func (logfn withLogfn) apply(vm *VM) {
	vm.logfn = logfn
}

type initialStackOption []byte
type outputOption struct{ io.Writer }
type teeOption struct{ io.Writer }
type depthLimitOption int
type stackLimitOption uint

func (values initialStackOption) apply(vm *VM) {
	vm.stack.Push(values...)
}

func (o outputOption) apply(vm *VM) {
	vm.output = o.Writer
}

func (o teeOption) apply(vm *VM) {
	vm.tees = append(vm.tees, o.Writer)
}

func (lim depthLimitOption) apply(vm *VM) {
	vm.depthLimit = int(lim)
}

func (lim stackLimitOption) apply(vm *VM) {
	vm.stack.Limit = uint(lim)
}
