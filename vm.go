package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/helvlang/helv/internal/bytecode"
	"github.com/helvlang/helv/internal/flushio"
	"github.com/helvlang/helv/internal/mem"
	"github.com/helvlang/helv/internal/panicerr"
)

// VM interprets a program table. Every program shares the one runtime
// stack; control flow instructions recurse into the programs they name.
type VM struct {
	logging

	table *bytecode.Table
	stack mem.Stack
	out   *flushio.ByteSink

	output io.Writer
	tees   []io.Writer

	ctx        context.Context
	depth      int
	depthLimit int

	// position of the instruction being run, for error reporting
	prog   int
	offset int
	op     bytecode.Opcode
}

func (vm *VM) run(ctx context.Context) error {
	vm.ctx = ctx
	vm.call(0)
	return vm.out.Flush()
}

// call runs the indexed program to its end, or until it halts.
func (vm *VM) call(index int) {
	prog, ok := vm.table.Program(index)
	if !ok {
		vm.halt(bytecode.ProgIndexError{Index: index, Len: vm.table.Len()})
	}
	vm.haltif(vm.ctx.Err())
	if vm.depthLimit > 0 && vm.depth >= vm.depthLimit {
		vm.halt(ErrDepthExceeded)
	}

	// a halt leaves position and depth as they were at the fault
	caller, callerAt, callerOp := vm.prog, vm.offset, vm.op
	vm.depth++
	vm.exec(index, prog.Code)
	vm.depth--
	vm.prog, vm.offset, vm.op = caller, callerAt, callerOp
}

func (vm *VM) exec(index int, code []byte) {
	for at := 0; at < len(code); {
		in, next, err := bytecode.Decode(code, at)
		vm.prog, vm.offset, vm.op = index, at, in.Op
		vm.haltif(err)
		if vm.logfn != nil {
			vm.logf(">", "%v @%v %v -- s:%v", index, at, vm.formatInstr(in), vm.stack.Values())
		}
		if vm.step(in) {
			vm.logf("<", "%v halt", index)
			return
		}
		at = next
	}
}

// step runs one instruction, returning true if the program should return.
func (vm *VM) step(in bytecode.Instr) bool {
	spec := in.Spec
	switch spec.Kind {
	case bytecode.KindShuffle:
		var popped [2]byte
		for i := 0; i < spec.Pops; i++ {
			popped[i] = vm.pop()
		}
		for _, i := range spec.Pushes {
			vm.push(popped[i])
		}

	case bytecode.KindPush:
		vm.push(in.Operand)

	case bytecode.KindGet:
		index := vm.pop()
		val, err := vm.stack.Get(uint(index))
		vm.haltif(err)
		vm.push(val)

	case bytecode.KindSet:
		index := vm.pop()
		val := vm.pop()
		vm.haltif(vm.stack.Set(uint(index), val))

	case bytecode.KindHeight:
		vm.push(byte(vm.stack.Height()))

	case bytecode.KindBinary:
		b, a := vm.pop(), vm.pop()
		if spec.NonZero && b == 0 {
			vm.halt(bytecode.ErrDivideByZero)
		}
		vm.push(spec.Apply(a, b))

	case bytecode.KindCall:
		vm.callWith(spec.Call)

	case bytecode.KindPrint:
		vm.haltif(vm.out.WriteByte(vm.pop()))

	case bytecode.KindHalt:
		return true
	}
	return false
}

func (vm *VM) callWith(how bytecode.Call) {
	switch how {
	case bytecode.CallOnce:
		vm.call(int(vm.pop()))

	case bytecode.CallSelect:
		ifFalse := vm.pop()
		ifTrue := vm.pop()
		if vm.pop() != 0 {
			vm.call(int(ifTrue))
		} else {
			vm.call(int(ifFalse))
		}

	case bytecode.CallWhile:
		f := int(vm.pop())
		for {
			vm.call(f)
			if vm.pop() == 0 {
				break
			}
		}

	case bytecode.CallTimes:
		f := int(vm.pop())
		n := vm.pop()
		if n == 0 {
			vm.halt(bytecode.ErrRepeatZero)
		}
		for ; n > 0; n-- {
			vm.call(f)
		}
	}
}

func (vm *VM) push(val byte) {
	vm.haltif(vm.stack.Push(val))
}

func (vm *VM) pop() byte {
	val, err := vm.stack.Pop()
	vm.haltif(err)
	return val
}

// halt aborts the run, reporting err along with the current position.
func (vm *VM) halt(err error) {
	if vm.out != nil {
		vm.out.Flush()
	}
	rerr := &RunError{Prog: vm.prog, Offset: vm.offset, Op: vm.op, Err: err}
	vm.logf("#", "halt error: %v", rerr)
	panicerr.Halt(rerr)
}

func (vm *VM) haltif(err error) {
	if err != nil {
		vm.halt(err)
	}
}

func (vm *VM) formatInstr(in bytecode.Instr) string {
	if in.Spec != nil && in.Spec.Operands > 0 {
		return fmt.Sprintf("%v %v", in.Op, in.Operand)
	}
	return in.Op.String()
}

type logging struct {
	logfn func(mess string, args ...interface{})

	markWidth int
}

func (log *logging) logf(mark, mess string, args ...interface{}) {
	if log.logfn == nil {
		return
	}
	if n := log.markWidth - len(mark); n > 0 {
		mark = strings.Repeat(mark[:1], n) + mark
	} else if n < 0 {
		log.markWidth = len(mark)
	}
	if len(args) > 0 {
		mess = fmt.Sprintf(mess, args...)
	}
	log.logfn("%v %v", mark, mess)
}
