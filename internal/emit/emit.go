// Package emit translates a program table into standalone source code that
// behaves like the VM: one procedure per program, one shared byte stack, and
// a dispatch table indexed like the program table.
package emit

import (
	"fmt"

	"github.com/helvlang/helv/internal/bytecode"
	"github.com/helvlang/helv/internal/mem"
)

// DefaultStackSize is the capacity of the fixed stack array in emitted code.
const DefaultStackSize = 99999

// Option customizes emission.
type Option interface{ apply(cfg *config) }

type config struct {
	stackSize int
}

type stackSizeOption int

func (size stackSizeOption) apply(cfg *config) {
	if size > 0 {
		cfg.stackSize = int(size)
	}
}

// WithStackSize sets the capacity of the emitted stack array.
func WithStackSize(size int) Option { return stackSizeOption(size) }

func newConfig(opts []Option) config {
	cfg := config{stackSize: DefaultStackSize}
	for _, opt := range opts {
		if opt != nil {
			opt.apply(&cfg)
		}
	}
	return cfg
}

// Messages printed by emitted code, matching the VM's error texts.
var (
	msgEmpty = mem.ErrEmpty.Error()
	msgZero  = bytecode.ErrDivideByZero.Error()
	msgTimes = bytecode.ErrRepeatZero.Error()
)

const (
	fmtLimit = "stack limit %d exceeded by push @%d"
	fmtIndex = "%s index %d out of bounds of stack height %d"
	fmtProg  = "program index %d out of range [0, %d)"
)

// decodeFault describes an undecodable instruction, which emitted code
// reports only if it is reached.
func decodeFault(index int, in bytecode.Instr, err error) string {
	return fmt.Sprintf("prog %v @%v %v: %v", index, in.Offset, in.Op, err)
}

// shuffleVars names the values a KindShuffle instruction pops; values never
// pushed back are named "".
func shuffleVars(spec *bytecode.Spec) []string {
	names := make([]string, spec.Pops)
	for _, i := range spec.Pushes {
		names[i] = fmt.Sprintf("v%d", i)
	}
	return names
}
