package main

import (
	"errors"
	"fmt"

	"github.com/helvlang/helv/internal/bytecode"
)

// ErrDepthExceeded is the cause of a run stopped by its depth limit.
var ErrDepthExceeded = errors.New("program call depth limit exceeded")

// RunError is the fatal error returned from a failed run, naming the
// instruction that failed.
type RunError struct {
	Prog   int
	Offset int
	Op     bytecode.Opcode
	Err    error
}

func (re *RunError) Error() string {
	return fmt.Sprintf("prog %v @%v %v: %v", re.Prog, re.Offset, re.Op, re.Err)
}

func (re *RunError) Unwrap() error { return re.Err }
