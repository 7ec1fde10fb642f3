package bytecode

import (
	"errors"
	"fmt"
)

// Faults shared by every backend; the VM returns them and emitted code prints
// their text before aborting.
var (
	ErrMissingOperand = errors.New("push instruction has no operand byte")
	ErrDivideByZero   = errors.New("division by zero")
	ErrRepeatZero     = errors.New("repeat count is zero")
)

// ProgIndexError reports a program table index that does not exist.
type ProgIndexError struct {
	Index int
	Len   int
}

func (pie ProgIndexError) Error() string {
	return fmt.Sprintf("program index %v out of range [0, %v)", pie.Index, pie.Len)
}

// OpcodeError reports a byte that is not a valid opcode.
type OpcodeError byte

func (code OpcodeError) Error() string { return fmt.Sprintf("invalid opcode %v", byte(code)) }

// Instr is one decoded instruction.
type Instr struct {
	Offset  int
	Op      Opcode
	Operand byte
	Spec    *Spec
}

// Decode reads the instruction at offset within code, returning it and the
// offset of the following instruction. Errors are ErrMissingOperand or an
// OpcodeError; in both cases next still skips past the bad byte.
func Decode(code []byte, offset int) (in Instr, next int, err error) {
	in.Offset = offset
	in.Op = Opcode(code[offset])
	next = offset + 1
	spec, ok := Lookup(in.Op)
	if !ok {
		return in, next, OpcodeError(in.Op)
	}
	in.Spec = spec
	if spec.Operands > 0 {
		if next >= len(code) {
			return in, next, ErrMissingOperand
		}
		in.Operand = code[next]
		next++
	}
	return in, next, nil
}
