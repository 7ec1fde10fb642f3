package bytecode

// Program is one flat bytecode sequence. It is identified solely by its index
// in a Table, and is Complete once its closing construct was parsed.
type Program struct {
	Code     []byte
	Complete bool
}

// Table is the append-only arena of every Program in one translation unit.
// Index 0 is the entry point. Indices are stable forever; the byte slices
// behind them are not, so callers re-resolve programs by index after any
// Append instead of holding on to Code.
type Table struct {
	progs []Program
}

// MaxPrograms is how many programs a one byte operand can address.
const MaxPrograms = 256

// NewTable builds a table of complete programs, mostly for tests and images.
func NewTable(codes ...[]byte) *Table {
	var t Table
	for _, code := range codes {
		i := t.Alloc()
		t.Append(i, code...)
		t.Finish(i)
	}
	return &t
}

// Len returns the number of programs.
func (t *Table) Len() int { return len(t.progs) }

// Alloc appends an empty, incomplete program and returns its index.
func (t *Table) Alloc() int {
	t.progs = append(t.progs, Program{})
	return len(t.progs) - 1
}

// Append extends the indexed program's code.
func (t *Table) Append(index int, code ...byte) {
	prog := &t.progs[index]
	prog.Code = grow(prog.Code, len(code))
	prog.Code = append(prog.Code, code...)
}

// Emit appends one instruction to the indexed program.
func (t *Table) Emit(index int, op Opcode, operands ...byte) {
	prog := &t.progs[index]
	prog.Code = grow(prog.Code, 1+len(operands))
	prog.Code = append(prog.Code, byte(op))
	prog.Code = append(prog.Code, operands...)
}

// Finish marks the indexed program complete.
func (t *Table) Finish(index int) { t.progs[index].Complete = true }

// Program returns the indexed program; ok is false when index is out of range.
func (t *Table) Program(index int) (prog Program, ok bool) {
	if index < 0 || index >= len(t.progs) {
		return Program{}, false
	}
	return t.progs[index], true
}

// Code returns the indexed program's code, or nil when out of range.
func (t *Table) Code(index int) []byte {
	prog, _ := t.Program(index)
	return prog.Code
}

// grow makes room for n more bytes, growing capacity by roughly 1.6x plus a
// minimum increment.
func grow(buf []byte, n int) []byte {
	const minGrowth = 4
	need := len(buf) + n
	if need <= cap(buf) {
		return buf
	}
	size := (cap(buf)+minGrowth)*8/5 + minGrowth
	if size < need {
		size = need
	}
	grown := make([]byte, len(buf), size)
	copy(grown, buf)
	return grown
}
