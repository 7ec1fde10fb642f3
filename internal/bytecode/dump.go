package bytecode

import (
	"bytes"
	"fmt"
	"io"
	"strconv"

	"github.com/helvlang/helv/internal/runeio"
)

// Dump writes a listing of every program in t to w:
//
//	# prog 0
//	  @ 0 push 72 'H'
//	  @ 2 print
//
// Bytes that do not decode are listed rather than rejected, so a dump can
// always be taken of whatever the table holds.
func Dump(w io.Writer, t *Table) error {
	dump := tableDumper{table: t, out: w}
	return dump.dump()
}

type tableDumper struct {
	table *Table
	out   io.Writer

	addrWidth int
	buf       bytes.Buffer
}

func (dump *tableDumper) dump() error {
	for i := 0; i < dump.table.Len(); i++ {
		if err := dump.dumpProg(i); err != nil {
			return err
		}
	}
	return nil
}

func (dump *tableDumper) dumpProg(index int) error {
	prog, _ := dump.table.Program(index)
	dump.buf.Reset()
	fmt.Fprintf(&dump.buf, "# prog %v", index)
	if !prog.Complete {
		dump.buf.WriteString(" incomplete")
	}
	dump.buf.WriteByte('\n')

	dump.addrWidth = len(strconv.Itoa(len(prog.Code))) + 1
	for at := 0; at < len(prog.Code); {
		in, next, err := Decode(prog.Code, at)
		fmt.Fprintf(&dump.buf, "  @% *v ", dump.addrWidth, at)
		dump.formatInstr(in, err)
		dump.buf.WriteByte('\n')
		at = next
	}

	_, err := dump.buf.WriteTo(dump.out)
	return err
}

func (dump *tableDumper) formatInstr(in Instr, err error) {
	switch err {
	case nil:
	case ErrMissingOperand:
		fmt.Fprintf(&dump.buf, "%v <missing operand>", in.Op)
		return
	default:
		fmt.Fprintf(&dump.buf, "<%v>", err)
		return
	}
	dump.buf.WriteString(in.Spec.Name)
	if in.Spec.Operands > 0 {
		fmt.Fprintf(&dump.buf, " %v %v", in.Operand, runeio.ByteName(in.Operand))
	}
}
