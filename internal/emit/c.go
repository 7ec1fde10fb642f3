package emit

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/helvlang/helv/internal/bytecode"
	"github.com/helvlang/helv/internal/runeio"
)

// C writes table as a self-contained C program.
func C(w io.Writer, table *bytecode.Table, opts ...Option) error {
	cw := cWriter{
		table: table,
		cfg:   newConfig(opts),
		out:   bufio.NewWriter(w),
	}
	cw.file()
	return cw.out.Flush()
}

type cWriter struct {
	table *bytecode.Table
	cfg   config
	out   *bufio.Writer
}

func (cw *cWriter) printf(format string, args ...interface{}) {
	fmt.Fprintf(cw.out, format, args...)
}

func (cw *cWriter) file() {
	n := cw.table.Len()
	cw.printf("#include <stdarg.h>\n")
	cw.printf("#include <stdio.h>\n")
	cw.printf("#include <stdlib.h>\n")
	cw.printf("#include <stdint.h>\n\n")
	cw.printf("#define STACK_SIZE %d\n", cw.cfg.stackSize)
	cw.printf("#define NUM_PROGS %d\n\n", n)
	cw.printf("static uint8_t st[STACK_SIZE];\n")
	cw.printf("static unsigned int sp = 0;\n\n")
	cw.helpers()

	for i := 0; i < n; i++ {
		cw.printf("static void prog_%d(void);\n", i)
	}
	cw.printf("\nstatic void (*const prog_table[NUM_PROGS])(void) = {\n")
	for i := 0; i < n; i++ {
		cw.printf("\tprog_%d,\n", i)
	}
	cw.printf("};\n\n")

	cw.printf("static void call(uint8_t f)\n{\n")
	cw.printf("\tif (f >= NUM_PROGS) fail(%s, f, NUM_PROGS);\n", cString(fmtProg))
	cw.printf("\tprog_table[f]();\n}\n")

	for i := 0; i < n; i++ {
		cw.printf("\nstatic void prog_%d(void)\n{\n", i)
		cw.prog(i)
		cw.printf("}\n")
	}

	cw.printf("\nint main(void)\n{\n")
	cw.printf("\tprog_table[0]();\n")
	cw.printf("\treturn 0;\n}\n")
}

func (cw *cWriter) helpers() {
	cw.printf("static void fail(const char *format, ...)\n{\n")
	cw.printf("\tva_list args;\n")
	cw.printf("\tfflush(stdout);\n")
	cw.printf("\tfputs(\"ERROR: \", stderr);\n")
	cw.printf("\tva_start(args, format);\n")
	cw.printf("\tvfprintf(stderr, format, args);\n")
	cw.printf("\tva_end(args);\n")
	cw.printf("\tfputc('\\n', stderr);\n")
	cw.printf("\texit(1);\n}\n\n")

	cw.printf("static void push(uint8_t v)\n{\n")
	cw.printf("\tif (sp >= STACK_SIZE) fail(%s, STACK_SIZE, sp);\n", cString(fmtLimit))
	cw.printf("\tst[sp++] = v;\n}\n\n")

	cw.printf("static uint8_t pop(void)\n{\n")
	cw.printf("\tif (sp == 0) fail(%s);\n", cMessage(msgEmpty))
	cw.printf("\treturn st[--sp];\n}\n\n")

	cw.printf("static void check_index(const char *op, uint8_t i)\n{\n")
	cw.printf("\tif (i >= sp) fail(%s, op, i, sp);\n}\n\n", cString(fmtIndex))
}

func (cw *cWriter) prog(index int) {
	code := cw.table.Code(index)
	for at := 0; at < len(code); {
		in, next, err := bytecode.Decode(code, at)
		if err != nil {
			cw.printf("\tfail(%s);\n", cMessage(decodeFault(index, in, err)))
		} else {
			cw.instr(in)
		}
		at = next
	}
}

func (cw *cWriter) instr(in bytecode.Instr) {
	spec := in.Spec
	switch spec.Kind {
	case bytecode.KindShuffle:
		cw.shuffle(spec)

	case bytecode.KindPush:
		cw.printf("\tpush(%d); /* %s */\n", in.Operand, runeio.ByteName(in.Operand))

	case bytecode.KindGet:
		cw.printf("\t{ uint8_t i = pop(); check_index(\"get\", i); push(st[i]); }\n")

	case bytecode.KindSet:
		cw.printf("\t{ uint8_t i = pop(); uint8_t v = pop(); check_index(\"set\", i); st[i] = v; }\n")

	case bytecode.KindHeight:
		cw.printf("\tpush((uint8_t)sp);\n")

	case bytecode.KindBinary:
		cw.printf("\t{ uint8_t b = pop(); uint8_t a = pop(); ")
		if spec.NonZero {
			cw.printf("if (b == 0) fail(%s); ", cMessage(msgZero))
		}
		cw.printf("push((uint8_t)(a %s b)); }\n", spec.Operator)

	case bytecode.KindCall:
		cw.call(spec.Call)

	case bytecode.KindPrint:
		cw.printf("\tputchar(pop()); fflush(stdout);\n")

	case bytecode.KindHalt:
		cw.printf("\treturn;\n")
	}
}

func (cw *cWriter) shuffle(spec *bytecode.Spec) {
	if spec.Pops == 0 && len(spec.Pushes) == 0 {
		cw.printf("\t; /* %s */\n", spec.Name)
		return
	}
	var sb strings.Builder
	sb.WriteString("\t{")
	for _, name := range shuffleVars(spec) {
		if name == "" {
			sb.WriteString(" pop();")
		} else {
			fmt.Fprintf(&sb, " uint8_t %s = pop();", name)
		}
	}
	for _, i := range spec.Pushes {
		fmt.Fprintf(&sb, " push(v%d);", i)
	}
	fmt.Fprintf(&sb, " } /* %s */\n", spec.Name)
	cw.out.WriteString(sb.String())
}

func (cw *cWriter) call(how bytecode.Call) {
	switch how {
	case bytecode.CallOnce:
		cw.printf("\tcall(pop());\n")
	case bytecode.CallSelect:
		cw.printf("\t{ uint8_t e = pop(); uint8_t t = pop(); call(pop() ? t : e); }\n")
	case bytecode.CallWhile:
		cw.printf("\t{ uint8_t f = pop(); do { call(f); } while (pop()); }\n")
	case bytecode.CallTimes:
		cw.printf("\t{ uint8_t f = pop(); uint8_t n = pop(); if (n == 0) fail(%s); while (n--) call(f); }\n", cMessage(msgTimes))
	}
}

// cString renders s as a C string literal; s is printable ASCII.
func cString(s string) string { return strconv.Quote(s) }

// cMessage renders s as a fail format that prints s as is.
func cMessage(s string) string { return cString(strings.ReplaceAll(s, "%", "%%")) }
