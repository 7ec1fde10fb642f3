package emit

import (
	"io"
	"strconv"
	"strings"

	"github.com/dave/jennifer/jen"
	"github.com/helvlang/helv/internal/bytecode"
	"github.com/helvlang/helv/internal/runeio"
)

// Go writes table as a self-contained Go main package.
func Go(w io.Writer, table *bytecode.Table, opts ...Option) error {
	gw := goWriter{table: table, cfg: newConfig(opts)}
	f := jen.NewFile("main")
	f.HeaderComment("Code generated by helv. DO NOT EDIT.")
	gw.file(f)
	return f.Render(w)
}

type goWriter struct {
	table *bytecode.Table
	cfg   config
}

func (gw *goWriter) file(f *jen.File) {
	f.Const().Id("stackSize").Op("=").Lit(gw.cfg.stackSize)
	f.Var().Defs(
		jen.Id("st").Index(jen.Id("stackSize")).Byte(),
		jen.Id("sp").Int(),
		jen.Id("progTable").Index().Func().Params(),
	)
	gw.helpers(f)

	progs := make([]jen.Code, gw.table.Len())
	for i := range progs {
		progs[i] = jen.Id(progName(i))
	}
	f.Func().Id("init").Params().Block(
		jen.Id("progTable").Op("=").Index().Func().Params().Values(progs...),
	)

	for i := 0; i < gw.table.Len(); i++ {
		f.Func().Id(progName(i)).Params().Block(gw.prog(i)...)
	}

	f.Func().Id("main").Params().Block(
		jen.Id("progTable").Index(jen.Lit(0)).Call(),
	)
}

func (gw *goWriter) helpers(f *jen.File) {
	f.Func().Id("fail").Params(
		jen.Id("format").String(),
		jen.Id("args").Op("...").Interface(),
	).Block(
		jen.Qual("os", "Stdout").Dot("Sync").Call(),
		jen.Qual("fmt", "Fprintf").Call(
			jen.Qual("os", "Stderr"),
			jen.Lit("ERROR: ").Op("+").Id("format").Op("+").Lit("\n"),
			jen.Id("args").Op("..."),
		),
		jen.Qual("os", "Exit").Call(jen.Lit(1)),
	)

	f.Func().Id("push").Params(jen.Id("v").Byte()).Block(
		jen.If(jen.Id("sp").Op(">=").Id("stackSize")).Block(
			jen.Id("fail").Call(jen.Lit(fmtLimit), jen.Id("stackSize"), jen.Id("sp")),
		),
		jen.Id("st").Index(jen.Id("sp")).Op("=").Id("v"),
		jen.Id("sp").Op("++"),
	)

	f.Func().Id("pop").Params().Byte().Block(
		jen.If(jen.Id("sp").Op("==").Lit(0)).Block(
			jen.Id("fail").Call(jen.Lit(goMessage(msgEmpty))),
		),
		jen.Id("sp").Op("--"),
		jen.Return(jen.Id("st").Index(jen.Id("sp"))),
	)

	f.Func().Id("checkIndex").Params(jen.Id("op").String(), jen.Id("i").Byte()).Block(
		jen.If(jen.Int().Call(jen.Id("i")).Op(">=").Id("sp")).Block(
			jen.Id("fail").Call(jen.Lit(fmtIndex), jen.Id("op"), jen.Id("i"), jen.Id("sp")),
		),
	)

	f.Func().Id("call").Params(jen.Id("f").Byte()).Block(
		jen.If(jen.Int().Call(jen.Id("f")).Op(">=").Len(jen.Id("progTable"))).Block(
			jen.Id("fail").Call(jen.Lit(fmtProg), jen.Id("f"), jen.Len(jen.Id("progTable"))),
		),
		jen.Id("progTable").Index(jen.Id("f")).Call(),
	)
}

func (gw *goWriter) prog(index int) []jen.Code {
	var body []jen.Code
	code := gw.table.Code(index)
	for at := 0; at < len(code); {
		in, next, err := bytecode.Decode(code, at)
		if err != nil {
			body = append(body, jen.Id("fail").Call(jen.Lit(goMessage(decodeFault(index, in, err)))))
		} else {
			body = append(body, gw.instr(in))
		}
		at = next
	}
	return body
}

func pop() *jen.Statement           { return jen.Id("pop").Call() }
func push(v jen.Code) *jen.Statement { return jen.Id("push").Call(v) }
func call(f jen.Code) *jen.Statement { return jen.Id("call").Call(f) }

func (gw *goWriter) instr(in bytecode.Instr) jen.Code {
	spec := in.Spec
	switch spec.Kind {
	case bytecode.KindShuffle:
		return gw.shuffle(spec)

	case bytecode.KindPush:
		return push(jen.Lit(int(in.Operand))).Comment(runeio.ByteName(in.Operand))

	case bytecode.KindGet:
		return jen.Block(
			jen.Id("i").Op(":=").Add(pop()),
			jen.Id("checkIndex").Call(jen.Lit("get"), jen.Id("i")),
			push(jen.Id("st").Index(jen.Id("i"))),
		)

	case bytecode.KindSet:
		return jen.Block(
			jen.Id("i").Op(":=").Add(pop()),
			jen.Id("v").Op(":=").Add(pop()),
			jen.Id("checkIndex").Call(jen.Lit("set"), jen.Id("i")),
			jen.Id("st").Index(jen.Id("i")).Op("=").Id("v"),
		)

	case bytecode.KindHeight:
		return push(jen.Byte().Call(jen.Id("sp")))

	case bytecode.KindBinary:
		stmts := []jen.Code{
			jen.Id("b").Op(":=").Add(pop()),
			jen.Id("a").Op(":=").Add(pop()),
		}
		if spec.NonZero {
			stmts = append(stmts, jen.If(jen.Id("b").Op("==").Lit(0)).Block(
				jen.Id("fail").Call(jen.Lit(goMessage(msgZero))),
			))
		}
		stmts = append(stmts, push(jen.Id("a").Op(spec.Operator).Id("b")))
		return jen.Block(stmts...)

	case bytecode.KindCall:
		return gw.call(spec.Call)

	case bytecode.KindPrint:
		return jen.Qual("os", "Stdout").Dot("Write").Call(jen.Index().Byte().Values(pop()))

	case bytecode.KindHalt:
		return jen.Return()
	}
	return jen.Null()
}

func (gw *goWriter) shuffle(spec *bytecode.Spec) jen.Code {
	if spec.Pops == 0 && len(spec.Pushes) == 0 {
		return jen.Comment(spec.Name)
	}
	if spec.Pops == 1 && len(spec.Pushes) == 0 {
		return pop().Comment(spec.Name)
	}
	names := shuffleVars(spec)
	var stmts []jen.Code
	for _, name := range names {
		if name == "" {
			stmts = append(stmts, pop())
		} else {
			stmts = append(stmts, jen.Id(name).Op(":=").Add(pop()))
		}
	}
	for _, i := range spec.Pushes {
		stmts = append(stmts, push(jen.Id(names[i])))
	}
	return jen.Block(stmts...).Comment(spec.Name)
}

func (gw *goWriter) call(how bytecode.Call) jen.Code {
	switch how {
	case bytecode.CallOnce:
		return call(pop())

	case bytecode.CallSelect:
		return jen.Block(
			jen.Id("e").Op(":=").Add(pop()),
			jen.Id("t").Op(":=").Add(pop()),
			jen.If(pop().Op("!=").Lit(0)).Block(call(jen.Id("t"))).Else().Block(call(jen.Id("e"))),
		)

	case bytecode.CallWhile:
		return jen.Block(
			jen.Id("f").Op(":=").Add(pop()),
			jen.For().Block(
				call(jen.Id("f")),
				jen.If(pop().Op("==").Lit(0)).Block(jen.Break()),
			),
		)

	case bytecode.CallTimes:
		return jen.Block(
			jen.Id("f").Op(":=").Add(pop()),
			jen.Id("n").Op(":=").Add(pop()),
			jen.If(jen.Id("n").Op("==").Lit(0)).Block(
				jen.Id("fail").Call(jen.Lit(goMessage(msgTimes))),
			),
			jen.For(jen.Empty(), jen.Id("n").Op(">").Lit(0), jen.Id("n").Op("--")).Block(call(jen.Id("f"))),
		)
	}
	return jen.Null()
}

func progName(index int) string { return "prog" + strconv.Itoa(index) }

// goMessage renders s as a fail format that prints s as is.
func goMessage(s string) string { return strings.ReplaceAll(s, "%", "%%") }
