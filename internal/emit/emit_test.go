package emit

import (
	"bufio"
	"bytes"
	"context"
	"go/parser"
	"go/token"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/helvlang/helv/internal/bytecode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func op(ops ...bytecode.Opcode) []byte {
	code := make([]byte, len(ops))
	for i, o := range ops {
		code[i] = byte(o)
	}
	return code
}

func TestCInstr(t *testing.T) {
	for _, tc := range []struct {
		code []byte
		want string
	}{
		{op(bytecode.OpNop), "\t; /* nop */\n"},
		{[]byte{byte(bytecode.OpPush), 'A'}, "\tpush(65); /* 'A' */\n"},
		{[]byte{byte(bytecode.OpPush), 10}, "\tpush(10); /* <NL> */\n"},
		{op(bytecode.OpKill), "\t{ pop(); } /* kill */\n"},
		{op(bytecode.OpDup), "\t{ uint8_t v0 = pop(); push(v0); push(v0); } /* dup */\n"},
		{op(bytecode.OpSwap), "\t{ uint8_t v0 = pop(); uint8_t v1 = pop(); push(v0); push(v1); } /* swap */\n"},
		{op(bytecode.OpGet), "\t{ uint8_t i = pop(); check_index(\"get\", i); push(st[i]); }\n"},
		{op(bytecode.OpSet), "\t{ uint8_t i = pop(); uint8_t v = pop(); check_index(\"set\", i); st[i] = v; }\n"},
		{op(bytecode.OpHeight), "\tpush((uint8_t)sp);\n"},
		{op(bytecode.OpAdd), "\t{ uint8_t b = pop(); uint8_t a = pop(); push((uint8_t)(a + b)); }\n"},
		{op(bytecode.OpSub), "\t{ uint8_t b = pop(); uint8_t a = pop(); push((uint8_t)(a - b)); }\n"},
		{op(bytecode.OpMul), "\t{ uint8_t b = pop(); uint8_t a = pop(); push((uint8_t)(a * b)); }\n"},
		{op(bytecode.OpDiv), "\t{ uint8_t b = pop(); uint8_t a = pop(); if (b == 0) fail(\"division by zero\"); push((uint8_t)(a / b)); }\n"},
		{op(bytecode.OpMod), "\t{ uint8_t b = pop(); uint8_t a = pop(); if (b == 0) fail(\"division by zero\"); push((uint8_t)(a % b)); }\n"},
		{op(bytecode.OpExec), "\tcall(pop());\n"},
		{op(bytecode.OpIfElse), "\t{ uint8_t e = pop(); uint8_t t = pop(); call(pop() ? t : e); }\n"},
		{op(bytecode.OpDoWhile), "\t{ uint8_t f = pop(); do { call(f); } while (pop()); }\n"},
		{op(bytecode.OpRepeat), "\t{ uint8_t f = pop(); uint8_t n = pop(); if (n == 0) fail(\"repeat count is zero\"); while (n--) call(f); }\n"},
		{op(bytecode.OpPrint), "\tputchar(pop()); fflush(stdout);\n"},
		{op(bytecode.OpHalt), "\treturn;\n"},
		{[]byte{250}, "\tfail(\"prog 0 @0 op(250): invalid opcode 250\");\n"},
		{op(bytecode.OpPush), "\tfail(\"prog 0 @0 push: push instruction has no operand byte\");\n"},
	} {
		var buf bytes.Buffer
		cw := cWriter{
			table: bytecode.NewTable(tc.code),
			cfg:   newConfig(nil),
			out:   bufio.NewWriter(&buf),
		}
		cw.prog(0)
		require.NoError(t, cw.out.Flush())
		assert.Equal(t, tc.want, buf.String(), "expected C for %v", tc.code)
	}
}

func TestC(t *testing.T) {
	table := bytecode.NewTable(
		[]byte{byte(bytecode.OpPush), 1, byte(bytecode.OpExec)},
		[]byte{byte(bytecode.OpPush), 'H', byte(bytecode.OpPrint), byte(bytecode.OpHalt)},
	)

	var out strings.Builder
	require.NoError(t, C(&out, table))
	src := out.String()
	for _, want := range []string{
		"#include <stdio.h>\n",
		"#include <stdlib.h>\n",
		"#include <stdint.h>\n",
		"#define STACK_SIZE 99999\n",
		"#define NUM_PROGS 2\n",
		"static uint8_t st[STACK_SIZE];\n",
		"static unsigned int sp = 0;\n",
		"static void prog_0(void);\nstatic void prog_1(void);\n",
		"static void (*const prog_table[NUM_PROGS])(void) = {\n\tprog_0,\n\tprog_1,\n};\n",
		"static void prog_1(void)\n{\n\tpush(72); /* 'H' */\n\tputchar(pop()); fflush(stdout);\n\treturn;\n}\n",
		"int main(void)\n{\n\tprog_table[0]();\n\treturn 0;\n}\n",
	} {
		assert.Contains(t, src, want)
	}

	out.Reset()
	require.NoError(t, C(&out, table, WithStackSize(16)))
	assert.Contains(t, out.String(), "#define STACK_SIZE 16\n")
}

func TestGo(t *testing.T) {
	table := bytecode.NewTable(
		[]byte{
			byte(bytecode.OpPush), 1, byte(bytecode.OpPush), 3, byte(bytecode.OpRepeat),
			byte(bytecode.OpPush), 0, byte(bytecode.OpPush), 1, byte(bytecode.OpPush), 2, byte(bytecode.OpIfElse),
			byte(bytecode.OpKill), byte(bytecode.OpSwap), byte(bytecode.OpHeight), byte(bytecode.OpNop),
		},
		[]byte{byte(bytecode.OpPush), 'H', byte(bytecode.OpPrint), byte(bytecode.OpHalt)},
		[]byte{byte(bytecode.OpGet), byte(bytecode.OpSet), byte(bytecode.OpMod), byte(bytecode.OpDoWhile), 250},
	)

	var out strings.Builder
	require.NoError(t, Go(&out, table, WithStackSize(64)))
	src := out.String()

	_, err := parser.ParseFile(token.NewFileSet(), "main.go", src, parser.AllErrors)
	require.NoError(t, err, "expected valid Go:\n%s", src)

	for _, want := range []string{
		"// Code generated by helv. DO NOT EDIT.",
		"package main",
		"const stackSize = 64",
		"progTable = []func(){prog0, prog1, prog2}",
		"func prog1() {",
		"push(72) // 'H'",
		"os.Stdout.Write([]byte{pop()})",
		"if b == 0 {",
		"for ; n > 0; n-- {",
		`fail("prog 2 @4 op(250): invalid opcode 250")`,
		"progTable[0]()",
	} {
		assert.Contains(t, src, want)
	}
}

// TestCCompiled builds emitted C with the host C compiler when one is
// available.
func TestCCompiled(t *testing.T) {
	cc, err := exec.LookPath("cc")
	if err != nil {
		t.Skip("no C compiler on PATH")
	}

	for _, tc := range []struct {
		name    string
		table   *bytecode.Table
		stdout  string
		failure string
	}{
		{
			name: "hello",
			table: bytecode.NewTable(
				[]byte{
					byte(bytecode.OpPush), 'H', byte(bytecode.OpPrint),
					byte(bytecode.OpPush), 1, byte(bytecode.OpExec),
					byte(bytecode.OpPush), '\n', byte(bytecode.OpPrint),
				},
				[]byte{byte(bytecode.OpPush), 'i', byte(bytecode.OpPrint), byte(bytecode.OpHalt), byte(bytecode.OpKill)},
			),
			stdout: "Hi\n",
		},
		{
			name: "divide by zero",
			table: bytecode.NewTable([]byte{
				byte(bytecode.OpPush), '!', byte(bytecode.OpPrint),
				byte(bytecode.OpPush), 7, byte(bytecode.OpPush), 0, byte(bytecode.OpDiv),
			}),
			stdout:  "!",
			failure: "ERROR: division by zero\n",
		},
		{
			name:    "bad program index",
			table:   bytecode.NewTable([]byte{byte(bytecode.OpPush), 9, byte(bytecode.OpExec)}),
			failure: "ERROR: program index 9 out of range [0, 1)\n",
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			dir := t.TempDir()
			srcName := filepath.Join(dir, "prog.c")
			binName := filepath.Join(dir, "prog")

			var src bytes.Buffer
			require.NoError(t, C(&src, tc.table))
			require.NoError(t, os.WriteFile(srcName, src.Bytes(), 0o644))

			build := exec.CommandContext(ctx, cc, "-o", binName, srcName)
			buildOut, err := build.CombinedOutput()
			require.NoError(t, err, "cc failed:\n%s\n%s", buildOut, src.String())

			var stdout, stderr bytes.Buffer
			run := exec.CommandContext(ctx, binName)
			run.Stdout, run.Stderr = &stdout, &stderr
			err = run.Run()
			assert.Equal(t, tc.stdout, stdout.String(), "expected stdout")
			if tc.failure == "" {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err, "expected non-zero exit")
				assert.Equal(t, tc.failure, stderr.String(), "expected stderr")
			}
		})
	}
}
