package parser_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/helvlang/helv/internal/bytecode"
	"github.com/helvlang/helv/internal/fileinput"
	"github.com/helvlang/helv/internal/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// code assembles opcodes and operand ints or runes into bytecode.
func code(args ...interface{}) []byte {
	buf := []byte{}
	for _, arg := range args {
		switch v := arg.(type) {
		case bytecode.Opcode:
			buf = append(buf, byte(v))
		case int:
			buf = append(buf, byte(v))
		case rune:
			buf = append(buf, byte(v))
		default:
			panic(fmt.Sprintf("code: unsupported %T", arg))
		}
	}
	return buf
}

const (
	nop    = bytecode.OpNop
	push   = bytecode.OpPush
	kill   = bytecode.OpKill
	dup    = bytecode.OpDup
	swap   = bytecode.OpSwap
	sub    = bytecode.OpSub
	mul    = bytecode.OpMul
	add    = bytecode.OpAdd
	exec   = bytecode.OpExec
	ifelse = bytecode.OpIfElse
	pri    = bytecode.OpPrint
)

func TestParse(t *testing.T) {
	for _, tc := range []struct {
		name     string
		src      string
		progs    [][]byte
		warnings []string
		err      error
		errStr   string
	}{
		{
			name:  "words",
			src:   "dup swap\tkill\r\nduplicate nop",
			progs: [][]byte{code(dup, swap, kill, dup, nop)},
		},
		{
			name:  "empty",
			src:   "",
			progs: [][]byte{code()},
		},
		{
			name:  "word mode literals",
			src:   "10 3 ;-",
			progs: [][]byte{code(push, 10, push, 3, sub)},
		},
		{
			name:  "short mode literals",
			src:   ";;10 3-;;",
			progs: [][]byte{code(push, 10, push, 3, sub)},
		},
		{
			name:  "short word run",
			src:   ";;2 3*+p;; pri",
			progs: [][]byte{code(push, 2, push, 3, mul, add, pri, pri)},
		},
		{
			name:  "lone semicolon reverts after one short word",
			src:   ";dd dup",
			progs: [][]byte{code(dup, dup, dup)},
		},
		{
			name:     "empty short word",
			src:      "; dup",
			progs:    [][]byte{code(dup)},
			warnings: []string{"<test>:1:1: empty short word after ;"},
		},
		{
			name:  "max literal",
			src:   "255 0",
			progs: [][]byte{code(push, 255, push, 0)},
		},
		{
			name:   "literal range",
			src:    "dup 256 print",
			err:    parser.ErrLiteralRange,
			errStr: `<test>:1:5: literal does not fit in a byte "256"`,
		},
		{
			name: "literal range in short mode",
			src:  ";;1 999;;",
			err:  parser.ErrLiteralRange,
		},
		{
			name:  "character literal",
			src:   "'Hi'",
			progs: [][]byte{code(push, 'H', push, 'i')},
		},
		{
			name:  "character literal keeps anything",
			src:   "'[#;' pri",
			progs: [][]byte{code(push, '[', push, '#', push, ';', pri)},
		},
		{
			name:     "unterminated character literal",
			src:      "dup\n'ab",
			progs:    [][]byte{code(dup, push, 'a', push, 'b')},
			warnings: []string{"<test>:2:1: unterminated character literal"},
		},
		{
			name:  "comment",
			src:   "# a comment, [ ] and all # nop",
			progs: [][]byte{code(nop)},
		},
		{
			name:     "unterminated comment",
			src:      "nop # trailing",
			progs:    [][]byte{code(nop)},
			warnings: []string{"<test>:1:5: unterminated comment"},
		},
		{
			name: "brackets",
			src:  "[ 'A' print ] execute",
			progs: [][]byte{
				code(push, 1, exec),
				code(push, 'A', pri),
			},
		},
		{
			name: "nested brackets",
			src:  "[[]] [dup]",
			progs: [][]byte{
				code(push, 1, push, 3),
				code(push, 2),
				code(),
				code(dup),
			},
		},
		{
			name: "bracket scope starts in word mode",
			src:  ";; [ dup ] d ;;",
			progs: [][]byte{
				code(push, 1, dup),
				code(dup),
			},
		},
		{
			name: "bracket scope mode does not leak",
			src:  "[;;d] d",
			err:  parser.ErrUnknownWord,
		},
		{
			name: "short ifelse",
			src:  ";;1[;k][;d]i;;",
			progs: [][]byte{
				code(push, 1, push, 1, push, 2, ifelse),
				code(kill),
				code(dup),
			},
		},
		{
			name: "unterminated brackets",
			src:  "[[dup",
			progs: [][]byte{
				code(push, 1),
				code(push, 2),
				code(dup),
			},
			warnings: []string{
				"<test>:1:2: unterminated [",
				"<test>:1:1: unterminated [",
			},
		},
		{
			name:  "nul ends input",
			src:   "dup\x00 $$$",
			progs: [][]byte{code(dup)},
		},
		{
			name:   "unknown word",
			src:    "dup\n  dupe",
			err:    parser.ErrUnknownWord,
			errStr: `<test>:2:3: unknown word "dupe"`,
		},
		{
			name:   "unknown short",
			src:    ";;dq;;",
			err:    parser.ErrUnknownShort,
			errStr: `<test>:1:4: unknown short instruction 'q'`,
		},
		{
			name:   "unmatched close",
			src:    "dup ]",
			err:    parser.ErrUnmatchedClose,
			errStr: `<test>:1:5: unmatched closing bracket ']'`,
		},
		{
			name:   "unexpected char",
			src:    "dup $",
			err:    parser.ErrUnexpectedChar,
			errStr: `<test>:1:5: unexpected character '$'`,
		},
		{
			name: "uppercase is not a word",
			src:  "Dup",
			err:  parser.ErrUnexpectedChar,
		},
		{
			name: "operators need short mode",
			src:  "1 2 +",
			err:  parser.ErrUnexpectedChar,
		},
		{
			name:  "program limit",
			src:   strings.Repeat("[]", bytecode.MaxPrograms-1),
			progs: nil, // checked by length below
		},
		{
			name: "too many programs",
			src:  strings.Repeat("[]", bytecode.MaxPrograms),
			err:  parser.ErrTooManyPrograms,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			src := fileinput.Source{Name: "<test>", Text: []byte(tc.src)}
			var logged []string
			p := parser.New(src, parser.WithWarnf(func(mess string, args ...interface{}) {
				logged = append(logged, fmt.Sprintf(mess, args...))
			}))
			table, err := p.Parse()

			if tc.err != nil {
				require.Error(t, err, "expected parse error")
				assert.True(t, errors.Is(err, tc.err), "expected %v, got %v", tc.err, err)
				var se *parser.SyntaxError
				assert.True(t, errors.As(err, &se), "expected a *SyntaxError")
				if tc.errStr != "" {
					assert.EqualError(t, err, tc.errStr)
				}
				assert.Nil(t, table, "expected no table from a failed parse")
				return
			}
			require.NoError(t, err, "unexpected parse error")

			if tc.progs != nil {
				var progs [][]byte
				for i := 0; i < table.Len(); i++ {
					prog, _ := table.Program(i)
					assert.True(t, prog.Complete, "expected prog %v complete", i)
					progs = append(progs, append([]byte{}, prog.Code...))
				}
				assert.Equal(t, tc.progs, progs, "expected programs")
			} else {
				assert.Equal(t, bytecode.MaxPrograms, table.Len())
			}

			var warnings []string
			for _, w := range p.Warnings() {
				warnings = append(warnings, w.String())
			}
			assert.Equal(t, tc.warnings, warnings, "expected warnings")
			assert.Equal(t, tc.warnings, logged, "expected warnings to be logged")
		})
	}
}

func TestParserDepth(t *testing.T) {
	var depths []int
	var p *parser.Parser
	p = parser.New(fileinput.Inline("[[[dup]"), parser.WithWarnf(func(string, ...interface{}) {
		depths = append(depths, p.Depth())
	}))
	assert.Equal(t, 0, p.Depth())
	_, err := p.Parse()
	require.NoError(t, err)
	assert.Equal(t, []int{2, 1}, depths, "expected one warning per unclosed bracket, innermost first")
	assert.Equal(t, 0, p.Depth())
	assert.Equal(t, 4, p.Table().Len())
}
