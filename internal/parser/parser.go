// Package parser translates Helv source text into a bytecode.Table.
//
// Source mixes two syntaxes. Word mode, the default, spells each instruction
// as a lowercase word like "dup" or "duplicate". Short mode spells each
// instruction as a single character, like "d" or "+". A lone ";" reads the
// next short word in short mode; ";;" toggles short mode for the rest of the
// current bracket scope. Every "[" scope starts out in word mode, and its
// enclosing mode comes back after the matching "]".
package parser

import (
	"strconv"

	"github.com/helvlang/helv/internal/bytecode"
	"github.com/helvlang/helv/internal/fileinput"
)

// Option customizes a Parser.
type Option interface{ apply(p *Parser) }

type withWarnf func(mess string, args ...interface{})

func (f withWarnf) apply(p *Parser) { p.warnf = f }

// WithWarnf directs warnings to a printf-style function.
func WithWarnf(warnf func(mess string, args ...interface{})) Option { return withWarnf(warnf) }

// Parse parses src into a new table whose program 0 is the entry point.
func Parse(src fileinput.Source, opts ...Option) (*bytecode.Table, error) {
	return New(src, opts...).Parse()
}

// Parser holds the state of one parse. The current program is the top of
// an explicit stack of open scopes; each scope carries its own mode.
type Parser struct {
	src   fileinput.Source
	table *bytecode.Table
	at    int

	scopes []scope

	warnf    func(mess string, args ...interface{})
	warnings []Warning
}

type scope struct {
	prog  int
	short bool
	open  int // source offset of the opening bracket
}

// New creates a parser over src.
func New(src fileinput.Source, opts ...Option) *Parser {
	p := &Parser{src: src, table: &bytecode.Table{}}
	for _, opt := range opts {
		if opt != nil {
			opt.apply(p)
		}
	}
	return p
}

// Depth returns how many brackets are currently open.
func (p *Parser) Depth() int {
	if len(p.scopes) == 0 {
		return 0
	}
	return len(p.scopes) - 1
}

// Warnings returns every warning noticed so far.
func (p *Parser) Warnings() []Warning { return p.warnings }

// Table returns the table being built; it is complete after Parse succeeds.
func (p *Parser) Table() *bytecode.Table { return p.table }

// Parse runs the parser to the end of input, returning the finished table or
// the first *SyntaxError.
func (p *Parser) Parse() (*bytecode.Table, error) {
	if len(p.scopes) == 0 {
		p.scopes = append(p.scopes, scope{prog: p.table.Alloc(), open: -1})
	}
	for {
		c := p.peek()
		switch {
		case c == 0:
			p.end()
			return p.table, nil

		case isSpace(c):
			p.at++

		case c == '#':
			p.comment()

		case c == '\'':
			p.quote()

		case c == '[':
			if err := p.open(); err != nil {
				return nil, err
			}

		case c == ']':
			if err := p.close(); err != nil {
				return nil, err
			}

		case c == ';':
			if p.peekAt(1) == ';' {
				p.scope().short = !p.scope().short
				p.at += 2
			} else if p.at++; isShortChar(p.peek()) {
				if err := p.shortWord(); err != nil {
					return nil, err
				}
			} else {
				p.warn(p.at-1, "empty short word after ;")
			}

		case p.scope().short && isShortChar(c):
			if err := p.shortWord(); err != nil {
				return nil, err
			}

		case isDigit(c):
			if err := p.literal(); err != nil {
				return nil, err
			}

		case isLower(c):
			if err := p.word(); err != nil {
				return nil, err
			}

		default:
			return nil, p.fail(p.at, ErrUnexpectedChar, "")
		}
	}
}

func (p *Parser) scope() *scope { return &p.scopes[len(p.scopes)-1] }

func (p *Parser) emit(op bytecode.Opcode, operands ...byte) {
	p.table.Emit(p.scope().prog, op, operands...)
}

// peek returns the byte at the cursor, or 0 at the end of input; a NUL byte
// in the text also ends it.
func (p *Parser) peek() byte { return p.peekAt(0) }

func (p *Parser) peekAt(n int) byte {
	if i := p.at + n; i < len(p.src.Text) {
		return p.src.Text[i]
	}
	return 0
}

func (p *Parser) open() error {
	if p.table.Len() >= bytecode.MaxPrograms {
		return p.fail(p.at, ErrTooManyPrograms, "")
	}
	index := p.table.Alloc()
	p.emit(bytecode.OpPush, byte(index))
	p.scopes = append(p.scopes, scope{prog: index, open: p.at})
	p.at++
	return nil
}

func (p *Parser) close() error {
	if len(p.scopes) < 2 {
		return p.fail(p.at, ErrUnmatchedClose, "")
	}
	p.table.Finish(p.scope().prog)
	p.scopes = p.scopes[:len(p.scopes)-1]
	p.at++
	return nil
}

func (p *Parser) end() {
	for len(p.scopes) > 1 {
		sc := p.scope()
		p.warn(sc.open, "unterminated [")
		p.table.Finish(sc.prog)
		p.scopes = p.scopes[:len(p.scopes)-1]
	}
	p.table.Finish(p.scope().prog)
}

func (p *Parser) comment() {
	start := p.at
	for p.at++; ; p.at++ {
		switch p.peek() {
		case 0:
			p.warn(start, "unterminated comment")
			return
		case '#':
			p.at++
			return
		}
	}
}

func (p *Parser) quote() {
	start := p.at
	for p.at++; ; p.at++ {
		switch c := p.peek(); c {
		case 0:
			p.warn(start, "unterminated character literal")
			return
		case '\'':
			p.at++
			return
		default:
			p.emit(bytecode.OpPush, c)
		}
	}
}

func (p *Parser) word() error {
	start := p.at
	for isLower(p.peek()) {
		p.at++
	}
	word := string(p.src.Text[start:p.at])
	op, ok := bytecode.Word(word)
	if !ok {
		return p.fail(start, ErrUnknownWord, word)
	}
	p.emit(op)
	return nil
}

func (p *Parser) literal() error {
	start := p.at
	for isDigit(p.peek()) {
		p.at++
	}
	digits := string(p.src.Text[start:p.at])
	n, err := strconv.ParseUint(digits, 10, 8)
	if err != nil {
		return p.fail(start, ErrLiteralRange, digits)
	}
	p.emit(bytecode.OpPush, byte(n))
	return nil
}

// shortWord converts one maximal run of short characters, one instruction
// per character except for digit runs, which are literals.
func (p *Parser) shortWord() error {
	for c := p.peek(); isShortChar(c); c = p.peek() {
		if isDigit(c) {
			if err := p.literal(); err != nil {
				return err
			}
			continue
		}
		op, ok := bytecode.Short(c)
		if !ok {
			return p.fail(p.at, ErrUnknownShort, "")
		}
		p.emit(op)
		p.at++
	}
	return nil
}

func (p *Parser) warn(offset int, message string) {
	w := Warning{Loc: p.src.Locate(offset), Message: message}
	p.warnings = append(p.warnings, w)
	if p.warnf != nil {
		p.warnf("%v", w)
	}
}

func (p *Parser) fail(offset int, err error, word string) error {
	se := &SyntaxError{Loc: p.src.Locate(offset), Word: word, Err: err}
	if offset < len(p.src.Text) {
		se.Char = p.src.Text[offset]
	}
	return se
}

func isSpace(c byte) bool { return c == ' ' || c == '\t' || c == '\n' || c == '\r' }
func isDigit(c byte) bool { return '0' <= c && c <= '9' }
func isLower(c byte) bool { return 'a' <= c && c <= 'z' }

func isShortChar(c byte) bool {
	switch c {
	case '+', '-', '*', '/', '%':
		return true
	}
	return isDigit(c) || isLower(c)
}
