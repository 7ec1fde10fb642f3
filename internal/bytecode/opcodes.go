package bytecode

import (
	"fmt"
	"sort"
)

// Opcode identifies one Helv instruction; it is always encoded as one byte.
type Opcode byte

const (
	// stack shuffling
	OpNop    Opcode = iota // nop        n   nothing
	OpPush                 // <literal>  0-9 push the following operand byte
	OpKill                 // kill       k   drop the top
	OpDup                  // duplicate  d   copy the top
	OpSwap                 // swap       s   exchange the top two
	OpGet                  // get        g   pop index, push stack[index]
	OpSet                  // set        e   pop index, pop value, stack[index] = value
	OpHeight               // height     t   push the stack height

	// arithmetic, a OP b where b was on top
	OpAdd // add       +
	OpSub // subtract  -
	OpMul // multiply  *
	OpDiv // divide    /
	OpMod // modulus   %

	// control flow, operating on program table indices
	OpExec    // execute  x  pop f, run f
	OpIfElse  // ifelse   i  pop else, pop if, pop cond, run one
	OpDoWhile // dowhile  w  pop f, run f while it leaves non-zero
	OpRepeat  // repeat   r  pop f, pop n, run f n times

	// io and termination
	OpPrint // print  p  pop a byte and write it
	OpHalt  // halt   h  return from the current program

	NumOpcodes
)

// Kind groups opcodes by how a backend carries them out. Backends implement
// each Kind once, parameterized by the fields of the opcode's Spec.
type Kind uint8

const (
	KindShuffle Kind = iota // pop Pops values, push them back per Pushes
	KindPush                // push the operand byte
	KindGet                 // pop index, push a copy of that stack slot
	KindSet                 // pop index, pop value, store value at index
	KindHeight              // push the stack height
	KindBinary              // pop b, pop a, push a Operator b
	KindCall                // pop program indices and run per Call
	KindPrint               // pop a byte and write it to output
	KindHalt                // return from the current program
)

// Call selects how a KindCall instruction chooses and repeats its program.
type Call uint8

const (
	CallOnce   Call = iota // pop f; run f
	CallSelect             // pop else, pop if, pop cond; run if when cond != 0, else otherwise
	CallWhile              // pop f; run f, then pop a flag, again while the flag is non-zero
	CallTimes              // pop f, pop n; run f n times; n == 0 is an error
)

// Spec declares everything the toolchain knows about one opcode: how it is
// spelled in source, how it is encoded, and what it does.
type Spec struct {
	Op       Opcode
	Name     string   // mnemonic used in listings
	Words    []string // word mode spellings
	Short    byte     // short mode character, 0 when there is none
	Operands int      // operand bytes following the opcode
	Kind     Kind

	// KindShuffle: Pops values are popped, value 0 being the old top; Pushes
	// names popped values to push back, bottom-most first.
	Pops   int
	Pushes []int

	// KindBinary
	Operator string
	NonZero  bool // the top operand must not be zero

	// KindCall
	Call Call
}

var specs = [NumOpcodes]Spec{
	{Op: OpNop, Name: "nop", Words: []string{"nop"}, Short: 'n', Kind: KindShuffle},
	{Op: OpPush, Name: "push", Operands: 1, Kind: KindPush},
	{Op: OpKill, Name: "kill", Words: []string{"kil", "kill"}, Short: 'k', Kind: KindShuffle, Pops: 1},
	{Op: OpDup, Name: "dup", Words: []string{"dup", "duplicate"}, Short: 'd', Kind: KindShuffle, Pops: 1, Pushes: []int{0, 0}},
	{Op: OpSwap, Name: "swap", Words: []string{"swp", "swap"}, Short: 's', Kind: KindShuffle, Pops: 2, Pushes: []int{0, 1}},
	{Op: OpGet, Name: "get", Words: []string{"get"}, Short: 'g', Kind: KindGet},
	{Op: OpSet, Name: "set", Words: []string{"set"}, Short: 'e', Kind: KindSet},
	{Op: OpHeight, Name: "height", Words: []string{"hei", "height"}, Short: 't', Kind: KindHeight},

	{Op: OpAdd, Name: "add", Words: []string{"add"}, Short: '+', Kind: KindBinary, Operator: "+"},
	{Op: OpSub, Name: "sub", Words: []string{"sub", "subtract"}, Short: '-', Kind: KindBinary, Operator: "-"},
	{Op: OpMul, Name: "mul", Words: []string{"mul", "multiply"}, Short: '*', Kind: KindBinary, Operator: "*"},
	{Op: OpDiv, Name: "div", Words: []string{"div", "divide"}, Short: '/', Kind: KindBinary, Operator: "/", NonZero: true},
	{Op: OpMod, Name: "mod", Words: []string{"mod", "modulus"}, Short: '%', Kind: KindBinary, Operator: "%", NonZero: true},

	{Op: OpExec, Name: "exec", Words: []string{"exe", "execute"}, Short: 'x', Kind: KindCall, Call: CallOnce},
	{Op: OpIfElse, Name: "ifelse", Words: []string{"ife", "ifelse"}, Short: 'i', Kind: KindCall, Call: CallSelect},
	{Op: OpDoWhile, Name: "dowhile", Words: []string{"dwh", "dowhile"}, Short: 'w', Kind: KindCall, Call: CallWhile},
	{Op: OpRepeat, Name: "repeat", Words: []string{"rep", "repeat"}, Short: 'r', Kind: KindCall, Call: CallTimes},

	{Op: OpPrint, Name: "print", Words: []string{"pri", "print"}, Short: 'p', Kind: KindPrint},
	{Op: OpHalt, Name: "halt", Words: []string{"hlt", "halt"}, Short: 'h', Kind: KindHalt},
}

var (
	words    map[string]Opcode
	shorts   [256]Opcode
	hasShort [256]bool
)

func init() {
	words = make(map[string]Opcode)
	for _, spec := range specs {
		for _, word := range spec.Words {
			if prior, dup := words[word]; dup {
				panic(fmt.Sprintf("bytecode: word %q spells both %v and %v", word, prior, spec.Op))
			}
			words[word] = spec.Op
		}
		if c := spec.Short; c != 0 {
			if hasShort[c] {
				panic(fmt.Sprintf("bytecode: short %q spells both %v and %v", c, shorts[c], spec.Op))
			}
			shorts[c] = spec.Op
			hasShort[c] = true
		}
	}
}

// Lookup returns the Spec for op; ok is false for bytes that are not opcodes.
func Lookup(op Opcode) (spec *Spec, ok bool) {
	if op >= NumOpcodes {
		return nil, false
	}
	return &specs[op], true
}

// Specs returns every opcode Spec in encoding order.
func Specs() []Spec {
	all := make([]Spec, len(specs))
	copy(all, specs[:])
	return all
}

// Word resolves a word mode spelling.
func Word(word string) (Opcode, bool) {
	op, ok := words[word]
	return op, ok
}

// Words lists every word mode spelling, sorted.
func Words() []string {
	all := make([]string, 0, len(words))
	for word := range words {
		all = append(all, word)
	}
	sort.Strings(all)
	return all
}

// Short resolves a short mode character; digits are not included, since they
// start a literal rather than naming an opcode.
func Short(c byte) (Opcode, bool) {
	return shorts[c], hasShort[c]
}

func (op Opcode) String() string {
	if spec, ok := Lookup(op); ok {
		return spec.Name
	}
	return fmt.Sprintf("op(%d)", byte(op))
}

// Apply computes a KindBinary opcode's result, wrapping modulo 256.
// Callers check NonZero before applying a division.
func (spec *Spec) Apply(a, b byte) byte {
	switch spec.Operator {
	case "+":
		return a + b
	case "-":
		return a - b
	case "*":
		return a * b
	case "/":
		return a / b
	case "%":
		return a % b
	}
	panic(fmt.Sprintf("bytecode: %v has no operator", spec.Op))
}
