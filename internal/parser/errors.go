package parser

import (
	"errors"
	"fmt"

	"github.com/helvlang/helv/internal/fileinput"
	"github.com/helvlang/helv/internal/runeio"
)

// Causes of a SyntaxError.
var (
	ErrUnexpectedChar  = errors.New("unexpected character")
	ErrUnknownWord     = errors.New("unknown word")
	ErrUnknownShort    = errors.New("unknown short instruction")
	ErrLiteralRange    = errors.New("literal does not fit in a byte")
	ErrUnmatchedClose  = errors.New("unmatched closing bracket")
	ErrTooManyPrograms = errors.New("too many programs")
)

// SyntaxError is the fatal error reported for malformed source. Word holds
// the offending word or literal when there is one, otherwise Char holds the
// offending byte.
type SyntaxError struct {
	Loc  fileinput.Location
	Char byte
	Word string
	Err  error
}

func (se *SyntaxError) Error() string {
	if se.Word != "" {
		return fmt.Sprintf("%v: %v %q", se.Loc, se.Err, se.Word)
	}
	return fmt.Sprintf("%v: %v %v", se.Loc, se.Err, runeio.ByteName(se.Char))
}

func (se *SyntaxError) Unwrap() error { return se.Err }

// Warning is a recoverable problem noticed while parsing.
type Warning struct {
	Loc     fileinput.Location
	Message string
}

func (w Warning) String() string { return fmt.Sprintf("%v: %v", w.Loc, w.Message) }
