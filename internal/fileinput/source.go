package fileinput

import (
	"bytes"
	"fmt"
	"io"
	"os"
)

// Location names a line and column in a Source.
// Lines and columns count from 1; columns count bytes.
type Location struct {
	Name string
	Line int
	Col  int
}

func (loc Location) String() string { return fmt.Sprintf("%v:%v:%v", loc.Name, loc.Line, loc.Col) }

// Source is a named body of program text.
type Source struct {
	Name string
	Text []byte
}

// Inline creates a source for text given directly, e.g. on the command line.
func Inline(text string) Source {
	return Source{Name: "<inline>", Text: []byte(text)}
}

// ReadFile loads a source from the named file.
func ReadFile(name string) (Source, error) {
	text, err := os.ReadFile(name)
	if err != nil {
		return Source{}, err
	}
	return Source{Name: name, Text: text}, nil
}

// Read loads a source from r, naming it after r when r has a Name method.
func Read(r io.Reader) (Source, error) {
	text, err := io.ReadAll(r)
	if err != nil {
		return Source{}, err
	}
	return Source{Name: nameOf(r), Text: text}, nil
}

// Locate returns the location of the byte at offset; offsets at or past the
// end of text locate the end of input.
func (src Source) Locate(offset int) Location {
	if offset > len(src.Text) {
		offset = len(src.Text)
	}
	if offset < 0 {
		offset = 0
	}
	head := src.Text[:offset]
	loc := Location{Name: src.Name, Line: 1 + bytes.Count(head, []byte{'\n'})}
	loc.Col = 1 + offset - (bytes.LastIndexByte(head, '\n') + 1)
	return loc
}

// LineAt returns the text of the line holding the byte at offset, without
// its line terminator.
func (src Source) LineAt(offset int) string {
	if offset > len(src.Text) {
		offset = len(src.Text)
	}
	if offset < 0 {
		offset = 0
	}
	start := bytes.LastIndexByte(src.Text[:offset], '\n') + 1
	end := len(src.Text)
	if i := bytes.IndexByte(src.Text[offset:], '\n'); i >= 0 {
		end = offset + i
	}
	return string(bytes.TrimSuffix(src.Text[start:end], []byte{'\r'}))
}

func nameOf(obj interface{}) string {
	if nom, ok := obj.(interface{ Name() string }); ok {
		return nom.Name()
	}
	return fmt.Sprintf("<unnamed %T>", obj)
}
