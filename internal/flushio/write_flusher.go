package flushio

import (
	"bufio"
	"io"
)

// WriteFlusher is a flush-able io.Writer.
type WriteFlusher interface {
	io.Writer
	Flush() error
}

var discardWriteFlusher WriteFlusher = nopFlusher{io.Discard}

// NewWriteFlusher creates a new flushable writer: if the given writer is a
// buffer, a wrapping with a noop Flush is returned; otherwise, unless the
// original writer is a WriteFlusher, a new bufio.Writer is returned.
func NewWriteFlusher(w io.Writer) WriteFlusher {
	if w == nil || w == io.Discard {
		return discardWriteFlusher
	}

	if wf, is := w.(WriteFlusher); is {
		return wf
	}

	// in memory buffers, as implemented by types like bytes.Buffer and
	// strings.Builder, do not need to be flushed
	type buffer interface {
		io.Writer
		Cap() int
		Len() int
		Grow(n int)
		Reset()
	}
	if _, isBuffer := w.(buffer); isBuffer {
		return nopFlusher{w}
	}

	return bufio.NewWriter(w)
}

type nopFlusher struct{ io.Writer }

func (nf nopFlusher) Flush() error { return nil }

// ByteSink writes single bytes through one or more destinations, flushing
// all of them after every byte.
type ByteSink struct {
	dests []WriteFlusher
	buf   [1]byte
}

// NewByteSink creates a sink writing into every non-nil writer given.
func NewByteSink(ws ...io.Writer) *ByteSink {
	var sink ByteSink
	for _, w := range ws {
		sink.Tee(w)
	}
	return &sink
}

// Tee adds another destination to the sink.
func (sink *ByteSink) Tee(w io.Writer) {
	if w != nil {
		sink.dests = append(sink.dests, NewWriteFlusher(w))
	}
}

// WriteByte writes b to every destination and flushes them.
func (sink *ByteSink) WriteByte(b byte) error {
	sink.buf[0] = b
	for _, wf := range sink.dests {
		if _, err := wf.Write(sink.buf[:]); err != nil {
			return err
		}
		if err := wf.Flush(); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes every destination, returning the first error.
func (sink *ByteSink) Flush() (err error) {
	for _, wf := range sink.dests {
		if ferr := wf.Flush(); err == nil {
			err = ferr
		}
	}
	return err
}
