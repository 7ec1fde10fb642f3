package mem

import (
	"errors"
	"fmt"
)

// ErrEmpty is returned when popping an empty Stack.
var ErrEmpty = errors.New("pop from empty stack")

// LimitError indicates that a push would exceed the stack's height limit.
type LimitError struct {
	Height uint
	Limit  uint
}

func (lim LimitError) Error() string {
	return fmt.Sprintf("stack limit %v exceeded by push @%v", lim.Limit, lim.Height)
}

// IndexError indicates an indexed stack access at or past the current height.
type IndexError struct {
	Op     string
	Index  uint
	Height uint
}

func (ie IndexError) Error() string {
	return fmt.Sprintf("%v index %v out of bounds of stack height %v", ie.Op, ie.Index, ie.Height)
}

// Stack implements a growable LIFO of bytes, indexable from the bottom.
type Stack struct {
	// Limit specifies a maximum height, past which any push results in an
	// error; zero means unlimited.
	Limit uint

	values []byte
}

// Height returns the number of values on the stack.
func (st *Stack) Height() uint { return uint(len(st.values)) }

// Values returns a copy of the stack contents, bottom first.
func (st *Stack) Values() []byte { return append([]byte{}, st.values...) }

// Push pushes values in order, so the last one ends up on top.
// No partial push is done when the limit would be exceeded.
func (st *Stack) Push(values ...byte) error {
	if lim := st.Limit; lim != 0 {
		if end := st.Height() + uint(len(values)); end > lim {
			return LimitError{end - 1, lim}
		}
	}
	st.values = append(st.values, values...)
	return nil
}

// Pop removes and returns the top value.
func (st *Stack) Pop() (byte, error) {
	i := len(st.values) - 1
	if i < 0 {
		return 0, ErrEmpty
	}
	val := st.values[i]
	st.values = st.values[:i]
	return val, nil
}

// Get returns the value at index, counted from the bottom.
func (st *Stack) Get(index uint) (byte, error) {
	if index >= st.Height() {
		return 0, IndexError{"get", index, st.Height()}
	}
	return st.values[index], nil
}

// Set stores val at index, counted from the bottom.
func (st *Stack) Set(index uint, val byte) error {
	if index >= st.Height() {
		return IndexError{"set", index, st.Height()}
	}
	st.values[index] = val
	return nil
}
