package panicerr_test

import (
	"errors"
	"runtime"
	"testing"

	"github.com/helvlang/helv/internal/panicerr"
	"github.com/stretchr/testify/assert"
)

func TestRecover(t *testing.T) {
	errBoom := errors.New("boom")

	for _, tc := range []struct {
		name   string
		f      func() error
		expect func(t *testing.T, err error)
	}{
		{"nil", func() error { return nil }, func(t *testing.T, err error) {
			assert.NoError(t, err)
		}},
		{"returned", func() error { return errBoom }, func(t *testing.T, err error) {
			assert.Equal(t, errBoom, err)
			assert.False(t, panicerr.IsPanic(err))
		}},
		{"halted", func() error {
			panicerr.Halt(errBoom)
			return nil
		}, func(t *testing.T, err error) {
			assert.Equal(t, errBoom, err, "expected halt error to be unwrapped")
			assert.False(t, panicerr.IsPanic(err))
		}},
		{"paniced", func() error {
			var m map[string]int
			m["nope"]++
			return nil
		}, func(t *testing.T, err error) {
			assert.True(t, panicerr.IsPanic(err))
			assert.Contains(t, err.Error(), "test paniced")
			var rerr runtime.Error
			assert.True(t, errors.As(err, &rerr), "expected runtime error cause")
		}},
		{"goexit", func() error {
			runtime.Goexit()
			return nil
		}, func(t *testing.T, err error) {
			assert.True(t, panicerr.IsExit(err))
			assert.EqualError(t, err, "test called runtime.Goexit")
		}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			tc.expect(t, panicerr.Recover("test", tc.f))
		})
	}
}
