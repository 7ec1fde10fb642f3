package panicerr

import "fmt"

// Recover runs f in a new goroutine wrapped in defer logic that turns any
// abnormal exit or panic into a non-nil error return. A panic raised through
// Halt is unwrapped back into the error it carries.
func Recover(name string, f func() error) error {
	errch := make(chan error, 1)
	go func() {
		defer close(errch)
		defer recoverExitError(name, errch)
		defer recoverPanicError(name, errch)
		errch <- f()
	}()
	return <-errch
}

// Halt aborts the enclosing Recover call, making it return err.
func Halt(err error) {
	panic(haltError{err})
}

type haltError struct{ error }

func (he haltError) Unwrap() error { return he.error }

func recoverExitError(name string, errch chan<- error) {
	select {
	case errch <- exitError(name):
	default:
		// the happy path already did a (maybe nil) send
	}
}

type exitError string

func (name exitError) Error() string {
	if name == "" {
		return "runtime.Goexit called"
	}
	return fmt.Sprintf("%v called runtime.Goexit", string(name))
}
