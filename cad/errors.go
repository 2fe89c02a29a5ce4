package cad

import (
	"errors"
	"fmt"
	"runtime/debug"
)

var (
	// ErrEmptySolid is returned when an operation is issued on the zero Solid.
	ErrEmptySolid = errors.New("cad: empty solid")
	// ErrDuplicateName is returned by Show when a name is already displayed.
	ErrDuplicateName = errors.New("cad: duplicate display name")
)

// KernelError is a failure inside the geometry kernel. It is not
// recoverable by the caller and should be propagated.
type KernelError struct {
	// Op names the session or solid operation that failed.
	Op  string
	Err error
	// Stack is the stack trace at the point of a recovered kernel panic.
	// Empty when the kernel returned an error.
	Stack string
}

func (e *KernelError) Error() string {
	return fmt.Sprintf("cad: %s: %v", e.Op, e.Err)
}

func (e *KernelError) Unwrap() error { return e.Err }

// recoverKernel converts a kernel panic into a *KernelError stored in err.
func recoverKernel(op string, err *error) {
	a := recover()
	if a == nil {
		return
	}
	ke := &KernelError{Op: op, Stack: string(debug.Stack())}
	if e, ok := a.(error); ok {
		ke.Err = e
	} else {
		ke.Err = fmt.Errorf("%v", a)
	}
	*err = ke
}
