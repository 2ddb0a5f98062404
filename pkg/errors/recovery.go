package errors

import (
	"fmt"
	"runtime/debug"
)

// PanicError is a recovered panic converted into an error. The gonum mat
// routines panic on malformed shapes instead of returning errors;
// estimator entry points recover those panics and surface them as
// PanicError values so callers only ever see error returns.
type PanicError struct {
	// Operation identifies where the panic was recovered
	Operation string

	// Value is what was passed to panic()
	Value interface{}

	// StackTrace snapshots the goroutine stack at recovery time
	StackTrace string
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("localreg: panic in %s: %v", e.Operation, e.Value)
}

// String includes the captured stack trace.
func (e *PanicError) String() string {
	return fmt.Sprintf("%s\n%s", e.Error(), e.StackTrace)
}

// Recover converts a panic into an error assigned through err. Use it as a
// deferred call in methods whose body works with gonum matrices:
//
//	func (net *RBFNet) FitWeights(...) (err error) {
//	    defer errors.Recover(&err, "RBFNet.FitWeights")
//	    ...
//	}
//
// When the method already returned an error, the panic message wraps it so
// neither failure is lost.
func Recover(err *error, operation string) {
	r := recover()
	if r == nil {
		return
	}
	if *err != nil {
		*err = fmt.Errorf("localreg: panic in %s: %v (earlier error: %w)", operation, r, *err)
		return
	}
	*err = &PanicError{
		Operation:  operation,
		Value:      r,
		StackTrace: string(debug.Stack()),
	}
}
