package bridge

import (
	"errors"
	"fmt"
)

var (
	ErrNotInstantiable  = errors.New("class is not instantiable")
	ErrReceiverMismatch = errors.New("receiver type mismatch")
	ErrAbstractMethod   = errors.New("cannot call abstract method")
)

// ContractViolation is the panic value raised when the embedding code breaks
// the declaration protocol, for example by declaring a method after the class
// was initialized. It signals a bug in the caller, never a data problem.
type ContractViolation struct {
	Message string
}

func (cv *ContractViolation) Error() string {
	return "bridge: contract violation: " + cv.Message
}

func violation(format string, args ...any) {
	panic(&ContractViolation{Message: fmt.Sprintf(format, args...)})
}

// RegistrationError reports that the runtime refused a class. It is fatal
// for extension start.
type RegistrationError struct {
	Class string
	Err   error
}

func (e *RegistrationError) Error() string {
	return fmt.Sprintf("bridge: register class %s: %v", e.Class, e.Err)
}

func (e *RegistrationError) Unwrap() error {
	return e.Err
}
