package bridge

import "fmt"

// Base is the root of every native object exposed to a runtime. Native
// callables receive it as their implicit receiver.
type Base any

// Destructor is implemented by natives that need to know when the runtime
// destroys their instance.
type Destructor interface {
	Destruct()
}

// Convention identifies one of the four native method shapes.
type Convention int

const (
	NoArgsNoReturn Convention = iota
	ArgsNoReturn
	NoArgsReturn
	ArgsReturn
)

func (c Convention) String() string {
	switch c {
	case NoArgsNoReturn:
		return "no-args/no-return"
	case ArgsNoReturn:
		return "args/no-return"
	case NoArgsReturn:
		return "no-args/return"
	case ArgsReturn:
		return "args/return"
	default:
		return fmt.Sprintf("convention(%d)", int(c))
	}
}

// TakesArgs reports whether callables of this shape receive Parameters.
func (c Convention) TakesArgs() bool { return c == ArgsNoReturn || c == ArgsReturn }

// Returns reports whether callables of this shape produce a value.
func (c Convention) Returns() bool { return c == NoArgsReturn || c == ArgsReturn }

// Callable is a native method bound to one of the four conventions. Exactly
// one function field is set, selected by conv.
type Callable struct {
	conv    Convention
	void    func(Base) error
	voidArg func(Base, *Parameters) error
	ret     func(Base) (Value, error)
	retArg  func(Base, *Parameters) (Value, error)
}

// Void binds a method that takes no arguments and returns nothing:
//
//	bridge.Void((*Counter).Reset)
func Void[T Base](fn func(T) error) Callable {
	return Callable{conv: NoArgsNoReturn, void: func(this Base) error {
		recv, err := receiver[T](this)
		if err != nil {
			return err
		}
		return fn(recv)
	}}
}

// VoidArgs binds a method that takes arguments and returns nothing.
func VoidArgs[T Base](fn func(T, *Parameters) error) Callable {
	return Callable{conv: ArgsNoReturn, voidArg: func(this Base, params *Parameters) error {
		recv, err := receiver[T](this)
		if err != nil {
			return err
		}
		return fn(recv, params)
	}}
}

// Returns binds a method that takes no arguments and returns a value.
func Returns[T Base](fn func(T) (Value, error)) Callable {
	return Callable{conv: NoArgsReturn, ret: func(this Base) (Value, error) {
		recv, err := receiver[T](this)
		if err != nil {
			return NewNil(), err
		}
		return fn(recv)
	}}
}

// ReturnsArgs binds a method that takes arguments and returns a value.
func ReturnsArgs[T Base](fn func(T, *Parameters) (Value, error)) Callable {
	return Callable{conv: ArgsReturn, retArg: func(this Base, params *Parameters) (Value, error) {
		recv, err := receiver[T](this)
		if err != nil {
			return NewNil(), err
		}
		return fn(recv, params)
	}}
}

func (c Callable) Convention() Convention { return c.conv }

func (c Callable) valid() bool {
	switch c.conv {
	case NoArgsNoReturn:
		return c.void != nil
	case ArgsNoReturn:
		return c.voidArg != nil
	case NoArgsReturn:
		return c.ret != nil
	case ArgsReturn:
		return c.retArg != nil
	default:
		return false
	}
}

func receiver[T Base](this Base) (T, error) {
	recv, ok := this.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: want %T, got %T", ErrReceiverMismatch, zero, this)
	}
	return recv, nil
}
