package bridge

// Method describes one declared method. Abstract methods carry no callable.
type Method struct {
	name     string
	callable Callable
	abstract bool
	flags    Flags
	args     []Argument
}

func (m *Method) Name() string { return m.name }

// Flags returns the modifiers exactly as declared.
func (m *Method) Flags() Flags { return m.flags }

// Arguments returns a copy of the declared argument list.
func (m *Method) Arguments() []Argument { return append([]Argument(nil), m.args...) }

// Convention reports the call shape. It is meaningless for abstract methods.
func (m *Method) Convention() Convention { return m.callable.conv }

// IsAbstract reports whether the method has no native implementation.
func (m *Method) IsAbstract() bool { return m.abstract }

// invoke calls the bound native against this. The instance is borrowed for
// the duration of the call.
func (m *Method) invoke(this Base, params *Parameters) (Value, error) {
	if m.abstract {
		return NewNil(), ErrAbstractMethod
	}
	c := m.callable
	switch c.conv {
	case NoArgsNoReturn:
		return NewNil(), c.void(this)
	case ArgsNoReturn:
		return NewNil(), c.voidArg(this, params)
	case NoArgsReturn:
		return c.ret(this)
	case ArgsReturn:
		return c.retArg(this, params)
	default:
		return NewNil(), ErrAbstractMethod
	}
}

// packedFlags merges declared visibility and modifiers into the value the
// runtime stores on the table entry.
func (m *Method) packedFlags(classType ClassType) Flags {
	flags := m.flags.withDefaultVisibility()
	if m.abstract {
		flags |= Abstract
	}
	if classType == ClassInterface {
		flags = (flags &^ (Final | Protected | Private)) | Public | Abstract
	}
	return flags
}

func requiredCount(args []Argument) int {
	n := 0
	for _, a := range args {
		if a.Required {
			n++
		}
	}
	return n
}
