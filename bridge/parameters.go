package bridge

// Parameters carries the call-time arguments of a method invocation. The
// bridge passes it through to native callables unmodified.
type Parameters struct {
	values []Value
	names  []string
}

// NewParameters builds positional parameters.
func NewParameters(values ...Value) *Parameters {
	return &Parameters{values: values}
}

// NewNamedParameters builds parameters whose leading positions are also
// reachable by name. Names beyond len(values) are ignored.
func NewNamedParameters(names []string, values []Value) *Parameters {
	return &Parameters{values: values, names: names}
}

func (p *Parameters) Len() int {
	if p == nil {
		return 0
	}
	return len(p.values)
}

// At returns the i-th positional argument, or null when absent.
func (p *Parameters) At(i int) Value {
	if p == nil || i < 0 || i >= len(p.values) {
		return NewNil()
	}
	return p.values[i]
}

// Get returns the argument bound to name.
func (p *Parameters) Get(name string) (Value, bool) {
	if p == nil {
		return NewNil(), false
	}
	for i, n := range p.names {
		if n == name && i < len(p.values) {
			return p.values[i], true
		}
	}
	return NewNil(), false
}

// Values returns a copy of the positional arguments.
func (p *Parameters) Values() []Value {
	if p == nil {
		return nil
	}
	return append([]Value(nil), p.values...)
}
