package bridge

// Thunk is the single entry point a runtime calls to reach a native method.
type Thunk func(this Base, params *Parameters) (Value, error)

// ArgInfo is the argument sub-table of a method entry. Required is the
// number of arguments a caller must supply.
type ArgInfo struct {
	Required int
	Args     []Argument
}

// FunctionEntry is one row of an emitted method table. Abstract methods have
// a nil Handler.
type FunctionEntry struct {
	Name    string
	Handler Thunk
	Flags   Flags
	ArgInfo ArgInfo
}

func (e FunctionEntry) sentinel() bool {
	return e.Name == "" && e.Handler == nil
}

// MethodTable is a sentinel-terminated list of method entries in declaration
// order.
type MethodTable []FunctionEntry

// Entries returns the rows up to the sentinel.
func (t MethodTable) Entries() []FunctionEntry {
	for i, e := range t {
		if e.sentinel() {
			return t[:i]
		}
	}
	return t
}

func (t MethodTable) Len() int { return len(t.Entries()) }

func emitMethodTable(methods []*Method, classType ClassType) MethodTable {
	table := make(MethodTable, 0, len(methods)+1)
	for _, m := range methods {
		table = append(table, FunctionEntry{
			Name:    m.name,
			Handler: thunkFor(m),
			Flags:   m.packedFlags(classType),
			ArgInfo: ArgInfo{
				Required: requiredCount(m.args),
				Args:     append([]Argument(nil), m.args...),
			},
		})
	}
	return append(table, FunctionEntry{})
}

func thunkFor(m *Method) Thunk {
	if m.abstract {
		return nil
	}
	return func(this Base, params *Parameters) (Value, error) {
		return m.invoke(this, params)
	}
}
