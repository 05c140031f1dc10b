package bridge

import (
	"fmt"
	"strconv"
)

type DefaultKind int

const (
	DefaultNull DefaultKind = iota
	DefaultInt16
	DefaultInt32
	DefaultInt64
	DefaultBool
	DefaultChar
	DefaultString
	DefaultFloat
)

func (k DefaultKind) String() string {
	switch k {
	case DefaultNull:
		return "null"
	case DefaultInt16:
		return "int16"
	case DefaultInt32:
		return "int32"
	case DefaultInt64:
		return "int64"
	case DefaultBool:
		return "bool"
	case DefaultChar:
		return "char"
	case DefaultString:
		return "string"
	case DefaultFloat:
		return "float"
	default:
		return fmt.Sprintf("default(%d)", int(k))
	}
}

// Default is the declared default of a property. The primitive kind it was
// declared with is kept so the exact declaration can be inspected; Value
// converts it into the runtime representation.
type Default struct {
	kind DefaultKind
	i    int64
	b    bool
	s    string
	f    float64
}

func Null() Default           { return Default{kind: DefaultNull} }
func Int16(v int16) Default   { return Default{kind: DefaultInt16, i: int64(v)} }
func Int32(v int32) Default   { return Default{kind: DefaultInt32, i: int64(v)} }
func Int64(v int64) Default   { return Default{kind: DefaultInt64, i: v} }
func Bool(v bool) Default     { return Default{kind: DefaultBool, b: v} }
func Char(c byte) Default     { return Default{kind: DefaultChar, s: string([]byte{c})} }
func String(s string) Default { return Default{kind: DefaultString, s: s} }
func Float(f float64) Default { return Default{kind: DefaultFloat, f: f} }

func (d Default) Kind() DefaultKind { return d.kind }

// Value converts the default into a runtime value. Every integer width
// becomes an int and a char becomes a one-byte string.
func (d Default) Value() Value {
	switch d.kind {
	case DefaultInt16, DefaultInt32, DefaultInt64:
		return NewInt(d.i)
	case DefaultBool:
		return NewBool(d.b)
	case DefaultChar, DefaultString:
		return NewString(d.s)
	case DefaultFloat:
		return NewFloat(d.f)
	default:
		return NewNil()
	}
}

func (d Default) String() string {
	switch d.kind {
	case DefaultChar, DefaultString:
		return strconv.Quote(d.s)
	default:
		return d.Value().Inspect()
	}
}

// Member describes one declared instance property.
type Member struct {
	name  string
	value Default
	flags Flags
}

func (m *Member) Name() string     { return m.name }
func (m *Member) Default() Default { return m.value }
func (m *Member) Flags() Flags     { return m.flags }

func newMember(name string, value Default, flags Flags) *Member {
	if name == "" {
		violation("property name cannot be empty")
	}
	if flags.Modifiers() != 0 || flags&^visibilityMask != 0 {
		violation("property %s: only visibility flags are allowed, got %v", name, flags)
	}
	return &Member{name: name, value: value, flags: flags.withDefaultVisibility()}
}
