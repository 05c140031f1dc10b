package bridge

import (
	"fmt"
	"strings"
)

// Hint is a declared argument type hint.
type Hint int

const (
	HintNone Hint = iota
	HintBool
	HintInt
	HintFloat
	HintString
	HintArray
	HintCallable
	HintObject
)

func (h Hint) String() string {
	switch h {
	case HintNone:
		return ""
	case HintBool:
		return "bool"
	case HintInt:
		return "int"
	case HintFloat:
		return "float"
	case HintString:
		return "string"
	case HintArray:
		return "array"
	case HintCallable:
		return "callable"
	case HintObject:
		return "object"
	default:
		return fmt.Sprintf("hint(%d)", int(h))
	}
}

// Argument describes one declared method argument.
type Argument struct {
	Name      string
	Hint      Hint
	ClassName string
	Nullable  bool
	Required  bool
	ByRef     bool
}

// ByVal declares an argument passed by value.
func ByVal(name string, hint Hint, required bool) Argument {
	return Argument{Name: name, Hint: hint, Required: required}
}

// ByRef declares an argument passed by reference.
func ByRef(name string, hint Hint, required bool) Argument {
	return Argument{Name: name, Hint: hint, Required: required, ByRef: true}
}

// ByValClass declares an object argument restricted to className.
func ByValClass(name, className string, nullable, required bool) Argument {
	return Argument{Name: name, Hint: HintObject, ClassName: className, Nullable: nullable, Required: required}
}

// TypeString renders the hint as it would appear in a signature.
func (a Argument) TypeString() string {
	hint := a.Hint.String()
	if a.Hint == HintObject && a.ClassName != "" {
		hint = a.ClassName
	}
	if hint != "" && a.Nullable {
		hint = "?" + hint
	}
	return hint
}

func (a Argument) String() string {
	var b strings.Builder
	if t := a.TypeString(); t != "" {
		b.WriteString(t)
		b.WriteByte(' ')
	}
	if a.ByRef {
		b.WriteByte('&')
	}
	b.WriteByte('$')
	b.WriteString(a.Name)
	if !a.Required {
		b.WriteString(" = null")
	}
	return b.String()
}
