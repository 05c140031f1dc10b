package bridge

import (
	"fmt"
	"strconv"
	"strings"
)

type ValueKind int

const (
	KindNil ValueKind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindArray
	KindObject
)

// Value is the runtime's dynamic value as seen from Go.
type Value struct {
	kind ValueKind
	data any
}

// Object is implemented by runtime instances so they can travel inside a
// Value (as an argument or a return).
type Object interface {
	ClassName() string
}

func NewNil() Value            { return Value{kind: KindNil} }
func NewBool(b bool) Value     { return Value{kind: KindBool, data: b} }
func NewInt(i int64) Value     { return Value{kind: KindInt, data: i} }
func NewFloat(f float64) Value { return Value{kind: KindFloat, data: f} }
func NewString(s string) Value { return Value{kind: KindString, data: s} }
func NewArray(a []Value) Value { return Value{kind: KindArray, data: a} }

func NewObject(obj Object) Value {
	if obj == nil {
		return NewNil()
	}
	return Value{kind: KindObject, data: obj}
}

// ValueOf converts a Go primitive into a Value. Supported inputs are nil,
// bool, the signed integer widths, float32/float64, string, []Value and
// Object.
func ValueOf(v any) (Value, error) {
	switch x := v.(type) {
	case nil:
		return NewNil(), nil
	case Value:
		return x, nil
	case bool:
		return NewBool(x), nil
	case int:
		return NewInt(int64(x)), nil
	case int8:
		return NewInt(int64(x)), nil
	case int16:
		return NewInt(int64(x)), nil
	case int32:
		return NewInt(int64(x)), nil
	case int64:
		return NewInt(x), nil
	case float32:
		return NewFloat(float64(x)), nil
	case float64:
		return NewFloat(x), nil
	case string:
		return NewString(x), nil
	case []Value:
		return NewArray(x), nil
	case Object:
		return NewObject(x), nil
	default:
		return NewNil(), fmt.Errorf("bridge: cannot convert %T to a value", v)
	}
}

func (v Value) Kind() ValueKind { return v.kind }

func (v Value) IsNil() bool { return v.kind == KindNil }

func (v Value) Bool() bool {
	if v.kind == KindBool {
		return v.data.(bool)
	}
	return false
}

func (v Value) Int() int64 {
	switch v.kind {
	case KindInt:
		return v.data.(int64)
	case KindFloat:
		return int64(v.data.(float64))
	case KindBool:
		if v.data.(bool) {
			return 1
		}
		return 0
	default:
		return 0
	}
}

func (v Value) Float() float64 {
	switch v.kind {
	case KindFloat:
		return v.data.(float64)
	case KindInt:
		return float64(v.data.(int64))
	default:
		return 0
	}
}

func (v Value) Array() []Value {
	if v.kind != KindArray {
		return nil
	}
	return v.data.([]Value)
}

func (v Value) Object() Object {
	if v.kind != KindObject {
		return nil
	}
	return v.data.(Object)
}

// Interface returns the Go representation of v.
func (v Value) Interface() any {
	if v.kind == KindNil {
		return nil
	}
	return v.data
}

func (k ValueKind) String() string {
	switch k {
	case KindNil:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

func (v Value) String() string {
	switch v.kind {
	case KindString:
		return v.data.(string)
	case KindNil:
		return ""
	case KindBool:
		if v.Bool() {
			return "true"
		}
		return "false"
	case KindInt:
		return strconv.FormatInt(v.data.(int64), 10)
	case KindFloat:
		return strconv.FormatFloat(v.data.(float64), 'g', -1, 64)
	case KindArray:
		elems := v.data.([]Value)
		parts := make([]string, len(elems))
		for i, e := range elems {
			parts[i] = e.Inspect()
		}
		return fmt.Sprintf("[%s]", strings.Join(parts, ", "))
	case KindObject:
		return fmt.Sprintf("<%s instance>", v.data.(Object).ClassName())
	default:
		return fmt.Sprintf("<%v>", v.kind)
	}
}

// Inspect renders v the way a REPL echoes it: strings quoted, null spelled
// out.
func (v Value) Inspect() string {
	switch v.kind {
	case KindNil:
		return "null"
	case KindString:
		return strconv.Quote(v.data.(string))
	default:
		return v.String()
	}
}

func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindNil:
		return true
	case KindArray:
		a, b := v.Array(), other.Array()
		if len(a) != len(b) {
			return false
		}
		for i := range a {
			if !a[i].Equal(b[i]) {
				return false
			}
		}
		return true
	default:
		return v.data == other.data
	}
}
