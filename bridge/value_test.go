package bridge

import "testing"

type namedObject struct{ name string }

func (o *namedObject) ClassName() string { return o.name }

func TestValueOf(t *testing.T) {
	obj := &namedObject{name: "Point"}
	cases := []struct {
		in   any
		want Value
	}{
		{nil, NewNil()},
		{true, NewBool(true)},
		{int16(3), NewInt(3)},
		{int32(-4), NewInt(-4)},
		{int64(5), NewInt(5)},
		{7, NewInt(7)},
		{float32(0.5), NewFloat(0.5)},
		{1.25, NewFloat(1.25)},
		{"hi", NewString("hi")},
		{[]Value{NewInt(1)}, NewArray([]Value{NewInt(1)})},
		{obj, NewObject(obj)},
	}
	for _, tc := range cases {
		got, err := ValueOf(tc.in)
		if err != nil {
			t.Fatalf("ValueOf(%#v): %v", tc.in, err)
		}
		if !got.Equal(tc.want) {
			t.Fatalf("ValueOf(%#v) = %v, want %v", tc.in, got.Inspect(), tc.want.Inspect())
		}
	}
	if _, err := ValueOf(struct{}{}); err == nil {
		t.Fatalf("expected error for unsupported type")
	}
}

func TestValueInspect(t *testing.T) {
	arr := NewArray([]Value{NewNil(), NewString("a"), NewInt(2), NewFloat(1.5)})
	if got := arr.Inspect(); got != `[null, "a", 2, 1.5]` {
		t.Fatalf("unexpected inspect %q", got)
	}
	if got := NewObject(&namedObject{name: "Point"}).String(); got != "<Point instance>" {
		t.Fatalf("unexpected object string %q", got)
	}
}

func TestParametersAccess(t *testing.T) {
	params := NewNamedParameters([]string{"x", "y"}, []Value{NewInt(1), NewInt(2)})
	if params.Len() != 2 || !params.At(1).Equal(NewInt(2)) {
		t.Fatalf("unexpected positional access")
	}
	if v, ok := params.Get("x"); !ok || !v.Equal(NewInt(1)) {
		t.Fatalf("unexpected named access %v %v", v, ok)
	}
	if _, ok := params.Get("z"); ok {
		t.Fatalf("unknown name should not resolve")
	}
	if !params.At(5).IsNil() {
		t.Fatalf("out of range should be null")
	}
	var none *Parameters
	if none.Len() != 0 || !none.At(0).IsNil() {
		t.Fatalf("nil parameters should be empty")
	}
}
