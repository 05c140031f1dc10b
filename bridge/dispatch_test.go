package bridge

import (
	"errors"
	"testing"
)

type probe struct {
	calls  int
	params *Parameters
}

func emitSingle(t *testing.T, fn Callable, args ...Argument) FunctionEntry {
	t.Helper()
	class := NewClass("Probe", ClassRegular, New[probe]()).Method("run", fn, 0, args...)
	table := emitMethodTable(class.methods, class.typ)
	if table.Len() != 1 {
		t.Fatalf("expected a single entry, got %d", table.Len())
	}
	return table[0]
}

func TestArgsReturnDispatchPassesParametersThrough(t *testing.T) {
	entry := emitSingle(t, ReturnsArgs(func(p *probe, params *Parameters) (Value, error) {
		p.calls++
		p.params = params
		return NewInt(params.At(0).Int() * 2), nil
	}), ByVal("n", HintInt, true))

	target := &probe{}
	params := NewParameters(NewInt(21))
	got, err := entry.Handler(target, params)
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if target.calls != 1 {
		t.Fatalf("callable invoked %d times", target.calls)
	}
	if target.params != params {
		t.Fatalf("parameters were not passed by reference")
	}
	if !got.Equal(NewInt(42)) {
		t.Fatalf("unexpected result %v", got.Inspect())
	}
}

func TestDispatchConventions(t *testing.T) {
	cases := []struct {
		name    string
		fn      Callable
		want    Value
		conv    Convention
		args    bool
		returns bool
	}{
		{
			name: "void",
			fn:   Void(func(p *probe) error { p.calls++; return nil }),
			want: NewNil(),
			conv: NoArgsNoReturn,
		},
		{
			name: "void args",
			fn: VoidArgs(func(p *probe, params *Parameters) error {
				p.calls += params.Len()
				return nil
			}),
			want: NewNil(),
			conv: ArgsNoReturn,
			args: true,
		},
		{
			name:    "returns",
			fn:      Returns(func(p *probe) (Value, error) { p.calls++; return NewString("ok"), nil }),
			want:    NewString("ok"),
			conv:    NoArgsReturn,
			returns: true,
		},
		{
			name: "returns args",
			fn: ReturnsArgs(func(p *probe, params *Parameters) (Value, error) {
				p.calls += params.Len()
				return params.At(0), nil
			}),
			want:    NewBool(true),
			conv:    ArgsReturn,
			args:    true,
			returns: true,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if tc.fn.Convention() != tc.conv {
				t.Fatalf("convention %v, want %v", tc.fn.Convention(), tc.conv)
			}
			if tc.conv.TakesArgs() != tc.args || tc.conv.Returns() != tc.returns {
				t.Fatalf("convention %v reports wrong shape", tc.conv)
			}
			entry := emitSingle(t, tc.fn)
			target := &probe{}
			got, err := entry.Handler(target, NewParameters(NewBool(true)))
			if err != nil {
				t.Fatalf("dispatch: %v", err)
			}
			if target.calls != 1 {
				t.Fatalf("expected one call, got %d", target.calls)
			}
			if !got.Equal(tc.want) {
				t.Fatalf("got %v want %v", got.Inspect(), tc.want.Inspect())
			}
		})
	}
}

func TestDispatchPropagatesNativeErrors(t *testing.T) {
	boom := errors.New("boom")
	entry := emitSingle(t, Void(func(p *probe) error { return boom }))
	if _, err := entry.Handler(&probe{}, nil); !errors.Is(err, boom) {
		t.Fatalf("expected native error, got %v", err)
	}
}

func TestDispatchRejectsForeignReceiver(t *testing.T) {
	entry := emitSingle(t, Returns(func(p *probe) (Value, error) { return NewNil(), nil }))
	_, err := entry.Handler(&counter{}, nil)
	if !errors.Is(err, ErrReceiverMismatch) {
		t.Fatalf("expected ErrReceiverMismatch, got %v", err)
	}
}

func TestAbstractMethodInvoke(t *testing.T) {
	m := &Method{name: "area", abstract: true, flags: Abstract}
	if _, err := m.invoke(&probe{}, nil); !errors.Is(err, ErrAbstractMethod) {
		t.Fatalf("expected ErrAbstractMethod, got %v", err)
	}
	if thunkFor(m) != nil {
		t.Fatalf("abstract methods must not get a thunk")
	}
}
