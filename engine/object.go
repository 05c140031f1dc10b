package engine

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/mgomes/classbridge/bridge"
)

var (
	ErrUnknownMethod   = errors.New("unknown method")
	ErrUnknownProperty = errors.New("unknown property")
	ErrVisibility      = errors.New("member not accessible")
	ErrArgumentCount   = errors.New("too few arguments")
	ErrArgumentType    = errors.New("argument type mismatch")
	ErrDestroyed       = errors.New("object destroyed")
)

// Object is one runtime instance of a registered class. It owns the native
// instance created by the class constructor.
type Object struct {
	id        int64
	class     *classEntry
	native    bridge.Base
	props     []propertySlot
	destroyed bool
}

func (o *Object) ID() int64           { return o.id }
func (o *Object) ClassName() string   { return o.class.name }
func (o *Object) Native() bridge.Base { return o.native }

// Instantiate creates a new object of the named class, the equivalent of
// `new Name()` in dynamic code.
func (e *Engine) Instantiate(name string) (*Object, error) {
	entry, err := e.lookupClass(name)
	if err != nil {
		return nil, err
	}
	if entry.abstract() || entry.construct == nil {
		return nil, fmt.Errorf("%w: cannot instantiate %s %s", bridge.ErrNotInstantiable, entry.typ, entry.name)
	}
	native, err := entry.construct()
	if err != nil {
		return nil, err
	}
	if native == nil {
		panic(&bridge.ContractViolation{Message: fmt.Sprintf("class %s: constructor returned nil", entry.name)})
	}

	e.mu.Lock()
	e.nextID++
	id := e.nextID
	props := append([]propertySlot(nil), entry.props...)
	e.mu.Unlock()

	return &Object{id: id, class: entry, native: native, props: props}, nil
}

// Call invokes a public method on obj. Method names compare
// case-insensitively and the last declaration of a name wins.
func (e *Engine) Call(obj *Object, method string, args ...bridge.Value) (bridge.Value, error) {
	if obj == nil {
		return bridge.NewNil(), fmt.Errorf("engine: call %s on nil object", method)
	}
	if obj.destroyed {
		return bridge.NewNil(), fmt.Errorf("%w: %s#%d", ErrDestroyed, obj.class.name, obj.id)
	}
	e.mu.RLock()
	released := obj.class.released
	idx, ok := obj.class.lookup[foldName(method)]
	var entry bridge.FunctionEntry
	if ok && !released {
		entry = obj.class.methods[idx]
	}
	e.mu.RUnlock()
	if released {
		return bridge.NewNil(), fmt.Errorf("%w: %s was released", ErrUnknownClass, obj.class.name)
	}
	if !ok {
		return bridge.NewNil(), fmt.Errorf("%w: %s::%s()", ErrUnknownMethod, obj.class.name, method)
	}
	if entry.Handler == nil || entry.Flags.Has(bridge.Abstract) {
		return bridge.NewNil(), fmt.Errorf("%w: %s::%s()", bridge.ErrAbstractMethod, obj.class.name, entry.Name)
	}
	if vis := entry.Flags.Visibility(); vis != bridge.Public {
		return bridge.NewNil(), fmt.Errorf("%w: call to %v method %s::%s()", ErrVisibility, vis, obj.class.name, entry.Name)
	}
	if err := checkArguments(obj.class.name, entry, args); err != nil {
		return bridge.NewNil(), err
	}

	names := make([]string, len(entry.ArgInfo.Args))
	for i, a := range entry.ArgInfo.Args {
		names[i] = a.Name
	}
	result, err := entry.Handler(obj.native, bridge.NewNamedParameters(names, args))
	if err != nil {
		e.log.Debug("native method failed",
			zap.String("class", obj.class.name),
			zap.String("method", entry.Name),
			zap.Error(err))
		return bridge.NewNil(), fmt.Errorf("%s::%s(): %w", obj.class.name, entry.Name, err)
	}
	return result, nil
}

func checkArguments(class string, entry bridge.FunctionEntry, args []bridge.Value) error {
	info := entry.ArgInfo
	if len(args) < info.Required {
		return fmt.Errorf("%w: %s::%s() expects at least %d, %d given", ErrArgumentCount, class, entry.Name, info.Required, len(args))
	}
	for i, arg := range args {
		if i >= len(info.Args) {
			break
		}
		if err := checkArgument(info.Args[i], arg); err != nil {
			return fmt.Errorf("%w: %s::%s() argument $%s %v", ErrArgumentType, class, entry.Name, info.Args[i].Name, err)
		}
	}
	return nil
}

func checkArgument(decl bridge.Argument, val bridge.Value) error {
	if decl.Hint == bridge.HintNone {
		return nil
	}
	if val.IsNil() {
		if decl.Nullable || !decl.Required {
			return nil
		}
		return fmt.Errorf("must be %s, null given", decl.TypeString())
	}
	kind := val.Kind()
	ok := true
	switch decl.Hint {
	case bridge.HintBool:
		ok = kind == bridge.KindBool
	case bridge.HintInt:
		ok = kind == bridge.KindInt
	case bridge.HintFloat:
		ok = kind == bridge.KindFloat || kind == bridge.KindInt
	case bridge.HintString:
		ok = kind == bridge.KindString
	case bridge.HintArray:
		ok = kind == bridge.KindArray
	case bridge.HintObject:
		ok = kind == bridge.KindObject
		if ok && decl.ClassName != "" {
			ok = foldName(val.Object().ClassName()) == foldName(decl.ClassName)
		}
	}
	if !ok {
		return fmt.Errorf("must be %s, %s given", decl.TypeString(), describeKind(val))
	}
	return nil
}

func describeKind(val bridge.Value) string {
	if obj := val.Object(); obj != nil {
		return obj.ClassName()
	}
	return val.Kind().String()
}

func (o *Object) slot(name string) (*propertySlot, error) {
	for i := range o.props {
		if o.props[i].name == name {
			p := &o.props[i]
			if p.flags.Visibility() != bridge.Public {
				return nil, fmt.Errorf("%w: cannot access %v property %s::$%s", ErrVisibility, p.flags.Visibility(), o.class.name, name)
			}
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: %s::$%s", ErrUnknownProperty, o.class.name, name)
}

// Property reads a public property of obj.
func (e *Engine) Property(obj *Object, name string) (bridge.Value, error) {
	if obj.destroyed {
		return bridge.NewNil(), fmt.Errorf("%w: %s#%d", ErrDestroyed, obj.class.name, obj.id)
	}
	p, err := obj.slot(name)
	if err != nil {
		return bridge.NewNil(), err
	}
	return p.value, nil
}

// SetProperty writes a public property of obj.
func (e *Engine) SetProperty(obj *Object, name string, val bridge.Value) error {
	if obj.destroyed {
		return fmt.Errorf("%w: %s#%d", ErrDestroyed, obj.class.name, obj.id)
	}
	p, err := obj.slot(name)
	if err != nil {
		return err
	}
	p.value = val
	return nil
}

// Destroy ends the life of obj, notifying natives that implement
// bridge.Destructor. Destroying twice is an error.
func (e *Engine) Destroy(obj *Object) error {
	if obj.destroyed {
		return fmt.Errorf("%w: %s#%d", ErrDestroyed, obj.class.name, obj.id)
	}
	obj.destroyed = true
	if d, ok := obj.native.(bridge.Destructor); ok {
		d.Destruct()
	}
	obj.native = nil
	return nil
}
