package bridge

import (
	"errors"
	"fmt"
	"slices"
)

// Constructor produces fresh native instances of a class. It is the only
// extension point a host implements per class.
type Constructor interface {
	Construct() Base
}

// ConstructorFunc adapts a plain function to Constructor.
type ConstructorFunc func() Base

func (f ConstructorFunc) Construct() Base { return f() }

// New returns a Constructor that allocates a zero T for every instance.
func New[T any]() Constructor {
	return ConstructorFunc(func() Base { return new(T) })
}

type classState int

const (
	stateDeclaring classState = iota
	stateInitialized
	stateReleased
	stateMoved
)

func (s classState) String() string {
	switch s {
	case stateDeclaring:
		return "declaring"
	case stateInitialized:
		return "initialized"
	case stateReleased:
		return "released"
	case stateMoved:
		return "moved"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Class describes a native class before and after it is registered with a
// runtime. Methods and properties may only be declared while the class is
// still declaring; Initialize freezes it.
type Class struct {
	name      string
	typ       ClassType
	ctor      Constructor
	namespace string
	methods   []*Method
	members   []*Member
	state     classState

	runtime Runtime
	handle  Handle
	table   MethodTable
}

// NewClass starts the declaration of a class. Regular and final classes need
// a Constructor; abstract classes and interfaces may pass nil.
func NewClass(name string, typ ClassType, ctor Constructor) *Class {
	if name == "" {
		violation("class name cannot be empty")
	}
	if typ.Instantiable() && ctor == nil {
		violation("class %s: %v needs a constructor", name, typ)
	}
	return &Class{name: name, typ: typ, ctor: ctor}
}

func (c *Class) Name() string          { return c.name }
func (c *Class) Type() ClassType       { return c.typ }
func (c *Class) Namespace() string     { return c.namespace }
func (c *Class) Handle() Handle        { return c.handle }
func (c *Class) Table() MethodTable    { return c.table }
func (c *Class) Methods() []*Method    { return slices.Clone(c.methods) }
func (c *Class) Members() []*Member    { return slices.Clone(c.members) }
func (c *Class) Initialized() bool     { return c.state == stateInitialized }
func (c *Class) QualifiedName() string { return qualify(c.namespace, c.name) }

// Method declares a method implemented by fn. Build fn with Void, VoidArgs,
// Returns or ReturnsArgs. Flags without a visibility bit mean Public.
func (c *Class) Method(name string, fn Callable, flags Flags, args ...Argument) *Class {
	c.mustDeclare("method " + name)
	if name == "" {
		violation("class %s: method name cannot be empty", c.name)
	}
	if !fn.valid() {
		violation("class %s: method %s has no callable", c.name, name)
	}
	c.methods = append(c.methods, &Method{
		name:     name,
		callable: fn,
		flags:    flags,
		args:     slices.Clone(args),
	})
	return c
}

// AbstractMethod declares a method without an implementation. Flags must
// contain Abstract unless the class is an interface.
func (c *Class) AbstractMethod(name string, flags Flags, args ...Argument) *Class {
	c.mustDeclare("abstract method " + name)
	if name == "" {
		violation("class %s: method name cannot be empty", c.name)
	}
	if !flags.Has(Abstract) && c.typ != ClassInterface {
		violation("class %s: method %s has no implementation and is not abstract", c.name, name)
	}
	c.methods = append(c.methods, &Method{
		name:     name,
		abstract: true,
		flags:    flags,
		args:     slices.Clone(args),
	})
	return c
}

// Property declares an instance property. Only visibility flags are
// accepted; zero means Public.
func (c *Class) Property(name string, value Default, flags Flags) *Class {
	c.mustDeclare("property " + name)
	c.members = append(c.members, newMember(name, value, flags))
	return c
}

func (c *Class) mustDeclare(what string) {
	switch c.state {
	case stateDeclaring:
	case stateMoved:
		violation("class was moved, cannot declare %s", what)
	default:
		violation("class %s is %v, cannot declare %s", c.name, c.state, what)
	}
}

// Abstract reports whether instances can never be created, either because of
// the class modifier or because a method lacks an implementation.
func (c *Class) Abstract() bool {
	return !c.typ.Instantiable() || hasAbstractMethod(c.methods)
}

// Construct returns a fresh native instance.
func (c *Class) Construct() (Base, error) {
	return constructor(c.QualifiedName(), c.Abstract(), c.ctor)()
}

func constructor(name string, abstract bool, ctor Constructor) func() (Base, error) {
	return func() (Base, error) {
		if abstract || ctor == nil {
			return nil, fmt.Errorf("%w: %s", ErrNotInstantiable, name)
		}
		obj := ctor.Construct()
		if obj == nil {
			violation("class %s: constructor returned nil", name)
		}
		return obj, nil
	}
}

func hasAbstractMethod(methods []*Method) bool {
	for _, m := range methods {
		if m.abstract || m.flags.Has(Abstract) {
			return true
		}
	}
	return false
}

// Initialize registers the class with rt under namespace. It must be called
// exactly once, after the runtime has finished registering module-level
// functions. On failure the class stays in its declaring state and any class
// the runtime already created is released again.
func (c *Class) Initialize(rt Runtime, namespace string) error {
	switch c.state {
	case stateDeclaring:
	case stateMoved:
		violation("class was moved, cannot initialize")
	default:
		violation("class %s is %v, cannot initialize again", c.name, c.state)
	}

	qualified := qualify(namespace, c.name)
	table := emitMethodTable(c.methods, c.typ)
	handle, err := rt.RegisterClass(&ClassDefinition{
		Name:      qualified,
		Type:      c.typ,
		Methods:   table,
		Construct: constructor(qualified, c.Abstract(), c.ctor),
	})
	if err != nil {
		return &RegistrationError{Class: qualified, Err: err}
	}
	for _, m := range c.members {
		if err := rt.DeclareProperty(handle, m.name, m.value.Value(), m.flags); err != nil {
			err = fmt.Errorf("property %s: %w", m.name, err)
			if relErr := rt.ReleaseClass(handle); relErr != nil {
				err = errors.Join(err, relErr)
			}
			return &RegistrationError{Class: qualified, Err: err}
		}
	}

	c.namespace = namespace
	c.runtime = rt
	c.handle = handle
	c.table = table
	c.state = stateInitialized
	return nil
}

// Release hands the class back to the runtime. It is a no-op unless the class
// holds a live registration, so moved-from and never-initialized classes can
// be released safely.
func (c *Class) Release() error {
	if c.state != stateInitialized {
		return nil
	}
	err := c.runtime.ReleaseClass(c.handle)
	c.runtime = nil
	c.handle = nil
	c.table = nil
	c.state = stateReleased
	if err != nil {
		return fmt.Errorf("bridge: release class %s: %w", c.QualifiedName(), err)
	}
	return nil
}

// Clone copies the declaration of c into a new, unregistered class. The
// copy never shares the runtime registration of c.
func (c *Class) Clone() *Class {
	return &Class{
		name:    c.name,
		typ:     c.typ,
		ctor:    c.ctor,
		methods: slices.Clone(c.methods),
		members: slices.Clone(c.members),
	}
}

// Move transfers everything, including a live registration, to a new Class.
// c is left empty: it can no longer declare, initialize or release.
func (c *Class) Move() *Class {
	moved := *c
	*c = Class{state: stateMoved}
	return &moved
}

func qualify(namespace, name string) string {
	if namespace == "" || namespace == `\` {
		return name
	}
	return namespace + `\` + name
}
