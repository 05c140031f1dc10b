package bridge

// Handle is the runtime's opaque reference to a registered class.
type Handle interface {
	ClassName() string
}

// ClassDefinition is everything a runtime needs to install a class.
type ClassDefinition struct {
	Name      string
	Type      ClassType
	Methods   MethodTable
	Construct func() (Base, error)
}

// Runtime is the registration entry point of the foreign object runtime.
// It is the only way the bridge talks to it.
//
// RegisterClass must keep Methods alive until ReleaseClass is called for
// the returned handle; the bridge releases every handle it obtained exactly
// once, at extension teardown.
type Runtime interface {
	RegisterClass(def *ClassDefinition) (Handle, error)
	DeclareProperty(h Handle, name string, value Value, flags Flags) error
	ReleaseClass(h Handle) error
}
