// Package engine is an in-memory object runtime that accepts class
// registrations from package bridge. It keeps a class table, creates
// instances with per-object property slots and routes method calls through
// the dispatch thunks of the registered method tables.
package engine

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/mgomes/classbridge/bridge"
)

var (
	ErrInvalidName       = errors.New("invalid name")
	ErrClassExists       = errors.New("class already declared")
	ErrUnknownClass      = errors.New("unknown class")
	ErrClassLimit        = errors.New("class limit reached")
	ErrDuplicateMethod   = errors.New("duplicate method")
	ErrDuplicateProperty = errors.New("duplicate property")
	ErrInvalidModifiers  = errors.New("invalid modifiers")
	ErrForeignHandle     = errors.New("handle does not belong to this engine")
)

// Config controls registration policy.
type Config struct {
	Logger *zap.Logger
	// RejectDuplicateMethods refuses classes that declare the same method
	// name twice. When false the last declaration wins.
	RejectDuplicateMethods bool
	// MaxClasses caps the class table; zero or less means unlimited.
	MaxClasses int
}

// Engine holds registered classes. It implements bridge.Runtime.
type Engine struct {
	config  Config
	log     *zap.Logger
	mu      sync.RWMutex
	classes map[string]*classEntry
	order   []*classEntry
	nextID  int64
}

type classEntry struct {
	engine    *Engine
	name      string
	typ       bridge.ClassType
	table     bridge.MethodTable
	methods   []bridge.FunctionEntry
	lookup    map[string]int
	props     []propertySlot
	construct func() (bridge.Base, error)
	released  bool
}

type propertySlot struct {
	name  string
	value bridge.Value
	flags bridge.Flags
}

var _ bridge.Runtime = (*Engine)(nil)

func (c *classEntry) ClassName() string { return c.name }

// abstract reports whether instances can be created: the modifier must allow
// it and every method needs an implementation.
func (c *classEntry) abstract() bool {
	if !c.typ.Instantiable() {
		return true
	}
	for _, m := range c.methods {
		if m.Handler == nil || m.Flags.Has(bridge.Abstract) {
			return true
		}
	}
	return false
}

// NewEngine constructs an empty Engine.
func NewEngine(cfg Config) (*Engine, error) {
	if cfg.MaxClasses < 0 {
		return nil, fmt.Errorf("engine: max classes cannot be negative")
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Engine{
		config:  cfg,
		log:     cfg.Logger,
		classes: make(map[string]*classEntry),
	}, nil
}

// MustNewEngine constructs an Engine or panics if the config is invalid.
func MustNewEngine(cfg Config) *Engine {
	e, err := NewEngine(cfg)
	if err != nil {
		panic(err)
	}
	return e
}

// RegisterClass installs def. Class names compare case-insensitively.
func (e *Engine) RegisterClass(def *bridge.ClassDefinition) (bridge.Handle, error) {
	if def == nil {
		return nil, fmt.Errorf("engine: nil class definition")
	}
	if err := validateClassName(def.Name); err != nil {
		return nil, err
	}
	entries := def.Methods.Entries()
	lookup := make(map[string]int, len(entries))
	for i, m := range entries {
		if err := validateMemberName("method", m.Name); err != nil {
			return nil, fmt.Errorf("class %s: %w", def.Name, err)
		}
		if m.Flags.Has(bridge.Private | bridge.Abstract) {
			return nil, fmt.Errorf("%w: %s::%s cannot be private and abstract", ErrInvalidModifiers, def.Name, m.Name)
		}
		if m.Flags.Has(bridge.Final|bridge.Abstract) && def.Type != bridge.ClassInterface {
			return nil, fmt.Errorf("%w: %s::%s cannot be final and abstract", ErrInvalidModifiers, def.Name, m.Name)
		}
		key := foldName(m.Name)
		if _, dup := lookup[key]; dup && e.config.RejectDuplicateMethods {
			return nil, fmt.Errorf("%w: %s::%s", ErrDuplicateMethod, def.Name, m.Name)
		}
		lookup[key] = i
	}

	key := foldName(def.Name)
	e.mu.Lock()
	defer e.mu.Unlock()
	if existing, ok := e.classes[key]; ok {
		e.log.Warn("class name collision", zap.String("class", def.Name), zap.String("existing", existing.name))
		return nil, fmt.Errorf("%w: %s", ErrClassExists, def.Name)
	}
	if e.config.MaxClasses > 0 && len(e.classes) >= e.config.MaxClasses {
		return nil, fmt.Errorf("%w: %d", ErrClassLimit, e.config.MaxClasses)
	}
	entry := &classEntry{
		engine:    e,
		name:      def.Name,
		typ:       def.Type,
		table:     def.Methods,
		methods:   entries,
		lookup:    lookup,
		construct: def.Construct,
	}
	e.classes[key] = entry
	e.order = append(e.order, entry)
	e.log.Debug("class installed",
		zap.String("class", def.Name),
		zap.Stringer("type", def.Type),
		zap.Int("methods", len(entries)))
	return entry, nil
}

// DeclareProperty appends a default property slot to a registered class.
func (e *Engine) DeclareProperty(h bridge.Handle, name string, value bridge.Value, flags bridge.Flags) error {
	if err := validateMemberName("property", name); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	entry, err := e.entryLocked(h)
	if err != nil {
		return err
	}
	for _, p := range entry.props {
		if p.name == name {
			return fmt.Errorf("%w: %s::$%s", ErrDuplicateProperty, entry.name, name)
		}
	}
	entry.props = append(entry.props, propertySlot{name: name, value: value, flags: flags})
	return nil
}

// ReleaseClass removes a class and drops its method table. Instances that
// outlive their class can still be destroyed but no longer called.
func (e *Engine) ReleaseClass(h bridge.Handle) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	entry, err := e.entryLocked(h)
	if err != nil {
		return err
	}
	delete(e.classes, foldName(entry.name))
	for i, c := range e.order {
		if c == entry {
			e.order = append(e.order[:i], e.order[i+1:]...)
			break
		}
	}
	entry.released = true
	entry.table = nil
	entry.methods = nil
	entry.lookup = nil
	e.log.Debug("class released", zap.String("class", entry.name))
	return nil
}

func (e *Engine) entryLocked(h bridge.Handle) (*classEntry, error) {
	entry, ok := h.(*classEntry)
	if !ok || entry.engine != e {
		return nil, ErrForeignHandle
	}
	if entry.released {
		return nil, fmt.Errorf("%w: %s was released", ErrUnknownClass, entry.name)
	}
	return entry, nil
}

func (e *Engine) lookupClass(name string) (*classEntry, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	entry, ok := e.classes[foldName(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownClass, name)
	}
	return entry, nil
}

// Classes returns the registered class names in registration order.
func (e *Engine) Classes() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	names := make([]string, len(e.order))
	for i, c := range e.order {
		names[i] = c.name
	}
	return names
}

// Summary provides a human-readable description of the engine state.
func (e *Engine) Summary() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return fmt.Sprintf("classes=%d max=%d reject_duplicates=%t", len(e.classes), e.config.MaxClasses, e.config.RejectDuplicateMethods)
}
