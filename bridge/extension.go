package bridge

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// ExtensionConfig names an extension and wires its logger.
type ExtensionConfig struct {
	Name    string
	Version string
	Logger  *zap.Logger
}

// Extension owns the classes a host declares and drives their lifecycle:
// declare, Start (register with a live runtime), Shutdown (release).
type Extension struct {
	config  ExtensionConfig
	root    *Namespace
	log     *zap.Logger
	started []*Class
	running bool
}

// Namespace groups classes under a common prefix. Nested namespaces are
// joined with a backslash.
type Namespace struct {
	name     string
	ext      *Extension
	classes  []*Class
	children []*Namespace
}

// NewExtension validates cfg and returns an empty extension.
func NewExtension(cfg ExtensionConfig) (*Extension, error) {
	if strings.TrimSpace(cfg.Name) == "" {
		return nil, fmt.Errorf("bridge: extension name cannot be empty")
	}
	if cfg.Version == "" {
		cfg.Version = "0.0.0"
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	ext := &Extension{
		config: cfg,
		log:    cfg.Logger.With(zap.String("extension", cfg.Name)),
	}
	ext.root = &Namespace{ext: ext}
	return ext, nil
}

// MustNewExtension constructs an Extension or panics if the config is invalid.
func MustNewExtension(cfg ExtensionConfig) *Extension {
	ext, err := NewExtension(cfg)
	if err != nil {
		panic(err)
	}
	return ext
}

func (e *Extension) Name() string    { return e.config.Name }
func (e *Extension) Version() string { return e.config.Version }
func (e *Extension) Running() bool   { return e.running }

// Add places classes in the root namespace.
func (e *Extension) Add(classes ...*Class) *Extension {
	e.root.Add(classes...)
	return e
}

// Namespace returns the child namespace called name, creating it on first use.
func (e *Extension) Namespace(name string) *Namespace {
	return e.root.Namespace(name)
}

// Name returns the fully qualified namespace name.
func (ns *Namespace) Name() string { return ns.name }

// Add places classes in ns. Classes keep the order in which they were added.
func (ns *Namespace) Add(classes ...*Class) *Namespace {
	if ns.ext.running {
		violation("extension %s is running, cannot add classes", ns.ext.config.Name)
	}
	for _, c := range classes {
		if c == nil {
			violation("namespace %q: nil class", ns.name)
		}
		ns.classes = append(ns.classes, c)
	}
	return ns
}

// Namespace returns the child namespace called name, creating it on first use.
func (ns *Namespace) Namespace(name string) *Namespace {
	name = strings.Trim(name, `\`)
	if name == "" {
		violation("namespace name cannot be empty")
	}
	full := qualify(ns.name, name)
	for _, child := range ns.children {
		if child.name == full {
			return child
		}
	}
	child := &Namespace{name: full, ext: ns.ext}
	ns.children = append(ns.children, child)
	return child
}

// each visits namespaces depth first, parents before children.
func (ns *Namespace) each(fn func(ns *Namespace, c *Class)) {
	for _, c := range ns.classes {
		fn(ns, c)
	}
	for _, child := range ns.children {
		child.each(fn)
	}
}

// Classes returns every declared class in registration order.
func (e *Extension) Classes() []*Class {
	var out []*Class
	e.root.each(func(_ *Namespace, c *Class) {
		out = append(out, c)
	})
	return out
}

// Start registers every class with rt. The runtime must already have
// completed its module registration phase. If any class fails, the classes
// registered so far are released and the extension stays stopped.
func (e *Extension) Start(rt Runtime) error {
	if e.running {
		violation("extension %s already started", e.config.Name)
	}
	var startErr error
	e.root.each(func(ns *Namespace, c *Class) {
		if startErr != nil {
			return
		}
		if err := c.Initialize(rt, ns.name); err != nil {
			startErr = err
			return
		}
		e.started = append(e.started, c)
		e.log.Debug("class registered",
			zap.String("class", c.QualifiedName()),
			zap.Stringer("type", c.Type()),
			zap.Int("methods", len(c.methods)),
			zap.Int("properties", len(c.members)))
	})
	if startErr != nil {
		e.log.Error("extension start failed", zap.Error(startErr))
		if err := e.releaseAll(); err != nil {
			startErr = errors.Join(startErr, err)
		}
		return fmt.Errorf("bridge: start extension %s: %w", e.config.Name, startErr)
	}
	e.running = true
	e.log.Info("extension started",
		zap.String("version", e.config.Version),
		zap.Int("classes", len(e.started)))
	return nil
}

// Shutdown releases every registered class in reverse registration order.
// All classes are released even when some fail; the failures are joined.
func (e *Extension) Shutdown() error {
	if !e.running {
		return nil
	}
	e.running = false
	err := e.releaseAll()
	if err != nil {
		e.log.Error("extension shutdown incomplete", zap.Error(err))
		return err
	}
	e.log.Info("extension stopped")
	return nil
}

func (e *Extension) releaseAll() error {
	var errs []error
	for i := len(e.started) - 1; i >= 0; i-- {
		c := e.started[i]
		if err := c.Release(); err != nil {
			errs = append(errs, err)
		}
	}
	e.started = nil
	return errors.Join(errs...)
}
