package main

import (
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/mgomes/classbridge/bridge"
	"github.com/mgomes/classbridge/engine"
)

type counter struct {
	n int64
}

type shape interface {
	area() float64
	name() string
}

type circle struct {
	radius float64
}

func (c *circle) area() float64 { return math.Pi * c.radius * c.radius }
func (c *circle) name() string  { return "circle" }

type greeter struct {
	greeted int
}

func demoExtension(log *zap.Logger) *bridge.Extension {
	ext := bridge.MustNewExtension(bridge.ExtensionConfig{
		Name:    "demo",
		Version: "1.0.0",
		Logger:  log,
	})

	ext.Add(bridge.NewClass("Measurable", bridge.ClassInterface, nil).
		AbstractMethod("area", bridge.Public))

	demo := ext.Namespace("Demo")
	demo.Add(counterClass(), greeterClass())

	shapes := demo.Namespace("Shapes")
	shapes.Add(
		bridge.NewClass("Shape", bridge.ClassAbstract, nil).
			AbstractMethod("area", bridge.Public|bridge.Abstract).
			Method("name", bridge.Returns(func(s shape) (bridge.Value, error) {
				return bridge.NewString(s.name()), nil
			}), bridge.Public),
		circleClass(),
	)
	return ext
}

func counterClass() *bridge.Class {
	return bridge.NewClass("Counter", bridge.ClassRegular, bridge.New[counter]()).
		Method("increment", bridge.Void(func(c *counter) error {
			c.n++
			return nil
		}), bridge.Public).
		Method("add", bridge.VoidArgs(func(c *counter, p *bridge.Parameters) error {
			c.n += arg(p, "amount").Int()
			return nil
		}), bridge.Public, bridge.ByVal("amount", bridge.HintInt, true)).
		Method("value", bridge.Returns(func(c *counter) (bridge.Value, error) {
			return bridge.NewInt(c.n), nil
		}), bridge.Public).
		Method("scaled", bridge.ReturnsArgs(func(c *counter, p *bridge.Parameters) (bridge.Value, error) {
			return bridge.NewFloat(float64(c.n) * arg(p, "factor").Float()), nil
		}), bridge.Public|bridge.Final, bridge.ByVal("factor", bridge.HintFloat, true)).
		Method("reset", bridge.Void(func(c *counter) error {
			c.n = 0
			return nil
		}), bridge.Protected).
		Property("count", bridge.Int32(0), bridge.Public).
		Property("step", bridge.Int16(1), bridge.Public).
		Property("ratio", bridge.Float(0.5), bridge.Public).
		Property("enabled", bridge.Bool(true), bridge.Public).
		Property("owner", bridge.Null(), bridge.Public).
		Property("label", bridge.String("counter"), bridge.Protected).
		Property("sep", bridge.Char(','), bridge.Private)
}

func greeterClass() *bridge.Class {
	return bridge.NewClass("Greeter", bridge.ClassRegular, bridge.ConstructorFunc(func() bridge.Base {
		return &greeter{}
	})).
		Method("greet", bridge.ReturnsArgs(func(g *greeter, p *bridge.Parameters) (bridge.Value, error) {
			name := strings.TrimSpace(arg(p, "name").String())
			if name == "" {
				return bridge.NewNil(), fmt.Errorf("name cannot be blank")
			}
			greeting := "Hello"
			if p.Len() > 1 && !p.At(1).IsNil() {
				greeting = p.At(1).String()
			}
			g.greeted++
			return bridge.NewString(greeting + ", " + name + "!"), nil
		}), bridge.Public,
			bridge.ByVal("name", bridge.HintString, true),
			bridge.ByVal("greeting", bridge.HintString, false)).
		Method("greeted", bridge.Returns(func(g *greeter) (bridge.Value, error) {
			return bridge.NewInt(int64(g.greeted)), nil
		}), bridge.Public)
}

func circleClass() *bridge.Class {
	return bridge.NewClass("Circle", bridge.ClassFinal, bridge.ConstructorFunc(func() bridge.Base {
		return &circle{radius: 1}
	})).
		Method("area", bridge.Returns(func(c *circle) (bridge.Value, error) {
			return bridge.NewFloat(c.area()), nil
		}), bridge.Public).
		Method("name", bridge.Returns(func(c *circle) (bridge.Value, error) {
			return bridge.NewString(c.name()), nil
		}), bridge.Public).
		Method("grow", bridge.VoidArgs(func(c *circle, p *bridge.Parameters) error {
			factor := arg(p, "factor").Float()
			if factor <= 0 {
				return fmt.Errorf("factor must be positive, got %v", factor)
			}
			c.radius *= factor
			return nil
		}), bridge.Public, bridge.ByVal("factor", bridge.HintFloat, true)).
		Method("larger", bridge.ReturnsArgs(func(c *circle, p *bridge.Parameters) (bridge.Value, error) {
			other, ok := arg(p, "other").Object().(*engine.Object)
			if !ok {
				return bridge.NewNil(), fmt.Errorf("other is not a runtime object")
			}
			oc, ok := other.Native().(*circle)
			if !ok {
				return bridge.NewNil(), fmt.Errorf("other is not a circle")
			}
			return bridge.NewBool(c.radius > oc.radius), nil
		}), bridge.Public, bridge.ByValClass("other", `Demo\Shapes\Circle`, false, true)).
		Property("radius", bridge.Float(1), bridge.Public)
}

func arg(p *bridge.Parameters, name string) bridge.Value {
	v, _ := p.Get(name)
	return v
}

// sandbox is a started demo extension on a fresh engine.
type sandbox struct {
	engine *engine.Engine
	ext    *bridge.Extension
}

func newSandbox(log *zap.Logger) (*sandbox, error) {
	if log == nil {
		log = zap.NewNop()
	}
	eng, err := engine.NewEngine(engine.Config{Logger: log})
	if err != nil {
		return nil, err
	}
	ext := demoExtension(log)
	if err := ext.Start(eng); err != nil {
		return nil, err
	}
	return &sandbox{engine: eng, ext: ext}, nil
}

func (s *sandbox) Close() error {
	return s.ext.Shutdown()
}

// classes returns reflection snapshots, restricted to namespace and its
// children when namespace is not empty.
func (s *sandbox) classes(namespace string) ([]engine.ClassInfo, error) {
	infos, err := s.engine.DescribeAll()
	if err != nil {
		return nil, err
	}
	namespace = strings.Trim(namespace, `\`)
	if namespace == "" {
		return infos, nil
	}
	var out []engine.ClassInfo
	for _, info := range infos {
		if strings.EqualFold(info.Namespace, namespace) ||
			strings.HasPrefix(strings.ToLower(info.Namespace), strings.ToLower(namespace)+`\`) {
			out = append(out, info)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no classes in namespace %s", namespace)
	}
	return out, nil
}
