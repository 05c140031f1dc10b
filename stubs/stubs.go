// Package stubs renders registered classes as PHP declarations for IDEs and
// verifies the rendered text with the tree-sitter PHP grammar.
package stubs

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/php"

	"github.com/mgomes/classbridge/bridge"
	"github.com/mgomes/classbridge/engine"
)

// Render writes one stub file covering every class. Classes are grouped by
// namespace using braced namespace blocks, keeping registration order.
func Render(classes []engine.ClassInfo) []byte {
	var b strings.Builder
	b.WriteString("<?php\n")

	var groups []string
	byNamespace := make(map[string][]engine.ClassInfo)
	for _, c := range classes {
		if _, ok := byNamespace[c.Namespace]; !ok {
			groups = append(groups, c.Namespace)
		}
		byNamespace[c.Namespace] = append(byNamespace[c.Namespace], c)
	}

	for _, ns := range groups {
		b.WriteString("\nnamespace ")
		if ns != "" {
			b.WriteString(ns)
			b.WriteByte(' ')
		}
		b.WriteString("{\n")
		for _, c := range byNamespace[ns] {
			renderClass(&b, c)
		}
		b.WriteString("}\n")
	}
	return []byte(b.String())
}

func renderClass(b *strings.Builder, c engine.ClassInfo) {
	fmt.Fprintf(b, "\n%s %s\n{\n", c.Type, c.ShortName)
	for _, p := range c.Properties {
		fmt.Fprintf(b, "    %s $%s = %s;\n", p.Flags.Visibility(), p.Name, literal(p.Default))
	}
	if len(c.Properties) > 0 && len(c.Methods) > 0 {
		b.WriteByte('\n')
	}
	for _, m := range c.Methods {
		b.WriteString("    ")
		b.WriteString(methodSignature(c.Type, m))
		if m.Abstract {
			b.WriteString(";\n")
		} else {
			b.WriteString(" {}\n")
		}
	}
	b.WriteString("}\n")
}

// methodSignature drops modifiers that interface members may not spell out
// and makes class hints fully qualified, since stubs declare namespaces.
func methodSignature(typ bridge.ClassType, m engine.MethodInfo) string {
	if typ == bridge.ClassInterface {
		m.Flags = bridge.Public
	}
	args := make([]bridge.Argument, len(m.Args))
	for i, a := range m.Args {
		if a.Hint == bridge.HintObject && a.ClassName != "" && !strings.HasPrefix(a.ClassName, `\`) {
			a.ClassName = `\` + a.ClassName
		}
		args[i] = a
	}
	m.Args = args
	return m.Signature()
}

func literal(v bridge.Value) string {
	switch v.Kind() {
	case bridge.KindString:
		return "'" + strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(v.String()) + "'"
	case bridge.KindNil:
		return "null"
	case bridge.KindFloat:
		s := v.String()
		if !strings.ContainsAny(s, ".eEIN") {
			s += ".0"
		}
		return s
	case bridge.KindArray:
		parts := make([]string, len(v.Array()))
		for i, e := range v.Array() {
			parts[i] = literal(e)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return v.String()
	}
}

// Declared lists the classes and interfaces a PHP source declares, fully
// qualified. It fails if the source does not parse cleanly.
func Declared(src []byte) ([]string, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(php.GetLanguage())
	tree, err := parser.ParseCtx(context.Background(), nil, src)
	if err != nil {
		return nil, fmt.Errorf("stubs: parse: %w", err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return nil, fmt.Errorf("stubs: syntax error near %s", firstError(root, src))
	}
	var names []string
	collect(root, src, "", &names)
	return names, nil
}

func collect(node *sitter.Node, src []byte, ns string, out *[]string) {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		switch child.Type() {
		case "namespace_definition":
			name := ""
			if n := child.ChildByFieldName("name"); n != nil {
				name = n.Content(src)
			}
			if body := child.ChildByFieldName("body"); body != nil {
				collect(body, src, name, out)
			} else {
				ns = name
			}
		case "class_declaration", "interface_declaration":
			if n := child.ChildByFieldName("name"); n != nil {
				name := n.Content(src)
				if ns != "" {
					name = ns + `\` + name
				}
				*out = append(*out, name)
			}
		default:
			collect(child, src, ns, out)
		}
	}
}

func firstError(node *sitter.Node, src []byte) string {
	if node.IsError() || node.IsMissing() {
		p := node.StartPoint()
		return fmt.Sprintf("line %d column %d", p.Row+1, p.Column+1)
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.HasError() || child.IsMissing() {
			return firstError(child, src)
		}
	}
	p := node.StartPoint()
	return fmt.Sprintf("line %d column %d", p.Row+1, p.Column+1)
}

// Check renders classes and confirms every one of them parses back.
func Check(classes []engine.ClassInfo) ([]byte, error) {
	src := Render(classes)
	names, err := Declared(src)
	if err != nil {
		return src, err
	}
	if len(names) != len(classes) {
		return src, fmt.Errorf("stubs: rendered %d classes, parsed %d", len(classes), len(names))
	}
	for i, c := range classes {
		if names[i] != c.Name {
			return src, fmt.Errorf("stubs: class %d parsed as %s, want %s", i, names[i], c.Name)
		}
	}
	return src, nil
}
