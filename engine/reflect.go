package engine

import (
	"strings"

	"github.com/mgomes/classbridge/bridge"
)

type MethodInfo struct {
	Name     string
	Flags    bridge.Flags
	Abstract bool
	Required int
	Args     []bridge.Argument
}

type PropertyInfo struct {
	Name    string
	Default bridge.Value
	Flags   bridge.Flags
}

// ClassInfo is a reflection snapshot of a registered class. Methods and
// properties appear in declaration order, duplicates included.
type ClassInfo struct {
	Name       string
	Namespace  string
	ShortName  string
	Type       bridge.ClassType
	Methods    []MethodInfo
	Properties []PropertyInfo
}

// Describe returns a reflection snapshot of the named class.
func (e *Engine) Describe(name string) (ClassInfo, error) {
	entry, err := e.lookupClass(name)
	if err != nil {
		return ClassInfo{}, err
	}
	e.mu.RLock()
	defer e.mu.RUnlock()

	info := ClassInfo{
		Name:      entry.name,
		ShortName: entry.name,
		Type:      entry.typ,
	}
	if i := strings.LastIndex(entry.name, `\`); i >= 0 {
		info.Namespace = entry.name[:i]
		info.ShortName = entry.name[i+1:]
	}
	for _, m := range entry.methods {
		info.Methods = append(info.Methods, MethodInfo{
			Name:     m.Name,
			Flags:    m.Flags,
			Abstract: m.Handler == nil || m.Flags.Has(bridge.Abstract),
			Required: m.ArgInfo.Required,
			Args:     append([]bridge.Argument(nil), m.ArgInfo.Args...),
		})
	}
	for _, p := range entry.props {
		info.Properties = append(info.Properties, PropertyInfo{Name: p.name, Default: p.value, Flags: p.flags})
	}
	return info, nil
}

// DescribeAll returns snapshots of every class in registration order.
func (e *Engine) DescribeAll() ([]ClassInfo, error) {
	var out []ClassInfo
	for _, name := range e.Classes() {
		info, err := e.Describe(name)
		if err != nil {
			return nil, err
		}
		out = append(out, info)
	}
	return out, nil
}

// Signature renders a method the way reflection output lists it.
func (m MethodInfo) Signature() string {
	args := make([]string, len(m.Args))
	for i, a := range m.Args {
		args[i] = a.String()
	}
	var b strings.Builder
	if mods := m.Flags.String(); mods != "none" {
		b.WriteString(mods)
		b.WriteByte(' ')
	}
	b.WriteString("function ")
	b.WriteString(m.Name)
	b.WriteByte('(')
	b.WriteString(strings.Join(args, ", "))
	b.WriteByte(')')
	return b.String()
}
