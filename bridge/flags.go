package bridge

import (
	"fmt"
	"strings"
)

// Flags is the visibility and modifier bitset attached to methods and
// properties.
type Flags int

const (
	Public Flags = 1 << iota
	Protected
	Private
	Final
	Abstract
)

const (
	visibilityMask = Public | Protected | Private
	modifierMask   = Final | Abstract
)

// Has reports whether every bit of other is set.
func (f Flags) Has(other Flags) bool { return f&other == other }

// Visibility returns only the visibility bits.
func (f Flags) Visibility() Flags { return f & visibilityMask }

// Modifiers returns only the Final/Abstract bits.
func (f Flags) Modifiers() Flags { return f & modifierMask }

// withDefaultVisibility makes an unqualified declaration public.
func (f Flags) withDefaultVisibility() Flags {
	if f.Visibility() == 0 {
		return f | Public
	}
	return f
}

func (f Flags) String() string {
	if f == 0 {
		return "none"
	}
	var parts []string
	for _, bit := range []struct {
		flag Flags
		name string
	}{
		{Abstract, "abstract"},
		{Final, "final"},
		{Public, "public"},
		{Protected, "protected"},
		{Private, "private"},
	} {
		if f&bit.flag != 0 {
			parts = append(parts, bit.name)
		}
	}
	if rest := f &^ (visibilityMask | modifierMask); rest != 0 {
		parts = append(parts, fmt.Sprintf("flags(%#x)", int(rest)))
	}
	return strings.Join(parts, " ")
}

// ClassType is the class-level modifier. A class has exactly one.
type ClassType int

const (
	ClassRegular ClassType = iota
	ClassAbstract
	ClassFinal
	ClassInterface
)

func (t ClassType) String() string {
	switch t {
	case ClassRegular:
		return "class"
	case ClassAbstract:
		return "abstract class"
	case ClassFinal:
		return "final class"
	case ClassInterface:
		return "interface"
	default:
		return fmt.Sprintf("classtype(%d)", int(t))
	}
}

// Instantiable reports whether the modifier alone allows `new`.
func (t ClassType) Instantiable() bool {
	return t == ClassRegular || t == ClassFinal
}
