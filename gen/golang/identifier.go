package golang

import (
	"strings"
	"unicode"
)

// Go reserved words and predeclared identifiers that generated code must
// never shadow.
var reservedWords = map[string]bool{
	"break": true, "case": true, "chan": true, "const": true,
	"continue": true, "default": true, "defer": true, "else": true,
	"fallthrough": true, "for": true, "func": true, "go": true,
	"goto": true, "if": true, "import": true, "interface": true,
	"map": true, "package": true, "range": true, "return": true,
	"select": true, "struct": true, "switch": true, "type": true,
	"var": true,

	// predeclared identifiers the generated bodies rely on
	"any": true, "bool": true, "byte": true, "error": true,
	"float32": true, "float64": true, "int": true, "int8": true,
	"int16": true, "int32": true, "int64": true, "nil": true,
	"string": true, "true": true, "false": true, "uint": true,
	"append": true, "len": true, "make": true, "new": true,
	"runtime": true, "fmt": true, "time": true,
}

// escapeReservedWord escapes a reserved word by appending an underscore.
func escapeReservedWord(name string) string {
	if reservedWords[name] {
		return name + "_"
	}
	return name
}

// sanitizeIdentifier makes a name a valid Go identifier.
func sanitizeIdentifier(name string) string {
	if name == "" {
		return "_"
	}
	var b strings.Builder
	if unicode.IsDigit(rune(name[0])) {
		b.WriteRune('_')
	}
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	return escapeReservedWord(b.String())
}

// exportName converts a member name to an exported Go identifier.
func exportName(name string) string {
	name = sanitizeIdentifier(name)
	name = strings.TrimLeft(name, "_")
	if name == "" {
		return "X"
	}
	return strings.ToUpper(name[:1]) + name[1:]
}

// Scope tracks the identifiers already taken in a generated lexical
// scope. Reserve disambiguates deterministically, so identical inputs
// always produce identical output and generated files stay diffable.
type Scope struct {
	used map[string]bool
}

// NewScope creates a scope with the given names already taken.
func NewScope(names ...string) *Scope {
	s := &Scope{used: make(map[string]bool, len(names))}
	for _, n := range names {
		s.used[n] = true
	}
	return s
}

// Reserve claims a collision-free identifier derived from base,
// appending underscores until the name is unique within the scope.
func (s *Scope) Reserve(base string) string {
	name := sanitizeIdentifier(base)
	for s.used[name] {
		name += "_"
	}
	s.used[name] = true
	return name
}

// Child creates a nested scope that sees every name of the parent.
func (s *Scope) Child() *Scope {
	child := &Scope{used: make(map[string]bool, len(s.used))}
	for n := range s.used {
		child.used[n] = true
	}
	return child
}
