package golang

import (
	"fmt"
	"strings"

	"github.com/crossbind/crossbind/typesystem"
)

// packageNameFor derives the Go package name for an assembly: the
// configured override if present, otherwise the lowercased assembly
// name stripped of characters Go package names cannot carry.
func packageNameFor(cfg Config, assemblyName string) string {
	if name, ok := cfg.PackageNames[assemblyName]; ok {
		return name
	}
	var b strings.Builder
	for _, r := range strings.ToLower(assemblyName) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "pkg"
	}
	return b.String()
}

// typeMapper lowers model types to Go source syntax within one
// generated file. Cross-assembly references register imports on the
// file as a side effect.
type typeMapper struct {
	e   *Emitter
	asm *typesystem.Assembly
	f   *file
}

// runtimePkg registers the bridge client import and returns its
// qualifier.
func (m *typeMapper) runtimePkg() string {
	return m.f.importPkg(m.e.cfg.runtimeImport())
}

// localName returns the in-package Go name of a type. Submodule
// namespaces flatten into the name with underscore joints, so every
// type of an assembly lives in a single Go package without clashing.
func localName(t typesystem.Type) string {
	name := exportName(t.Name())
	if ns := t.Namespace(); ns != "" {
		segments := strings.Split(ns, ".")
		for i, s := range segments {
			segments[i] = exportName(s)
		}
		name = strings.Join(segments, "_") + "_" + name
	}
	return name
}

// enumMemberName returns the Go constant name for an enum member.
func enumMemberName(t typesystem.Type, member string) string {
	return localName(t) + "_" + strings.ToUpper(sanitizeIdentifier(member))
}

// typeName returns the possibly package-qualified Go name of a type,
// registering the foreign package import when the type belongs to
// another assembly.
func (m *typeMapper) typeName(t typesystem.Type) string {
	name := localName(t)
	if t.Assembly() == m.asm {
		return name
	}
	path := m.e.importPathFor(t.Assembly().Name())
	return m.f.importPkg(path) + "." + name
}

// goType lowers a type reference to Go syntax. nilable reports whether
// the lowered form already admits nil, which decides pointer wrapping
// for optional values.
func (m *typeMapper) goType(ref *typesystem.TypeReference) (typ string, nilable bool, err error) {
	if ref == nil || ref.Kind() == typesystem.RefVoid {
		return "", false, fmt.Errorf("void reference has no Go representation")
	}
	switch ref.Kind() {
	case typesystem.RefPrimitive:
		switch ref.Primitive() {
		case "string":
			return "string", false, nil
		case "number":
			return "float64", false, nil
		case "boolean":
			return "bool", false, nil
		case "date":
			return m.f.importPkg("time") + ".Time", false, nil
		case "json":
			return "map[string]interface{}", true, nil
		case "any":
			return "interface{}", true, nil
		default:
			return "", false, fmt.Errorf("unknown primitive %q", ref.Primitive())
		}
	case typesystem.RefNamed:
		t, err := ref.Resolve()
		if err != nil {
			return "", false, err
		}
		switch t := t.(type) {
		case *typesystem.ClassType:
			return "*" + m.typeName(t), true, nil
		case *typesystem.InterfaceType:
			datatype, err := t.Datatype()
			if err != nil {
				return "", false, err
			}
			if datatype {
				return "*" + m.typeName(t), true, nil
			}
			return m.typeName(t), true, nil
		case *typesystem.EnumType:
			return m.typeName(t), false, nil
		default:
			return "", false, fmt.Errorf("unsupported type kind for %s", ref.FQN())
		}
	case typesystem.RefArray:
		elem, _, err := m.goType(ref.Element())
		if err != nil {
			return "", false, err
		}
		return "[]" + elem, true, nil
	case typesystem.RefMap:
		elem, _, err := m.goType(ref.Element())
		if err != nil {
			return "", false, err
		}
		return "map[string]" + elem, true, nil
	case typesystem.RefUnion:
		return "interface{}", true, nil
	default:
		return "", false, fmt.Errorf("unhandled reference kind %v", ref.Kind())
	}
}

// goValueType lowers a reference honoring optionality: optional values
// whose lowered form cannot hold nil are wrapped in a pointer.
func (m *typeMapper) goValueType(ref *typesystem.TypeReference, optional bool) (string, error) {
	typ, nilable, err := m.goType(ref)
	if err != nil {
		return "", err
	}
	if optional && !nilable {
		return "*" + typ, nil
	}
	return typ, nil
}

// paramType lowers a parameter's declared type, spreading variadics.
func (m *typeMapper) paramType(p *typesystem.Parameter) (string, error) {
	typ, err := m.goValueType(p.Type, p.Optional && !p.Variadic)
	if err != nil {
		return "", err
	}
	if p.Variadic {
		return "..." + typ, nil
	}
	return typ, nil
}

// importPathFor returns the import path of the generated package for
// an assembly.
func (e *Emitter) importPathFor(assemblyName string) string {
	pkg := packageNameFor(e.cfg, assemblyName)
	if e.cfg.ModuleBase == "" {
		return pkg
	}
	return strings.TrimSuffix(e.cfg.ModuleBase, "/") + "/" + pkg
}
