// Package golang renders loaded assemblies to Go binding source. Every
// exported class becomes a proxy struct whose members forward over the
// bridge, datatype interfaces become plain structs with generated
// validators, behavioral interfaces become Go interfaces, and enums
// become string-typed constant sets.
package golang

import (
	"context"
	"fmt"
	"strings"

	"github.com/crossbind/crossbind/gen/sink"
	"github.com/crossbind/crossbind/typesystem"
)

// Warning flags a non-fatal finding surfaced during emission, such as
// a deprecated member carried into the generated surface.
type Warning struct {
	FQN     string
	Member  string
	Message string
}

func (w Warning) String() string {
	if w.Member != "" {
		return fmt.Sprintf("%s.%s: %s", w.FQN, w.Member, w.Message)
	}
	return fmt.Sprintf("%s: %s", w.FQN, w.Message)
}

// Emitter renders assemblies from a locked type system.
type Emitter struct {
	ts       *typesystem.TypeSystem
	cfg      Config
	warnings []Warning
}

// NewEmitter creates an emitter over a locked type system.
func NewEmitter(ts *typesystem.TypeSystem, cfg Config) *Emitter {
	return &Emitter{ts: ts, cfg: cfg}
}

// Warnings returns the findings collected so far, in emission order.
func (e *Emitter) Warnings() []Warning { return e.warnings }

func (e *Emitter) warnf(fqn, member, format string, args ...interface{}) {
	e.warnings = append(e.warnings, Warning{FQN: fqn, Member: member, Message: fmt.Sprintf(format, args...)})
}

// EmitAssembly renders every type of one assembly into out, one file
// per type, and returns the written paths.
func (e *Emitter) EmitAssembly(ctx context.Context, asm *typesystem.Assembly, out sink.OutputSink) ([]string, error) {
	if !e.ts.Locked() {
		return nil, fmt.Errorf("type system must be locked before emitting %s", asm.Name())
	}
	pkg := packageNameFor(e.cfg, asm.Name())
	var paths []string
	for _, t := range asm.AllTypes() {
		if err := ctx.Err(); err != nil {
			return paths, err
		}
		f := newFile(pkg+"/"+fileName(t), pkg)
		if err := e.emitType(f, t); err != nil {
			return paths, fmt.Errorf("emit %s: %w", t.FQN(), err)
		}
		src, err := formatSource(f.path, f.assemble())
		if err != nil {
			return paths, fmt.Errorf("format %s: %w", f.path, err)
		}
		if err := out.WriteFile(ctx, f.path, src); err != nil {
			return paths, err
		}
		paths = append(paths, f.path)
	}
	return paths, nil
}

// fileName derives the file holding a type from its flattened local
// name.
func fileName(t typesystem.Type) string {
	return strings.ToLower(localName(t)) + ".go"
}

func (e *Emitter) emitType(f *file, t typesystem.Type) error {
	m := &typeMapper{e: e, asm: t.Assembly(), f: f}
	switch t := t.(type) {
	case *typesystem.ClassType:
		return e.emitClass(m, t)
	case *typesystem.InterfaceType:
		datatype, err := t.Datatype()
		if err != nil {
			return err
		}
		if datatype {
			return e.emitDatatype(m, t)
		}
		return e.emitBehavioralInterface(m, t)
	case *typesystem.EnumType:
		return e.emitEnum(m, t)
	default:
		return fmt.Errorf("unsupported type kind for %s", t.FQN())
	}
}

// emitClass writes the proxy struct with its flattened member surface.
// Inherited members reappear on every subclass so a proxy value stands
// alone without embedding.
func (e *Emitter) emitClass(m *typeMapper, class *typesystem.ClassType) error {
	f := m.f
	rt := m.runtimePkg()
	name := localName(class)

	writeDocs(f, class.Docs(), "")
	f.printf("type %s struct {\n\tref %s.Ref\n}\n\n", name, rt)
	recv := strings.ToLower(name[:1])
	f.printf("// Reference returns the bridge object reference backing this proxy.\n")
	f.printf("func (%s *%s) Reference() %s.Ref {\n\treturn %s.ref\n}\n\n", recv, name, rt, recv)

	g := newMemberGen(m, class)
	if err := g.emitConstructor(); err != nil {
		return err
	}
	methods, err := class.Methods(true)
	if err != nil {
		return err
	}
	for _, method := range sortedMethods(methods) {
		if method.Deprecated() {
			e.warnf(class.FQN(), method.Name, "method is deprecated: %s", method.Docs.Deprecated)
		}
		if err := g.emitMethod(method); err != nil {
			return err
		}
	}
	props, err := class.Properties(true)
	if err != nil {
		return err
	}
	for _, prop := range sortedProperties(props) {
		if prop.Deprecated() {
			e.warnf(class.FQN(), prop.Name, "property is deprecated: %s", prop.Docs.Deprecated)
		}
		if err := g.emitProperty(prop); err != nil {
			return err
		}
	}
	return nil
}

// emitDatatype writes a datatype interface as a struct of public
// fields plus a Validate method checking presence and union
// membership. The full inherited property surface flattens into the
// struct.
func (e *Emitter) emitDatatype(m *typeMapper, iface *typesystem.InterfaceType) error {
	f := m.f
	name := localName(iface)
	props, err := iface.Properties(true)
	if err != nil {
		return err
	}
	sorted := sortedProperties(props)

	writeDocs(f, iface.Docs(), "")
	f.printf("type %s struct {\n", name)
	fields := NewScope()
	fieldNames := make([]string, len(sorted))
	for i, p := range sorted {
		if p.Deprecated() {
			e.warnf(iface.FQN(), p.Name, "property is deprecated: %s", p.Docs.Deprecated)
		}
		typ, err := m.goValueType(p.Type, p.Optional)
		if err != nil {
			return err
		}
		fieldNames[i] = fields.Reserve(exportName(p.Name))
		writeDocs(f, p.Docs, "\t")
		tag := p.Name
		if p.Optional {
			tag += ",omitempty"
		}
		f.printf("\t%s %s `json:%q`\n", fieldNames[i], typ, tag)
	}
	f.printf("}\n\n")

	recv := strings.ToLower(name[:1])
	v := &validatorGen{m: m}
	f.printf("// Validate checks that every required field is present and every\n")
	f.printf("// union-typed field holds an allowed type.\n")
	f.printf("func (%s *%s) Validate() error {\n", recv, name)
	scope := NewScope(recv)
	for i, p := range sorted {
		expr := recv + "." + fieldNames[i]
		desc := fmt.Sprintf("field %s", fieldNames[i])
		if err := v.emitValueChecks(expr, desc, p.Type, p.Optional, scope, "\t"); err != nil {
			return err
		}
	}
	f.printf("\treturn nil\n}\n\n")
	return nil
}

// emitBehavioralInterface writes a Go interface. Extended interfaces
// embed rather than flatten, mirroring the declared hierarchy.
func (e *Emitter) emitBehavioralInterface(m *typeMapper, iface *typesystem.InterfaceType) error {
	f := m.f
	name := localName(iface)

	extends, err := iface.Interfaces(false)
	if err != nil {
		return err
	}
	writeDocs(f, iface.Docs(), "")
	f.printf("type %s interface {\n", name)
	for _, ext := range extends {
		f.printf("\t%s\n", m.typeName(ext))
	}
	names := NewScope()
	for _, method := range iface.OwnMethods() {
		if method.Deprecated() {
			e.warnf(iface.FQN(), method.Name, "method is deprecated: %s", method.Docs.Deprecated)
		}
		writeDocs(f, method.Docs, "\t")
		f.printf("\t%s(", names.Reserve(exportName(method.Name)))
		params := NewScope()
		for i, p := range method.Parameters {
			typ, err := m.paramType(p)
			if err != nil {
				return err
			}
			if i > 0 {
				f.printf(", ")
			}
			f.printf("%s %s", params.Reserve(p.Name), typ)
		}
		if method.Returns != nil && !method.Returns.Void() {
			ret, err := m.goValueType(method.Returns.Type, method.Returns.Optional)
			if err != nil {
				return err
			}
			f.printf(") (%s, error)\n", ret)
		} else {
			f.printf(") error\n")
		}
	}
	for _, prop := range iface.OwnProperties() {
		typ, err := m.goValueType(prop.Type, prop.Optional)
		if err != nil {
			return err
		}
		writeDocs(f, prop.Docs, "\t")
		f.printf("\t%s() (%s, error)\n", names.Reserve(exportName(prop.Name)), typ)
		if !prop.Immutable {
			f.printf("\t%s(val %s) error\n", names.Reserve("Set"+exportName(prop.Name)), typ)
		}
	}
	f.printf("}\n\n")
	return nil
}

// emitEnum writes a string-typed enum with one constant per member.
// The constant value is the member's declared name, which is what the
// bridge exchanges on the wire.
func (e *Emitter) emitEnum(m *typeMapper, enum *typesystem.EnumType) error {
	f := m.f
	name := localName(enum)
	writeDocs(f, enum.Docs(), "")
	f.printf("type %s string\n\nconst (\n", name)
	for _, member := range enum.Members() {
		writeDocs(f, member.Docs, "\t")
		f.printf("\t%s %s = %q\n", enumMemberName(enum, member.Name), name, member.Name)
	}
	f.printf(")\n\n")
	return nil
}
