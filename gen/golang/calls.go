package golang

import (
	"sort"
	"strings"

	"github.com/crossbind/crossbind/typesystem"
)

// memberGen emits the proxy surface of one class into a file: the
// constructor, bridge-invoking methods, and property accessors.
type memberGen struct {
	m     *typeMapper
	v     *validatorGen
	class *typesystem.ClassType

	// names holds the exported member names already claimed on the
	// proxy, so a method and a property sharing a name stay distinct.
	names *Scope
}

func newMemberGen(m *typeMapper, class *typesystem.ClassType) *memberGen {
	return &memberGen{
		m:     m,
		v:     &validatorGen{m: m},
		class: class,
		names: NewScope("Reference"),
	}
}

func (g *memberGen) receiverName() string {
	return strings.ToLower(localName(g.class)[:1])
}

// sortedMethods returns the class's flattened method surface in a
// stable order.
func sortedMethods(methods map[string]*typesystem.Method) []*typesystem.Method {
	names := make([]string, 0, len(methods))
	for n := range methods {
		names = append(names, n)
	}
	sort.Strings(names)
	out := make([]*typesystem.Method, 0, len(methods))
	for _, n := range names {
		out = append(out, methods[n])
	}
	return out
}

func sortedProperties(props map[string]*typesystem.Property) []*typesystem.Property {
	names := make([]string, 0, len(props))
	for n := range props {
		names = append(names, n)
	}
	sort.Strings(names)
	out := make([]*typesystem.Property, 0, len(props))
	for _, n := range names {
		out = append(out, props[n])
	}
	return out
}

// paramScope reserves the receiver and every parameter name, returning
// the receiver name and the reserved parameter names in order.
func (g *memberGen) paramScope(params []*typesystem.Parameter) (recv string, names []string, scope *Scope) {
	scope = NewScope()
	recv = scope.Reserve(g.receiverName())
	names = make([]string, len(params))
	for i, p := range params {
		names[i] = scope.Reserve(p.Name)
	}
	return recv, names, scope
}

// writeParams renders a parameter list using the reserved names.
func (g *memberGen) writeParams(params []*typesystem.Parameter, names []string) error {
	f := g.m.f
	for i, p := range params {
		typ, err := g.m.paramType(p)
		if err != nil {
			return err
		}
		if i > 0 {
			f.printf(", ")
		}
		f.printf("%s %s", names[i], typ)
	}
	return nil
}

// writeArgsPackaging writes the []interface{} literal holding the call
// arguments. A variadic parameter contributes a fixed prefix followed
// by an append loop, so the bridge always sees one flat argument list.
func (g *memberGen) writeArgsPackaging(params []*typesystem.Parameter, names []string, scope *Scope, ind string) (argsVar string) {
	f := g.m.f
	argsVar = scope.Reserve("args")
	var fixed []string
	variadic := ""
	for i, p := range params {
		if p.Variadic {
			variadic = names[i]
			continue
		}
		fixed = append(fixed, names[i])
	}
	f.printf("%s%s := []interface{}{%s}\n", ind, argsVar, strings.Join(fixed, ", "))
	if variadic != "" {
		extra := scope.Reserve("a")
		f.printf("%sfor _, %s := range %s {\n", ind, extra, variadic)
		f.printf("%s\t%s = append(%s, %s)\n", ind, argsVar, argsVar, extra)
		f.printf("%s}\n", ind)
	}
	return argsVar
}

// validatorArgs renders the argument list forwarded to a validator;
// variadic parameters pass the collected slice.
func validatorArgs(names []string) string {
	return strings.Join(names, ", ")
}

// emitConstructor writes NewX plus its validator. Abstract classes get
// no constructor.
func (g *memberGen) emitConstructor() error {
	if g.class.Abstract {
		return nil
	}
	f := g.m.f
	init := g.class.Initializer()
	var params []*typesystem.Parameter
	if init != nil {
		params = init.Parameters
	}
	name := localName(g.class)
	rt := g.m.runtimePkg()

	validator := ""
	if g.m.e.cfg.Validators && len(params) > 0 {
		validator = validatorName(g.class, "")
		if err := g.v.emitCallableValidator(validator, params); err != nil {
			return err
		}
	}
	if init != nil && init.Docs != nil {
		writeDocs(f, init.Docs, "")
	} else {
		f.printf("// New%s constructs a remote instance of %s.\n", name, g.class.FQN())
	}
	f.printf("func New%s(", name)
	scope := NewScope()
	names := make([]string, len(params))
	for i, p := range params {
		names[i] = scope.Reserve(p.Name)
	}
	if err := g.writeParams(params, names); err != nil {
		return err
	}
	f.printf(") (*%s, error) {\n", name)
	f.printf("\tif err := %s.Initialize(); err != nil {\n\t\treturn nil, err\n\t}\n", rt)
	if validator != "" && len(params) > 0 {
		f.printf("\tif err := %s(%s); err != nil {\n\t\treturn nil, err\n\t}\n", validator, validatorArgs(names))
	}
	argsVar := g.writeArgsPackaging(params, names, scope, "\t")
	out := scope.Reserve(g.receiverName())
	f.printf("\t%s := &%s{}\n", out, name)
	f.printf("\tif err := %s.Construct(%q, %s, &%s.ref); err != nil {\n\t\treturn nil, err\n\t}\n", rt, g.class.FQN(), argsVar, out)
	f.printf("\treturn %s, nil\n}\n\n", out)
	return nil
}

// emitMethod writes one proxy method (or package-level function for
// statics) plus its validator.
func (g *memberGen) emitMethod(method *typesystem.Method) error {
	f := g.m.f
	name := localName(g.class)
	rt := g.m.runtimePkg()
	goName := g.names.Reserve(exportName(method.Name))

	validator := ""
	if g.m.e.cfg.Validators && len(method.Parameters) > 0 {
		validator = validatorName(g.class, method.Name)
		if err := g.v.emitCallableValidator(validator, method.Parameters); err != nil {
			return err
		}
	}

	recv, names, scope := g.paramScope(method.Parameters)
	writeDocs(f, method.Docs, "")
	if method.Static {
		f.printf("func %s_%s(", name, goName)
	} else {
		f.printf("func (%s *%s) %s(", recv, name, goName)
	}
	if err := g.writeParams(method.Parameters, names); err != nil {
		return err
	}
	f.printf(") ")

	retType := ""
	if method.Returns != nil && !method.Returns.Void() {
		var err error
		retType, err = g.m.goValueType(method.Returns.Type, method.Returns.Optional)
		if err != nil {
			return err
		}
	}
	if retType != "" {
		f.printf("(%s, error) {\n", retType)
	} else {
		f.printf("error {\n")
	}

	retVar := ""
	if retType != "" {
		retVar = scope.Reserve("returns")
		f.printf("\tvar %s %s\n", retVar, retType)
	}
	errReturn := "err"
	if retVar != "" {
		errReturn = retVar + ", err"
	}
	// A static call can be the first contact with the bridge.
	if method.Static {
		f.printf("\tif err := %s.Initialize(); err != nil {\n\t\treturn %s\n\t}\n", rt, errReturn)
	}
	if validator != "" {
		f.printf("\tif err := %s(%s); err != nil {\n\t\treturn %s\n\t}\n", validator, validatorArgs(names), errReturn)
	}
	argsVar := g.writeArgsPackaging(method.Parameters, names, scope, "\t")

	switch {
	case method.Static && retVar != "":
		f.printf("\tif err := %s.StaticInvoke(%q, %q, %s, &%s); err != nil {\n\t\treturn %s\n\t}\n", rt, g.class.FQN(), method.Name, argsVar, retVar, errReturn)
		f.printf("\treturn %s, nil\n", retVar)
	case method.Static:
		f.printf("\treturn %s.StaticInvokeVoid(%q, %q, %s)\n", rt, g.class.FQN(), method.Name, argsVar)
	case retVar != "":
		f.printf("\tif err := %s.Invoke(%s.ref, %q, %s, &%s); err != nil {\n\t\treturn %s\n\t}\n", rt, recv, method.Name, argsVar, retVar, errReturn)
		f.printf("\treturn %s, nil\n", retVar)
	default:
		f.printf("\treturn %s.InvokeVoid(%s.ref, %q, %s)\n", rt, recv, method.Name, argsVar)
	}
	f.printf("}\n\n")
	return nil
}

// emitProperty writes the getter, and the setter when the property is
// mutable.
func (g *memberGen) emitProperty(prop *typesystem.Property) error {
	f := g.m.f
	name := localName(g.class)
	rt := g.m.runtimePkg()
	goName := g.names.Reserve(exportName(prop.Name))

	typ, err := g.m.goValueType(prop.Type, prop.Optional)
	if err != nil {
		return err
	}

	recv := g.receiverName()
	writeDocs(f, prop.Docs, "")
	if prop.Static {
		f.printf("func %s_%s() (%s, error) {\n", name, goName, typ)
		f.printf("\tvar returns %s\n", typ)
		f.printf("\tif err := %s.Initialize(); err != nil {\n\t\treturn returns, err\n\t}\n", rt)
		f.printf("\tif err := %s.StaticGet(%q, %q, &returns); err != nil {\n\t\treturn returns, err\n\t}\n", rt, g.class.FQN(), prop.Name)
	} else {
		f.printf("func (%s *%s) %s() (%s, error) {\n", recv, name, goName, typ)
		f.printf("\tvar returns %s\n", typ)
		f.printf("\tif err := %s.Get(%s.ref, %q, &returns); err != nil {\n\t\treturn returns, err\n\t}\n", rt, recv, prop.Name)
	}
	f.printf("\treturn returns, nil\n}\n\n")

	if prop.Immutable {
		return nil
	}

	setter := g.names.Reserve("Set" + exportName(prop.Name))
	validator := ""
	if g.m.e.cfg.Validators {
		validator = setterValidatorName(g.class, prop.Name)
		if err := g.v.emitSetterValidator(validator, prop); err != nil {
			return err
		}
	}
	if prop.Static {
		f.printf("func %s_%s(val %s) error {\n", name, setter, typ)
		f.printf("\tif err := %s.Initialize(); err != nil {\n\t\treturn err\n\t}\n", rt)
		if validator != "" {
			f.printf("\tif err := %s(val); err != nil {\n\t\treturn err\n\t}\n", validator)
		}
		f.printf("\treturn %s.StaticSet(%q, %q, val)\n}\n\n", rt, g.class.FQN(), prop.Name)
	} else {
		f.printf("func (%s *%s) %s(val %s) error {\n", recv, name, setter, typ)
		if validator != "" {
			f.printf("\tif err := %s(val); err != nil {\n\t\treturn err\n\t}\n", validator)
		}
		f.printf("\treturn %s.Set(%s.ref, %q, val)\n}\n\n", rt, recv, prop.Name)
	}
	return nil
}
