package golang

import (
	"fmt"
	"strings"

	"github.com/crossbind/crossbind/typesystem"
)

// numericCaseTypes is the type-switch arm covering every Go numeric
// kind, used when a union lists the number primitive and widening is
// enabled.
const numericCaseTypes = "float32, float64, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64"

// validatorName derives the package-level validator function name for
// a member of a type. The member is "" for initializers.
func validatorName(owner typesystem.Type, member string) string {
	if member == "" {
		return "validateNew" + localName(owner) + "Parameters"
	}
	return "validate" + localName(owner) + exportName(member) + "Parameters"
}

// setterValidatorName derives the validator name for a property setter.
func setterValidatorName(owner typesystem.Type, property string) string {
	return "validate" + localName(owner) + "Set" + exportName(property) + "Parameters"
}

// validatorGen emits runtime argument validators into one file.
type validatorGen struct {
	m *typeMapper
}

// emitCallableValidator writes a package-level function checking every
// parameter of a callable before the bridge is invoked. Variadic
// parameters arrive as the collected slice.
func (g *validatorGen) emitCallableValidator(name string, params []*typesystem.Parameter) error {
	f := g.m.f
	scope := NewScope()
	names := make([]string, len(params))
	for i, p := range params {
		names[i] = scope.Reserve(p.Name)
	}
	f.printf("func %s(", name)
	for i, p := range params {
		typ, err := g.m.goValueType(p.Type, p.Optional && !p.Variadic)
		if err != nil {
			return err
		}
		if p.Variadic {
			typ = "[]" + typ
		}
		if i > 0 {
			f.printf(", ")
		}
		f.printf("%s %s", names[i], typ)
	}
	f.printf(") error {\n")
	for i, p := range params {
		if p.Variadic {
			if err := g.emitSliceElementChecks(names[i], fmt.Sprintf("parameter %s", p.Name), p.Type, scope, "\t"); err != nil {
				return err
			}
			continue
		}
		if err := g.emitValueChecks(names[i], fmt.Sprintf("parameter %s", p.Name), p.Type, p.Optional, scope, "\t"); err != nil {
			return err
		}
	}
	f.printf("\treturn nil\n}\n\n")
	return nil
}

// emitSetterValidator writes the validator guarding a property setter.
func (g *validatorGen) emitSetterValidator(name string, p *typesystem.Property) error {
	f := g.m.f
	scope := NewScope()
	arg := scope.Reserve("val")
	typ, err := g.m.goValueType(p.Type, p.Optional)
	if err != nil {
		return err
	}
	f.printf("func %s(%s %s) error {\n", name, arg, typ)
	if err := g.emitValueChecks(arg, fmt.Sprintf("value for property %s", p.Name), p.Type, p.Optional, scope, "\t"); err != nil {
		return err
	}
	f.printf("\treturn nil\n}\n\n")
	return nil
}

// emitValueChecks writes the checks for one value: a required-presence
// check when the lowered form admits nil, then the structural checks
// the reference demands. desc is a message-template fragment naming
// the value, e.g. "parameter volume".
func (g *validatorGen) emitValueChecks(expr, desc string, ref *typesystem.TypeReference, optional bool, scope *Scope, ind string) error {
	f := g.m.f
	_, nilable, err := g.m.goType(ref)
	if err != nil {
		return err
	}
	deep, err := g.needsDeepCheck(ref)
	if err != nil {
		return err
	}
	if !nilable {
		// Scalar or pointer-wrapped optional scalar: nothing to check.
		return nil
	}
	if optional {
		if !deep {
			return nil
		}
		f.printf("%sif %s != nil {\n", ind, expr)
		if err := g.emitDeepChecks(expr, desc, ref, scope, ind+"\t"); err != nil {
			return err
		}
		f.printf("%s}\n", ind)
		return nil
	}
	g.m.f.importPkg("fmt")
	required, err := errorfCall(desc + " is required, but none was provided")
	if err != nil {
		return err
	}
	f.printf("%sif %s == nil {\n%s\treturn %s\n%s}\n", ind, expr, ind, required, ind)
	if deep {
		return g.emitDeepChecks(expr, desc, ref, scope, ind)
	}
	return nil
}

// needsDeepCheck reports whether a reference demands structural checks
// beyond nil-presence: union membership, datatype validation, or a
// collection whose elements do.
func (g *validatorGen) needsDeepCheck(ref *typesystem.TypeReference) (bool, error) {
	switch ref.Kind() {
	case typesystem.RefUnion:
		return true, nil
	case typesystem.RefNamed:
		t, err := ref.Resolve()
		if err != nil {
			return false, err
		}
		if iface, ok := t.(*typesystem.InterfaceType); ok {
			return iface.Datatype()
		}
		return false, nil
	case typesystem.RefArray, typesystem.RefMap:
		return g.needsDeepCheck(ref.Element())
	default:
		return false, nil
	}
}

func (g *validatorGen) emitDeepChecks(expr, desc string, ref *typesystem.TypeReference, scope *Scope, ind string) error {
	switch ref.Kind() {
	case typesystem.RefUnion:
		return g.emitUnionCheck(expr, desc, ref, ind)
	case typesystem.RefNamed:
		// Reached only for datatype structs.
		f := g.m.f
		errName := scope.Reserve("err")
		f.printf("%sif %s := %s.Validate(); %s != nil {\n%s\treturn %s\n%s}\n", ind, errName, expr, errName, ind, errName, ind)
		return nil
	case typesystem.RefArray:
		return g.emitArrayElementChecks(expr, desc, ref.Element(), scope, ind)
	case typesystem.RefMap:
		return g.emitMapElementChecks(expr, desc, ref.Element(), scope, ind)
	default:
		return fmt.Errorf("no deep check for reference kind %v", ref.Kind())
	}
}

// emitSliceElementChecks loops a slice applying element checks, used
// for variadic parameters and nested arrays alike.
func (g *validatorGen) emitSliceElementChecks(expr, desc string, elem *typesystem.TypeReference, scope *Scope, ind string) error {
	deep, err := g.needsDeepCheck(elem)
	if err != nil {
		return err
	}
	if !deep {
		return nil
	}
	return g.emitArrayElementChecks(expr, desc, elem, scope, ind)
}

func (g *validatorGen) emitArrayElementChecks(expr, desc string, elem *typesystem.TypeReference, scope *Scope, ind string) error {
	f := g.m.f
	inner := scope.Child()
	idx := inner.Reserve("idx")
	v := inner.Reserve("v")
	f.printf("%sfor %s, %s := range %s {\n", ind, idx, v, expr)
	elemDesc := fmt.Sprintf("index @{%s} of %s", idx, desc)
	if err := g.emitValueChecks(v, elemDesc, elem, false, inner, ind+"\t"); err != nil {
		return err
	}
	f.printf("%s}\n", ind)
	return nil
}

func (g *validatorGen) emitMapElementChecks(expr, desc string, elem *typesystem.TypeReference, scope *Scope, ind string) error {
	f := g.m.f
	inner := scope.Child()
	key := inner.Reserve("key")
	v := inner.Reserve("v")
	f.printf("%sfor %s, %s := range %s {\n", ind, key, v, expr)
	elemDesc := fmt.Sprintf("key @{%s:q} of %s", key, desc)
	if err := g.emitValueChecks(v, elemDesc, elem, false, inner, ind+"\t"); err != nil {
		return err
	}
	f.printf("%s}\n", ind)
	return nil
}

// emitUnionCheck writes a type switch accepting exactly the union's
// member types, with numeric widening and the foreign-proxy fallback
// applied per configuration.
func (g *validatorGen) emitUnionCheck(expr, desc string, ref *typesystem.TypeReference, ind string) error {
	f := g.m.f
	cfg := g.m.e.cfg
	var arms []string
	var armNames []string
	var datatypeArms []string // Go types whose values need Validate()
	hasProxyMember := false // set when a member names a class or interface a foreign instance can stand in for
	for _, member := range ref.Members() {
		typ, _, err := g.m.goType(member)
		if err != nil {
			return err
		}
		arm := typ
		if member.Kind() == typesystem.RefPrimitive && member.Primitive() == "number" && cfg.WidenNumericUnions {
			arm = numericCaseTypes
		}
		arms = append(arms, arm)
		armNames = append(armNames, typ)
		if member.Kind() == typesystem.RefNamed {
			t, err := member.Resolve()
			if err != nil {
				return err
			}
			switch nt := t.(type) {
			case *typesystem.ClassType:
				hasProxyMember = true
			case *typesystem.InterfaceType:
				hasProxyMember = true
				datatype, err := nt.Datatype()
				if err != nil {
					return err
				}
				if datatype {
					datatypeArms = append(datatypeArms, typ)
				}
			}
		}
	}
	f.printf("%sswitch %s.(type) {\n", ind, expr)
	for i, arm := range arms {
		f.printf("%scase %s:\n", ind, arm)
		for _, dt := range datatypeArms {
			if dt != armNames[i] {
				continue
			}
			f.printf("%s\tif err := %s.(%s).Validate(); err != nil {\n%s\t\treturn err\n%s\t}\n", ind, expr, dt, ind, ind)
		}
	}
	f.printf("%sdefault:\n", ind)
	mismatch, err := errorfCall(fmt.Sprintf(
		"%s must be one of the allowed types [%s]; received @{%s:#v} (a @{%s:T})",
		desc, strings.Join(armNames, ", "), expr, expr))
	if err != nil {
		return err
	}
	f.importPkg("fmt")
	if cfg.AcceptForeignProxies && hasProxyMember {
		rt := g.m.runtimePkg()
		f.printf("%s\tif !%s.IsForeignProxy(%s) {\n%s\t\treturn %s\n%s\t}\n", ind, rt, expr, ind, mismatch, ind)
	} else {
		f.printf("%s\treturn %s\n", ind, mismatch)
	}
	f.printf("%s}\n", ind)
	return nil
}
