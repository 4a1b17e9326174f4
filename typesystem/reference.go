package typesystem

import (
	"strings"

	"github.com/crossbind/crossbind/spec"
)

// RefKind classifies a type reference. Exactly one kind applies to every
// reference; this classification is the single dispatch point consulted
// by validator generation and call emission alike.
type RefKind int

const (
	RefVoid RefKind = iota
	RefPrimitive
	RefNamed
	RefArray
	RefMap
	RefUnion
)

// String returns the string representation of the reference kind.
func (k RefKind) String() string {
	switch k {
	case RefVoid:
		return "Void"
	case RefPrimitive:
		return "Primitive"
	case RefNamed:
		return "Named"
	case RefArray:
		return "Array"
	case RefMap:
		return "Map"
	case RefUnion:
		return "Union"
	default:
		return "Unknown"
	}
}

// TypeReference describes the shape of a value: a primitive, a named
// type, an array, a map, a union, or void.
type TypeReference struct {
	ts        *TypeSystem
	kind      RefKind
	primitive spec.PrimitiveType
	fqn       string
	element   *TypeReference
	members   []*TypeReference
}

// newTypeReference builds a TypeReference from its descriptor form.
// A nil ref yields the void reference.
func newTypeReference(ts *TypeSystem, ref *spec.TypeRefSpec) (*TypeReference, error) {
	if ref == nil {
		return &TypeReference{ts: ts, kind: RefVoid}, nil
	}
	switch {
	case ref.Primitive != "":
		return &TypeReference{ts: ts, kind: RefPrimitive, primitive: ref.Primitive}, nil
	case ref.FQN != "":
		return &TypeReference{ts: ts, kind: RefNamed, fqn: ref.FQN}, nil
	case ref.Collection != nil:
		elem, err := newTypeReference(ts, ref.Collection.ElementType)
		if err != nil {
			return nil, err
		}
		kind := RefArray
		if ref.Collection.Kind == spec.CollectionMap {
			kind = RefMap
		}
		return &TypeReference{ts: ts, kind: kind, element: elem}, nil
	case ref.Union != nil:
		members := make([]*TypeReference, 0, len(ref.Union.Types))
		for _, m := range ref.Union.Types {
			mr, err := newTypeReference(ts, m)
			if err != nil {
				return nil, err
			}
			members = append(members, mr)
		}
		return &TypeReference{ts: ts, kind: RefUnion, members: members}, nil
	default:
		return nil, Errorf(CodeInvalidType, "", "type reference has no discriminator")
	}
}

// Kind returns the reference's classification.
func (r *TypeReference) Kind() RefKind { return r.kind }

// Primitive returns the primitive name. Only meaningful for RefPrimitive.
func (r *TypeReference) Primitive() spec.PrimitiveType { return r.primitive }

// FQN returns the referenced type's FQN. Only meaningful for RefNamed.
func (r *TypeReference) FQN() string { return r.fqn }

// Element returns the array element or map value reference.
func (r *TypeReference) Element() *TypeReference { return r.element }

// Members returns the union member references, in declaration order.
func (r *TypeReference) Members() []*TypeReference { return r.members }

// Resolve looks up the named type behind a RefNamed reference.
func (r *TypeReference) Resolve() (Type, error) {
	if r.kind != RefNamed {
		return nil, Errorf(CodeInvalidType, "", "cannot resolve a %s reference", r.kind)
	}
	return r.ts.FindFQN(r.fqn)
}

// String renders the reference for error messages.
func (r *TypeReference) String() string {
	switch r.kind {
	case RefVoid:
		return "void"
	case RefPrimitive:
		return string(r.primitive)
	case RefNamed:
		return r.fqn
	case RefArray:
		return "array<" + r.element.String() + ">"
	case RefMap:
		return "map<string, " + r.element.String() + ">"
	case RefUnion:
		parts := make([]string, len(r.members))
		for i, m := range r.members {
			parts[i] = m.String()
		}
		return strings.Join(parts, " | ")
	default:
		return "unknown"
	}
}

// OptionalValue pairs a type reference with optionality. Method returns,
// property values, and parameters are all described through one.
type OptionalValue struct {
	Type     *TypeReference
	Optional bool
}

// Void reports whether the value carries no type at all.
func (v *OptionalValue) Void() bool {
	return v == nil || v.Type == nil || v.Type.Kind() == RefVoid
}
